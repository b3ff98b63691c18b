package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mcoot/wyrgame/internal/boundary"
)

// Output handles formatting output based on the configured format.
// Text rendering runs inside an error boundary: if a renderer fails the
// result is still shown as JSON.
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
	text   *boundary.Boundary[string]
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer, logger *slog.Logger) *Output {
	return &Output{
		format: format,
		out:    out,
		errOut: errOut,
		text:   boundary.New("cli text output", func(error) string { return "" }, logger),
	}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}

	rendered := o.text.Render(func() (string, error) {
		return renderText(data)
	})
	if o.text.Err() != nil {
		o.printJSON(data)
		return
	}
	_, _ = io.WriteString(o.out, rendered)
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func renderText(data any) (string, error) {
	var b strings.Builder

	switch v := data.(type) {
	case Player:
		writePlayer(&b, v)
	case AuthResult:
		writeAuthResult(&b, v)
	case Progression:
		writeProgression(&b, v)
	case StreakStatus:
		writeStreak(&b, v)
	case StreakSummary:
		writeStreakSummary(&b, v)
	case Energy:
		writeEnergy(&b, v)
	case PlayResult:
		writePlayResult(&b, v)
	case Award:
		writeAward(&b, v)
	case Leaderboard:
		writeLeaderboard(&b, v)
	case Levels:
		writeLevels(&b, v)
	case Season:
		writeSeason(&b, v)
	case Seasons:
		if len(v.Seasons) == 0 {
			b.WriteString("No seasons\n")
		}
		for _, s := range v.Seasons {
			writeSeason(&b, s)
		}
	case HealthResult:
		fmt.Fprintf(&b, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		data, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		b.Write(data)
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player       `json:"player"`
	SessionToken string       `json:"session_token"`
	LoginReward  *LoginReward `json:"login_reward,omitempty"`
}

// LoginReward is the first-login-of-the-day payout
type LoginReward struct {
	Date            string     `json:"date"`
	BonusXP         int        `json:"bonus_xp"`
	StreakDay       int        `json:"streak_day"`
	ConsecutiveDays int        `json:"consecutive_days"`
	WeekDays        []string   `json:"week_days"`
	Milestone       *Milestone `json:"milestone,omitempty"`
	TotalXP         int        `json:"total_xp"`
}

// Milestone is a streak length reached for the first time
type Milestone struct {
	Days    int `json:"days"`
	BonusXP int `json:"bonus_xp"`
}

// Level is one row of the level table
type Level struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Threshold int    `json:"xp_threshold"`
}

// LevelInfo is a resolved XP total
type LevelInfo struct {
	XP       int     `json:"xp"`
	Current  Level   `json:"current"`
	Next     *Level  `json:"next,omitempty"`
	Progress float64 `json:"progress"`
}

// Energy response type
type Energy struct {
	Current     int        `json:"current"`
	Max         int        `json:"max"`
	NextRegenAt *time.Time `json:"next_regen_at,omitempty"`
}

// StreakSummary response type
type StreakSummary struct {
	PlayerID      string `json:"player_id"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
	LastLoginDate string `json:"last_login_date"`
}

// StreakStatus response type
type StreakStatus struct {
	StreakSummary
	LoggedInToday bool `json:"logged_in_today"`
	Alive         bool `json:"alive"`
}

// Progression is the snapshot returned by /me/progression
type Progression struct {
	PlayerID     string        `json:"player_id"`
	XP           int           `json:"xp"`
	Level        LevelInfo     `json:"level"`
	Energy       Energy        `json:"energy"`
	Streak       *StreakStatus `json:"streak,omitempty"`
	SeasonPoints int           `json:"season_points"`
	TotalPoints  int           `json:"total_points"`
}

// Award response type
type Award struct {
	PlayerID  string    `json:"player_id"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	Before    LevelInfo `json:"before"`
	After     LevelInfo `json:"after"`
	LeveledUp bool      `json:"leveled_up"`
}

// PlayResult response type
type PlayResult struct {
	Energy   int    `json:"energy"`
	Award    *Award `json:"award,omitempty"`
	Points   int    `json:"points"`
	Degraded bool   `json:"degraded,omitempty"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	PlayerID   string `json:"player_id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Points     int    `json:"points"`
	Rank       int    `json:"rank"`
	RankChange int    `json:"rank_change"`
}

// Leaderboard response type
type Leaderboard struct {
	Period string             `json:"period"`
	Key    string             `json:"key,omitempty"`
	AsOf   time.Time          `json:"as_of"`
	Season *Season            `json:"season,omitempty"`
	Podium []LeaderboardEntry `json:"podium"`
	Rest   []LeaderboardEntry `json:"rest"`
}

// Levels response type
type Levels struct {
	Levels []Level `json:"levels"`
}

// Season response type
type Season struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Seasons response type
type Seasons struct {
	Seasons []Season `json:"seasons"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func writePlayer(b *strings.Builder, p Player) {
	fmt.Fprintf(b, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(b, "Username: %s\n", p.Username)
	if p.AvatarURL != "" {
		fmt.Fprintf(b, "Avatar: %s\n", p.AvatarURL)
	}
	if p.IsAdmin {
		b.WriteString("Admin: yes\n")
	}
}

func writeAuthResult(b *strings.Builder, a AuthResult) {
	writePlayer(b, a.Player)
	fmt.Fprintf(b, "Token: %s\n", a.SessionToken)
	if r := a.LoginReward; r != nil {
		fmt.Fprintf(b, "\nDaily login: day %d of 7, +%d XP (%d days in a row)\n", r.StreakDay, r.BonusXP, r.ConsecutiveDays)
		fmt.Fprintf(b, "Week: %s\n", weekStrip(r.WeekDays))
		if r.Milestone != nil {
			fmt.Fprintf(b, "Milestone! %d-day streak, +%d XP\n", r.Milestone.Days, r.Milestone.BonusXP)
		}
	}
}

// weekStrip draws the seven-day cycle as [x][x][*][ ][ ][ ][ ]
func weekStrip(days []string) string {
	var b strings.Builder
	for _, d := range days {
		switch d {
		case "completed":
			b.WriteString("[x]")
		case "today":
			b.WriteString("[*]")
		default:
			b.WriteString("[ ]")
		}
	}
	return b.String()
}

func writeLevel(b *strings.Builder, l LevelInfo) {
	fmt.Fprintf(b, "Level %d %s (%d XP)", l.Current.Level, l.Current.Title, l.XP)
	if l.Next != nil {
		fmt.Fprintf(b, ", %d%% to level %d at %d XP", int(l.Progress*100), l.Next.Level, l.Next.Threshold)
	} else {
		b.WriteString(", max level")
	}
	b.WriteByte('\n')
}

func writeEnergy(b *strings.Builder, e Energy) {
	fmt.Fprintf(b, "Energy: %d/%d", e.Current, e.Max)
	if e.NextRegenAt != nil {
		fmt.Fprintf(b, " (next +1 at %s)", e.NextRegenAt.Format(time.Kitchen))
	}
	b.WriteByte('\n')
}

func writeProgression(b *strings.Builder, p Progression) {
	writeLevel(b, p.Level)
	writeEnergy(b, p.Energy)
	if p.Streak != nil {
		writeStreak(b, *p.Streak)
	}
	fmt.Fprintf(b, "Points: %d this season, %d all time\n", p.SeasonPoints, p.TotalPoints)
}

func writeStreak(b *strings.Builder, s StreakStatus) {
	state := "alive"
	if !s.Alive {
		state = "broken"
	}
	fmt.Fprintf(b, "Streak: %d days (best %d), %s\n", s.CurrentStreak, s.BestStreak, state)
	if !s.LoggedInToday {
		b.WriteString("Log in today to keep it going\n")
	}
}

func writeStreakSummary(b *strings.Builder, s StreakSummary) {
	fmt.Fprintf(b, "Streak for %s: %d days (best %d), last login %s\n",
		s.PlayerID, s.CurrentStreak, s.BestStreak, s.LastLoginDate)
}

func writeAward(b *strings.Builder, a Award) {
	fmt.Fprintf(b, "+%d XP (%s)\n", a.Amount, a.Reason)
	writeLevel(b, a.After)
	if a.LeveledUp {
		fmt.Fprintf(b, "Level up! %s -> %s\n", a.Before.Current.Title, a.After.Current.Title)
	}
}

func writePlayResult(b *strings.Builder, p PlayResult) {
	fmt.Fprintf(b, "Voted: +%d points, energy now %d\n", p.Points, p.Energy)
	if p.Award != nil {
		writeAward(b, *p.Award)
	}
	if p.Degraded {
		b.WriteString("Some progress could not be saved\n")
	}
}

func writeLeaderboard(b *strings.Builder, lb Leaderboard) {
	fmt.Fprintf(b, "Leaderboard: %s", lb.Period)
	if lb.Season != nil {
		fmt.Fprintf(b, " (%s)", lb.Season.Name)
	} else if lb.Key != "" {
		fmt.Fprintf(b, " (%s)", lb.Key)
	}
	b.WriteByte('\n')

	if len(lb.Podium) == 0 {
		b.WriteString("No entries yet\n")
		return
	}
	for _, e := range lb.Podium {
		writeEntry(b, e)
	}
	if len(lb.Rest) > 0 {
		b.WriteString("---\n")
	}
	for _, e := range lb.Rest {
		writeEntry(b, e)
	}
}

func writeEntry(b *strings.Builder, e LeaderboardEntry) {
	change := ""
	switch {
	case e.RankChange > 0:
		change = fmt.Sprintf(" (+%d)", e.RankChange)
	case e.RankChange < 0:
		change = fmt.Sprintf(" (%d)", e.RankChange)
	}
	fmt.Fprintf(b, "%3d. %-20s %6d%s\n", e.Rank, e.Username, e.Points, change)
}

func writeLevels(b *strings.Builder, l Levels) {
	for _, lvl := range l.Levels {
		fmt.Fprintf(b, "%2d  %-12s %6d XP\n", lvl.Level, lvl.Title, lvl.Threshold)
	}
}

func writeSeason(b *strings.Builder, s Season) {
	fmt.Fprintf(b, "Season: %s (%s) %s to %s\n", s.Name, s.ID,
		s.StartsAt.Format(time.DateOnly), s.EndsAt.Format(time.DateOnly))
}
