package model

import "time"

// Period selects which point source a leaderboard ranks by
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodSeason  Period = "season"
	PeriodAllTime Period = "all-time"
)

// ParsePeriod validates a period name
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodWeekly, PeriodSeason, PeriodAllTime:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Season is an administrator-defined window over which season points accrue
type Season struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Contains reports whether t falls in [StartsAt, EndsAt)
func (s *Season) Contains(t time.Time) bool {
	return !t.Before(s.StartsAt) && t.Before(s.EndsAt)
}

// PeriodPoints is a pre-aggregated point total for one player in one period
type PeriodPoints struct {
	PlayerID PlayerID `json:"player_id"`
	Points   int      `json:"points"`
}

// LeaderboardEntry is derived per query and never persisted
type LeaderboardEntry struct {
	PlayerID   PlayerID `json:"player_id"`
	Username   string   `json:"username"`
	AvatarURL  string   `json:"avatar_url,omitempty"`
	Points     int      `json:"points"`
	Rank       int      `json:"rank"`
	RankChange int      `json:"rank_change"`
}
