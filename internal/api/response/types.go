package response

import (
	"time"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/auth"
	"github.com/mcoot/wyrgame/internal/services/energy"
	"github.com/mcoot/wyrgame/internal/services/leaderboard"
	"github.com/mcoot/wyrgame/internal/services/level"
	"github.com/mcoot/wyrgame/internal/services/streak"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		IsAdmin:     p.IsAdmin,
	}
}

// AuthResponse is the response for authentication endpoints.
// LoginReward is present only on the first login of a calendar day.
type AuthResponse struct {
	Player       Player         `json:"player"`
	SessionToken string         `json:"session_token"`
	LoginReward  *streak.Reward `json:"login_reward,omitempty"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	resp := AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
	if s.Progression != nil {
		resp.LoginReward = s.Progression.LoginReward
	}
	return resp
}

// Energy is the response for the energy endpoints
type Energy struct {
	Current     int        `json:"current"`
	Max         int        `json:"max"`
	NextRegenAt *time.Time `json:"next_regen_at,omitempty"` // absent when full
}

// EnergyFromState converts an energy.State
func EnergyFromState(s energy.State) Energy {
	e := Energy{Current: s.Current, Max: s.Max}
	if !s.NextRegenAt.IsZero() {
		t := s.NextRegenAt
		e.NextRegenAt = &t
	}
	return e
}

// Leaderboard splits ranked entries into the podium and the rest
type Leaderboard struct {
	Period string                   `json:"period"`
	Key    string                   `json:"key,omitempty"`
	AsOf   time.Time                `json:"as_of"`
	Season *model.Season            `json:"season,omitempty"`
	Podium []model.LeaderboardEntry `json:"podium"`
	Rest   []model.LeaderboardEntry `json:"rest"`
}

// LeaderboardFromResult converts a leaderboard.Leaderboard
func LeaderboardFromResult(lb *leaderboard.Leaderboard) Leaderboard {
	return Leaderboard{
		Period: string(lb.Period),
		Key:    lb.Key,
		AsOf:   lb.AsOf,
		Season: lb.Season,
		Podium: nonNil(lb.Podium()),
		Rest:   nonNil(lb.Rest()),
	}
}

// Levels lists the level table
type Levels struct {
	Levels []level.Level `json:"levels"`
}

// Seasons lists the configured seasons
type Seasons struct {
	Seasons []*model.Season `json:"seasons"`
}

func nonNil(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	if entries == nil {
		return []model.LeaderboardEntry{}
	}
	return entries
}
