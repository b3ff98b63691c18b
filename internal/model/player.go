package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is the public identity of a player, used to enrich leaderboards
type Player struct {
	ID          PlayerID  `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	IsAdmin     bool      `json:"is_admin,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisteredPlayer holds authentication data for a player
// Stored separately so the password hash never travels with the session
type RegisteredPlayer struct {
	PlayerID     PlayerID  `json:"player_id"`
	Username     string    `json:"username"`      // login username (immutable)
	PasswordHash string    `json:"password_hash"` // bcrypt hash
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
