package model

import "time"

// DailyLoginEvent is an append-only log entry, one per player per calendar day
type DailyLoginEvent struct {
	PlayerID               PlayerID  `json:"player_id"`
	LoginDate              Date      `json:"login_date"`
	StreakDayOfWeek        int       `json:"streak_day_of_week"`
	BonusXP                int       `json:"bonus_xp"`
	ConsecutiveDaysAtLogin int       `json:"consecutive_days_at_login"`
	CreatedAt              time.Time `json:"created_at"`
}

// StreakSummary caches the streak derived from the login log.
// Invariant: BestStreak >= CurrentStreak.
type StreakSummary struct {
	PlayerID      PlayerID  `json:"player_id"`
	CurrentStreak int       `json:"current_streak"`
	BestStreak    int       `json:"best_streak"`
	LastLoginDate Date      `json:"last_login_date"`
	UpdatedAt     time.Time `json:"updated_at"`
}
