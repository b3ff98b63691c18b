package postgres

import (
	"time"

	"github.com/mcoot/wyrgame/internal/model"
)

type playerRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	Username    string `gorm:"size:64;index"`
	DisplayName string `gorm:"size:128"`
	AvatarURL   string `gorm:"size:512"`
	IsAdmin     bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

func (playerRow) TableName() string { return "players" }

func (r *playerRow) toModel() *model.Player {
	return &model.Player{
		ID:          model.PlayerID(r.ID),
		Username:    r.Username,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		IsAdmin:     r.IsAdmin,
		CreatedAt:   r.CreatedAt,
	}
}

type registeredPlayerRow struct {
	PlayerID     string `gorm:"primaryKey;size:64"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (registeredPlayerRow) TableName() string { return "registered_players" }

// progressionRow stores NULL energy_current to mean a full tank
type progressionRow struct {
	PlayerID         string    `gorm:"primaryKey;size:64"`
	XP               int       `gorm:"column:xp;not null;default:0"`
	EnergyCurrent    *int      `gorm:"column:energy_current"`
	EnergyLastUpdate time.Time `gorm:"column:energy_last_update"`
	SeasonPoints     int       `gorm:"not null;default:0"`
	TotalPoints      int       `gorm:"not null;default:0"`
	CreatedAt        time.Time `gorm:"autoCreateTime:false"`
}

func (progressionRow) TableName() string { return "progression_records" }

func progressionRowFromModel(rec *model.ProgressionRecord) *progressionRow {
	return &progressionRow{
		PlayerID:         string(rec.PlayerID),
		XP:               rec.XP,
		EnergyCurrent:    rec.EnergyCurrent,
		EnergyLastUpdate: rec.EnergyLastUpdate,
		SeasonPoints:     rec.SeasonPoints,
		TotalPoints:      rec.TotalPoints,
		CreatedAt:        rec.CreatedAt,
	}
}

func (r *progressionRow) toModel() *model.ProgressionRecord {
	return &model.ProgressionRecord{
		PlayerID:         model.PlayerID(r.PlayerID),
		XP:               r.XP,
		EnergyCurrent:    r.EnergyCurrent,
		EnergyLastUpdate: r.EnergyLastUpdate,
		SeasonPoints:     r.SeasonPoints,
		TotalPoints:      r.TotalPoints,
		CreatedAt:        r.CreatedAt,
	}
}

// loginEventRow is unique per (player, day); the log is append-only
type loginEventRow struct {
	PlayerID               string    `gorm:"primaryKey;size:64"`
	LoginDate              string    `gorm:"primaryKey;size:10"`
	StreakDayOfWeek        int       `gorm:"not null"`
	BonusXP                int       `gorm:"column:bonus_xp;not null"`
	ConsecutiveDaysAtLogin int       `gorm:"not null"`
	CreatedAt              time.Time `gorm:"autoCreateTime:false"`
}

func (loginEventRow) TableName() string { return "daily_login_events" }

func (r *loginEventRow) toModel() *model.DailyLoginEvent {
	return &model.DailyLoginEvent{
		PlayerID:               model.PlayerID(r.PlayerID),
		LoginDate:              model.Date(r.LoginDate),
		StreakDayOfWeek:        r.StreakDayOfWeek,
		BonusXP:                r.BonusXP,
		ConsecutiveDaysAtLogin: r.ConsecutiveDaysAtLogin,
		CreatedAt:              r.CreatedAt,
	}
}

type streakRow struct {
	PlayerID      string `gorm:"primaryKey;size:64"`
	CurrentStreak int
	BestStreak    int
	LastLoginDate string `gorm:"size:10"`
	UpdatedAt     time.Time
}

func (streakRow) TableName() string { return "streak_summaries" }

type periodPointsRow struct {
	Period   string `gorm:"primaryKey;size:16"`
	Bucket   string `gorm:"primaryKey;size:64"`
	PlayerID string `gorm:"primaryKey;size:64"`
	Points   int    `gorm:"not null;default:0"`
}

func (periodPointsRow) TableName() string { return "period_points" }

type seasonRow struct {
	ID       string    `gorm:"primaryKey;size:64"`
	Name     string    `gorm:"size:128"`
	StartsAt time.Time `gorm:"index"`
	EndsAt   time.Time `gorm:"index"`
}

func (seasonRow) TableName() string { return "seasons" }

func (r *seasonRow) toModel() *model.Season {
	return &model.Season{ID: r.ID, Name: r.Name, StartsAt: r.StartsAt, EndsAt: r.EndsAt}
}
