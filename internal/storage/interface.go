package storage

import (
	"context"
	"time"

	"github.com/mcoot/wyrgame/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	PlayerDirectory
	PlayerStore
}

// PlayerDirectory holds player identities and credentials
type PlayerDirectory interface {
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// GetPlayers returns the players that exist among ids; missing ids are omitted
	GetPlayers(ctx context.Context, ids []model.PlayerID) (map[model.PlayerID]*model.Player, error)

	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)
}

// PlayerStore is the progression data store. Every operation may fail with
// an I/O error. None of the writes are conditional: concurrent
// read-modify-write sequences for the same player resolve last-writer-wins.
type PlayerStore interface {
	ProgressionStore
	LoginLog
	PeriodPointsStore
	SeasonStore
}

// ProgressionStore holds one ProgressionRecord per player
type ProgressionStore interface {
	// GetProgression returns model.ErrProgressionNotFound when absent
	GetProgression(ctx context.Context, id model.PlayerID) (*model.ProgressionRecord, error)
	// CreateProgression stores a new record, replacing any existing one
	CreateProgression(ctx context.Context, rec *model.ProgressionRecord) error
	// UpdateProgression writes only the non-nil fields of patch;
	// model.ErrProgressionNotFound when the record does not exist
	UpdateProgression(ctx context.Context, id model.PlayerID, patch model.ProgressionPatch) error
	ListProgression(ctx context.Context) ([]*model.ProgressionRecord, error)
}

// LoginLog is the append-only daily login log plus its derived streak summary
type LoginLog interface {
	// AppendLoginEvent returns model.ErrLoginEventExists if the day is already logged
	AppendLoginEvent(ctx context.Context, event *model.DailyLoginEvent) error
	// GetLoginEvent returns model.ErrLoginEventNotFound when absent
	GetLoginEvent(ctx context.Context, id model.PlayerID, date model.Date) (*model.DailyLoginEvent, error)
	GetLoginEvents(ctx context.Context, id model.PlayerID) ([]*model.DailyLoginEvent, error)

	// GetStreakSummary returns model.ErrStreakNotFound when absent
	GetStreakSummary(ctx context.Context, id model.PlayerID) (*model.StreakSummary, error)
	UpsertStreakSummary(ctx context.Context, summary *model.StreakSummary) error
}

// PeriodPointsStore holds pre-aggregated point totals per (period, key)
type PeriodPointsStore interface {
	AddPeriodPoints(ctx context.Context, period model.Period, key string, id model.PlayerID, points int) error
	GetPeriodPoints(ctx context.Context, period model.Period, key string) ([]model.PeriodPoints, error)
}

// SeasonStore holds administrator-defined seasons
type SeasonStore interface {
	SaveSeason(ctx context.Context, season *model.Season) error
	// GetActiveSeason returns model.ErrNoActiveSeason when no season contains asOf
	GetActiveSeason(ctx context.Context, asOf time.Time) (*model.Season, error)
	ListSeasons(ctx context.Context) ([]*model.Season, error)
}

// PickActiveSeason returns the season containing asOf, preferring the latest
// start when windows overlap
func PickActiveSeason(seasons []*model.Season, asOf time.Time) (*model.Season, error) {
	var active *model.Season
	for _, s := range seasons {
		if !s.Contains(asOf) {
			continue
		}
		if active == nil || s.StartsAt.After(active.StartsAt) {
			active = s
		}
	}
	if active == nil {
		return nil, model.ErrNoActiveSeason
	}
	return active, nil
}
