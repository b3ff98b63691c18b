// Package experience is the single write path for awarding XP.
package experience

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/services/level"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Reasons recorded against awards
const (
	ReasonStreak    = "streak"
	ReasonMilestone = "milestone"
	ReasonVote      = "vote"
	ReasonAdmin     = "admin"
)

// Award describes the outcome of an XP award
type Award struct {
	PlayerID  model.PlayerID   `json:"player_id"`
	Amount    int              `json:"amount"`
	Reason    string           `json:"reason"`
	Before    level.Resolution `json:"before"`
	After     level.Resolution `json:"after"`
	LeveledUp bool             `json:"leveled_up"`
}

// Service adds XP to progression records and resolves levels on the way out
type Service struct {
	store     storage.ProgressionStore
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	table     *level.Table
	energyMax int
}

// New creates an experience service. energyMax seeds records that do not exist yet.
func New(
	store storage.ProgressionStore,
	clock clock.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
	table *level.Table,
	energyMax int,
) *Service {
	if table == nil {
		table = level.DefaultTable()
	}
	return &Service{
		store:     store,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		table:     table,
		energyMax: energyMax,
	}
}

// Table returns the level table used for resolution
func (s *Service) Table() *level.Table {
	return s.table
}

// Resolve returns the player's level resolved from the stored XP.
// A player with no record resolves as zero XP.
func (s *Service) Resolve(ctx context.Context, playerID model.PlayerID) (level.Resolution, error) {
	rec, err := s.store.GetProgression(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrProgressionNotFound) {
			return s.table.Resolve(0), nil
		}
		return level.Resolution{}, err
	}
	return s.table.Resolve(rec.XP), nil
}

// Award adds amount to the player's XP. It reads then writes without a
// version check, so concurrent awards for one player may lose an update.
func (s *Service) Award(ctx context.Context, playerID model.PlayerID, amount int, reason string) (*Award, error) {
	if amount < 0 {
		return nil, model.ErrInvalidAmount
	}

	rec, err := s.store.GetProgression(ctx, playerID)
	switch {
	case errors.Is(err, model.ErrProgressionNotFound):
		rec = model.NewProgressionRecord(playerID, s.energyMax, s.clock.Now())
		if err := s.store.CreateProgression(ctx, rec); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	before := s.table.Resolve(rec.XP)
	xp := max(rec.XP, 0) + amount
	if amount > 0 {
		if err := s.store.UpdateProgression(ctx, playerID, model.ProgressionPatch{XP: &xp}); err != nil {
			return nil, err
		}
	}
	after := s.table.Resolve(xp)

	award := &Award{
		PlayerID:  playerID,
		Amount:    amount,
		Reason:    reason,
		Before:    before,
		After:     after,
		LeveledUp: after.Current.Level > before.Current.Level,
	}

	s.metrics.AddXPAwarded(reason, amount)
	if award.LeveledUp {
		s.metrics.IncLevelUp()
		s.logger.Info("player leveled up",
			"player_id", playerID,
			"level", after.Current.Level,
			"title", after.Current.Title,
			"reason", reason,
		)
	}

	return award, nil
}
