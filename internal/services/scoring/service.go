// Package scoring records the points a player earns into every leaderboard bucket.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/services/leaderboard"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Service pre-aggregates points per period so leaderboards never scan raw events
type Service struct {
	store   storage.PlayerStore
	clock   clock.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a new scoring Service
func New(store storage.PlayerStore, clock clock.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// RecordPoints adds points to today's bucket, this week's bucket, the active
// season's bucket (if any) and the player's season and all-time totals.
// Every write is attempted; the failures are joined.
func (s *Service) RecordPoints(ctx context.Context, playerID model.PlayerID, points int) error {
	if points < 0 {
		return model.ErrInvalidAmount
	}
	if points == 0 {
		return nil
	}

	now := s.clock.Now()
	var errs []error

	for _, period := range []model.Period{model.PeriodDaily, model.PeriodWeekly} {
		key, _ := leaderboard.PeriodKey(period, now)
		if err := s.store.AddPeriodPoints(ctx, period, key, playerID, points); err != nil {
			errs = append(errs, fmt.Errorf("%s points: %w", period, err))
		}
	}

	inSeason := false
	season, err := s.store.GetActiveSeason(ctx, now)
	switch {
	case errors.Is(err, model.ErrNoActiveSeason):
	case err != nil:
		errs = append(errs, fmt.Errorf("active season: %w", err))
	default:
		inSeason = true
		if err := s.store.AddPeriodPoints(ctx, model.PeriodSeason, season.ID, playerID, points); err != nil {
			errs = append(errs, fmt.Errorf("season points: %w", err))
		}
	}

	if err := s.addTotals(ctx, playerID, points, inSeason); err != nil {
		errs = append(errs, fmt.Errorf("totals: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		s.metrics.IncWriteFailure("scoring")
		s.logger.Error("failed to record points",
			"player_id", playerID,
			"points", points,
			"error", err,
		)
		return err
	}
	return nil
}

func (s *Service) addTotals(ctx context.Context, playerID model.PlayerID, points int, inSeason bool) error {
	rec, err := s.store.GetProgression(ctx, playerID)
	switch {
	case errors.Is(err, model.ErrProgressionNotFound):
		now := s.clock.Now()
		// nil energy reads back as a full tank
		rec = &model.ProgressionRecord{PlayerID: playerID, EnergyLastUpdate: now, CreatedAt: now}
		if err := s.store.CreateProgression(ctx, rec); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	total := max(rec.TotalPoints, 0) + points
	patch := model.ProgressionPatch{TotalPoints: &total}
	if inSeason {
		seasonTotal := max(rec.SeasonPoints, 0) + points
		patch.SeasonPoints = &seasonTotal
	}
	return s.store.UpdateProgression(ctx, playerID, patch)
}
