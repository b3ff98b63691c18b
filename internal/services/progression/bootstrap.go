// Package progression wires the engine together for one logged-in session.
package progression

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/services/energy"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/services/scoring"
	"github.com/mcoot/wyrgame/internal/services/streak"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Rules are the rewards and costs of a single play
type Rules struct {
	PlayCost   int
	VoteXP     int
	VotePoints int
}

// DefaultRules returns the standard play rules
func DefaultRules() Rules {
	return Rules{
		PlayCost:   10,
		VoteXP:     5,
		VotePoints: 10,
	}
}

// Bootstrapper builds a Session once per login
type Bootstrapper struct {
	store      storage.Storage
	experience *experience.Service
	ledger     *streak.Ledger
	scoring    *scoring.Service
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	policy     energy.Policy
	rules      Rules
}

// NewBootstrapper creates a Bootstrapper
func NewBootstrapper(
	store storage.Storage,
	experience *experience.Service,
	ledger *streak.Ledger,
	scoring *scoring.Service,
	clock clock.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
	policy energy.Policy,
	rules Rules,
) *Bootstrapper {
	return &Bootstrapper{
		store:      store,
		experience: experience,
		ledger:     ledger,
		scoring:    scoring,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		policy:     policy.Normalized(),
		rules:      rules,
	}
}

// Rules returns the play rules sessions are built with
func (b *Bootstrapper) Rules() Rules {
	return b.rules
}

// Start loads or initialises the player's progression, records today's
// login and returns the session. It never fails: store problems are logged
// and the session falls back to in-memory defaults.
func (b *Bootstrapper) Start(ctx context.Context, playerID model.PlayerID) *Session {
	now := b.clock.Now()
	energyMax := b.policy.Max

	rec, err := b.store.GetProgression(ctx, playerID)
	switch {
	case errors.Is(err, model.ErrProgressionNotFound):
		rec = model.NewProgressionRecord(playerID, energyMax, now)
		if err := b.store.CreateProgression(ctx, rec); err != nil {
			b.metrics.IncWriteFailure("bootstrap_create")
			b.logger.Error("failed to create progression record", "player_id", playerID, "error", err)
		}
	case err != nil:
		b.logger.Error("failed to load progression record, using defaults", "player_id", playerID, "error", err)
		rec = model.NewProgressionRecord(playerID, energyMax, now)
	}
	rec.Normalize(energyMax, now)

	reward, err := b.ledger.RecordDailyLogin(ctx, playerID)
	if err != nil {
		b.logger.Error("failed to record daily login", "player_id", playerID, "error", err)
	}

	b.logger.Info("progression session started",
		"player_id", playerID,
		"energy", *rec.EnergyCurrent,
		"login_reward", reward != nil,
	)

	return &Session{
		PlayerID:    playerID,
		StartedAt:   now,
		LoginReward: reward,
		energy:      b.tracker(playerID, energy.BaselineOf(rec, b.policy)),
		bootstrap:   b,
	}
}

func (b *Bootstrapper) tracker(playerID model.PlayerID, baseline energy.Baseline) *energy.Tracker {
	return energy.NewTracker(playerID, baseline, b.policy, b.store, b.clock, b.logger, b.metrics)
}
