package energy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/storage"
)

// State is a read-only view of a player's energy
type State struct {
	Current     int       `json:"current"`
	Max         int       `json:"max"`
	NextRegenAt time.Time `json:"next_regen_at,omitempty"`
}

// Tracker owns one player's energy for the lifetime of a session.
// Every Spend and Refill performs exactly one write; reads never write.
type Tracker struct {
	playerID model.PlayerID
	policy   Policy
	store    storage.ProgressionStore
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu       sync.Mutex
	baseline Baseline
}

// NewTracker creates a tracker seeded with the player's stored baseline
func NewTracker(
	playerID model.PlayerID,
	baseline Baseline,
	policy Policy,
	store storage.ProgressionStore,
	clock clock.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Tracker {
	return &Tracker{
		playerID: playerID,
		policy:   policy.Normalized(),
		store:    store,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		baseline: baseline,
	}
}

// Policy returns the tracker's effective policy
func (t *Tracker) Policy() Policy {
	return t.policy
}

// Baseline returns the in-memory baseline
func (t *Tracker) Baseline() Baseline {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baseline
}

// Current returns the live energy value without writing anything
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.baseline.Current(t.clock.Now(), t.policy)
}

// State returns the live energy value and when the next tick lands
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	return State{
		Current:     t.baseline.Current(now, t.policy),
		Max:         t.policy.Max,
		NextRegenAt: t.baseline.NextRegenAt(now, t.policy),
	}
}

// Spend folds in banked regeneration, subtracts amount (never below 0) and
// persists the result as the new baseline. Fractional progress towards the
// next tick is forfeited. On a failed write the new value is kept in memory
// and the error is returned.
func (t *Tracker) Spend(ctx context.Context, amount int) (int, error) {
	if amount < 0 {
		amount = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	current := t.baseline.Current(now, t.policy)
	newValue := max(0, current-amount)
	t.baseline = Baseline{Value: newValue, Timestamp: now}
	t.metrics.AddEnergySpent(current - newValue)

	return newValue, t.persist(ctx, "spend")
}

// Refill resets energy to the maximum
func (t *Tracker) Refill(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.baseline = Baseline{Value: t.policy.Max, Timestamp: t.clock.Now()}
	t.metrics.IncEnergyRefill()

	return t.policy.Max, t.persist(ctx, "refill")
}

// persist writes the baseline; the caller holds t.mu
func (t *Tracker) persist(ctx context.Context, op string) error {
	value := t.baseline.Value
	ts := t.baseline.Timestamp

	err := t.store.UpdateProgression(ctx, t.playerID, model.ProgressionPatch{
		EnergyCurrent:    &value,
		EnergyLastUpdate: &ts,
	})
	if err != nil {
		t.logger.Error("failed to persist energy",
			"player_id", t.playerID,
			"op", op,
			"value", value,
			"error", err,
		)
		t.metrics.IncWriteFailure("energy_" + op)
		return err
	}
	return nil
}
