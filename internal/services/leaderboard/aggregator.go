// Package leaderboard ranks players by the points they earned in a period.
package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/storage"
)

// PodiumSize is the number of entries shown on the podium
const PodiumSize = 3

// Config holds settings for the identity cache
type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultConfig returns default aggregator configuration
func DefaultConfig() Config {
	return Config{
		CacheSize: 1024,
		CacheTTL:  5 * time.Minute,
	}
}

// Leaderboard is one resolved ranking. It is derived per query and never stored.
type Leaderboard struct {
	Period  model.Period             `json:"period"`
	Key     string                   `json:"key,omitempty"`
	AsOf    time.Time                `json:"as_of"`
	Season  *model.Season            `json:"season,omitempty"`
	Entries []model.LeaderboardEntry `json:"entries"`
}

// Podium returns the top three entries
func (lb *Leaderboard) Podium() []model.LeaderboardEntry {
	return lb.Entries[:min(PodiumSize, len(lb.Entries))]
}

// Rest returns every entry below the podium
func (lb *Leaderboard) Rest() []model.LeaderboardEntry {
	return lb.Entries[min(PodiumSize, len(lb.Entries)):]
}

// Aggregator resolves leaderboard periods against pre-aggregated point totals
type Aggregator struct {
	store      storage.Storage
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	identities *identityCache
}

// New creates an Aggregator
func New(store storage.Storage, clock clock.Clock, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *Aggregator {
	defaults := DefaultConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	return &Aggregator{
		store:      store,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		identities: newIdentityCache(store, clock, logger, metrics, cfg.CacheSize, cfg.CacheTTL),
	}
}

// GetLeaderboard ranks the given period as of asOf. A zero asOf means now;
// limit <= 0 returns every entry. The limit is applied after ranking.
func (a *Aggregator) GetLeaderboard(ctx context.Context, period model.Period, asOf time.Time, limit int) (*Leaderboard, error) {
	start := a.clock.Now()
	if asOf.IsZero() {
		asOf = start
	}

	key, err := PeriodKey(period, asOf)
	if err != nil {
		return nil, err
	}
	lb := &Leaderboard{Period: period, Key: key, AsOf: asOf, Entries: []model.LeaderboardEntry{}}

	var current []model.PeriodPoints
	var previous map[model.PlayerID]int

	switch period {
	case model.PeriodSeason:
		season, err := a.store.GetActiveSeason(ctx, asOf)
		if errors.Is(err, model.ErrNoActiveSeason) {
			a.metrics.ObserveLeaderboard(string(period), a.clock.Now().Sub(start))
			return lb, nil
		}
		if err != nil {
			return nil, err
		}
		lb.Season = season
		lb.Key = season.ID
		if current, err = a.store.GetPeriodPoints(ctx, period, season.ID); err != nil {
			return nil, err
		}

	case model.PeriodAllTime:
		if current, err = a.allTime(ctx); err != nil {
			return nil, err
		}

	default:
		if current, previous, err = a.withPrevious(ctx, period, key, asOf); err != nil {
			return nil, err
		}
	}

	entries := Rank(current, previous)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	a.identities.enrich(ctx, entries)
	lb.Entries = entries

	a.metrics.ObserveLeaderboard(string(period), a.clock.Now().Sub(start))
	return lb, nil
}

// withPrevious fetches the current and preceding buckets concurrently.
// The preceding bucket only feeds rank changes, so its failure is logged
// and every rank change falls back to 0.
func (a *Aggregator) withPrevious(
	ctx context.Context,
	period model.Period,
	key string,
	asOf time.Time,
) ([]model.PeriodPoints, map[model.PlayerID]int, error) {
	var current []model.PeriodPoints
	var previous map[model.PlayerID]int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = a.store.GetPeriodPoints(gctx, period, key)
		return err
	})
	if prevKey, ok := previousKey(period, asOf); ok {
		g.Go(func() error {
			totals, err := a.store.GetPeriodPoints(gctx, period, prevKey)
			if err != nil {
				a.logger.Warn("previous period unavailable", "period", period, "key", prevKey, "error", err)
				return nil
			}
			previous = rankIndex(totals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return current, previous, nil
}

func (a *Aggregator) allTime(ctx context.Context) ([]model.PeriodPoints, error) {
	records, err := a.store.ListProgression(ctx)
	if err != nil {
		return nil, err
	}
	totals := make([]model.PeriodPoints, len(records))
	for i, rec := range records {
		totals[i] = model.PeriodPoints{PlayerID: rec.PlayerID, Points: max(rec.TotalPoints, 0)}
	}
	return totals, nil
}

// ForgetPlayer drops a player's cached identity
func (a *Aggregator) ForgetPlayer(id model.PlayerID) {
	a.identities.invalidate(id)
}
