package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/storage"
)

// ErrInjected is the default error returned by FaultyStore
var ErrInjected = errors.New("injected storage failure")

// FaultyStore wraps a Storage and fails selected operations on demand.
// Operations are named after the Storage method, e.g. "UpdateProgression".
type FaultyStore struct {
	storage.Storage

	mu       sync.Mutex
	failures map[string]error
	calls    map[string]int
}

// NewFaultyStore wraps inner
func NewFaultyStore(inner storage.Storage) *FaultyStore {
	return &FaultyStore{
		Storage:  inner,
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// FailOn makes op return err (ErrInjected when err is nil) until healed
func (f *FaultyStore) FailOn(op string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// Heal clears an injected failure
func (f *FaultyStore) Heal(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, op)
}

// Calls returns how many times op was invoked
func (f *FaultyStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyStore) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.failures[op]
}

func (f *FaultyStore) GetPlayers(ctx context.Context, ids []model.PlayerID) (map[model.PlayerID]*model.Player, error) {
	if err := f.check("GetPlayers"); err != nil {
		return nil, err
	}
	return f.Storage.GetPlayers(ctx, ids)
}

func (f *FaultyStore) GetProgression(ctx context.Context, id model.PlayerID) (*model.ProgressionRecord, error) {
	if err := f.check("GetProgression"); err != nil {
		return nil, err
	}
	return f.Storage.GetProgression(ctx, id)
}

func (f *FaultyStore) CreateProgression(ctx context.Context, rec *model.ProgressionRecord) error {
	if err := f.check("CreateProgression"); err != nil {
		return err
	}
	return f.Storage.CreateProgression(ctx, rec)
}

func (f *FaultyStore) UpdateProgression(ctx context.Context, id model.PlayerID, patch model.ProgressionPatch) error {
	if err := f.check("UpdateProgression"); err != nil {
		return err
	}
	return f.Storage.UpdateProgression(ctx, id, patch)
}

func (f *FaultyStore) ListProgression(ctx context.Context) ([]*model.ProgressionRecord, error) {
	if err := f.check("ListProgression"); err != nil {
		return nil, err
	}
	return f.Storage.ListProgression(ctx)
}

func (f *FaultyStore) AppendLoginEvent(ctx context.Context, event *model.DailyLoginEvent) error {
	if err := f.check("AppendLoginEvent"); err != nil {
		return err
	}
	return f.Storage.AppendLoginEvent(ctx, event)
}

func (f *FaultyStore) GetLoginEvent(ctx context.Context, id model.PlayerID, date model.Date) (*model.DailyLoginEvent, error) {
	if err := f.check("GetLoginEvent"); err != nil {
		return nil, err
	}
	return f.Storage.GetLoginEvent(ctx, id, date)
}

func (f *FaultyStore) GetLoginEvents(ctx context.Context, id model.PlayerID) ([]*model.DailyLoginEvent, error) {
	if err := f.check("GetLoginEvents"); err != nil {
		return nil, err
	}
	return f.Storage.GetLoginEvents(ctx, id)
}

func (f *FaultyStore) GetStreakSummary(ctx context.Context, id model.PlayerID) (*model.StreakSummary, error) {
	if err := f.check("GetStreakSummary"); err != nil {
		return nil, err
	}
	return f.Storage.GetStreakSummary(ctx, id)
}

func (f *FaultyStore) UpsertStreakSummary(ctx context.Context, summary *model.StreakSummary) error {
	if err := f.check("UpsertStreakSummary"); err != nil {
		return err
	}
	return f.Storage.UpsertStreakSummary(ctx, summary)
}

func (f *FaultyStore) AddPeriodPoints(ctx context.Context, period model.Period, key string, id model.PlayerID, points int) error {
	if err := f.check("AddPeriodPoints"); err != nil {
		return err
	}
	return f.Storage.AddPeriodPoints(ctx, period, key, id, points)
}

func (f *FaultyStore) GetPeriodPoints(ctx context.Context, period model.Period, key string) ([]model.PeriodPoints, error) {
	if err := f.check("GetPeriodPoints"); err != nil {
		return nil, err
	}
	return f.Storage.GetPeriodPoints(ctx, period, key)
}

func (f *FaultyStore) GetActiveSeason(ctx context.Context, asOf time.Time) (*model.Season, error) {
	if err := f.check("GetActiveSeason"); err != nil {
		return nil, err
	}
	return f.Storage.GetActiveSeason(ctx, asOf)
}
