package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state
// with the store.
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	progression       map[model.PlayerID]*model.ProgressionRecord
	loginEvents       map[model.PlayerID]map[model.Date]*model.DailyLoginEvent
	streaks           map[model.PlayerID]*model.StreakSummary
	periodPoints      map[periodKey]map[model.PlayerID]int
	seasons           map[string]*model.Season
}

type periodKey struct {
	period model.Period
	key    string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		progression:       make(map[model.PlayerID]*model.ProgressionRecord),
		loginEvents:       make(map[model.PlayerID]map[model.Date]*model.DailyLoginEvent),
		streaks:           make(map[model.PlayerID]*model.StreakSummary),
		periodPoints:      make(map[periodKey]map[model.PlayerID]int),
		seasons:           make(map[string]*model.Season),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayers(ctx context.Context, ids []model.PlayerID) (map[model.PlayerID]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[model.PlayerID]*model.Player, len(ids))
	for _, id := range ids {
		if player, ok := s.players[id]; ok {
			p := *player
			result[id] = &p
		}
	}
	return result, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *rp
	s.registeredPlayers[rp.PlayerID] = &r
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	playerID, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetRegisteredPlayer(ctx, playerID)
}

// Progression operations

func (s *Storage) GetProgression(ctx context.Context, id model.PlayerID) (*model.ProgressionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.progression[id]
	if !ok {
		return nil, model.ErrProgressionNotFound
	}
	return copyProgression(rec), nil
}

func (s *Storage) CreateProgression(ctx context.Context, rec *model.ProgressionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progression[rec.PlayerID] = copyProgression(rec)
	return nil
}

func (s *Storage) UpdateProgression(ctx context.Context, id model.PlayerID, patch model.ProgressionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.progression[id]
	if !ok {
		return model.ErrProgressionNotFound
	}
	patch.Apply(rec)
	return nil
}

func (s *Storage) ListProgression(ctx context.Context) ([]*model.ProgressionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*model.ProgressionRecord, 0, len(s.progression))
	for _, rec := range s.progression {
		records = append(records, copyProgression(rec))
	}
	return records, nil
}

func copyProgression(rec *model.ProgressionRecord) *model.ProgressionRecord {
	c := *rec
	if rec.EnergyCurrent != nil {
		v := *rec.EnergyCurrent
		c.EnergyCurrent = &v
	}
	return &c
}

// Login log operations

func (s *Storage) AppendLoginEvent(ctx context.Context, event *model.DailyLoginEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	days, ok := s.loginEvents[event.PlayerID]
	if !ok {
		days = make(map[model.Date]*model.DailyLoginEvent)
		s.loginEvents[event.PlayerID] = days
	}
	if _, exists := days[event.LoginDate]; exists {
		return model.ErrLoginEventExists
	}
	e := *event
	days[event.LoginDate] = &e
	return nil
}

func (s *Storage) GetLoginEvent(ctx context.Context, id model.PlayerID, date model.Date) (*model.DailyLoginEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.loginEvents[id][date]
	if !ok {
		return nil, model.ErrLoginEventNotFound
	}
	e := *event
	return &e, nil
}

func (s *Storage) GetLoginEvents(ctx context.Context, id model.PlayerID) ([]*model.DailyLoginEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days := s.loginEvents[id]
	events := make([]*model.DailyLoginEvent, 0, len(days))
	for _, event := range days {
		e := *event
		events = append(events, &e)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].LoginDate < events[j].LoginDate
	})
	return events, nil
}

func (s *Storage) GetStreakSummary(ctx context.Context, id model.PlayerID) (*model.StreakSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.streaks[id]
	if !ok {
		return nil, model.ErrStreakNotFound
	}
	sum := *summary
	return &sum, nil
}

func (s *Storage) UpsertStreakSummary(ctx context.Context, summary *model.StreakSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := *summary
	s.streaks[summary.PlayerID] = &sum
	return nil
}

// Period points operations

func (s *Storage) AddPeriodPoints(ctx context.Context, period model.Period, key string, id model.PlayerID, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := periodKey{period: period, key: key}
	bucket, ok := s.periodPoints[pk]
	if !ok {
		bucket = make(map[model.PlayerID]int)
		s.periodPoints[pk] = bucket
	}
	bucket[id] += points
	return nil
}

func (s *Storage) GetPeriodPoints(ctx context.Context, period model.Period, key string) ([]model.PeriodPoints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.periodPoints[periodKey{period: period, key: key}]
	result := make([]model.PeriodPoints, 0, len(bucket))
	for id, points := range bucket {
		result = append(result, model.PeriodPoints{PlayerID: id, Points: points})
	}
	return result, nil
}

// Season operations

func (s *Storage) SaveSeason(ctx context.Context, season *model.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	se := *season
	s.seasons[season.ID] = &se
	return nil
}

func (s *Storage) GetActiveSeason(ctx context.Context, asOf time.Time) (*model.Season, error) {
	seasons, err := s.ListSeasons(ctx)
	if err != nil {
		return nil, err
	}
	return storage.PickActiveSeason(seasons, asOf)
}

func (s *Storage) ListSeasons(ctx context.Context) ([]*model.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seasons := make([]*model.Season, 0, len(s.seasons))
	for _, season := range s.seasons {
		se := *season
		seasons = append(seasons, &se)
	}
	sort.Slice(seasons, func(i, j int) bool {
		return seasons[i].StartsAt.Before(seasons[j].StartsAt)
	})
	return seasons, nil
}
