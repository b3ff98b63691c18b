package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Progression hash fields
const (
	fieldPlayerID         = "player_id"
	fieldXP               = "xp"
	fieldEnergyCurrent    = "energy_current"
	fieldEnergyLastUpdate = "energy_last_update"
	fieldSeasonPoints     = "season_points"
	fieldTotalPoints      = "total_points"
	fieldCreatedAt        = "created_at"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.playerKey(player.ID), data, 0).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayers(ctx context.Context, ids []model.PlayerID) (map[model.PlayerID]*model.Player, error) {
	result := make(map[model.PlayerID]*model.Player, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.playerKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Missing player
		}
		var player model.Player
		if err := json.Unmarshal([]byte(str), &player); err != nil {
			continue // Skip invalid data
		}
		result[player.ID] = &player
	}
	return result, nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.registeredPlayerKey(rp.PlayerID), data, 0)
	pipe.Set(ctx, s.usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	data, err := s.client.Get(ctx, s.registeredPlayerKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var rp model.RegisteredPlayer
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	playerIDStr, err := s.client.Get(ctx, s.usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Progression operations
//
// Records are stored as hashes so a patch touches only its own fields.

func (s *Storage) GetProgression(ctx context.Context, id model.PlayerID) (*model.ProgressionRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.progressionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrProgressionNotFound
	}
	rec := decodeProgression(fields)
	rec.PlayerID = id
	return rec, nil
}

func (s *Storage) CreateProgression(ctx context.Context, rec *model.ProgressionRecord) error {
	key := s.progressionKey(rec.PlayerID)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, encodeProgression(rec))
	pipe.SAdd(ctx, s.progressionIndexKey(), string(rec.PlayerID))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdateProgression(ctx context.Context, id model.PlayerID, patch model.ProgressionPatch) error {
	key := s.progressionKey(id)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrProgressionNotFound
	}

	values := encodePatch(patch)
	if len(values) == 0 {
		return nil
	}
	return s.client.HSet(ctx, key, values).Err()
}

func (s *Storage) ListProgression(ctx context.Context) ([]*model.ProgressionRecord, error) {
	ids, err := s.client.SMembers(ctx, s.progressionIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.progressionKey(model.PlayerID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	records := make([]*model.ProgressionRecord, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		rec := decodeProgression(fields)
		rec.PlayerID = model.PlayerID(ids[i])
		records = append(records, rec)
	}
	return records, nil
}

func encodeProgression(rec *model.ProgressionRecord) map[string]any {
	values := map[string]any{
		fieldPlayerID:         string(rec.PlayerID),
		fieldXP:               rec.XP,
		fieldEnergyLastUpdate: formatTime(rec.EnergyLastUpdate),
		fieldSeasonPoints:     rec.SeasonPoints,
		fieldTotalPoints:      rec.TotalPoints,
		fieldCreatedAt:        formatTime(rec.CreatedAt),
	}
	if rec.EnergyCurrent != nil {
		values[fieldEnergyCurrent] = *rec.EnergyCurrent
	}
	return values
}

func encodePatch(patch model.ProgressionPatch) map[string]any {
	values := make(map[string]any)
	if patch.XP != nil {
		values[fieldXP] = *patch.XP
	}
	if patch.EnergyCurrent != nil {
		values[fieldEnergyCurrent] = *patch.EnergyCurrent
	}
	if patch.EnergyLastUpdate != nil {
		values[fieldEnergyLastUpdate] = formatTime(*patch.EnergyLastUpdate)
	}
	if patch.SeasonPoints != nil {
		values[fieldSeasonPoints] = *patch.SeasonPoints
	}
	if patch.TotalPoints != nil {
		values[fieldTotalPoints] = *patch.TotalPoints
	}
	return values
}

// decodeProgression tolerates missing or malformed fields; they decode to
// zero values (or nil energy) and are coalesced later by Normalize
func decodeProgression(fields map[string]string) *model.ProgressionRecord {
	rec := &model.ProgressionRecord{
		PlayerID:         model.PlayerID(fields[fieldPlayerID]),
		XP:               parseInt(fields[fieldXP]),
		EnergyLastUpdate: parseTime(fields[fieldEnergyLastUpdate]),
		SeasonPoints:     parseInt(fields[fieldSeasonPoints]),
		TotalPoints:      parseInt(fields[fieldTotalPoints]),
		CreatedAt:        parseTime(fields[fieldCreatedAt]),
	}
	if raw, ok := fields[fieldEnergyCurrent]; ok {
		if v, err := strconv.Atoi(raw); err == nil {
			rec.EnergyCurrent = &v
		}
	}
	return rec
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Login log operations

func (s *Storage) AppendLoginEvent(ctx context.Context, event *model.DailyLoginEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// HSETNX keeps the log append-only: an existing day is never overwritten
	created, err := s.client.HSetNX(ctx, s.loginLogKey(event.PlayerID), string(event.LoginDate), data).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrLoginEventExists
	}
	return nil
}

func (s *Storage) GetLoginEvent(ctx context.Context, id model.PlayerID, date model.Date) (*model.DailyLoginEvent, error) {
	data, err := s.client.HGet(ctx, s.loginLogKey(id), string(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLoginEventNotFound
		}
		return nil, err
	}

	var event model.DailyLoginEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Storage) GetLoginEvents(ctx context.Context, id model.PlayerID) ([]*model.DailyLoginEvent, error) {
	values, err := s.client.HVals(ctx, s.loginLogKey(id)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*model.DailyLoginEvent, 0, len(values))
	for _, val := range values {
		var event model.DailyLoginEvent
		if err := json.Unmarshal([]byte(val), &event); err != nil {
			continue // Skip invalid data
		}
		events = append(events, &event)
	}
	return events, nil
}

func (s *Storage) GetStreakSummary(ctx context.Context, id model.PlayerID) (*model.StreakSummary, error) {
	data, err := s.client.Get(ctx, s.streakKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrStreakNotFound
		}
		return nil, err
	}

	var summary model.StreakSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Storage) UpsertStreakSummary(ctx context.Context, summary *model.StreakSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.streakKey(summary.PlayerID), data, 0).Err()
}

// Period points operations

func (s *Storage) AddPeriodPoints(ctx context.Context, period model.Period, key string, id model.PlayerID, points int) error {
	zkey := s.periodPointsKey(period, key)

	pipe := s.client.TxPipeline()
	pipe.ZIncrBy(ctx, zkey, float64(points), string(id))
	if ttl := s.periodTTL(period); ttl > 0 {
		pipe.Expire(ctx, zkey, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPeriodPoints(ctx context.Context, period model.Period, key string) ([]model.PeriodPoints, error) {
	members, err := s.client.ZRangeWithScores(ctx, s.periodPointsKey(period, key), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	result := make([]model.PeriodPoints, 0, len(members))
	for _, z := range members {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		result = append(result, model.PeriodPoints{PlayerID: model.PlayerID(id), Points: int(z.Score)})
	}
	return result, nil
}

func (s *Storage) periodTTL(period model.Period) time.Duration {
	switch period {
	case model.PeriodDaily:
		return s.cfg.DailyPointsTTL
	case model.PeriodWeekly:
		return s.cfg.WeeklyPointsTTL
	default:
		return 0
	}
}

// Season operations

func (s *Storage) SaveSeason(ctx context.Context, season *model.Season) error {
	data, err := json.Marshal(season)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.seasonsKey(), season.ID, data).Err()
}

func (s *Storage) GetActiveSeason(ctx context.Context, asOf time.Time) (*model.Season, error) {
	seasons, err := s.ListSeasons(ctx)
	if err != nil {
		return nil, err
	}
	return storage.PickActiveSeason(seasons, asOf)
}

func (s *Storage) ListSeasons(ctx context.Context) ([]*model.Season, error) {
	values, err := s.client.HVals(ctx, s.seasonsKey()).Result()
	if err != nil {
		return nil, err
	}

	seasons := make([]*model.Season, 0, len(values))
	for _, val := range values {
		var season model.Season
		if err := json.Unmarshal([]byte(val), &season); err != nil {
			continue // Skip invalid data
		}
		seasons = append(seasons, &season)
	}
	sort.Slice(seasons, func(i, j int) bool {
		return seasons[i].StartsAt.Before(seasons[j].StartsAt)
	})
	return seasons, nil
}
