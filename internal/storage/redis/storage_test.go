package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/storage"
	"github.com/mcoot/wyrgame/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())

		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})

		cfg := DefaultConfig()
		cfg.DailyPointsTTL = time.Hour
		cfg.WeeklyPointsTTL = 2 * time.Hour

		s.storage = NewWithClient(client, cfg)
		return s.storage
	}
	s.Suite.SetupTest()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestMissingEnergyFieldDecodesAsNil() {
	key := s.storage.progressionKey("player-1")
	s.mini.HSet(key, fieldXP, "120", fieldSeasonPoints, "garbage")

	rec, err := s.storage.GetProgression(context.Background(), "player-1")
	s.Require().NoError(err)
	s.Equal(120, rec.XP)
	s.Equal(0, rec.SeasonPoints)
	s.Nil(rec.EnergyCurrent)
	s.True(rec.EnergyLastUpdate.IsZero())
	s.Equal(model.PlayerID("player-1"), rec.PlayerID)
}

func (s *StorageSuite) TestLoginLogHasNoTTL() {
	event := &model.DailyLoginEvent{PlayerID: "player-1", LoginDate: "2024-01-04"}
	s.Require().NoError(s.storage.AppendLoginEvent(s.Ctx, event))

	ttl := s.mini.TTL(s.storage.loginLogKey("player-1"))
	s.Equal(time.Duration(0), ttl, "Login log should never expire")
}

func (s *StorageSuite) TestPeriodPointsTTL() {
	_ = s.storage.AddPeriodPoints(s.Ctx, model.PeriodDaily, "2024-01-04", "p1", 5)
	_ = s.storage.AddPeriodPoints(s.Ctx, model.PeriodWeekly, "2024-W01", "p1", 5)
	_ = s.storage.AddPeriodPoints(s.Ctx, model.PeriodSeason, "s1", "p1", 5)

	s.Equal(time.Hour, s.mini.TTL(s.storage.periodPointsKey(model.PeriodDaily, "2024-01-04")))
	s.Equal(2*time.Hour, s.mini.TTL(s.storage.periodPointsKey(model.PeriodWeekly, "2024-W01")))
	s.Equal(time.Duration(0), s.mini.TTL(s.storage.periodPointsKey(model.PeriodSeason, "s1")))
}

func (s *StorageSuite) TestKeysAreNamespaced() {
	_ = s.storage.SavePlayer(s.Ctx, &model.Player{ID: "player-1"})
	s.True(s.mini.Exists("wyr:player:player-1"))
}
