// Package storagetest holds a behavioural suite every storage backend must pass.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Suite exercises the storage.Storage contract. Backends embed it and set
// NewStorage in their own SetupTest before calling Suite.SetupTest.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

var t0 = time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
}

func intPtr(v int) *int { return &v }

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", Username: "alice", DisplayName: "Alice", CreatedAt: t0}
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, player))

	retrieved, err := s.Store.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal("Alice", retrieved.DisplayName)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayersOmitsMissing() {
	_ = s.Store.SavePlayer(s.Ctx, &model.Player{ID: "p1", Username: "alice"})
	_ = s.Store.SavePlayer(s.Ctx, &model.Player{ID: "p2", Username: "bob"})

	players, err := s.Store.GetPlayers(s.Ctx, []model.PlayerID{"p1", "p2", "ghost"})
	s.Require().NoError(err)
	s.Len(players, 2)
	s.Equal("bob", players["p2"].Username)
}

func (s *Suite) TestGetPlayersEmpty() {
	players, err := s.Store.GetPlayers(s.Ctx, nil)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{PlayerID: "player-1", Username: "alice", PasswordHash: "hash"}
	s.Require().NoError(s.Store.SaveRegisteredPlayer(s.Ctx, rp))

	retrieved, err := s.Store.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), retrieved.PlayerID)

	_, err = s.Store.GetRegisteredPlayerByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Progression tests

func (s *Suite) TestCreateAndGetProgression() {
	rec := model.NewProgressionRecord("player-1", 100, t0)
	s.Require().NoError(s.Store.CreateProgression(s.Ctx, rec))

	retrieved, err := s.Store.GetProgression(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(0, retrieved.XP)
	s.Require().NotNil(retrieved.EnergyCurrent)
	s.Equal(100, *retrieved.EnergyCurrent)
	s.True(t0.Equal(retrieved.EnergyLastUpdate))
}

func (s *Suite) TestGetProgressionNotFound() {
	_, err := s.Store.GetProgression(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProgressionNotFound)
}

func (s *Suite) TestUpdateProgressionWritesOnlyPatchedFields() {
	_ = s.Store.CreateProgression(s.Ctx, model.NewProgressionRecord("player-1", 100, t0))

	later := t0.Add(time.Hour)
	err := s.Store.UpdateProgression(s.Ctx, "player-1", model.ProgressionPatch{
		EnergyCurrent:    intPtr(33),
		EnergyLastUpdate: &later,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.Store.UpdateProgression(s.Ctx, "player-1", model.ProgressionPatch{XP: intPtr(250)}))

	retrieved, err := s.Store.GetProgression(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(250, retrieved.XP)
	s.Equal(33, *retrieved.EnergyCurrent)
	s.True(later.Equal(retrieved.EnergyLastUpdate))
	s.Equal(0, retrieved.TotalPoints)
}

func (s *Suite) TestUpdateProgressionNotFound() {
	err := s.Store.UpdateProgression(s.Ctx, "nonexistent", model.ProgressionPatch{XP: intPtr(1)})
	s.ErrorIs(err, model.ErrProgressionNotFound)
}

func (s *Suite) TestReturnedProgressionIsNotShared() {
	_ = s.Store.CreateProgression(s.Ctx, model.NewProgressionRecord("player-1", 100, t0))

	first, _ := s.Store.GetProgression(s.Ctx, "player-1")
	first.XP = 999
	*first.EnergyCurrent = 1

	second, err := s.Store.GetProgression(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(0, second.XP)
	s.Equal(100, *second.EnergyCurrent)
}

func (s *Suite) TestListProgression() {
	_ = s.Store.CreateProgression(s.Ctx, model.NewProgressionRecord("p1", 100, t0))
	_ = s.Store.CreateProgression(s.Ctx, model.NewProgressionRecord("p2", 100, t0))

	records, err := s.Store.ListProgression(s.Ctx)
	s.Require().NoError(err)
	s.Len(records, 2)
}

// Login log tests

func (s *Suite) TestAppendAndGetLoginEvent() {
	event := &model.DailyLoginEvent{
		PlayerID:               "player-1",
		LoginDate:              "2024-01-04",
		StreakDayOfWeek:        3,
		BonusXP:                25,
		ConsecutiveDaysAtLogin: 4,
		CreatedAt:              t0,
	}
	s.Require().NoError(s.Store.AppendLoginEvent(s.Ctx, event))

	retrieved, err := s.Store.GetLoginEvent(s.Ctx, "player-1", "2024-01-04")
	s.Require().NoError(err)
	s.Equal(3, retrieved.StreakDayOfWeek)
	s.Equal(25, retrieved.BonusXP)
	s.Equal(4, retrieved.ConsecutiveDaysAtLogin)
}

func (s *Suite) TestAppendLoginEventIsAppendOnly() {
	first := &model.DailyLoginEvent{PlayerID: "player-1", LoginDate: "2024-01-04", BonusXP: 10}
	second := &model.DailyLoginEvent{PlayerID: "player-1", LoginDate: "2024-01-04", BonusXP: 50}

	s.Require().NoError(s.Store.AppendLoginEvent(s.Ctx, first))
	s.ErrorIs(s.Store.AppendLoginEvent(s.Ctx, second), model.ErrLoginEventExists)

	retrieved, err := s.Store.GetLoginEvent(s.Ctx, "player-1", "2024-01-04")
	s.Require().NoError(err)
	s.Equal(10, retrieved.BonusXP)
}

func (s *Suite) TestGetLoginEventNotFound() {
	_, err := s.Store.GetLoginEvent(s.Ctx, "player-1", "2024-01-04")
	s.ErrorIs(err, model.ErrLoginEventNotFound)
}

func (s *Suite) TestGetLoginEventsPerPlayer() {
	for _, d := range []model.Date{"2024-01-01", "2024-01-02", "2024-01-03"} {
		_ = s.Store.AppendLoginEvent(s.Ctx, &model.DailyLoginEvent{PlayerID: "player-1", LoginDate: d})
	}
	_ = s.Store.AppendLoginEvent(s.Ctx, &model.DailyLoginEvent{PlayerID: "player-2", LoginDate: "2024-01-01"})

	events, err := s.Store.GetLoginEvents(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Len(events, 3)

	events, err = s.Store.GetLoginEvents(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *Suite) TestStreakSummaryUpsert() {
	_, err := s.Store.GetStreakSummary(s.Ctx, "player-1")
	s.ErrorIs(err, model.ErrStreakNotFound)

	summary := &model.StreakSummary{PlayerID: "player-1", CurrentStreak: 3, BestStreak: 5, LastLoginDate: "2024-01-03"}
	s.Require().NoError(s.Store.UpsertStreakSummary(s.Ctx, summary))

	summary.CurrentStreak = 4
	summary.LastLoginDate = "2024-01-04"
	s.Require().NoError(s.Store.UpsertStreakSummary(s.Ctx, summary))

	retrieved, err := s.Store.GetStreakSummary(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(4, retrieved.CurrentStreak)
	s.Equal(5, retrieved.BestStreak)
	s.Equal(model.Date("2024-01-04"), retrieved.LastLoginDate)
}

// Period points tests

func (s *Suite) TestAddPeriodPointsAccumulates() {
	s.Require().NoError(s.Store.AddPeriodPoints(s.Ctx, model.PeriodWeekly, "2024-W01", "p1", 10))
	s.Require().NoError(s.Store.AddPeriodPoints(s.Ctx, model.PeriodWeekly, "2024-W01", "p1", 15))
	s.Require().NoError(s.Store.AddPeriodPoints(s.Ctx, model.PeriodWeekly, "2024-W01", "p2", 7))
	s.Require().NoError(s.Store.AddPeriodPoints(s.Ctx, model.PeriodWeekly, "2024-W02", "p1", 100))
	s.Require().NoError(s.Store.AddPeriodPoints(s.Ctx, model.PeriodDaily, "2024-W01", "p1", 100))

	points, err := s.Store.GetPeriodPoints(s.Ctx, model.PeriodWeekly, "2024-W01")
	s.Require().NoError(err)
	s.ElementsMatch([]model.PeriodPoints{
		{PlayerID: "p1", Points: 25},
		{PlayerID: "p2", Points: 7},
	}, points)
}

func (s *Suite) TestGetPeriodPointsEmpty() {
	points, err := s.Store.GetPeriodPoints(s.Ctx, model.PeriodDaily, "2024-01-04")
	s.Require().NoError(err)
	s.Empty(points)
}

// Season tests

func (s *Suite) TestActiveSeasonHalfOpenWindow() {
	season := &model.Season{ID: "s1", Name: "Winter", StartsAt: t0, EndsAt: t0.AddDate(0, 1, 0)}
	s.Require().NoError(s.Store.SaveSeason(s.Ctx, season))

	active, err := s.Store.GetActiveSeason(s.Ctx, t0)
	s.Require().NoError(err)
	s.Equal("s1", active.ID)

	_, err = s.Store.GetActiveSeason(s.Ctx, season.EndsAt)
	s.ErrorIs(err, model.ErrNoActiveSeason)

	_, err = s.Store.GetActiveSeason(s.Ctx, t0.Add(-time.Second))
	s.ErrorIs(err, model.ErrNoActiveSeason)
}

func (s *Suite) TestListSeasons() {
	_ = s.Store.SaveSeason(s.Ctx, &model.Season{ID: "s2", StartsAt: t0.AddDate(0, 1, 0), EndsAt: t0.AddDate(0, 2, 0)})
	_ = s.Store.SaveSeason(s.Ctx, &model.Season{ID: "s1", StartsAt: t0, EndsAt: t0.AddDate(0, 1, 0)})

	seasons, err := s.Store.ListSeasons(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(seasons, 2)
	s.Equal("s1", seasons[0].ID)
	s.Equal("s2", seasons[1].ID)
}
