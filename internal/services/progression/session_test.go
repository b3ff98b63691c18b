package progression

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wyrgame/internal/dependencies/mocks"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/services/energy"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/services/scoring"
	"github.com/mcoot/wyrgame/internal/services/streak"
	"github.com/mcoot/wyrgame/internal/storage/memory"
	"github.com/mcoot/wyrgame/internal/testutil"
)

var t0 = time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)

type SessionSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *mocks.MockClock
	store     *testutil.FaultyStore
	bootstrap *Bootstrapper
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(t0)
	s.store = testutil.NewFaultyStore(memory.New())

	logger := testutil.NopLogger()
	metrics := observability.NewNop()
	policy := energy.DefaultPolicy()

	xp := experience.New(s.store, s.clock, logger, metrics, nil, policy.Max)
	ledger := streak.New(s.store, xp, s.clock, logger, metrics, streak.DefaultConfig())
	points := scoring.New(s.store, s.clock, logger, metrics)
	s.bootstrap = NewBootstrapper(s.store, xp, ledger, points, s.clock, logger, metrics, policy, DefaultRules())
}

func (s *SessionSuite) record() *model.ProgressionRecord {
	rec, err := s.store.GetProgression(s.ctx, "p1")
	s.Require().NoError(err)
	return rec
}

func (s *SessionSuite) TestStartCreatesDefaultsAndAwardsLogin() {
	session := s.bootstrap.Start(s.ctx, "p1")

	s.Require().NotNil(session.LoginReward)
	s.Equal(1, session.LoginReward.ConsecutiveDays)
	s.Equal(100, session.Energy().Current())

	rec := s.record()
	s.Equal(10, rec.XP)
	s.Equal(100, rec.Energy(100))
}

func (s *SessionSuite) TestSecondStartSameDayHasNoReward() {
	s.bootstrap.Start(s.ctx, "p1")
	s.clock.Advance(time.Hour)

	session := s.bootstrap.Start(s.ctx, "p1")

	s.Nil(session.LoginReward)
	s.Equal(10, s.record().XP)
}

func (s *SessionSuite) TestStartCoalescesMissingEnergy() {
	s.Require().NoError(s.store.CreateProgression(s.ctx, &model.ProgressionRecord{PlayerID: "p1", XP: 50}))

	session := s.bootstrap.Start(s.ctx, "p1")

	s.Equal(100, session.Energy().Current())
}

func (s *SessionSuite) TestStartResumesStoredEnergy() {
	energyValue := 40
	s.Require().NoError(s.store.CreateProgression(s.ctx, &model.ProgressionRecord{
		PlayerID:         "p1",
		EnergyCurrent:    &energyValue,
		EnergyLastUpdate: t0.Add(-9 * time.Minute),
	}))

	session := s.bootstrap.Start(s.ctx, "p1")

	s.Equal(43, session.Energy().Current())
}

func (s *SessionSuite) TestStartSurvivesStoreOutage() {
	s.store.FailOn("GetProgression", nil)
	s.store.FailOn("GetLoginEvent", nil)

	session := s.bootstrap.Start(s.ctx, "p1")

	s.Require().NotNil(session)
	s.Nil(session.LoginReward)
	s.Equal(100, session.Energy().Current())
}

func (s *SessionSuite) TestPlaySpendsEnergyAndAwards() {
	session := s.bootstrap.Start(s.ctx, "p1")

	result, err := session.Play(s.ctx)

	s.Require().NoError(err)
	s.False(result.Degraded)
	s.Equal(90, result.Energy)
	s.Equal(10, result.Points)
	s.Require().NotNil(result.Award)
	s.Equal(5, result.Award.Amount)

	rec := s.record()
	s.Equal(15, rec.XP)
	s.Equal(90, rec.Energy(100))
	s.Equal(10, rec.TotalPoints)

	daily, err := s.store.GetPeriodPoints(s.ctx, model.PeriodDaily, "2024-01-04")
	s.Require().NoError(err)
	s.Equal([]model.PeriodPoints{{PlayerID: "p1", Points: 10}}, daily)
}

func (s *SessionSuite) TestPlayRejectedWithoutEnergy() {
	energyValue := 9
	s.Require().NoError(s.store.CreateProgression(s.ctx, &model.ProgressionRecord{
		PlayerID:         "p1",
		EnergyCurrent:    &energyValue,
		EnergyLastUpdate: t0,
	}))
	session := s.bootstrap.Start(s.ctx, "p1")

	_, err := session.Play(s.ctx)
	s.ErrorIs(err, model.ErrInsufficientEnergy)
	s.Equal(9, session.Energy().Current())

	s.clock.Advance(3 * time.Minute)
	_, err = session.Play(s.ctx)
	s.NoError(err)
	s.Equal(0, session.Energy().Current())
}

func (s *SessionSuite) TestPlayBookkeepingFailureDoesNotFailPlay() {
	session := s.bootstrap.Start(s.ctx, "p1")
	s.store.FailOn("UpdateProgression", nil)

	result, err := session.Play(s.ctx)

	s.Require().NoError(err)
	s.True(result.Degraded)
	s.Equal(90, result.Energy)
	s.Equal(90, session.Energy().Current())
}

func (s *SessionSuite) TestSnapshot() {
	session := s.bootstrap.Start(s.ctx, "p1")
	_, err := session.Play(s.ctx)
	s.Require().NoError(err)
	s.clock.Advance(4 * time.Minute)

	snap, err := session.Snapshot(s.ctx)

	s.Require().NoError(err)
	s.Equal(15, snap.XP)
	s.Equal(1, snap.Level.Current.Level)
	s.InDelta(0.15, snap.Level.Progress, 1e-9)
	s.Equal(91, snap.Energy.Current)
	s.Equal(100, snap.Energy.Max)
	s.Require().NotNil(snap.Streak)
	s.True(snap.Streak.LoggedInToday)
	s.Equal(1, snap.Streak.CurrentStreak)
	s.Equal(10, snap.TotalPoints)
}

func (s *SessionSuite) TestSnapshotReturnsStoreError() {
	session := s.bootstrap.Start(s.ctx, "p1")
	s.store.FailOn("GetProgression", nil)

	_, err := session.Snapshot(s.ctx)

	s.ErrorIs(err, testutil.ErrInjected)
}

func (s *SessionSuite) TestRefillThroughSession() {
	session := s.bootstrap.Start(s.ctx, "p1")
	_, _ = session.Play(s.ctx)

	value, err := session.Energy().Refill(s.ctx)

	s.Require().NoError(err)
	s.Equal(100, value)
	s.Equal(100, s.record().Energy(100))
}
