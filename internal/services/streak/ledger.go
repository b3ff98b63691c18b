// Package streak detects daily-login continuity and awards login bonuses.
package streak

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/mcoot/wyrgame/internal/dependencies/clock"
	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/observability"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/storage"
)

// Awarder adds XP to a player
type Awarder interface {
	Award(ctx context.Context, playerID model.PlayerID, amount int, reason string) (*experience.Award, error)
}

// Config holds the bonus tables for the ledger
type Config struct {
	// DailyBonuses is indexed by the day of the seven-day cycle
	DailyBonuses [CycleLength]int
	// Milestones maps a streak length to its one-time bonus
	Milestones map[int]int
}

// DefaultConfig returns the standard bonus tables
func DefaultConfig() Config {
	return Config{
		DailyBonuses: [CycleLength]int{10, 15, 20, 25, 30, 40, 50},
		Milestones: map[int]int{
			7:   100,
			30:  500,
			100: 2000,
		},
	}
}

// Milestone is a streak length reached for the first time today
type Milestone struct {
	Days    int `json:"days"`
	BonusXP int `json:"bonus_xp"`
}

// Reward is what a first login of the day earns
type Reward struct {
	Date            model.Date            `json:"date"`
	BonusXP         int                   `json:"bonus_xp"`
	StreakDay       int                   `json:"streak_day"`
	ConsecutiveDays int                   `json:"consecutive_days"`
	WeekDays        [CycleLength]DayState `json:"week_days"`
	Milestone       *Milestone            `json:"milestone,omitempty"`
	TotalXP         int                   `json:"total_xp"`
}

// Status is the streak as seen today
type Status struct {
	model.StreakSummary
	LoggedInToday bool `json:"logged_in_today"`
	// Alive is false once a full calendar day has passed without a login
	Alive bool `json:"alive"`
}

// Ledger records daily logins against the append-only login log
type Ledger struct {
	store   storage.LoginLog
	awarder Awarder
	clock   clock.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	config  Config
}

// New creates a Ledger
func New(
	store storage.LoginLog,
	awarder Awarder,
	clock clock.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
	config Config,
) *Ledger {
	if config.Milestones == nil {
		config.Milestones = map[int]int{}
	}
	return &Ledger{
		store:   store,
		awarder: awarder,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		config:  config,
	}
}

// RecordDailyLogin awards the day's bonus on the first call of a calendar
// day and returns nil on every later call that day.
//
// Once the streak is computed, appending the event, updating the summary and
// awarding XP are attempted independently: a failure in one is logged and
// does not stop the others. The log stays authoritative and the summary can
// be rebuilt from it.
func (l *Ledger) RecordDailyLogin(ctx context.Context, playerID model.PlayerID) (*Reward, error) {
	now := l.clock.Now()
	today := model.DateOf(now)

	_, err := l.store.GetLoginEvent(ctx, playerID, today)
	if err == nil {
		l.metrics.IncDailyLogin("repeat")
		return nil, nil
	}
	if !errors.Is(err, model.ErrLoginEventNotFound) {
		return nil, err
	}

	events, err := l.store.GetLoginEvents(ctx, playerID)
	if err != nil {
		return nil, err
	}
	dates := make([]model.Date, len(events))
	for i, e := range events {
		dates[i] = e.LoginDate
	}

	consecutive := WalkConsecutive(dates, today.AddDays(-1))
	streakDay := consecutive % CycleLength
	newStreak := consecutive + 1

	reward := &Reward{
		Date:            today,
		BonusXP:         l.config.DailyBonuses[streakDay],
		StreakDay:       streakDay,
		ConsecutiveDays: newStreak,
		WeekDays:        WeekDays(streakDay),
	}

	err = l.store.AppendLoginEvent(ctx, &model.DailyLoginEvent{
		PlayerID:               playerID,
		LoginDate:              today,
		StreakDayOfWeek:        streakDay,
		BonusXP:                reward.BonusXP,
		ConsecutiveDaysAtLogin: newStreak,
		CreatedAt:              now,
	})
	if errors.Is(err, model.ErrLoginEventExists) {
		// another session got there first and owns today's bonus
		l.metrics.IncDailyLogin("repeat")
		return nil, nil
	}
	if err != nil {
		l.stepFailed(playerID, "append_event", err)
	}

	if err := l.updateSummary(ctx, playerID, newStreak, today); err != nil {
		l.stepFailed(playerID, "upsert_summary", err)
	}

	if bonus, ok := l.config.Milestones[newStreak]; ok {
		reward.Milestone = &Milestone{Days: newStreak, BonusXP: bonus}
		l.metrics.IncStreakMilestone(newStreak)
		l.logger.Info("streak milestone reached", "player_id", playerID, "days", newStreak)
	}

	reward.TotalXP = reward.BonusXP
	if reward.Milestone != nil {
		reward.TotalXP += reward.Milestone.BonusXP
	}
	if _, err := l.awarder.Award(ctx, playerID, reward.TotalXP, experience.ReasonStreak); err != nil {
		l.stepFailed(playerID, "award_xp", err)
	}

	l.metrics.IncDailyLogin("first")
	l.logger.Info("daily login recorded",
		"player_id", playerID,
		"date", today,
		"streak", newStreak,
		"bonus_xp", reward.TotalXP,
	)

	return reward, nil
}

func (l *Ledger) updateSummary(ctx context.Context, playerID model.PlayerID, newStreak int, today model.Date) error {
	summary, err := l.store.GetStreakSummary(ctx, playerID)
	switch {
	case errors.Is(err, model.ErrStreakNotFound):
		summary = &model.StreakSummary{PlayerID: playerID}
	case err != nil:
		// without the old best streak an upsert could lower it
		return err
	}

	summary.CurrentStreak = newStreak
	summary.BestStreak = max(summary.BestStreak, newStreak)
	summary.LastLoginDate = today
	summary.UpdatedAt = l.clock.Now()
	return l.store.UpsertStreakSummary(ctx, summary)
}

func (l *Ledger) stepFailed(playerID model.PlayerID, step string, err error) {
	l.metrics.IncWriteFailure("streak_" + step)
	l.logger.Error("daily login step failed",
		"player_id", playerID,
		"step", step,
		"error", err,
	)
}

// Status returns the stored summary and whether the streak is still alive
func (l *Ledger) Status(ctx context.Context, playerID model.PlayerID) (*Status, error) {
	summary, err := l.store.GetStreakSummary(ctx, playerID)
	switch {
	case errors.Is(err, model.ErrStreakNotFound):
		summary = &model.StreakSummary{PlayerID: playerID}
	case err != nil:
		return nil, err
	}

	today := model.DateOf(l.clock.Now())
	status := &Status{StreakSummary: *summary}
	status.LoggedInToday = summary.LastLoginDate == today
	status.Alive = status.LoggedInToday || summary.LastLoginDate == today.AddDays(-1)
	return status, nil
}

// Rebuild recomputes the streak summary from the login log
func (l *Ledger) Rebuild(ctx context.Context, playerID model.PlayerID) (*model.StreakSummary, error) {
	events, err := l.store.GetLoginEvents(ctx, playerID)
	if err != nil {
		return nil, err
	}

	dates := make([]model.Date, 0, len(events))
	for _, e := range events {
		if e.LoginDate.Valid() {
			dates = append(dates, e.LoginDate)
		}
	}

	summary := &model.StreakSummary{PlayerID: playerID, UpdatedAt: l.clock.Now()}
	if len(dates) > 0 {
		last := slices.Max(dates)
		summary.LastLoginDate = last
		summary.CurrentStreak = WalkConsecutive(dates, last)
		summary.BestStreak = longestRun(dates)
	}

	if err := l.store.UpsertStreakSummary(ctx, summary); err != nil {
		return nil, err
	}
	l.logger.Info("streak summary rebuilt",
		"player_id", playerID,
		"current", summary.CurrentStreak,
		"best", summary.BestStreak,
	)
	return summary, nil
}
