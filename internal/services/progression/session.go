package progression

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/wyrgame/internal/model"
	"github.com/mcoot/wyrgame/internal/services/energy"
	"github.com/mcoot/wyrgame/internal/services/experience"
	"github.com/mcoot/wyrgame/internal/services/level"
	"github.com/mcoot/wyrgame/internal/services/streak"
)

// Session is the per-login progression state. It is created by
// Bootstrapper.Start and passed to whatever needs it.
type Session struct {
	PlayerID  model.PlayerID
	StartedAt time.Time
	// LoginReward is set when this login was the first of the day
	LoginReward *streak.Reward

	energy    *energy.Tracker
	bootstrap *Bootstrapper
}

// Snapshot is everything a client shows about a player's progression
type Snapshot struct {
	PlayerID     model.PlayerID   `json:"player_id"`
	XP           int              `json:"xp"`
	Level        level.Resolution `json:"level"`
	Energy       energy.State     `json:"energy"`
	Streak       *streak.Status   `json:"streak,omitempty"`
	SeasonPoints int              `json:"season_points"`
	TotalPoints  int              `json:"total_points"`
}

// PlayResult is the outcome of a successful play
type PlayResult struct {
	Energy   int               `json:"energy"`
	Award    *experience.Award `json:"award,omitempty"`
	Points   int               `json:"points"`
	Degraded bool              `json:"degraded,omitempty"` // some bookkeeping failed
}

// Energy returns the session's energy tracker
func (s *Session) Energy() *energy.Tracker {
	return s.energy
}

// Snapshot reads the player's progression fresh from the store. Energy comes
// from the session, which may be ahead of a store that missed a write.
func (s *Session) Snapshot(ctx context.Context) (*Snapshot, error) {
	b := s.bootstrap

	rec, err := b.store.GetProgression(ctx, s.PlayerID)
	switch {
	case errors.Is(err, model.ErrProgressionNotFound):
		rec = &model.ProgressionRecord{PlayerID: s.PlayerID}
	case err != nil:
		return nil, err
	}

	snap := &Snapshot{
		PlayerID:     s.PlayerID,
		XP:           max(rec.XP, 0),
		Level:        b.experience.Table().Resolve(rec.XP),
		Energy:       s.energy.State(),
		SeasonPoints: max(rec.SeasonPoints, 0),
		TotalPoints:  max(rec.TotalPoints, 0),
	}

	status, err := b.ledger.Status(ctx, s.PlayerID)
	if err != nil {
		b.logger.Warn("streak status unavailable", "player_id", s.PlayerID, "error", err)
	} else {
		snap.Streak = status
	}
	return snap, nil
}

// Play spends energy for one vote and awards its XP and points. Only a lack
// of energy rejects the play; failed bookkeeping is logged and flagged.
func (s *Session) Play(ctx context.Context) (*PlayResult, error) {
	b := s.bootstrap
	rules := b.rules

	if s.energy.Current() < rules.PlayCost {
		b.metrics.IncPlay("insufficient_energy")
		return nil, model.ErrInsufficientEnergy
	}

	result := &PlayResult{Points: rules.VotePoints}

	value, err := s.energy.Spend(ctx, rules.PlayCost)
	result.Energy = value
	if err != nil {
		result.Degraded = true
	}

	award, err := b.experience.Award(ctx, s.PlayerID, rules.VoteXP, experience.ReasonVote)
	if err != nil {
		result.Degraded = true
		b.metrics.IncWriteFailure("vote_xp")
		b.logger.Error("failed to award vote xp", "player_id", s.PlayerID, "error", err)
	}
	result.Award = award

	if err := b.scoring.RecordPoints(ctx, s.PlayerID, rules.VotePoints); err != nil {
		result.Degraded = true
	}

	b.metrics.IncPlay("ok")
	return result, nil
}
