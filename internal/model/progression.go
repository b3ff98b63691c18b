package model

import "time"

// ProgressionRecord is the per-player progression state.
// EnergyCurrent and EnergyLastUpdate form a lazy snapshot: the true current
// energy is derived from them, see services/energy.
type ProgressionRecord struct {
	PlayerID         PlayerID  `json:"player_id"`
	XP               int       `json:"xp"`
	EnergyCurrent    *int      `json:"energy_current,omitempty"` // nil means full
	EnergyLastUpdate time.Time `json:"energy_last_update"`
	SeasonPoints     int       `json:"season_points"`
	TotalPoints      int       `json:"total_points"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewProgressionRecord returns the defaults for a freshly created account
func NewProgressionRecord(id PlayerID, energyMax int, now time.Time) *ProgressionRecord {
	energy := energyMax
	return &ProgressionRecord{
		PlayerID:         id,
		XP:               0,
		EnergyCurrent:    &energy,
		EnergyLastUpdate: now,
		CreatedAt:        now,
	}
}

// Normalize coalesces missing or malformed fields to safe defaults.
// A missing energy value means a full tank; a missing timestamp means now.
func (r *ProgressionRecord) Normalize(energyMax int, now time.Time) {
	if r.XP < 0 {
		r.XP = 0
	}
	if r.SeasonPoints < 0 {
		r.SeasonPoints = 0
	}
	if r.TotalPoints < 0 {
		r.TotalPoints = 0
	}

	energy := energyMax
	if r.EnergyCurrent != nil {
		energy = min(max(*r.EnergyCurrent, 0), energyMax)
	}
	r.EnergyCurrent = &energy

	if r.EnergyLastUpdate.IsZero() {
		r.EnergyLastUpdate = now
	}
}

// Energy returns the stored energy value, treating nil as energyMax
func (r *ProgressionRecord) Energy(energyMax int) int {
	if r.EnergyCurrent == nil {
		return energyMax
	}
	return *r.EnergyCurrent
}

// ProgressionPatch is a partial update; nil fields are left untouched
type ProgressionPatch struct {
	XP               *int
	EnergyCurrent    *int
	EnergyLastUpdate *time.Time
	SeasonPoints     *int
	TotalPoints      *int
}

// IsEmpty reports whether the patch would change nothing
func (p ProgressionPatch) IsEmpty() bool {
	return p.XP == nil && p.EnergyCurrent == nil && p.EnergyLastUpdate == nil &&
		p.SeasonPoints == nil && p.TotalPoints == nil
}

// Apply writes the non-nil fields of p onto r
func (p ProgressionPatch) Apply(r *ProgressionRecord) {
	if p.XP != nil {
		r.XP = *p.XP
	}
	if p.EnergyCurrent != nil {
		v := *p.EnergyCurrent
		r.EnergyCurrent = &v
	}
	if p.EnergyLastUpdate != nil {
		r.EnergyLastUpdate = *p.EnergyLastUpdate
	}
	if p.SeasonPoints != nil {
		r.SeasonPoints = *p.SeasonPoints
	}
	if p.TotalPoints != nil {
		r.TotalPoints = *p.TotalPoints
	}
}
