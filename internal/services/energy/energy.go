// Package energy tracks the capped, regenerating resource spent on plays.
package energy

import (
	"time"

	"github.com/mcoot/wyrgame/internal/model"
)

// Policy configures the energy cap and regeneration rate
type Policy struct {
	Max           int
	RegenInterval time.Duration
	RegenPerTick  int
}

// DefaultPolicy returns the standard policy: 100 max, 1 point every 3 minutes
func DefaultPolicy() Policy {
	return Policy{
		Max:           100,
		RegenInterval: 3 * time.Minute,
		RegenPerTick:  1,
	}
}

// Normalized replaces non-positive settings with the defaults
func (p Policy) Normalized() Policy {
	d := DefaultPolicy()
	if p.Max <= 0 {
		p.Max = d.Max
	}
	if p.RegenInterval <= 0 {
		p.RegenInterval = d.RegenInterval
	}
	if p.RegenPerTick <= 0 {
		p.RegenPerTick = d.RegenPerTick
	}
	return p
}

// Baseline is the last persisted energy value and when it was written.
// The live value is derived from it and only changes on spend or refill.
type Baseline struct {
	Value     int       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// BaselineOf reads the baseline out of a progression record
func BaselineOf(rec *model.ProgressionRecord, p Policy) Baseline {
	p = p.Normalized()
	return Baseline{
		Value:     min(max(rec.Energy(p.Max), 0), p.Max),
		Timestamp: rec.EnergyLastUpdate,
	}
}

// ticks returns the whole regeneration ticks elapsed since the baseline
func (b Baseline) ticks(now time.Time, p Policy) int64 {
	elapsed := now.Sub(b.Timestamp)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / p.RegenInterval)
}

// Current returns the energy at now. Partial ticks are dropped but stay
// banked, since the timestamp is not advanced until the next write.
func (b Baseline) Current(now time.Time, p Policy) int {
	p = p.Normalized()
	value := min(max(b.Value, 0), p.Max)
	if value >= p.Max {
		return p.Max
	}

	// cap the tick count before multiplying so long absences cannot overflow
	missing := int64(p.Max - value)
	ticks := min(b.ticks(now, p), missing)
	return int(min(int64(value)+ticks*int64(p.RegenPerTick), int64(p.Max)))
}

// NextRegenAt returns when the next tick lands, or the zero time when full
func (b Baseline) NextRegenAt(now time.Time, p Policy) time.Time {
	p = p.Normalized()
	if b.Current(now, p) >= p.Max {
		return time.Time{}
	}
	return b.Timestamp.Add(time.Duration(b.ticks(now, p)+1) * p.RegenInterval)
}
