package energy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/wyrgame/internal/model"
)

var t0 = time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)

func TestCurrentRegeneratesWholeTicks(t *testing.T) {
	p := DefaultPolicy()
	b := Baseline{Value: 40, Timestamp: t0}

	assert.Equal(t, 40, b.Current(t0, p))
	assert.Equal(t, 40, b.Current(t0.Add(2*time.Minute+59*time.Second), p))
	assert.Equal(t, 41, b.Current(t0.Add(3*time.Minute), p))
	assert.Equal(t, 43, b.Current(t0.Add(9*time.Minute), p))
}

func TestCurrentIsCappedAtMax(t *testing.T) {
	p := DefaultPolicy()
	b := Baseline{Value: 95, Timestamp: t0}

	assert.Equal(t, 100, b.Current(t0.Add(24*time.Hour), p))
	assert.Equal(t, 100, b.Current(t0.Add(100*365*24*time.Hour), p))
}

func TestCurrentWithClockSkewDoesNotRegenerate(t *testing.T) {
	b := Baseline{Value: 40, Timestamp: t0}

	assert.Equal(t, 40, b.Current(t0.Add(-time.Hour), DefaultPolicy()))
}

func TestCurrentClampsOutOfRangeBaseline(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 100, Baseline{Value: 250, Timestamp: t0}.Current(t0, p))
	assert.Equal(t, 0, Baseline{Value: -5, Timestamp: t0}.Current(t0, p))
}

func TestCurrentIsMonotonicWithoutSpend(t *testing.T) {
	p := Policy{Max: 50, RegenInterval: time.Minute, RegenPerTick: 3}
	b := Baseline{Value: 0, Timestamp: t0}

	prev := b.Current(t0, p)
	for i := 1; i < 200; i++ {
		cur := b.Current(t0.Add(time.Duration(i)*17*time.Second), p)
		assert.GreaterOrEqual(t, cur, prev)
		assert.LessOrEqual(t, cur, p.Max)
		prev = cur
	}
}

func TestPolicyDefaultsFillZeroFields(t *testing.T) {
	b := Baseline{Value: 0, Timestamp: t0}

	assert.Equal(t, 1, b.Current(t0.Add(3*time.Minute), Policy{}))
}

func TestNextRegenAt(t *testing.T) {
	p := DefaultPolicy()
	b := Baseline{Value: 40, Timestamp: t0}

	assert.Equal(t, t0.Add(3*time.Minute), b.NextRegenAt(t0.Add(time.Minute), p))
	assert.Equal(t, t0.Add(12*time.Minute), b.NextRegenAt(t0.Add(9*time.Minute), p))
	assert.True(t, Baseline{Value: 100, Timestamp: t0}.NextRegenAt(t0, p).IsZero())
}

func TestBaselineOfTreatsMissingEnergyAsFull(t *testing.T) {
	rec := &model.ProgressionRecord{PlayerID: "p1", EnergyLastUpdate: t0}

	b := BaselineOf(rec, DefaultPolicy())

	assert.Equal(t, 100, b.Value)
	assert.Equal(t, t0, b.Timestamp)
}
