package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wyrgame/internal/model"
)

func TestWeekKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), "2024-W01"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-W01"},
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "2022-W52"},
		{time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "2024-W11"},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format(model.DateLayout), func(t *testing.T) {
			assert.Equal(t, tt.want, WeekKey(tt.date))
		})
	}
}

func TestPeriodKey(t *testing.T) {
	asOf := time.Date(2024, 1, 4, 23, 59, 0, 0, time.UTC)

	key, err := PeriodKey(model.PeriodDaily, asOf)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-04", key)

	key, err = PeriodKey(model.PeriodWeekly, asOf)
	require.NoError(t, err)
	assert.Equal(t, "2024-W01", key)

	key, err = PeriodKey(model.PeriodAllTime, asOf)
	require.NoError(t, err)
	assert.Empty(t, key)

	_, err = PeriodKey("monthly", asOf)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
}

func TestPreviousKey(t *testing.T) {
	asOf := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	key, ok := previousKey(model.PeriodDaily, asOf)
	assert.True(t, ok)
	assert.Equal(t, "2023-12-31", key)

	key, ok = previousKey(model.PeriodWeekly, asOf)
	assert.True(t, ok)
	assert.Equal(t, "2023-W52", key)

	_, ok = previousKey(model.PeriodSeason, asOf)
	assert.False(t, ok)
}
