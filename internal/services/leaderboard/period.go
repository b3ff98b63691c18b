package leaderboard

import (
	"fmt"
	"time"

	"github.com/mcoot/wyrgame/internal/model"
)

// WeekKey returns the ISO-8601 week of t, e.g. "2024-W01".
// Week 1 is the week containing January 4th.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// PeriodKey returns the bucket key for a calendar period at asOf.
// Season and all-time boards are not keyed by the calendar.
func PeriodKey(period model.Period, asOf time.Time) (string, error) {
	switch period {
	case model.PeriodDaily:
		return model.DateOf(asOf).String(), nil
	case model.PeriodWeekly:
		return WeekKey(asOf), nil
	case model.PeriodSeason, model.PeriodAllTime:
		return "", nil
	default:
		return "", model.ErrInvalidPeriod
	}
}

// previousKey returns the bucket of the period before asOf's, if the period has one
func previousKey(period model.Period, asOf time.Time) (string, bool) {
	switch period {
	case model.PeriodDaily:
		return model.DateOf(asOf).AddDays(-1).String(), true
	case model.PeriodWeekly:
		return WeekKey(asOf.AddDate(0, 0, -7)), true
	default:
		return "", false
	}
}
