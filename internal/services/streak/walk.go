package streak

import (
	"sort"

	"github.com/mcoot/wyrgame/internal/model"
)

// CycleLength is the number of slots in the rotating daily bonus table
const CycleLength = 7

// DayState marks one slot of the weekly bonus cycle
type DayState string

const (
	DayCompleted DayState = "completed"
	DayToday     DayState = "today"
	DayFuture    DayState = "future"
)

// distinctDescending drops invalid and duplicate dates and sorts newest first
func distinctDescending(dates []model.Date) []model.Date {
	seen := make(map[model.Date]bool, len(dates))
	out := make([]model.Date, 0, len(dates))
	for _, d := range dates {
		if !d.Valid() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}

// WalkConsecutive counts the unbroken run of days ending at from, walking
// backwards one day at a time. Dates later than the cursor are skipped; the
// first date earlier than the cursor ends the run.
func WalkConsecutive(dates []model.Date, from model.Date) int {
	count := 0
	cursor := from
	for _, d := range distinctDescending(dates) {
		if d == cursor {
			count++
			cursor = cursor.AddDays(-1)
			continue
		}
		if d.Before(cursor) {
			break
		}
	}
	return count
}

// longestRun returns the longest unbroken run of days in dates
func longestRun(dates []model.Date) int {
	distinct := distinctDescending(dates)
	best, run := 0, 0
	for i, d := range distinct {
		if i > 0 && distinct[i-1].AddDays(-1) == d {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

// WeekDays projects streakDay onto the seven-slot cycle
func WeekDays(streakDay int) [CycleLength]DayState {
	var days [CycleLength]DayState
	for i := range days {
		switch {
		case i < streakDay:
			days[i] = DayCompleted
		case i == streakDay:
			days[i] = DayToday
		default:
			days[i] = DayFuture
		}
	}
	return days
}
