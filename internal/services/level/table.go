// Package level maps cumulative experience to a level and title.
package level

import (
	"fmt"
	"sort"

	"github.com/mcoot/wyrgame/internal/model"
)

// Level is one row of the level table
type Level struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Threshold int    `json:"xp_threshold"`
}

// Resolution is the outcome of resolving an XP total
type Resolution struct {
	XP       int     `json:"xp"`
	Current  Level   `json:"current"`
	Next     *Level  `json:"next,omitempty"` // nil at the max level
	Progress float64 `json:"progress"`       // 0..1 towards Next
}

// Table is an immutable, strictly ascending level table
type Table struct {
	levels []Level
}

// NewTable validates levels and returns a Table.
// The first threshold must be 0; thresholds and levels must strictly increase.
func NewTable(levels []Level) (*Table, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: empty", model.ErrInvalidLevelTable)
	}
	if levels[0].Threshold != 0 {
		return nil, fmt.Errorf("%w: first threshold must be 0", model.ErrInvalidLevelTable)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Threshold <= levels[i-1].Threshold {
			return nil, fmt.Errorf("%w: threshold %d at level %d is not above %d",
				model.ErrInvalidLevelTable, levels[i].Threshold, levels[i].Level, levels[i-1].Threshold)
		}
		if levels[i].Level <= levels[i-1].Level {
			return nil, fmt.Errorf("%w: level %d out of order", model.ErrInvalidLevelTable, levels[i].Level)
		}
	}

	copied := make([]Level, len(levels))
	copy(copied, levels)
	return &Table{levels: copied}, nil
}

// MustNewTable is NewTable for static tables; it panics on an invalid table
func MustNewTable(levels []Level) *Table {
	t, err := NewTable(levels)
	if err != nil {
		panic(err)
	}
	return t
}

var defaultLevels = []Level{
	{Level: 1, Title: "Newcomer", Threshold: 0},
	{Level: 2, Title: "Curious", Threshold: 100},
	{Level: 3, Title: "Decider", Threshold: 300},
	{Level: 4, Title: "Debater", Threshold: 700},
	{Level: 5, Title: "Opinionated", Threshold: 1500},
	{Level: 6, Title: "Dilemma Seeker", Threshold: 3000},
	{Level: 7, Title: "Crowd Reader", Threshold: 5000},
	{Level: 8, Title: "Tastemaker", Threshold: 8000},
	{Level: 9, Title: "Oracle", Threshold: 12000},
	{Level: 10, Title: "Legend", Threshold: 20000},
}

// DefaultTable returns the game's standard ten-level table
func DefaultTable() *Table {
	return MustNewTable(defaultLevels)
}

// Levels returns a copy of the table rows
func (t *Table) Levels() []Level {
	out := make([]Level, len(t.levels))
	copy(out, t.levels)
	return out
}

// Max returns the highest level row
func (t *Table) Max() Level {
	return t.levels[len(t.levels)-1]
}

// Resolve finds the highest level whose threshold is <= xp.
// Negative xp resolves as 0.
func (t *Table) Resolve(xp int) Resolution {
	if xp < 0 {
		xp = 0
	}

	// index of the first level above xp; the current level sits just before it
	idx := sort.Search(len(t.levels), func(i int) bool {
		return t.levels[i].Threshold > xp
	}) - 1

	res := Resolution{XP: xp, Current: t.levels[idx], Progress: 1.0}
	if idx+1 < len(t.levels) {
		next := t.levels[idx+1]
		res.Next = &next
		res.Progress = float64(xp-res.Current.Threshold) / float64(next.Threshold-res.Current.Threshold)
	}
	return res
}
