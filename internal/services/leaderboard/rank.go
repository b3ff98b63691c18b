package leaderboard

import (
	"sort"

	"github.com/mcoot/wyrgame/internal/model"
)

// Rank sorts totals by points descending, breaking ties by ascending player
// ID, and assigns 1-based ranks. previous maps player IDs to their rank in
// the preceding period; players missing from it get a rank change of 0.
func Rank(totals []model.PeriodPoints, previous map[model.PlayerID]int) []model.LeaderboardEntry {
	sorted := make([]model.PeriodPoints, len(totals))
	copy(sorted, totals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	entries := make([]model.LeaderboardEntry, len(sorted))
	for i, pp := range sorted {
		rank := i + 1
		entries[i] = model.LeaderboardEntry{
			PlayerID: pp.PlayerID,
			Points:   pp.Points,
			Rank:     rank,
		}
		if prev, ok := previous[pp.PlayerID]; ok {
			entries[i].RankChange = prev - rank
		}
	}
	return entries
}

// rankIndex maps each player to their rank in totals
func rankIndex(totals []model.PeriodPoints) map[model.PlayerID]int {
	index := make(map[model.PlayerID]int, len(totals))
	for _, e := range Rank(totals, nil) {
		index[e.PlayerID] = e.Rank
	}
	return index
}
