package weekly

import "sort"

// UserScore ranking input
type UserScore struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// RankedEntry a positioned leaderboard row
type RankedEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// orderScores sort by score descending, ties broken by ascending
// case-sensitive username so the order is total and reproducible for
// identical inputs regardless of input order
func orderScores(scores []UserScore) []UserScore {
	ordered := make([]UserScore, len(scores))
	copy(ordered, scores)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].Username < ordered[j].Username
	})
	return ordered
}

// DenseRank assign unique gapless positions by output index, even when
// scores tie. This is the weekly-activity policy: every user holds an
// individual spot on the board
func DenseRank(scores []UserScore) []RankedEntry {
	ordered := orderScores(scores)
	ranked := make([]RankedEntry, 0, len(ordered))
	for i, s := range ordered {
		ranked = append(ranked, RankedEntry{Username: s.Username, Score: s.Score, Position: i + 1})
	}
	return ranked
}

// RankWithTies assign shared positions to equal scores; the entry after a
// tie group takes its output index + 1, the 1,1,3 shape SQL RANK() yields.
// This is the cumulative-total policy
func RankWithTies(scores []UserScore) []RankedEntry {
	ordered := orderScores(scores)
	ranked := make([]RankedEntry, 0, len(ordered))
	position := 0
	for i, s := range ordered {
		if i == 0 || s.Score != ordered[i-1].Score {
			position = i + 1
		}
		ranked = append(ranked, RankedEntry{Username: s.Username, Score: s.Score, Position: position})
	}
	return ranked
}
