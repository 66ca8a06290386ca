package weekly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDenseRank(t *testing.T) {
	t.Run("tied scores still get individual positions", func(t *testing.T) {
		got := DenseRank([]UserScore{
			{Username: "carol", Score: 3},
			{Username: "bob", Score: 5},
			{Username: "alice", Score: 5},
		})
		assert.Equal(t, []RankedEntry{
			{Username: "alice", Score: 5, Position: 1},
			{Username: "bob", Score: 5, Position: 2},
			{Username: "carol", Score: 3, Position: 3},
		}, got)
	})

	t.Run("result is independent of input order", func(t *testing.T) {
		a := DenseRank([]UserScore{{Username: "x", Score: 2}, {Username: "y", Score: 2}, {Username: "z", Score: 9}})
		b := DenseRank([]UserScore{{Username: "z", Score: 9}, {Username: "y", Score: 2}, {Username: "x", Score: 2}})
		assert.Equal(t, a, b)
	})

	t.Run("input slice is left untouched", func(t *testing.T) {
		in := []UserScore{{Username: "b", Score: 1}, {Username: "a", Score: 4}}
		DenseRank(in)
		assert.Equal(t, []UserScore{{Username: "b", Score: 1}, {Username: "a", Score: 4}}, in)
	})

	t.Run("empty input yields empty board", func(t *testing.T) {
		assert.Empty(t, DenseRank(nil))
	})
}

func TestRankWithTies(t *testing.T) {
	t.Run("tie group shares a position and the next entry skips", func(t *testing.T) {
		got := RankWithTies([]UserScore{
			{Username: "carol", Score: 3},
			{Username: "alice", Score: 5},
			{Username: "bob", Score: 5},
		})
		assert.Equal(t, []RankedEntry{
			{Username: "alice", Score: 5, Position: 1},
			{Username: "bob", Score: 5, Position: 1},
			{Username: "carol", Score: 3, Position: 3},
		}, got)
	})

	t.Run("distinct scores rank consecutively", func(t *testing.T) {
		got := RankWithTies([]UserScore{
			{Username: "a", Score: 1},
			{Username: "b", Score: 2},
			{Username: "c", Score: 3},
		})
		assert.Equal(t, []RankedEntry{
			{Username: "c", Score: 3, Position: 1},
			{Username: "b", Score: 2, Position: 2},
			{Username: "a", Score: 1, Position: 3},
		}, got)
	})
}
