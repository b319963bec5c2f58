package graph

import (
	"testing"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/stretchr/testify/assert"
)

func withPopularity(scores ...int) []common.Concept {
	out := make([]common.Concept, len(scores))
	for i, s := range scores {
		out[i] = common.Concept{ID: "C" + string(rune('1'+i)), Popularity: s}
	}
	return out
}

func TestTargetEdgeCount(t *testing.T) {
	w := DefaultPopularityWeights()
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"empty", nil, 0},
		{"single central", []int{5}, 2},
		{"mixed", []int{5, 4, 3, 2, 1}, 7}, // 5+3.5+2.5+1.5+1.5 = 14
		{"truncates", []int{4, 3}, 3},      // 6.0/2
		{"all minor", []int{1, 1, 1}, 2},   // 4.5/2 = 2.25
		{"odd half", []int{5, 4}, 4},       // 8.5/2 = 4.25
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetEdgeCount(withPopularity(tt.scores...), w))
		})
	}
}

func TestTargetEdgeCountCustomWeights(t *testing.T) {
	w := PopularityWeights{ByScore: map[int]float64{5: 10}, Default: 2}
	assert.Equal(t, 6, TargetEdgeCount(withPopularity(5, 1), w))
}

func TestPopularityDistribution(t *testing.T) {
	dist := PopularityDistribution(withPopularity(5, 3, 3, 1))
	assert.Equal(t, map[int]int{5: 1, 3: 2, 1: 1}, dist)
}
