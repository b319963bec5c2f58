package graph

import "github.com/OFFIS-RIT/lecturemap/pkg/common"

// PopularityWeights maps a popularity score to the number of edge endpoints
// a concept should receive. Scores missing from the map use Default.
type PopularityWeights struct {
	ByScore map[int]float64
	Default float64
}

// DefaultPopularityWeights: central concepts act as hubs, minor ones get
// one or two edges.
func DefaultPopularityWeights() PopularityWeights {
	return PopularityWeights{
		ByScore: map[int]float64{5: 5.0, 4: 3.5, 3: 2.5},
		Default: 1.5,
	}
}

func (w PopularityWeights) weight(popularity int) float64 {
	if v, ok := w.ByScore[popularity]; ok {
		return v
	}
	return w.Default
}

// TargetEdgeCount sums the popularity weights of all concepts and halves
// the sum, since each edge serves two endpoints. The result guides the edge
// proposer and is not a hard cap.
func TargetEdgeCount(concepts []common.Concept, weights PopularityWeights) int {
	total := 0.0
	for _, c := range concepts {
		total += weights.weight(c.Popularity)
	}
	return int(total / 2)
}

// PopularityDistribution counts concepts per popularity score.
func PopularityDistribution(concepts []common.Concept) map[int]int {
	dist := make(map[int]int)
	for _, c := range concepts {
		dist[c.Popularity]++
	}
	return dist
}
