package graph

import (
	"context"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
)

// DefaultEdgeSampleSize is how many existing edges the repair request
// carries as context.
const DefaultEdgeSampleSize = 20

// IsolatedConcepts returns the concepts without any incident edge, in
// concept order.
func IsolatedConcepts(concepts []common.Concept, edges []common.Edge) []common.Concept {
	connected := make(map[string]struct{}, len(edges)*2)
	for _, e := range edges {
		connected[e.From] = struct{}{}
		connected[e.To] = struct{}{}
	}

	isolated := make([]common.Concept, 0)
	for _, c := range concepts {
		if _, ok := connected[c.ID]; !ok {
			isolated = append(isolated, c)
		}
	}
	return isolated
}

// RepairConnectivity asks the proposer once for edges touching every
// isolated concept. The returned candidates are unvalidated. A proposer
// error yields no candidates; the caller decides how to report it.
func RepairConnectivity(
	ctx context.Context,
	proposer EdgeProposer,
	concepts []common.Concept,
	edges []common.Edge,
	sampleSize int,
) ([]common.EdgeCandidate, error) {
	isolated := IsolatedConcepts(concepts, edges)
	if len(isolated) == 0 {
		logger.Info("[Connectivity] Graph is fully connected")
		return nil, nil
	}

	if sampleSize <= 0 {
		sampleSize = DefaultEdgeSampleSize
	}
	sample := edges[:min(sampleSize, len(edges))]

	logger.Info("[Connectivity] Requesting edges for isolated concepts",
		"isolated", len(isolated),
		"ids", conceptIDs(isolated),
	)

	candidates, err := proposer.ProposeConnectingEdges(ctx, ConnectivityRequest{
		Concepts:      concepts,
		Isolated:      isolated,
		ExistingEdges: sample,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[Connectivity] Proposed connecting edges", "count", len(candidates))
	return candidates, nil
}

func conceptIDs(concepts []common.Concept) []string {
	ids := make([]string, len(concepts))
	for i, c := range concepts {
		ids[i] = c.ID
	}
	return ids
}
