package graph

import (
	"testing"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConcepts() []common.Concept {
	return []common.Concept{
		{ID: "C1", Label: "Gradient Descent", Type: common.TypeAlgorithm, Popularity: 5},
		{ID: "C2", Label: "Learning Rate", Type: common.TypeParameter, Popularity: 4},
		{ID: "C3", Label: "Convexity", Type: common.TypeAssumption, Popularity: 3},
	}
}

func edge(from, to, rel string) common.EdgeCandidate {
	return common.EdgeCandidate{From: from, To: to, Relation: rel}
}

func TestValidateEdgesRules(t *testing.T) {
	tests := []struct {
		name   string
		raw    []common.EdgeCandidate
		want   []common.Edge
		reason DropReason
	}{
		{
			name:   "self loop",
			raw:    []common.EdgeCandidate{edge("C1", "C1", "depends_on")},
			want:   []common.Edge{},
			reason: DropSelfLoop,
		},
		{
			name:   "unknown id",
			raw:    []common.EdgeCandidate{edge("C1", "C99", "depends_on")},
			want:   []common.Edge{},
			reason: DropInvalidID,
		},
		{
			name:   "unknown id beats invalid relation",
			raw:    []common.EdgeCandidate{edge("C99", "C1", "causes")},
			want:   []common.Edge{},
			reason: DropInvalidID,
		},
		{
			name:   "invalid relation",
			raw:    []common.EdgeCandidate{edge("C3", "C1", "causes")},
			want:   []common.Edge{},
			reason: DropInvalidRelation,
		},
		{
			name:   "malformed",
			raw:    []common.EdgeCandidate{{From: "C1", Relation: "leads_to"}},
			want:   []common.Edge{},
			reason: DropMalformed,
		},
		{
			name: "duplicate triple",
			raw: []common.EdgeCandidate{
				edge("C3", "C1", "leads_to"),
				edge("C3", "C1", "leads_to"),
			},
			want:   []common.Edge{{From: "C3", To: "C1", Relation: common.RelationLeadsTo}},
			reason: DropDuplicate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, summary := ValidateEdges(tt.raw, sampleConcepts())
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, summary.Dropped[tt.reason])
			assert.Equal(t, 1, summary.TotalDropped())
		})
	}
}

func TestValidateEdgesAlgorithmParameterNormalization(t *testing.T) {
	got, summary := ValidateEdges([]common.EdgeCandidate{edge("C1", "C2", "leads_to")}, sampleConcepts())
	require.Len(t, got, 1)
	assert.Equal(t, common.Edge{From: "C1", To: "C2", Relation: common.RelationDependsOn}, got[0])
	assert.Equal(t, 1, summary.Normalized)

	// the reverse direction is left alone
	got, _ = ValidateEdges([]common.EdgeCandidate{edge("C2", "C1", "leads_to")}, sampleConcepts())
	assert.Equal(t, common.RelationLeadsTo, got[0].Relation)
}

func TestValidateEdgesNormalizationCreatesDuplicate(t *testing.T) {
	got, summary := ValidateEdges([]common.EdgeCandidate{
		edge("C1", "C2", "depends_on"),
		edge("C1", "C2", "example_of"),
	}, sampleConcepts())
	assert.Len(t, got, 1)
	assert.Equal(t, 1, summary.Dropped[DropDuplicate])
}

func TestValidateEdgesTrimsAndLowercases(t *testing.T) {
	got, _ := ValidateEdges([]common.EdgeCandidate{edge(" C3", "C1 ", " Derived_From ")}, sampleConcepts())
	assert.Equal(t, []common.Edge{{From: "C3", To: "C1", Relation: common.RelationDerivedFrom}}, got)
}

func TestValidateEdgesIntegrity(t *testing.T) {
	concepts := append(sampleConcepts(), common.Concept{ID: "C3", Label: "Shadow", Type: common.TypeTheme})
	got, summary := ValidateEdges([]common.EdgeCandidate{
		edge("C3", "C1", "leads_to"),
		edge("C2", "C1", "leads_to"),
	}, concepts)
	assert.Equal(t, []common.Edge{{From: "C2", To: "C1", Relation: common.RelationLeadsTo}}, got)
	assert.Equal(t, 1, summary.Dropped[DropIntegrity])
}

func TestValidateEdgesPreservesOrder(t *testing.T) {
	got, summary := ValidateEdges([]common.EdgeCandidate{
		edge("C3", "C2", "leads_to"),
		edge("C1", "C1", "leads_to"),
		edge("C2", "C3", "example_of"),
		edge("C3", "C1", "derived_from"),
	}, sampleConcepts())
	assert.Equal(t, []common.Edge{
		{From: "C3", To: "C2", Relation: common.RelationLeadsTo},
		{From: "C2", To: "C3", Relation: common.RelationExampleOf},
		{From: "C3", To: "C1", Relation: common.RelationDerivedFrom},
	}, got)
	assert.Equal(t, 4, summary.Input)
	assert.Equal(t, 3, summary.Accepted)
}

func TestValidateEdgesIdempotent(t *testing.T) {
	raw := []common.EdgeCandidate{
		edge("C1", "C2", "leads_to"),
		edge("C1", "C2", "depends_on"),
		edge("C2", "C2", "leads_to"),
		edge("C3", "C9", "leads_to"),
		edge("C3", "C1", "LEADS_TO"),
		edge("C2", "C3", "bogus"),
		{},
	}
	once, _ := ValidateEdges(raw, sampleConcepts())
	twice, summary := ValidateKnownEdges(once, sampleConcepts())
	assert.Equal(t, once, twice)
	assert.Zero(t, summary.TotalDropped())
	assert.Zero(t, summary.Normalized)
}

func TestValidateEdgesEmpty(t *testing.T) {
	got, summary := ValidateEdges(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, summary.Input)
}
