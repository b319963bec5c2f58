package graph

import (
	"testing"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(label, typ string, popularity int) common.ConceptCandidate {
	return common.ConceptCandidate{Label: label, Type: typ, Description: label + ".", Popularity: popularity}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Learning Rate", "learning rate"},
		{"  learning rate ", "learning rate"},
		{"Newton's method", "newton method"},
		{"Bayes's", "bayes"},
		{"Theory of Mind", "theory of mind"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), tt.in)
	}
}

func TestLabelSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, LabelSimilarity("learning rate", "learning rate"))
	assert.InDelta(t, 2.0/3.0, LabelSimilarity("gradient descent", "stochastic gradient descent"), 1e-9)
	assert.Equal(t, 0.0, LabelSimilarity("", ""))
}

func TestDeduplicatorMergesNormalizedLabels(t *testing.T) {
	d := NewDeduplicator(DeduplicatorParams{})
	d.Add([]common.ConceptCandidate{candidate("The Learning Rate", "parameter", 4)})
	d.Add([]common.ConceptCandidate{candidate("learning rate", "definition", 5)})

	concepts := d.Concepts()
	require.Len(t, concepts, 1)
	assert.Equal(t, "The Learning Rate", concepts[0].Label)
	assert.Equal(t, common.TypeParameter, concepts[0].Type)
	assert.Equal(t, 4, concepts[0].Popularity)
}

func TestDeduplicatorKeepsBelowThreshold(t *testing.T) {
	concepts := DeduplicateConcepts([][]common.ConceptCandidate{
		{candidate("Gradient Descent", "algorithm", 5)},
		{candidate("Stochastic Gradient Descent", "algorithm", 3)},
	}, DeduplicatorParams{})

	require.Len(t, concepts, 2)
	assert.Equal(t, "Gradient Descent", concepts[0].Label)
	assert.Equal(t, "Stochastic Gradient Descent", concepts[1].Label)
}

func TestDeduplicatorSequentialIDs(t *testing.T) {
	d := NewDeduplicator(DeduplicatorParams{})
	first := d.Add([]common.ConceptCandidate{
		candidate("Convexity", "assumption", 3),
		candidate("", "theme", 3),
		candidate("Gradient Descent", "algorithm", 5),
	})
	second := d.Add([]common.ConceptCandidate{
		candidate("gradient descent", "algorithm", 5),
		candidate("Step Size", "parameter", 2),
		candidate("Momentum", "parameter", 2),
	})

	assert.Equal(t, []string{"C1", "C2"}, ids(first))
	assert.Equal(t, []string{"C3", "C4"}, ids(second))
	assert.Equal(t, []string{"C1", "C2", "C3", "C4"}, ids(d.Concepts()))
	assert.Equal(t, 4, d.Len())
}

func TestDeduplicatorDefaultsAndClamping(t *testing.T) {
	concepts := DeduplicateConcepts([][]common.ConceptCandidate{{
		{Label: "Loss Function", Type: "definition"},
		{Label: "Overfitting", Type: "theme", Popularity: 9},
		{Label: "Regularization", Type: "technique", Popularity: -2},
	}}, DeduplicatorParams{})

	require.Len(t, concepts, 3)
	assert.Equal(t, DefaultPopularity, concepts[0].Popularity)
	assert.Equal(t, MaxPopularity, concepts[1].Popularity)
	assert.Equal(t, DefaultPopularity, concepts[2].Popularity)
	assert.Equal(t, common.TypeTheme, concepts[2].Type)
}

func TestDeduplicatorCustomThreshold(t *testing.T) {
	concepts := DeduplicateConcepts([][]common.ConceptCandidate{{
		candidate("Gradient Descent", "algorithm", 5),
		candidate("Stochastic Gradient Descent", "algorithm", 3),
	}}, DeduplicatorParams{SimilarityThreshold: 0.5})
	assert.Len(t, concepts, 1)
}

func ids(concepts []common.Concept) []string {
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = c.ID
	}
	return out
}
