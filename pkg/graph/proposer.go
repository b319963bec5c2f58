package graph

import (
	"context"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
)

// Transcriber turns a recording into text. An empty result is treated as a
// failed transcription by the pipeline.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ConceptProposer proposes concept candidates for one transcript chunk.
// Results may be empty or partially malformed.
type ConceptProposer interface {
	ProposeConcepts(ctx context.Context, chunk string) ([]common.ConceptCandidate, error)
}

// EdgeFocus selects the prompt strategy of an edge pass.
type EdgeFocus string

const (
	// FocusThematic reads relations off the lecture text.
	FocusThematic EdgeFocus = "thematic"
	// FocusConceptual relates concepts by their descriptions only,
	// grouped by popularity.
	FocusConceptual EdgeFocus = "conceptual"
)

type EdgeRequest struct {
	Focus       EdgeFocus
	Concepts    []common.Concept
	Context     string
	TargetEdges int
}

type ConnectivityRequest struct {
	Concepts      []common.Concept
	Isolated      []common.Concept
	ExistingEdges []common.Edge
}

// EdgeProposer proposes edges between known concepts. Like ConceptProposer
// its output is untrusted and always validated afterwards.
type EdgeProposer interface {
	ProposeEdges(ctx context.Context, req EdgeRequest) ([]common.EdgeCandidate, error)
	ProposeConnectingEdges(ctx context.Context, req ConnectivityRequest) ([]common.EdgeCandidate, error)
}
