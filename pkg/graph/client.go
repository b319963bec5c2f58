package graph

import (
	"time"

	"github.com/OFFIS-RIT/lecturemap/internal/util"
)

const (
	DefaultChunkSize      = 4000
	DefaultChunkOverlap   = 500
	DefaultContextChars   = 8000
	DefaultParallelChunks = 4
	DefaultMaxRetries     = 3
)

// GraphClient runs lecture graph builds. It holds the collaborators that
// transcribe audio and propose concepts and edges, plus the tuning knobs of
// the pipeline. A GraphClient is safe for concurrent builds as long as its
// collaborators are.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	transcriber     Transcriber
	conceptProposer ConceptProposer
	edgeProposer    EdgeProposer

	chunkSize      int
	chunkOverlap   int
	contextChars   int
	parallelChunks int
	maxRetries     int
	edgeSampleSize int
	retryBackoff   util.Backoff

	dedupe  DeduplicatorParams
	weights PopularityWeights
}

// NewGraphClientParams configures a GraphClient.
//
// Transcriber may be nil when only BuildGraphFromText is used. Zero values
// of the numeric fields select the defaults; ChunkOverlap must stay below
// ChunkSize. ParallelChunks bounds concurrent concept extraction calls.
// MaxRetries is the number of attempts per proposer call before the call
// counts as failed.
type NewGraphClientParams struct {
	Transcriber     Transcriber
	ConceptProposer ConceptProposer
	EdgeProposer    EdgeProposer

	ChunkSize           int
	ChunkOverlap        int
	ContextChars        int
	ParallelChunks      int
	MaxRetries          int
	EdgeSampleSize      int
	RetryBackoff        time.Duration
	SimilarityThreshold float64
	DefaultPopularity   int
	PopularityWeights   *PopularityWeights
}

// NewGraphClient validates params and returns a configured client.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		Transcriber:     aiTranscriber,
//		ConceptProposer: proposer,
//		EdgeProposer:    proposer,
//		ParallelChunks:  4,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Returns a *ConfigurationError for unusable parameters.
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	if params.ConceptProposer == nil {
		return nil, &ConfigurationError{Field: "concept_proposer", Reason: "is required"}
	}
	if params.EdgeProposer == nil {
		return nil, &ConfigurationError{Field: "edge_proposer", Reason: "is required"}
	}

	g := &GraphClient{
		transcriber:     params.Transcriber,
		conceptProposer: params.ConceptProposer,
		edgeProposer:    params.EdgeProposer,
		chunkSize:       orDefault(params.ChunkSize, DefaultChunkSize),
		chunkOverlap:    orDefault(params.ChunkOverlap, DefaultChunkOverlap),
		contextChars:    orDefault(params.ContextChars, DefaultContextChars),
		parallelChunks:  orDefault(params.ParallelChunks, DefaultParallelChunks),
		maxRetries:      orDefault(params.MaxRetries, DefaultMaxRetries),
		edgeSampleSize:  orDefault(params.EdgeSampleSize, DefaultEdgeSampleSize),
		retryBackoff:    util.LinearBackoff(params.RetryBackoff),
		dedupe: DeduplicatorParams{
			SimilarityThreshold: params.SimilarityThreshold,
			DefaultPopularity:   params.DefaultPopularity,
		},
		weights: DefaultPopularityWeights(),
	}
	if params.PopularityWeights != nil {
		g.weights = *params.PopularityWeights
	}

	if err := validateChunking(g.chunkSize, g.chunkOverlap); err != nil {
		return nil, err
	}
	if params.SimilarityThreshold < 0 || params.SimilarityThreshold > 1 {
		return nil, &ConfigurationError{Field: "similarity_threshold", Reason: "must be within [0, 1]"}
	}

	return g, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
