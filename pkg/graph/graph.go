package graph

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/OFFIS-RIT/lecturemap/internal/timing"
	"github.com/OFFIS-RIT/lecturemap/internal/util"
	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// BuildReport describes how a build arrived at its graph.
type BuildReport struct {
	TranscriptChars        int               `json:"transcript_chars"`
	Chunks                 int               `json:"chunks"`
	ConceptCandidates      int               `json:"concept_candidates"`
	Concepts               int               `json:"concepts"`
	PopularityDistribution map[int]int       `json:"popularity_distribution"`
	TargetEdges            int               `json:"target_edges"`
	ThematicCandidates     int               `json:"thematic_candidates"`
	ConceptualCandidates   int               `json:"conceptual_candidates"`
	RepairCandidates       int               `json:"repair_candidates"`
	Intermediate           ValidationSummary `json:"intermediate_validation"`
	Final                  ValidationSummary `json:"final_validation"`
	IsolatedBeforeRepair   []string          `json:"isolated_before_repair"`
	ResidualIsolated       []string          `json:"residual_isolated"`
	ExtractionFailures     map[Stage]int     `json:"extraction_failures"`
	Stages                 []timing.Step     `json:"stages"`
	Duration               time.Duration     `json:"duration"`
}

// BuildResult is the outcome of a successful build.
type BuildResult struct {
	Graph  common.Graph `json:"graph"`
	Report BuildReport  `json:"report"`
}

// BuildOption adjusts a single build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	onStage func(Stage)
}

// WithStageHook calls fn every time the build enters a new stage.
func WithStageHook(fn func(Stage)) BuildOption {
	return func(o *buildOptions) {
		o.onStage = fn
	}
}

type build struct {
	g        *GraphClient
	opts     buildOptions
	report   BuildReport
	timer    *timing.Recorder
	stopStep func() time.Duration
	stage    Stage
}

func (b *build) enter(stage Stage) {
	b.finishStage()
	b.stage = stage
	b.stopStep = b.timer.Start(string(stage))
	if b.opts.onStage != nil {
		b.opts.onStage(stage)
	}
}

func (b *build) finishStage() {
	if b.stopStep == nil {
		return
	}
	d := b.stopStep()
	StageDuration.WithLabelValues(string(b.stage)).Observe(d.Seconds())
	b.stopStep = nil
}

func (b *build) softFailure(stage Stage, err error, keyvals ...any) {
	b.report.ExtractionFailures[stage]++
	ExtractionFailures.WithLabelValues(string(stage)).Inc()
	logger.Warn("[Graph] Extraction failed, continuing without its output",
		append([]any{"stage", stage, "err", err}, keyvals...)...)
}

func (g *GraphClient) newBuild(opts []BuildOption) *build {
	b := &build{
		g:     g,
		timer: timing.NewRecorder(),
		report: BuildReport{
			ExtractionFailures: make(map[Stage]int),
		},
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// BuildGraph transcribes the recording at audioPath and builds its concept
// graph.
//
// Fatal problems are returned as a *BuildError wrapping a
// *TranscriptionError, *NoConceptsError or *ConfigurationError, or the
// context error if ctx ends. Everything else degrades to fewer concepts or
// edges and is visible in the report.
func (g *GraphClient) BuildGraph(ctx context.Context, audioPath string, opts ...BuildOption) (*BuildResult, error) {
	b := g.newBuild(opts)
	start := time.Now()

	b.enter(StageTranscribing)
	if g.transcriber == nil {
		return nil, b.fail(&ConfigurationError{Field: "transcriber", Reason: "is required for audio input"})
	}
	logger.Info("[Graph] Transcribing audio", "path", audioPath)
	text, err := g.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, b.fail(&TranscriptionError{Path: audioPath, Err: err})
	}

	return b.fromTranscript(ctx, audioPath, text, start)
}

// BuildGraphFromText builds a graph from an existing transcript, skipping
// transcription. A blank transcript fails like an empty transcription.
func (g *GraphClient) BuildGraphFromText(ctx context.Context, text string, opts ...BuildOption) (*BuildResult, error) {
	b := g.newBuild(opts)
	start := time.Now()
	b.enter(StageTranscribing)
	return b.fromTranscript(ctx, "", text, start)
}

func (b *build) fail(err error) error {
	b.finishStage()
	BuildsTotal.WithLabelValues(resultLabel(err)).Inc()
	logger.Error("[Graph] Build failed", "stage", b.stage, "err", err)
	return stageErr(b.stage, err)
}

func (b *build) fromTranscript(ctx context.Context, source, text string, start time.Time) (*BuildResult, error) {
	g := b.g
	if strings.TrimSpace(text) == "" {
		return nil, b.fail(&TranscriptionError{Path: source})
	}
	b.report.TranscriptChars = len([]rune(text))
	logger.Info("[Graph] Transcript ready", "chars", b.report.TranscriptChars)

	b.enter(StageChunking)
	chunks, err := ChunkText(text, g.chunkSize, g.chunkOverlap)
	if err != nil {
		return nil, b.fail(err)
	}
	b.report.Chunks = len(chunks)
	logger.Info("[Graph] Chunked transcript", "chunks", len(chunks))

	b.enter(StageExtractingConcepts)
	concepts, err := b.extractConcepts(ctx, chunks)
	if err != nil {
		return nil, b.fail(err)
	}
	if len(concepts) == 0 {
		return nil, b.fail(&NoConceptsError{Chunks: len(chunks)})
	}
	b.report.Concepts = len(concepts)
	b.report.PopularityDistribution = PopularityDistribution(concepts)
	logger.Info("[Graph] Extracted unique concepts",
		"concepts", len(concepts),
		"popularity", fmt.Sprint(b.report.PopularityDistribution),
	)

	b.enter(StageComputingBudget)
	target := TargetEdgeCount(concepts, g.weights)
	b.report.TargetEdges = target
	logger.Info("[Graph] Edge budget", "target", target)

	b.enter(StageEdgesThematic)
	thematic := b.proposeEdges(ctx, StageEdgesThematic, EdgeRequest{
		Focus:       FocusThematic,
		Concepts:    concepts,
		Context:     leadingRunes(text, g.contextChars),
		TargetEdges: target,
	})
	b.report.ThematicCandidates = len(thematic)
	if err := ctx.Err(); err != nil {
		return nil, b.fail(err)
	}

	b.enter(StageEdgesConceptual)
	conceptual := b.proposeEdges(ctx, StageEdgesConceptual, EdgeRequest{
		Focus:       FocusConceptual,
		Concepts:    concepts,
		TargetEdges: target / 2,
	})
	b.report.ConceptualCandidates = len(conceptual)
	if err := ctx.Err(); err != nil {
		return nil, b.fail(err)
	}

	raw := make([]common.EdgeCandidate, 0, len(thematic)+len(conceptual))
	raw = append(raw, thematic...)
	raw = append(raw, conceptual...)

	b.enter(StageValidatingIntermediate)
	intermediate, summary := ValidateEdges(raw, concepts)
	b.report.Intermediate = summary
	recordValidation(summary)
	logValidationSummary("Intermediate validation", summary)

	b.enter(StageRepairingConnectivity)
	b.report.IsolatedBeforeRepair = conceptIDs(IsolatedConcepts(concepts, intermediate))
	repair, err := util.RetryWithContext(ctx, g.maxRetries, g.retryBackoff,
		func(ctx context.Context) ([]common.EdgeCandidate, error) {
			return RepairConnectivity(ctx, g.edgeProposer, concepts, intermediate, g.edgeSampleSize)
		})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, b.fail(ctxErr)
		}
		b.softFailure(StageRepairingConnectivity, err)
	}
	b.report.RepairCandidates = len(repair)
	raw = append(raw, repair...)

	b.enter(StageValidatingFinal)
	edges, summary := ValidateEdges(raw, concepts)
	b.report.Final = summary
	recordValidation(summary)
	logValidationSummary("Final validation", summary)

	residual := conceptIDs(IsolatedConcepts(concepts, edges))
	b.report.ResidualIsolated = residual
	ResidualIsolated.Set(float64(len(residual)))
	if len(residual) > 0 {
		logger.Warn("[Graph] Concepts remain isolated after connectivity repair", "ids", residual)
	}

	b.enter(StageDone)
	b.finishStage()
	b.report.Stages = b.timer.Steps()
	b.report.Duration = time.Since(start)
	BuildsTotal.WithLabelValues("success").Inc()
	BuildDuration.Observe(b.report.Duration.Seconds())

	logger.Info("[Graph] Build completed",
		"concepts", len(concepts),
		"edges", len(edges),
		"duration", b.report.Duration.Round(time.Millisecond),
	)

	return &BuildResult{
		Graph:  common.Graph{Concepts: concepts, Edges: edges},
		Report: b.report,
	}, nil
}

// extractConcepts proposes concepts for every chunk in parallel and merges
// the batches back in chunk order before deduplicating, so ids do not depend
// on scheduling. Only context cancellation is returned as an error.
func (b *build) extractConcepts(ctx context.Context, chunks []string) ([]common.Concept, error) {
	g := b.g
	batches := make([][]common.ConceptCandidate, len(chunks))
	failed := make([]error, len(chunks))
	var candidates atomic.Int64

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelChunks)
	for i, chunk := range chunks {
		eg.Go(func() error {
			batch, err := util.RetryWithContext(gCtx, g.maxRetries, g.retryBackoff,
				func(ctx context.Context) ([]common.ConceptCandidate, error) {
					return g.conceptProposer.ProposeConcepts(ctx, chunk)
				})
			if err != nil {
				if ctxErr := gCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed[i] = err
				return nil
			}
			batches[i] = batch
			candidates.Add(int64(len(batch)))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	b.report.ConceptCandidates = int(candidates.Load())

	d := NewDeduplicator(g.dedupe)
	for i, batch := range batches {
		if failed[i] != nil {
			b.softFailure(StageExtractingConcepts, failed[i], "chunk", i+1)
			continue
		}
		accepted := d.Add(batch)
		logger.Info("[Graph] Chunk processed",
			"chunk", fmt.Sprintf("%d/%d", i+1, len(chunks)),
			"candidates", len(batch),
			"accepted", len(accepted),
			"total", d.Len(),
		)
	}
	return d.Concepts(), nil
}

func (b *build) proposeEdges(ctx context.Context, stage Stage, req EdgeRequest) []common.EdgeCandidate {
	g := b.g
	edges, err := util.RetryWithContext(ctx, g.maxRetries, g.retryBackoff,
		func(ctx context.Context) ([]common.EdgeCandidate, error) {
			return g.edgeProposer.ProposeEdges(ctx, req)
		})
	if err != nil {
		if ctx.Err() == nil {
			b.softFailure(stage, err, "focus", req.Focus)
		}
		return nil
	}
	logger.Info("[Graph] Edge pass finished", "focus", req.Focus, "target", req.TargetEdges, "proposed", len(edges))
	return edges
}

func leadingRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func resultLabel(err error) string {
	switch err.(type) {
	case *TranscriptionError:
		return "transcription_error"
	case *NoConceptsError:
		return "no_concepts"
	case *ConfigurationError:
		return "configuration_error"
	}
	return "error"
}
