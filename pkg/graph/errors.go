package graph

import "fmt"

// Stage names one step of a build.
type Stage string

const (
	StageConfiguring            Stage = "configuring"
	StageTranscribing           Stage = "transcribing"
	StageChunking               Stage = "chunking"
	StageExtractingConcepts     Stage = "extracting_concepts"
	StageComputingBudget        Stage = "computing_budget"
	StageEdgesThematic          Stage = "extracting_edges_thematic"
	StageEdgesConceptual        Stage = "extracting_edges_conceptual"
	StageValidatingIntermediate Stage = "validating_intermediate"
	StageRepairingConnectivity  Stage = "repairing_connectivity"
	StageValidatingFinal        Stage = "validating_final"
	StageDone                   Stage = "done"
)

// ConfigurationError reports invalid pipeline parameters. It is returned
// before any work starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// TranscriptionError reports that no usable transcript could be produced.
type TranscriptionError struct {
	Path string
	Err  error
}

func (e *TranscriptionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transcription of %q produced empty text", e.Path)
	}
	return fmt.Sprintf("transcription of %q failed: %v", e.Path, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// NoConceptsError reports that no chunk produced a usable concept.
type NoConceptsError struct {
	Chunks int
}

func (e *NoConceptsError) Error() string {
	return fmt.Sprintf("no concepts extracted from %d chunks", e.Chunks)
}

// BuildError wraps a fatal error with the stage it happened in.
type BuildError struct {
	Stage Stage
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("graph build failed at %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	return &BuildError{Stage: stage, Err: err}
}
