package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"
)

// Publisher sends graph events to subscribers.
type Publisher interface {
	PublishTopic(ctx context.Context, topic string, data []byte) error
}

// GraphBuilder builds a graph from a recording. *graph.GraphClient
// implements it.
type GraphBuilder interface {
	BuildGraph(ctx context.Context, audioPath string, opts ...graph.BuildOption) (*graph.BuildResult, error)
}

// PermanentError marks a job that will fail the same way on every retry.
// The worker moves such jobs to the dead letter queue right away.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// BuildProcessor handles messages from BuildQueue.
type BuildProcessor struct {
	// Builders maps BuildJobMsg.Storage to the builder able to read from it.
	Builders  map[string]GraphBuilder
	Publisher Publisher
	// AfterBuild runs once a graph was published, e.g. to remove the upload.
	AfterBuild func(ctx context.Context, job BuildJobMsg) error
}

func (p *BuildProcessor) publish(ctx context.Context, topic string, event GraphEventMsg) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Publisher.PublishTopic(ctx, topic, data)
}

// ProcessBuildMessage builds the graph described by body and publishes the
// outcome. Stage changes are published as they happen.
func (p *BuildProcessor) ProcessBuildMessage(ctx context.Context, body []byte) error {
	var job BuildJobMsg
	if err := json.Unmarshal(body, &job); err != nil {
		return &PermanentError{Err: fmt.Errorf("invalid build message: %w", err)}
	}
	if job.Source == "" {
		return &PermanentError{Err: errors.New("build message without source")}
	}
	storage := job.Storage
	if storage == "" {
		storage = StorageLocal
	}
	builder, ok := p.Builders[storage]
	if !ok {
		return &PermanentError{Err: fmt.Errorf("no builder for storage %q", storage)}
	}

	logger.Info("[Queue] Building graph", "job_id", job.JobID, "source", job.Source, "storage", storage)

	onStage := func(stage graph.Stage) {
		err := p.publish(ctx, TopicGraphStatus, GraphEventMsg{
			JobID:  job.JobID,
			Source: job.Filename,
			State:  store.BuildRunning,
			Stage:  stage,
		})
		if err != nil {
			logger.Warn("[Queue] Failed to publish stage", "job_id", job.JobID, "stage", stage, "err", err)
		}
	}

	result, err := builder.BuildGraph(ctx, job.Source, graph.WithStageHook(onStage))
	if err != nil {
		failed := GraphEventMsg{
			JobID:  job.JobID,
			Source: job.Filename,
			State:  store.BuildFailed,
			Error:  err.Error(),
		}
		var be *graph.BuildError
		if errors.As(err, &be) {
			failed.Stage = be.Stage
		}
		if pubErr := p.publish(ctx, TopicGraphFailed, failed); pubErr != nil {
			logger.Error("[Queue] Failed to publish failure", "job_id", job.JobID, "err", pubErr)
		}

		if permanentBuildError(err) {
			return &PermanentError{Err: err}
		}
		return err
	}

	err = p.publish(ctx, TopicGraphBuilt, GraphEventMsg{
		JobID:  job.JobID,
		Source: job.Filename,
		State:  store.BuildSucceeded,
		Stage:  graph.StageDone,
		Graph:  &result.Graph,
		Report: &result.Report,
	})
	if err != nil {
		return fmt.Errorf("failed to publish graph: %w", err)
	}

	if p.AfterBuild != nil {
		if err := p.AfterBuild(ctx, job); err != nil {
			logger.Warn("[Queue] After build hook failed", "job_id", job.JobID, "err", err)
		}
	}
	return nil
}

// permanentBuildError reports failures a retry cannot fix: bad
// configuration, a transcript without content and lectures without
// concepts.
func permanentBuildError(err error) bool {
	var ce *graph.ConfigurationError
	if errors.As(err, &ce) {
		return true
	}
	var nc *graph.NoConceptsError
	if errors.As(err, &nc) {
		return true
	}
	var te *graph.TranscriptionError
	return errors.As(err, &te) && te.Err == nil
}
