package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/lecturemap/internal/server/middleware"
	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"

	"github.com/labstack/echo/v4"
)

var errBuildRunning = errors.New("a build is already running")

// runInlineBuild runs build under the app's build lock, mirrors stages into
// the build status and publishes the graph on success.
func runInlineBuild(
	ctx context.Context,
	app *middleware.App,
	jobID string,
	source string,
	build func(ctx context.Context, opts ...graph.BuildOption) (*graph.BuildResult, error),
) (*graph.BuildResult, error) {
	if !app.BuildLock.TryLock() {
		return nil, errBuildRunning
	}
	defer app.BuildLock.Unlock()

	if app.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.BuildTimeout)
		defer cancel()
	}

	previous := app.Store.Status()
	status := store.BuildStatus{
		JobID:    jobID,
		Source:   source,
		State:    store.BuildRunning,
		Concepts: previous.Concepts,
		Edges:    previous.Edges,
	}
	onStage := func(stage graph.Stage) {
		status.Stage = string(stage)
		app.Store.SetStatus(status)
	}

	result, err := build(ctx, graph.WithStageHook(onStage))
	if err != nil {
		status.State = store.BuildFailed
		status.Error = err.Error()
		app.Store.SetStatus(status)
		return nil, err
	}

	app.Store.Publish(result.Graph)
	status.State = store.BuildSucceeded
	status.Stage = string(graph.StageDone)
	status.Concepts = len(result.Graph.Concepts)
	status.Edges = len(result.Graph.Edges)
	app.Store.SetStatus(status)
	logger.Info("[Server] Published graph", "job_id", jobID, "concepts", status.Concepts, "edges", status.Edges)
	return result, nil
}

// buildErrorResponse maps a failed build onto a status code: 409 while
// another build runs, 422 when the recording holds nothing to map, 504 on
// timeout and 500 otherwise.
func buildErrorResponse(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	var (
		te *graph.TranscriptionError
		nc *graph.NoConceptsError
	)
	switch {
	case errors.Is(err, errBuildRunning):
		code = http.StatusConflict
	case errors.As(err, &te), errors.As(err, &nc):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}
	return c.JSON(code, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func graphResponse(message, filename, filepath string, g common.Graph) map[string]any {
	return map[string]any{
		"success":  true,
		"message":  message,
		"filename": filename,
		"filepath": filepath,
		"stats": map[string]int{
			"concepts": len(g.Concepts),
			"edges":    len(g.Edges),
		},
		"data":     g,
		"concepts": g.Concepts,
		"edges":    g.Edges,
	}
}
