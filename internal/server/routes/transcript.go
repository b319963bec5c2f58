package routes

import (
	"context"
	"net/http"

	"github.com/OFFIS-RIT/lecturemap/internal/server/middleware"
	"github.com/OFFIS-RIT/lecturemap/pkg/graph"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type buildTranscriptBody struct {
	Transcript string `json:"transcript" validate:"required"`
	Source     string `json:"source" validate:"max=255"`
}

// BuildTranscriptHandler builds a graph from a transcript sent as JSON,
// skipping transcription. It always builds inline.
func BuildTranscriptHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	data := new(buildTranscriptBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	jobID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	source := data.Source
	if source == "" {
		source = "transcript"
	}

	result, err := runInlineBuild(c.Request().Context(), app, jobID, source,
		func(ctx context.Context, opts ...graph.BuildOption) (*graph.BuildResult, error) {
			return app.Graph.BuildGraphFromText(ctx, data.Transcript, opts...)
		})
	if err != nil {
		return buildErrorResponse(c, err)
	}

	resp := graphResponse("Transcript processed successfully", source, "", result.Graph)
	resp["report"] = result.Report
	return c.JSON(http.StatusOK, resp)
}
