package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/lecturemap/internal/queue"
	"github.com/OFFIS-RIT/lecturemap/internal/server/middleware"
	"github.com/OFFIS-RIT/lecturemap/internal/storage"
	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader/audio"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func allowedExtensions() string {
	exts := make([]string, len(audio.AudioExtensions))
	for i, e := range audio.AudioExtensions {
		exts[i] = strings.TrimPrefix(e, ".")
	}
	return strings.Join(exts, ", ")
}

// saveUpload copies the upload to dir under id plus the original
// extension and returns the path. The client file name is never used as a
// path component.
func saveUpload(dir, id string, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, id+strings.ToLower(filepath.Ext(header.Filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

// UploadAudioHandler accepts a lecture recording in the multipart field
// "audio". Inline mode builds the graph within the request; queue mode
// stores the recording and enqueues a build job.
func UploadAudioHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	header, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No audio file provided"})
	}
	if header.Filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file selected"})
	}
	if !audio.IsAudio(header.Filename) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Invalid file type. Allowed: %s", allowedExtensions()),
		})
	}
	if app.MaxUploadBytes > 0 && header.Size > app.MaxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
	}

	jobID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	filename := filepath.Base(header.Filename)
	logger.Info("[Server] Received upload", "job_id", jobID, "filename", filename, "bytes", header.Size)

	if app.Mode == middleware.BuildQueued {
		return enqueueUpload(c, app, jobID, filename, header)
	}

	path, err := saveUpload(app.UploadDir, jobID, header)
	if err != nil {
		logger.Error("[Server] Failed to store upload", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store upload"})
	}

	result, err := runInlineBuild(c.Request().Context(), app, jobID, filename,
		func(ctx context.Context, opts ...graph.BuildOption) (*graph.BuildResult, error) {
			return app.Graph.BuildGraph(ctx, path, opts...)
		})
	if err != nil {
		return buildErrorResponse(c, err)
	}

	resp := graphResponse("Audio processed successfully", filename, path, result.Graph)
	resp["report"] = result.Report
	return c.JSON(http.StatusOK, resp)
}

func enqueueUpload(c echo.Context, app *middleware.App, jobID, filename string, header *multipart.FileHeader) error {
	ctx := c.Request().Context()
	job := queue.BuildJobMsg{JobID: jobID, Filename: filename}

	if app.S3 != nil {
		src, err := header.Open()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read upload"})
		}
		defer src.Close()

		key, err := storage.PutFile(ctx, app.S3, "uploads", filename, jobID, src)
		if err != nil {
			logger.Error("[Server] Failed to upload to S3", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store upload"})
		}
		job.Source, job.Storage = key, queue.StorageS3
	} else {
		path, err := saveUpload(app.UploadDir, jobID, header)
		if err != nil {
			logger.Error("[Server] Failed to store upload", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store upload"})
		}
		job.Source, job.Storage = path, queue.StorageLocal
	}

	data, err := json.Marshal(job)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if err := app.Jobs.PublishJob(ctx, data); err != nil {
		logger.Error("[Server] Failed to enqueue build", "job_id", jobID, "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Failed to enqueue build"})
	}

	previous := app.Store.Status()
	app.Store.SetStatus(store.BuildStatus{
		JobID:    jobID,
		Source:   filename,
		State:    store.BuildQueued,
		Concepts: previous.Concepts,
		Edges:    previous.Edges,
	})

	return c.JSON(http.StatusAccepted, map[string]any{
		"success":  true,
		"message":  "Build queued",
		"job_id":   jobID,
		"filename": filename,
	})
}
