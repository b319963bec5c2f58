package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/lecturemap/internal/server/middleware"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetMindmapDataHandler returns the published graph.
func GetMindmapDataHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Store.Load())
}

// ClearHandler drops the published graph and resets the build status.
func ClearHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	app.Store.Clear()
	app.Store.SetStatus(store.BuildStatus{State: store.BuildIdle})
	logger.Info("[Server] Graph cleared")

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Data cleared",
	})
}

// GetBuildStatusHandler reports the state of the most recent build.
func GetBuildStatusHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Store.Status())
}
