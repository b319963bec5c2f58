package server

import (
	"net/http"

	"github.com/OFFIS-RIT/lecturemap/internal/server/middleware"
	"github.com/OFFIS-RIT/lecturemap/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api")

	// Graph read routes
	apiRoutes.GET("/mindmap-data", routes.GetMindmapDataHandler)
	apiRoutes.GET("/build-status", routes.GetBuildStatusHandler)

	// Build routes
	apiRoutes.POST("/upload-audio", routes.UploadAudioHandler, middleware.AuthMiddleware)
	apiRoutes.POST("/build-transcript", routes.BuildTranscriptHandler, middleware.AuthMiddleware)
	apiRoutes.POST("/clear", routes.ClearHandler, middleware.AuthMiddleware)
}
