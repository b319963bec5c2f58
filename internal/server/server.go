package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/lecturemap/internal/bootstrap"
	"github.com/OFFIS-RIT/lecturemap/internal/queue"
	mid "github.com/OFFIS-RIT/lecturemap/internal/server/middleware"
	"github.com/OFFIS-RIT/lecturemap/internal/storage"
	"github.com/OFFIS-RIT/lecturemap/internal/util"
	"github.com/OFFIS-RIT/lecturemap/pkg/loader/io"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"
	"github.com/OFFIS-RIT/lecturemap/pkg/store/memory"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const defaultMaxUploadBytes = 500 << 20

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEcho creates the HTTP server for app with all middleware and routes.
func NewEcho(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	if app.MaxUploadBytes > 0 {
		// leave room for the multipart envelope
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", app.MaxUploadBytes/1024+1024)))
	}

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient, err := bootstrap.NewAIClient()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}
	client, err := bootstrap.NewGraphClient(aiClient, io.NewIOFileLoader())
	if err != nil {
		logger.Fatal("Invalid graph configuration", "err", err)
	}

	app := &mid.App{
		Mode:           mid.BuildMode(util.GetEnvString("BUILD_MODE", string(mid.BuildInline))),
		Graph:          client,
		Store:          memory.New(),
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		UploadDir:      util.GetEnvString("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(util.GetEnvNumeric("MAX_UPLOAD_SIZE", defaultMaxUploadBytes)),
		BuildTimeout:   bootstrap.BuildTimeout(),
	}

	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.Key = &k
	}

	if app.Mode == mid.BuildQueued {
		que := queue.Init()
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Jobs = queue.ChannelPublisher{Channel: ch}

		subCh, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SubscribeGraphEvents(ctx, subCh, app.Store); err != nil {
			logger.Fatal("Failed to subscribe to graph events", "err", err)
		}

		if storage.Enabled() {
			s3, err := storage.NewS3Client(ctx)
			if err != nil {
				logger.Fatal("Failed to create S3 client", "err", err)
			}
			app.S3 = s3
		}
	}

	e := NewEcho(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port, "mode", app.Mode)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
