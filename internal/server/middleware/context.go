package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"
)

type AppUser struct {
	Subject string
	Role    string
}

// BuildMode selects where uploads are turned into graphs.
type BuildMode string

const (
	// BuildInline builds inside the upload request, as a single process.
	BuildInline BuildMode = "inline"
	// BuildQueued hands uploads to workers through RabbitMQ.
	BuildQueued BuildMode = "queue"
)

// JobPublisher enqueues build jobs. queue.ChannelPublisher implements it.
type JobPublisher interface {
	PublishJob(ctx context.Context, data []byte) error
}

// Builder runs builds for the inline mode. *graph.GraphClient implements
// it.
type Builder interface {
	BuildGraph(ctx context.Context, audioPath string, opts ...graph.BuildOption) (*graph.BuildResult, error)
	BuildGraphFromText(ctx context.Context, text string, opts ...graph.BuildOption) (*graph.BuildResult, error)
}

type App struct {
	Mode         BuildMode
	Graph        Builder
	Store        store.GraphStore
	Jobs         JobPublisher
	S3           *s3.Client
	Key          *keyfunc.Keyfunc
	MasterAPIKey string

	UploadDir      string
	MaxUploadBytes int64
	BuildTimeout   time.Duration

	// BuildLock serializes inline builds; the store has a single writer.
	BuildLock sync.Mutex
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
