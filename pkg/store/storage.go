package store

import (
	"time"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
)

// BuildState is the lifecycle state of the most recent build.
type BuildState string

const (
	BuildIdle      BuildState = "idle"
	BuildQueued    BuildState = "queued"
	BuildRunning   BuildState = "running"
	BuildSucceeded BuildState = "succeeded"
	BuildFailed    BuildState = "failed"
)

// BuildStatus describes the most recent build known to a store.
type BuildStatus struct {
	JobID     string     `json:"job_id,omitempty"`
	Source    string     `json:"source,omitempty"`
	State     BuildState `json:"state"`
	Stage     string     `json:"stage,omitempty"`
	Error     string     `json:"error,omitempty"`
	Concepts  int        `json:"concepts"`
	Edges     int        `json:"edges"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GraphStore holds the published graph. Readers always see a complete
// snapshot: a new graph becomes visible in one step when Publish is called
// and a failed build never calls Publish.
type GraphStore interface {
	Load() common.Graph
	Publish(graph common.Graph)
	Clear()

	Status() BuildStatus
	SetStatus(status BuildStatus)
}
