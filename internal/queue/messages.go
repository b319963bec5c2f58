package queue

import (
	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"
)

// BuildJobMsg asks a worker to build the graph of one uploaded recording.
// Source is a local path or, when Storage is "s3", an object key.
type BuildJobMsg struct {
	JobID    string `json:"job_id"`
	Source   string `json:"source"`
	Storage  string `json:"storage"`
	Filename string `json:"filename"`
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// GraphEventMsg reports build progress. Graph and Report are only set on
// TopicGraphBuilt.
type GraphEventMsg struct {
	JobID  string             `json:"job_id"`
	Source string             `json:"source,omitempty"`
	State  store.BuildState   `json:"state"`
	Stage  graph.Stage        `json:"stage,omitempty"`
	Error  string             `json:"error,omitempty"`
	Graph  *common.Graph      `json:"graph,omitempty"`
	Report *graph.BuildReport `json:"report,omitempty"`
}
