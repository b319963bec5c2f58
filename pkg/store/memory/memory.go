package memory

import (
	"sync/atomic"
	"time"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"
)

// Store is an in-process GraphStore. Snapshots are swapped through atomic
// pointers so readers never block writers. The graph returned by Load is
// shared between readers and must be treated as read-only.
type Store struct {
	graph  atomic.Pointer[common.Graph]
	status atomic.Pointer[store.BuildStatus]
	now    func() time.Time
}

func New() *Store {
	s := &Store{now: time.Now}
	s.Clear()
	s.status.Store(&store.BuildStatus{State: store.BuildIdle, UpdatedAt: s.now()})
	return s
}

func (s *Store) Load() common.Graph {
	return *s.graph.Load()
}

func (s *Store) Publish(graph common.Graph) {
	if graph.Concepts == nil {
		graph.Concepts = []common.Concept{}
	}
	if graph.Edges == nil {
		graph.Edges = []common.Edge{}
	}
	s.graph.Store(&graph)
}

func (s *Store) Clear() {
	g := common.EmptyGraph()
	s.graph.Store(&g)
}

func (s *Store) Status() store.BuildStatus {
	return *s.status.Load()
}

// SetStatus replaces the build status and stamps UpdatedAt.
func (s *Store) SetStatus(status store.BuildStatus) {
	status.UpdatedAt = s.now()
	s.status.Store(&status)
}

var _ store.GraphStore = (*Store)(nil)
