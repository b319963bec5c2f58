package memory

import (
	"sync"
	"testing"

	"github.com/OFFIS-RIT/lecturemap/pkg/common"
	"github.com/OFFIS-RIT/lecturemap/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphOf(n int) common.Graph {
	g := common.EmptyGraph()
	for i := range n {
		g.Concepts = append(g.Concepts, common.Concept{ID: "C" + string(rune('1'+i)), Label: "x"})
	}
	return g
}

func TestStoreStartsEmpty(t *testing.T) {
	s := New()
	g := s.Load()
	assert.NotNil(t, g.Concepts)
	assert.NotNil(t, g.Edges)
	assert.Empty(t, g.Concepts)
	assert.Equal(t, store.BuildIdle, s.Status().State)
}

func TestStorePublishAndClear(t *testing.T) {
	s := New()
	s.Publish(common.Graph{Concepts: []common.Concept{{ID: "C1"}}})

	g := s.Load()
	require.Len(t, g.Concepts, 1)
	assert.NotNil(t, g.Edges)

	s.Clear()
	assert.Empty(t, s.Load().Concepts)
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := New()
	s.Publish(graphOf(2))
	before := s.Load()

	s.Publish(graphOf(3))
	assert.Len(t, before.Concepts, 2)
	assert.Len(t, s.Load().Concepts, 3)
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if i%2 == 0 {
					s.Publish(graphOf(i%5 + 1))
					continue
				}
				g := s.Load()
				// every snapshot is complete: label set on every concept
				for _, c := range g.Concepts {
					assert.Equal(t, "x", c.Label)
				}
			}
		}()
	}
	wg.Wait()
}

func TestStoreStatusStamped(t *testing.T) {
	s := New()
	s.SetStatus(store.BuildStatus{JobID: "j1", State: store.BuildRunning, Stage: "chunking"})
	st := s.Status()
	assert.Equal(t, "j1", st.JobID)
	assert.Equal(t, store.BuildRunning, st.State)
	assert.False(t, st.UpdatedAt.IsZero())
}
