package timing

import (
	"sync"
	"time"
)

// Recorder collects wall-clock durations of named steps in the order they
// were first started.
type Recorder struct {
	mu        sync.Mutex
	now       func() time.Time
	order     []string
	durations map[string]time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now, durations: make(map[string]time.Duration)}
}

// Start begins timing name and returns the function that stops it. Timing
// the same name twice adds up both runs.
func (r *Recorder) Start(name string) func() time.Duration {
	r.mu.Lock()
	if _, ok := r.durations[name]; !ok {
		r.order = append(r.order, name)
		r.durations[name] = 0
	}
	started := r.now()
	r.mu.Unlock()

	return func() time.Duration {
		r.mu.Lock()
		defer r.mu.Unlock()
		d := r.now().Sub(started)
		r.durations[name] += d
		return d
	}
}

// Step is one timed entry.
type Step struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Steps returns recorded durations in start order.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := make([]Step, len(r.order))
	for i, name := range r.order {
		steps[i] = Step{Name: name, Duration: r.durations[name]}
	}
	return steps
}

// Total sums all recorded durations.
func (r *Recorder) Total() time.Duration {
	var total time.Duration
	for _, s := range r.Steps() {
		total += s.Duration
	}
	return total
}

// FormatDuration renders d as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Round(time.Second) / time.Second)
	return time.Unix(secs, 0).UTC().Format("15:04:05")
}
