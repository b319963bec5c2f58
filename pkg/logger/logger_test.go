package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	level   string
	message string
	keyvals []any
}

type recorder struct {
	entries []entry
}

func (r *recorder) add(l, m string, kv []any) {
	r.entries = append(r.entries, entry{level: l, message: m, keyvals: kv})
}

func (r *recorder) Log(m string, kv ...any)   { r.add("log", m, kv) }
func (r *recorder) Debug(m string, kv ...any) { r.add("debug", m, kv) }
func (r *recorder) Info(m string, kv ...any)  { r.add("info", m, kv) }
func (r *recorder) Warn(m string, kv ...any)  { r.add("warn", m, kv) }
func (r *recorder) Error(m string, kv ...any) { r.add("error", m, kv) }
func (r *recorder) Fatal(m string, kv ...any) { r.add("fatal", m, kv) }

func TestDispatchForwardsKeyvals(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Init(a, b)
	defer Init()

	Log("plain", "k", 1)
	Info("[Graph] built", "concepts", 3)
	Warn("[Validate] dropped", "reason", "self_loop")

	for _, r := range []*recorder{a, b} {
		assert.Len(t, r.entries, 3)
		assert.Equal(t, entry{"log", "plain", []any{"k", 1}}, r.entries[0])
		assert.Equal(t, "info", r.entries[1].level)
		assert.Equal(t, []any{"reason", "self_loop"}, r.entries[2].keyvals)
	}
}

func TestUninitializedIsNoop(t *testing.T) {
	Init()
	assert.NotPanics(t, func() {
		Error("nothing registered")
	})
}
