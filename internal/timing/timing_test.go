package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestRecorderOrderAndSum(t *testing.T) {
	r := NewRecorder()
	clock, advance := fakeClock(time.Unix(0, 0))
	r.now = clock

	stop := r.Start("chunking")
	advance(2 * time.Second)
	assert.Equal(t, 2*time.Second, stop())

	stop = r.Start("extracting")
	advance(time.Second)
	stop()

	stop = r.Start("chunking")
	advance(time.Second)
	stop()

	assert.Equal(t, []Step{
		{Name: "chunking", Duration: 3 * time.Second},
		{Name: "extracting", Duration: time.Second},
	}, r.Steps())
	assert.Equal(t, 4*time.Second, r.Total())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "01:02:03", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
}
