package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTime struct {
	now time.Duration
}

func (f *fakeTime) read() time.Duration {
	return f.now
}

func TestTickDelta(t *testing.T) {
	ft := &fakeTime{now: time.Second}
	c := newClock(ft.read, 0)

	ft.now += 16 * time.Millisecond
	assert.Equal(t, 16*time.Millisecond, c.Tick())
	assert.Equal(t, 16*time.Millisecond, c.Delta())

	ft.now += 20 * time.Millisecond
	assert.Equal(t, 20*time.Millisecond, c.Tick())
}

func TestReport(t *testing.T) {
	ft := &fakeTime{}
	c := newClock(ft.read, time.Second)

	for i := 0; i < 59; i++ {
		ft.now += 16 * time.Millisecond
		c.Tick()
	}
	_, ok := c.Report()
	require.False(t, ok)

	ft.now += 100 * time.Millisecond
	c.Tick()
	report, ok := c.Report()
	require.True(t, ok)
	assert.Equal(t, 60, report.Frames)
	assert.Equal(t, 1044*time.Millisecond, report.Elapsed)
	assert.InDelta(t, 57.47, report.FPS(), 0.01)
	assert.Equal(t, 17400*time.Microsecond, report.FrameTime())

	_, ok = c.Report()
	assert.False(t, ok)
}

func TestReportDisabled(t *testing.T) {
	ft := &fakeTime{}
	c := newClock(ft.read, 0)
	ft.now += time.Hour
	c.Tick()

	_, ok := c.Report()
	assert.False(t, ok)
}

func TestEmptyReport(t *testing.T) {
	assert.Zero(t, Report{}.FPS())
	assert.Zero(t, Report{}.FrameTime())
	assert.Equal(t, "2 frames in 1s, 2.0 fps, 500ms/frame", Report{Frames: 2, Elapsed: time.Second}.String())
}

func TestNewUsesHighResolutionTimer(t *testing.T) {
	c := New(time.Second)
	assert.GreaterOrEqual(t, c.Tick(), time.Duration(0))
}
