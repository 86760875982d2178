// Package clock measures frame times with the high resolution timer.
package clock

import (
	"fmt"
	"time"

	"github.com/loov/hrtime"
)

// Report summarizes the frames ticked since the previous report.
type Report struct {
	Frames  int
	Elapsed time.Duration
}

func (r Report) FPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

// FrameTime is the mean time between ticks.
func (r Report) FrameTime() time.Duration {
	if r.Frames == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Frames)
}

func (r Report) String() string {
	return fmt.Sprintf("%d frames in %s, %.1f fps, %s/frame", r.Frames, r.Elapsed.Round(time.Millisecond), r.FPS(), r.FrameTime().Round(time.Microsecond))
}

type Clock struct {
	now      func() time.Duration
	interval time.Duration

	last  time.Duration
	delta time.Duration

	windowStart  time.Duration
	windowFrames int
}

// New starts a clock that produces a Report every interval. A zero interval
// disables reports.
func New(interval time.Duration) *Clock {
	return newClock(hrtime.Now, interval)
}

func newClock(now func() time.Duration, interval time.Duration) *Clock {
	c := &Clock{now: now, interval: interval}
	c.last = c.now()
	c.windowStart = c.last
	return c
}

// Tick marks the start of a frame and returns the time since the previous one.
func (c *Clock) Tick() time.Duration {
	current := c.now()
	c.delta = current - c.last
	c.last = current
	c.windowFrames++
	return c.delta
}

// Delta is the value the last Tick returned.
func (c *Clock) Delta() time.Duration {
	return c.delta
}

// Report returns the frames ticked since the last report once the interval
// has passed.
func (c *Clock) Report() (Report, bool) {
	if c.interval <= 0 {
		return Report{}, false
	}

	elapsed := c.last - c.windowStart
	if elapsed < c.interval {
		return Report{}, false
	}

	report := Report{Frames: c.windowFrames, Elapsed: elapsed}
	c.windowStart = c.last
	c.windowFrames = 0
	return report, true
}
