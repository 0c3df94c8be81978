// Package fps measures frame rates from frame timestamps.
package fps

import (
	"context"
	"sync"
	"time"
)

// MaxFrameCount is the number of most recent frames kept by a Counter.
const MaxFrameCount = 60

// Counter records frame timestamps and computes frame rates from them.
// It is safe for concurrent use.
type Counter struct {
	mu    sync.Mutex
	now   func() time.Time
	stamp []time.Time
}

// NewCounter returns a Counter using the wall clock.
func NewCounter() *Counter {
	return NewCounterWithClock(time.Now)
}

// NewCounterWithClock returns a Counter reading time from now.
func NewCounterWithClock(now func() time.Time) *Counter {
	return &Counter{now: now, stamp: make([]time.Time, 0, MaxFrameCount)}
}

// Count records a frame at the current time, discarding the oldest
// frame once MaxFrameCount frames are held.
func (c *Counter) Count() {
	t := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stamp) >= MaxFrameCount {
		n := copy(c.stamp, c.stamp[1:])
		c.stamp = c.stamp[:n]
	}
	c.stamp = append(c.stamp, t)
}

// Frames returns the number of frames currently held.
func (c *Counter) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stamp)
}

// AvgFPS returns the average frame rate over the held frames: the n-1
// intervals between the n held timestamps divided by the time span from
// the oldest to the newest. It returns 0 with less than two frames or a
// zero time span.
func (c *Counter) AvgFPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.stamp)
	if n < 2 {
		return 0
	}
	return rate(n-1, c.stamp[n-1].Sub(c.stamp[0]))
}

// FPS returns the frame rate computed from the last two frames.
func (c *Counter) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.stamp)
	if n < 2 {
		return 0
	}
	return rate(1, c.stamp[n-1].Sub(c.stamp[n-2]))
}

func rate(frames int, span time.Duration) float64 {
	if span <= 0 {
		return 0
	}
	return float64(frames) / span.Seconds()
}

// Run counts a frame every interval until ctx is done and returns the
// context error.
func (c *Counter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	c.Count()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Count()
		}
	}
}
