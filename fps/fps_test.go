package fps

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCounterRates(t *testing.T) {
	const tol = 1e-9
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c := NewCounterWithClock(clk.now)
	if c.AvgFPS() != 0 || c.FPS() != 0 {
		t.Fatal("empty counter must report 0")
	}
	c.Count()
	if c.AvgFPS() != 0 || c.FPS() != 0 {
		t.Fatal("single frame must report 0")
	}
	for i := 0; i < 9; i++ {
		clk.advance(20 * time.Millisecond)
		c.Count()
	}
	// 10 frames spaced by 20ms.
	if got := c.AvgFPS(); !scalar.EqualWithinAbs(got, 50, tol) {
		t.Errorf("AvgFPS = %g, want 50", got)
	}
	clk.advance(10 * time.Millisecond)
	c.Count()
	if got := c.FPS(); !scalar.EqualWithinAbs(got, 100, tol) {
		t.Errorf("FPS = %g, want 100", got)
	}
	// 10 intervals over 190ms.
	if got := c.AvgFPS(); !scalar.EqualWithinAbs(got, 10/0.19, tol) {
		t.Errorf("AvgFPS = %g, want %g", got, 10/0.19)
	}
}

func TestCounterWindow(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewCounterWithClock(clk.now)
	// Slow frames first, then a full window of fast frames.
	for i := 0; i < 10; i++ {
		clk.advance(time.Second)
		c.Count()
	}
	for i := 0; i < MaxFrameCount; i++ {
		clk.advance(10 * time.Millisecond)
		c.Count()
	}
	if c.Frames() != MaxFrameCount {
		t.Fatalf("got %d frames held", c.Frames())
	}
	if got := c.AvgFPS(); !scalar.EqualWithinAbs(got, 100, 1e-9) {
		t.Errorf("slow frames must leave the window, AvgFPS = %g", got)
	}
}

func TestCounterZeroSpan(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewCounterWithClock(clk.now)
	c.Count()
	c.Count()
	if c.AvgFPS() != 0 || c.FPS() != 0 {
		t.Error("zero time span must report 0")
	}
}

func TestCounterRun(t *testing.T) {
	c := NewCounter()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		err = c.Run(ctx, time.Millisecond)
	}()
	deadline := time.Now().Add(5 * time.Second)
	for c.Frames() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	wg.Wait()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if c.Frames() < 3 {
		t.Fatalf("got %d frames", c.Frames())
	}
	if c.AvgFPS() <= 0 {
		t.Error("expected positive frame rate")
	}
}
