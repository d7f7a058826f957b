package capture

import (
	"context"
	"time"
)

// Clock supplies elapsed render time to the driver loop, one value per frame.
// Implementations decide pacing: a realtime clock mirrors live capture, a
// fixed-step clock renders as fast as frames can be produced.
type Clock interface {
	// Start marks the beginning of the render.
	Start()
	// Tick blocks until the next frame is due and returns seconds elapsed
	// since Start. ok is false when the context was cancelled.
	Tick(ctx context.Context) (elapsed float64, ok bool)
}

// RealtimeClock paces frames against the wall clock at a fixed rate, like a
// live capture stream.
type RealtimeClock struct {
	interval time.Duration
	start    time.Time
	ticker   *time.Ticker
}

// NewRealtimeClock returns a clock ticking at fps frames per second.
func NewRealtimeClock(fps int) *RealtimeClock {
	if fps <= 0 {
		fps = 30
	}
	return &RealtimeClock{interval: time.Second / time.Duration(fps)}
}

func (c *RealtimeClock) Start() {
	c.start = time.Now()
	c.ticker = time.NewTicker(c.interval)
}

func (c *RealtimeClock) Tick(ctx context.Context) (float64, bool) {
	select {
	case <-ctx.Done():
		c.ticker.Stop()
		return 0, false
	case <-c.ticker.C:
		return time.Since(c.start).Seconds(), true
	}
}

// FixedStepClock advances elapsed time by exactly 1/fps per tick without
// waiting, for faster-than-realtime rendering and deterministic tests.
type FixedStepClock struct {
	step float64
	n    int
}

// NewFixedStepClock returns a clock stepping at fps frames per second.
func NewFixedStepClock(fps int) *FixedStepClock {
	if fps <= 0 {
		fps = 30
	}
	return &FixedStepClock{step: 1 / float64(fps)}
}

func (c *FixedStepClock) Start() { c.n = 0 }

func (c *FixedStepClock) Tick(ctx context.Context) (float64, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	elapsed := float64(c.n) * c.step
	c.n++
	return elapsed, true
}
