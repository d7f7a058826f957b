package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/encode"
)

// Driver runs a session's frame loop against a clock and an encode sink.
type Driver struct {
	clock  Clock
	logger *slog.Logger

	// OnProgress, when set, is called after each frame with the session's
	// 0–100 progress value.
	OnProgress func(progress int)
}

// NewDriver builds a driver for the given clock. A nil logger uses the
// default.
func NewDriver(clock Clock, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{clock: clock, logger: logger}
}

// Run renders the session to completion: frames are painted in increasing
// time order and written to sink until the configured duration elapses, then
// the sink is finalized and the clip record built around locationHandle.
//
// There are no retries. Any failure aborts the session and yields no output.
func (d *Driver) Run(ctx context.Context, s *Session, sink encode.Sink, locationHandle string) (clip.RenderedClip, error) {
	// abort tears down a failed render: no output is produced, but the sink
	// is still closed so its resources (encoder processes, pipes) are
	// released rather than leaked.
	abort := func(err error) (clip.RenderedClip, error) {
		s.Abort()
		sink.Close()
		return clip.RenderedClip{}, err
	}

	if err := s.Start(); err != nil {
		return abort(fmt.Errorf("start render: %w", err))
	}

	req := s.Request()
	dur := float64(req.DurationSeconds)
	d.logger.Debug("render started",
		"engine", req.Engine, "seed", s.Seed(),
		"size", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"duration", req.DurationSeconds)

	d.clock.Start()
	frames := 0
	for {
		elapsed, ok := d.clock.Tick(ctx)
		if !ok {
			return abort(ctx.Err())
		}
		if elapsed >= dur {
			break
		}

		frame, err := s.Advance(elapsed)
		if err != nil {
			return abort(err)
		}
		if err := sink.WriteFrame(frame); err != nil {
			return abort(fmt.Errorf("capture frame: %w", err))
		}
		frames++

		if d.OnProgress != nil {
			d.OnProgress(s.Progress())
		}
	}

	if err := s.Finalize(); err != nil {
		return abort(err)
	}
	if err := sink.Close(); err != nil {
		s.Abort()
		return clip.RenderedClip{}, fmt.Errorf("finalize capture: %w", err)
	}
	if d.OnProgress != nil {
		d.OnProgress(s.Progress())
	}

	rec, err := s.Complete(locationHandle)
	if err != nil {
		return clip.RenderedClip{}, err
	}
	d.logger.Debug("render complete", "frames", frames, "handle", locationHandle)
	return rec, nil
}
