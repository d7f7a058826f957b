// Package capture drives a render from request to encoded clip.
//
// A Session owns the drawing surface, seed and random stream for one render
// and exposes a scheduler-agnostic Advance(elapsed) entry point. A Driver
// feeds Advance from a Clock and pipes frames into an encode sink, so the
// same core logic runs under a real frame clock or a synthetic one in tests.
package capture

import (
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"

	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/seed"
	"github.com/arel8x/mirageclip/pkg/style"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRendering
	StateFinalizing
	StateComplete
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateFinalizing:
		return "finalizing"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is the in-flight state of a single render. Not safe for concurrent
// use; one render owns its session exclusively.
type Session struct {
	req    clip.RenderRequest
	sty    style.Style
	stream *seed.Stream
	sd     uint32

	dc          *gg.Context
	state       State
	progress    int
	lastElapsed float64
}

// NewSession validates the request and prepares an idle session. The request
// is immutable from here on.
func NewSession(req clip.RenderRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sty, ok := style.ForEngine(req.Engine)
	if !ok {
		return nil, fmt.Errorf("no style for engine %q", req.Engine)
	}

	sd := seed.Derive(req.Prompt, string(req.Engine), req.Width, req.Height)
	return &Session{
		req:    req,
		sty:    sty,
		stream: seed.NewStream(sd),
		sd:     sd,
		state:  StateIdle,
	}, nil
}

// Start acquires the drawing surface and moves Idle → Rendering. On surface
// acquisition failure the session is Aborted and nothing is released.
func (s *Session) Start() error {
	if s.state != StateIdle {
		return fmt.Errorf("cannot start render in state %s", s.state)
	}
	dc, err := acquireSurface(s.req.Width, s.req.Height)
	if err != nil {
		s.state = StateAborted
		return err
	}
	s.dc = dc
	s.state = StateRendering
	return nil
}

func acquireSurface(width, height int) (*gg.Context, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cannot acquire %dx%d surface", width, height)
	}
	return gg.NewContext(width, height), nil
}

// Advance paints the frame at elapsed seconds and returns the surface pixels.
// Elapsed time never moves backwards: a stale tick repaints the last frame
// time instead of rewinding. The stream is rewound before each frame so
// random placement is consistent across the frames of one render.
func (s *Session) Advance(elapsed float64) (*image.RGBA, error) {
	if s.state != StateRendering {
		return nil, fmt.Errorf("cannot advance in state %s", s.state)
	}
	if elapsed < s.lastElapsed {
		elapsed = s.lastElapsed
	}
	s.lastElapsed = elapsed

	s.stream.Reset()
	s.sty.DrawFrame(s.dc, elapsed, s.stream, s.req.Prompt)

	if p := progressFor(elapsed, s.req.DurationSeconds); p > s.progress {
		s.progress = p
	}
	return s.dc.Image().(*image.RGBA), nil
}

// progressFor maps elapsed time to 0–100. It reaches 100 only once elapsed
// meets the configured duration.
func progressFor(elapsed float64, durationSeconds int) int {
	dur := float64(durationSeconds)
	if elapsed >= dur {
		return 100
	}
	if elapsed <= 0 {
		return 0
	}
	p := int(elapsed / dur * 100)
	if p > 99 {
		p = 99
	}
	return p
}

// Finalize moves Rendering → Finalizing once the duration has elapsed and
// pins progress at 100.
func (s *Session) Finalize() error {
	if s.state != StateRendering {
		return fmt.Errorf("cannot finalize in state %s", s.state)
	}
	s.state = StateFinalizing
	s.progress = 100
	return nil
}

// Complete moves Finalizing → Complete, releases the surface and returns the
// clip record pointing at locationHandle.
func (s *Session) Complete(locationHandle string) (clip.RenderedClip, error) {
	if s.state != StateFinalizing {
		return clip.RenderedClip{}, fmt.Errorf("cannot complete in state %s", s.state)
	}
	s.state = StateComplete
	s.dc = nil
	return clip.RenderedClip{
		Engine:          s.req.Engine,
		Prompt:          s.req.Prompt,
		DurationSeconds: s.req.DurationSeconds,
		Width:           s.req.Width,
		Height:          s.req.Height,
		LocationHandle:  locationHandle,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// Abort terminates the render with no output. Terminal but non-crashing: the
// session simply produces nothing.
func (s *Session) Abort() {
	if s.state == StateComplete {
		return
	}
	s.state = StateAborted
	s.dc = nil
}

// Progress reports the current 0–100 progress. Monotonically non-decreasing
// for the lifetime of the session.
func (s *Session) Progress() int { return s.progress }

// State reports the lifecycle state.
func (s *Session) State() State { return s.state }

// Seed reports the derived 32-bit seed for this render.
func (s *Session) Seed() uint32 { return s.sd }

// Request returns the immutable request this session renders.
func (s *Session) Request() clip.RenderRequest { return s.req }
