// Package clip defines the render request/result model: the caller-facing
// gate for a render and the record kept for each completed clip.
package clip

import (
	"fmt"
	"strings"
	"time"
)

// Engine selects one of the two fixed procedural styles. The tag is part of
// the seed input, so its exact spelling matters.
type Engine string

const (
	// EngineVeo3 renders the "neon fog" style.
	EngineVeo3 Engine = "Veo3"
	// EngineSora renders the "cinematic sweep" style.
	EngineSora Engine = "Sora"
)

// Engines lists the supported engine tags.
var Engines = []Engine{EngineVeo3, EngineSora}

// ParseEngine resolves a case-insensitive engine name to its canonical tag.
func ParseEngine(s string) (Engine, error) {
	for _, e := range Engines {
		if strings.EqualFold(s, string(e)) {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown engine %q (use: Veo3, Sora)", s)
}

// Resolution is one of the fixed output sizes.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Resolutions is the fixed set of supported output sizes.
var Resolutions = []Resolution{
	{512, 512},
	{768, 432},
	{1024, 576},
	{1280, 720},
}

// ParseResolution parses a "WxH" string and checks it against Resolutions.
func ParseResolution(s string) (Resolution, error) {
	var r Resolution
	if _, err := fmt.Sscanf(s, "%dx%d", &r.Width, &r.Height); err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution %q: expected WxH", s)
	}
	for _, known := range Resolutions {
		if r == known {
			return r, nil
		}
	}
	return Resolution{}, fmt.Errorf("unsupported resolution %s (use one of: %s)", r, resolutionList())
}

func resolutionList() string {
	parts := make([]string, len(Resolutions))
	for i, r := range Resolutions {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// Duration bounds in whole seconds.
const (
	MinDurationSeconds = 2
	MaxDurationSeconds = 12
)

// RenderRequest describes one render. It is immutable once a session starts.
type RenderRequest struct {
	Engine          Engine `json:"engine"`
	Prompt          string `json:"prompt"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	DurationSeconds int    `json:"durationSeconds"`
}

// Validate is the caller-facing gate: a request that fails here never starts
// a session.
func (r RenderRequest) Validate() error {
	if _, err := ParseEngine(string(r.Engine)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt must not be empty")
	}
	if _, err := ParseResolution(fmt.Sprintf("%dx%d", r.Width, r.Height)); err != nil {
		return err
	}
	if r.DurationSeconds < MinDurationSeconds || r.DurationSeconds > MaxDurationSeconds {
		return fmt.Errorf("duration %ds out of range [%d,%d]",
			r.DurationSeconds, MinDurationSeconds, MaxDurationSeconds)
	}
	return nil
}

// RenderedClip records a completed render. LocationHandle is ephemeral: it
// points at wherever the encoded clip currently lives (a file path or a
// server asset URL) and is revalidated when it outlives its target.
type RenderedClip struct {
	Engine          Engine    `json:"engine"`
	Prompt          string    `json:"prompt"`
	DurationSeconds int       `json:"durationSeconds"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	LocationHandle  string    `json:"locationHandle,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
