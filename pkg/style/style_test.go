package style

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/fogleman/gg"

	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/seed"
)

func TestForEngine(t *testing.T) {
	for _, e := range clip.Engines {
		s, ok := ForEngine(e)
		if !ok {
			t.Fatalf("no style for engine %q", e)
		}
		if s.Engine() != e {
			t.Errorf("style for %q reports engine %q", e, s.Engine())
		}
	}
	if _, ok := ForEngine("Pika"); ok {
		t.Error("expected no style for unknown engine")
	}
}

func TestTruncatePrompt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"exactly 80", strings.Repeat("x", 80), strings.Repeat("x", 80)},
		{"over 80", strings.Repeat("x", 81), strings.Repeat("x", 80)},
		{"runes not bytes", strings.Repeat("é", 81), strings.Repeat("é", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncatePrompt(tt.in); got != tt.want {
				t.Errorf("TruncatePrompt() len = %d, want len %d", len([]rune(got)), len([]rune(tt.want)))
			}
		})
	}
}

func renderFrame(t *testing.T, sty Style, elapsed float64, sd uint32) []byte {
	t.Helper()
	dc := gg.NewContext(96, 96)
	sty.DrawFrame(dc, elapsed, seed.NewStream(sd), "test prompt")
	return append([]byte(nil), dc.Image().(*image.RGBA).Pix...)
}

func TestFramesAreDeterministic(t *testing.T) {
	for _, e := range clip.Engines {
		t.Run(string(e), func(t *testing.T) {
			sty, _ := ForEngine(e)
			a := renderFrame(t, sty, 1.25, 0xC84CD47A)
			b := renderFrame(t, sty, 1.25, 0xC84CD47A)
			if !bytes.Equal(a, b) {
				t.Error("same (t, seed) produced different pixels")
			}
		})
	}
}

func TestFramesVaryWithTime(t *testing.T) {
	sty, _ := ForEngine(clip.EngineVeo3)
	a := renderFrame(t, sty, 0.5, 1)
	b := renderFrame(t, sty, 2.5, 1)
	if bytes.Equal(a, b) {
		t.Error("frames at different times should differ")
	}
}

// Neon fog is a pure function of t: it must leave the stream untouched.
func TestNeonFogDoesNotConsumeStream(t *testing.T) {
	dc := gg.NewContext(96, 96)
	rnd := seed.NewStream(1)
	NeonFog{}.DrawFrame(dc, 1.0, rnd, "test")

	if got := rnd.Float64(); got != 0.6270739405881613 {
		t.Errorf("stream was consumed during neon fog frame: next value %v", got)
	}
}

func TestCinematicSweepConsumesStream(t *testing.T) {
	dc := gg.NewContext(96, 96)
	rnd := seed.NewStream(1)
	CinematicSweep{}.DrawFrame(dc, 1.0, rnd, "test")

	fresh := seed.NewStream(1)
	if rnd.Float64() == fresh.Float64() {
		t.Error("cinematic sweep should draw bokeh placements from the stream")
	}
}

// Bokeh placement must match between renders when the stream is rewound.
func TestCinematicSweepStreamReplay(t *testing.T) {
	rnd := seed.NewStream(7)
	a := func() []byte {
		dc := gg.NewContext(96, 96)
		CinematicSweep{}.DrawFrame(dc, 0.75, rnd, "replay")
		return append([]byte(nil), dc.Image().(*image.RGBA).Pix...)
	}()

	rnd.Reset()
	b := func() []byte {
		dc := gg.NewContext(96, 96)
		CinematicSweep{}.DrawFrame(dc, 0.75, rnd, "replay")
		return append([]byte(nil), dc.Image().(*image.RGBA).Pix...)
	}()

	if !bytes.Equal(a, b) {
		t.Error("rewound stream produced different bokeh placement")
	}
}
