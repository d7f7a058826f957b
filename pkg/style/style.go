// Package style implements the two fixed procedural frame styles.
//
// A Style paints one complete frame as a function of elapsed time and, for
// styles that use it, the render's seeded random stream. Painting the same
// (t, stream position) twice produces pixel-identical frames.
package style

import (
	"github.com/fogleman/gg"

	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/seed"
)

// Style is one procedural animation recipe.
type Style interface {
	// Engine reports the engine tag this style renders.
	Engine() clip.Engine
	// DrawFrame paints the complete frame for time t (seconds since render
	// start) onto dc. Styles that place elements randomly draw from rnd;
	// others leave it untouched.
	DrawFrame(dc *gg.Context, t float64, rnd *seed.Stream, prompt string)
}

// ForEngine returns the style registered for an engine tag.
func ForEngine(e clip.Engine) (Style, bool) {
	switch e {
	case clip.EngineVeo3:
		return NeonFog{}, true
	case clip.EngineSora:
		return CinematicSweep{}, true
	}
	return nil, false
}
