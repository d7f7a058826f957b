package style

import (
	"math"

	"github.com/fogleman/gg"

	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/seed"
)

const (
	fogBlobCount      = 5
	fogParticleCount  = 120
	letterboxFraction = 0.015
)

// NeonFog is the "Veo3" style: drifting radial fog blobs, a particle spiral
// and a glowing caption. Every value is a pure function of t; the random
// stream is not consumed.
type NeonFog struct{}

func (NeonFog) Engine() clip.Engine { return clip.EngineVeo3 }

func (NeonFog) DrawFrame(dc *gg.Context, t float64, _ *seed.Stream, prompt string) {
	w := float64(dc.Width())
	h := float64(dc.Height())
	min := math.Min(w, h)

	dc.SetRGB(0.02, 0.01, 0.05)
	dc.Clear()

	// Fog blobs: centers oscillate with t and index, hue cycles with t,
	// alpha highest at the center.
	for i := 0; i < fogBlobCount; i++ {
		fi := float64(i)
		cx := w/2 + math.Sin(t*0.5+fi*1.7)*w*0.3
		cy := h/2 + math.Cos(t*0.4+fi*2.1)*h*0.3
		r := min * (0.28 + 0.1*math.Sin(t*0.8+fi))

		hue := t*40 + fi*72
		grad := gg.NewRadialGradient(cx, cy, 0, cx, cy, r)
		grad.AddColorStop(0, hsva(hue, 0.8, 1, 0.5))
		grad.AddColorStop(0.6, hsva(hue+30, 0.85, 0.8, 0.2))
		grad.AddColorStop(1, hsva(hue+60, 0.9, 0.6, 0))

		dc.SetFillStyle(grad)
		dc.DrawCircle(cx, cy, r)
		dc.Fill()
	}

	// Particle spiral: phase and radius grow with the particle's index
	// fraction, the whole spiral turns with t.
	for i := 0; i < fogParticleCount; i++ {
		fi := float64(i)
		frac := fi / fogParticleCount

		angle := frac*math.Pi*10 + t*0.9 + fi*0.05
		radius := frac * min * 0.46
		x := w/2 + math.Cos(angle)*radius
		y := h/2 + math.Sin(angle)*radius*0.85

		size := 1.2 + frac*3.6 + 0.8*math.Sin(t*3+fi)
		if size < 0.4 {
			size = 0.4
		}
		alpha := 0.25 + 0.3*(0.5+0.5*math.Sin(t*2+fi*0.7))

		dc.SetColor(hsva(t*60+frac*180, 0.7, 1, alpha))
		dc.DrawCircle(x, y, size)
		dc.Fill()
	}

	drawGlowCaption(dc, TruncatePrompt(prompt), t*40)
	drawLetterbox(dc)
}

// drawLetterbox darkens the top and bottom edges with soft gradients.
func drawLetterbox(dc *gg.Context) {
	w := float64(dc.Width())
	h := float64(dc.Height())
	thickness := math.Min(w, h) * letterboxFraction
	if thickness < 1 {
		thickness = 1
	}

	top := gg.NewLinearGradient(0, 0, 0, thickness)
	top.AddColorStop(0, hsva(0, 0, 0, 0.9))
	top.AddColorStop(1, hsva(0, 0, 0, 0))
	dc.SetFillStyle(top)
	dc.DrawRectangle(0, 0, w, thickness)
	dc.Fill()

	bottom := gg.NewLinearGradient(0, h, 0, h-thickness)
	bottom.AddColorStop(0, hsva(0, 0, 0, 0.9))
	bottom.AddColorStop(1, hsva(0, 0, 0, 0))
	dc.SetFillStyle(bottom)
	dc.DrawRectangle(0, h-thickness, w, thickness)
	dc.Fill()
}
