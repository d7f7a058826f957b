package style

import (
	"math"

	"github.com/fogleman/gg"

	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/seed"
)

const (
	sweepLayerCount = 9
	bokehCount      = 50
)

// CinematicSweep is the "Sora" style: a diagonal hue sweep over near-black,
// rotated parallax layers and bokeh dots. Bokeh placement draws from the
// random stream; everything else is a pure function of t.
type CinematicSweep struct{}

func (CinematicSweep) Engine() clip.Engine { return clip.EngineSora }

func (CinematicSweep) DrawFrame(dc *gg.Context, t float64, rnd *seed.Stream, prompt string) {
	w := float64(dc.Width())
	h := float64(dc.Height())
	min := math.Min(w, h)

	dc.SetRGB(0.03, 0.03, 0.04)
	dc.Clear()

	// Diagonal sweep, base hue oscillating with t.
	baseHue := 210 + 70*math.Sin(t*0.35)
	sweep := gg.NewLinearGradient(0, 0, w, h)
	sweep.AddColorStop(0, hsva(baseHue, 0.75, 0.35, 0.55))
	sweep.AddColorStop(0.5, hsva(baseHue+40, 0.8, 0.2, 0.35))
	sweep.AddColorStop(1, hsva(baseHue+90, 0.7, 0.3, 0.5))
	dc.SetFillStyle(sweep)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	// Parallax layers: deeper layers translate further and turn faster.
	for i := 0; i < sweepLayerCount; i++ {
		fi := float64(i)
		depth := (fi + 1) / sweepLayerCount

		x := w/2 + math.Sin(t*0.6+fi*0.8)*w*0.28*depth
		y := h/2 + math.Cos(t*0.5+fi*1.1)*h*0.22*depth
		size := min * (0.1 + 0.24*depth) * (1 + 0.15*math.Sin(t*1.4+fi))

		dc.Push()
		dc.Translate(x, y)
		dc.Rotate(t*0.3*(0.5+depth) + fi*0.7)

		layerHue := baseHue + depth*120
		fill := gg.NewLinearGradient(-size/2, -size/2, size/2, size/2)
		fill.AddColorStop(0, hsva(layerHue, 0.7, 0.8, 0.28*depth+0.06))
		fill.AddColorStop(1, hsva(layerHue+50, 0.8, 0.5, 0.04))
		dc.SetFillStyle(fill)
		dc.DrawRectangle(-size/2, -size/2, size, size)
		dc.Fill()
		dc.Pop()
	}

	// Bokeh: stream-drawn base position plus a small sinusoidal jitter,
	// opacity pulsing with t.
	for i := 0; i < bokehCount; i++ {
		fi := float64(i)
		x := rnd.Float64()*w + math.Sin(t*1.2+fi)*8
		y := rnd.Float64()*h + math.Cos(t*0.9+fi*0.7)*8
		r := 1 + rnd.Float64()*4

		alpha := 0.1 + 0.22*(0.5+0.5*math.Sin(t*2+fi*0.9))
		dc.SetColor(hsva(baseHue+fi*3, 0.25, 1, alpha))
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}

	drawSubtitleCaption(dc, TruncatePrompt(prompt))
}
