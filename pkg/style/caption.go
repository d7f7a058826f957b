package style

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// captionRuneLimit caps the displayed prompt length.
const captionRuneLimit = 80

// TruncatePrompt clips the prompt to the caption display limit.
func TruncatePrompt(s string) string {
	r := []rune(s)
	if len(r) <= captionRuneLimit {
		return s
	}
	return string(r[:captionRuneLimit])
}

// hsva builds an NRGBA from HSV plus alpha. Hue wraps into [0,360).
func hsva(h, s, v, a float64) color.NRGBA {
	c := colorful.Hsv(math.Mod(math.Mod(h, 360)+360, 360), s, v)
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(a)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// captionBaseline places captions near the bottom of the frame.
func captionBaseline(dc *gg.Context) (x, y, px float64) {
	w := float64(dc.Width())
	h := float64(dc.Height())
	min := math.Min(w, h)
	px = math.Max(16, min*0.045)
	return w / 2, h - min*0.08, px
}

var glowRing = [8][2]float64{
	{1, 0}, {0.707, 0.707}, {0, 1}, {-0.707, 0.707},
	{-1, 0}, {-0.707, -0.707}, {0, -1}, {0.707, -0.707},
}

// drawGlowCaption draws the prompt with a soft colored halo, standing in for
// canvas shadow blur: two rings of low-alpha copies under a bright fill.
func drawGlowCaption(dc *gg.Context, text string, hue float64) {
	if text == "" {
		return
	}
	x, y, px := captionBaseline(dc)
	face := captionFace(px)
	if face == nil {
		return
	}
	dc.SetFontFace(face)

	for _, radius := range []float64{3.5, 1.8} {
		dc.SetColor(hsva(hue, 0.85, 1, 0.16))
		for _, dir := range glowRing {
			dc.DrawStringAnchored(text, x+dir[0]*radius, y+dir[1]*radius, 0.5, 0.5)
		}
	}

	dc.SetRGBA(1, 1, 1, 0.94)
	dc.DrawStringAnchored(text, x, y, 0.5, 0.5)
}

// drawSubtitleCaption draws the prompt subtitle-style: dark outline, light
// fill.
func drawSubtitleCaption(dc *gg.Context, text string) {
	if text == "" {
		return
	}
	x, y, px := captionBaseline(dc)
	face := captionFace(px)
	if face == nil {
		return
	}
	dc.SetFontFace(face)

	outline := px * 0.08
	if outline < 1 {
		outline = 1
	}
	dc.SetRGBA(0, 0, 0, 0.85)
	for _, dir := range glowRing {
		dc.DrawStringAnchored(text, x+dir[0]*outline, y+dir[1]*outline, 0.5, 0.5)
	}

	dc.SetRGBA(0.97, 0.97, 0.95, 1)
	dc.DrawStringAnchored(text, x, y, 0.5, 0.5)
}
