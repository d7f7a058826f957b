// Package encode writes rendered frames into video containers and still
// images.
//
// Two sinks are available: a VP9/WebM sink backed by an external ffmpeg
// process (preferred) and a pure-Go MJPEG AVI sink (generic fallback when
// VP9 encoding is unavailable). Codec fallback is silent apart from a log
// line, mirroring recorder behavior: a render never fails just because the
// preferred codec is missing.
package encode

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// Sink consumes frames in presentation order and finalizes the container on
// Close. A Sink is owned by a single render.
type Sink interface {
	WriteFrame(img image.Image) error
	Close() error
}

// Container extensions.
const (
	ExtWebM = ".webm"
	ExtAVI  = ".avi"
)

// VP9Available reports whether the preferred VP9/WebM encoder can run.
func VP9Available() bool {
	_, err := exec.LookPath(ffmpegBinary)
	return err == nil
}

// NewSink opens the preferred sink for the writer: VP9/WebM when ffmpeg is
// present, MJPEG AVI otherwise. It returns the sink and the container
// extension actually used.
func NewSink(ctx context.Context, w io.Writer, width, height, fps int, logger *slog.Logger) (Sink, string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if VP9Available() {
		s, err := NewWebMSink(ctx, w, width, height, fps)
		if err == nil {
			return s, ExtWebM, nil
		}
		logger.Warn("vp9 encoder unavailable, falling back to mjpeg avi", "error", err)
	} else {
		logger.Debug("ffmpeg not found, falling back to mjpeg avi")
	}
	return NewAVISink(w, width, height, fps), ExtAVI, nil
}

// SinkPath rewrites an output path's extension to match the container the
// sink actually produced.
func SinkPath(path, ext string) string {
	cur := strings.ToLower(filepath.Ext(path))
	if cur == ext {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// toRGBA returns img as *image.RGBA with a zero-origin bounds, copying only
// when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// ErrNoFrames is returned when a sink is closed before any frame was written.
var ErrNoFrames = fmt.Errorf("no frames written")
