// webm.go - VP9/WebM encoding through an external ffmpeg process.
//
// Raw RGBA frames are piped to ffmpeg's stdin and the muxed WebM stream is
// read back on stdout. This is the preferred codec path.
package encode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
)

const ffmpegBinary = "ffmpeg"

// WebMSink encodes frames to VP9 in a WebM container via ffmpeg.
type WebMSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	width  int
	height int
	wrote  bool
	closed bool
}

// NewWebMSink starts the encoder process. The muxed WebM bytes are written to
// out as encoding progresses.
func NewWebMSink(ctx context.Context, out io.Writer, width, height, fps int) (*WebMSink, error) {
	if fps <= 0 {
		fps = 30
	}
	stderr := new(bytes.Buffer)
	cmd := exec.CommandContext(ctx, ffmpegBinary,
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprint(fps),
		"-i", "pipe:0",
		"-c:v", "libvpx-vp9",
		"-pix_fmt", "yuv420p",
		"-b:v", "1M",
		"-f", "webm",
		"pipe:1",
	)
	cmd.Stdout = out
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &WebMSink{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		width:  width,
		height: height,
	}, nil
}

// WriteFrame feeds one frame of raw RGBA pixels to the encoder.
func (s *WebMSink) WriteFrame(img image.Image) error {
	if s.closed {
		return fmt.Errorf("webm sink closed")
	}
	rgba := toRGBA(img)
	b := rgba.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame size %dx%d does not match stream %dx%d",
			b.Dx(), b.Dy(), s.width, s.height)
	}

	rowLen := s.width * 4
	for y := 0; y < s.height; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+rowLen]
		if _, err := s.stdin.Write(row); err != nil {
			return fmt.Errorf("write frame to ffmpeg: %w", err)
		}
	}
	s.wrote = true
	return nil
}

// Close finishes the stream and waits for the encoder to exit.
func (s *WebMSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.stdin.Close(); err != nil {
		s.cmd.Wait()
		return fmt.Errorf("close ffmpeg input: %w", err)
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, s.stderr.String())
	}
	if !s.wrote {
		return ErrNoFrames
	}
	return nil
}
