// avi.go - Pure Go MJPEG AVI container writer.
//
// Frames are JPEG-encoded as they arrive and the RIFF structure is emitted on
// Close, once chunk sizes and the index are known. Creates valid AVI files
// without external dependencies.
package encode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

const aviJPEGQuality = 90

// AVISink writes an MJPEG video track into an AVI container.
type AVISink struct {
	w      io.Writer
	width  int
	height int
	fps    int

	frames [][]byte // JPEG payloads, one per frame
	maxLen uint32
	closed bool
}

// NewAVISink creates a sink producing an AVI file on w when closed.
func NewAVISink(w io.Writer, width, height, fps int) *AVISink {
	if fps <= 0 {
		fps = 30
	}
	return &AVISink{w: w, width: width, height: height, fps: fps}
}

// WriteFrame JPEG-encodes one frame and queues it for the container.
func (s *AVISink) WriteFrame(img image.Image) error {
	if s.closed {
		return fmt.Errorf("avi sink closed")
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: aviJPEGQuality}); err != nil {
		return fmt.Errorf("encode JPEG frame: %w", err)
	}
	data := buf.Bytes()
	if n := uint32(len(data)); n > s.maxLen {
		s.maxLen = n
	}
	s.frames = append(s.frames, data)
	return nil
}

// Close writes the complete RIFF/AVI structure.
func (s *AVISink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if len(s.frames) == 0 {
		return ErrNoFrames
	}

	totalFrames := uint32(len(s.frames))
	fps := uint32(s.fps)
	width := uint32(s.width)
	height := uint32(s.height)
	microSecPerFrame := uint32(1000000 / fps)

	// Chunk sizes. Each frame chunk is "00dc" + size + data padded to an
	// even boundary.
	var moviSize uint32 = 4
	for _, f := range s.frames {
		moviSize += 8 + padded(uint32(len(f)))
	}
	idx1Size := 8 + totalFrames*16
	hdrlSize := uint32(4 + 64 + 124) // hdrl + avih + strl
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	aw := &aviWriter{w: s.w}

	// === RIFF header ===
	aw.fourCC("RIFF")
	aw.u32(fileSize)
	aw.fourCC("AVI ")

	// === hdrl LIST ===
	aw.fourCC("LIST")
	aw.u32(hdrlSize)
	aw.fourCC("hdrl")

	// avih (main AVI header)
	aw.fourCC("avih")
	aw.u32(56)
	aw.u32(microSecPerFrame)
	aw.u32(s.maxLen * fps) // max bytes per sec
	aw.u32(0)              // padding granularity
	aw.u32(0x10)           // flags: AVIF_HASINDEX
	aw.u32(totalFrames)
	aw.u32(0) // initial frames
	aw.u32(1) // number of streams
	aw.u32(s.maxLen)
	aw.u32(width)
	aw.u32(height)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	// strl LIST: strh(64) + strf(48) + 4
	aw.fourCC("LIST")
	aw.u32(116)
	aw.fourCC("strl")

	// strh (stream header)
	aw.fourCC("strh")
	aw.u32(56)
	aw.fourCC("vids")
	aw.fourCC("MJPG")
	aw.u32(0) // flags
	aw.u16(0) // priority
	aw.u16(0) // language
	aw.u32(0) // initial frames
	aw.u32(1) // scale
	aw.u32(fps)
	aw.u32(0) // start
	aw.u32(totalFrames)
	aw.u32(s.maxLen)
	aw.u32(0) // quality
	aw.u32(0) // sample size
	aw.u16(0) // left
	aw.u16(0) // top
	aw.u16(uint16(width))
	aw.u16(uint16(height))

	// strf (BITMAPINFOHEADER)
	aw.fourCC("strf")
	aw.u32(40)
	aw.u32(40)
	aw.u32(width)
	aw.u32(height)
	aw.u16(1)  // planes
	aw.u16(24) // bit count
	aw.fourCC("MJPG")
	aw.u32(width * height * 3)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)
	aw.u32(0)

	// === movi LIST ===
	aw.fourCC("LIST")
	aw.u32(moviSize)
	aw.fourCC("movi")

	for _, f := range s.frames {
		aw.fourCC("00dc")
		aw.u32(uint32(len(f)))
		aw.bytes(f)
		if len(f)%2 != 0 {
			aw.bytes([]byte{0})
		}
	}

	// === idx1 ===
	aw.fourCC("idx1")
	aw.u32(totalFrames * 16)

	offset := uint32(4) // from movi start
	for _, f := range s.frames {
		n := uint32(len(f))
		aw.fourCC("00dc")
		aw.u32(0x10) // AVIIF_KEYFRAME
		aw.u32(offset)
		aw.u32(n)
		offset += 8 + padded(n)
	}

	s.frames = nil
	if aw.err != nil {
		return fmt.Errorf("write AVI: %w", aw.err)
	}
	return nil
}

func padded(n uint32) uint32 {
	return n + n%2
}

// aviWriter writes little-endian fields, remembering the first error.
type aviWriter struct {
	w   io.Writer
	err error
}

func (a *aviWriter) bytes(b []byte) {
	if a.err != nil {
		return
	}
	_, a.err = a.w.Write(b)
}

func (a *aviWriter) fourCC(s string) {
	a.bytes([]byte(s))
}

func (a *aviWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.bytes(b[:])
}

func (a *aviWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	a.bytes(b[:])
}
