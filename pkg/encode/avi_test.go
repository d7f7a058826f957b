package encode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"
)

func solidFrame(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAVISinkContainerStructure(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAVISink(&buf, 8, 8, 15)

	frames := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
	}
	for _, c := range frames {
		if err := sink.WriteFrame(solidFrame(c)); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		t.Fatalf("not a RIFF AVI: % x", data[:12])
	}

	// Declared RIFF size covers everything after the 8-byte RIFF header.
	riffSize := binary.LittleEndian.Uint32(data[4:8])
	if int(riffSize)+8 != len(data) {
		t.Errorf("RIFF size %d + 8 != file size %d", riffSize, len(data))
	}

	// Frame count in the main AVI header.
	totalFrames := binary.LittleEndian.Uint32(data[48:52])
	if totalFrames != uint32(len(frames)) {
		t.Errorf("avih frame count = %d, want %d", totalFrames, len(frames))
	}

	if !bytes.Contains(data, []byte("MJPG")) {
		t.Error("missing MJPG codec tag")
	}
	idx := bytes.LastIndex(data, []byte("idx1"))
	if idx < 0 {
		t.Fatal("missing idx1 index chunk")
	}
	idxSize := binary.LittleEndian.Uint32(data[idx+4 : idx+8])
	if idxSize != uint32(len(frames))*16 {
		t.Errorf("idx1 size = %d, want %d entries * 16", idxSize, len(frames))
	}
}

func TestAVISinkDistinctFrames(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAVISink(&buf, 8, 8, 15)
	if err := sink.WriteFrame(solidFrame(color.RGBA{255, 0, 0, 255})); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteFrame(solidFrame(color.RGBA{0, 0, 255, 255})); err != nil {
		t.Fatal(err)
	}

	// Each frame carries its own JPEG payload, not one repeated image.
	if bytes.Equal(sink.frames[0], sink.frames[1]) {
		t.Error("distinct frames encoded identically")
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestAVISinkEmptyClose(t *testing.T) {
	sink := NewAVISink(&bytes.Buffer{}, 8, 8, 15)
	if err := sink.Close(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Close() = %v, want ErrNoFrames", err)
	}
}

func TestAVISinkRejectsWritesAfterClose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAVISink(&buf, 8, 8, 15)
	sink.WriteFrame(solidFrame(color.RGBA{1, 2, 3, 255}))
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteFrame(solidFrame(color.RGBA{1, 2, 3, 255})); err == nil {
		t.Error("WriteFrame after Close should fail")
	}
}

func TestSinkPath(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"out.webm", ExtWebM, "out.webm"},
		{"out.webm", ExtAVI, "out.avi"},
		{"out.avi", ExtWebM, "out.webm"},
		{"out", ExtAVI, "out.avi"},
	}
	for _, tt := range tests {
		if got := SinkPath(tt.path, tt.ext); got != tt.want {
			t.Errorf("SinkPath(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}
