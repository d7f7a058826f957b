package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arel8x/mirageclip/pkg/clip"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testClip(n int) clip.RenderedClip {
	return clip.RenderedClip{
		Engine:          clip.EngineVeo3,
		Prompt:          fmt.Sprintf("prompt %d", n),
		DurationSeconds: 4,
		Width:           512,
		Height:          512,
		LocationHandle:  fmt.Sprintf("/tmp/clip-%d.avi", n),
		CreatedAt:       time.Date(2026, 8, 30, 12, 0, n, 0, time.UTC),
	}
}

func TestAddCapsAtMaxEntriesNewestFirst(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "history.json"), testLogger())

	for i := 0; i < MaxEntries+3; i++ {
		s.Add(testClip(i))
	}

	clips := s.Clips()
	if len(clips) != MaxEntries {
		t.Fatalf("len = %d, want %d", len(clips), MaxEntries)
	}
	if clips[0].Prompt != fmt.Sprintf("prompt %d", MaxEntries+2) {
		t.Errorf("newest entry not at index 0: %q", clips[0].Prompt)
	}
	// Oldest three evicted FIFO.
	last := clips[len(clips)-1]
	if last.Prompt != "prompt 3" {
		t.Errorf("oldest surviving entry = %q, want \"prompt 3\"", last.Prompt)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	logger := testLogger()

	s := Open(path, logger)
	want := testClip(1)
	s.Add(want)

	reloaded := Open(path, logger).Clips()
	if len(reloaded) != 1 {
		t.Fatalf("reloaded %d entries, want 1", len(reloaded))
	}
	got := reloaded[0]
	if got.Engine != want.Engine || got.Prompt != want.Prompt ||
		got.DurationSeconds != want.DurationSeconds ||
		got.Width != want.Width || got.Height != want.Height ||
		!got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestCorruptFileFallsBackToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(path, testLogger())
	if got := s.Len(); got != 0 {
		t.Errorf("corrupt store Len() = %d, want 0", got)
	}

	// The store keeps working after the fallback.
	s.Add(testClip(1))
	if got := s.Len(); got != 1 {
		t.Errorf("Len() after Add = %d, want 1", got)
	}
}

func TestMissingFileIsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nope", "history.json"), testLogger())
	if got := s.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestRemoveByHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := Open(path, testLogger())
	s.Add(testClip(1))
	s.Add(testClip(2))
	s.Add(testClip(3))

	if !s.RemoveByHandle("/tmp/clip-2.avi") {
		t.Fatal("RemoveByHandle did not find an existing handle")
	}
	clips := s.Clips()
	if len(clips) != 2 {
		t.Fatalf("Len() after remove = %d, want 2", len(clips))
	}
	for _, c := range clips {
		if c.LocationHandle == "/tmp/clip-2.avi" {
			t.Error("removed handle still present")
		}
	}

	// Removal persists.
	if got := Open(path, testLogger()).Len(); got != 2 {
		t.Errorf("reloaded Len() = %d, want 2", got)
	}

	if s.RemoveByHandle("/tmp/clip-2.avi") {
		t.Error("second removal of the same handle reported success")
	}
	if s.RemoveByHandle("") {
		t.Error("empty handle reported success")
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := Open(path, testLogger())
	s.Add(testClip(1))
	s.Add(testClip(2))

	s.Clear()
	if got := s.Len(); got != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", got)
	}
	if got := Open(path, testLogger()).Len(); got != 0 {
		t.Errorf("reloaded Len() after Clear = %d, want 0", got)
	}
}

func TestUnwritablePathIsLoggedNoOp(t *testing.T) {
	// Parent is a file, so saving can never succeed.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(filepath.Join(blocker, "history.json"), testLogger())
	s.Add(testClip(1))
	if got := s.Len(); got != 1 {
		t.Errorf("in-memory Len() = %d, want 1 despite failed save", got)
	}
}
