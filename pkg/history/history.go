// Package history persists the most recent rendered clips.
//
// The store is a JSON file at a fixed path holding an ordered list of up to
// 12 records, newest first, oldest evicted. Storage failures never surface to
// the caller: a missing or corrupt file loads as an empty list and a failed
// write is a logged no-op, so rendering keeps working without persistence.
package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/arel8x/mirageclip/pkg/clip"
)

// MaxEntries caps the history list.
const MaxEntries = 12

const historyFileName = "history.json"

// DefaultPath returns the fixed per-user history file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mirageclip", historyFileName), nil
}

// Store is a capped, newest-first list of rendered clips backed by a file.
// Safe for concurrent use.
type Store struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	clips []clip.RenderedClip
}

// Open loads the store at path. Missing or corrupt data yields an empty
// list; the condition is logged, never returned.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("history unreadable, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var clips []clip.RenderedClip
	if err := json.Unmarshal(data, &clips); err != nil {
		s.logger.Warn("history corrupt, starting empty", "path", s.path, "error", err)
		return
	}
	if len(clips) > MaxEntries {
		clips = clips[:MaxEntries]
	}
	s.clips = clips
}

// save writes the current list. Failure is a logged no-op.
func (s *Store) save() {
	data, err := json.MarshalIndent(s.clips, "", "  ")
	if err != nil {
		s.logger.Warn("history not saved", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn("history not saved", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Warn("history not saved", "path", s.path, "error", err)
	}
}

// Add prepends a record, evicting the oldest entries beyond MaxEntries, and
// persists the list.
func (s *Store) Add(c clip.RenderedClip) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clips = append([]clip.RenderedClip{c}, s.clips...)
	if len(s.clips) > MaxEntries {
		s.clips = s.clips[:MaxEntries]
	}
	s.save()
}

// Clips returns a copy of the list, newest first.
func (s *Store) Clips() []clip.RenderedClip {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]clip.RenderedClip, len(s.clips))
	copy(out, s.clips)
	return out
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

// RemoveByHandle drops the record whose location handle matches and persists
// the change. It reports whether a record was removed.
func (s *Store) RemoveByHandle(handle string) bool {
	if handle == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.clips {
		if c.LocationHandle == handle {
			s.clips = append(s.clips[:i], s.clips[i+1:]...)
			s.save()
			return true
		}
	}
	return false
}

// Clear empties the list and persists the empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clips = nil
	s.save()
}
