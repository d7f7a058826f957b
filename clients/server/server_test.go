package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arel8x/mirageclip/pkg/clip"
)

func testServer(t *testing.T) *srv {
	t.Helper()
	cfg := Config{
		FPS:         4,
		HistoryPath: filepath.Join(t.TempDir(), "history.json"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newServer(cfg, logger)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

const renderBody = `{"engine":"veo3","prompt":"A starship gliding","width":512,"height":512,"durationSeconds":2}`

func TestRenderRoundTrip(t *testing.T) {
	s := testServer(t)
	h := s.handler()

	w := doJSON(t, h, http.MethodPost, "/api/render", renderBody)
	if w.Code != http.StatusOK {
		t.Fatalf("render status = %d, body %q", w.Code, w.Body.String())
	}

	var rec clip.RenderedClip
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Engine != clip.EngineVeo3 {
		t.Errorf("engine = %q, want canonical Veo3", rec.Engine)
	}
	if rec.LocationHandle == "" {
		t.Fatal("record missing location handle")
	}

	// The handle must serve the encoded clip.
	w = doJSON(t, h, http.MethodGet, rec.LocationHandle, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", rec.LocationHandle, w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("clip video is empty")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "video/") {
		t.Errorf("Content-Type = %q", ct)
	}

	// And the render must appear in the history, newest first.
	w = doJSON(t, h, http.MethodGet, "/api/clips", "")
	var clips []clip.RenderedClip
	if err := json.Unmarshal(w.Body.Bytes(), &clips); err != nil {
		t.Fatal(err)
	}
	if len(clips) != 1 || clips[0].LocationHandle != rec.LocationHandle {
		t.Errorf("history = %+v, want the rendered clip", clips)
	}
}

func TestRenderRejectsInvalidRequests(t *testing.T) {
	s := testServer(t)
	h := s.handler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"engine":`},
		{"unknown engine", `{"engine":"Pika","prompt":"x","width":512,"height":512,"durationSeconds":2}`},
		{"empty prompt", `{"engine":"Veo3","prompt":"  ","width":512,"height":512,"durationSeconds":2}`},
		{"bad duration", `{"engine":"Veo3","prompt":"x","width":512,"height":512,"durationSeconds":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, h, http.MethodPost, "/api/render", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestRenderBusyGate(t *testing.T) {
	s := testServer(t)
	s.busy.Store(true)

	w := doJSON(t, s.handler(), http.MethodPost, "/api/render", renderBody)
	if w.Code != http.StatusConflict {
		t.Fatalf("status while busy = %d, want 409", w.Code)
	}
	if !s.busy.Load() {
		t.Error("rejected request cleared the busy flag")
	}
}

func TestStaleHandleIs404(t *testing.T) {
	s := testServer(t)
	w := doJSON(t, s.handler(), http.MethodGet, "/api/clips/deadbeef/video", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteClipDropsHistoryRecord(t *testing.T) {
	s := testServer(t)
	h := s.handler()

	w := doJSON(t, h, http.MethodPost, "/api/render", renderBody)
	if w.Code != http.StatusOK {
		t.Fatalf("render status = %d", w.Code)
	}
	var rec clip.RenderedClip
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}

	// /api/clips/{id}/video -> /api/clips/{id}
	deletePath := strings.TrimSuffix(rec.LocationHandle, "/video")
	if w := doJSON(t, h, http.MethodDelete, deletePath, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}

	if w := doJSON(t, h, http.MethodGet, rec.LocationHandle, ""); w.Code != http.StatusNotFound {
		t.Errorf("deleted clip video status = %d, want 404", w.Code)
	}

	// The history must not keep a record pointing at the freed handle.
	w = doJSON(t, h, http.MethodGet, "/api/clips", "")
	var clips []clip.RenderedClip
	if err := json.Unmarshal(w.Body.Bytes(), &clips); err != nil {
		t.Fatal(err)
	}
	if len(clips) != 0 {
		t.Errorf("history after delete = %+v, want empty", clips)
	}
}

func TestClearClips(t *testing.T) {
	s := testServer(t)
	h := s.handler()

	if w := doJSON(t, h, http.MethodPost, "/api/render", renderBody); w.Code != http.StatusOK {
		t.Fatalf("render status = %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodDelete, "/api/clips", ""); w.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", w.Code)
	}

	w := doJSON(t, h, http.MethodGet, "/api/clips", "")
	var clips []clip.RenderedClip
	if err := json.Unmarshal(w.Body.Bytes(), &clips); err != nil {
		t.Fatal(err)
	}
	if len(clips) != 0 {
		t.Errorf("history after clear = %+v, want empty", clips)
	}
}

func TestMeta(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.handler(), http.MethodGet, "/api/meta", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var meta struct {
		Engines     []string `json:"engines"`
		Resolutions []string `json:"resolutions"`
		MinDuration int      `json:"minDuration"`
		MaxDuration int      `json:"maxDuration"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatal(err)
	}
	if len(meta.Engines) != 2 || len(meta.Resolutions) != 4 {
		t.Errorf("meta = %+v", meta)
	}
	if meta.MinDuration != clip.MinDurationSeconds || meta.MaxDuration != clip.MaxDurationSeconds {
		t.Errorf("duration bounds = [%d,%d]", meta.MinDuration, meta.MaxDuration)
	}
}
