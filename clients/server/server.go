// Package server exposes the mirageclip renderer over HTTP.
//
// Encoded clips live in an in-memory store behind random IDs; the ID-based
// video URL is the clip's ephemeral location handle. The persistent history
// only keeps clip metadata, so handles go stale when the server restarts and
// a 404 on the video URL means the clip must be re-rendered.
package server

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/arel8x/mirageclip/pkg/capture"
	"github.com/arel8x/mirageclip/pkg/clip"
	"github.com/arel8x/mirageclip/pkg/encode"
	"github.com/arel8x/mirageclip/pkg/history"
)

// Config is read from the environment (and an optional .env file).
type Config struct {
	Addr        string `env:"MIRAGECLIP_ADDR" envDefault:":8080"`
	HistoryPath string `env:"MIRAGECLIP_HISTORY"`
	FPS         int    `env:"MIRAGECLIP_FPS" envDefault:"30"`
}

// ── Clip store ──

type storedClip struct {
	Data []byte
	Mime string
}

// clipStore holds encoded clips behind random IDs, capped like the history:
// when a new clip would exceed the cap, the oldest is freed.
type clipStore struct {
	mu    sync.RWMutex
	clips map[string]*storedClip
	order []string
}

func newClipStore() *clipStore {
	return &clipStore{clips: make(map[string]*storedClip)}
}

func (cs *clipStore) add(data []byte, mime string) string {
	id := randomID()
	cs.mu.Lock()
	cs.clips[id] = &storedClip{Data: data, Mime: mime}
	cs.order = append(cs.order, id)
	for len(cs.order) > history.MaxEntries {
		delete(cs.clips, cs.order[0])
		cs.order = cs.order[1:]
	}
	cs.mu.Unlock()
	return id
}

func (cs *clipStore) get(id string) (*storedClip, bool) {
	cs.mu.RLock()
	c, ok := cs.clips[id]
	cs.mu.RUnlock()
	return c, ok
}

func (cs *clipStore) remove(id string) {
	cs.mu.Lock()
	delete(cs.clips, id)
	for i, v := range cs.order {
		if v == id {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
	cs.mu.Unlock()
}

func (cs *clipStore) clear() {
	cs.mu.Lock()
	cs.clips = make(map[string]*storedClip)
	cs.order = nil
	cs.mu.Unlock()
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ── Server ──

type srv struct {
	cfg    Config
	store  *clipStore
	hist   *history.Store
	logger *slog.Logger
	busy   atomic.Bool
}

// RunServe starts the HTTP API.
func RunServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", "", "Listen port (overrides MIRAGECLIP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// .env is optional.
	godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if *port != "" {
		cfg.Addr = ":" + *port
	}
	if cfg.HistoryPath == "" {
		p, err := history.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve history path: %w", err)
		}
		cfg.HistoryPath = p
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s := newServer(cfg, logger)

	logger.Info("mirageclip API listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, s.handler())
}

func newServer(cfg Config, logger *slog.Logger) *srv {
	return &srv{
		cfg:    cfg,
		store:  newClipStore(),
		hist:   history.Open(cfg.HistoryPath, logger),
		logger: logger,
	}
}

func (s *srv) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/clips", s.handleListClips)
	mux.HandleFunc("DELETE /api/clips", s.handleClearClips)
	mux.HandleFunc("GET /api/clips/{id}/video", s.handleClipVideo)
	mux.HandleFunc("DELETE /api/clips/{id}", s.handleDeleteClip)
	mux.HandleFunc("GET /api/meta", s.handleMeta)
	return mux
}

// ── Handlers ──

func (s *srv) handleRender(w http.ResponseWriter, r *http.Request) {
	// One render at a time; the surface and capture sink are owned
	// exclusively by the in-flight render.
	if !s.busy.CompareAndSwap(false, true) {
		http.Error(w, "render in progress", http.StatusConflict)
		return
	}
	defer s.busy.Store(false)

	var req clip.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "decode request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if e, err := clip.ParseEngine(string(req.Engine)); err == nil {
		req.Engine = e
	}

	session, err := capture.NewSession(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	sink, ext, err := encode.NewSink(r.Context(), &buf, req.Width, req.Height, s.cfg.FPS, s.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	driver := capture.NewDriver(capture.NewFixedStepClock(s.cfg.FPS), s.logger)
	rec, err := driver.Run(r.Context(), session, sink, "")
	if err != nil {
		s.logger.Warn("render failed", "engine", req.Engine, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := s.store.add(buf.Bytes(), mimeFor(ext))
	rec.LocationHandle = videoPath(id)
	s.hist.Add(rec)

	writeJSON(w, http.StatusOK, rec)
}

func (s *srv) handleListClips(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.hist.Clips())
}

func (s *srv) handleClearClips(w http.ResponseWriter, _ *http.Request) {
	s.hist.Clear()
	s.store.clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *srv) handleClipVideo(w http.ResponseWriter, r *http.Request) {
	c, ok := s.store.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", c.Mime)
	w.Write(c.Data)
}

// handleDeleteClip frees the stored clip bytes and drops the matching
// history record, so the history never points at a handle this server
// already freed.
func (s *srv) handleDeleteClip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.store.remove(id)
	s.hist.RemoveByHandle(videoPath(id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *srv) handleMeta(w http.ResponseWriter, _ *http.Request) {
	resolutions := make([]string, len(clip.Resolutions))
	for i, res := range clip.Resolutions {
		resolutions[i] = res.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engines":     clip.Engines,
		"resolutions": resolutions,
		"minDuration": clip.MinDurationSeconds,
		"maxDuration": clip.MaxDurationSeconds,
		"vp9":         encode.VP9Available(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func videoPath(id string) string {
	return "/api/clips/" + id + "/video"
}

func mimeFor(ext string) string {
	if ext == encode.ExtWebM {
		return "video/webm"
	}
	return "video/x-msvideo"
}
