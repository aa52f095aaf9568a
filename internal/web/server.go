package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/explore"
	"github.com/san-kum/mirasim/internal/export"
	"github.com/san-kum/mirasim/internal/logging"
	"github.com/san-kum/mirasim/internal/session"
)

const (
	maxSide       = 4096
	maxIterations = 1_000_000
)

//go:embed static
var static embed.FS

// Options configures the web explorer.
type Options struct {
	// Base is the config every request starts from.
	Base *config.Config
	// Seed makes random draws reproducible when non-zero.
	Seed int64
	// OriginPatterns are passed to the websocket handshake.
	OriginPatterns []string
	Logger         *log.Logger
}

// Server serves the explorer page, stateless PNG renders and one
// websocket exploration session per connection.
type Server struct {
	base    *config.Config
	seed    int64
	origins []string
	logger  *log.Logger

	mu       sync.Mutex
	conns    int64
	sessions map[string]*session.Session
}

func NewServer(opts Options) *Server {
	base := opts.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		base:     base,
		seed:     opts.Seed,
		origins:  opts.OriginPatterns,
		logger:   logger,
		sessions: make(map[string]*session.Session),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /render.png", s.handleRender)
	mux.HandleFunc("GET /presets", s.handlePresets)
	mux.HandleFunc("GET /export.csv", s.handleExport)
	mux.HandleFunc("GET /ws", s.handleWS)

	root, _ := fs.Sub(static, "static")
	mux.Handle("GET /", http.FileServer(http.FS(root)))
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "url", "http://"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Session returns the session of a live websocket connection.
func (s *Server) Session(id string) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) newSession() *session.Session {
	sess := session.New()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// dropSession forgets a session once its connection ends.
func (s *Server) dropSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// newRNG gives each connection its own source. With a fixed seed the n-th
// connection always gets the same draws.
func (s *Server) newRNG() *rand.Rand {
	s.mu.Lock()
	s.conns++
	n := s.conns
	s.mu.Unlock()
	if s.seed != 0 {
		return rand.New(rand.NewSource(s.seed + n))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano() + n))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	cfg, err := configFromQuery(s.base, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := explore.StateFromConfig(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, _, err := renderPNG(r.Context(), st)
	if err != nil {
		s.logger.Debug("render rejected", "state", st, "err", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

type presetJSON struct {
	Name    string         `json:"name"`
	Variant dynamo.Variant `json:"variant"`
	Params  dynamo.Params  `json:"params"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	list := config.ListPresets()
	out := make([]presetJSON, len(list))
	for i, p := range list {
		out[i] = presetJSON{Name: p.Name, Variant: p.Variant, Params: p.Params}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Session(r.URL.Query().Get("session"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+config.DefaultExportFile+`"`)
	if err := sess.WriteCSV(w); err != nil {
		s.logger.Warn("export failed", "session", sess.ID, "err", err)
	}
}

// renderPNG draws st onto a fresh raster and encodes it.
func renderPNG(ctx context.Context, st explore.State) ([]byte, explore.Frame, error) {
	surface := export.NewPNGSurfaceFor(st.Viewport)
	f, err := explore.Visualize(ctx, surface, st)
	if err != nil {
		return nil, explore.Frame{}, err
	}
	var buf bytes.Buffer
	if err := surface.Encode(&buf); err != nil {
		return nil, explore.Frame{}, err
	}
	return buf.Bytes(), f, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dynamo.ErrDiverged), errors.Is(err, dynamo.ErrEmptySequence):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
