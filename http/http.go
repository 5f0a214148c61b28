// Package http serves a browser mirror of the live preview: a page, the
// script that applies patches to it, a server-sent event stream of patch
// frames and a plain markup snapshot.
package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/preview"
	previewjson "github.com/fwojciec/preview/json"
	"github.com/fwojciec/preview/live"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFS embed.FS

// DefaultClientBuffer is the number of updates queued per event stream
// before the client is resynchronized with a reset.
const DefaultClientBuffer = 16

// ShutdownTimeout bounds how long Close waits for requests to finish.
const ShutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithClientBuffer sets the per-client update queue length.
func WithClientBuffer(n int) Option {
	return func(s *Server) {
		s.clientBuffer = max(1, n)
	}
}

// Server is the HTTP mirror.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	ctx    context.Context
	cancel context.CancelFunc

	// Addr is the listen address used by Open.
	Addr string

	previewer    *live.Previewer
	source       preview.Source
	renderer     preview.Renderer
	logger       *slog.Logger
	clientBuffer int
}

// NewServer returns a Server mirroring p. source and renderer produce the
// plain markup snapshot.
func NewServer(p *live.Previewer, source preview.Source, renderer preview.Renderer, opts ...Option) *Server {
	s := &Server{
		previewer:    p,
		source:       source,
		renderer:     renderer,
		clientBuffer: DefaultClientBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, "index.html")
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	r.Get("/events", s.handleEvents)
	r.Get("/snapshot", s.handleSnapshot)
	s.router = r

	s.server = &http.Server{
		Handler:     s.router,
		BaseContext: func(net.Listener) context.Context { return s.ctx },
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open listens on Addr and serves in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	s.logger.Info("mirror listening", "url", s.URL())
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("mirror stopped", "error", err)
		}
	}()
	return nil
}

// URL returns the base URL of the open server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close ends open event streams and shuts the server down.
func (s *Server) Close() error {
	s.cancel()
	if s.ln == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		snap := s.previewer.Snapshot()
		if snap == nil {
			http.Error(w, "no snapshot yet", http.StatusNotFound)
			return
		}
		data, err := previewjson.MarshalSnapshot(snap)
		if err != nil {
			s.logger.Error("marshal snapshot", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}

	markup, err := s.renderer.Markup([]byte(s.source.Text()))
	if err != nil {
		s.logger.Error("render snapshot", "error", err)
		http.Error(w, "Render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(markup)
}
