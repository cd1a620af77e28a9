// Package web serves the reader to browsers over a websocket
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"

	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/script"
)

//go:embed static/index.html
var staticFS embed.FS

// Config controls connection handling
type Config struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	// AllowedOrigins lists browser origins permitted to connect; "*" allows any
	// Empty restricts to same-origin pages
	AllowedOrigins []string
}

func (c *Config) defaults() {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
}

// Server hosts one engine session per websocket connection
type Server struct {
	script   *script.Script
	opts     engine.Options
	cfg      Config
	logger   *log.Logger
	policy   *bluemonday.Policy
	upgrader websocket.Upgrader
	sessions atomic.Int64

	// base parents every session; cancelled when the HTTP server shuts down
	base          context.Context
	closeSessions context.CancelFunc
	active        sync.WaitGroup
}

// NewServer creates a server playing s; opts is the template for every session's engine
// OnComplete and OnError in opts are replaced per session
func NewServer(s *script.Script, opts engine.Options, cfg Config, logger *log.Logger) *Server {
	cfg.defaults()
	if logger == nil {
		logger = log.Default()
	}
	srv := &Server{
		script: s,
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		policy: newPolicy(),
	}
	srv.upgrader = websocket.Upgrader{CheckOrigin: srv.checkOrigin}
	srv.base, srv.closeSessions = context.WithCancel(context.Background())
	return srv
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		data, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": s.sessions.Load(),
		})
	})

	r.Get("/ws", s.serveWS)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is cancelled, then ends every open session
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Hijacked websocket connections are not tracked by Shutdown
	hs.RegisterOnShutdown(s.closeSessions)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("[WEB] listening on %s", ln.Addr())
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.closeSessions()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return s.Wait(shutdownCtx)
	}
}

// Close ends every open session and refuses new ones
func (s *Server) Close() {
	s.closeSessions()
}

// Wait blocks until every session has returned or ctx is done
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
