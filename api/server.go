// Package api provides the HTTP preview server for notegraph.
//
// It exposes endpoints for expanding chart markers in text, rendering single
// charts in several formats, live preview over WebSocket, runtime
// configuration and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/notegraph/internal/config"
	"github.com/seenimoa/notegraph/internal/graph"
	"github.com/seenimoa/notegraph/internal/infra"
	"github.com/seenimoa/notegraph/internal/plugin"
	"github.com/seenimoa/notegraph/web"
)

// Version is reported by the health endpoint. The CLI overrides it.
var Version = "dev"

const (
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 1 << 20

	chartCacheTTL  = 5 * time.Minute
	chartCacheSize = 256
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	wsHub   *WSHub
	metrics *Metrics
	serveUI bool // when true, serve the embedded preview page at /
	charts  *infra.Cache[[]byte]

	mu          sync.RWMutex // guards the fields below
	cfg         *config.Config
	transformer *graph.Transformer
	plugins     *plugin.Registry
	generation  uint64 // bumped by apply; part of every chart cache key
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	srv := &Server{
		wsHub:   NewWSHub(),
		metrics: NewMetrics(),
		serveUI: cfg.API.ServeUI,
		charts:  infra.NewCache[[]byte](chartCacheTTL, chartCacheSize),
	}
	srv.apply(cfg)

	srv.router = srv.buildRouter()
	return srv, nil
}

// apply swaps in cfg and rebuilds everything derived from it.
// Callers hold s.mu or own s exclusively.
func (s *Server) apply(cfg *config.Config) {
	t := graph.New(cfg.GraphOptions())
	reg := plugin.NewRegistry()
	// The name is a non-empty constant.
	_ = reg.Register(plugin.NewGraphPlugin(t))

	s.cfg = cfg
	s.transformer = t
	s.plugins = reg
	s.generation++
	s.charts.Flush()
}

// snapshot returns the current transformer and plugin registry.
func (s *Server) snapshot() (*graph.Transformer, *plugin.Registry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transformer, s.plugins
}

// chartState returns the current transformer with its config generation.
func (s *Server) chartState() (*graph.Transformer, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transformer, s.generation
}

// SetServeUI controls whether the embedded preview page is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	s.mu.RLock()
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	s.mu.RUnlock()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// Metrics
	r.Handle("/metrics", s.metrics.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Rendering
		r.Method(http.MethodPost, "/render", s.metrics.Instrument("render", s.handleRender))
		r.Method(http.MethodGet, "/chart/{format}", s.metrics.Instrument("chart", s.handleChart))

		// Plugins
		r.Get("/plugins", s.handlePlugins)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket live preview
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded preview page
	if s.serveUI {
		s.mountUI(r, web.DistFS())
	}

	return r
}

// mountUI serves the embedded static preview page. Unknown paths fall back
// to index.html.
func (s *Server) mountUI(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" || rPath == "index.html" {
			serveIndexHTML(w, r, distFS)
			return
		}

		// Try to open the requested file from the embedded FS
		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, r, distFS)
			return
		}
		f.Close()

		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html.
func serveIndexHTML(w http.ResponseWriter, r *http.Request, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "preview page not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RenderRequest is the body of POST /api/v1/render.
type RenderRequest struct {
	Text string `json:"text"`
	HTML bool   `json:"html,omitempty"` // text is an HTML fragment
}

// RenderResponse carries the expanded text and marker counts.
type RenderResponse struct {
	Output string `json:"output"`
	graph.Stats
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
