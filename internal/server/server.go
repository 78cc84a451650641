// Package server exposes the task engine over HTTP.
//
// It provides the JSON API consumed by the dashboard plus
// Kubernetes-style health probes (liveness, readiness, startup) and
// graceful shutdown with connection draining for zero-downtime rollouts.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Caspar241/releasehub/internal/catalog"
	"github.com/Caspar241/releasehub/internal/engine"
	"github.com/Caspar241/releasehub/internal/grouping"
	"github.com/Caspar241/releasehub/internal/health"
	"github.com/Caspar241/releasehub/internal/lifecycle"
	"github.com/Caspar241/releasehub/internal/log"
	"github.com/Caspar241/releasehub/internal/metrics"
	"github.com/Caspar241/releasehub/internal/registry"
	"github.com/Caspar241/releasehub/internal/routine"
)

// Deps are the collaborators the HTTP layer dispatches into.
type Deps struct {
	Catalog   catalog.Catalog
	Engine    *engine.Engine
	Lifecycle *lifecycle.Manager
	Grouping  *grouping.Service
	Scheduler *routine.Scheduler
	Releases  registry.ReleaseRegistry
	Routines  registry.RoutineRegistry
	Identity  registry.Identity
	Logger    *log.Logger

	// Metrics is optional; nil picks up the process-wide instance.
	Metrics *metrics.Metrics
}

// Server is the HTTP server with API and health endpoints.
type Server struct {
	httpServer      *http.Server
	probeManager    *health.ProbeManager
	deps            Deps
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address, e.g. ":8080".
	Address string

	// ShutdownTimeout bounds connection draining during shutdown.
	// Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	// ReadTimeout bounds reading an entire request. Defaults to 10s.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response. Defaults to 10s.
	WriteTimeout time.Duration

	// IdleTimeout bounds keep-alive idle time. Defaults to 60s.
	IdleTimeout time.Duration
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(probeManager *health.ProbeManager, deps Deps, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.GetDefault()
	}

	s := &Server{
		probeManager:    probeManager,
		deps:            deps,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", s.handleLiveness)
	mux.HandleFunc("GET /health/ready", s.handleReadiness)
	mux.HandleFunc("GET /health/startup", s.handleStartup)
	// Legacy probe path, maps to readiness.
	mux.HandleFunc("GET /healthz", s.handleReadiness)

	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("POST /api/templates/apply", s.handleApply)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleComplete)
	mux.HandleFunc("POST /api/tasks/{id}/snooze", s.handleSnooze)
	mux.HandleFunc("POST /api/tasks/{id}/dismiss", s.handleDismiss)
	mux.HandleFunc("GET /api/groups", s.handleListGroups)
	mux.HandleFunc("GET /api/groups/{anchorID}", s.handleGroup)
	mux.HandleFunc("POST /api/routines/tick", s.handleTick)

	mux.Handle("GET /metrics", metrics.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.instrument(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the route handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server. It blocks until the server stops and returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	s.probeManager.MarkInitialized()
	s.logger.Info("http server listening", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains the server: readiness turns unhealthy, keep-alives
// stop, and in-flight requests get up to ShutdownTimeout to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown reports whether shutdown has begun.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request counts and latency per route pattern.
// Probe endpoints are excluded so scrapes are not dominated by kubelet
// traffic.
func (s *Server) instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		route := r.URL.Path
		if pattern != "" {
			// Strip the method prefix from the registered pattern.
			if i := strings.IndexByte(pattern, ' '); i >= 0 {
				pattern = pattern[i+1:]
			}
			route = pattern
		}

		if strings.HasPrefix(route, "/health") || route == "/healthz" || route == "/metrics" {
			mux.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		mux.ServeHTTP(rec, r)

		s.deps.Metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		s.deps.Metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status == health.StatusUnhealthy {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// Liveness always answers 200 so a draining pod is not restarted.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeProbeResponse(w, s.probeManager.CheckLiveness(r.Context()), http.StatusOK)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.writeProbeResponse(w, s.probeManager.CheckReadiness(r.Context()), http.StatusServiceUnavailable)
}

func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	s.writeProbeResponse(w, s.probeManager.CheckStartup(r.Context()), http.StatusServiceUnavailable)
}
