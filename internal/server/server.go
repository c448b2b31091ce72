// Package server exposes the graph pipeline over HTTP for editor panels.
//
// Endpoints serve graph and layout JSON; a WebSocket pushes fresh results
// whenever the repository changes. Change detection is filesystem
// notification on the .git directory with a polling fallback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/lanes"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. "localhost:7410".
	Addr string

	// PollInterval is the fallback polling period for change detection.
	// Zero disables polling.
	PollInterval time.Duration

	// Logger receives request and watcher logs. Discarded when nil.
	Logger *log.Logger
}

// Server serves one repository's graph over HTTP and WebSocket.
type Server struct {
	svc    *pipeline.Service
	hub    *hub
	logger *log.Logger
	opts   Options
}

// New creates a Server around a pipeline service.
func New(svc *pipeline.Service, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "localhost:7410"
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Server{
		svc:    svc,
		hub:    newHub(opts.Logger),
		logger: opts.Logger,
		opts:   opts,
	}
}

// router builds the HTTP route table.
func (s *Server) router() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestID)

	router.Get("/api/graph", s.handleGraph)
	router.Get("/api/layout", s.handleLayout)
	router.Get("/api/snapshot", s.handleSnapshot)
	router.Delete("/api/cache", s.handleClearCache)
	router.Get("/api/ws", s.hub.handleWS)
	return router
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.hub.run(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving", "addr", s.opts.Addr, "repo", s.svc.Repo().Root())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, id)))
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"
	g := s.svc.GetGraph(r.Context(), force)
	writeJSON(w, g)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g := s.svc.GetGraph(r.Context(), false)
	writeJSON(w, lanes.Compute(g))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	g := s.svc.GetGraphSnapshot(r.Context())
	if g == nil {
		http.Error(w, `{"error":"no snapshot"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, g)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearGraphCache(r.Context()); err != nil {
		http.Error(w, `{"error":"clear failed"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// refresh rebuilds the graph after a repository change and pushes the
// result to every connected client.
func (s *Server) refresh(ctx context.Context, reason string) {
	s.svc.Invalidate(reason)
	g := s.svc.GetGraph(ctx, false)
	s.broadcastGraph(g)
}

func (s *Server) broadcastGraph(g *commitgraph.Graph) {
	s.hub.broadcast(updateMessage{Type: messageGraph, Data: g})
	s.hub.broadcast(updateMessage{Type: messageLayout, Data: lanes.Compute(g)})
}
