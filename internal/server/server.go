// Package server exposes the configured chains over a JSON HTTP API.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/tkingovr/logfilter/internal/audit"
	"github.com/tkingovr/logfilter/internal/metrics"
	"github.com/tkingovr/logfilter/internal/sink"
)

// Server is the logfilter HTTP API server.
type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	gates   map[string]*sink.Gate
	store   audit.Store
	metrics *metrics.Recorder
	addr    string
}

// NewServer creates a new API server. store and rec may be nil, in which
// case the decision and metrics endpoints are not available. A nil logger
// discards output.
func NewServer(addr string, gates map[string]*sink.Gate, store audit.Store, rec *metrics.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		gates:   gates,
		store:   store,
		metrics: rec,
		addr:    addr,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/v1/check", s.handleCheck)
	s.mux.HandleFunc("POST /api/v1/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/v1/chains", s.handleChains)
	s.mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/v1/decisions", s.handleDecisions)
	s.mux.HandleFunc("GET /api/v1/decisions/stream", s.handleDecisionStream)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// ListenAndServe starts the HTTP server and stops it when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	s.logger.Info("starting API server", "addr", s.addr, "chains", s.chainNames())
	return srv.ListenAndServe()
}

// Handler returns the HTTP handler for embedding in other servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) chainNames() []string {
	names := make([]string, 0, len(s.gates))
	for name := range s.gates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
