// Package server provides the HTTP API for the substratix embedding daemon.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/substratix/substratix/internal/config"
	"github.com/substratix/substratix/internal/embedding"
	"github.com/substratix/substratix/internal/observability"
	"github.com/substratix/substratix/internal/repository/memory"
)

// Server exposes the mapping engine over HTTP: VNR submission, stored
// session results, substrate state, Prometheus metrics, and a websocket
// stream of mapping decision events.
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	engine  *embedding.Engine
	results *memory.EmbeddingRepository
	metrics *observability.Collector
	events  *EventHub

	mux        *http.ServeMux
	httpServer *http.Server
}

// New creates a server around an engine, a result store, and an optional
// metrics collector and event hub.
func New(
	cfg *config.Config,
	engine *embedding.Engine,
	results *memory.EmbeddingRepository,
	metrics *observability.Collector,
	events *EventHub,
	logger *zap.Logger,
) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger.Named("server"),
		engine:  engine,
		results: results,
		metrics: metrics,
		events:  events,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	s.updateSubstrateGauges()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      corsHandler.Handler(s.mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/healthz", s.healthHandler)
	s.mux.HandleFunc("/ready", s.healthHandler)

	embeddings := NewEmbeddingHandler(s)
	s.mux.Handle("/api/v1/embeddings", embeddings)
	s.mux.Handle("/api/v1/embeddings/", embeddings)

	substrateHandler := NewSubstrateHandler(s)
	s.mux.Handle("/api/v1/substrate", substrateHandler)
	s.mux.Handle("/api/v1/substrate/", substrateHandler)

	if s.events != nil {
		s.mux.Handle("/api/v1/events", s.events)
	}
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// updateSubstrateGauges refreshes the substrate state gauges after a session
// has mutated capacities.
func (s *Server) updateSubstrateGauges() {
	if s.metrics == nil {
		return
	}
	graph := s.engine.Graph()
	total := 0.0
	for _, c := range graph.Capacities() {
		total += c
	}
	s.metrics.SubstrateNodes.Set(float64(graph.NodeCount()))
	s.metrics.SubstrateLinks.Set(float64(len(graph.Links())))
	s.metrics.SubstrateCPUAvailable.Set(total)
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.httpServer.Addr))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.Shutdown()
	})
	return g.Wait()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if s.events != nil {
		s.events.Close()
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// errorResponse is the JSON shape of every API error.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Code: code, Message: message})
}
