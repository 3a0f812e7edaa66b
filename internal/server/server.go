// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the admin trigger that starts an ingestion run in
// the background, plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/pkg/types"
)

// Runner executes one ingestion run.
type Runner interface {
	Run(ctx context.Context, opts pipeline.RunOptions) pipeline.RunSummary
}

// runRequest is the optional body of the trigger request.
type runRequest struct {
	Days  int  `json:"days"`
	Blogs bool `json:"blogs"`
}

// runResponse acknowledges a trigger before the run finishes.
type runResponse struct {
	Success bool   `json:"success"`
	RunID   string `json:"run_id,omitempty"`
	Message string `json:"message"`
}

// Server serves the admin API. At most one run is in flight at a time.
type Server struct {
	cfg        types.ServerConfig
	runner     Runner
	gatherer   prometheus.Gatherer
	logger     zerolog.Logger
	httpServer *http.Server

	// running is held for the duration of a background run.
	running sync.Mutex
	wg      sync.WaitGroup

	// baseCtx parents every background run; cancelled on Shutdown.
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a Server. gatherer backs /metrics; nil uses the default registry.
func New(cfg types.ServerConfig, runner Runner, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = types.DefaultConfig().Server.LookbackDays
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		runner:   runner,
		gatherer: gatherer,
		logger:   logger,
		baseCtx:  ctx,
		cancel:   cancel,
	}
	s.httpServer = &http.Server{
		Addr:    cfg.Address,
		Handler: s.Router(),
	}
	return s
}

// Router builds the chi router with all middleware and routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/admin", func(r chi.Router) {
		r.Post("/research/run-engine", s.runEngineHandler)
	})
	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info().Str("address", ln.Addr().String()).Msg("admin server listening")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, cancels any run in flight, and waits
// for it to return.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	return err
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runEngineHandler acknowledges the trigger and starts the run in the
// background. The response never waits for the run.
func (s *Server) runEngineHandler(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, runResponse{Message: "invalid request body"})
		return
	}
	if req.Days <= 0 {
		req.Days = s.cfg.LookbackDays
	}

	if !s.running.TryLock() {
		writeJSON(w, http.StatusConflict, runResponse{Message: "A content engine run is already in progress."})
		return
	}

	opts := pipeline.RunOptions{
		RunID:          uuid.NewString(),
		LookbackDays:   req.Days,
		GenerateDrafts: req.Blogs,
		Trigger:        pipeline.TriggerAdmin,
	}
	log := s.logger.With().
		Str("run_id", opts.RunID).
		Str("request_id", middleware.GetReqID(r.Context())).
		Logger()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Msg("content engine run panicked")
			}
		}()
		s.runner.Run(s.baseCtx, opts)
	}()

	log.Info().Int("days", opts.LookbackDays).Msg("content engine run started")
	writeJSON(w, http.StatusAccepted, runResponse{
		Success: true,
		RunID:   opts.RunID,
		Message: "Content engine started. Check server logs for progress.",
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
