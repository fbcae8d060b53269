// Package server exposes single-subject enrichment over HTTP with
// server-sent progress events.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/batch"
	"github.com/sells-group/prospect-cli/internal/model"
)

// Server serves the enrichment API.
type Server struct {
	runner   batch.Runner
	maxDepth model.Stage
}

// New creates a Server around a scheduler.
func New(runner batch.Runner, maxDepth model.Stage) *Server {
	if maxDepth.Index() < 0 {
		maxDepth = model.StageComplete
	}
	return &Server{runner: runner, maxDepth: maxDepth}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/enrich", s.handleEnrich)

	return r
}

// ListenAndServe blocks serving on the given port until ctx is
// cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("server: listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.L().Info("server: shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// enrichRequest is the POST /api/enrich body.
type enrichRequest struct {
	Subject  model.Subject `json:"subject"`
	MaxDepth model.Stage   `json:"max_depth,omitempty"`
}

// handleEnrich runs one subject and streams progress as SSE. Client
// disconnects cancel the run cooperatively via the request context.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Subject.ID == "" {
		req.Subject.ID = uuid.NewString()
	}
	maxDepth := req.MaxDepth
	if maxDepth == "" {
		maxDepth = s.maxDepth
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emit := func(snap model.ProgressSnapshot) {
		writeEvent(w, flusher, "progress", snap)
	}

	result, err := s.runner.Run(r.Context(), req.Subject, maxDepth, emit)
	if err != nil {
		writeEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return
	}

	writeEvent(w, flusher, "result", result)
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Warn("server: marshal event", zap.String("event", event), zap.Error(err))
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
