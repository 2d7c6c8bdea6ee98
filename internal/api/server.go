// Package api serves correlation analyses over HTTP. Results live in memory
// only.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"corromics/internal/config"
	"corromics/internal/errors"
	"corromics/internal/logging"
	"corromics/internal/metrics"
	"corromics/internal/pipeline"
)

// Server is the HTTP surface of the analysis pipeline.
type Server struct {
	cfg      config.ServerConfig
	opts     pipeline.Options
	analyzer *pipeline.Analyzer
	store    *Store
	events   *EventHub
	metrics  *metrics.Recorder
	router   *chi.Mux
	logger   *zap.Logger
}

// NewServer builds the router. rec may be nil, in which case /metrics serves
// a private registry.
func NewServer(cfg *config.Config, rec *metrics.Recorder, logger *zap.Logger) (*Server, error) {
	logger = logging.OrNop(logger)
	opts, err := pipeline.OptionsFromConfig(cfg.Analysis)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	analyzer, err := pipeline.NewAnalyzer(opts, logger, rec)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	s := &Server{
		cfg:      cfg.Server,
		opts:     opts,
		analyzer: analyzer,
		store:    NewStore(cfg.Server.MaxAnalyses),
		events:   NewEventHub(logger),
		metrics:  rec,
		router:   chi.NewRouter(),
		logger:   logger.Named("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/estimate", s.handleEstimate)
		r.Get("/events", s.events.ServeHTTP)

		r.Route("/analyses", func(r chi.Router) {
			r.Get("/", s.handleListAnalyses)
			r.Post("/", s.handleCreateAnalysis)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAnalysis)
				r.Get("/fdr", s.handleFDR)
				r.Get("/scores/{run}", s.handleScores)
				r.Get("/charts/{chart}", s.handleChart)
				r.Get("/report", s.handleReport)
				r.Get("/workbook", s.handleWorkbook)
			})
		})
	})
}

// requestLogger logs one line per request with zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Store exposes the analysis store.
func (s *Server) Store() *Store { return s.store }

// Events exposes the event hub.
func (s *Server) Events() *EventHub { return s.events }

// Close stops background work. Open event streams end.
func (s *Server) Close() { s.events.Close() }

// ListenAndServe serves on the configured port until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("code", code), zap.Error(err))
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
