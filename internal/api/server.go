package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/flat-stake/internal/config"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/health"
	"github.com/yourusername/flat-stake/internal/metrics"
	"github.com/yourusername/flat-stake/internal/share"
)

// Dependencies wires the server to the calculator
type Dependencies struct {
	Allocator Allocator
	Checker   Checker
	Formatter *display.Formatter
	Sharer    *share.Sharer
	Health    *health.Handler
	Logger    *logrus.Logger
}

// Server is the HTTP and websocket front end
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger
	health *health.Handler
	router chi.Router
	http   *http.Server
}

// NewServer builds the router. Live sessions are closed when ctx is cancelled.
func NewServer(ctx context.Context, cfg *config.Config, deps Dependencies) *Server {
	s := &Server{
		cfg:    cfg,
		logger: deps.Logger,
		health: deps.Health,
	}

	handler := NewHandler(deps.Allocator, deps.Checker, deps.Formatter, deps.Sharer, deps.Logger, cfg.Allocation.MaxOutcomes)
	live := NewLiveHandler(ctx, LiveConfig{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		DefaultBudget:     cfg.Allocation.DefaultBudget,
		MaxOutcomes:       cfg.Allocation.MaxOutcomes,
		MessagesPerSecond: cfg.Server.WSMessagesPerSecond,
		Burst:             cfg.Server.WSBurst,
	}, deps.Allocator, deps.Formatter, deps.Sharer, deps.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout()))
		r.Post("/allocate", handler.Allocate)
		r.Post("/share", handler.Share)
	})
	r.Get("/ws", live.ServeHTTP)

	if cfg.IsDevelopment() {
		r.Mount("/debug", middleware.Profiler())
	}

	s.router = r
	s.http = &http.Server{
		Addr:         cfg.ListenAddress(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}
	return s
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Start listens until the server is shut down
func (s *Server) Start() error {
	s.logger.WithField("addr", s.http.Addr).Info("Starting HTTP server")
	if s.health != nil {
		s.health.SetReady(true)
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.health != nil {
		s.health.SetReady(false)
	}
	s.logger.Info("Shutting down HTTP server")
	return s.http.Shutdown(ctx)
}

func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
