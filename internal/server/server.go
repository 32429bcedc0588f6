package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dygy/midi-service/internal/config"
	"github.com/dygy/midi-service/internal/observability"
	"github.com/dygy/midi-service/internal/pipeline"
)

const (
	serviceName    = "midi-generation"
	serviceVersion = "1.0.0"
)

// Server is the HTTP server
type Server struct {
	config    config.Config
	router    *chi.Mux
	logger    *slog.Logger
	generator *pipeline.Generator
}

// New creates a new server. It touches neither the working directory nor
// the engine; both are only used once a generation request arrives.
func New(cfg config.Config, generator *pipeline.Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	s := &Server{
		config:    cfg,
		router:    chi.NewRouter(),
		logger:    logger,
		generator: generator,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(observability.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-MIDI-Size"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/generate-midi", s.handleGenerate)
	r.Post("/generate-midi-async", s.handleGenerateAsync)
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Transcription has no deadline, so neither does writing its result.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		s.logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	s.logger.Info("server starting",
		slog.Int("port", s.config.Port),
		slog.String("temp_dir", s.config.TempDir),
		slog.String("environment", s.config.Environment),
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}
