// Package mockserver is a local stand-in for the remote document QA service,
// for development and end-to-end testing of the client without the real
// backend. It honors the same upload policy and error shapes.
package mockserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/config"
)

// Server serves the /upload and /ask endpoints with canned answers.
type Server struct {
	config *config.MockConfig
	logger *zap.Logger
	server *http.Server

	mu      sync.Mutex
	loaded  bool
	docName string
}

// NewServer creates a mock server with the given bind settings.
func NewServer(cfg *config.MockConfig, logger *zap.Logger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("Starting mock backend", zap.String("addr", addr))
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	return s.server.ListenAndServe()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/upload", s.handleUpload)
	r.Post("/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	return r
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
