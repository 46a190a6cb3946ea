// Package web serves the photobook JSON API and uploaded media.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/database"
	"github.com/kozaktomas/photobook/internal/editor"
	"github.com/kozaktomas/photobook/internal/web/handlers"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	builder    handlers.Builder
	registry   *editor.Registry
	store      database.BookWriter
}

// NewServer creates a new web server. store may be nil; books then live only
// as long as the process.
func NewServer(cfg *config.Config, builder handlers.Builder, store database.BookWriter) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:   cfg,
		router:   r,
		builder:  builder,
		registry: editor.NewRegistry(cfg, store, store),
		store:    store,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  2 * time.Minute, // large uploads
		WriteTimeout: 5 * time.Minute, // composing a large book
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
