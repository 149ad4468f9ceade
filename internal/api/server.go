// Package api exposes the booking pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
	"github.com/Osaseye/SECURE-STAY/internal/feed"
	"github.com/Osaseye/SECURE-STAY/internal/pipeline"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, svc *pipeline.Service, repo domain.Repository, state domain.StateStore, bus domain.EventBus, liveFeed *feed.Feed, version string) *Server {
	handler := NewHandler(svc, repo, state, bus, liveFeed, version, cfg.ReviewDelay)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// Guest checkout
	router.Post("/bookings", handler.CreateBooking)
	router.Get("/bookings/{ref}", handler.GetBookingByReference)

	// Admin dashboard
	router.Route("/admin", func(r chi.Router) {
		r.Get("/bookings", handler.ListBookings)
		r.Get("/bookings/{id}", handler.GetBooking)
		r.Post("/bookings/{id}/status", handler.UpdateStatus)
		r.Get("/dashboard", handler.Dashboard)
		r.Get("/stream", handler.Stream)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: time.Duration(s.config.ReadTimeout) * time.Second,
		// WriteTimeout would sever the SSE stream; rely on client
		// disconnects and shutdown instead.
		IdleTimeout: 120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
