// Package server assembles the HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	reporthandlers "github.com/aristath/conviction/internal/modules/reports/handlers"
	universehandlers "github.com/aristath/conviction/internal/modules/universe/handlers"
	valuationhandlers "github.com/aristath/conviction/internal/modules/valuation/handlers"
	"github.com/aristath/conviction/pkg/logger"
)

// Config holds the HTTP listener settings.
type Config struct {
	Host string
	Port string
}

// Handlers are the route groups the server mounts.
type Handlers struct {
	Valuation *valuationhandlers.Handler
	Reports   *reporthandlers.Handler
	Universe  *universehandlers.Handler
	Analysis  *AnalysisHandler
	System    *SystemHandler
}

// Server is the HTTP front of the application.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

// New builds the router and server.
func New(cfg Config, h Handlers, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.System.Health)
	r.Route("/api", func(r chi.Router) {
		r.Mount("/valuation", h.Valuation.Routes())
		r.Mount("/reports", h.Reports.Routes())
		r.Mount("/universe", h.Universe.Routes())
		r.Mount("/analysis", h.Analysis.Routes())
		r.Mount("/system", h.System.Routes())
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Host + ":" + cfg.Port,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 130 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: logger.Service(log, "http"),
	}
}

// Start blocks serving HTTP until shutdown or failure.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
