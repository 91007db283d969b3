// Package api provides the HTTP API server and handlers for the MirrorBox
// catalog mirror.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mirrorboxapp/mirrorbox-server/internal/http/response"
	"github.com/mirrorboxapp/mirrorbox-server/internal/ratelimit"
)

// apiVersion is reported in the OpenAPI document and the health payload.
const apiVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
	syncRuns *runRegistry
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", userIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(identityMiddleware(services.User))
	if limiter != nil {
		router.Use(RateLimitMiddleware(limiter, logger))
	}

	humaConfig := huma.DefaultConfig("MirrorBox API", apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"identity": {
			Type: "apiKey",
			In:   "header",
			Name: userIDHeader,
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services: services,
		router:   router,
		api:      api,
		logger:   logger,
		syncRuns: newRunRegistry(),
	}

	s.router.Get("/health", s.handleHealthCheck)

	s.registerSceneRoutes()
	s.registerImageRoutes()
	s.registerGalleryRoutes()
	s.registerPerformerRoutes()
	s.registerStudioRoutes()
	s.registerTagRoutes()
	s.registerGroupRoutes()
	s.registerRestrictionRoutes()
	s.registerOverlayRoutes()
	s.registerUserRoutes()
	s.registerSearchRoutes()
	s.registerSyncRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"version": apiVersion,
	}, s.logger)
}
