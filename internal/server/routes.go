package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/vidstats/vidstats/internal/handler"
	"github.com/vidstats/vidstats/internal/middleware"
	"github.com/vidstats/vidstats/internal/security"
)

func (s *Server) setupRoutes() http.Handler {
	cfg := s.cfg

	// Startup summary — warn clearly about disabled features
	log.Info().
		Bool("model_enabled", s.analyzer != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Str("store_path", s.store.Path()).
		Msg("service configuration")

	if s.analyzer == nil {
		log.Warn().Msg("WARNING: no model configured - /api/v1/ask will not be registered")
	}
	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - API authentication is off")
	}

	// ─── Security ───────────────────────────────────────────────────────────────
	sqlVal := security.NewSQLValidator()
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(s.store, s.analyzer != nil)
	queryH := handler.NewQueryHandler(s.store, sqlVal, auditLogger)
	schemaH := handler.NewSchemaHandler(s.store)
	statsH := handler.NewStatsHandler(s.store)

	var askH *handler.AskHandler
	if s.analyzer != nil {
		askH = handler.NewAskHandler(s.analyzer)
	}

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			if askH != nil {
				r.Post("/ask", askH.Ask)
			}
			r.Post("/query", queryH.Execute)
			r.Get("/schema", schemaH.Schema)
			r.Get("/tables", schemaH.Tables)
			r.Get("/stats", statsH.Stats)
		})
	})

	return r
}
