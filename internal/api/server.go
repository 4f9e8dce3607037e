package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bookdesk/platform/internal/api/handler"
	mw "github.com/bookdesk/platform/internal/api/middleware"
	"github.com/bookdesk/platform/internal/config"
	"github.com/bookdesk/platform/internal/core"
	"github.com/bookdesk/platform/internal/store"
)

// Server is the HTTP surface of the platform: the OAuth endpoints, the
// admin API, and the operational endpoints.
type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	cfg         *config.Config
	pool        *pgxpool.Pool
	oauth       *core.OAuthService
	apiKeys     *core.APIKeyService
	rateLimits  *core.RateLimitService
	sessions    core.SessionResolver
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, sessions core.SessionResolver, cfg *config.Config) *Server {
	st := store.New(pool)

	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		cfg:    cfg,
		pool:   pool,
		oauth: core.NewOAuthService(st, core.OAuthLifetimes{
			AuthCode:     cfg.AuthCodeLifetime,
			AccessToken:  cfg.AccessTokenLifetime,
			RefreshToken: cfg.RefreshTokenLifetime,
		}),
		apiKeys:     core.NewAPIKeyService(st, logger),
		rateLimits:  core.NewRateLimitService(st, cfg.RateLimitDefault, cfg.RateLimitWindow),
		sessions:    sessions,
		auditLogger: mw.NewAuditLogger(pool, logger),
	}
	if s.sessions == nil {
		s.sessions = core.NoSession{}
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	identity := mw.Identity(s.sessions, s.apiKeys, s.oauth, s.logger)
	rateLimit := mw.RateLimit(s.rateLimits, s.logger)

	oauth := handler.NewOAuth(s.oauth, s.cfg.LoginURL)
	s.router.Route("/oauth", func(r chi.Router) {
		r.Use(identity)
		r.Use(rateLimit)

		r.Get("/authorize", oauth.Authorize)
		r.Post("/token", oauth.Token)
		r.Post("/revoke", oauth.Revoke)
		r.Post("/introspect", oauth.Introspect)
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(identity)
		r.Use(rateLimit)
		r.Use(s.auditLogger.Middleware)

		// OAuth clients
		client := handler.NewClient(s.oauth)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequirePermission("clients:manage"))
			r.Get("/clients", client.List)
			r.Post("/clients", client.Register)
			r.Get("/clients/{id}", client.Get)
			r.Post("/clients/{id}/rotate-secret", client.RotateSecret)
			r.Put("/clients/{id}/active", client.SetActive)
		})

		// API keys
		apiKey := handler.NewAPIKey(s.apiKeys)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequirePermission("api-keys:manage"))
			r.Get("/api-keys", apiKey.List)
			r.Post("/api-keys", apiKey.Create)
			r.Delete("/api-keys/{keyID}", apiKey.Deactivate)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Close stops background workers owned by the server.
func (s *Server) Close() {
	s.auditLogger.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
