package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/naphex/ledger/internal/adapter/http/handler"
	"github.com/naphex/ledger/internal/adapter/http/middleware"
	"github.com/naphex/ledger/internal/infrastructure/auth"
	"github.com/naphex/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	LedgerHandler     *handler.LedgerHandler
	WithdrawalHandler *handler.WithdrawalHandler
	ReportHandler     *handler.ReportHandler
	HealthHandler     *handler.HealthHandler
	JWTManager        *auth.JWTManager
	IdempotencyStore  usecase.IdempotencyStore
	RateLimiter       *middleware.RateLimiter
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Everything below requires a console session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.Me)

			// Per-user ledger views
			r.Route("/users/{userKey}", func(r chi.Router) {
				r.Get("/ledger", cfg.LedgerHandler.Get)
				r.Get("/ledger/summary", cfg.LedgerHandler.Summary)
				r.Get("/ledger/stream", cfg.LedgerHandler.Stream)
				r.Post("/ledger/refresh", cfg.LedgerHandler.Refresh)
				r.Get("/withdrawals", cfg.WithdrawalHandler.ListByUser)
			})

			// Payout queue
			r.Route("/withdrawals", func(r chi.Router) {
				r.Post("/", cfg.WithdrawalHandler.Create)
				r.Get("/", cfg.WithdrawalHandler.List)
				r.Get("/{id}", cfg.WithdrawalHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireDecider)
					r.Post("/{id}/approve", cfg.WithdrawalHandler.Approve)
					r.Post("/{id}/reject", cfg.WithdrawalHandler.Reject)
				})
			})

			// Reports
			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequireReporter)
				r.Get("/payouts", cfg.ReportHandler.DailyPayouts)
				r.Get("/reconcile/{userKey}", cfg.ReportHandler.Reconcile)
			})
		})
	})

	return r
}
