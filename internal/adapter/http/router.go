package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/saldopos/saldo/internal/adapter/http/handler"
	"github.com/saldopos/saldo/internal/adapter/http/middleware"
	"github.com/saldopos/saldo/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler   *handler.BalanceHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// NewRouter creates the HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/balances", func(r chi.Router) {
			r.Get("/", cfg.BalanceHandler.List)

			// Cache maintenance. Rebuilds are rate limited hard and replay
			// through the idempotency store when a key is supplied.
			r.Group(func(r chi.Router) {
				if cfg.IdempotencyStore != nil {
					mw := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
					r.Use(mw.Wrap)
				}
				r.Use(middleware.NewRateLimiter(1, 2).Limit)

				r.Post("/rebuild", cfg.BalanceHandler.Rebuild)
				r.Delete("/cache", cfg.BalanceHandler.InvalidateCache)
			})

			r.Get("/{accountID}", cfg.BalanceHandler.Get)
		})

		r.Get("/ledger/consistency", cfg.LedgerHandler.Consistency)
		r.Get("/ledger/entries", cfg.LedgerHandler.Entries)
	})

	return r
}
