package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/exchops/panelledger/internal/adapter/http/handler"
	"github.com/exchops/panelledger/internal/adapter/http/middleware"
	"github.com/exchops/panelledger/internal/infrastructure/metrics"
	"github.com/exchops/panelledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler      *handler.LedgerHandler
	TransactionHandler *handler.TransactionHandler
	ResetHandler       *handler.ResetHandler
	AuditHandler       *handler.AuditHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	Metrics            *metrics.Metrics
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Limit)
			}

			r.Post("/deposit", cfg.TransactionHandler.Deposit)
			r.Post("/withdrawal", cfg.TransactionHandler.Withdrawal)
			r.Post("/topup", cfg.TransactionHandler.TopUp)
			r.Post("/bonus", cfg.TransactionHandler.Bonus)
			r.Get("/", cfg.TransactionHandler.List)
		})

		// Daily ledgers
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/snapshot", cfg.LedgerHandler.Snapshot)
			r.Get("/panel", cfg.LedgerHandler.ListPanels)
			r.Get("/panel/{id}", cfg.LedgerHandler.GetPanel)
			r.Get("/bank", cfg.LedgerHandler.ListBanks)
			r.Get("/bank/{id}", cfg.LedgerHandler.GetBank)

			r.Get("/can-modify", cfg.LedgerHandler.CanModify)
			r.Post("/lock", cfg.LedgerHandler.Lock)
			r.Post("/validate", cfg.LedgerHandler.Validate)
			r.Post("/recalculate", cfg.LedgerHandler.Recalculate)

			r.Post("/reset", cfg.ResetHandler.Trigger)
			r.Get("/reset/status", cfg.ResetHandler.Status)
		})

		// Audit trail
		r.Get("/audit", cfg.AuditHandler.List)
	})

	return r
}
