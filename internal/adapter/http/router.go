package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cajafin/ledger/internal/adapter/http/handler"
	"github.com/cajafin/ledger/internal/adapter/http/middleware"
	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/infrastructure/auth"
	"github.com/cajafin/ledger/internal/infrastructure/metrics"
	"github.com/cajafin/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	MovementHandler       *handler.MovementHandler
	CashHandler           *handler.CashHandler
	IntegrationHandler    *handler.IntegrationHandler
	LoanHandler           *handler.LoanHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	JWTManager       *auth.JWTManager
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(limiter.Limit)
		go func() {
			// Reset the per-IP bucket map hourly so it cannot grow unbounded.
			for range time.Tick(time.Hour) {
				limiter.CleanupLimiters()
			}
		}()
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.Auth(cfg.JWTManager))
		} else {
			// Auth disabled: every request acts as the development admin.
			r.Use(middleware.StaticActor(domain.Actor{
				UserID:      "dev",
				DisplayName: "Desarrollo",
				Role:        domain.RoleAdmin,
			}))
		}

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Bank accounts and their ledger
		r.Route("/accounts", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/", cfg.AccountHandler.Open)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Patch("/{id}/active", cfg.AccountHandler.SetActive)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/movements", cfg.MovementHandler.Post)
			r.Get("/{id}/movements", cfg.MovementHandler.ListByAccount)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.ReconcileAccount)
		})

		// Bank movements
		r.Route("/movements", func(r chi.Router) {
			r.Get("/", cfg.MovementHandler.List)
			r.Get("/{id}", cfg.MovementHandler.Get)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/reverse", cfg.MovementHandler.Reverse)
		})

		// Cash register
		r.Route("/cash", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/", cfg.CashHandler.Register)
			r.Get("/", cfg.CashHandler.List)
			r.Get("/{id}", cfg.CashHandler.Get)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/validate", cfg.CashHandler.Validate)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/apply", cfg.CashHandler.Apply)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/cancel", cfg.CashHandler.Cancel)
		})

		// Integrated events: cash plus bank in one transaction
		r.Route("/events", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/", cfg.IntegrationHandler.Post)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/reverse", cfg.IntegrationHandler.Reverse)
		})

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/", cfg.LoanHandler.Request)
			r.Get("/", cfg.LoanHandler.List)
			r.Get("/statistics", cfg.LoanHandler.Statistics)
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/cancel", cfg.LoanHandler.Cancel)
			r.Get("/{id}/simulation", cfg.LoanHandler.Simulate)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/{id}/schedule", cfg.LoanHandler.GenerateSchedule)
			r.Get("/{id}/schedule", cfg.LoanHandler.ListPayments)
		})

		// Loan payments
		r.Route("/payments/{paymentID}", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/pay", cfg.LoanHandler.ApplyPayment)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/penalty", cfg.LoanHandler.AccruePenalty)
			r.With(middleware.RequireRole(domain.RoleOperator)).Post("/reject", cfg.LoanHandler.RejectPayment)
		})

		// Reconciliation
		r.Route("/reconciliation", func(r chi.Router) {
			r.Get("/", cfg.ReconciliationHandler.ReconcileOwn)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Get("/unlinked", cfg.ReconciliationHandler.UnlinkedMovements)
		})
	})

	return r
}
