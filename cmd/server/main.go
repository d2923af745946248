package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/cajafin/ledger/internal/adapter/http"
	"github.com/cajafin/ledger/internal/adapter/http/handler"
	postgresRepo "github.com/cajafin/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/cajafin/ledger/internal/adapter/repository/redis"
	"github.com/cajafin/ledger/internal/infrastructure/auth"
	"github.com/cajafin/ledger/internal/infrastructure/config"
	"github.com/cajafin/ledger/internal/infrastructure/logger"
	"github.com/cajafin/ledger/internal/infrastructure/metrics"
	"github.com/cajafin/ledger/internal/infrastructure/postgres"
	"github.com/cajafin/ledger/internal/infrastructure/redis"
	"github.com/cajafin/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = zl

	penaltyRate, err := decimal.NewFromString(cfg.PenaltyDailyRatePercent)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.PenaltyDailyRatePercent).Msg("invalid penalty rate")
	}

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewBankAccountRepository(pool)
	movementRepo := postgresRepo.NewBankMovementRepository(pool)
	cashRepo := postgresRepo.NewCashMovementRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	paymentRepo := postgresRepo.NewLoanPaymentRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	codeGen := postgresRepo.NewCodeGenerator()
	retrier := postgresRepo.NewRetrier()

	// Use cases
	recorder := usecase.NewMovementRecorder(accountRepo, movementRepo, outboxRepo, idGen, codeGen)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, recorder, idGen, codeGen)
	movementUC := usecase.NewBankMovementUseCase(txManager, accountRepo, movementRepo, recorder, m).WithRetrier(retrier)
	cashUC := usecase.NewCashMovementUseCase(txManager, cashRepo, idGen, codeGen)
	integrationUC := usecase.NewIntegrationUseCase(
		txManager, accountRepo, movementRepo, cashRepo, cashUC, recorder, auditRepo, idGen, m,
	).WithRetrier(retrier)
	loanUC := usecase.NewLoanUseCase(txManager, loanRepo, paymentRepo, outboxRepo, idGen, codeGen, m).WithCache(cache)
	reconUC := usecase.NewReconciliationUseCase(accountRepo, movementRepo)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	movementHandler := handler.NewMovementHandler(movementUC)
	cashHandler := handler.NewCashHandler(cashUC)
	integrationHandler := handler.NewIntegrationHandler(integrationUC)
	loanHandler := handler.NewLoanHandler(loanUC, penaltyRate)
	reconciliationHandler := handler.NewReconciliationHandler(reconUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("authentication disabled, all requests act as the development admin")
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        accountHandler,
		MovementHandler:       movementHandler,
		CashHandler:           cashHandler,
		IntegrationHandler:    integrationHandler,
		LoanHandler:           loanHandler,
		ReconciliationHandler: reconciliationHandler,
		HealthHandler:         healthHandler,
		IdempotencyStore:      idempotencyStore,
		JWTManager:            jwtManager,
		Metrics:               m,
		Logger:                zl,
		RateLimitRPS:          cfg.RateLimitRPS,
		RateLimitBurst:        cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	go runOutboxRelay(relayCtx, outboxRepo, cfg)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopRelay()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// runOutboxRelay drains the outbox on an interval. Events are logged as the
// delivery channel; a broker integration would replace the log call and
// keep the mark-published bookkeeping.
func runOutboxRelay(ctx context.Context, outboxRepo usecase.OutboxRepository, cfg *config.Config) {
	ticker := time.NewTicker(cfg.OutboxPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		events, err := outboxRepo.GetUnpublished(ctx, cfg.OutboxBatchSize)
		if err != nil {
			log.Error().Err(err).Msg("outbox poll failed")
			continue
		}

		for _, event := range events {
			log.Info().
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Str("aggregate_id", event.AggregateID).
				Msg("event published")

			if err := outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
				log.Error().Err(err).Str("event_id", event.ID).Msg("failed to mark event published")
			}
		}

		if err := outboxRepo.DeletePublished(ctx, time.Now().UTC().Add(-cfg.OutboxRetention)); err != nil {
			log.Error().Err(err).Msg("outbox prune failed")
		}
	}
}
