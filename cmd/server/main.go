package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpAdapter "github.com/exchops/panelledger/internal/adapter/http"
	"github.com/exchops/panelledger/internal/adapter/http/handler"
	"github.com/exchops/panelledger/internal/adapter/http/middleware"
	postgresRepo "github.com/exchops/panelledger/internal/adapter/repository/postgres"
	redisRepo "github.com/exchops/panelledger/internal/adapter/repository/redis"
	"github.com/exchops/panelledger/internal/infrastructure/config"
	"github.com/exchops/panelledger/internal/infrastructure/logger"
	"github.com/exchops/panelledger/internal/infrastructure/metrics"
	"github.com/exchops/panelledger/internal/infrastructure/notifier"
	"github.com/exchops/panelledger/internal/infrastructure/postgres"
	"github.com/exchops/panelledger/internal/infrastructure/redis"
	"github.com/exchops/panelledger/internal/usecase"
)

const schedulerActor = "scheduler"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Observability
	m := metrics.New()

	events := notifier.New(notifier.Config{Logger: log})
	go func() { _ = events.Start(ctx) }()
	go notifier.LogSubscriber(log, events.Subscribe(64))

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	panelRepo := postgresRepo.NewPanelLedgerRepository(pool)
	bankRepo := postgresRepo.NewBankLedgerRepository(pool)
	logRepo := postgresRepo.NewTransactionLogRepository(pool)
	playerRepo := postgresRepo.NewPlayerRepository(pool)
	entityRepo := postgresRepo.NewEntityRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	auditUC := usecase.NewAuditUseCase(auditRepo, m, log)
	calcUC := usecase.NewCalculationUseCase(txManager, panelRepo, bankRepo, m, log)
	validationUC := usecase.NewValidationUseCase(panelRepo, bankRepo, loc, log)
	queryUC := usecase.NewQueryUseCase(panelRepo, bankRepo, logRepo, auditUC, events, loc, log)
	resetUC := usecase.NewResetUseCase(txManager, panelRepo, bankRepo, entityRepo, auditUC, events, m, loc, log)
	snapshotUC := usecase.NewSnapshotUseCase(panelRepo, bankRepo, cache, cfg.SnapshotTTL, loc, log)
	transactionUC := usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TxManager:  txManager,
		PanelRepo:  panelRepo,
		BankRepo:   bankRepo,
		LogRepo:    logRepo,
		PlayerRepo: playerRepo,
		Calc:       calcUC,
		Audit:      auditUC,
		IDGen:      idGen,
		Retrier:    retrier,
		Notifier:   events,
		Instr:      m,
		Logger:     log,
		Location:   loc,
	})

	// Background loops
	go func() { _ = snapshotUC.Start(ctx, cfg.SnapshotTTL) }()
	if cfg.ResetEnabled {
		go runResetScheduler(ctx, resetUC, cfg.ResetCheckInterval, log)
	}

	// HTTP
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:      handler.NewLedgerHandler(queryUC, validationUC, calcUC, snapshotUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, queryUC),
		ResetHandler:       handler.NewResetHandler(resetUC),
		AuditHandler:       handler.NewAuditHandler(auditUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Metrics:            m,
		RateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:             log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// runResetScheduler runs the missed-rollover check. The rollover itself
// is idempotent, so a check that races a manual reset is harmless.
func runResetScheduler(ctx context.Context, resetUC *usecase.ResetUseCase, interval time.Duration, log zerolog.Logger) {
	if interval == 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("reset scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reset scheduler stopped")
			return
		case <-ticker.C:
			status, err := resetUC.IsResetComplete(ctx, time.Now())
			if err != nil {
				log.Error().Err(err).Msg("reset completeness check failed")
				continue
			}
			if status.Complete {
				continue
			}

			log.Warn().
				Int64("panel_rows", status.PanelRows).
				Int64("active_panels", status.ActivePanels).
				Int64("prev_open_rows", status.PrevOpenRows).
				Msg("daily reset incomplete, running rollover")

			if _, err := resetUC.PerformDailyReset(ctx, schedulerActor); err != nil {
				log.Error().Err(err).Msg("scheduled daily reset failed")
			}
		}
	}
}
