package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/saldopos/saldo/internal/adapter/http"
	"github.com/saldopos/saldo/internal/adapter/http/handler"
	postgresRepo "github.com/saldopos/saldo/internal/adapter/repository/postgres"
	redisRepo "github.com/saldopos/saldo/internal/adapter/repository/redis"
	"github.com/saldopos/saldo/internal/infrastructure/config"
	"github.com/saldopos/saldo/internal/infrastructure/logger"
	"github.com/saldopos/saldo/internal/infrastructure/logging"
	"github.com/saldopos/saldo/internal/infrastructure/metrics"
	"github.com/saldopos/saldo/internal/infrastructure/postgres"
	"github.com/saldopos/saldo/internal/infrastructure/redis"
	"github.com/saldopos/saldo/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slogLog := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
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
	ledgerRepo := postgresRepo.NewLedgerRepository(pool, txManager)
	cacheRepo := postgresRepo.NewBalanceCacheRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	rebuildLock := redisRepo.NewRebuildLock(redisClient)

	// Use cases
	balanceUC := usecase.NewBalanceUseCase(ledgerRepo, cacheRepo, m)
	rebuildUC := usecase.NewRebuildUseCase(
		ledgerRepo,
		cacheRepo,
		postgresRepo.NewRetrier().WithLogger(slogLog),
		postgresRepo.NewULIDRunIDs(),
		m,
	).WithLock(rebuildLock, cfg.RebuildLockTTL).
		WithDefaultUnit(cfg.DefaultCurrency, cfg.DefaultPrecision).
		WithTimeout(cfg.RebuildTimeout)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	// Handlers
	balanceHandler := handler.NewBalanceHandler(balanceUC, rebuildUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC, func(consistent bool) {
		outcome := "inconsistent"
		if consistent {
			outcome = "ok"
		}
		m.ConsistencyChecks.WithLabelValues(outcome).Inc()
	})
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:   balanceHandler,
		LedgerHandler:    ledgerHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
