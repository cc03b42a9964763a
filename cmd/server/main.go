package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/naphex/ledger/internal/adapter/http"
	"github.com/naphex/ledger/internal/adapter/http/handler"
	postgresRepo "github.com/naphex/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/naphex/ledger/internal/adapter/repository/redis"
	"github.com/naphex/ledger/internal/adapter/stream"
	"github.com/naphex/ledger/internal/adapter/upstream"
	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/infrastructure/auth"
	"github.com/naphex/ledger/internal/infrastructure/config"
	"github.com/naphex/ledger/internal/infrastructure/logging"
	"github.com/naphex/ledger/internal/infrastructure/metrics"
	"github.com/naphex/ledger/internal/infrastructure/postgres"
	"github.com/naphex/ledger/internal/infrastructure/redis"
	"github.com/naphex/ledger/internal/usecase"
)

// parseTaxRate validates the configured withdrawal tax percentage.
func parseTaxRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("tax rate %s out of range [0, 100]", rate)
	}
	return rate, nil
}

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	taxRate, err := parseTaxRate(cfg.WithdrawalTaxRate)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid WITHDRAWAL_TAX_RATE")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	withdrawalRepo := postgresRepo.NewWithdrawalRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	ledgerCache := redisRepo.NewLedgerCache(redisClient)

	// Upstream platform API and live event stream
	source := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	hub := stream.NewHub(m)

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(source, ledgerCache, hub, m).
		WithTTL(cfg.LedgerTTL).
		WithPageSize(cfg.LedgerPageSize)
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	withdrawalUC := usecase.NewWithdrawalUseCase(txManager, withdrawalRepo, auditRepo, ledgerUC, idGen, m, taxRate).
		WithRetrier(postgresRepo.NewRetrier())
	reportUC := usecase.NewReportUseCase(withdrawalRepo, source)

	// Consume the upstream snapshot stream for as long as the process
	// lives; every snapshot rebuilds that user's cached ledger.
	streamClient := stream.NewClient(cfg.StreamURL, cfg.StreamRetryInterval, func(ctx context.Context, snap *domain.Snapshot) error {
		_, err := ledgerUC.Rebuild(ctx, snap)
		return err
	}, slogger, m)

	go func() {
		if err := streamClient.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("stream consumer stopped")
		}
	}()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:       handler.NewAuthHandler(userUC, jwtManager),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC, hub),
		WithdrawalHandler: handler.NewWithdrawalHandler(withdrawalUC),
		ReportHandler:     handler.NewReportHandler(reportUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		JWTManager:        jwtManager,
		IdempotencyStore:  idempotencyStore,
		Logger:            log.Logger,
	})

	// Create server
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: cfg.HTTPReadTimeout,
		IdleTimeout: cfg.HTTPIdleTimeout,
		// No write timeout: the SSE endpoint holds its response open for
		// the life of the subscription.
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	stop()

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
