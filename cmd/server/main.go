package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/axiompay/internal/adapter/http"
	"github.com/iho/axiompay/internal/adapter/http/handler"
	"github.com/iho/axiompay/internal/adapter/http/middleware"
	"github.com/iho/axiompay/internal/adapter/idgen"
	"github.com/iho/axiompay/internal/adapter/ledger/hedera"
	redisRepo "github.com/iho/axiompay/internal/adapter/repository/redis"
	"github.com/iho/axiompay/internal/adapter/retry"
	"github.com/iho/axiompay/internal/infrastructure/config"
	"github.com/iho/axiompay/internal/infrastructure/eventpublisher"
	"github.com/iho/axiompay/internal/infrastructure/logger"
	"github.com/iho/axiompay/internal/infrastructure/metrics"
	"github.com/iho/axiompay/internal/infrastructure/redis"
	"github.com/iho/axiompay/internal/usecase"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = time.Hour
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	operator, err := cfg.OperatorIdentity()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	// The ledger session must exist before the listener accepts requests.
	ledger, err := hedera.NewClient(hedera.Config{
		Operator: operator,
		Logger:   appLogger.With().Str("component", "ledger").Logger(),
	})
	if err != nil {
		return fmt.Errorf("failed to open ledger session: %w", err)
	}
	defer ledger.Close()

	checkers := []handler.Checker{ledger}

	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		checkers = append(checkers, redis.NewChecker(redisClient))
		appLogger.Info().Msg("connected to redis")
	} else {
		appLogger.Warn().Msg("REDIS_URL not set, idempotency keys disabled")
	}

	publisher, closePublisher := newPublisher(cfg, appLogger)
	defer closePublisher()

	subscriptionUC, err := usecase.NewSubscriptionUseCase(usecase.SubscriptionConfig{
		Ledger:      ledger,
		Operator:    operator,
		Explorer:    cfg.Explorer(),
		ProductName: cfg.ProductName,
		Gate:        usecase.NewSubmissionGate(cfg.SubmitMaxInFlight),
		Retrier:     retry.NewRetrier(retryConfig(cfg), appLogger),
		IDGen:       idgen.NewULIDGenerator(),
		Publisher:   eventpublisher.NewInstrumented(publisher, appMetrics),
		Metrics:     appMetrics,
		Logger:      appLogger,
	})
	if err != nil {
		return err
	}
	balanceUC := usecase.NewBalanceUseCase(ledger, appMetrics)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, appMetrics)
		go rateLimiter.RunCleanup(ctx, limiterCleanupInterval, limiterIdleTimeout)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		SubscriptionHandler: handler.NewSubscriptionHandler(subscriptionUC, appLogger),
		BalanceHandler:      handler.NewBalanceHandler(balanceUC, appLogger),
		HealthHandler:       handler.NewHealthHandler(appLogger, checkers...),
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		RateLimiter:         rateLimiter,
		Metrics:             appMetrics,
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		Logger:              appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("port", cfg.HTTPPort).
			Str("network", string(operator.Network)).
			Str("business_account", operator.BusinessAccount.String()).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("server stopped")
	return nil
}

// newPublisher selects Kafka when brokers are configured and falls back to
// logging events.
func newPublisher(cfg *config.Config, appLogger zerolog.Logger) (usecase.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(appLogger), func() {}
	}

	p := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	appLogger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")

	return p, func() {
		if err := p.Close(); err != nil {
			appLogger.Warn().Err(err).Msg("failed to close kafka writer")
		}
	}
}

func retryConfig(cfg *config.Config) retry.Config {
	return retry.Config{
		MaxRetries:      cfg.SubmitMaxRetries,
		InitialInterval: cfg.SubmitInitialInterval,
		MaxInterval:     cfg.SubmitMaxInterval,
		MaxElapsedTime:  cfg.SubmitMaxElapsed,
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
