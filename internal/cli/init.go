// Package cli provides common initialization utilities shared by
// cmd/ichinichi, cmd/ichinichi-worker and cmd/ichi.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"ichinichi/internal/amqp"
	"ichinichi/internal/backend"
	"ichinichi/internal/cache"
	"ichinichi/internal/config"
	"ichinichi/internal/core"
	applog "ichinichi/internal/log"
	"ichinichi/internal/services"
)

const (
	summaryCacheSize   = 16
	summaryCachePrefix = "ichinichi:"
	cacheCleanupEvery  = time.Minute
	backendInitTimeout = 30 * time.Second
)

// SetupLogger initializes structured logging on stdout from LOG_LEVEL and
// LOG_FORMAT. Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	return SetupLoggerTo(os.Stdout)
}

// SetupLoggerTo is SetupLogger with an explicit destination. The terminal
// client logs to stderr so its output stays clean.
func SetupLoggerTo(w io.Writer) *slog.Logger {
	level := applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger := slog.New(applog.NewHandler(w, level, os.Getenv("LOG_FORMAT")))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore creates the item store selected by DATA_BACKEND.
func OpenStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, backendInitTimeout)
	defer cancel()
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

// Services bundles the item service with the resources it was built from.
type Services struct {
	Items     *services.ItemService
	Publisher *amqp.Client

	caches *cache.Manager
	redis  *redis.Client
}

// BuildServices wires storage, the summary cache and, when AMQP_URL is set,
// the event publisher into an ItemService. An unreachable broker or Redis is
// logged and skipped; an unusable store is an error.
func BuildServices(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*Services, error) {
	res, err := OpenStore(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	s := &Services{caches: cache.NewManager(logger)}
	var opts []services.Option

	if summaries := s.summaryCache(ctx, logger, cfg); summaries != nil {
		opts = append(opts, services.WithSummaryCache(summaries))
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events",
				applog.FieldComponent, applog.ComponentAMQP, applog.FieldError, err)
		} else {
			logger.Info("Initialized AMQP client",
				applog.FieldComponent, applog.ComponentAMQP,
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			s.Publisher = client
			opts = append(opts, services.WithPublisher(client))
		}
	}

	s.Items = services.NewItemService(res.Store, opts...)
	return s, nil
}

func (s *Services) summaryCache(ctx context.Context, logger *slog.Logger, cfg *config.Config) cache.Store[core.SummaryData] {
	if cfg.SummaryCacheTTL <= 0 {
		return nil
	}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			s.redis = client
			logger.Info("Using Redis summary cache", applog.FieldComponent, applog.ComponentCache)
			return cache.NewRedisCache[core.SummaryData](client, summaryCachePrefix, cfg.SummaryCacheTTL)
		}
		logger.Warn("Redis unavailable, using in-process summary cache",
			applog.FieldComponent, applog.ComponentCache, applog.FieldError, err)
	}
	lru := cache.NewLRUCache[core.SummaryData](summaryCacheSize, cfg.SummaryCacheTTL)
	s.caches.Register(lru)
	s.caches.StartCleanup(cacheCleanupEvery)
	return lru
}

// Close releases the service, the publisher, the store and the cache.
func (s *Services) Close() error {
	s.caches.Stop()
	var errs []error
	if s.Items != nil {
		if err := s.Items.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
