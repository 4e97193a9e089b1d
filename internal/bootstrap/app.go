package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/opentill/cashdesk/internal/config"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/domain/user"
	"github.com/opentill/cashdesk/internal/infrastructure/observability"
	infraRedis "github.com/opentill/cashdesk/internal/infrastructure/redis"
	"github.com/opentill/cashdesk/internal/logsink"
	"github.com/opentill/cashdesk/internal/repository/postgres"
	"github.com/opentill/cashdesk/internal/repository/sqlite"
)

// App wires configuration, observability, the ledger store backend, and the
// mirror sink. Pool and SQLite are mutually exclusive: exactly one is non-nil
// depending on store.driver. Redis is non-nil only when the mirror sink or
// the mirror consumer needs it.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pool    *pgxpool.Pool
	SQLite  *sqlite.Store
	Redis   *redis.Client
	Metrics *observability.Metrics

	Ledger ledger.Store
	Users  user.Store
	Sink   logsink.Sink
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("service", serviceName).Msg("Starting")

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			go func() {
				<-ctx.Done()
				observability.Shutdown(context.Background(), tp)
			}()
			logger.Info().Msg("Tracing enabled")
		}
	}

	metrics := observability.NewMetrics(metricsNamespace, nil)
	logger.Info().Msg("Metrics initialized")

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
	}

	switch cfg.Store.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, &cfg.Store.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		app.Pool = pool
		app.Ledger = postgres.NewLedgerRepository(pool)
		app.Users = postgres.NewUserRepository(pool)
		logger.Info().Msg("Connected to PostgreSQL")
	case "sqlite":
		store, err := sqlite.Open(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		app.SQLite = store
		app.Ledger = store
		app.Users = store.Users()
		logger.Info().Str("path", cfg.Store.SQLite.Path).Msg("Opened SQLite store")
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	switch cfg.Mirror.Sink {
	case "redis":
		redisClient, err := infraRedis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		app.Redis = redisClient
		app.Sink = logsink.NewRedisSink(redisClient, cfg.Mirror.Stream)
		logger.Info().Str("stream", cfg.Mirror.Stream).Msg("Connected to Redis mirror stream")
	case "webhook":
		app.Sink = logsink.NewWebhookSink(cfg.Mirror.WebhookURL, cfg.Mirror.RequestTimeout)
		logger.Info().Str("url", cfg.Mirror.WebhookURL).Msg("Using webhook mirror sink")
	default:
		app.Close()
		return nil, fmt.Errorf("unknown mirror sink %q", cfg.Mirror.Sink)
	}

	return app, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.SQLite != nil {
		a.SQLite.Close()
	}
}
