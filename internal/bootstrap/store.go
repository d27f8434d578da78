// Package bootstrap opens infrastructure and composes the domain modules for
// the binaries under cmd/.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bosfinder_backend/platform/config"
	"bosfinder_backend/platform/db"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/docstore/memstore"
	"bosfinder_backend/platform/docstore/pgstore"
	"bosfinder_backend/platform/docstore/redisstore"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/redisx"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	connectAttempts  = 5
	connectBaseDelay = 2 * time.Second
)

// OpenStore connects the document store selected by STORE_DRIVER. The
// returned close function releases its connections.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (docstore.Store, func(), error) {
	switch cfg.GetStoreDriver() {
	case config.StoreDriverMemory:
		log.Warn("using in-memory document store; data is lost on restart")
		return memstore.New(), func() {}, nil

	case config.StoreDriverPostgres:
		if err := WithRetry(ctx, log, "database migrations", connectAttempts, connectBaseDelay, func() error {
			return db.RunMigrations(ctx, cfg, pgstore.Migrations, pgstore.MigrationsDir)
		}); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Info("database migrations complete")

		var pool *pgxpool.Pool
		if err := WithRetry(ctx, log, "database connection", connectAttempts, connectBaseDelay, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		log.Info("database connection established")
		return pgstore.New(pool, cfg.GetStoreMaxRetries()), pool.Close, nil

	case config.StoreDriverRedis:
		var rdb *redis.Client
		if err := WithRetry(ctx, log, "redis connection", connectAttempts, connectBaseDelay, func() error {
			c, err := redisx.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			rdb = c
			return nil
		}); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("redis connection established", "prefix", cfg.GetRedisKeyPrefix())
		store := redisstore.New(rdb, cfg.GetRedisKeyPrefix(), redisstore.WithMaxRetries(cfg.GetStoreMaxRetries()))
		return store, func() { _ = rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.GetStoreDriver())
	}
}

// WithRetry runs fn up to attempts times with quadratic backoff.
func WithRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
