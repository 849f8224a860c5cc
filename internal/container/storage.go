package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/registry-client/internal/store"
	"github.com/serroba/registry-client/internal/submission"
	"go.uber.org/zap"
)

// RedisClient closes the wrapped client when the injector shuts down.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// RedisPackage provides the Redis client used for streams and caching.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the PostgreSQL submission store. It is only
// invoked when Options.DatabaseURL is set.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.PostgresStore, error) {
		opts := do.MustInvoke[*Options](i)

		ctx := context.Background()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		pg := store.NewPostgresStore(pool)

		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		return pg, nil
	})
}

// RepositoryPackage provides the submission repository: in memory when no
// database is configured, otherwise PostgreSQL behind a Redis read cache.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (submission.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			logger.Warn("no database configured, submissions are kept in memory")

			return store.NewMemoryStore(), nil
		}

		ttl, err := parseDuration("cache ttl", opts.CacheTTL)
		if err != nil {
			return nil, err
		}

		pg, err := do.Invoke[*store.PostgresStore](i)
		if err != nil {
			return nil, err
		}

		redisClient := do.MustInvoke[*RedisClient](i)

		return store.NewRedisCacheRepository(pg, redisClient.Client, ttl), nil
	})
}
