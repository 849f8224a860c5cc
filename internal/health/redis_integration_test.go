//go:build integration

package health_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/registry-client/internal/health"
	"github.com/stretchr/testify/assert"
)

func TestRedisChecker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	t.Run("Ping returns nil when redis is available", func(t *testing.T) {
		checker := health.NewRedisChecker(client)

		assert.NoError(t, checker.Ping(context.Background()))
	})
}
