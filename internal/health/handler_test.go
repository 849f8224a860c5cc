package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/registry-client/internal/health"
	"github.com/serroba/registry-client/internal/middleware"
	"github.com/serroba/registry-client/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

func TestHandler_Check(t *testing.T) {
	errDown := errors.New("connection refused")

	tests := []struct {
		name     string
		redis    health.Checker
		postgres health.Checker
		status   string
		redisS   string
		pgS      string
	}{
		{
			name: "ok when all dependencies are healthy",
			redis: &mockChecker{}, postgres: &mockChecker{},
			status: "ok", redisS: "healthy", pgS: "healthy",
		},
		{
			name: "ok with postgres disabled",
			redis: &mockChecker{}, postgres: nil,
			status: "ok", redisS: "healthy", pgS: "disabled",
		},
		{
			name: "degraded when redis is down",
			redis: &mockChecker{err: errDown}, postgres: &mockChecker{},
			status: "degraded", redisS: "unhealthy", pgS: "healthy",
		},
		{
			name: "degraded when postgres is down",
			redis: &mockChecker{}, postgres: &mockChecker{err: errDown},
			status: "degraded", redisS: "healthy", pgS: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := health.NewHandler(tt.redis, tt.postgres)

			resp, err := handler.Check(context.Background(), nil)

			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.Body.Status)
			assert.Equal(t, tt.redisS, resp.Body.Redis)
			assert.Equal(t, tt.pgS, resp.Body.Postgres)
		})
	}
}

func TestRegisterRoutes(t *testing.T) {
	t.Run("health is not rate limited", func(t *testing.T) {
		router := chi.NewMux()
		api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))

		// a bucket with a single token
		limiter := ratelimit.NewTokenBucketLimiter(0.001, 1, 0)
		api.UseMiddleware(middleware.RateLimiter(api, limiter, middleware.RemoteIP, zap.NewNop()))

		health.RegisterRoutes(api, health.NewHandler(&mockChecker{}, nil))

		for range 3 {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"postgres":"disabled"`)
		}
	})
}
