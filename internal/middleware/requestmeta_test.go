package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/registry-client/internal/intake"
	"github.com/serroba/registry-client/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	Body string `json:"body"`
}

// serveMeta runs req through the middleware and returns the metadata the handler saw.
func serveMeta(t *testing.T, clientIP middleware.ClientIP, req *http.Request) intake.RequestMeta {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api, clientIP))

	metaChan := make(chan intake.RequestMeta, 1)

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		metaChan <- intake.RequestMetaFromContext(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	return <-metaChan
}

func TestRequestMeta(t *testing.T) {
	t.Run("extracts user-agent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")

		meta := serveMeta(t, middleware.RemoteIP, req)

		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
	})

	t.Run("extracts IP from X-Forwarded-For with single IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1")

		assert.Equal(t, "192.168.1.1", serveMeta(t, middleware.ForwardedIP, req).ClientIP)
	})

	t.Run("extracts first IP from X-Forwarded-For with multiple IPs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1, 172.16.0.1")

		assert.Equal(t, "192.168.1.1", serveMeta(t, middleware.ForwardedIP, req).ClientIP)
	})

	t.Run("extracts IP from X-Real-IP when X-Forwarded-For is absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")

		assert.Equal(t, "10.0.0.1", serveMeta(t, middleware.ForwardedIP, req).ClientIP)
	})

	t.Run("falls back to remote address when no IP headers present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "172.16.0.9:4455"

		assert.Equal(t, "172.16.0.9", serveMeta(t, middleware.ForwardedIP, req).ClientIP)
	})

	t.Run("ignores forwarding headers without a trusted proxy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "172.16.0.9:4455"
		req.Header.Set("X-Forwarded-For", "192.168.1.1")
		req.Header.Set("X-Real-IP", "10.0.0.1")

		assert.Equal(t, "172.16.0.9", serveMeta(t, middleware.RemoteIP, req).ClientIP)
	})
}

func TestClientIPFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "172.16.0.9:4455"
	req.Header.Set("X-Forwarded-For", "192.168.1.1")

	assert.Equal(t, "172.16.0.9", serveMeta(t, middleware.ClientIPFor(false), req).ClientIP)
	assert.Equal(t, "192.168.1.1", serveMeta(t, middleware.ClientIPFor(true), req).ClientIP)
}
