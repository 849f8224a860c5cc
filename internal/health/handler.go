package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/registry-client/internal/middleware"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"

	pingTimeout = 2 * time.Second
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations.
type Handler struct {
	redis    Checker
	postgres Checker
}

// NewHandler creates a new health handler. A nil postgres checker is reported
// as disabled, which is the case when submissions are kept in memory.
func NewHandler(redis, postgres Checker) *Handler {
	return &Handler{redis: redis, postgres: postgres}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status   string `enum:"ok,degraded"                    json:"status"`
		Redis    string `enum:"healthy,unhealthy"              json:"redis"`
		Postgres string `enum:"healthy,unhealthy,disabled"     json:"postgres"`
	}
}

// Check performs a health check of the application and its dependencies.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Redis = probe(ctx, h.redis)
	resp.Body.Postgres = probe(ctx, h.postgres)

	if resp.Body.Redis == statusUnhealthy || resp.Body.Postgres == statusUnhealthy {
		resp.Body.Status = "degraded"
	}

	return resp, nil
}

func probe(ctx context.Context, checker Checker) string {
	if checker == nil {
		return statusDisabled
	}

	if err := checker.Ping(ctx); err != nil {
		return statusUnhealthy
	}

	return statusHealthy
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
		Metadata:    map[string]any{middleware.MetadataRateLimitExempt: true},
	}, h.Check)
}
