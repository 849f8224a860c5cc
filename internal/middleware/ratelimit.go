package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/registry-client/internal/ratelimit"
	"go.uber.org/zap"
)

// MetadataRateLimitExempt marks an operation that bypasses inbound rate limiting.
// Set it to true in huma.Operation.Metadata.
const MetadataRateLimitExempt = "rateLimitExempt"

// RateLimiter returns a Huma middleware that limits requests based on client IP and User-Agent.
func RateLimiter(
	api huma.API,
	limiter ratelimit.Limiter,
	clientIP ClientIP,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if exempt(ctx) {
			next(ctx)

			return
		}

		allowed, err := limiter.Allow(ctx.Context(), clientKey(clientIP(ctx), ctx.Header("User-Agent")))
		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", operationPath(ctx)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("path", operationPath(ctx)),
				zap.String("method", ctx.Method()),
				zap.String("client_ip", clientIP(ctx)),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

func exempt(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil {
		return false
	}

	v, _ := op.Metadata[MetadataRateLimitExempt].(bool)

	return v
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

// clientKey generates a unique key for rate limiting based on IP and User-Agent.
func clientKey(ip, userAgent string) string {
	hash := sha256.Sum256([]byte(ip + "|" + userAgent))

	return hex.EncodeToString(hash[:])
}
