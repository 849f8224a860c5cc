package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/registry-client/internal/intake"
)

// RequestMeta is a middleware that adds client IP and user-agent to the request context.
func RequestMeta(_ huma.API, clientIP ClientIP) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := intake.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
		}

		next(huma.WithContext(ctx, intake.ContextWithRequestMeta(ctx.Context(), meta)))
	}
}
