package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ClientIP resolves the address a request is attributed to.
type ClientIP func(ctx huma.Context) string

// RemoteIP uses the connection's peer address and ignores forwarding headers.
// Use it when clients reach the service directly.
func RemoteIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}

// ForwardedIP trusts X-Forwarded-For and X-Real-IP as set by a reverse proxy,
// falling back to the peer address. Clients can forge these headers, so only
// use it behind a proxy that overwrites them.
func ForwardedIP(ctx huma.Context) string {
	// X-Forwarded-For may carry a chain; the first entry is the original client
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return RemoteIP(ctx)
}

// ClientIPFor picks ForwardedIP when a trusted proxy fronts the service.
func ClientIPFor(trustProxy bool) ClientIP {
	if trustProxy {
		return ForwardedIP
	}

	return RemoteIP
}
