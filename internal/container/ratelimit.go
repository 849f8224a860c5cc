package container

import (
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/registry-client/internal/ratelimit"
)

const inboundIdleTTL = 10 * time.Minute

// RateLimitPackage provides the inbound per-client limiter and the outbound registry gate.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.InboundRPS <= 0 || opts.InboundBurst <= 0 {
			return nil, fmt.Errorf("inbound rate must be positive, got %d rps burst %d", opts.InboundRPS, opts.InboundBurst)
		}

		return ratelimit.NewTokenBucketLimiter(float64(opts.InboundRPS), opts.InboundBurst, inboundIdleTTL), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.Gate, error) {
		opts := do.MustInvoke[*Options](i)

		unit, err := ratelimit.ParseTimeUnit(opts.RateUnit)
		if err != nil {
			return nil, err
		}

		return ratelimit.NewGate(unit, opts.RateLimit)
	})
}
