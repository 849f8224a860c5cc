package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/registry-client/internal/health"
	"github.com/serroba/registry-client/internal/intake"
	"github.com/serroba/registry-client/internal/messaging"
	"github.com/serroba/registry-client/internal/middleware"
	"github.com/serroba/registry-client/internal/ratelimit"
	"github.com/serroba/registry-client/internal/store"
	"github.com/serroba/registry-client/internal/submission"
	"go.uber.org/zap"
)

const submissionIDLength = 21

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		limiter := do.MustInvoke[ratelimit.Limiter](i)
		repo := do.MustInvoke[submission.Repository](i)
		publish := do.MustInvoke[messaging.Publish[submission.SubmittedEvent]](i)
		redisClient := do.MustInvoke[*RedisClient](i)

		newID, err := nanoid.Standard(submissionIDLength)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("Registry Client", "1.0.0"))
		clientIP := middleware.ClientIPFor(opts.TrustProxy)

		api.UseMiddleware(
			middleware.RequestMeta(api, clientIP),
			middleware.RateLimiter(api, limiter, clientIP, logger.Named("ratelimit")),
		)

		var postgres health.Checker
		if opts.DatabaseURL != "" {
			postgres = do.MustInvoke[*store.PostgresStore](i)
		}

		intake.RegisterRoutes(api, intake.NewDocumentHandler(repo, publish, newID, logger.Named("intake")))
		health.RegisterRoutes(api, health.NewHandler(health.NewRedisChecker(redisClient.Client), postgres))

		return api, nil
	})
}
