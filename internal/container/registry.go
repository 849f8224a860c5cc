package container

import (
	"context"

	"github.com/samber/do"
	"github.com/serroba/registry-client/internal/observability"
	"github.com/serroba/registry-client/internal/ratelimit"
	"github.com/serroba/registry-client/internal/registry"
	"github.com/serroba/registry-client/internal/submission"
	"go.uber.org/zap"
)

// TelemetryPackage provides the OpenTelemetry providers.
func TelemetryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*observability.Provider, error) {
		opts := do.MustInvoke[*Options](i)

		return observability.Init(context.Background(), observability.Config{
			ServiceName: serviceName,
			Exporter:    opts.Telemetry,
		})
	})
}

// RegistryPackage provides the gated registry client and the submission processor.
func RegistryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*registry.Client, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		gate := do.MustInvoke[*ratelimit.Gate](i)
		telemetry := do.MustInvoke[*observability.Provider](i)

		timeout, err := parseDuration("registry timeout", opts.RegistryTimeout)
		if err != nil {
			return nil, err
		}

		logger.Info("registry gate configured",
			zap.Int("limit", gate.Limit()),
			zap.Duration("window", gate.WindowSize()),
		)

		return registry.NewClient(registry.Config{
			BaseURL:      opts.RegistryURL,
			Token:        opts.RegistryToken,
			Timeout:      timeout,
			ProductGroup: opts.ProductGroup,
		}, gate, logger.Named("registry"), telemetry.Meter("github.com/serroba/registry-client/internal/registry"))
	})

	do.Provide(i, func(i *do.Injector) (*submission.Processor, error) {
		client := do.MustInvoke[*registry.Client](i)
		repo := do.MustInvoke[submission.Repository](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return submission.NewProcessor(client, repo, logger.Named("processor")), nil
	})
}
