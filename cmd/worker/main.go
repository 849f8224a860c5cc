package main

import (
	"context"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"github.com/serroba/registry-client/internal/container"
	"github.com/serroba/registry-client/internal/messaging"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RepositoryPackage(injector)
	container.RateLimitPackage(injector)
	container.TelemetryPackage(injector)
	container.RegistryPackage(injector)
	container.ConsumerGroupPackage(injector)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			group := do.MustInvoke[*messaging.ConsumerGroup](injector)

			if err := group.Start(ctx); err != nil {
				logger.Fatal("failed to start consumer group", zap.Error(err))
			}

			logger.Info("worker started", zap.String("consumer_group", options.ConsumerGroup))

			<-ctx.Done()
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")
			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
			_ = logger.Sync()
		})
	})

	cli.Run()
}
