package container

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/registry-client/internal/messaging"
	"github.com/serroba/registry-client/internal/submission"
	"go.uber.org/zap"
)

// PublisherGroupPackage provides the Redis stream publisher and the typed
// publish function for submitted documents.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		redisClient := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     redisClient.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[submission.SubmittedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[submission.SubmittedEvent](
			group.Publisher(),
			submission.TopicDocumentSubmitted,
			"SubmittedEvent",
		), nil
	})
}

// ConsumerGroupPackage provides the consumer group that delivers submitted
// documents to the registry.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		redisClient := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)
		processor := do.MustInvoke[*submission.Processor](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        redisClient.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: opts.ConsumerGroup,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			submission.TopicDocumentSubmitted,
			processor.Handle,
			logger.Named("consumer"),
		))

		return group, nil
	})
}
