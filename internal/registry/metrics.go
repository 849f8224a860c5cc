package registry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeCreated   = "created"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
)

type metrics struct {
	permitWait metric.Float64Histogram
	requests   metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	permitWait, err := meter.Float64Histogram("registry.permit.wait",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent waiting for a rate limit permit"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("registry.requests",
		metric.WithDescription("Create document calls by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{permitWait: permitWait, requests: requests}, nil
}

func (m *metrics) waited(ctx context.Context, d time.Duration) {
	m.permitWait.Record(ctx, d.Seconds())
}

func (m *metrics) outcome(ctx context.Context, outcome string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
