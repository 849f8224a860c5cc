// Package observability wires OpenTelemetry tracing and metrics.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	// ExporterNone disables telemetry export.
	ExporterNone = "none"
	// ExporterStdout writes spans and metrics as JSON.
	ExporterStdout = "stdout"

	defaultInterval = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

var ErrUnknownExporter = errors.New("unknown telemetry exporter")

// Config selects where telemetry goes.
type Config struct {
	ServiceName string
	Exporter    string
	// Writer receives stdout exports. Defaults to os.Stdout.
	Writer io.Writer
	// Interval between metric exports. Defaults to 15s.
	Interval time.Duration
}

// Provider owns the tracer and meter providers for the process.
type Provider struct {
	meterProvider  metric.MeterProvider
	tracerShutdown func(context.Context) error
	meterShutdown  func(context.Context) error
}

// Init installs global providers for cfg.Exporter. With ExporterNone the
// globals are left untouched and meters are no-ops.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return &Provider{meterProvider: noop.NewMeterProvider()}, nil
	case ExporterStdout:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}

	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer))
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.Interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Provider{
		meterProvider:  meterProvider,
		tracerShutdown: tracerProvider.Shutdown,
		meterShutdown:  meterProvider.Shutdown,
	}, nil
}

// Meter returns a named meter from the installed provider.
func (p *Provider) Meter(name string) metric.Meter {
	return p.meterProvider.Meter(name)
}

// Shutdown flushes pending spans and metrics.
func (p *Provider) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if p.tracerShutdown != nil {
		errs = append(errs, p.tracerShutdown(ctx))
	}

	if p.meterShutdown != nil {
		errs = append(errs, p.meterShutdown(ctx))
	}

	return errors.Join(errs...)
}
