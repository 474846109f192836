package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records question-level OpenTelemetry metrics exported through Prometheus.
type Observability struct {
	meterProvider    *metric.MeterProvider
	questionCounter  otelmetric.Int64Counter
	questionDuration otelmetric.Float64Histogram
}

// New installs a global meter provider. On exporter failure it returns a
// recorder that drops everything.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName), nil
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	counter, _ := meter.Int64Counter(
		"questions.processed",
		otelmetric.WithDescription("Number of chat questions processed"),
	)

	duration, _ := meter.Float64Histogram(
		"questions.duration",
		otelmetric.WithDescription("Chat question processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		questionCounter:  counter,
		questionDuration: duration,
	}
}

// RecordQuestion counts one question and its latency.
func (o *Observability) RecordQuestion(ctx context.Context, source, intent, outcome string, elapsed time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("source", source),
		attribute.String("intent", intent),
		attribute.String("outcome", outcome),
	)
	if o.questionCounter != nil {
		o.questionCounter.Add(ctx, 1, attrs)
	}
	if o.questionDuration != nil {
		o.questionDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
