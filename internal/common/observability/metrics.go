package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"jobportal/internal/common/logger"
)

// Observability owns the OpenTelemetry meter and tracer providers. Backend
// call metrics land in the default Prometheus registry through the exporter.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	requestCounter otelmetric.Int64Counter
	requestLatency otelmetric.Float64Histogram
}

// New installs global providers. A failed exporter leaves metrics disabled but
// still returns a usable value.
func New(serviceName string, log logger.Logger) *Observability {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("prometheus exporter unavailable", map[string]interface{}{"error": err.Error()})
		return &Observability{tracerProvider: tp}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	requestCounter, _ := meter.Int64Counter(
		"backend.requests",
		otelmetric.WithDescription("Number of backend calls"),
	)

	requestLatency, _ := meter.Float64Histogram(
		"backend.request.duration",
		otelmetric.WithDescription("Backend call duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		tracerProvider: tp,
		meter:          meter,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

// RecordRequest satisfies the HTTP client's Recorder.
func (o *Observability) RecordRequest(ctx context.Context, endpoint, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestLatency != nil {
		o.requestLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
