package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	episodeCounter  otelmetric.Int64Counter
	episodeDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	episodeCounter, _ := meter.Int64Counter(
		"search.episodes",
		otelmetric.WithDescription("Number of search episodes processed"),
	)

	episodeDuration, _ := meter.Float64Histogram(
		"search.episode.duration",
		otelmetric.WithDescription("Search episode duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		episodeCounter:  episodeCounter,
		episodeDuration: episodeDuration,
	}
}

func (o *Observability) RecordEpisode(ctx context.Context, mode, status string) {
	if o.episodeCounter != nil {
		o.episodeCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordEpisodeDuration(ctx context.Context, duration time.Duration, mode string) {
	if o.episodeDuration != nil {
		o.episodeDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("mode", mode),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
