// Package telemetry installs the global OpenTelemetry tracer and meter
// providers used by the storage, embedding, and search packages (C13).
// Grounded on the teacher's internal/storage/dolt pattern: package-level
// otel.Tracer/otel.Meter values registered against the global delegating
// provider, which is a no-op until Init is called, so importing a package
// that instruments itself never requires a running collector.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Init installs real SDK-backed tracer and meter providers as the OTel
// globals. Every package's package-level otel.Tracer(name)/otel.Meter(name)
// call already happened at init time against the prior (no-op) global, but
// the otel SDK's global providers delegate to whatever is installed here,
// so existing Tracer/Meter handles start emitting through the new providers
// immediately. cmd/capidx calls this once from PersistentPreRunE; tests
// that don't call it keep running against the no-op default.
func Init(serviceName string) (shutdown func(context.Context) error, err error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)))
	if err != nil {
		return nil, fmt.Errorf("building telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down tracer provider: %w", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down meter provider: %w", err)
		}
		return nil
	}, nil
}
