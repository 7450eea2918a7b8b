package sqlite

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// tracer and meter are package-level handles against the global delegating
// provider (C13): a no-op until telemetry.Init is called, following the
// teacher's internal/storage/dolt package-level doltTracer/doltMetrics
// pattern so instrumenting VectorSearch never requires a running collector.
var tracer = otel.Tracer("github.com/arkohut/pensieve/storage/sqlite")

var metrics struct {
	vectorScanned metric.Int64Counter
}

func init() {
	m := otel.Meter("github.com/arkohut/pensieve/storage/sqlite")
	metrics.vectorScanned, _ = m.Int64Counter("capidx.db.vector_scan_rows",
		metric.WithDescription("Rows read from entities_vec_v2 during VectorSearch, before truncation to limit"),
		metric.WithUnit("{row}"),
	)
}

// startDBSpan opens a span for a single storage operation, tagged the way
// the teacher tags its SQL-level spans.
func startDBSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqlite."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "sqlite"), attribute.String("db.operation", op)),
	)
}

func endDBSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
