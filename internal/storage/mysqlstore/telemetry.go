package mysqlstore

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// tracer and meter mirror the sqlite provider's (C13), so the same
// hybrid_search call produces comparable spans regardless of which backend
// storage.Open selected.
var tracer = otel.Tracer("github.com/arkohut/pensieve/storage/mysqlstore")

var metrics struct {
	vectorScanned metric.Int64Counter
}

func init() {
	m := otel.Meter("github.com/arkohut/pensieve/storage/mysqlstore")
	metrics.vectorScanned, _ = m.Int64Counter("capidx.db.vector_scan_rows",
		metric.WithDescription("Rows read from entities_vec_v2 during VectorSearch, before truncation to limit"),
		metric.WithUnit("{row}"),
	)
}

func startDBSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "mysqlstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "dolt"), attribute.String("db.operation", op)),
	)
}

func endDBSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
