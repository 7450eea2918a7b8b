package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// tracer and embedCount are package-level handles against the global
// delegating provider (C13), following the same no-op-until-Init shape used
// for the storage providers' DB spans.
var tracer = otel.Tracer("github.com/arkohut/pensieve/embedding")

var embedMetrics struct {
	calls metric.Int64Counter
}

func init() {
	m := otel.Meter("github.com/arkohut/pensieve/embedding")
	embedMetrics.calls, _ = m.Int64Counter("capidx.embedding.calls",
		metric.WithDescription("Embed() calls by outcome"),
		metric.WithUnit("{call}"),
	)
}

// OllamaEmbedder calls a local Ollama daemon's embeddings endpoint.
// Grounded on the same client construction and availability-check pattern
// used for entity extraction elsewhere in this codebase, repurposed here
// for embed(texts) -> vectors instead of structured extraction.
type OllamaEmbedder struct {
	client *api.Client
	model  string
	dim    int
}

// NewOllamaEmbedder builds an embedder against host (embedding.ollama_host
// in config). When host is empty, it falls back to the standard OLLAMA_HOST
// environment resolution, matching the Ollama CLI's own default.
func NewOllamaEmbedder(host, model string, dim int) (*OllamaEmbedder, error) {
	client, err := newOllamaClient(host)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaEmbedder{client: client, model: model, dim: dim}, nil
}

func newOllamaClient(host string) (*api.Client, error) {
	if host == "" {
		return api.ClientFromEnvironment()
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama_host %q: %w", host, err)
	}
	if base.Scheme == "" {
		base, err = url.Parse("http://" + host)
		if err != nil {
			return nil, fmt.Errorf("parsing ollama_host %q: %w", host, err)
		}
	}
	return api.NewClient(base, http.DefaultClient), nil
}

func (o *OllamaEmbedder) Dim() int {
	return o.dim
}

// Available checks daemon reachability with a short timeout, the same
// health-check shape used before any extraction call.
func (o *OllamaEmbedder) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := o.client.List(ctx)
	return err == nil
}

func (o *OllamaEmbedder) Embed(ctx context.Context, texts []string) (out [][]float32, err error) {
	ctx, span := tracer.Start(ctx, "embedding.embed",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("embedding.model", o.model),
			attribute.Int("embedding.batch_size", len(texts)),
		),
	)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "unavailable"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		embedMetrics.calls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		span.End()
	}()

	if len(texts) == 0 {
		return nil, nil
	}
	if !o.Available(ctx) {
		return nil, ErrUnavailable
	}

	resp, embedErr := o.client.Embed(ctx, &api.EmbedRequest{
		Model: o.model,
		Input: texts,
	})
	if embedErr != nil {
		err = ErrUnavailable
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		err = ErrUnavailable
		return nil, err
	}

	out = make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = e
	}
	return out, nil
}
