// Package embedding defines the embed(texts) -> vectors contract consumed
// by the index writer and hybrid ranker. The core never implements a model;
// it only calls this interface.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the embedding backend could not be
// reached or returned no vectors. Callers treat this as "skip vector
// indexing", not as a fatal error.
var ErrUnavailable = errors.New("embedding unavailable")

// Embedder computes fixed-dimensionality vectors for a batch of texts.
// Implementations must be deterministic with respect to text and may batch
// internally.
type Embedder interface {
	// Embed returns one vector per input text, in order. On backend
	// failure it returns (nil, ErrUnavailable) rather than a partial
	// result.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dim is the fixed vector dimensionality this embedder produces.
	Dim() int
}
