// Package tokenizer provides the FTS index's write-time and query-time
// segmentation capability: tokenize(text) -> tokens and query_expand(query)
// -> fts_expression, with CJK support via a caller-configured WASM module.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenizer exposes the two operations the FTS index needs at write and
// query time.
type Tokenizer interface {
	Tokenize(text string) []string
	QueryExpand(query string) string
	Close() error
}

// fallback splits on Unicode word boundaries and AND-joins tokens into an
// FTS5 MATCH expression. Used when no WASM module path is configured;
// degrades recall for CJK text rather than failing closed.
type fallback struct{}

// NewFallback returns the pure-Go tokenizer used when tokenizer.wasm_path
// is unset.
func NewFallback() Tokenizer {
	return fallback{}
}

func (fallback) Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (f fallback) QueryExpand(query string) string {
	tokens := f.Tokenize(query)
	for i, t := range tokens {
		tokens[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(tokens, " AND ")
}

func (fallback) Close() error { return nil }
