package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects query-embedding token usage for a single answer request.
// The transport puts a mutable pointer into the context, the search gateway adds to it,
// and the transport reads it back for the X-Embedding-Tokens header.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // true if the embedder was called, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil collector.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
