package search

import (
	"context"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
)

// FieldWeight boosts lexical matches in one review field.
type FieldWeight struct {
	Field  string
	Weight float64
}

// TextQuery is a category-filtered lexical search request.
type TextQuery struct {
	Text     string
	Category string // keyword code
	Fields   []FieldWeight
	Limit    int
}

// VectorQuery is a category-filtered nearest-neighbour search request.
type VectorQuery struct {
	Vector        []float32
	Category      string // keyword code
	K             int
	CandidatePool int
}

// Repository is the search backend contract. Failures wrap domain.ErrRetrievalBackend.
type Repository interface {
	SearchText(ctx context.Context, q TextQuery) ([]document.Document, error)
	SearchVector(ctx context.Context, q VectorQuery) ([]document.Document, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
