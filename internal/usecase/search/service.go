package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	"github.com/kailas-cloud/bookclub/internal/domain/search/mode"
	"github.com/kailas-cloud/bookclub/internal/logger"
)

// ReviewFields is the lexical weighting: review text and title over author.
var ReviewFields = []FieldWeight{
	{Field: "text", Weight: 6},
	{Field: "title", Weight: 6},
	{Field: "author", Weight: 4},
}

// Config holds retrieval limits.
type Config struct {
	ResultCap     int // hits per mode for live queries
	CandidatePool int // HNSW candidates examined per vector query
}

// DefaultConfig returns the live-query limits.
func DefaultConfig() Config {
	return Config{ResultCap: 7, CandidatePool: 10000}
}

// Query is one retrieval request.
type Query struct {
	Text     string
	Category string // keyword code
	Mode     mode.Mode
	// AuthorHint is carried for diagnostics only; author filtering happens after retrieval.
	AuthorHint string
	// Limit overrides Config.ResultCap when positive (offline callers use a smaller cap).
	Limit int
}

// Service runs text, vector and hybrid retrieval against one backend.
type Service struct {
	repo  Repository
	embed Embedder
	cfg   Config
}

// New creates a search service.
func New(repo Repository, embed Embedder, cfg Config) *Service {
	if cfg.ResultCap <= 0 {
		cfg.ResultCap = DefaultConfig().ResultCap
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = DefaultConfig().CandidatePool
	}
	return &Service{repo: repo, embed: embed, cfg: cfg}
}

// Search executes the query in the requested mode.
// Hybrid runs Vector then Text sequentially and merges by id.
func (s *Service) Search(ctx context.Context, q Query) ([]document.Document, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.ResultCap
	}

	var (
		docs []document.Document
		err  error
	)
	switch q.Mode {
	case mode.Text:
		docs, err = s.searchText(ctx, q, limit)
	case mode.Vector:
		docs, err = s.searchVector(ctx, q, limit)
	case mode.Hybrid:
		docs, err = s.searchHybrid(ctx, q, limit)
	default:
		return nil, fmt.Errorf("%w: unsupported search mode %q", domain.ErrInvalidRequest, q.Mode)
	}
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("search completed",
		zap.String("mode", string(q.Mode)),
		zap.String("category", q.Category),
		zap.String("author_hint", q.AuthorHint),
		zap.Int("hits", len(docs)),
	)
	return docs, nil
}

func (s *Service) searchText(ctx context.Context, q Query, limit int) ([]document.Document, error) {
	docs, err := s.repo.SearchText(ctx, TextQuery{
		Text:     q.Text,
		Category: q.Category,
		Fields:   ReviewFields,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search text: %w", asRetrievalErr(err))
	}
	return docs, nil
}

func (s *Service) searchVector(ctx context.Context, q Query, limit int) ([]document.Document, error) {
	res, err := s.embed.Embed(ctx, q.Text)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	docs, err := s.repo.SearchVector(ctx, VectorQuery{
		Vector:        res.Embedding,
		Category:      q.Category,
		K:             limit,
		CandidatePool: s.cfg.CandidatePool,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", asRetrievalErr(err))
	}
	return docs, nil
}

func (s *Service) searchHybrid(ctx context.Context, q Query, limit int) ([]document.Document, error) {
	vector, err := s.searchVector(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	text, err := s.searchText(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	merged := mergeByID(vector, text)
	logger.FromContext(ctx).Debug("hybrid merge",
		zap.Int("vector", len(vector)),
		zap.Int("text", len(text)),
		zap.Int("merged", len(merged)),
	)
	return merged, nil
}

func asRetrievalErr(err error) error {
	if errors.Is(err, domain.ErrRetrievalBackend) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrRetrievalBackend, err)
}
