package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/kailas-cloud/bookclub/internal/db"
	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

// returnFields are the review fields every hit must carry.
var returnFields = []string{"author", "title", "text", "category", "id"}

// authorPageSize is the FT.SEARCH page used when scanning a category for authors.
const authorPageSize = 1000

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, tags []db.TagFilter) (int, error)
}

// Config names the FT index and its key layout.
type Config struct {
	IndexName   string
	KeyPrefix   string // full review key prefix, e.g. "bookclub:review:"
	VectorField string
}

// Repo implements usecase/search.Repository and the catalog author listing over Redis.
type Repo struct {
	store store
	cfg   Config
}

// New creates a search repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// SearchText runs the weighted lexical query filtered to one category.
func (r *Repo) SearchText(ctx context.Context, q ucsearch.TextQuery) ([]document.Document, error) {
	terms := Tokenize(q.Text)
	if len(terms) == 0 {
		return nil, nil
	}

	fields := make([]db.FieldWeight, len(q.Fields))
	for i, f := range q.Fields {
		fields[i] = db.FieldWeight{Field: f.Field, Weight: f.Weight}
	}

	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.cfg.IndexName,
		Terms:        terms,
		Fields:       fields,
		Tags:         categoryTag(q.Category),
		TopK:         q.Limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: text %s: %w", domain.ErrRetrievalBackend, r.cfg.IndexName, err)
	}
	return r.toDocuments(sr), nil
}

// SearchVector runs the category-filtered KNN query.
func (r *Repo) SearchVector(ctx context.Context, q ucsearch.VectorQuery) ([]document.Document, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		VectorField:  r.cfg.VectorField,
		Vector:       q.Vector,
		K:            q.K,
		EFRuntime:    q.CandidatePool,
		Tags:         categoryTag(q.Category),
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn %s: %w", domain.ErrRetrievalBackend, r.cfg.IndexName, err)
	}
	return r.toDocuments(sr), nil
}

// Authors returns the sorted unique authors reviewed in a category.
func (r *Repo) Authors(ctx context.Context, category string) ([]string, error) {
	seen := make(map[string]struct{})
	for offset := 0; ; offset += authorPageSize {
		sr, err := r.store.SearchList(ctx, &db.ListQuery{
			IndexName:    r.cfg.IndexName,
			Tags:         categoryTag(category),
			Offset:       offset,
			Limit:        authorPageSize,
			ReturnFields: []string{"author"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list authors: %w", domain.ErrRetrievalBackend, err)
		}
		for _, e := range sr.Entries {
			if a := e.Fields["author"]; a != "" {
				seen[a] = struct{}{}
			}
		}
		if len(sr.Entries) < authorPageSize || offset+len(sr.Entries) >= sr.Total {
			break
		}
	}

	authors := make([]string, 0, len(seen))
	for a := range seen {
		authors = append(authors, a)
	}
	slices.Sort(authors)
	return authors, nil
}

// Count returns the number of indexed reviews in a category; empty category counts all.
func (r *Repo) Count(ctx context.Context, category string) (int, error) {
	n, err := r.store.SearchCount(ctx, r.cfg.IndexName, categoryTag(category))
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrRetrievalBackend, err)
	}
	return n, nil
}

func (r *Repo) toDocuments(sr *db.SearchResult) []document.Document {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	out := make([]document.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields["id"]
		if id == "" {
			id = strings.TrimPrefix(e.Key, r.cfg.KeyPrefix)
		}
		out = append(out, document.Reconstruct(
			id, e.Fields["author"], e.Fields["title"], e.Fields["text"], e.Fields["category"], nil,
		))
	}
	return out
}

func categoryTag(code string) []db.TagFilter {
	if code == "" {
		return nil
	}
	return []db.TagFilter{{Field: "category", Value: code}}
}

// Tokenize lowercases the query and splits it into letter/digit runs.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
