package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/bookclub/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchTextFn  func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchListFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index string, tags []db.TagFilter) (int, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string, tags []db.TagFilter) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, tags)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, Config{
		IndexName:   "book-reviews",
		KeyPrefix:   "bookclub:review:",
		VectorField: "title_text_vector",
	})
	return repo, ms
}

func reviewEntry(id, author string) db.SearchEntry {
	return db.SearchEntry{
		Key: "bookclub:review:" + id,
		Fields: map[string]string{
			"id":       id,
			"author":   author,
			"title":    "Title " + id,
			"text":     "Review " + id,
			"category": "bm",
		},
	}
}
