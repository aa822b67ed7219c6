package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/kailas-cloud/bookclub/internal/db"
	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

// --- SearchVector ---

func TestSearchVector_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "book-reviews" || q.VectorField != "title_text_vector" {
			t.Errorf("unexpected index/field: %s/%s", q.IndexName, q.VectorField)
		}
		if q.K != 7 || q.EFRuntime != 10000 {
			t.Errorf("unexpected K/EF: %d/%d", q.K, q.EFRuntime)
		}
		if len(q.Tags) != 1 || q.Tags[0] != (db.TagFilter{Field: "category", Value: "bm"}) {
			t.Errorf("unexpected tags: %+v", q.Tags)
		}
		if !slices.Equal(q.ReturnFields, []string{"author", "title", "text", "category", "id"}) {
			t.Errorf("unexpected return fields: %v", q.ReturnFields)
		}
		return &db.SearchResult{
			Total:   2,
			Entries: []db.SearchEntry{reviewEntry("r1", "Adam Grant"), reviewEntry("r2", "Ray Dalio")},
		}, nil
	}

	got, err := repo.SearchVector(context.Background(), ucsearch.VectorQuery{
		Vector: []float32{0.1}, Category: "bm", K: 7, CandidatePool: 10000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(got))
	}
	if got[0].ID() != "r1" || got[0].Author() != "Adam Grant" || got[0].Category() != "bm" {
		t.Errorf("unexpected doc: id=%s author=%s", got[0].ID(), got[0].Author())
	}
}

func TestSearchVector_IDFallsBackToKey(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "bookclub:review:abc", Fields: map[string]string{"author": "A"}},
		}}, nil
	}

	got, err := repo.SearchVector(context.Background(), ucsearch.VectorQuery{Vector: []float32{1}, K: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID() != "abc" {
		t.Errorf("expected id abc, got %s", got[0].ID())
	}
}

func TestSearchVector_ErrorIsRetrievalBackend(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}
	}

	_, err := repo.SearchVector(context.Background(), ucsearch.VectorQuery{Vector: []float32{1}, K: 7})
	if !errors.Is(err, domain.ErrRetrievalBackend) {
		t.Fatalf("expected ErrRetrievalBackend, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Error("db.Error should stay in the chain")
	}
}

// --- SearchText ---

func TestSearchText_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if !slices.Equal(q.Terms, []string{"what", "does", "adam", "grant", "say"}) {
			t.Errorf("unexpected terms: %v", q.Terms)
		}
		wantFields := []db.FieldWeight{{Field: "text", Weight: 6}, {Field: "title", Weight: 6}, {Field: "author", Weight: 4}}
		if !slices.Equal(q.Fields, wantFields) {
			t.Errorf("unexpected fields: %+v", q.Fields)
		}
		if q.TopK != 7 {
			t.Errorf("unexpected topK: %d", q.TopK)
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{reviewEntry("r9", "Adam Grant")}}, nil
	}

	got, err := repo.SearchText(context.Background(), ucsearch.TextQuery{
		Text: "What does Adam Grant say?", Category: "bm", Fields: ucsearch.ReviewFields, Limit: 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := document.IDs(got); !slices.Equal(ids, []string{"r9"}) {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestSearchText_NoTermsSkipsBackend(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		t.Fatal("backend must not be called for a query without terms")
		return nil, nil
	}

	got, err := repo.SearchText(context.Background(), ucsearch.TextQuery{Text: " ?! ", Limit: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no docs, got %d", len(got))
	}
}

func TestSearchText_ErrorIsRetrievalBackend(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, errors.New("syntax error")
	}

	_, err := repo.SearchText(context.Background(), ucsearch.TextQuery{Text: "x", Limit: 7})
	if !errors.Is(err, domain.ErrRetrievalBackend) {
		t.Fatalf("expected ErrRetrievalBackend, got %v", err)
	}
}

// --- Authors / Count ---

func TestAuthors_SortedUniqueAcrossPages(t *testing.T) {
	repo, ms := newTestRepo(t)

	firstPage := make([]db.SearchEntry, authorPageSize)
	for i := range firstPage {
		firstPage[i] = reviewEntry(fmt.Sprint(i), []string{"Ray Dalio", "Adam Grant"}[i%2])
	}
	pages := 0
	ms.searchListFn = func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		pages++
		switch q.Offset {
		case 0:
			return &db.SearchResult{Total: authorPageSize + 1, Entries: firstPage}, nil
		case authorPageSize:
			return &db.SearchResult{Total: authorPageSize + 1, Entries: []db.SearchEntry{reviewEntry("x", "James Clear")}}, nil
		default:
			t.Fatalf("unexpected offset %d", q.Offset)
			return nil, nil
		}
	}

	got, err := repo.Authors(context.Background(), "bm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Adam Grant", "James Clear", "Ray Dalio"}
	if !slices.Equal(got, want) {
		t.Errorf("authors = %v, want %v", got, want)
	}
	if pages != 2 {
		t.Errorf("expected 2 pages, got %d", pages)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchCountFn = func(_ context.Context, index string, tags []db.TagFilter) (int, error) {
		if index != "book-reviews" || len(tags) != 0 {
			t.Errorf("unexpected count args: %s %v", index, tags)
		}
		return 42, nil
	}

	n, err := repo.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("What's 'Atomic Habits' about? (2018)")
	want := []string{"what", "s", "atomic", "habits", "about", "2018"}
	if !slices.Equal(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}
