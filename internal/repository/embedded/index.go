// Package embedded is an in-process review backend: a bleve in-memory lexical index plus
// an exact cosine scan over the review vectors. It needs no Redis and is filled at start-up
// by the ingestion use case.
package embedded

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

// Index holds every loaded review. Safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	text  bleve.Index
	docs  map[string]document.Document
	order []string // insertion order, breaks vector score ties
	ready bool
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	text, err := newTextIndex()
	if err != nil {
		return nil, err
	}
	return &Index{text: text, docs: make(map[string]document.Document)}, nil
}

func newTextIndex() (bleve.Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("author", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	im.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return idx, nil
}

// Prepare readies the index for a load. reset discards everything loaded so far.
func (x *Index) Prepare(_ context.Context, reset bool) error {
	if !reset {
		return nil
	}
	text, err := newTextIndex()
	if err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	old := x.text
	x.text = text
	x.docs = make(map[string]document.Document)
	x.order = nil
	x.ready = false
	if err := old.Close(); err != nil {
		return fmt.Errorf("close bleve index: %w", err)
	}
	return nil
}

// Write adds or replaces reviews. The vector table only sees reviews the bleve batch committed.
func (x *Index) Write(_ context.Context, docs []document.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.text.NewBatch()
	for i := range docs {
		d := docs[i]
		if err := batch.Index(d.ID(), map[string]any{
			"author":   d.Author(),
			"title":    d.Title(),
			"text":     d.Text(),
			"category": d.Category(),
		}); err != nil {
			return fmt.Errorf("index review %s: %w", d.ID(), err)
		}
	}
	if err := x.text.Batch(batch); err != nil {
		return fmt.Errorf("bleve batch: %w", err)
	}

	for i := range docs {
		d := docs[i]
		if _, exists := x.docs[d.ID()]; !exists {
			x.order = append(x.order, d.ID())
		}
		x.docs[d.ID()] = d
	}
	return nil
}

// MarkReady flags the initial load as finished; Ping fails until then.
func (x *Index) MarkReady() {
	x.mu.Lock()
	x.ready = true
	x.mu.Unlock()
}

// Ping reports whether the initial load has completed.
func (x *Index) Ping(_ context.Context) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.ready {
		return fmt.Errorf("embedded index not loaded")
	}
	return nil
}

// SearchText runs boosted per-field match queries (OR-ed) filtered to the category keyword.
func (x *Index) SearchText(_ context.Context, q ucsearch.TextQuery) ([]document.Document, error) {
	if q.Limit <= 0 {
		return nil, nil
	}

	fields := make([]blevequery.Query, 0, len(q.Fields))
	for _, f := range q.Fields {
		mq := bleve.NewMatchQuery(q.Text)
		mq.SetField(f.Field)
		if f.Weight > 0 {
			mq.SetBoost(f.Weight)
		}
		fields = append(fields, mq)
	}
	var query blevequery.Query = bleve.NewDisjunctionQuery(fields...)
	if q.Category != "" {
		cat := bleve.NewTermQuery(q.Category)
		cat.SetField("category")
		cat.SetBoost(0.0001)
		query = bleve.NewConjunctionQuery(query, cat)
	}

	req := bleve.NewSearchRequestOptions(query, q.Limit, 0, false)

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.text.Search(req)
	if err != nil {
		return nil, fmt.Errorf("%w: bleve search: %w", domain.ErrRetrievalBackend, err)
	}

	out := make([]document.Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if d, ok := x.docs[hit.ID]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// SearchVector scans every review in the category and returns the K most cosine-similar.
// The scan is exact, so the candidate pool does not apply.
func (x *Index) SearchVector(_ context.Context, q ucsearch.VectorQuery) ([]document.Document, error) {
	if q.K <= 0 || len(q.Vector) == 0 {
		return nil, nil
	}

	type scored struct {
		pos   int
		score float64
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]scored, 0, len(x.order))
	for pos, id := range x.order {
		d := x.docs[id]
		if q.Category != "" && d.Category() != q.Category {
			continue
		}
		emb := d.Embedding()
		if len(emb) != len(q.Vector) {
			continue
		}
		hits = append(hits, scored{pos: pos, score: cosine(q.Vector, emb)})
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(hits) > q.K {
		hits = hits[:q.K]
	}

	out := make([]document.Document, len(hits))
	for i, h := range hits {
		out[i] = x.docs[x.order[h.pos]]
	}
	return out, nil
}

// Authors returns the sorted unique authors reviewed in a category.
func (x *Index) Authors(_ context.Context, category string) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, d := range x.docs {
		if d.Category() == category && d.Author() != "" {
			seen[d.Author()] = struct{}{}
		}
	}
	authors := make([]string, 0, len(seen))
	for a := range seen {
		authors = append(authors, a)
	}
	slices.Sort(authors)
	return authors, nil
}

// Count returns the number of loaded reviews in a category; empty category counts all.
func (x *Index) Count(_ context.Context, category string) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if category == "" {
		return len(x.docs), nil
	}
	n := 0
	for _, d := range x.docs {
		if d.Category() == category {
			n++
		}
	}
	return n, nil
}

// Close releases the bleve index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.text.Close()
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
