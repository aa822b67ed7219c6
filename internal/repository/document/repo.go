package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/bookclub/internal/db"
	"github.com/kailas-cloud/bookclub/internal/db/redis"
	domdoc "github.com/kailas-cloud/bookclub/internal/domain/document"
)

// store is the consumer interface for review writes (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
}

// Config describes the review index.
type Config struct {
	IndexName       string
	KeyPrefix       string // full review key prefix, e.g. "bookclub:review:"
	VectorField     string
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo writes reviews as hashes under an FT index.
type Repo struct {
	store store
	cfg   Config
}

// New creates a review writer.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// Index returns the FT.CREATE definition for reviews.
func (r *Repo) Index() (*db.IndexDefinition, error) {
	return db.NewIndex(r.cfg.IndexName).
		Prefix(r.cfg.KeyPrefix).
		Text("author").
		Text("title").
		Text("text").
		Tag("category").
		Tag("id").
		VectorHNSW(r.cfg.VectorField, r.cfg.Dimensions, db.DistanceCosine, r.cfg.HNSWM, r.cfg.HNSWEFConstruct).
		Build()
}

// Prepare creates the index if missing. reset drops the index and its reviews first.
func (r *Repo) Prepare(ctx context.Context, reset bool) error {
	def, err := r.Index()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if reset {
		if err := r.store.DropIndex(ctx, def.Name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index %s: %w", def.Name, err)
		}
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Write stores vectorized reviews in one pipelined round-trip.
func (r *Repo) Write(ctx context.Context, docs []domdoc.Document) error {
	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		if len(d.Embedding()) != r.cfg.Dimensions {
			return fmt.Errorf("review %s: embedding has %d dims, index expects %d",
				d.ID(), len(d.Embedding()), r.cfg.Dimensions)
		}
		items = append(items, db.HashSetItem{
			Key: r.cfg.KeyPrefix + d.ID(),
			Fields: map[string]string{
				"id":              d.ID(),
				"author":          d.Author(),
				"title":           d.Title(),
				"text":            d.Text(),
				"category":        d.Category(),
				r.cfg.VectorField: string(redis.VectorBytes(d.Embedding())),
			},
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset reviews: %w", err)
	}
	return nil
}
