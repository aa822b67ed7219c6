package document

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxTextSize is the maximum review text size in bytes.
const MaxTextSize = 163840 // 160KB

// Document is a single book review (immutable value object).
// Category holds the short keyword code ("bm"), not the display name.
type Document struct {
	id        string
	author    string
	title     string
	text      string
	category  string
	embedding []float32
}

// New validates and creates a Document.
// ID: non-empty, no whitespace, max 256 chars. Text and category are required.
func New(id, author, title, text, category string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if strings.ContainsFunc(id, unicode.IsSpace) {
		return Document{}, fmt.Errorf("document ID %q must not contain whitespace", id)
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, fmt.Errorf("review text is required")
	}
	if len(text) > MaxTextSize {
		return Document{}, fmt.Errorf("review text too large (max %d bytes)", MaxTextSize)
	}
	if category == "" {
		return Document{}, fmt.Errorf("category is required")
	}

	return Document{id: id, author: author, title: title, text: text, category: category}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, author, title, text, category string, embedding []float32) Document {
	return Document{
		id: id, author: author, title: title, text: text,
		category: category, embedding: embedding,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Author returns the reviewed book's author.
func (d *Document) Author() string { return d.author }

// Title returns the reviewed book's title.
func (d *Document) Title() string { return d.title }

// Text returns the review text.
func (d *Document) Text() string { return d.text }

// Category returns the category keyword code.
func (d *Document) Category() string { return d.category }

// Embedding returns the embedding vector, nil if not vectorized.
func (d *Document) Embedding() []float32 { return d.embedding }

// EmbeddingInput is the text that gets vectorized at ingestion: author, title and review.
func (d *Document) EmbeddingInput() string {
	return d.author + " " + d.title + " " + d.text
}

// WithEmbedding returns a copy with the given vector set.
func (d *Document) WithEmbedding(v []float32) Document {
	c := *d
	c.embedding = v
	return c
}

// IDs returns document ids in order.
func IDs(docs []Document) []string {
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].id
	}
	return ids
}
