package db

// TagFilter is an exact keyword match on a TAG field: @field:{value}.
type TagFilter struct {
	Field string
	Value string
}

// FieldWeight boosts matches in one TEXT field.
type FieldWeight struct {
	Field  string
	Weight float64
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	EFRuntime    int // HNSW candidate pool; 0 leaves the index default
	Tags         []TagFilter
	ReturnFields []string
}

// TextQuery is the input for weighted multi-field full-text search.
// Terms are OR-ed inside each field and the field clauses are OR-ed together.
type TextQuery struct {
	IndexName    string
	Terms        []string
	Fields       []FieldWeight
	Tags         []TagFilter
	TopK         int
	ReturnFields []string
}

// ListQuery pages through documents matching tag filters without scoring.
type ListQuery struct {
	IndexName    string
	Tags         []TagFilter
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
