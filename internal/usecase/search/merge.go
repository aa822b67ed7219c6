package search

import "github.com/kailas-cloud/bookclub/internal/domain/document"

// mergeByID keeps every vector hit in order, then appends text hits whose id is not present yet.
// No re-scoring: vector relevance stays primary and text only adds recall.
func mergeByID(vector, text []document.Document) []document.Document {
	out := make([]document.Document, 0, len(vector)+len(text))
	seen := make(map[string]struct{}, len(vector)+len(text))

	for i := range vector {
		if _, dup := seen[vector[i].ID()]; dup {
			continue
		}
		seen[vector[i].ID()] = struct{}{}
		out = append(out, vector[i])
	}
	for i := range text {
		if _, dup := seen[text[i].ID()]; dup {
			continue
		}
		seen[text[i].ID()] = struct{}{}
		out = append(out, text[i])
	}
	return out
}
