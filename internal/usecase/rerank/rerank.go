// Package rerank narrows retrieval hits down to the prompt context.
package rerank

import "github.com/kailas-cloud/bookclub/internal/domain/document"

// ContextNum is the context budget: at most this many reviews reach the prompt.
const ContextNum = 3

// Rerank keeps reviews whose author equals author exactly (when author is non-empty)
// and truncates to the first ContextNum, preserving order.
// The input slice is not modified.
func Rerank(docs []document.Document, author string) []document.Document {
	out := make([]document.Document, 0, min(len(docs), ContextNum))
	for i := range docs {
		if len(out) == ContextNum {
			break
		}
		if author != "" && docs[i].Author() != author {
			continue
		}
		out = append(out, docs[i])
	}
	return out
}
