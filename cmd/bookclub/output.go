package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/category"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
)

// snippetRunes bounds the review text shown per hit.
const snippetRunes = 160

// hitView is a retrieved review as printed by the search command.
type hitView struct {
	ID       string `json:"id"`
	Author   string `json:"author"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

func toHitViews(docs []document.Document) []hitView {
	out := make([]hitView, 0, len(docs))
	for i := range docs {
		out = append(out, hitView{
			ID:       docs[i].ID(),
			Author:   docs[i].Author(),
			Title:    docs[i].Title(),
			Category: category.NameOf(docs[i].Category()),
			Text:     docs[i].Text(),
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func printHits(w io.Writer, hits []hitView) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	for i, h := range hits {
		fmt.Fprintf(w, "[%d] %s by %s (%s)\n", i+1, h.Title, h.Author, h.ID)
		fmt.Fprintf(w, "    %s\n\n", snippet(h.Text, snippetRunes))
	}
}

func printAnswer(w io.Writer, rec answer.Record) {
	fmt.Fprintln(w, rec.Answer)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "relevance: %s (%s)\n", rec.Verdict.Label, rec.Verdict.Outcome)
	if rec.Verdict.Explanation != "" {
		fmt.Fprintf(w, "  %s\n", rec.Verdict.Explanation)
	}
	fmt.Fprintf(w, "model:     %s\n", rec.ModelUsed)
	fmt.Fprintf(w, "category:  %s, mode: %s\n", rec.Category, rec.Mode)
	fmt.Fprintf(w, "time:      %.2fs\n", rec.ResponseSeconds())
	fmt.Fprintf(w, "tokens:    %d (prompt %d, completion %d), judge %d\n",
		rec.Usage.TotalTokens, rec.Usage.PromptTokens, rec.Usage.CompletionTokens, rec.EvalUsage.TotalTokens)
	fmt.Fprintf(w, "cost:      $%.6f\n", rec.Cost)
}

// snippet collapses whitespace and cuts s to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
