// Package prompt renders the answer prompt sent to the generation model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/category"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
)

const template = `You're an experienced book reviewer who is reading all Amazon bestsellers and helping readers to get insights about books in %s category. Answer the QUESTION based on the CONTEXT from our knowledge database.
Use only the facts from the CONTEXT when answering the QUESTION.
%s

QUESTION: %s

CONTEXT: 
%s`

// Directive maps a word budget to the length instruction embedded in the prompt.
func Directive(words int) string {
	switch {
	case words <= 200:
		return fmt.Sprintf("Responses should be brief and concise with minimal narration. "+
			"One paragraph, no more than three sentences, no more than %d words.", words)
	case words <= 500:
		return fmt.Sprintf("Responses should be with minimal narration. "+
			"Two paragraphs, no more than three sentences each, no more than %d words.", words)
	default:
		return fmt.Sprintf("Responses should be thorough and well structured, no more than %d words.", words)
	}
}

// Context renders reviews as blank-line separated blocks, in order.
func Context(docs []document.Document) string {
	blocks := make([]string, len(docs))
	for i := range docs {
		d := &docs[i]
		blocks[i] = "\nbook category: " + category.NameOf(d.Category()) +
			"\nauthor: " + d.Author() +
			"\ntitle: " + d.Title() +
			"\nreview: " + d.Text()
	}
	return strings.Join(blocks, "\n\n")
}

// Build renders the full prompt. Identical inputs always yield the identical prompt.
func Build(question, categoryName string, docs []document.Document, tier answer.Tier) string {
	p := fmt.Sprintf(template, categoryName, Directive(tier.WordBudget()), question, Context(docs))
	return strings.TrimSpace(p)
}
