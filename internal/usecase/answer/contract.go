package answer

import (
	"context"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	"github.com/kailas-cloud/bookclub/internal/domain/model"
	"github.com/kailas-cloud/bookclub/internal/usecase/generate"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

// Searcher retrieves candidate reviews.
type Searcher interface {
	Search(ctx context.Context, q ucsearch.Query) ([]document.Document, error)
}

// Generator resolves model ids and produces answers.
type Generator interface {
	Resolve(modelID string) (model.ID, generate.Backend, error)
	Generate(ctx context.Context, prompt, modelID string, tier answer.Tier) (generate.Result, error)
}

// Evaluator grades an answer against its question.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answerText string) (answer.Verdict, domain.TokenUsage, error)
}

// Pricer estimates generation cost.
type Pricer interface {
	Cost(modelID string, usage domain.TokenUsage) float64
}
