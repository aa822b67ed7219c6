package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	"github.com/kailas-cloud/bookclub/internal/domain/model"
	"github.com/kailas-cloud/bookclub/internal/domain/search/mode"
	"github.com/kailas-cloud/bookclub/internal/usecase/cost"
	"github.com/kailas-cloud/bookclub/internal/usecase/generate"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	docs []document.Document
	err  error
	got  ucsearch.Query
	hits int
}

func (m *mockSearcher) Search(_ context.Context, q ucsearch.Query) ([]document.Document, error) {
	m.hits++
	m.got = q
	return m.docs, m.err
}

type mockGenerator struct {
	result    generate.Result
	err       error
	calls     int
	gotPrompt string
	gotModel  string
	gotTier   answer.Tier
}

func (m *mockGenerator) Resolve(modelID string) (model.ID, generate.Backend, error) {
	id, err := model.Parse(modelID)
	if err != nil {
		return model.ID{}, nil, err
	}
	return id, nil, nil
}

func (m *mockGenerator) Generate(_ context.Context, prompt, modelID string, tier answer.Tier) (generate.Result, error) {
	m.calls++
	m.gotPrompt = prompt
	m.gotModel = modelID
	m.gotTier = tier
	return m.result, m.err
}

type mockEvaluator struct {
	verdict answer.Verdict
	usage   domain.TokenUsage
	err     error
	calls   int
	gotQ    string
	gotA    string
}

func (m *mockEvaluator) Evaluate(_ context.Context, q, a string) (answer.Verdict, domain.TokenUsage, error) {
	m.calls++
	m.gotQ, m.gotA = q, a
	return m.verdict, m.usage, m.err
}

type fixture struct {
	search *mockSearcher
	gen    *mockGenerator
	judge  *mockEvaluator
	svc    *Service
}

func newFixture(docs ...document.Document) *fixture {
	f := &fixture{
		search: &mockSearcher{docs: docs},
		gen: &mockGenerator{result: generate.Result{
			Text:    "Adam Grant wrote Think Again and Originals.",
			Usage:   domain.NewTokenUsage(120, 80),
			Latency: 1500 * time.Millisecond,
		}},
		judge: &mockEvaluator{
			verdict: answer.Verdict{Label: answer.Relevant, Explanation: "ok", Outcome: answer.Structured},
			usage:   domain.NewTokenUsage(300, 30),
		},
	}
	f.svc = New(f.search, f.gen, f.judge, cost.New(nil), "ollama/phi3.5")
	f.svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	f.svc.newID = func() string { return "rec-1" }
	return f
}

func review(id, author string) document.Document {
	return document.Reconstruct(id, author, "Title "+id, "Review "+id, "bm", nil)
}

// --- Tests ---

func TestAnswer_FullPipeline(t *testing.T) {
	f := newFixture(
		review("id1", "Adam Grant"),
		review("id2", "Morgan Housel"),
		review("id3", "Adam Grant"),
	)

	rec, err := f.svc.Answer(context.Background(), Request{
		Question: "What books were written by Adam Grant?",
		Category: "Business & Money",
		Author:   "Adam Grant",
		Model:    "openai/gpt-4o-mini",
		Mode:     "Hybrid",
		Length:   "S",
	})
	require.NoError(t, err)

	assert.Equal(t, "bm", f.search.got.Category)
	assert.Equal(t, mode.Hybrid, f.search.got.Mode)
	assert.Equal(t, "Adam Grant", f.search.got.AuthorHint)

	assert.Contains(t, f.gen.gotPrompt, "author: Adam Grant\ntitle: Title id1")
	assert.Contains(t, f.gen.gotPrompt, "title: Title id3")
	assert.NotContains(t, f.gen.gotPrompt, "Morgan Housel")
	assert.Contains(t, f.gen.gotPrompt, "books in Business & Money category")
	assert.Equal(t, "openai/gpt-4o-mini", f.gen.gotModel)
	assert.Equal(t, answer.Short, f.gen.gotTier)

	assert.Equal(t, "What books were written by Adam Grant?", f.judge.gotQ)
	assert.Equal(t, "Adam Grant wrote Think Again and Originals.", f.judge.gotA)

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "Adam Grant wrote Think Again and Originals.", rec.Answer)
	assert.Equal(t, 1500*time.Millisecond, rec.ResponseTime)
	assert.Equal(t, answer.Relevant, rec.Verdict.Label)
	assert.Equal(t, "openai/gpt-4o-mini", rec.ModelUsed)
	assert.Equal(t, 200, rec.Usage.TotalTokens)
	assert.Equal(t, 330, rec.EvalUsage.TotalTokens)
	assert.InDelta(t, 0.0084, rec.Cost, 1e-12)
	assert.Equal(t, "Business & Money", rec.Category)
	assert.Equal(t, mode.Hybrid, rec.Mode)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), rec.CreatedAt)
}

func TestAnswer_Defaults(t *testing.T) {
	f := newFixture(review("id1", "Adam Grant"))

	rec, err := f.svc.Answer(context.Background(), Request{Question: "q", Category: "unknown"})
	require.NoError(t, err)

	assert.Equal(t, "bm", f.search.got.Category)
	assert.Equal(t, mode.Text, f.search.got.Mode)
	assert.Equal(t, "ollama/phi3.5", f.gen.gotModel)
	assert.Equal(t, answer.Short, f.gen.gotTier)
	assert.Zero(t, rec.Cost, "self-hosted models are unpriced")
}

func TestAnswer_EmptyContextShortCircuits(t *testing.T) {
	f := newFixture(review("id1", "Adam Grant"), review("id2", "Morgan Housel"))

	rec, err := f.svc.Answer(context.Background(), Request{
		Question: "q",
		Category: "bm",
		Author:   "Nonexistent Person",
		Model:    "openai/gpt-4o",
	})
	require.NoError(t, err)

	assert.Zero(t, f.gen.calls, "generator must not run")
	assert.Zero(t, f.judge.calls, "judge must not run")

	assert.Equal(t, answer.NonRelevant, rec.Verdict.Label)
	assert.Equal(t, "No relevant results found for this query & author (Nonexistent Person)", rec.Answer)
	assert.Contains(t, rec.Verdict.Explanation, "Nonexistent Person")
	assert.Zero(t, rec.ResponseTime)
	assert.True(t, rec.Usage.IsZero())
	assert.True(t, rec.EvalUsage.IsZero())
	assert.Zero(t, rec.Usage.TotalTokens)
	assert.Zero(t, rec.Cost)
	assert.Equal(t, "openai/gpt-4o", rec.ModelUsed)
	assert.Equal(t, "rec-1", rec.ID)
}

func TestAnswer_NoHitsWithoutAuthor(t *testing.T) {
	f := newFixture()

	rec, err := f.svc.Answer(context.Background(), Request{Question: "q"})
	require.NoError(t, err)
	assert.Zero(t, f.gen.calls)
	assert.Equal(t, answer.NonRelevant, rec.Verdict.Label)
}

func TestAnswer_ContextBudget(t *testing.T) {
	f := newFixture(review("a", "x"), review("b", "x"), review("c", "x"), review("d", "x"), review("e", "x"))

	_, err := f.svc.Answer(context.Background(), Request{Question: "q"})
	require.NoError(t, err)
	assert.Contains(t, f.gen.gotPrompt, "title: Title c")
	assert.NotContains(t, f.gen.gotPrompt, "title: Title d")
}

func TestAnswer_UnknownModelBeforeSearch(t *testing.T) {
	f := newFixture(review("id1", "Adam Grant"))

	_, err := f.svc.Answer(context.Background(), Request{Question: "q", Model: "mistral/7b"})
	require.Error(t, err)

	var ume *domain.UnknownModelError
	require.True(t, errors.As(err, &ume))
	assert.Equal(t, "mistral/7b", ume.ModelID)
	assert.Zero(t, f.search.hits, "search must not run for an unknown model")
}

func TestAnswer_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty question", Request{Question: "   "}},
		{"bad mode", Request{Question: "q", Mode: "fuzzy"}},
		{"bad length", Request{Question: "q", Length: "XL"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(review("id1", "a"))
			_, err := f.svc.Answer(context.Background(), tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
			assert.Zero(t, f.search.hits)
		})
	}
}

func TestAnswer_StageErrors(t *testing.T) {
	t.Run("search", func(t *testing.T) {
		f := newFixture()
		f.search.err = domain.ErrRetrievalBackend

		rec, err := f.svc.Answer(context.Background(), Request{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrRetrievalBackend)
		assert.ErrorContains(t, err, "search:")
		assert.Empty(t, rec.ID, "no partial record")
	})

	t.Run("embedding", func(t *testing.T) {
		f := newFixture()
		f.search.err = domain.ErrEmbeddingProviderError

		_, err := f.svc.Answer(context.Background(), Request{Question: "q", Mode: "vector"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingProviderError)
		assert.NotErrorIs(t, err, domain.ErrRetrievalBackend)
	})

	t.Run("generate", func(t *testing.T) {
		f := newFixture(review("id1", "a"))
		f.gen.err = domain.ErrGenerationFailed

		_, err := f.svc.Answer(context.Background(), Request{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
		assert.ErrorContains(t, err, "generate:")
		assert.Zero(t, f.judge.calls)
	})

	t.Run("evaluate", func(t *testing.T) {
		f := newFixture(review("id1", "a"))
		f.judge.err = domain.ErrGenerationFailed

		_, err := f.svc.Answer(context.Background(), Request{Question: "q"})
		assert.ErrorIs(t, err, domain.ErrGenerationFailed)
		assert.ErrorContains(t, err, "evaluate:")
	})
}
