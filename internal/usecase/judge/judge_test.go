package judge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/usecase/generate"
)

type stubGenerator struct {
	text string
	err  error

	gotPrompt string
	gotModel  string
}

func (s *stubGenerator) Generate(_ context.Context, prompt, modelID string, _ answer.Tier) (generate.Result, error) {
	s.gotPrompt = prompt
	s.gotModel = modelID
	if s.err != nil {
		return generate.Result{}, s.err
	}
	return generate.Result{Text: s.text, Usage: domain.NewTokenUsage(300, 40)}, nil
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		label   answer.Label
		expl    string
		outcome answer.Outcome
	}{
		{
			name:    "plain json",
			raw:     `{"Relevance":"RELEVANT","Explanation":"ok"}`,
			label:   answer.Relevant,
			expl:    "ok",
			outcome: answer.Structured,
		},
		{
			name:    "fenced json",
			raw:     "```json\n{\"Relevance\":\"PARTLY_RELEVANT\",\"Explanation\":\"partially answers\"}\n```",
			label:   answer.PartlyRelevant,
			expl:    "partially answers",
			outcome: answer.Structured,
		},
		{
			name:    "bare fence",
			raw:     "```\n{\"Relevance\":\"NON_RELEVANT\",\"Explanation\":\"off topic\"}\n```",
			label:   answer.NonRelevant,
			expl:    "off topic",
			outcome: answer.Structured,
		},
		{
			name:    "uppercase info string",
			raw:     "```JSON\n{\"Relevance\":\"RELEVANT\",\"Explanation\":\"ok\"}\n```",
			label:   answer.Relevant,
			expl:    "ok",
			outcome: answer.Structured,
		},
		{
			name:    "jsonc info string",
			raw:     "```jsonc\n{\"Relevance\":\"NON_RELEVANT\",\"Explanation\":\"no\"}\n```",
			label:   answer.NonRelevant,
			expl:    "no",
			outcome: answer.Structured,
		},
		{
			name:    "crlf fence",
			raw:     "```json\r\n{\"Relevance\":\"RELEVANT\",\"Explanation\":\"ok\"}\r\n```",
			label:   answer.Relevant,
			expl:    "ok",
			outcome: answer.Structured,
		},
		{
			name:    "single line fence",
			raw:     "```json {\"Relevance\":\"RELEVANT\",\"Explanation\":\"ok\"}```",
			label:   answer.Relevant,
			expl:    "ok",
			outcome: answer.Structured,
		},
		{
			name:    "heuristic keeps raw fenced text",
			raw:     "```\nverdict: NON_RELEVANT\n```",
			label:   answer.NonRelevant,
			expl:    "```\nverdict: NON_RELEVANT\n```",
			outcome: answer.HeuristicMatch,
		},
		{
			name:    "heuristic non relevant",
			raw:     "I think this is NON_RELEVANT because it talks about cooking.",
			label:   answer.NonRelevant,
			expl:    "I think this is NON_RELEVANT because it talks about cooking.",
			outcome: answer.HeuristicMatch,
		},
		{
			name:    "heuristic partly is not read as relevant",
			raw:     "Relevance: PARTLY_RELEVANT, explanation missing",
			label:   answer.PartlyRelevant,
			outcome: answer.HeuristicMatch,
		},
		{
			name:    "heuristic priority",
			raw:     "Either NON_RELEVANT or RELEVANT, hard to say",
			label:   answer.Relevant,
			outcome: answer.HeuristicMatch,
		},
		{
			name:    "unknown label in json falls back to tokens",
			raw:     `{"Relevance":"MOSTLY_RELEVANT","Explanation":"close to NON_RELEVANT"}`,
			label:   answer.NonRelevant,
			outcome: answer.HeuristicMatch,
		},
		{
			name:    "lowercase is not a label",
			raw:     "the answer is relevant",
			label:   answer.Unknown,
			expl:    "Failed to parse evaluation. the answer is relevant",
			outcome: answer.Unparseable,
		},
		{
			name:    "empty",
			raw:     "",
			label:   answer.Unknown,
			expl:    "Failed to parse evaluation. ",
			outcome: answer.Unparseable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := Parse(tc.raw)
			assert.Equal(t, tc.label, v.Label)
			assert.Equal(t, tc.outcome, v.Outcome)
			if tc.expl != "" {
				assert.Equal(t, tc.expl, v.Explanation)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt("Who wrote Originals?", "Adam Grant.")

	assert.True(t, strings.HasPrefix(p, "You are an expert evaluator"))
	assert.Contains(t, p, "    Question: Who wrote Originals?\n")
	assert.Contains(t, p, "    Generated Answer: Adam Grant.\n")
	assert.Contains(t, p, `"Relevance": "NON_RELEVANT" | "PARTLY_RELEVANT" | "RELEVANT"`)
	assert.True(t, strings.HasSuffix(p, "}"))
}

func TestEvaluate_UsesJudgeModel(t *testing.T) {
	gen := &stubGenerator{text: `{"Relevance":"RELEVANT","Explanation":"good"}`}
	e := New(gen, "openai/gpt-4o-mini")

	v, usage, err := e.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4o-mini", gen.gotModel)
	assert.Equal(t, "openai/gpt-4o-mini", e.Model())
	assert.Equal(t, answer.Relevant, v.Label)
	assert.Equal(t, 340, usage.TotalTokens)
	assert.Contains(t, gen.gotPrompt, "Question: q")
}

func TestEvaluate_DegradedOutputIsNotAnError(t *testing.T) {
	e := New(&stubGenerator{text: "no idea"}, "openai/gpt-4o-mini")

	v, _, err := e.Evaluate(context.Background(), "q", "a")
	require.NoError(t, err)
	assert.Equal(t, answer.Unknown, v.Label)
	assert.Equal(t, answer.Unparseable, v.Outcome)
}

func TestEvaluate_GenerationError(t *testing.T) {
	e := New(&stubGenerator{err: domain.ErrGenerationFailed}, "openai/gpt-4o-mini")

	_, _, err := e.Evaluate(context.Background(), "q", "a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGenerationFailed))
}
