// Package judge grades answers with a fixed LLM judge and tolerant output parsing.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/logger"
	"github.com/kailas-cloud/bookclub/internal/metrics"
	"github.com/kailas-cloud/bookclub/internal/usecase/generate"
)

const promptTemplate = `You are an expert evaluator for a Retrieval-Augmented Generation (RAG) system.
    Your task is to analyze the relevance of the generated answer to the given question.
    Based on the relevance of the generated answer, you will classify it
    as "NON_RELEVANT", "PARTLY_RELEVANT", or "RELEVANT".

    Here is the data for evaluation:

    Question: %s
    Generated Answer: %s

    Please analyze the content and context of the generated answer in relation to the question
    and provide your evaluation in parsable JSON without using code blocks:

    {
      "Relevance": "NON_RELEVANT" | "PARTLY_RELEVANT" | "RELEVANT",
      "Explanation": "[Provide a brief explanation for your evaluation]"
    }`

// labelToken matches whole label tokens. Longer labels come first and \b treats "_" as a
// word character, so "RELEVANT" never matches inside "NON_RELEVANT" or "PARTLY_RELEVANT".
var labelToken = regexp.MustCompile(`\b(PARTLY_RELEVANT|NON_RELEVANT|RELEVANT)\b`)

// Generator is the generation contract the judge needs.
type Generator interface {
	Generate(ctx context.Context, prompt, modelID string, tier answer.Tier) (generate.Result, error)
}

// Evaluator grades answers with one process-wide judge model.
type Evaluator struct {
	gen   Generator
	model string
}

// New creates an evaluator using judgeModel for every request.
func New(gen Generator, judgeModel string) *Evaluator {
	return &Evaluator{gen: gen, model: judgeModel}
}

// Model returns the judge model id.
func (e *Evaluator) Model() string { return e.model }

// Prompt renders the judge prompt.
func Prompt(question, answerText string) string {
	return fmt.Sprintf(promptTemplate, question, answerText)
}

// Evaluate asks the judge to grade answerText. Malformed judge output never fails the call;
// only a generation failure does.
func (e *Evaluator) Evaluate(ctx context.Context, question, answerText string) (answer.Verdict, domain.TokenUsage, error) {
	res, err := e.gen.Generate(ctx, Prompt(question, answerText), e.model, answer.DefaultTier)
	if err != nil {
		return answer.Verdict{}, domain.TokenUsage{}, fmt.Errorf("judge %s: %w", e.model, err)
	}

	v := Parse(res.Text)
	metrics.JudgeParseTotal.WithLabelValues(string(v.Outcome)).Inc()
	if v.Outcome != answer.Structured {
		logger.FromContext(ctx).Warn("judge output not structured",
			zap.String("outcome", string(v.Outcome)),
			zap.String("label", string(v.Label)),
			zap.String("raw", res.Text),
		)
	}
	return v, res.Usage, nil
}

// Parse turns raw judge output into a verdict: fenced or bare JSON first, then label tokens,
// then UNKNOWN.
func Parse(raw string) answer.Verdict {
	text := stripFence(raw)

	var out struct {
		Relevance   string `json:"Relevance"`
		Explanation string `json:"Explanation"`
	}
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		if l := answer.Label(out.Relevance); l.IsGraded() {
			return answer.Verdict{Label: l, Explanation: out.Explanation, Outcome: answer.Structured}
		}
	}

	if l, ok := findLabel(raw); ok {
		return answer.Verdict{Label: l, Explanation: raw, Outcome: answer.HeuristicMatch}
	}
	return answer.Verdict{
		Label:       answer.Unknown,
		Explanation: "Failed to parse evaluation. " + raw,
		Outcome:     answer.Unparseable,
	}
}

// findLabel resolves every label token found in priority order RELEVANT, PARTLY_RELEVANT, NON_RELEVANT.
func findLabel(text string) (answer.Label, bool) {
	found := make(map[answer.Label]bool)
	for _, m := range labelToken.FindAllString(text, -1) {
		found[answer.Label(m)] = true
	}
	for _, l := range []answer.Label{answer.Relevant, answer.PartlyRelevant, answer.NonRelevant} {
		if found[l] {
			return l, true
		}
	}
	return "", false
}

// stripFence removes a surrounding ``` block together with its info string (json, JSON, jsonc...).
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		if !strings.ContainsAny(s[:i], "{[") {
			s = s[i:]
		}
	} else if i := strings.IndexAny(s, "{["); i > 0 {
		s = s[i:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
