package chi

import (
	"time"

	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/category"
	answeruc "github.com/kailas-cloud/bookclub/internal/usecase/answer"
	"github.com/kailas-cloud/bookclub/internal/usecase/catalog"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidation       = "validation_failed"
	codeUnknownModel     = "unknown_model"
	codeNotFound         = "not_found"
	codeUnauthorized     = "unauthorized"
	codeRateLimited      = "rate_limited"
	codeEmbeddingBackend = "embedding_provider_error"
	codeRetrieval        = "retrieval_backend_error"
	codeGeneration       = "generation_backend_error"
	codeInternal         = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnswerRequest is the body of POST /api/v1/answer.
type AnswerRequest struct {
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
	Author   string `json:"author,omitempty"`
	Model    string `json:"model,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Length   string `json:"length,omitempty"`
}

func (r AnswerRequest) toUsecase() answeruc.Request {
	return answeruc.Request{
		Question: r.Question,
		Category: r.Category,
		Author:   r.Author,
		Model:    r.Model,
		Mode:     r.Mode,
		Length:   r.Length,
	}
}

// AnswerResponse is the answer record as served over HTTP.
type AnswerResponse struct {
	ID                   string    `json:"id"`
	Answer               string    `json:"answer"`
	ResponseTime         float64   `json:"response_time"`
	Relevance            string    `json:"relevance"`
	RelevanceExplanation string    `json:"relevance_explanation"`
	RelevanceOutcome     string    `json:"relevance_outcome"`
	ModelUsed            string    `json:"model_used"`
	PromptTokens         int       `json:"prompt_tokens"`
	CompletionTokens     int       `json:"completion_tokens"`
	TotalTokens          int       `json:"total_tokens"`
	EvalPromptTokens     int       `json:"eval_prompt_tokens"`
	EvalCompletionTokens int       `json:"eval_completion_tokens"`
	EvalTotalTokens      int       `json:"eval_total_tokens"`
	OpenAICost           float64   `json:"openai_cost"`
	Category             string    `json:"category"`
	Mode                 string    `json:"mode"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewAnswerResponse flattens a record into its wire form. Shared with the CLI --json output.
func NewAnswerResponse(rec answer.Record) AnswerResponse {
	return AnswerResponse{
		ID:                   rec.ID,
		Answer:               rec.Answer,
		ResponseTime:         rec.ResponseSeconds(),
		Relevance:            string(rec.Verdict.Label),
		RelevanceExplanation: rec.Verdict.Explanation,
		RelevanceOutcome:     string(rec.Verdict.Outcome),
		ModelUsed:            rec.ModelUsed,
		PromptTokens:         rec.Usage.PromptTokens,
		CompletionTokens:     rec.Usage.CompletionTokens,
		TotalTokens:          rec.Usage.TotalTokens,
		EvalPromptTokens:     rec.EvalUsage.PromptTokens,
		EvalCompletionTokens: rec.EvalUsage.CompletionTokens,
		EvalTotalTokens:      rec.EvalUsage.TotalTokens,
		OpenAICost:           rec.Cost,
		Category:             rec.Category,
		Mode:                 string(rec.Mode),
		CreatedAt:            rec.CreatedAt,
	}
}

// CategoriesResponse is the body of GET /api/v1/categories.
type CategoriesResponse struct {
	Categories []category.Category `json:"categories"`
}

// AuthorsResponse is the body of GET /api/v1/categories/{category}/authors.
type AuthorsResponse struct {
	Category string   `json:"category"`
	Authors  []string `json:"authors"`
	Count    int      `json:"count"`
}

// ModelsResponse is the body of GET /api/v1/models.
type ModelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
	Judge   string   `json:"judge"`
}

func modelsToResponse(m catalog.Models) ModelsResponse {
	models := m.Available
	if models == nil {
		models = []string{}
	}
	return ModelsResponse{Models: models, Default: m.Default, Judge: m.Judge}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
