package bookclub

import "time"

// Retrieval modes.
const (
	ModeText   = "text"
	ModeVector = "vector"
	ModeHybrid = "hybrid"
)

// Answer length tiers.
const (
	LengthShort  = "S"
	LengthMedium = "M"
	LengthLong   = "L"
)

// Relevance labels assigned by the judge model.
const (
	Relevant       = "RELEVANT"
	PartlyRelevant = "PARTLY_RELEVANT"
	NonRelevant    = "NON_RELEVANT"
	Unknown        = "UNKNOWN"
)

// AnswerRequest is one question. Empty fields take server defaults.
type AnswerRequest struct {
	Question string `json:"question"`
	Category string `json:"category,omitempty"` // display name or code
	Author   string `json:"author,omitempty"`
	Model    string `json:"model,omitempty"` // provider/name
	Mode     string `json:"mode,omitempty"`
	Length   string `json:"length,omitempty"`
}

// Answer is the graded answer record.
type Answer struct {
	ID                   string    `json:"id"`
	Answer               string    `json:"answer"`
	ResponseTime         float64   `json:"response_time"` // seconds
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

	// EmbeddingTokens is the query-embedding usage reported in X-Embedding-Tokens.
	// -1 when the server did not embed the query.
	EmbeddingTokens int `json:"-"`
}

// Category pairs a display name with its keyword code.
type Category struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Models is the server's model catalog.
type Models struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
	Judge   string   `json:"judge"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}
