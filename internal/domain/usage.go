package domain

// TokenUsage is the token accounting reported by a generation backend.
// Total is always Prompt + Completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewTokenUsage builds a usage value, clamping negatives to zero.
func NewTokenUsage(prompt, completion int) TokenUsage {
	prompt = max(prompt, 0)
	completion = max(completion, 0)
	return TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// IsZero reports whether no tokens were consumed.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0
}
