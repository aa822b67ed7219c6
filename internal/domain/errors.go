package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRetrievalBackend signals an unreachable search backend or a malformed search response.
	ErrRetrievalBackend = errors.New("retrieval backend error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrUnknownModel signals a model id no generation backend can serve.
	ErrUnknownModel = errors.New("unknown model")
	// ErrGenerationFailed signals a chat-completion backend failure.
	ErrGenerationFailed = errors.New("generation backend error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// UnknownModelError wraps ErrUnknownModel with the offending model id.
type UnknownModelError struct {
	ModelID string
	Reason  string
}

func (e *UnknownModelError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %q", ErrUnknownModel.Error(), e.ModelID)
	}
	return fmt.Sprintf("%s: %q: %s", ErrUnknownModel.Error(), e.ModelID, e.Reason)
}

func (e *UnknownModelError) Unwrap() error { return ErrUnknownModel }

// NewUnknownModel creates an unknown model error.
func NewUnknownModel(modelID, reason string) error {
	return &UnknownModelError{ModelID: modelID, Reason: reason}
}
