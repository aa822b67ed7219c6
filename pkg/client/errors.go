package bookclub

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/bookclub/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrUnknownModel           = domain.ErrUnknownModel
	ErrNotFound               = domain.ErrNotFound
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrRetrievalBackend       = domain.ErrRetrievalBackend
	ErrGenerationFailed       = domain.ErrGenerationFailed

	// ErrUnauthorized means the API key is missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")
)

// codeSentinels maps server error codes to sentinels.
var codeSentinels = map[string]error{
	"bad_request":              ErrInvalidRequest,
	"validation_failed":        ErrInvalidRequest,
	"unknown_model":            ErrUnknownModel,
	"not_found":                ErrNotFound,
	"unauthorized":             ErrUnauthorized,
	"rate_limited":             ErrRateLimited,
	"embedding_provider_error": ErrEmbeddingProviderError,
	"retrieval_backend_error":  ErrRetrievalBackend,
	"generation_backend_error": ErrGenerationFailed,
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("bookclub: %d %s: %s (request %s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("bookclub: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap returns the sentinel for the error code, if any.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
