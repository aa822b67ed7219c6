// Package model identifies generation models as "<provider>/<model-name>".
package model

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/bookclub/internal/domain"
)

// Provider is the tagged variant selecting a chat-completion backend.
type Provider string

// Supported providers.
const (
	// Ollama is the self-hosted model runner.
	Ollama Provider = "ollama"
	// OpenAI is the hosted OpenAI API.
	OpenAI Provider = "openai"
)

// Providers lists every known provider.
func Providers() []Provider {
	return []Provider{Ollama, OpenAI}
}

// IsValid checks if the provider is one of the supported values.
func (p Provider) IsValid() bool {
	return p == Ollama || p == OpenAI
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown provider %q", s)
	}
	return p, nil
}

// ID is a parsed model identifier.
type ID struct {
	Provider Provider
	Name     string
}

// Parse splits "provider/model-name". The model name may itself contain slashes or colons
// ("ollama/qwen2.5:3b"); only the first segment selects the provider.
// Failures are domain.UnknownModelError.
func Parse(s string) (ID, error) {
	prefix, name, ok := strings.Cut(s, "/")
	if !ok || prefix == "" || name == "" {
		return ID{}, domain.NewUnknownModel(s, "expected <provider>/<model>")
	}
	p := Provider(prefix)
	if !p.IsValid() {
		return ID{}, domain.NewUnknownModel(s, fmt.Sprintf("unknown provider %q", prefix))
	}
	return ID{Provider: p, Name: name}, nil
}

// String renders the canonical "provider/model" form.
func (id ID) String() string {
	return string(id.Provider) + "/" + id.Name
}

// DefaultModels is the advertised model list when none is configured.
func DefaultModels() []string {
	return []string{
		"ollama/phi3.5",
		"ollama/phi3",
		"ollama/qwen2.5:3b",
		"ollama/llama3.2:1b",
		"ollama/llama3.2:3b",
		"openai/gpt-3.5-turbo",
		"openai/gpt-4o",
		"openai/gpt-4o-mini",
	}
}

// DefaultJudge is the relevance judge model.
const DefaultJudge = "openai/gpt-4o-mini"
