// Package generate dispatches prompts to chat-completion backends by model provider.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/model"
	"github.com/kailas-cloud/bookclub/internal/logger"
)

// Backend is one chat-completion provider. model is the provider-local name ("gpt-4o-mini").
type Backend interface {
	Generate(ctx context.Context, model, prompt string) (string, domain.TokenUsage, error)
}

// Result is one generation.
type Result struct {
	Text    string
	Usage   domain.TokenUsage
	Latency time.Duration
}

// Generator routes model ids to backends. The table is fixed at construction.
type Generator struct {
	backends map[model.Provider]Backend
}

// New validates the provider table and that every model in required resolves to a backend.
func New(backends map[model.Provider]Backend, required ...string) (*Generator, error) {
	table := make(map[model.Provider]Backend, len(backends))
	for p, b := range backends {
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidRequest, p)
		}
		if b == nil {
			return nil, fmt.Errorf("%w: nil backend for provider %q", domain.ErrInvalidRequest, p)
		}
		table[p] = b
	}

	g := &Generator{backends: table}
	for _, id := range required {
		if _, _, err := g.Resolve(id); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Resolve parses a model id and finds its backend. Failures are domain.UnknownModelError.
func (g *Generator) Resolve(modelID string) (model.ID, Backend, error) {
	id, err := model.Parse(modelID)
	if err != nil {
		return model.ID{}, nil, err
	}
	b, ok := g.backends[id.Provider]
	if !ok {
		return model.ID{}, nil, domain.NewUnknownModel(modelID, fmt.Sprintf("provider %q is not configured", id.Provider))
	}
	return id, b, nil
}

// Generate runs prompt on modelID. The tier is steered through the prompt text only;
// no max-token limit is sent since not every backend honors one.
func (g *Generator) Generate(ctx context.Context, prompt, modelID string, tier answer.Tier) (Result, error) {
	id, backend, err := g.Resolve(modelID)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	text, usage, err := backend.Generate(ctx, id.Name, prompt)
	latency := time.Since(start)
	if err != nil {
		if !errors.Is(err, domain.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}
		return Result{}, fmt.Errorf("%s: %w", id, err)
	}

	logger.FromContext(ctx).Debug("generation completed",
		zap.String("model", id.String()),
		zap.String("tier", string(tier)),
		zap.Duration("latency", latency),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
	)
	return Result{Text: text, Usage: usage, Latency: latency}, nil
}
