package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/metrics"
)

// OllamaBaseURL is the in-cluster Ollama OpenAI-compatible endpoint.
const OllamaBaseURL = "http://ollama:11434/v1/"

// ChatBackend runs single-turn chat completions against one provider.
type ChatBackend struct {
	client   *openai.Client
	provider string
	logger   *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	Provider string // metrics label: "ollama", "openai"
	APIKey   string
	BaseURL  string
	Logger   *zap.Logger
}

// NewChatBackend creates a chat backend.
func NewChatBackend(cfg ChatConfig) *ChatBackend {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatBackend{
		client:   newClient(cfg.APIKey, cfg.BaseURL),
		provider: cfg.Provider,
		logger:   logger,
	}
}

// Generate sends prompt as the only user message and returns the reply with token usage.
// Failures wrap domain.ErrGenerationFailed.
func (b *ChatBackend) Generate(ctx context.Context, model, prompt string) (string, domain.TokenUsage, error) {
	start := time.Now()
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(b.provider, model, "error").Inc()
		return "", domain.TokenUsage{}, apiError("chat", err, domain.ErrGenerationFailed)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(b.provider, model, "error").Inc()
		return "", domain.TokenUsage{}, fmt.Errorf("chat response has no choices: %w", domain.ErrGenerationFailed)
	}

	usage := domain.NewTokenUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if resp.Usage.TotalTokens != usage.TotalTokens {
		b.logger.Debug("backend total differs from prompt+completion",
			zap.String("model", model),
			zap.Int("reported", resp.Usage.TotalTokens),
			zap.Int("computed", usage.TotalTokens),
		)
	}

	metrics.LLMRequestsTotal.WithLabelValues(b.provider, model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(b.provider, model).Observe(duration.Seconds())
	metrics.LLMTokensTotal.WithLabelValues(b.provider, model, "prompt").Add(float64(usage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues(b.provider, model, "completion").Add(float64(usage.CompletionTokens))

	return strings.TrimSpace(resp.Choices[0].Message.Content), usage, nil
}

// HealthCheck lists models on the provider.
func (b *ChatBackend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s list models: %w", b.provider, err)
	}
	return nil
}
