package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/model"
)

type mockBackend struct {
	text  string
	usage domain.TokenUsage
	err   error
	delay time.Duration

	gotModel  string
	gotPrompt string
	calls     int
}

func (m *mockBackend) Generate(_ context.Context, name, prompt string) (string, domain.TokenUsage, error) {
	m.calls++
	m.gotModel = name
	m.gotPrompt = prompt
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.text, m.usage, m.err
}

func TestNew_RejectsUnknownProvider(t *testing.T) {
	_, err := New(map[model.Provider]Backend{"anthropic": &mockBackend{}})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_RejectsUnservedRequiredModel(t *testing.T) {
	_, err := New(map[model.Provider]Backend{model.Ollama: &mockBackend{}}, "ollama/phi3.5", "openai/gpt-4o-mini")
	if !errors.Is(err, domain.ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}

func TestGenerate_DispatchesByProvider(t *testing.T) {
	ollama := &mockBackend{text: "from ollama", usage: domain.NewTokenUsage(10, 5)}
	openai := &mockBackend{text: "from openai", usage: domain.NewTokenUsage(20, 7)}
	g, err := New(map[model.Provider]Backend{model.Ollama: ollama, model.OpenAI: openai})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := g.Generate(context.Background(), "prompt", "ollama/qwen2.5:3b", answer.Short)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "from ollama" || ollama.gotModel != "qwen2.5:3b" || ollama.gotPrompt != "prompt" {
		t.Errorf("unexpected dispatch: %+v model=%q", res, ollama.gotModel)
	}
	if openai.calls != 0 {
		t.Error("openai backend must not be called")
	}
	if res.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 tokens, got %d", res.Usage.TotalTokens)
	}

	res, err = g.Generate(context.Background(), "prompt", "openai/gpt-4o", answer.Long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "from openai" || openai.gotModel != "gpt-4o" {
		t.Errorf("unexpected dispatch: %+v", res)
	}
}

func TestGenerate_UnknownModel(t *testing.T) {
	b := &mockBackend{}
	g, _ := New(map[model.Provider]Backend{model.Ollama: b})

	for _, id := range []string{"mistral/7b", "phi3.5", "openai/gpt-4o"} {
		_, err := g.Generate(context.Background(), "p", id, answer.Short)
		var ume *domain.UnknownModelError
		if !errors.As(err, &ume) {
			t.Fatalf("%s: expected UnknownModelError, got %v", id, err)
		}
		if ume.ModelID != id {
			t.Errorf("expected model id %q in error, got %q", id, ume.ModelID)
		}
	}
	if b.calls != 0 {
		t.Error("backend must not be called for unknown models")
	}
}

func TestGenerate_BackendError(t *testing.T) {
	g, _ := New(map[model.Provider]Backend{model.OpenAI: &mockBackend{err: errors.New("502 bad gateway")}})

	_, err := g.Generate(context.Background(), "p", "openai/gpt-4o-mini", answer.Short)
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerate_MeasuresLatency(t *testing.T) {
	g, _ := New(map[model.Provider]Backend{model.Ollama: &mockBackend{text: "ok", delay: 5 * time.Millisecond}})

	res, err := g.Generate(context.Background(), "p", "ollama/phi3", answer.Short)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Latency < 5*time.Millisecond {
		t.Errorf("expected latency >= 5ms, got %v", res.Latency)
	}
}
