package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
)

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	batchSizes []int
	healthErr  error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = []float32{float32(len(t))}
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: len(texts),
		TotalTokens:  len(texts),
	}, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

// plainMockEmbedder has no batch support.
type plainMockEmbedder struct {
	calls int
}

func (m *plainMockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}, nil
}

func TestInstrumented_Embed(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}}
	p := NewInstrumented(inner, "test", "test-model", 0, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 7 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestInstrumented_EmbedError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	p := NewInstrumented(inner, "test", "test-model", 0, nil)

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestInstrumented_BatchEmbedChunks(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumented(inner, "test", "test-model", 2, zap.NewNop())

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	result, err := p.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.batchSizes) != 3 || inner.batchSizes[2] != 1 {
		t.Errorf("expected chunks 2,2,1, got %v", inner.batchSizes)
	}
	if len(result.Embeddings) != 5 {
		t.Fatalf("expected 5 embeddings, got %d", len(result.Embeddings))
	}
	for i, e := range result.Embeddings {
		if e[0] != float32(len(texts[i])) {
			t.Errorf("embedding %d out of order", i)
		}
	}
	if result.TotalTokens != 5 {
		t.Errorf("expected TotalTokens=5, got %d", result.TotalTokens)
	}
}

func TestInstrumented_BatchEmbedEmpty(t *testing.T) {
	p := NewInstrumented(&mockEmbedder{}, "test", "test-model", 0, nil)

	result, err := p.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", result.Embeddings)
	}
}

func TestInstrumented_BatchEmbedInnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: errors.New("timeout")}
	p := NewInstrumented(inner, "test", "test-model", 0, nil)

	if _, err := p.BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumented_BatchFallbackToSingle(t *testing.T) {
	inner := &plainMockEmbedder{}
	p := NewInstrumented(inner, "test", "test-model", 0, nil)

	result, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 || result.TotalTokens != 6 {
		t.Errorf("expected 3 single calls and 6 tokens, got calls=%d tokens=%d", inner.calls, result.TotalTokens)
	}
}

func TestInstrumented_HealthCheck(t *testing.T) {
	p := NewInstrumented(&mockEmbedder{healthErr: errors.New("down")}, "test", "m", 0, nil)
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("expected health error to pass through")
	}

	if err := NewInstrumented(&plainMockEmbedder{}, "test", "m", 0, nil).HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check is healthy, got %v", err)
	}
}
