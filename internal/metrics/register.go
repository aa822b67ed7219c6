package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,
			LLMRequestsTotal,
			LLMRequestDuration,
			LLMTokensTotal,
			AnswersTotal,
			AnswerCostTotal,
			JudgeParseTotal,
			RetrievalHits,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
