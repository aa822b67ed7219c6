package metrics

import "github.com/prometheus/client_golang/prometheus"

// Answer pipeline metrics.
var (
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers produced, by retrieval mode and judged relevance",
		},
		[]string{"mode", "relevance"},
	)

	AnswerCostTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_cost_total",
			Help:      "Estimated generation cost in USD",
		},
		[]string{"model"},
	)

	JudgeParseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judge_parse_total",
			Help:      "Judge output parse outcomes",
		},
		[]string{"outcome"},
	)

	RetrievalHits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_hits",
			Help:      "Documents returned by retrieval before reranking",
			Buckets:   []float64{0, 1, 2, 3, 5, 7, 10, 14},
		},
		[]string{"mode"},
	)
)
