// Package answer runs the question answering pipeline:
// search, rerank, prompt, generate, evaluate and cost.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/category"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	"github.com/kailas-cloud/bookclub/internal/domain/search/mode"
	"github.com/kailas-cloud/bookclub/internal/logger"
	"github.com/kailas-cloud/bookclub/internal/metrics"
	"github.com/kailas-cloud/bookclub/internal/usecase/prompt"
	"github.com/kailas-cloud/bookclub/internal/usecase/rerank"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

// Request is one question as received from a caller. Empty fields take defaults.
type Request struct {
	Question string
	Category string // display name or code
	Author   string
	Model    string
	Mode     string
	Length   string
}

// Service is the answer pipeline. Stateless apart from read-only collaborators.
type Service struct {
	search       Searcher
	gen          Generator
	judge        Evaluator
	pricer       Pricer
	defaultModel string

	now   func() time.Time
	newID func() string
}

// New creates the pipeline. defaultModel answers requests that name no model.
func New(search Searcher, gen Generator, judge Evaluator, pricer Pricer, defaultModel string) *Service {
	return &Service{
		search:       search,
		gen:          gen,
		judge:        judge,
		pricer:       pricer,
		defaultModel: defaultModel,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

type plan struct {
	question string
	category category.Category
	author   string
	modelID  string
	mode     mode.Mode
	tier     answer.Tier
}

// Answer runs the pipeline. Any stage failure aborts with that stage's error and no record.
// An empty context after reranking is not an error: it yields answer.NoResults without
// calling the generator or the judge.
func (s *Service) Answer(ctx context.Context, req Request) (answer.Record, error) {
	p, err := s.plan(req)
	if err != nil {
		return answer.Record{}, err
	}
	log := logger.FromContext(ctx).With(
		zap.String("category", p.category.Code),
		zap.String("mode", string(p.mode)),
		zap.String("model", p.modelID),
	)

	hits, err := s.search.Search(ctx, ucsearch.Query{
		Text:       p.question,
		Category:   p.category.Code,
		Mode:       p.mode,
		AuthorHint: p.author,
	})
	if err != nil {
		return answer.Record{}, fmt.Errorf("search: %w", err)
	}
	metrics.RetrievalHits.WithLabelValues(string(p.mode)).Observe(float64(len(hits)))

	docs := rerank.Rerank(hits, p.author)
	log.Debug("reranked",
		zap.Int("hits", len(hits)),
		zap.String("author", p.author),
		zap.Strings("ids", document.IDs(docs)),
	)

	if len(docs) == 0 {
		log.Info("no context after rerank, skipping generation", zap.String("author", p.author))
		rec := answer.NoResults(p.author, p.modelID)
		s.stamp(&rec, p)
		metrics.AnswersTotal.WithLabelValues(string(p.mode), string(rec.Verdict.Label)).Inc()
		return rec, nil
	}

	text := prompt.Build(p.question, p.category.Name, docs, p.tier)

	gen, err := s.gen.Generate(ctx, text, p.modelID, p.tier)
	if err != nil {
		return answer.Record{}, fmt.Errorf("generate: %w", err)
	}

	verdict, evalUsage, err := s.judge.Evaluate(ctx, p.question, gen.Text)
	if err != nil {
		return answer.Record{}, fmt.Errorf("evaluate: %w", err)
	}

	cost := s.pricer.Cost(p.modelID, gen.Usage)

	rec := answer.Record{
		Answer:       gen.Text,
		ResponseTime: gen.Latency,
		Verdict:      verdict,
		ModelUsed:    p.modelID,
		Usage:        gen.Usage,
		EvalUsage:    evalUsage,
		Cost:         cost,
	}
	s.stamp(&rec, p)

	metrics.AnswersTotal.WithLabelValues(string(p.mode), string(verdict.Label)).Inc()
	metrics.AnswerCostTotal.WithLabelValues(p.modelID).Add(cost)
	log.Debug("answered",
		zap.String("record_id", rec.ID),
		zap.String("relevance", string(verdict.Label)),
		zap.Duration("response_time", gen.Latency),
		zap.Float64("cost", cost),
	)
	return rec, nil
}

// plan validates the request before any backend is touched, the model id included.
func (s *Service) plan(req Request) (plan, error) {
	q := strings.TrimSpace(req.Question)
	if q == "" {
		return plan{}, fmt.Errorf("%w: question is required", domain.ErrInvalidRequest)
	}
	m, err := mode.Parse(req.Mode)
	if err != nil {
		return plan{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	tier, err := answer.ParseTier(req.Length)
	if err != nil {
		return plan{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	modelID := req.Model
	if modelID == "" {
		modelID = s.defaultModel
	}
	if _, _, err := s.gen.Resolve(modelID); err != nil {
		return plan{}, fmt.Errorf("resolve model: %w", err)
	}

	return plan{
		question: q,
		category: category.Resolve(req.Category),
		author:   req.Author,
		modelID:  modelID,
		mode:     m,
		tier:     tier,
	}, nil
}

func (s *Service) stamp(rec *answer.Record, p plan) {
	rec.ID = s.newID()
	rec.Category = p.category.Name
	rec.Mode = p.mode
	rec.CreatedAt = s.now().UTC()
}
