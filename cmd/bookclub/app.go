package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/config"
	dbRedis "github.com/kailas-cloud/bookclub/internal/db/redis"
	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/model"
	logpkg "github.com/kailas-cloud/bookclub/internal/logger"
	"github.com/kailas-cloud/bookclub/internal/metrics"
	documentrepo "github.com/kailas-cloud/bookclub/internal/repository/document"
	"github.com/kailas-cloud/bookclub/internal/repository/embcache"
	"github.com/kailas-cloud/bookclub/internal/repository/embedded"
	searchrepo "github.com/kailas-cloud/bookclub/internal/repository/search"
	"github.com/kailas-cloud/bookclub/internal/repository/source"
	"github.com/kailas-cloud/bookclub/internal/transport/openai"
	answeruc "github.com/kailas-cloud/bookclub/internal/usecase/answer"
	"github.com/kailas-cloud/bookclub/internal/usecase/catalog"
	"github.com/kailas-cloud/bookclub/internal/usecase/cost"
	embeddinguc "github.com/kailas-cloud/bookclub/internal/usecase/embedding"
	"github.com/kailas-cloud/bookclub/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/bookclub/internal/usecase/health"
	"github.com/kailas-cloud/bookclub/internal/usecase/ingest"
	"github.com/kailas-cloud/bookclub/internal/usecase/judge"
	ucsearch "github.com/kailas-cloud/bookclub/internal/usecase/search"
)

// backend is everything the app needs from a search store.
type backend struct {
	repo    ucsearch.Repository
	authors catalog.AuthorLister
	sink    ingest.Sink
	pinger  healthuc.DBPinger
	counter interface {
		Count(ctx context.Context, category string) (int, error)
	}
	close func()
}

// appOptions select what a subcommand needs built.
type appOptions struct {
	// resultCap overrides the configured cap when positive.
	resultCap int
	// offline selects search.offline_result_cap instead of search.result_cap.
	offline bool
	// preload ingests the data files into the embedded backend before use.
	preload bool
}

// app is the composition root shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	backend backend
	search  *ucsearch.Service
	answers *answeruc.Service
	catalog *catalog.Service
	health  *healthuc.Service
	ingest  *ingest.Service
}

func newApp(ctx context.Context, env string, opts appOptions) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.Register()

	vec := domain.DefaultVectorConfig()
	vec.Model = cfg.Embedding.Model
	vec.Dimensions = cfg.Embedding.Dimensions

	// OpenAI-compatible embeddings -> Instrumented (logging, chunking). Queries add the cache on top.
	base := openai.NewEmbedder(&openai.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      vec.Model,
		Dimensions: vec.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	docEmbedder := embeddinguc.NewInstrumented(base, cfg.Embedding.Provider, vec.Model, 0, logger)
	var queryEmbedder ucsearch.Embedder = docEmbedder

	a := &app{cfg: cfg, logger: logger}

	switch cfg.Search.Backend {
	case config.BackendRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))

		reviewPrefix := cfg.Search.KeyPrefix + "review:"
		reader := searchrepo.New(store, searchrepo.Config{
			IndexName:   cfg.Search.IndexName,
			KeyPrefix:   reviewPrefix,
			VectorField: vec.Field,
		})
		writer := documentrepo.New(store, documentrepo.Config{
			IndexName:       cfg.Search.IndexName,
			KeyPrefix:       reviewPrefix,
			VectorField:     vec.Field,
			Dimensions:      vec.Dimensions,
			HNSWM:           cfg.Search.HNSWM,
			HNSWEFConstruct: cfg.Search.HNSWEFConstruct,
		})
		a.backend = backend{
			repo: reader, authors: reader, counter: reader,
			sink: writer, pinger: store, close: store.Close,
		}

		if cfg.Embedding.CacheEnabled {
			queryEmbedder = embcache.New(docEmbedder, store, embcache.Options{
				Model:   vec.Model,
				TTL:     time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
				Lookups: metrics.EmbeddingCacheTotal,
			}, logger)
		}

	case config.BackendEmbedded:
		idx, err := embedded.New()
		if err != nil {
			return nil, fmt.Errorf("create embedded index: %w", err)
		}
		a.backend = backend{
			repo: idx, authors: idx, counter: idx,
			sink: idx, pinger: idx, close: func() { _ = idx.Close() },
		}

	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}

	a.ingest = ingest.New(
		source.New(cfg.Data.Dir, cfg.Data.Patterns),
		docEmbedder,
		a.backend.sink,
		ingest.Config{Workers: cfg.Ingest.Workers, BatchSize: cfg.Ingest.BatchSize},
		logger,
	)

	a.search = ucsearch.New(a.backend.repo, queryEmbedder, ucsearch.Config{
		ResultCap:     resultCapFor(cfg.Search, opts),
		CandidatePool: cfg.Search.CandidatePool,
	})

	gen, llmHealth, err := buildGenerator(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	prices := make(map[string]cost.Price, len(cfg.Pricing))
	for id, p := range cfg.Pricing {
		prices[id] = cost.Price{Prompt: p.Prompt, Completion: p.Completion}
	}

	pricer := cost.New(prices)
	evaluator := judge.New(gen, cfg.LLM.JudgeModel)
	available := servableModels(gen, cfg.LLM.Models)
	if missing := unpricedModels(pricer, available); len(missing) > 0 {
		logger.Warn("hosted models without a price entry report zero cost", zap.Strings("models", missing))
	}

	a.answers = answeruc.New(a.search, gen, evaluator, pricer, cfg.LLM.DefaultModel)
	a.catalog = catalog.New(a.backend.authors, catalog.Models{
		Available: available,
		Default:   cfg.LLM.DefaultModel,
		Judge:     evaluator.Model(),
	})
	a.health = healthuc.New(a.backend.pinger, docEmbedder, llmHealth)

	if cfg.Search.Backend == config.BackendEmbedded && opts.preload {
		if err := a.preload(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// buildGenerator creates one chat backend per configured provider.
func buildGenerator(cfg config.Config, logger *zap.Logger) (*generate.Generator, map[string]healthuc.Checker, error) {
	backends := make(map[model.Provider]generate.Backend, len(cfg.LLM.Providers))
	checks := make(map[string]healthuc.Checker, len(cfg.LLM.Providers))
	for name, pc := range cfg.LLM.Providers {
		provider, err := model.ParseProvider(name)
		if err != nil {
			return nil, nil, fmt.Errorf("build generator: %w", err)
		}
		baseURL := pc.BaseURL
		if baseURL == "" && provider == model.Ollama {
			baseURL = openai.OllamaBaseURL
		}
		b := openai.NewChatBackend(openai.ChatConfig{
			Provider: name,
			APIKey:   pc.APIKey,
			BaseURL:  baseURL,
			Logger:   logger,
		})
		backends[provider] = b
		checks[name] = b
	}

	gen, err := generate.New(backends, cfg.LLM.DefaultModel, cfg.LLM.JudgeModel)
	if err != nil {
		return nil, nil, fmt.Errorf("build generator: %w", err)
	}
	return gen, checks, nil
}

// resultCapFor picks the per-mode hit cap: an explicit override, else the offline or live setting.
func resultCapFor(sc config.SearchConfig, opts appOptions) int {
	switch {
	case opts.resultCap > 0:
		return opts.resultCap
	case opts.offline:
		return sc.OfflineResultCap
	default:
		return sc.ResultCap
	}
}

// unpricedModels lists hosted models the cost table does not know. Local models are free.
func unpricedModels(pricer *cost.Estimator, ids []string) []string {
	var out []string
	for _, id := range ids {
		parsed, err := model.Parse(id)
		if err != nil || parsed.Provider == model.Ollama {
			continue
		}
		if !pricer.Priced(id) {
			out = append(out, id)
		}
	}
	return out
}

// servableModels keeps the advertised models whose provider has a backend.
func servableModels(gen *generate.Generator, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, _, err := gen.Resolve(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// preload fills the in-memory index from the data files.
func (a *app) preload(ctx context.Context) error {
	res, err := a.ingest.Run(ctx, true)
	if err != nil {
		return fmt.Errorf("preload embedded index: %w", err)
	}
	if res.Processed == 0 {
		return fmt.Errorf("preload embedded index: no reviews loaded from %s", a.cfg.Data.Dir)
	}
	if idx, ok := a.backend.pinger.(*embedded.Index); ok {
		idx.MarkReady()
	}
	return nil
}

// Close releases the backend and flushes the logger.
func (a *app) Close() {
	if a.backend.close != nil {
		a.backend.close()
	}
	_ = a.logger.Sync()
}
