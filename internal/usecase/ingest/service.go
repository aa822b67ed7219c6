// Package ingest loads review files into a search backend.
// Reader -> channel([]Document) -> N workers -> batch embed -> sink.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	"github.com/kailas-cloud/bookclub/internal/repository/source"
)

// Source streams raw review rows.
type Source interface {
	Read(ctx context.Context, fn source.RowFunc) error
}

// Sink stores embedded reviews.
type Sink interface {
	Prepare(ctx context.Context, reset bool) error
	Write(ctx context.Context, docs []document.Document) error
}

// Config tunes the worker pool.
type Config struct {
	Workers   int
	BatchSize int
}

// Result summarizes one run.
type Result struct {
	Processed int64
	Failed    int64
	Skipped   int64
	Duration  time.Duration
}

// Service runs ingestion.
type Service struct {
	src    Source
	embed  domain.Embedder
	sink   Sink
	cfg    Config
	logger *zap.Logger
}

// New creates an ingestion service.
func New(src Source, embed domain.Embedder, sink Sink, cfg Config, logger *zap.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, embed: embed, sink: sink, cfg: cfg, logger: logger}
}

// Run loads every row. A failed batch is logged and counted, the run goes on.
// Only sink preparation and source read errors fail the run.
func (s *Service) Run(ctx context.Context, reset bool) (Result, error) {
	if err := s.sink.Prepare(ctx, reset); err != nil {
		return Result{}, fmt.Errorf("prepare index: %w", err)
	}

	batches := make(chan []document.Document, s.cfg.Workers*2)
	var (
		wg                sync.WaitGroup
		processed, failed atomic.Int64
		skipped           atomic.Int64
		readerErr         error
	)

	start := time.Now()

	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for batch := range batches {
				n, err := s.processBatch(ctx, batch)
				processed.Add(int64(n))
				if err != nil {
					failed.Add(int64(len(batch) - n))
					s.logger.Warn("batch failed",
						zap.Int("worker", id),
						zap.Int("size", len(batch)),
						zap.String("first_id", batch[0].ID()),
						zap.Error(err),
					)
				}
			}
		}(i)
	}

	go func() {
		defer close(batches)
		readerErr = s.produce(ctx, batches, &skipped)
	}()

	wg.Wait()

	res := Result{
		Processed: processed.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
		Duration:  time.Since(start),
	}
	s.logger.Info("ingest finished",
		zap.Int64("processed", res.Processed),
		zap.Int64("failed", res.Failed),
		zap.Int64("skipped", res.Skipped),
		zap.Duration("duration", res.Duration),
	)
	if readerErr != nil {
		return res, fmt.Errorf("read source: %w", readerErr)
	}
	return res, nil
}

func (s *Service) produce(ctx context.Context, out chan<- []document.Document, skipped *atomic.Int64) error {
	batch := make([]document.Document, 0, s.cfg.BatchSize)
	send := func() bool {
		select {
		case out <- batch:
			batch = make([]document.Document, 0, s.cfg.BatchSize)
			return true
		case <-ctx.Done():
			return false
		}
	}

	err := s.src.Read(ctx, func(file string, row source.Row) bool {
		doc, err := document.New(row.ID, row.Author, row.Title, row.Text, row.Category)
		if err != nil {
			skipped.Add(1)
			s.logger.Debug("skip row", zap.String("file", file), zap.String("id", row.ID), zap.Error(err))
			return true
		}
		batch = append(batch, doc)
		if len(batch) >= s.cfg.BatchSize {
			return send()
		}
		return true
	})
	if err != nil {
		return err
	}
	if len(batch) > 0 {
		send()
	}
	return ctx.Err()
}

// processBatch returns how many documents were written.
func (s *Service) processBatch(ctx context.Context, batch []document.Document) (int, error) {
	inputs := make([]string, len(batch))
	for i := range batch {
		inputs[i] = batch[i].EmbeddingInput()
	}

	res, err := domain.EmbedAll(ctx, s.embed, inputs)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return 0, fmt.Errorf("embed: got %d vectors for %d reviews", len(res.Embeddings), len(batch))
	}

	docs := make([]document.Document, len(batch))
	for i := range batch {
		docs[i] = batch[i].WithEmbedding(res.Embeddings[i])
	}
	if err := s.sink.Write(ctx, docs); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return len(docs), nil
}
