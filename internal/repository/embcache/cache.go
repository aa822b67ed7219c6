// Package embcache memoizes query embeddings in the key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/db"
	"github.com/kailas-cloud/bookclub/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "qemb:"

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options tune the cache.
type Options struct {
	// Model namespaces keys so a model switch never serves stale vectors.
	Model string
	// TTL of 0 keeps entries forever.
	TTL time.Duration
	// Lookups counts cache lookups by "result" (hit|miss). Optional.
	Lookups *prometheus.CounterVec
}

// Embedder wraps an embedder with a read-through cache.
type Embedder struct {
	inner  domain.Embedder
	store  store
	opts   Options
	logger *zap.Logger
}

// New creates a caching decorator.
func New(inner domain.Embedder, s store, opts Options, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{inner: inner, store: s, opts: opts, logger: logger}
}

// Embed returns a cached vector (zero tokens) or calls the inner embedder and stores the result.
// Cache failures are logged and never fail the call.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := e.key(text)

	if vec, ok := e.lookup(ctx, key); ok {
		e.count("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	e.count("miss")

	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed query: %w", err)
	}

	if err := e.store.SetWithTTL(ctx, key, encode(res.Embedding), e.opts.TTL); err != nil {
		e.logger.Warn("cache query embedding", zap.String("key", key), zap.Error(err))
	}
	return res, nil
}

func (e *Embedder) key(text string) string {
	h := sha256.Sum256([]byte(e.opts.Model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(h[:])
}

func (e *Embedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			e.logger.Warn("read cached query embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	vec, err := decode(data)
	if err != nil {
		e.logger.Warn("corrupt cached query embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (e *Embedder) count(result string) {
	if e.opts.Lookups != nil {
		e.opts.Lookups.WithLabelValues(result).Inc()
	}
}

func encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("bad length %d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
