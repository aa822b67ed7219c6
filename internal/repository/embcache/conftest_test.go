package embcache

import (
	"context"
	"time"

	"github.com/kailas-cloud/bookclub/internal/db"
	"github.com/kailas-cloud/bookclub/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// mapStore is an in-memory store recording the last TTL.
type mapStore struct {
	data    map[string][]byte
	lastTTL time.Duration
	getErr  error
	setErr  error
}

func newMapStore() *mapStore { return &mapStore{data: make(map[string][]byte)} }

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mapStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.lastTTL = ttl
	return nil
}
