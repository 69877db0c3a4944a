// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/internal/metrics"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// ErrCacheMiss is returned by a KV store when the key does not exist.
var ErrCacheMiss = errors.New("embedding cache miss")

// CacheKeyPrefix starts every embedding cache key.
const CacheKeyPrefix = "research-analytics:emb:"

// KV is the key-value store behind CachedEmbedder. Get returns
// ErrCacheMiss for absent keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CacheKey returns the cache key of a normalized text under model. The
// key covers provider, name, version and dimensions, so vectors of
// different models never collide.
func CacheKey(model types.ModelID, normalized string) string {
	h := sha256.New()
	for _, part := range []string{model.Provider, model.Name, model.Version, strconv.Itoa(model.Dimensions), normalized} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return CacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// CachedEmbedder serves vectors from a KV store and embeds only the
// misses. Store failures are logged and treated as misses.
type CachedEmbedder struct {
	inner Embedder
	store KV
	log   *zap.Logger
	hits  atomic.Int64
}

// NewCachedEmbedder wraps inner with a cache in store.
func NewCachedEmbedder(inner Embedder, store KV, log *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: store, log: logging.OrNop(log)}
}

// Model implements Embedder.
func (c *CachedEmbedder) Model() types.ModelID { return c.inner.Model() }

// CacheHits returns the number of vectors served from the cache.
func (c *CachedEmbedder) CacheHits() int64 { return c.hits.Load() }

// EmbedBatch implements Embedder.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.inner.Model()
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		keys[i] = CacheKey(model, t)
		if vec, ok := c.get(ctx, keys[i], model.Dimensions); ok {
			out[i] = vec
			c.hits.Add(1)
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			continue
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("got %d vectors for %d texts: %w", len(vecs), len(missTexts), ErrLengthMismatch)
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := c.store.Set(ctx, keys[i], EncodeVector(vecs[j])); err != nil {
			c.log.Warn("failed to cache embedding", zap.String("key", keys[i]), zap.Error(err))
		}
	}
	return out, nil
}

func (c *CachedEmbedder) get(ctx context.Context, key string, dims int) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("failed to read cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	vec, err := DecodeVector(data)
	if err != nil || (dims > 0 && len(vec) != dims) {
		c.log.Warn("discarding malformed cached embedding", zap.String("key", key), zap.Int("bytes", len(data)))
		return nil, false
	}
	return vec, true
}

// EncodeVector serializes a vector as little-endian float32 values.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector parses EncodeVector output.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

// MemoryCache is an in-process KV store.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), v...), nil
}

// Set implements KV.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
