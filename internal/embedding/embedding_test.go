// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-analytics/internal/httputil"
	"github.com/pdiddy/research-analytics/pkg/types"
)

func TestMain(m *testing.M) {
	backoffBase = time.Millisecond
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// fakeEmbedder records calls and returns vectors of length dims whose
// first element is the text length.
type fakeEmbedder struct {
	mu      sync.Mutex
	model   types.ModelID
	calls   [][]string
	failFor int
	err     error
	short   bool
	wrongAt int
	onCall  func(n int)
}

func newFake(dims int) *fakeEmbedder {
	return &fakeEmbedder{model: types.ModelID{Provider: "fake", Name: "m", Version: "1", Dimensions: dims}, wrongAt: -1}
}

func (f *fakeEmbedder) Model() types.ModelID { return f.model }

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	n := len(f.calls)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(n)
	}
	if n <= f.failFor {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		dims := f.model.Dimensions
		if i == f.wrongAt {
			dims++
		}
		v := make([]float32, dims)
		v[0] = float32(len(t))
		out[i] = v
	}
	if f.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func TestGenerateBatchesInOrder(t *testing.T) {
	f := newFake(4)
	texts := []string{"a", "bb", "", "dddd", "eeeee"}
	set, err := Generate(context.Background(), f, texts, Options{BatchSize: 2}, nil)
	require.NoError(t, err)

	assert.True(t, set.Complete)
	assert.Equal(t, 5, set.Requested)
	require.Len(t, set.Vectors, 5)
	for i, v := range set.Vectors {
		assert.Len(t, v, 4)
		assert.Equal(t, float32(len(texts[i])), v[0])
	}
	assert.Len(t, f.calls, 3)
	assert.Equal(t, []string{"", "dddd"}, f.calls[1], "empty text still gets a vector")
}

func TestGenerateNormalizesText(t *testing.T) {
	f := newFake(2)
	_, err := Generate(context.Background(), f, []string{"  many   spaces\n here  ", "abcdefgh"}, Options{BatchSize: 8, MaxChars: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"many ", "abcde"}, f.calls[0])
}

func TestGenerateCancelledReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFake(3)
	f.onCall = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	set, err := Generate(ctx, f, []string{"a", "b", "c", "d", "e"}, Options{BatchSize: 2}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, set.Complete)
	assert.Len(t, set.Vectors, 4, "finished batches are kept")
	assert.Equal(t, 5, set.Requested)
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	f := newFake(2)
	f.failFor = 2
	f.err = errors.New("temporary")
	set, err := Generate(context.Background(), f, []string{"x"}, Options{BatchSize: 1, MaxRetries: 3}, nil)
	require.NoError(t, err)
	assert.Len(t, set.Vectors, 1)
	assert.Len(t, f.calls, 3)
}

func TestGenerateUnavailableAfterRetries(t *testing.T) {
	f := newFake(2)
	f.failFor = 100
	f.err = errors.New("connection refused")
	_, err := Generate(context.Background(), f, []string{"x"}, Options{BatchSize: 1, MaxRetries: 2}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, f.calls, 3)
}

func TestGenerateStatusRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int
	}{
		{"unauthorized", 401, 1},
		{"bad request", 400, 1},
		{"rate limited", 429, 3},
		{"server error", 503, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake(2)
			f.failFor = 100
			f.err = &StatusError{Provider: "fake", StatusCode: tt.status, Message: "nope"}
			_, err := Generate(context.Background(), f, []string{"x"}, Options{BatchSize: 1, MaxRetries: 2}, nil)
			assert.ErrorIs(t, err, ErrUnavailable)
			var status *StatusError
			require.ErrorAs(t, err, &status)
			assert.Equal(t, tt.status, status.StatusCode)
			assert.Len(t, f.calls, tt.wantCalls)
		})
	}
}

func TestGenerateLengthMismatchIsFatal(t *testing.T) {
	f := newFake(2)
	f.short = true
	_, err := Generate(context.Background(), f, []string{"a", "b"}, Options{BatchSize: 2, MaxRetries: 3}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Len(t, f.calls, 1)
}

func TestGenerateDimensionMismatchIsFatal(t *testing.T) {
	f := newFake(2)
	f.wrongAt = 1
	_, err := Generate(context.Background(), f, []string{"a", "b"}, Options{BatchSize: 2}, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestGenerateEmptyInput(t *testing.T) {
	set, err := Generate(context.Background(), newFake(2), nil, Options{}, nil)
	require.NoError(t, err)
	assert.True(t, set.Complete)
	assert.Empty(t, set.Vectors)
}

func TestHashingEmbedderShapeAndDeterminism(t *testing.T) {
	h := NewHashingEmbedder("hashing-v1", "1", 1024)
	texts := []string{
		"Deep learning for image recognition",
		"Transformer models in natural language processing",
		"Graph neural networks for molecules",
		"Federated learning and privacy",
		"",
	}
	set, err := Generate(context.Background(), h, texts, Options{BatchSize: 2}, nil)
	require.NoError(t, err)
	require.Len(t, set.Vectors, 5)
	for _, v := range set.Vectors {
		assert.Len(t, v, 1024)
	}
	assert.Equal(t, 1024, set.Model.Dimensions)

	again, err := h.EmbedBatch(context.Background(), texts[:1])
	require.NoError(t, err)
	assert.Equal(t, set.Vectors[0], again[0])

	var norm float64
	for _, x := range set.Vectors[0] {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
	assert.Equal(t, make([]float32, 1024), set.Vectors[4], "no tokens gives the zero vector")
}

func TestMerge(t *testing.T) {
	m := types.ModelID{Provider: "p", Name: "a", Version: "1", Dimensions: 2}
	a := types.EmbeddingSet{Model: m, Vectors: [][]float32{{1, 0}}, Requested: 1, Complete: true}
	b := types.EmbeddingSet{Model: m, Vectors: [][]float32{{0, 1}}, Requested: 1, Complete: true}
	merged, err := Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, merged.Vectors)
	assert.True(t, merged.Complete)

	other := b
	other.Model.Version = "2"
	_, err = Merge(a, other)
	assert.ErrorIs(t, err, ErrModelMismatch)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\tb\n\nc  ", 0))
	assert.Equal(t, "héll", Normalize("héllo", 4))
	assert.Equal(t, "", Normalize("   ", 10))
}

func TestNew(t *testing.T) {
	cfg := types.EmbeddingConfig{Provider: types.ProviderHashing, Model: "hashing-v1", ModelVersion: "1", Dimensions: 8}
	e, err := New(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &HashingEmbedder{}, e)

	e, err = New(cfg, NewMemoryCache(), nil)
	require.NoError(t, err)
	assert.IsType(t, &CachedEmbedder{}, e)

	cfg.Provider = types.ProviderOpenAI
	_, err = New(cfg, nil, nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	cfg.Provider = "bogus"
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)

	cfg.Provider = types.ProviderOllama
	e, err = New(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", e.Model().Provider)
}

func TestFloat64(t *testing.T) {
	assert.Equal(t, [][]float64{{1, 0.5}}, Float64([][]float32{{1, 0.5}}))
	assert.True(t, strings.HasPrefix(CacheKey(types.ModelID{}, "x"), CacheKeyPrefix))
}
