// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding turns texts into fixed-dimension vectors. Providers
// implement Embedder; Generate batches the calls, retries failures, and
// enforces the one-vector-per-text contract.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/internal/metrics"
	"github.com/pdiddy/research-analytics/pkg/types"
)

var (
	// ErrUnavailable means the provider could not serve the request after
	// all retries.
	ErrUnavailable = errors.New("embedding provider unavailable")

	// ErrLengthMismatch means a provider returned a different number of
	// vectors than texts.
	ErrLengthMismatch = errors.New("embedding count does not match text count")

	// ErrDimensionMismatch means a vector's size differs from the model's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModelMismatch means two embedding sets come from different models.
	ErrModelMismatch = errors.New("embedding model mismatch")
)

// StatusError is an HTTP error status returned by an embedding provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s embedding API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether the status is worth retrying: 429 or any 5xx.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Embedder embeds a batch of texts with one model. Implementations return
// exactly one vector per text, in order.
type Embedder interface {
	Model() types.ModelID
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Options control Generate.
type Options struct {
	// BatchSize is the number of texts per provider call.
	BatchSize int
	// MaxChars truncates normalized texts. Zero disables truncation.
	MaxChars int
	// MaxRetries is the number of retries after a failed call.
	MaxRetries int
}

// OptionsFromConfig maps the embedding configuration to Options.
func OptionsFromConfig(cfg types.EmbeddingConfig) Options {
	return Options{BatchSize: cfg.BatchSize, MaxChars: cfg.MaxChars, MaxRetries: cfg.MaxRetries}
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// SetBackoffBase sets the first retry delay. It doubles per attempt.
func SetBackoffBase(d time.Duration) {
	backoffBase = d
}

// Normalize trims text, collapses internal whitespace, and truncates the
// result to maxChars runes when maxChars > 0.
func Normalize(text string, maxChars int) string {
	s := strings.Join(strings.Fields(text), " ")
	if maxChars > 0 && utf8.RuneCountInString(s) > maxChars {
		s = string([]rune(s)[:maxChars])
	}
	return s
}

// hitCounter is implemented by embedders that serve vectors from a cache.
type hitCounter interface {
	CacheHits() int64
}

// Generate embeds texts in batches of opts.BatchSize. Every text, empty
// or not, gets a vector. The context is checked between batches; on
// cancellation the vectors of the finished batches are returned with
// Complete=false together with the context error.
func Generate(ctx context.Context, e Embedder, texts []string, opts Options, log *zap.Logger) (set types.EmbeddingSet, err error) {
	log = logging.OrNop(log)
	model := e.Model()
	set = types.EmbeddingSet{
		Model:     model,
		Vectors:   make([][]float32, 0, len(texts)),
		Requested: len(texts),
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 32
	}

	var hitsBefore int64
	hc, counting := e.(hitCounter)
	if counting {
		hitsBefore = hc.CacheHits()
	}
	defer func() {
		if counting {
			set.CacheHits = int(hc.CacheHits() - hitsBefore)
		}
	}()

	dims := model.Dimensions
	for start := 0; start < len(texts); start += batch {
		if err := ctx.Err(); err != nil {
			log.Warn("embedding cancelled", zap.Int("embedded", len(set.Vectors)), zap.Int("requested", len(texts)))
			return set, fmt.Errorf("embedding batch at %d: %w", start, err)
		}
		end := min(start+batch, len(texts))
		chunk := make([]string, end-start)
		for i, t := range texts[start:end] {
			chunk[i] = Normalize(t, opts.MaxChars)
		}

		vecs, err := embedWithRetry(ctx, e, chunk, opts.MaxRetries, log)
		if err != nil {
			if ctx.Err() != nil {
				return set, fmt.Errorf("embedding batch at %d: %w", start, ctx.Err())
			}
			return set, fmt.Errorf("embedding batch at %d: %w", start, err)
		}
		if len(vecs) != len(chunk) {
			return set, fmt.Errorf("batch at %d: got %d vectors for %d texts: %w", start, len(vecs), len(chunk), ErrLengthMismatch)
		}
		for i, v := range vecs {
			if dims == 0 {
				dims = len(v)
			}
			if len(v) != dims {
				return set, fmt.Errorf("text %d: got %d dimensions, want %d: %w", start+i, len(v), dims, ErrDimensionMismatch)
			}
		}
		set.Vectors = append(set.Vectors, vecs...)
		log.Debug("embedded batch", zap.Int("start", start), zap.Int("size", len(chunk)))
	}
	if set.Model.Dimensions == 0 {
		set.Model.Dimensions = dims
	}
	set.Complete = true
	return set, nil
}

// embedWithRetry calls the embedder with exponential backoff. Context and
// contract errors are returned as is. A non-temporary StatusError stops
// retrying at once; it and any other final error wrap ErrUnavailable.
func embedWithRetry(ctx context.Context, e Embedder, texts []string, maxRetries int, log *zap.Logger) ([][]float32, error) {
	provider := e.Model().Provider
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			metrics.EmbeddingRetriesTotal.WithLabelValues(provider).Inc()
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			log.Warn("retrying embedding call", zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		vecs, err := e.EmbedBatch(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, ErrLengthMismatch) || errors.Is(err, ErrDimensionMismatch) {
			return nil, err
		}
		var status *StatusError
		if errors.As(err, &status) && !status.Temporary() {
			log.Warn("embedding request rejected", zap.Int("status", status.StatusCode), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w: %w", maxRetries, ErrUnavailable, lastErr)
}

// Merge concatenates two sets from the same model.
func Merge(a, b types.EmbeddingSet) (types.EmbeddingSet, error) {
	if a.Model != b.Model {
		return types.EmbeddingSet{}, fmt.Errorf("merging %s with %s: %w", a.Model, b.Model, ErrModelMismatch)
	}
	out := types.EmbeddingSet{
		Model:     a.Model,
		Vectors:   make([][]float32, 0, len(a.Vectors)+len(b.Vectors)),
		Requested: a.Requested + b.Requested,
		Complete:  a.Complete && b.Complete,
		CacheHits: a.CacheHits + b.CacheHits,
	}
	out.Vectors = append(append(out.Vectors, a.Vectors...), b.Vectors...)
	return out, nil
}

// Float64 converts vectors to float64 rows for numeric packages.
func Float64(vectors [][]float32) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, len(v))
		for j, f := range v {
			row[j] = float64(f)
		}
		out[i] = row
	}
	return out
}
