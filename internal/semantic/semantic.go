// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semantic ties embedding generation, clustering, and display
// projection together behind one Analyzer. Failures of the embedding
// backend are reported as ErrUnavailable so callers can skip the
// semantic steps and keep going.
package semantic

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/cluster"
	"github.com/pdiddy/research-analytics/internal/embedding"
	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/pkg/types"
)

var (
	// ErrUnavailable means the analysis cannot run in this environment: no
	// embedder, a provider that failed after retries, or a projection
	// method without a backend. It is distinct from a result with zero
	// clusters.
	ErrUnavailable = errors.New("semantic analysis unavailable")

	ErrInvalidParameter = cluster.ErrInvalidParameter
	ErrInsufficientData = cluster.ErrInsufficientData
)

// Analyzer runs the semantic steps with one embedding model.
type Analyzer struct {
	embedder embedding.Embedder
	cfg      types.PipelineConfig
	log      *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil embedder makes GenerateEmbeddings
// return ErrUnavailable; clustering and projection still work on vectors
// supplied by the caller.
func NewAnalyzer(embedder embedding.Embedder, cfg types.PipelineConfig, log *zap.Logger) *Analyzer {
	return &Analyzer{embedder: embedder, cfg: cfg, log: logging.OrNop(log)}
}

// GenerateEmbeddings returns one vector per text, in input order. On
// cancellation the partial set comes back with the context error.
func (a *Analyzer) GenerateEmbeddings(ctx context.Context, texts []string) (types.EmbeddingSet, error) {
	if a.embedder == nil {
		return types.EmbeddingSet{Requested: len(texts)}, fmt.Errorf("%w: no embedding provider configured", ErrUnavailable)
	}
	set, err := embedding.Generate(ctx, a.embedder, texts, embedding.OptionsFromConfig(a.cfg.Embedding), a.log)
	if errors.Is(err, embedding.ErrUnavailable) {
		return set, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return set, err
}

// Params builds clustering parameters from the configuration for n
// vectors. An empty method uses the configured one; a configured k of 0
// resolves to cluster.AutoClusters(n).
func (a *Analyzer) Params(method types.ClusterMethod, n int) types.ClusterParams {
	c := a.cfg.Clustering
	if method == "" {
		method = c.Method
	}
	p := types.ClusterParams{
		Method:      method,
		RandomState: c.RandomState,
	}
	switch method {
	case types.ClusterKMeans:
		p.NClusters = c.NClusters
		if p.NClusters == 0 {
			p.NClusters = cluster.AutoClusters(n)
		}
		p.NInit = c.NInit
		p.MaxIter = c.MaxIter
	case types.ClusterDBSCAN:
		p.Eps = c.Eps
		p.MinSamples = c.MinSamples
	}
	return p
}

// PerformClustering clusters the vectors of set with method, or with the
// configured method when method is empty.
func (a *Analyzer) PerformClustering(ctx context.Context, set types.EmbeddingSet, method types.ClusterMethod) (types.ClusterResult, error) {
	return a.Cluster(ctx, set, a.Params(method, set.Len()))
}

// Cluster clusters the vectors of set with explicit parameters.
func (a *Analyzer) Cluster(ctx context.Context, set types.EmbeddingSet, params types.ClusterParams) (types.ClusterResult, error) {
	return cluster.Perform(ctx, embedding.Float64(set.Vectors), params, a.log)
}

// ReduceDimensions projects the vectors of set for display. Empty method
// and zero components take the configured values.
func (a *Analyzer) ReduceDimensions(set types.EmbeddingSet, method string, components int) (types.Projection, error) {
	if method == "" {
		method = a.cfg.Reduction.Method
	}
	if components == 0 {
		components = a.cfg.Reduction.Components
	}
	p, err := cluster.Reduce(embedding.Float64(set.Vectors), method, components)
	if errors.Is(err, cluster.ErrUnavailable) {
		return p, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return p, err
}
