// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cluster groups embedding vectors with k-means or DBSCAN, scores
// the grouping, and projects vectors to 2 or 3 dimensions for display.
package cluster

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/pkg/types"
)

var (
	// ErrInvalidParameter is returned for parameters that cannot be used,
	// before any computation starts.
	ErrInvalidParameter = errors.New("invalid clustering parameter")

	// ErrInsufficientData is returned when there are fewer than two
	// distinct vectors.
	ErrInsufficientData = errors.New("insufficient data for clustering")

	// ErrUnavailable is returned for methods without a Go implementation.
	ErrUnavailable = errors.New("method unavailable")
)

const (
	defaultNInit   = 10
	defaultMaxIter = 300
)

// Validate checks params without looking at any data.
func Validate(params types.ClusterParams) error {
	switch params.Method {
	case types.ClusterKMeans:
		if params.NClusters <= 0 {
			return fmt.Errorf("%w: n_clusters must be > 0, got %d", ErrInvalidParameter, params.NClusters)
		}
		if params.NInit < 0 || params.MaxIter < 0 {
			return fmt.Errorf("%w: n_init and max_iter must be >= 0", ErrInvalidParameter)
		}
	case types.ClusterDBSCAN:
		if params.Eps <= 0 {
			return fmt.Errorf("%w: eps must be > 0, got %g", ErrInvalidParameter, params.Eps)
		}
		if params.MinSamples <= 0 {
			return fmt.Errorf("%w: min_samples must be > 0, got %d", ErrInvalidParameter, params.MinSamples)
		}
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidParameter, params.Method)
	}
	return nil
}

// Perform clusters vectors. Parameters are validated before anything else.
// A k larger than the number of distinct vectors is capped with a warning;
// the capped value is reported in the result's Params.
func Perform(ctx context.Context, vectors [][]float64, params types.ClusterParams, log *zap.Logger) (types.ClusterResult, error) {
	log = logging.OrNop(log)
	if err := Validate(params); err != nil {
		return types.ClusterResult{}, err
	}
	if err := checkShape(vectors); err != nil {
		return types.ClusterResult{}, err
	}
	distinct := countDistinct(vectors)
	if distinct < 2 {
		return types.ClusterResult{}, fmt.Errorf("%w: %d distinct vectors", ErrInsufficientData, distinct)
	}

	result := types.ClusterResult{Method: params.Method}
	switch params.Method {
	case types.ClusterKMeans:
		if params.NInit == 0 {
			params.NInit = defaultNInit
		}
		if params.MaxIter == 0 {
			params.MaxIter = defaultMaxIter
		}
		if params.NClusters > distinct {
			log.Warn("capping n_clusters to the number of distinct vectors",
				zap.Int("requested", params.NClusters), zap.Int("distinct", distinct))
			params.NClusters = distinct
		}
		labels, inertia, err := kmeans(ctx, vectors, params)
		if err != nil {
			return types.ClusterResult{}, err
		}
		result.Labels = labels
		result.Inertia = inertia
	case types.ClusterDBSCAN:
		result.Labels = dbscan(vectors, params.Eps, params.MinSamples)
	}
	result.Params = params

	for _, l := range result.Labels {
		if l == types.NoiseLabel {
			result.Noise++
		}
	}
	result.NumClusters = numClusters(result.Labels)
	result.Clusters = Stats(vectors, result.Labels)
	result.Silhouette = Silhouette(vectors, result.Labels)
	result.CalinskiHarabasz = CalinskiHarabasz(vectors, result.Labels)

	log.Info("clustered vectors",
		zap.String("method", string(params.Method)),
		zap.Int("vectors", len(vectors)),
		zap.Int("clusters", result.NumClusters),
		zap.Int("noise", result.Noise))
	return result, nil
}

// AutoClusters returns the default k-means cluster count for n vectors:
// min(20, n/5), at least 2.
func AutoClusters(n int) int {
	return max(2, min(20, n/5))
}

func checkShape(vectors [][]float64) error {
	if len(vectors) == 0 {
		return fmt.Errorf("%w: no vectors", ErrInsufficientData)
	}
	dims := len(vectors[0])
	if dims == 0 {
		return fmt.Errorf("%w: zero-length vectors", ErrInvalidParameter)
	}
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrInvalidParameter, i, len(v), dims)
		}
	}
	return nil
}

func countDistinct(vectors [][]float64) int {
	var reps [][]float64
	for _, v := range vectors {
		dup := false
		for _, r := range reps {
			if floats.Equal(v, r) {
				dup = true
				break
			}
		}
		if !dup {
			reps = append(reps, v)
		}
	}
	return len(reps)
}

func numClusters(labels []int) int {
	seen := make(map[int]bool)
	for _, l := range labels {
		if l != types.NoiseLabel {
			seen[l] = true
		}
	}
	return len(seen)
}
