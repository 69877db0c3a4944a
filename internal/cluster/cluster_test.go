// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// blobs returns two well separated groups of three points.
func blobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
}

func kmeansParams(k int) types.ClusterParams {
	return types.ClusterParams{Method: types.ClusterKMeans, NClusters: k, RandomState: 42}
}

func TestPerformKMeansSeparatesBlobs(t *testing.T) {
	res, err := Perform(context.Background(), blobs(), kmeansParams(2), nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, res.Labels)
	assert.Equal(t, 2, res.NumClusters)
	assert.Zero(t, res.Noise)
	require.NotNil(t, res.Silhouette)
	assert.Greater(t, *res.Silhouette, 0.9)
	require.NotNil(t, res.CalinskiHarabasz)
	assert.Greater(t, *res.CalinskiHarabasz, 100.0)
	assert.Greater(t, res.Inertia, 0.0)
	assert.Equal(t, defaultNInit, res.Params.NInit)
	require.Len(t, res.Clusters, 2)
	assert.Equal(t, 3, res.Clusters[0].Size)
}

func TestPerformKMeansFiveVectorsFourClusters(t *testing.T) {
	vectors := [][]float64{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {9, 9}}
	res, err := Perform(context.Background(), vectors, kmeansParams(4), nil)
	require.NoError(t, err)

	require.Len(t, res.Labels, 5)
	for _, l := range res.Labels {
		assert.Contains(t, []int{0, 1, 2, 3}, l)
	}
	assert.Equal(t, 4, res.NumClusters)
}

func TestPerformKMeansDeterministic(t *testing.T) {
	vectors := [][]float64{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {9, 9}, {4, 6}, {8, 1}}
	a, err := Perform(context.Background(), vectors, kmeansParams(3), nil)
	require.NoError(t, err)
	b, err := Perform(context.Background(), vectors, kmeansParams(3), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
	assert.InDelta(t, a.Inertia, b.Inertia, 1e-12)
}

func TestPerformCapsClusters(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	vectors := [][]float64{{0, 0}, {0, 0}, {1, 1}, {2, 2}}

	res, err := Perform(context.Background(), vectors, kmeansParams(10), zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Params.NClusters)
	assert.Equal(t, 3, res.NumClusters)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, 1, logs.FilterMessage("capping n_clusters to the number of distinct vectors").Len())
}

func TestPerformInvalidParameters(t *testing.T) {
	cases := map[string]types.ClusterParams{
		"zero k":         {Method: types.ClusterKMeans},
		"negative ninit": {Method: types.ClusterKMeans, NClusters: 2, NInit: -1},
		"zero eps":       {Method: types.ClusterDBSCAN, MinSamples: 2},
		"zero samples":   {Method: types.ClusterDBSCAN, Eps: 0.5},
		"unknown":        {Method: "spectral", NClusters: 2},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			// Invalid parameters are reported even without usable data.
			_, err := Perform(context.Background(), nil, params, nil)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestPerformInsufficientData(t *testing.T) {
	_, err := Perform(context.Background(), nil, kmeansParams(2), nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Perform(context.Background(), [][]float64{{1, 1}, {1, 1}}, kmeansParams(2), nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPerformRaggedVectors(t *testing.T) {
	_, err := Perform(context.Background(), [][]float64{{1, 1}, {1}}, kmeansParams(2), nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestPerformCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Perform(ctx, blobs(), kmeansParams(2), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPerformDBSCAN(t *testing.T) {
	vectors := append(blobs(), []float64{50, -50})
	params := types.ClusterParams{Method: types.ClusterDBSCAN, Eps: 0.5, MinSamples: 2}

	res, err := Perform(context.Background(), vectors, params, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, types.NoiseLabel}, res.Labels)
	assert.Equal(t, 2, res.NumClusters)
	assert.Equal(t, 1, res.Noise)
	require.Len(t, res.Clusters, 2)
	assert.NotNil(t, res.Silhouette)
}

func TestPerformDBSCANAllNoise(t *testing.T) {
	params := types.ClusterParams{Method: types.ClusterDBSCAN, Eps: 0.01, MinSamples: 2}
	res, err := Perform(context.Background(), blobs(), params, nil)
	require.NoError(t, err)

	assert.Zero(t, res.NumClusters)
	assert.Equal(t, 6, res.Noise)
	assert.Nil(t, res.Silhouette)
	assert.Nil(t, res.CalinskiHarabasz)
	assert.Empty(t, res.Clusters)
}

func TestAutoClusters(t *testing.T) {
	assert.Equal(t, 2, AutoClusters(3))
	assert.Equal(t, 2, AutoClusters(10))
	assert.Equal(t, 8, AutoClusters(40))
	assert.Equal(t, 20, AutoClusters(1000))
}
