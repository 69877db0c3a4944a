// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-analytics/pkg/types"
)

func TestSilhouetteKnownValue(t *testing.T) {
	vectors := [][]float64{{0}, {1}, {10}, {11}}
	s := Silhouette(vectors, []int{0, 0, 1, 1})
	require.NotNil(t, s)
	// a = 1 everywhere; b = 9.5 for the inner points and 10.5 for the outer.
	want := ((9.5-1)/9.5*2 + (10.5-1)/10.5*2) / 4
	assert.InDelta(t, want, *s, 1e-9)
}

func TestSilhouetteUndefined(t *testing.T) {
	vectors := [][]float64{{0}, {1}, {2}}
	assert.Nil(t, Silhouette(vectors, []int{0, 0, 0}))
	assert.Nil(t, Silhouette(vectors, []int{0, 1, 2}))
	assert.Nil(t, Silhouette(vectors, []int{0, types.NoiseLabel, types.NoiseLabel}))
}

func TestSilhouetteSingletonScoresZero(t *testing.T) {
	vectors := [][]float64{{0}, {0}, {5}}
	s := Silhouette(vectors, []int{0, 0, 1})
	require.NotNil(t, s)
	// The pair scores 1 each, the singleton 0.
	assert.InDelta(t, 2.0/3.0, *s, 1e-9)
}

func TestCalinskiHarabaszKnownValue(t *testing.T) {
	vectors := [][]float64{{0}, {2}, {10}, {12}}
	ch := CalinskiHarabasz(vectors, []int{0, 0, 1, 1})
	require.NotNil(t, ch)
	// between = 2*25 + 2*25 = 100, within = 4, (100/1)/(4/2) = 50
	assert.InDelta(t, 50.0, *ch, 1e-9)
}

func TestCalinskiHarabaszZeroDispersion(t *testing.T) {
	vectors := [][]float64{{0}, {0}, {3}, {3}}
	ch := CalinskiHarabasz(vectors, []int{0, 0, 1, 1})
	require.NotNil(t, ch)
	assert.Equal(t, 1.0, *ch)
}

func TestStats(t *testing.T) {
	vectors := [][]float64{{0, 0}, {2, 0}, {10, 10}, {7, 7}}
	stats := Stats(vectors, []int{1, 1, types.NoiseLabel, 0})
	require.Len(t, stats, 2)

	assert.Equal(t, 0, stats[0].Label)
	assert.Equal(t, 1, stats[0].Size)
	assert.Zero(t, stats[0].MeanDistance)
	assert.InDelta(t, 9.899494936611665, stats[0].CentroidNorm, 1e-9)

	assert.Equal(t, 1, stats[1].Label)
	assert.Equal(t, 2, stats[1].Size)
	assert.InDelta(t, 1.0, stats[1].MeanDistance, 1e-12)
	assert.InDelta(t, 1.0, stats[1].MaxDistance, 1e-12)
	assert.InDelta(t, 1.0, stats[1].MinDistance, 1e-12)
	assert.InDelta(t, 0.0, stats[1].StdDistance, 1e-12)
	assert.InDelta(t, 1.0, stats[1].CentroidNorm, 1e-12)
}
