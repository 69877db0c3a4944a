// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReducePCA(t *testing.T) {
	// Points on a line in 3D: all variance lies on the first component.
	vectors := [][]float64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}}
	p, err := Reduce(vectors, ReducePCA, 2)
	require.NoError(t, err)

	assert.Equal(t, ReducePCA, p.Method)
	assert.Equal(t, 2, p.Components)
	require.Len(t, p.Coords, 4)
	step := math.Sqrt(3)
	for i := 1; i < 4; i++ {
		require.Len(t, p.Coords[i], 2)
		assert.InDelta(t, step, math.Abs(p.Coords[i][0]-p.Coords[i-1][0]), 1e-9)
		assert.InDelta(t, 0, p.Coords[i][1], 1e-9)
	}
}

func TestReducePCAPadsMissingComponents(t *testing.T) {
	vectors := [][]float64{{0, 0}, {1, 2}}
	p, err := Reduce(vectors, ReducePCA, 3)
	require.NoError(t, err)
	for _, c := range p.Coords {
		require.Len(t, c, 3)
		assert.Zero(t, c[2])
	}
}

func TestReduceTSNEShape(t *testing.T) {
	vectors := make([][]float64, 12)
	for i := range vectors {
		vectors[i] = []float64{float64(i % 3), float64(i / 3), float64(i)}
	}
	p, err := Reduce(vectors, ReduceTSNE, 2)
	require.NoError(t, err)
	require.Len(t, p.Coords, 12)
	for _, c := range p.Coords {
		assert.Len(t, c, 2)
	}
}

func TestReduceErrors(t *testing.T) {
	vectors := [][]float64{{0, 0}, {1, 1}}

	_, err := Reduce(vectors, ReducePCA, 4)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Reduce(vectors, ReduceUMAP, 2)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Reduce(vectors, "isomap", 2)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Reduce([][]float64{{1, 1}}, ReducePCA, 2)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
