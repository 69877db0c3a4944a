// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"fmt"
	"math"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// Projection methods.
const (
	ReducePCA  = "pca"
	ReduceTSNE = "tsne"
	ReduceUMAP = "umap"
)

const (
	tsneMaxPerplexity = 30
	tsneLearningRate  = 200
	tsneMaxIter       = 300
)

// Reduce projects vectors to 2 or 3 components for display. PCA is
// deterministic; t-SNE is not seeded and is for display only. UMAP has no
// implementation and returns ErrUnavailable.
func Reduce(vectors [][]float64, method string, components int) (types.Projection, error) {
	if components != 2 && components != 3 {
		return types.Projection{}, fmt.Errorf("%w: components must be 2 or 3, got %d", ErrInvalidParameter, components)
	}
	switch method {
	case ReducePCA, ReduceTSNE:
	case ReduceUMAP:
		return types.Projection{}, fmt.Errorf("%w: %s", ErrUnavailable, method)
	default:
		return types.Projection{}, fmt.Errorf("%w: unknown reduction method %q", ErrInvalidParameter, method)
	}
	if err := checkShape(vectors); err != nil {
		return types.Projection{}, err
	}
	if len(vectors) < 2 {
		return types.Projection{}, fmt.Errorf("%w: %d vectors", ErrInsufficientData, len(vectors))
	}

	x := denseOf(vectors)
	var (
		y   mat.Matrix
		err error
	)
	if method == ReducePCA {
		y, err = pca(x, components)
	} else {
		y = embedTSNE(x, components)
	}
	if err != nil {
		return types.Projection{}, err
	}

	coords := make([][]float64, len(vectors))
	for i := range coords {
		coords[i] = make([]float64, components)
		for j := range components {
			coords[i][j] = y.At(i, j)
		}
	}
	return types.Projection{Method: method, Components: components, Coords: coords}, nil
}

// pca projects the centered data onto its leading principal directions.
// Missing directions (fewer points or dimensions than components) are zero.
func pca(x *mat.Dense, components int) (mat.Matrix, error) {
	n, d := x.Dims()
	var pc stat.PC
	if !pc.PrincipalComponents(x, nil) {
		return nil, fmt.Errorf("%w: principal component analysis failed", ErrInsufficientData)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, cols := vecs.Dims()
	k := min(components, cols)

	centered := mat.NewDense(n, d, nil)
	for j := range d {
		col := mat.Col(nil, j, x)
		m := stat.Mean(col, nil)
		for i := range n {
			centered.Set(i, j, col[i]-m)
		}
	}

	out := mat.NewDense(n, components, nil)
	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, k))
	for i := range n {
		for j := range k {
			out.Set(i, j, proj.At(i, j))
		}
	}
	return out, nil
}

func embedTSNE(x *mat.Dense, components int) mat.Matrix {
	n, _ := x.Dims()
	perplexity := math.Max(1, math.Min(tsneMaxPerplexity, float64(n-1)/3))
	t := tsne.NewTSNE(components, perplexity, tsneLearningRate, tsneMaxIter, false)
	t.EmbedData(x, nil)
	var y mat.Matrix = t.Y
	return y
}

func denseOf(vectors [][]float64) *mat.Dense {
	n, d := len(vectors), len(vectors[0])
	data := make([]float64, 0, n*d)
	for _, v := range vectors {
		data = append(data, v...)
	}
	return mat.NewDense(n, d, data)
}
