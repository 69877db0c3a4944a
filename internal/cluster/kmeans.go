// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// kmeans runs NInit seeded k-means++ restarts and keeps the labeling with
// the lowest inertia. The same RandomState always yields the same labels.
func kmeans(ctx context.Context, vectors [][]float64, params types.ClusterParams) ([]int, float64, error) {
	seed := uint64(params.RandomState)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var (
		best        []int
		bestInertia = math.Inf(1)
	)
	for run := 0; run < params.NInit; run++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("kmeans restart %d: %w", run, err)
		}
		labels, inertia := lloyd(vectors, seedCenters(vectors, params.NClusters, rng), params.MaxIter)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return canonicalLabels(best), bestInertia, nil
}

// seedCenters picks k initial centers with k-means++: each next center is
// drawn with probability proportional to its squared distance from the
// nearest chosen center.
func seedCenters(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(vectors[rng.IntN(len(vectors))]))

	dist := make([]float64, len(vectors))
	for len(centers) < k {
		total := 0.0
		for i, v := range vectors {
			dist[i] = nearest(v, centers).dist
			total += dist[i]
		}
		if total == 0 {
			break
		}
		target := rng.Float64() * total
		pick := len(vectors) - 1
		for i, d := range dist {
			target -= d
			if target < 0 && d > 0 {
				pick = i
				break
			}
		}
		if dist[pick] == 0 {
			pick = farthest(vectors, dist)
		}
		centers = append(centers, clone(vectors[pick]))
	}
	return centers
}

// lloyd alternates assignment and mean updates until labels stop changing
// or maxIter is reached. An emptied cluster is reseeded with the point
// farthest from its own center so every cluster keeps a member.
func lloyd(vectors [][]float64, centers [][]float64, maxIter int) ([]int, float64) {
	k := len(centers)
	dims := len(vectors[0])
	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = -1
	}
	dist := make([]float64, len(vectors))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range vectors {
			n := nearest(v, centers)
			dist[i] = n.dist
			if labels[i] != n.index {
				labels[i] = n.index
				changed = true
			}
		}

		sizes := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, v := range vectors {
			sizes[labels[i]]++
			floats.Add(sums[labels[i]], v)
		}
		for c := range centers {
			if sizes[c] > 0 {
				continue
			}
			pick := farthest(vectors, dist)
			if sizes[labels[pick]] < 2 {
				continue
			}
			sizes[labels[pick]]--
			floats.Sub(sums[labels[pick]], vectors[pick])
			labels[pick] = c
			dist[pick] = 0
			sizes[c] = 1
			copy(sums[c], vectors[pick])
			changed = true
		}
		for c := range centers {
			if sizes[c] > 0 {
				floats.ScaleTo(centers[c], 1/float64(sizes[c]), sums[c])
			}
		}
		if !changed {
			break
		}
	}

	inertia := 0.0
	for i, v := range vectors {
		inertia += sqDist(v, centers[labels[i]])
	}
	return labels, inertia
}

// canonicalLabels renumbers clusters in order of first appearance.
func canonicalLabels(labels []int) []int {
	remap := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		m, ok := remap[l]
		if !ok {
			m = len(remap)
			remap[l] = m
		}
		out[i] = m
	}
	return out
}

type match struct {
	index int
	dist  float64
}

func nearest(v []float64, centers [][]float64) match {
	best := match{index: -1, dist: math.Inf(1)}
	for c, center := range centers {
		if d := sqDist(v, center); d < best.dist {
			best = match{index: c, dist: d}
		}
	}
	return best
}

func farthest(vectors [][]float64, dist []float64) int {
	return floats.MaxIdx(dist[:len(vectors)])
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
