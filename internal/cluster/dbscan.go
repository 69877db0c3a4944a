// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// dbscan labels density-connected points. A point is core when at least
// minSamples points, itself included, lie within eps. Points reachable from
// no core point get types.NoiseLabel. Clusters are numbered in discovery
// order starting from the first vector.
func dbscan(vectors [][]float64, eps float64, minSamples int) []int {
	const unvisited = -2
	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = unvisited
	}

	neighbours := func(i int) []int {
		var out []int
		for j, v := range vectors {
			if floats.Distance(vectors[i], v, 2) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	next := 0
	for i := range vectors {
		if labels[i] != unvisited {
			continue
		}
		seeds := neighbours(i)
		if len(seeds) < minSamples {
			labels[i] = types.NoiseLabel
			continue
		}
		cluster := next
		next++
		labels[i] = cluster
		for q := 0; q < len(seeds); q++ {
			j := seeds[q]
			if labels[j] == types.NoiseLabel {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			if more := neighbours(j); len(more) >= minSamples {
				seeds = append(seeds, more...)
			}
		}
	}
	return labels
}
