// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// Silhouette returns the mean silhouette coefficient over non-noise points.
// It is nil unless there are at least 2 clusters and fewer clusters than
// points. Points alone in their cluster score 0.
func Silhouette(vectors [][]float64, labels []int) *float64 {
	groups := groupByLabel(labels)
	n := 0
	for _, idx := range groups {
		n += len(idx)
	}
	if len(groups) < 2 || len(groups) >= n {
		return nil
	}

	sum := 0.0
	for label, members := range groups {
		for _, i := range members {
			if len(members) == 1 {
				continue
			}
			a := meanDistance(vectors, i, members) * float64(len(members)) / float64(len(members)-1)
			b := math.Inf(1)
			for other, idx := range groups {
				if other == label {
					continue
				}
				b = math.Min(b, meanDistance(vectors, i, idx))
			}
			if m := math.Max(a, b); m > 0 {
				sum += (b - a) / m
			}
		}
	}
	s := sum / float64(n)
	return &s
}

// CalinskiHarabasz returns the variance ratio criterion over non-noise
// points, nil under the same conditions as Silhouette. A zero
// within-cluster dispersion scores 1.
func CalinskiHarabasz(vectors [][]float64, labels []int) *float64 {
	groups := groupByLabel(labels)
	var all []int
	for _, idx := range groups {
		all = append(all, idx...)
	}
	k, n := len(groups), len(all)
	if k < 2 || k >= n {
		return nil
	}

	mean := centroid(vectors, all)
	between, within := 0.0, 0.0
	for _, members := range groups {
		c := centroid(vectors, members)
		between += float64(len(members)) * sqDist(c, mean)
		for _, i := range members {
			within += sqDist(vectors[i], c)
		}
	}
	score := 1.0
	if within != 0 {
		score = between * float64(n-k) / (within * float64(k-1))
	}
	return &score
}

// Stats describes every non-noise cluster, ordered by label. Distances are
// Euclidean distances of members to their centroid; StdDistance is the
// population standard deviation.
func Stats(vectors [][]float64, labels []int) []types.ClusterStats {
	groups := groupByLabel(labels)
	keys := make([]int, 0, len(groups))
	for l := range groups {
		keys = append(keys, l)
	}
	slices.Sort(keys)

	out := make([]types.ClusterStats, 0, len(keys))
	for _, l := range keys {
		members := groups[l]
		c := centroid(vectors, members)
		dist := make([]float64, len(members))
		for j, i := range members {
			dist[j] = floats.Distance(vectors[i], c, 2)
		}
		mean := stat.Mean(dist, nil)
		out = append(out, types.ClusterStats{
			Label:        l,
			Size:         len(members),
			MeanDistance: mean,
			MaxDistance:  floats.Max(dist),
			MinDistance:  floats.Min(dist),
			StdDistance:  math.Sqrt(stat.PopVariance(dist, nil)),
			CentroidNorm: floats.Norm(c, 2),
		})
	}
	return out
}

func groupByLabel(labels []int) map[int][]int {
	groups := make(map[int][]int)
	for i, l := range labels {
		if l == types.NoiseLabel {
			continue
		}
		groups[l] = append(groups[l], i)
	}
	return groups
}

func centroid(vectors [][]float64, members []int) []float64 {
	c := make([]float64, len(vectors[members[0]]))
	for _, i := range members {
		floats.Add(c, vectors[i])
	}
	floats.Scale(1/float64(len(members)), c)
	return c
}

// meanDistance is the mean distance from vectors[i] to the members,
// including i itself when it is a member.
func meanDistance(vectors [][]float64, i int, members []int) float64 {
	sum := 0.0
	for _, j := range members {
		sum += floats.Distance(vectors[i], vectors[j], 2)
	}
	return sum / float64(len(members))
}
