// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package temporal

import "github.com/pdiddy/research-analytics/pkg/types"

// PublicationVolume counts dated publications per year over the full year
// range, zero years included. Growth is relative to the previous year and
// nil for the first year or after a zero year.
func PublicationVolume(pubs []types.Publication) []types.VolumePoint {
	byYear := make(map[int]int)
	lo, hi := 0, 0
	for _, p := range pubs {
		if !p.HasYear() {
			continue
		}
		y := *p.Year
		if len(byYear) == 0 || y < lo {
			lo = y
		}
		if len(byYear) == 0 || y > hi {
			hi = y
		}
		byYear[y]++
	}
	if len(byYear) == 0 {
		return []types.VolumePoint{}
	}
	out := make([]types.VolumePoint, 0, hi-lo+1)
	for y := lo; y <= hi; y++ {
		pt := types.VolumePoint{Year: y, Count: byYear[y]}
		if y > lo {
			pt.Growth = rate(byYear[y-1], pt.Count)
		}
		out = append(out, pt)
	}
	return out
}
