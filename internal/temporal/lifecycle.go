// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package temporal

import "github.com/pdiddy/research-analytics/pkg/types"

// Classify assigns a lifecycle stage to a yearly series. With W the recent
// window, the rule is applied in order:
//
//  1. no occurrences at all, or none in the last W years: dormant
//  2. the series covers W years or fewer: mature
//  3. first occurrence falls inside the last W years: emerging
//  4. g = (recent mean - historical mean) / historical mean, where the
//     historical years run from the first occurrence up to the window;
//     g >= growth_threshold is growing, g <= -decline_threshold is
//     declining, anything else is mature.
func (a *Analyzer) Classify(points []types.YearCount) types.LifecycleStage {
	w := max(a.cfg.RecentWindow, 1)
	n := len(points)
	if n == 0 {
		return types.StageDormant
	}
	cut := max(n-w, 0)

	first, total, recent := -1, 0, 0
	for i, p := range points {
		total += p.Count
		if p.Count > 0 && first < 0 {
			first = i
		}
		if i >= cut {
			recent += p.Count
		}
	}
	switch {
	case total == 0 || recent == 0:
		return types.StageDormant
	case n <= w:
		return types.StageMature
	case first >= cut:
		return types.StageEmerging
	}

	historical := 0
	for _, p := range points[first:cut] {
		historical += p.Count
	}
	histMean := float64(historical) / float64(cut-first)
	recentMean := float64(recent) / float64(n-cut)
	g := (recentMean - histMean) / histMean
	switch {
	case g >= a.cfg.GrowthThreshold:
		return types.StageGrowing
	case g <= -a.cfg.DeclineThreshold:
		return types.StageDeclining
	default:
		return types.StageMature
	}
}
