// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package temporal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// Pattern detection thresholds.
const (
	// AnomalyZ is the |z| at which a year counts as an anomaly.
	AnomalyZ = 2.0

	// HighVolatility is the coefficient of variation above which a series
	// is flagged.
	HighVolatility = 2.0

	// MinSlopeChange is the smallest slope shift, in records per year,
	// reported as a change point.
	MinSlopeChange = 0.5

	maxChangePoints = 5
	maxChangeWindow = 3
)

// PatternReport summarizes pattern detection over tracked keywords.
type PatternReport struct {
	Patterns []types.TemporalPattern `json:"patterns" yaml:"patterns"`

	Analyzed          int     `json:"analyzed" yaml:"analyzed"`
	WithAnomalies     int     `json:"with_anomalies" yaml:"with_anomalies"`
	WithChangePoints  int     `json:"with_change_points" yaml:"with_change_points"`
	HighVolatility    int     `json:"high_volatility" yaml:"high_volatility"`
	AverageVolatility float64 `json:"average_volatility" yaml:"average_volatility"`
}

// Notable returns the patterns with at least one signal, in input order.
func (r PatternReport) Notable() []types.TemporalPattern {
	var out []types.TemporalPattern
	for _, p := range r.Patterns {
		if p.Notable() {
			out = append(out, p)
		}
	}
	return out
}

// DetectPatterns runs SeriesPattern over every trend.
func DetectPatterns(trends []types.TrendRecord) PatternReport {
	rep := PatternReport{Patterns: make([]types.TemporalPattern, 0, len(trends))}
	sum := 0.0
	for _, t := range trends {
		p := SeriesPattern(t)
		rep.Patterns = append(rep.Patterns, p)
		sum += p.Volatility
		if len(p.Anomalies) > 0 {
			rep.WithAnomalies++
		}
		if len(p.ChangePoints) > 0 {
			rep.WithChangePoints++
		}
		if p.HighVolatility {
			rep.HighVolatility++
		}
	}
	rep.Analyzed = len(rep.Patterns)
	if rep.Analyzed > 0 {
		rep.AverageVolatility = sum / float64(rep.Analyzed)
	}
	return rep
}

// SeriesPattern derives the volatility, anomalous years, and change points
// of one yearly series.
//
// Anomalies are years with |z| >= AnomalyZ against the sample mean and
// standard deviation. Change points compare least-squares slopes over the
// w years before and from each year, w = min(3, n/3) with at least 2;
// shifts above MinSlopeChange are kept, largest first, at most 5.
func SeriesPattern(t types.TrendRecord) types.TemporalPattern {
	p := types.TemporalPattern{
		Term:         t.Term,
		Anomalies:    []types.YearAnomaly{},
		ChangePoints: []types.ChangePoint{},
	}
	n := len(t.Points)
	if n < 2 {
		return p
	}
	years := make([]float64, n)
	counts := make([]float64, n)
	for i, pt := range t.Points {
		years[i] = float64(pt.Year)
		counts[i] = float64(pt.Count)
	}

	mean, std := stat.MeanStdDev(counts, nil)
	if mean > 0 {
		p.Volatility = std / mean
		p.HighVolatility = p.Volatility > HighVolatility
	}
	if std > 0 {
		for i, c := range counts {
			if z := (c - mean) / std; math.Abs(z) >= AnomalyZ {
				p.Anomalies = append(p.Anomalies, types.YearAnomaly{Year: t.Points[i].Year, Count: t.Points[i].Count, ZScore: z})
			}
		}
	}

	w := min(maxChangeWindow, n/3)
	if w < 2 {
		return p
	}
	for i := w; i+w <= n; i++ {
		_, before := stat.LinearRegression(years[i-w:i], counts[i-w:i], nil, false)
		_, after := stat.LinearRegression(years[i:i+w], counts[i:i+w], nil, false)
		if d := after - before; math.Abs(d) > MinSlopeChange {
			p.ChangePoints = append(p.ChangePoints, types.ChangePoint{Year: t.Points[i].Year, SlopeChange: d})
		}
	}
	sort.SliceStable(p.ChangePoints, func(i, j int) bool {
		return math.Abs(p.ChangePoints[i].SlopeChange) > math.Abs(p.ChangePoints[j].SlopeChange)
	})
	if len(p.ChangePoints) > maxChangePoints {
		p.ChangePoints = p.ChangePoints[:maxChangePoints]
	}
	return p
}
