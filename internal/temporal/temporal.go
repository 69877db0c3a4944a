// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package temporal builds per-keyword yearly time series from publication
// records and derives growth rates, lifecycle stages, period comparisons,
// and publication volume. Every series covers each year of the corpus
// range, with zero years present.
package temporal

import (
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/research-analytics/internal/keywords"
	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/internal/metrics"
	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// TrendReport is the result of a trend or lifecycle analysis.
type TrendReport struct {
	Trends []types.TrendRecord `json:"trends" yaml:"trends"`

	// StartYear and EndYear bound every series. Both are 0 when no record
	// carries a year.
	StartYear int `json:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year"`

	// Dated counts records used; Undated counts records skipped for lack
	// of a year.
	Dated   int `json:"dated" yaml:"dated"`
	Undated int `json:"undated" yaml:"undated"`

	// Filtered counts terms dropped by min_occurrences.
	Filtered int `json:"filtered" yaml:"filtered"`
}

// Empty reports whether the report has no trends.
func (r TrendReport) Empty() bool {
	return len(r.Trends) == 0
}

// Analyzer computes keyword trends.
type Analyzer struct {
	cfg types.TemporalConfig
	log *zap.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(cfg types.TemporalConfig, log *zap.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, log: logging.OrNop(log)}
}

// record is one dated publication prepared for term matching.
type record struct {
	year     int
	doc      textproc.Document
	keywords map[string]bool
}

// index prepares the dated publications and returns them with the number
// of undated ones.
func index(pubs []types.Publication) ([]record, int) {
	out := make([]record, 0, len(pubs))
	undated := 0
	for i, p := range pubs {
		if !p.HasYear() {
			undated++
			continue
		}
		r := record{year: *p.Year, keywords: make(map[string]bool)}
		for _, k := range keywords.CleanKeywords(p.Keywords) {
			r.keywords[k] = true
		}
		if text := p.Text(); textproc.Valid(text) {
			r.doc = textproc.Analyze(i, text)
		}
		out = append(out, r)
	}
	return out, undated
}

// contains reports whether the record mentions the normalized term, either
// as a source keyword or as a contiguous word sequence in its text.
func (r record) contains(term, key string) bool {
	return r.keywords[term] || r.doc.ContainsKey(key)
}

func yearRange(recs []record) (int, int) {
	if len(recs) == 0 {
		return 0, 0
	}
	lo, hi := recs[0].year, recs[0].year
	for _, r := range recs[1:] {
		lo = min(lo, r.year)
		hi = max(hi, r.year)
	}
	return lo, hi
}

// AnalyzeKeywordTrends counts, per year, the records that mention each
// term. Terms are normalized and deduplicated; terms with fewer than
// min_occurrences total occurrences are dropped. Trends are ordered by
// total descending, then term. Stage is left empty.
func (a *Analyzer) AnalyzeKeywordTrends(pubs []types.Publication, terms []string) TrendReport {
	recs, undated := index(pubs)
	report := TrendReport{Dated: len(recs), Undated: undated, Trends: []types.TrendRecord{}}
	if undated > 0 {
		metrics.RecordsSkippedTotal.WithLabelValues("temporal").Add(float64(undated))
		a.log.Warn("skipping records without a year", zap.Int("undated", undated))
	}
	if len(recs) == 0 {
		return report
	}
	report.StartYear, report.EndYear = yearRange(recs)
	span := report.EndYear - report.StartYear + 1

	totals := make([]int, span)
	for _, r := range recs {
		totals[r.year-report.StartYear]++
	}

	for _, term := range normalizeTerms(terms) {
		key := textproc.TermKey(term)
		counts := make([]int, span)
		for _, r := range recs {
			if r.contains(term, key) {
				counts[r.year-report.StartYear]++
			}
		}
		t := buildTrend(term, report.StartYear, counts, totals)
		if t.Total < max(a.cfg.MinOccurrences, 1) {
			report.Filtered++
			continue
		}
		report.Trends = append(report.Trends, t)
	}

	sort.SliceStable(report.Trends, func(i, j int) bool {
		if report.Trends[i].Total != report.Trends[j].Total {
			return report.Trends[i].Total > report.Trends[j].Total
		}
		return report.Trends[i].Term < report.Trends[j].Term
	})
	a.log.Debug("analyzed keyword trends",
		zap.Int("terms", len(report.Trends)),
		zap.Int("start_year", report.StartYear),
		zap.Int("end_year", report.EndYear))
	return report
}

// AnalyzeKeywordLifecycle is AnalyzeKeywordTrends with every trend
// classified by Classify.
func (a *Analyzer) AnalyzeKeywordLifecycle(pubs []types.Publication, terms []string) TrendReport {
	report := a.AnalyzeKeywordTrends(pubs, terms)
	for i := range report.Trends {
		report.Trends[i].Stage = a.Classify(report.Trends[i].Points)
	}
	return report
}

// StageCounts returns how many trends are in each stage.
func StageCounts(trends []types.TrendRecord) map[types.LifecycleStage]int {
	out := make(map[types.LifecycleStage]int, len(types.LifecycleStages))
	for _, s := range types.LifecycleStages {
		out[s] = 0
	}
	for _, t := range trends {
		if t.Stage != "" {
			out[t.Stage]++
		}
	}
	return out
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := textproc.NormalizeTerm(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func buildTrend(term string, start int, counts, totals []int) types.TrendRecord {
	t := types.TrendRecord{
		Term:   term,
		Points: make([]types.YearCount, len(counts)),
		Growth: make([]types.GrowthRate, 0, max(len(counts)-1, 0)),
	}
	xs := make([]float64, len(counts))
	ys := make([]float64, len(counts))
	for i, c := range counts {
		year := start + i
		t.Points[i] = types.YearCount{Year: year, Count: c, Total: totals[i]}
		xs[i], ys[i] = float64(year), float64(c)
		t.Total += c
		if c > 0 {
			if t.FirstYear == 0 {
				t.FirstYear = year
			}
			t.LastYear = year
		}
		if c > t.PeakCount {
			t.PeakYear, t.PeakCount = year, c
		}
		if i > 0 {
			t.Growth = append(t.Growth, types.GrowthRate{
				From: year - 1,
				To:   year,
				Rate: rate(counts[i-1], c),
			})
		}
	}
	if len(counts) > 1 {
		_, t.Slope = stat.LinearRegression(xs, ys, nil, false)
	}
	return t
}

// rate is (after-before)/before, nil when before is 0.
func rate(before, after int) *float64 {
	if before == 0 {
		return nil
	}
	r := float64(after-before) / float64(before)
	return &r
}

// GrowthRate returns (count(p2)-count(p1))/count(p1) over a series, nil
// when p1 has no occurrences.
func GrowthRate(points []types.YearCount, p1, p2 types.Period) *float64 {
	return rate(periodCount(points, p1), periodCount(points, p2))
}

func periodCount(points []types.YearCount, p types.Period) int {
	n := 0
	for _, pt := range points {
		if p.Contains(pt.Year) {
			n += pt.Count
		}
	}
	return n
}
