// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LifecycleStage summarizes a keyword's multi-year frequency trajectory.
type LifecycleStage string

const (
	StageEmerging  LifecycleStage = "emerging"
	StageGrowing   LifecycleStage = "growing"
	StageMature    LifecycleStage = "mature"
	StageDeclining LifecycleStage = "declining"
	StageDormant   LifecycleStage = "dormant"
)

// LifecycleStages lists every stage in display order.
var LifecycleStages = []LifecycleStage{
	StageEmerging, StageGrowing, StageMature, StageDeclining, StageDormant,
}

// YearCount is one point of a keyword time series.
type YearCount struct {
	Year  int `json:"year" yaml:"year"`
	Count int `json:"count" yaml:"count"`

	// Total is the number of dated publications in that year.
	Total int `json:"total" yaml:"total"`
}

// GrowthRate is the relative change between two periods. Rate is nil when
// the earlier period has no occurrences.
type GrowthRate struct {
	From int      `json:"from" yaml:"from"`
	To   int      `json:"to" yaml:"to"`
	Rate *float64 `json:"rate" yaml:"rate"`
}

// TrendRecord is the per-keyword time series with derived signals.
type TrendRecord struct {
	Term      string         `json:"term" yaml:"term"`
	Points    []YearCount    `json:"points" yaml:"points"`
	Total     int            `json:"total" yaml:"total"`
	FirstYear int            `json:"first_year" yaml:"first_year"`
	LastYear  int            `json:"last_year" yaml:"last_year"`
	PeakYear  int            `json:"peak_year" yaml:"peak_year"`
	PeakCount int            `json:"peak_count" yaml:"peak_count"`
	Growth    []GrowthRate   `json:"growth" yaml:"growth"`
	Slope     float64        `json:"slope" yaml:"slope"`
	Stage     LifecycleStage `json:"stage" yaml:"stage"`
}

// Period is an inclusive year range.
type Period struct {
	Name  string `json:"name" yaml:"name" mapstructure:"name"`
	Start int    `json:"start" yaml:"start" mapstructure:"start"`
	End   int    `json:"end" yaml:"end" mapstructure:"end"`
}

// Contains reports whether year falls in the period.
func (p Period) Contains(year int) bool {
	return year >= p.Start && year <= p.End
}

// ChangeType classifies a keyword's change between two periods.
type ChangeType string

const (
	ChangeIncreased   ChangeType = "increased"
	ChangeDecreased   ChangeType = "decreased"
	ChangeStable      ChangeType = "stable"
	ChangeEmerged     ChangeType = "emerged"
	ChangeDisappeared ChangeType = "disappeared"
)

// KeywordChange is one keyword's movement between two periods.
type KeywordChange struct {
	Term   string     `json:"term" yaml:"term"`
	Before int        `json:"before" yaml:"before"`
	After  int        `json:"after" yaml:"after"`
	Growth *float64   `json:"growth" yaml:"growth"`
	Type   ChangeType `json:"type" yaml:"type"`
}

// PeriodComparison compares keyword counts of two periods.
type PeriodComparison struct {
	Before  Period          `json:"before" yaml:"before"`
	After   Period          `json:"after" yaml:"after"`
	Common  int             `json:"common" yaml:"common"`
	Changes []KeywordChange `json:"changes" yaml:"changes"`
}

// VolumePoint is the publication count of one year.
type VolumePoint struct {
	Year   int      `json:"year" yaml:"year"`
	Count  int      `json:"count" yaml:"count"`
	Growth *float64 `json:"growth" yaml:"growth"`
}

// YearAnomaly is a year whose count lies far from the series mean.
type YearAnomaly struct {
	Year   int     `json:"year" yaml:"year"`
	Count  int     `json:"count" yaml:"count"`
	ZScore float64 `json:"z_score" yaml:"z_score"`
}

// ChangePoint is a year where the local trend slope shifts.
type ChangePoint struct {
	Year        int     `json:"year" yaml:"year"`
	SlopeChange float64 `json:"slope_change" yaml:"slope_change"`
}

// TemporalPattern holds the pattern signals of one keyword series.
type TemporalPattern struct {
	Term string `json:"term" yaml:"term"`

	// Volatility is the coefficient of variation of the yearly counts.
	Volatility     float64 `json:"volatility" yaml:"volatility"`
	HighVolatility bool    `json:"high_volatility" yaml:"high_volatility"`

	Anomalies    []YearAnomaly `json:"anomalies" yaml:"anomalies"`
	ChangePoints []ChangePoint `json:"change_points" yaml:"change_points"`
}

// Notable reports whether the series shows any pattern signal.
func (p TemporalPattern) Notable() bool {
	return p.HighVolatility || len(p.Anomalies) > 0 || len(p.ChangePoints) > 0
}
