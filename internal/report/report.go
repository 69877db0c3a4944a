// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders pipeline results as Markdown or HTML. It only
// selects and formats what the analysis stages produced; sections that
// could not be computed are listed with the reason they were omitted.
package report

import (
	"fmt"
	"time"

	"github.com/pdiddy/research-analytics/internal/corpus"
	"github.com/pdiddy/research-analytics/internal/temporal"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// Status is the outcome of one pipeline section.
type Status string

const (
	StatusOK               Status = "ok"
	StatusNoData           Status = "no_data"
	StatusUnavailable      Status = "unavailable"
	StatusInsufficientData Status = "insufficient_data"
	StatusFailed           Status = "failed"
	StatusSkipped          Status = "skipped"
)

// Section keys, in report order.
const (
	SectionCorpus   = "corpus"
	SectionKeywords = "keywords"
	SectionSemantic = "semantic"
	SectionTemporal = "temporal"
	SectionFigures  = "figures"
)

// SectionOrder lists the sections in the order they are rendered.
var SectionOrder = []string{SectionCorpus, SectionKeywords, SectionSemantic, SectionTemporal, SectionFigures}

var sectionTitles = map[string]string{
	SectionCorpus:   "Corpus",
	SectionKeywords: "Keywords",
	SectionSemantic: "Semantic clusters",
	SectionTemporal: "Temporal trends",
	SectionFigures:  "Figures",
}

// SectionStatus records how one section ended.
type SectionStatus struct {
	Status Status `json:"status" yaml:"status"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// FigureRef points at a written figure.
type FigureRef struct {
	Kind   string `json:"kind" yaml:"kind"`
	File   string `json:"file" yaml:"file"`
	NoData bool   `json:"no_data,omitempty" yaml:"no_data,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Results is everything the pipeline produced for one run.
type Results struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Generated time.Time `json:"generated" yaml:"generated"`
	Source    string    `json:"source" yaml:"source"`

	Corpus corpus.Summary `json:"corpus" yaml:"corpus"`

	APIKeywords types.APIKeywords  `json:"api_keywords" yaml:"api_keywords"`
	KeywordSets []types.KeywordSet `json:"keyword_sets" yaml:"keyword_sets"`

	Embeddings     types.EmbeddingSet   `json:"embeddings" yaml:"embeddings"`
	Clustering     *types.ClusterResult `json:"clustering,omitempty" yaml:"clustering,omitempty"`
	Topics         []types.ClusterTopic `json:"topics,omitempty" yaml:"topics,omitempty"`
	Projection     *types.Projection    `json:"projection,omitempty" yaml:"projection,omitempty"`
	PublicationIDs []string             `json:"publication_ids,omitempty" yaml:"publication_ids,omitempty"`

	Trends      temporal.TrendReport         `json:"trends" yaml:"trends"`
	StageCounts map[types.LifecycleStage]int `json:"stage_counts,omitempty" yaml:"stage_counts,omitempty"`
	Comparisons []types.PeriodComparison     `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	Patterns    *temporal.PatternReport      `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Volume      []types.VolumePoint          `json:"volume,omitempty" yaml:"volume,omitempty"`

	Figures []FigureRef `json:"figures,omitempty" yaml:"figures,omitempty"`

	Sections map[string]SectionStatus `json:"sections" yaml:"sections"`
}

// NewResults returns Results with every section marked skipped.
func NewResults(runID, source string, generated time.Time) *Results {
	r := &Results{
		RunID:     runID,
		Source:    source,
		Generated: generated,
		Sections:  make(map[string]SectionStatus, len(SectionOrder)),
	}
	for _, s := range SectionOrder {
		r.Sections[s] = SectionStatus{Status: StatusSkipped, Reason: "not run"}
	}
	return r
}

// Mark records the status of a section.
func (r *Results) Mark(section string, status Status, reason string) {
	r.Sections[section] = SectionStatus{Status: status, Reason: reason}
}

// Markf records the status of a section with a formatted reason.
func (r *Results) Markf(section string, status Status, format string, args ...any) {
	r.Mark(section, status, fmt.Sprintf(format, args...))
}

// NoData reports whether the corpus section found no records.
func (r *Results) NoData() bool {
	return r.Sections[SectionCorpus].Status == StatusNoData
}
