// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"github.com/pdiddy/research-analytics/internal/temporal"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// Table and list sizes in the rendered report.
const (
	keywordRows = 15
	trendRows   = 15
	changeRows  = 10
)

// Section is one rendered section header.
type Section struct {
	Key    string
	Title  string
	Status Status
	Reason string
}

// OK reports whether the section has content.
func (s Section) OK() bool {
	return s.Status == StatusOK
}

// KeywordTable is one method's keyword table.
type KeywordTable struct {
	Method  types.Method
	Entries []types.KeywordEntry
	Skipped int

	// Inputs is the number of texts offered to the method, analyzed or
	// skipped.
	Inputs int
}

// ClusterRow is one row of the cluster table.
type ClusterRow struct {
	Stats types.ClusterStats
	Topic *types.ClusterTopic
}

// StageRow is one row of the lifecycle table.
type StageRow struct {
	Stage types.LifecycleStage
	Count int
}

// Report is the view model rendered by the templates.
type Report struct {
	Title     string
	RunID     string
	Generated string
	Source    string
	NoData    bool

	Sections map[string]Section
	Ordered  []Section

	Corpus struct {
		Loaded, Skipped, Undated int
		Occurrences              int
		UniqueKeywords           int

		// Records counts every input record, loaded or skipped.
		Records int
	}

	APIKeywords []types.KeywordEntry
	Keywords    []KeywordTable

	Clustering *types.ClusterResult
	Clusters   []ClusterRow
	Model      string

	StartYear, EndYear int
	Trends             []types.TrendRecord
	Stages             []StageRow
	Comparisons        []types.PeriodComparison
	Volume             []types.VolumePoint

	// Patterns lists the tracked keywords with a pattern signal.
	Patterns       []types.TemporalPattern
	PatternSummary *temporal.PatternReport

	Figures []FigureRef
}

// Build selects and arranges results for rendering.
func Build(r *Results) Report {
	rep := Report{
		Title:     "Research analytics report",
		RunID:     r.RunID,
		Generated: r.Generated.UTC().Format("2006-01-02 15:04 MST"),
		Source:    r.Source,
		NoData:    r.NoData(),
		Sections:  make(map[string]Section, len(SectionOrder)),
	}
	for _, key := range SectionOrder {
		st, ok := r.Sections[key]
		if !ok {
			st = SectionStatus{Status: StatusSkipped, Reason: "not run"}
		}
		s := Section{Key: key, Title: sectionTitles[key], Status: st.Status, Reason: st.Reason}
		rep.Sections[key] = s
		rep.Ordered = append(rep.Ordered, s)
	}

	rep.Corpus.Loaded = r.Corpus.Loaded
	rep.Corpus.Skipped = r.Corpus.Skipped
	rep.Corpus.Undated = r.Corpus.Undated
	rep.Corpus.Records = r.Corpus.Loaded + r.Corpus.Skipped
	rep.Corpus.Occurrences = r.APIKeywords.Occurrences
	rep.Corpus.UniqueKeywords = len(r.APIKeywords.Entries)

	rep.APIKeywords = head(r.APIKeywords.Entries, keywordRows)
	for _, set := range r.KeywordSets {
		rep.Keywords = append(rep.Keywords, KeywordTable{
			Method:  set.Method,
			Entries: head(set.Keywords, keywordRows),
			Skipped: set.Skipped,
			Inputs:  set.Documents + set.Skipped,
		})
	}

	if r.Clustering != nil {
		rep.Clustering = r.Clustering
		topics := make(map[int]*types.ClusterTopic, len(r.Topics))
		for i := range r.Topics {
			topics[r.Topics[i].Label] = &r.Topics[i]
		}
		for _, c := range r.Clustering.Clusters {
			rep.Clusters = append(rep.Clusters, ClusterRow{Stats: c, Topic: topics[c.Label]})
		}
	}
	if r.Embeddings.Model.Name != "" {
		rep.Model = r.Embeddings.Model.String()
	}

	rep.StartYear, rep.EndYear = r.Trends.StartYear, r.Trends.EndYear
	rep.Trends = head(r.Trends.Trends, trendRows)
	if len(r.StageCounts) > 0 {
		for _, s := range types.LifecycleStages {
			rep.Stages = append(rep.Stages, StageRow{Stage: s, Count: r.StageCounts[s]})
		}
	}
	for _, c := range r.Comparisons {
		c.Changes = head(c.Changes, changeRows)
		rep.Comparisons = append(rep.Comparisons, c)
	}
	if r.Patterns != nil {
		rep.PatternSummary = r.Patterns
		rep.Patterns = head(r.Patterns.Notable(), trendRows)
	}
	rep.Volume = r.Volume
	rep.Figures = r.Figures
	return rep
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
