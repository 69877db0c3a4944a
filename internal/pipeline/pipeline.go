// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the analysis stages in order: corpus loading,
// keyword extraction, semantic clustering, temporal analysis, figures,
// and reporting. A stage that cannot run is marked in the results with
// the reason and the remaining stages still run, so every run produces a
// report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/cluster"
	"github.com/pdiddy/research-analytics/internal/corpus"
	"github.com/pdiddy/research-analytics/internal/embedding"
	"github.com/pdiddy/research-analytics/internal/keywords"
	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/internal/metrics"
	"github.com/pdiddy/research-analytics/internal/report"
	"github.com/pdiddy/research-analytics/internal/semantic"
	"github.com/pdiddy/research-analytics/internal/store"
	"github.com/pdiddy/research-analytics/internal/temporal"
	"github.com/pdiddy/research-analytics/internal/visualize"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// Options select what one run computes.
type Options struct {
	// Method is the text keyword method (default all).
	Method types.Method

	// ClusterMethod overrides the configured clustering method.
	ClusterMethod types.ClusterMethod

	// Terms are the keywords tracked over time. Empty tracks the top
	// API keywords, or the first text keyword set when the corpus
	// carries no API keywords.
	Terms []string

	// Skip lists sections not to compute: keywords, semantic, temporal, figures.
	Skip []string
}

func (o Options) skips(section string) bool {
	return slices.Contains(o.Skip, section)
}

// Pipeline holds the stage components of a run.
type Pipeline struct {
	cfg       types.PipelineConfig
	extractor *keywords.Extractor
	semantic  *semantic.Analyzer
	temporal  *temporal.Analyzer
	store     *store.Store
	log       *zap.Logger
	w         io.Writer
	now       func() time.Time
}

// New creates a Pipeline. embedder may be nil, in which case the semantic
// section is reported unavailable. st may be nil to skip persistence.
// Progress lines go to w.
func New(cfg types.PipelineConfig, embedder embedding.Embedder, st *store.Store, log *zap.Logger, w io.Writer) *Pipeline {
	log = logging.OrNop(log)
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{
		cfg:       cfg,
		extractor: keywords.NewExtractor(cfg, log),
		semantic:  semantic.NewAnalyzer(embedder, cfg, log),
		temporal:  temporal.NewAnalyzer(cfg.Temporal, log),
		store:     st,
		log:       log,
		w:         w,
		now:       time.Now,
	}
}

// Check rejects options that would fail before any computation.
func (p *Pipeline) Check(opts Options) error {
	if err := p.extractor.Check(methodOr(opts.Method)); err != nil {
		return err
	}
	if !opts.skips(report.SectionSemantic) {
		// AutoClusters never yields an invalid k, so any n > 0 checks the rest.
		if err := cluster.Validate(p.semantic.Params(opts.ClusterMethod, 10)); err != nil {
			return err
		}
	}
	return nil
}

// Run loads the corpus at input, analyzes it, writes every output file,
// and saves the run when a store is configured. The returned results are
// usable even when the error is a context error.
func (p *Pipeline) Run(ctx context.Context, input string, opts Options) (*report.Results, error) {
	if err := p.Check(opts); err != nil {
		return nil, err
	}

	pubs, summary, err := corpus.Load(input, p.log)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(p.w, "loaded %d records (skipped %d, undated %d)\n", summary.Loaded, summary.Skipped, summary.Undated)

	res, figs, runErr := p.Analyze(ctx, pubs, summary, input, opts)

	if _, err := p.Write(res, figs); err != nil {
		return res, err
	}

	if p.store != nil {
		// Saving must not depend on the possibly cancelled run context.
		if err := p.store.SaveRun(context.WithoutCancel(ctx), res, pubs, p.cfg); err != nil {
			return res, fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(p.w, "saved run %s to %s\n", res.RunID, p.store.Path())
	}

	p.printSummary(res)
	return res, runErr
}

// Analyze runs every stage over pubs without writing files. It returns the
// results and the rendered figures. A context error is returned together
// with the partial results; the sections that did not finish are marked.
func (p *Pipeline) Analyze(ctx context.Context, pubs []types.Publication, summary corpus.Summary, source string, opts Options) (*report.Results, []visualize.Figure, error) {
	res := report.NewResults(uuid.NewString(), source, p.now().UTC())
	res.Corpus = summary

	if len(pubs) == 0 {
		for _, s := range []string{report.SectionCorpus, report.SectionKeywords, report.SectionSemantic, report.SectionTemporal} {
			res.Mark(s, report.StatusNoData, "empty corpus")
		}
		figs := p.figuresStage(res, nil)
		return res, figs, nil
	}
	res.Mark(report.SectionCorpus, report.StatusOK, "")

	var runErr error
	stages := []struct {
		section string
		run     func(context.Context, *report.Results, []types.Publication, Options) error
	}{
		{report.SectionKeywords, p.keywordsStage},
		{report.SectionSemantic, p.semanticStage},
		{report.SectionTemporal, p.temporalStage},
	}
	for _, st := range stages {
		if opts.skips(st.section) {
			res.Mark(st.section, report.StatusSkipped, "disabled for this run")
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Mark(st.section, report.StatusSkipped, "cancelled")
			continue
		}
		start := time.Now()
		err := st.run(ctx, res, pubs, opts)
		metrics.StageDuration.WithLabelValues(st.section, string(res.Sections[st.section].Status)).Observe(time.Since(start).Seconds())
		if err != nil {
			// Only cancellation reaches here; other errors are section statuses.
			runErr = err
		}
	}

	var figs []visualize.Figure
	if opts.skips(report.SectionFigures) {
		res.Mark(report.SectionFigures, report.StatusSkipped, "disabled for this run")
	} else {
		start := time.Now()
		figs = p.figuresStage(res, pubs)
		metrics.StageDuration.WithLabelValues(report.SectionFigures, string(res.Sections[report.SectionFigures].Status)).Observe(time.Since(start).Seconds())
	}
	return res, figs, runErr
}

func (p *Pipeline) keywordsStage(_ context.Context, res *report.Results, pubs []types.Publication, opts Options) error {
	res.APIKeywords = keywords.ExtractAPIKeywords(pubs, p.cfg.Keywords.IncludeFieldsOfStudy)
	metrics.KeywordsExtracted.WithLabelValues(string(types.MethodAPI)).Set(float64(len(res.APIKeywords.Entries)))

	sets, err := p.extractor.ExtractPublicationKeywords(pubs, methodOr(opts.Method))
	if err != nil {
		res.Mark(report.SectionKeywords, report.StatusFailed, err.Error())
		return nil
	}
	res.KeywordSets = sets

	if len(sets) > 0 && sets[0].Skipped > 0 {
		metrics.RecordsSkippedTotal.WithLabelValues("keywords").Add(float64(sets[0].Skipped))
	}
	found := len(res.APIKeywords.Entries)
	for _, s := range sets {
		metrics.KeywordsExtracted.WithLabelValues(string(s.Method)).Set(float64(len(s.Keywords)))
		found += len(s.Keywords)
	}
	if found == 0 {
		res.Mark(report.SectionKeywords, report.StatusNoData, "no keywords found")
		return nil
	}
	res.Mark(report.SectionKeywords, report.StatusOK, "")
	return nil
}

func (p *Pipeline) semanticStage(ctx context.Context, res *report.Results, pubs []types.Publication, opts Options) error {
	texts := make([]string, len(pubs))
	ids := make([]string, len(pubs))
	for i, pub := range pubs {
		texts[i] = pub.Text()
		ids[i] = pub.ID
	}

	set, err := p.semantic.GenerateEmbeddings(ctx, texts)
	res.Embeddings = set
	switch {
	case errors.Is(err, semantic.ErrUnavailable):
		p.log.Warn("semantic analysis unavailable", zap.Error(err))
		res.Mark(report.SectionSemantic, report.StatusUnavailable, err.Error())
		return nil
	case ctx.Err() != nil:
		res.Markf(report.SectionSemantic, report.StatusFailed, "cancelled after %d of %d embeddings", set.Len(), len(texts))
		return ctx.Err()
	case err != nil:
		res.Mark(report.SectionSemantic, report.StatusFailed, err.Error())
		return nil
	}

	result, err := p.semantic.PerformClustering(ctx, set, opts.ClusterMethod)
	switch {
	case errors.Is(err, semantic.ErrInsufficientData):
		res.Mark(report.SectionSemantic, report.StatusInsufficientData, err.Error())
		return nil
	case ctx.Err() != nil:
		res.Mark(report.SectionSemantic, report.StatusFailed, "cancelled during clustering")
		return ctx.Err()
	case err != nil:
		res.Mark(report.SectionSemantic, report.StatusFailed, err.Error())
		return nil
	}
	res.Clustering = &result
	res.PublicationIDs = ids
	res.Topics = semantic.ClusterTopics(pubs, result)

	proj, err := p.semantic.ReduceDimensions(set, "", 0)
	if err != nil {
		p.log.Warn("skipping cluster projection", zap.Error(err))
		res.Markf(report.SectionSemantic, report.StatusOK, "projection omitted: %v", err)
		return nil
	}
	res.Projection = &proj
	res.Mark(report.SectionSemantic, report.StatusOK, "")
	return nil
}

func (p *Pipeline) temporalStage(_ context.Context, res *report.Results, pubs []types.Publication, opts Options) error {
	res.Volume = temporal.PublicationVolume(pubs)

	terms := p.trackedTerms(res, pubs, opts)
	if len(terms) == 0 {
		res.Mark(report.SectionTemporal, report.StatusNoData, "no keywords to track")
		return nil
	}

	res.Trends = p.temporal.AnalyzeKeywordLifecycle(pubs, terms)
	if res.Trends.Dated == 0 {
		res.Mark(report.SectionTemporal, report.StatusNoData, "no dated publications")
		return nil
	}
	res.StageCounts = temporal.StageCounts(res.Trends.Trends)

	if len(p.cfg.Temporal.Periods) > 1 {
		cmp, err := p.temporal.ComparePeriods(pubs, terms, p.cfg.Temporal.Periods)
		if err != nil {
			res.Mark(report.SectionTemporal, report.StatusFailed, err.Error())
			return nil
		}
		res.Comparisons = cmp
	}

	if res.Trends.Empty() {
		res.Mark(report.SectionTemporal, report.StatusNoData, "no tracked keyword reaches min_occurrences")
		return nil
	}
	patterns := temporal.DetectPatterns(res.Trends.Trends)
	res.Patterns = &patterns
	p.log.Debug("detected temporal patterns",
		zap.Int("analyzed", patterns.Analyzed),
		zap.Int("anomalies", patterns.WithAnomalies),
		zap.Int("change_points", patterns.WithChangePoints))
	res.Mark(report.SectionTemporal, report.StatusOK, "")
	return nil
}

// trackedTerms picks the keywords followed over time.
func (p *Pipeline) trackedTerms(res *report.Results, pubs []types.Publication, opts Options) []string {
	if len(opts.Terms) > 0 {
		return opts.Terms
	}
	api := res.APIKeywords
	if api.ByPublication == nil {
		api = keywords.ExtractAPIKeywords(pubs, p.cfg.Keywords.IncludeFieldsOfStudy)
	}
	limit := p.cfg.Keywords.TopN
	var terms []string
	for _, e := range api.Entries {
		if len(terms) == limit {
			break
		}
		terms = append(terms, e.Term)
	}
	if len(terms) == 0 {
		for _, s := range res.KeywordSets {
			if !s.IsEmpty() {
				return s.Terms()
			}
		}
	}
	return terms
}

// figuresStage renders every figure kind. Failed renders are logged and
// dropped; the section is ok when at least one figure has data.
func (p *Pipeline) figuresStage(res *report.Results, pubs []types.Publication) []visualize.Figure {
	o := visualize.OptionsFromConfig(p.cfg.Visualization)
	freqs := displayFrequencies(res)

	var figs []visualize.Figure
	add := func(f visualize.Figure, err error) {
		if err != nil {
			p.log.Warn("failed to render figure", zap.Error(err))
			return
		}
		figs = append(figs, f)
	}

	add(visualize.CreateWordCloud(freqs, p.cfg.WordCloud).Figure(), nil)
	add(visualize.PlotKeywordFrequencies(freqs, o))
	add(visualize.PlotTemporalTrends(res.Trends.Trends, o))
	if res.Clustering != nil && res.Projection != nil {
		add(visualize.PlotClusters(*res.Projection, res.Clustering.Labels, titles(pubs), o))
	} else {
		add(visualize.NoDataFigure(visualize.KindClusters, omittedReason(res, report.SectionSemantic, "no projected embeddings"), o))
	}
	add(visualize.PlotLifecycle(res.Trends.Trends, o))
	add(visualize.PlotPublicationVolume(res.Volume, o))
	switch {
	case len(res.Comparisons) > 0:
		add(visualize.PlotPeriodComparison(res.Comparisons, o))
	case len(p.cfg.Temporal.Periods) < 2:
		add(visualize.NoDataFigure(visualize.KindComparison, "fewer than two periods configured", o))
	default:
		add(visualize.NoDataFigure(visualize.KindComparison, omittedReason(res, report.SectionTemporal, "no period comparison"), o))
	}

	withData := 0
	for _, f := range figs {
		res.Figures = append(res.Figures, report.FigureRef{Kind: f.Kind, File: f.Filename(), NoData: f.NoData, Reason: f.Reason})
		if !f.NoData {
			withData++
		}
	}
	switch {
	case len(figs) == 0:
		res.Mark(report.SectionFigures, report.StatusFailed, "no figure could be rendered")
	case withData == 0:
		res.Mark(report.SectionFigures, report.StatusNoData, "no data to plot")
	default:
		res.Mark(report.SectionFigures, report.StatusOK, "")
	}
	return figs
}

// displayFrequencies returns the API keyword frequencies, or those of the
// first non-empty text keyword set.
func displayFrequencies(res *report.Results) map[string]int {
	if len(res.APIKeywords.Entries) > 0 {
		return res.APIKeywords.Set().Frequencies()
	}
	for _, s := range res.KeywordSets {
		if !s.IsEmpty() {
			return s.Frequencies()
		}
	}
	return map[string]int{}
}

func omittedReason(res *report.Results, section, fallback string) string {
	if s := res.Sections[section]; s.Status != report.StatusOK && s.Reason != "" {
		return s.Reason
	}
	return fallback
}

func titles(pubs []types.Publication) []string {
	out := make([]string, len(pubs))
	for i, p := range pubs {
		out[i] = p.Title
	}
	return out
}

func methodOr(m types.Method) types.Method {
	if m == "" {
		return types.MethodAll
	}
	return m
}

func (p *Pipeline) printSummary(res *report.Results) {
	fmt.Fprintf(p.w, "\nrun %s\n", res.RunID)
	for _, s := range report.SectionOrder {
		st := res.Sections[s]
		if st.Reason != "" {
			fmt.Fprintf(p.w, "  %-9s %s (%s)\n", s, st.Status, st.Reason)
			continue
		}
		fmt.Fprintf(p.w, "  %-9s %s\n", s, st.Status)
	}
}
