// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-analytics/internal/config"
	"github.com/pdiddy/research-analytics/internal/corpus"
	"github.com/pdiddy/research-analytics/internal/embedding"
	"github.com/pdiddy/research-analytics/internal/keywords"
	"github.com/pdiddy/research-analytics/internal/report"
	"github.com/pdiddy/research-analytics/internal/semantic"
	"github.com/pdiddy/research-analytics/internal/store"
	"github.com/pdiddy/research-analytics/internal/visualize"
	"github.com/pdiddy/research-analytics/pkg/types"
)

func TestMain(m *testing.M) {
	embedding.SetBackoffBase(time.Millisecond)
	os.Exit(m.Run())
}

// --- helpers ---

func testConfig(t *testing.T) types.PipelineConfig {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")
	cfg.Embedding.Dimensions = 64
	cfg.Embedding.BatchSize = 4
	cfg.Clustering.NInit = 2
	return cfg
}

func testEmbedder(cfg types.PipelineConfig) embedding.Embedder {
	return embedding.NewHashingEmbedder(cfg.Embedding.Model, cfg.Embedding.ModelVersion, cfg.Embedding.Dimensions)
}

func samplePublications() []types.Publication {
	var pubs []types.Publication
	for i := 0; i < 12; i++ {
		year := 2019 + i%6
		p := types.Publication{ID: fmt.Sprintf("p%02d", i), Year: types.IntPtr(year)}
		if i%2 == 0 {
			p.Title = fmt.Sprintf("Quantum computing with superconducting qubits %d", i)
			p.Abstract = "Quantum error correction improves superconducting qubits and quantum computing hardware."
			p.Keywords = []string{"Quantum Computing", "qubits"}
		} else {
			p.Title = fmt.Sprintf("Deep learning for image recognition %d", i)
			p.Abstract = "Convolutional neural networks and deep learning models improve image recognition accuracy."
			p.Keywords = []string{"Deep Learning", "neural networks"}
		}
		pubs = append(pubs, p)
	}
	return pubs
}

func writeCorpus(t *testing.T, pubs []types.Publication) string {
	t.Helper()
	data, err := json.Marshal(pubs)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "publications.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func status(res *report.Results, section string) report.Status {
	return res.Sections[section].Status
}

// cancellingEmbedder cancels the run after its first batch.
type cancellingEmbedder struct {
	inner  embedding.Embedder
	cancel context.CancelFunc
}

func (c *cancellingEmbedder) Model() types.ModelID { return c.inner.Model() }

func (c *cancellingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	defer c.cancel()
	return c.inner.EmbedBatch(ctx, texts)
}

// --- tests ---

func TestRunFullPipeline(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	p := New(cfg, testEmbedder(cfg), nil, nil, &out)

	res, err := p.Run(context.Background(), writeCorpus(t, samplePublications()), Options{})
	require.NoError(t, err)

	for _, s := range report.SectionOrder {
		assert.Equal(t, report.StatusOK, status(res, s), s)
	}
	assert.Equal(t, 12, res.Corpus.Loaded)
	require.Len(t, res.KeywordSets, 3)
	assert.Equal(t, types.MethodTFIDF, res.KeywordSets[0].Method)

	require.NotNil(t, res.Clustering)
	assert.Len(t, res.Clustering.Labels, 12)
	assert.Equal(t, 2, res.Clustering.NumClusters)
	require.NotNil(t, res.Projection)
	assert.Len(t, res.Projection.Coords, 12)
	assert.Len(t, res.PublicationIDs, 12)

	assert.False(t, res.Trends.Empty())
	assert.Equal(t, 2019, res.Trends.StartYear)
	assert.Equal(t, 2024, res.Trends.EndYear)
	assert.Len(t, res.Volume, 6)
	require.NotNil(t, res.Patterns)
	assert.Equal(t, len(res.Trends.Trends), res.Patterns.Analyzed)

	for _, name := range []string{
		"keywords-api.csv", "keywords-tfidf.csv", "keywords-rake.csv", "keywords-yake.csv",
		ClustersFile, TrendsFile, LifecycleFile,
		"wordcloud.svg", "frequencies.html", "trends.html", "clusters.html", "lifecycle.html", "volume.html",
		"comparison.html", MarkdownFile, HTMLFile,
	} {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, out.String(), "loaded 12 records")
	assert.Contains(t, out.String(), "run "+res.RunID)
}

func TestRunEmptyCorpus(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, testEmbedder(cfg), nil, nil, nil)

	res, err := p.Run(context.Background(), writeCorpus(t, []types.Publication{}), Options{})
	require.NoError(t, err)

	assert.True(t, res.NoData())
	for _, s := range report.SectionOrder {
		assert.Equal(t, report.StatusNoData, status(res, s), s)
	}
	for _, f := range res.Figures {
		assert.True(t, f.NoData, f.Kind)
	}

	md, err := os.ReadFile(filepath.Join(cfg.Output.Dir, MarkdownFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "No data")
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, HTMLFile))
	assert.NoError(t, err)
}

func TestRunWithoutEmbedder(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil, nil, nil, nil)

	res, err := p.Run(context.Background(), writeCorpus(t, samplePublications()), Options{})
	require.NoError(t, err)

	assert.Equal(t, report.StatusUnavailable, status(res, report.SectionSemantic))
	assert.Equal(t, report.StatusOK, status(res, report.SectionKeywords))
	assert.Equal(t, report.StatusOK, status(res, report.SectionTemporal))
	assert.Nil(t, res.Clustering)

	_, err = os.Stat(filepath.Join(cfg.Output.Dir, ClustersFile))
	assert.True(t, os.IsNotExist(err))
	md, err := os.ReadFile(filepath.Join(cfg.Output.Dir, MarkdownFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "Omitted")
}

func TestAnalyzeInsufficientData(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, testEmbedder(cfg), nil, nil, nil)
	pubs := samplePublications()[:1]

	res, _, err := p.Analyze(context.Background(), pubs, corpus.Summary{Loaded: 1}, "mem", Options{})
	require.NoError(t, err)
	assert.Equal(t, report.StatusInsufficientData, status(res, report.SectionSemantic))
	assert.Equal(t, report.StatusOK, status(res, report.SectionKeywords))
}

func TestAnalyzeCancelledDuringEmbedding(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := New(cfg, &cancellingEmbedder{inner: testEmbedder(cfg), cancel: cancel}, nil, nil, nil)

	res, figs, err := p.Analyze(ctx, samplePublications(), corpus.Summary{Loaded: 12}, "mem", Options{})
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, report.StatusOK, status(res, report.SectionKeywords))
	assert.Equal(t, report.StatusFailed, status(res, report.SectionSemantic))
	assert.Contains(t, res.Sections[report.SectionSemantic].Reason, "cancelled after 4 of 12")
	assert.Len(t, res.Embeddings.Vectors, 4)
	assert.False(t, res.Embeddings.Complete)
	assert.Equal(t, report.SectionStatus{Status: report.StatusSkipped, Reason: "cancelled"}, res.Sections[report.SectionTemporal])

	// Partial results still reach the figures and the report.
	assert.NotEmpty(t, figs)
	var md bytes.Buffer
	require.NoError(t, report.RenderMarkdown(&md, report.Build(res)))
	assert.Contains(t, md.String(), "cancelled")
}

func TestRunSkipsSections(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, testEmbedder(cfg), nil, nil, nil)

	res, err := p.Run(context.Background(), writeCorpus(t, samplePublications()),
		Options{Method: types.MethodRAKE, Skip: []string{report.SectionSemantic}})
	require.NoError(t, err)

	assert.Equal(t, report.StatusSkipped, status(res, report.SectionSemantic))
	require.Len(t, res.KeywordSets, 1)
	assert.Equal(t, types.MethodRAKE, res.KeywordSets[0].Method)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "keywords-tfidf.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunTrackedTerms(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil, nil, nil, nil)

	res, err := p.Run(context.Background(), writeCorpus(t, samplePublications()),
		Options{Terms: []string{"Superconducting Qubits"}, Skip: []string{report.SectionSemantic}})
	require.NoError(t, err)

	require.Len(t, res.Trends.Trends, 1)
	tr := res.Trends.Trends[0]
	assert.Equal(t, "superconducting qubits", tr.Term)
	assert.Equal(t, 6, tr.Total)
}

func TestRunComparesPeriods(t *testing.T) {
	cfg := testConfig(t)
	cfg.Temporal.Periods = []types.Period{
		{Name: "early", Start: 2019, End: 2021},
		{Name: "late", Start: 2022, End: 2024},
	}
	p := New(cfg, nil, nil, nil, nil)

	res, err := p.Run(context.Background(), writeCorpus(t, samplePublications()), Options{Skip: []string{report.SectionSemantic}})
	require.NoError(t, err)
	require.Len(t, res.Comparisons, 1)
	assert.Equal(t, "early", res.Comparisons[0].Before.Name)

	var ref report.FigureRef
	for _, f := range res.Figures {
		if f.Kind == visualize.KindComparison {
			ref = f
		}
	}
	assert.Equal(t, "comparison.html", ref.File)
	assert.False(t, ref.NoData)
	html, err := os.ReadFile(filepath.Join(cfg.Output.Dir, ref.File))
	require.NoError(t, err)
	assert.Contains(t, string(html), "early (2019-2021) vs late (2022-2024)")
}

func TestRunSavesToStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Formats = []types.OutputFormat{types.OutputJSON, types.OutputYAML}
	st, err := store.NewStore(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "analytics")})
	require.NoError(t, err)
	defer st.Close()

	p := New(cfg, testEmbedder(cfg), st, nil, nil)
	res, err := p.Run(context.Background(), writeCorpus(t, samplePublications()), Options{})
	require.NoError(t, err)

	stored, err := st.LoadRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Sections, stored.Sections)
	assert.Equal(t, res.Clustering.Labels, stored.Clustering.Labels)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, JSONFile))
	require.NoError(t, err)
	var fromFile report.Results
	require.NoError(t, json.Unmarshal(data, &fromFile))
	assert.Equal(t, res.RunID, fromFile.RunID)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, YAMLFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, MarkdownFile))
	assert.True(t, os.IsNotExist(err))
}

func TestCheckRejectsBadOptions(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil, nil, nil, nil)

	assert.ErrorIs(t, p.Check(Options{Method: "lda"}), keywords.ErrUnknownMethod)
	assert.ErrorIs(t, p.Check(Options{ClusterMethod: "spectral"}), semantic.ErrInvalidParameter)
	assert.NoError(t, p.Check(Options{ClusterMethod: "spectral", Skip: []string{report.SectionSemantic}}))

	_, err := p.Run(context.Background(), "missing.json", Options{Method: "lda"})
	assert.ErrorIs(t, err, keywords.ErrUnknownMethod)
	_, err = p.Run(context.Background(), filepath.Join(t.TempDir(), "missing.json"), Options{})
	assert.Error(t, err)
}
