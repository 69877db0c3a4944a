// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-analytics/internal/config"
	"github.com/pdiddy/research-analytics/internal/corpus"
	"github.com/pdiddy/research-analytics/internal/embedding"
	"github.com/pdiddy/research-analytics/internal/report"
	"github.com/pdiddy/research-analytics/internal/temporal"
	"github.com/pdiddy/research-analytics/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "analytics")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, at time.Time) (*report.Results, []types.Publication) {
	sil := 0.5
	pubs := []types.Publication{
		{ID: "p1", Title: "Quantum annealing", Year: types.IntPtr(2020), Keywords: []string{"Quantum"}},
		{ID: "p2", Title: "Neural networks"},
	}
	r := report.NewResults(id, "papers.json", at)
	r.Corpus = corpus.Summary{Loaded: 2, Undated: 1}
	r.Mark(report.SectionCorpus, report.StatusOK, "")
	r.APIKeywords = types.APIKeywords{Entries: []types.KeywordEntry{
		{Term: "quantum", Frequency: 1, Importance: 1, Method: types.MethodAPI, Rank: 1},
	}, Publications: 1, Occurrences: 1}
	r.KeywordSets = []types.KeywordSet{{Method: types.MethodTFIDF, Keywords: []types.KeywordEntry{
		{Term: "neural networks", Frequency: 1, Score: 0.4, Importance: 1, Method: types.MethodTFIDF, Rank: 1},
	}}}
	r.Clustering = &types.ClusterResult{
		Method: types.ClusterKMeans, Labels: []int{0, 1}, NumClusters: 2, Silhouette: &sil,
		Clusters: []types.ClusterStats{{Label: 0, Size: 1}, {Label: 1, Size: 1}},
	}
	r.PublicationIDs = []string{"p1", "p2"}
	r.Topics = []types.ClusterTopic{{Label: 0, Size: 1, TopTerms: []string{"quantum"}}}
	r.Mark(report.SectionSemantic, report.StatusUnavailable, "no provider")
	r.Trends = temporal.TrendReport{StartYear: 2020, EndYear: 2020, Dated: 1, Undated: 1, Trends: []types.TrendRecord{{
		Term: "quantum", Points: []types.YearCount{{Year: 2020, Count: 1, Total: 1}},
		Total: 1, FirstYear: 2020, LastYear: 2020, PeakYear: 2020, PeakCount: 1, Stage: types.StageMature,
	}}}
	r.StageCounts = map[types.LifecycleStage]int{types.StageMature: 1}
	return r, pubs
}

func TestNewStoreCreatesSchema(t *testing.T) {
	s := testStore(t)

	for _, table := range []string{"runs", "publications", "keywords", "clusters", "trends", "lifecycle", "embedding_cache"} {
		var count int
		require.NoError(t, s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count))
		assert.Equal(t, 1, count, table)
	}
	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestEmbeddingCache(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, embedding.ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "k", []byte{1, 2}))
	require.NoError(t, s.Set(ctx, "k", []byte{3}))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, got)
}

func TestStoreBacksCachedEmbedder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cached := embedding.NewCachedEmbedder(embedding.NewHashingEmbedder("hashing-v1", "1", 16), s, nil)

	first, err := cached.EmbedBatch(ctx, []string{"graph neural networks"})
	require.NoError(t, err)
	second, err := cached.EmbedBatch(ctx, []string{"graph neural networks"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, cached.CacheHits())
}

func TestSaveAndLoadRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res, pubs := sampleRun("run-1", at)

	cfg := config.Default()
	cfg.Embedding.APIKey = "secret"
	require.NoError(t, s.SaveRun(ctx, res, pubs, cfg))

	got, err := s.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, res.RunID, got.RunID)
	assert.True(t, res.Generated.Equal(got.Generated))
	assert.Equal(t, res.KeywordSets, got.KeywordSets)
	assert.Equal(t, res.Trends, got.Trends)
	assert.Equal(t, res.Sections, got.Sections)
	assert.Equal(t, res.Clustering.Labels, got.Clustering.Labels)
	assert.Equal(t, 0.5, *got.Clustering.Silhouette)
	assert.Equal(t, 1, got.StageCounts[types.StageMature])

	var storedCfg string
	require.NoError(t, s.db.QueryRow(`SELECT config FROM runs WHERE id = 'run-1'`).Scan(&storedCfg))
	assert.NotContains(t, storedCfg, "secret")

	var cluster *int
	require.NoError(t, s.db.QueryRow(`SELECT cluster FROM publications WHERE run_id = 'run-1' AND id = 'p2'`).Scan(&cluster))
	require.NotNil(t, cluster)
	assert.Equal(t, 1, *cluster)

	var year *int
	require.NoError(t, s.db.QueryRow(`SELECT year FROM publications WHERE run_id = 'run-1' AND id = 'p2'`).Scan(&year))
	assert.Nil(t, year)

	var methods int
	require.NoError(t, s.db.QueryRow(`SELECT count(DISTINCT method) FROM keywords WHERE run_id = 'run-1'`).Scan(&methods))
	assert.Equal(t, 2, methods)
}

func TestSaveRunReplacesRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res, pubs := sampleRun("run-1", time.Now())
	require.NoError(t, s.SaveRun(ctx, res, pubs, config.Default()))

	res.KeywordSets = nil
	require.NoError(t, s.SaveRun(ctx, res, pubs[:1], config.Default()))

	var kw, pub int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM keywords WHERE method = 'tfidf'`).Scan(&kw))
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM publications`).Scan(&pub))
	assert.Equal(t, 0, kw)
	assert.Equal(t, 1, pub)
}

func TestRunsAndLatest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.LatestRunID(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.LoadRun(ctx, "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	older, pubs := sampleRun("run-old", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer, _ := sampleRun("run-new", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRun(ctx, older, pubs, config.Default()))
	require.NoError(t, s.SaveRun(ctx, newer, pubs, config.Default()))

	latest, err := s.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-new", latest)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-old", runs[1].ID)

	history, err := s.TermTrend(ctx, "quantum")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "run-old", history[0].RunID)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res, pubs := sampleRun("run-1", time.Now())
	require.NoError(t, s.SaveRun(ctx, res, pubs, config.Default()))

	paths, err := s.Export(ctx, "run-1", FormatYAML)
	require.NoError(t, err)
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, "run-1", fromYAML["run_id"])

	paths, err = s.Export(ctx, "run-1", FormatJSON)
	require.NoError(t, err)
	data, err = os.ReadFile(paths[0])
	require.NoError(t, err)
	var fromJSON report.Results
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, res.KeywordSets, fromJSON.KeywordSets)

	paths, err = s.Export(ctx, "run-1", FormatCSV)
	require.NoError(t, err)
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.ElementsMatch(t, []string{"keywords-tfidf.csv", "keywords-api.csv", "trends.csv", "lifecycle.csv"}, names)

	_, err = s.Export(ctx, "run-1", "xml")
	assert.Error(t, err)
}
