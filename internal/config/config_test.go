// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-analytics/pkg/types"
)

func viperFrom(t *testing.T, yamlText string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yamlText)))
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	v := viperFrom(t, `
tfidf:
  ngram_range: [1, 2]
  min_df: 1
clustering:
  method: dbscan
  eps: 0.3
embedding:
  retry_base_delay: 250ms
temporal:
  periods:
    - {name: early, start: 2010, end: 2015}
    - {name: recent, start: 2021, end: 2025}
`)
	cfg, err := Load(v, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, cfg.TFIDF.NgramRange)
	assert.Equal(t, 1, cfg.TFIDF.MinDF)
	assert.Equal(t, 1000, cfg.TFIDF.MaxFeatures)
	assert.Equal(t, types.ClusterDBSCAN, cfg.Clustering.Method)
	assert.InDelta(t, 0.3, cfg.Clustering.Eps, 1e-9)
	assert.Equal(t, 250*time.Millisecond, cfg.Embedding.RetryBaseDelay)
	require.Len(t, cfg.Temporal.Periods, 2)
	assert.Equal(t, types.Period{Name: "recent", Start: 2021, End: 2025}, cfg.Temporal.Periods[1])
}

func TestLoadUnknownKeyWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	v := viperFrom(t, `
tfidf:
  max_features: 50
  stemming: true
plotting:
  dpi: 300
`)
	cfg, err := Load(v, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.TFIDF.MaxFeatures)

	var keys []string
	for _, e := range logs.All() {
		keys = append(keys, e.ContextMap()["key"].(string))
	}
	assert.Equal(t, []string{"plotting.dpi", "tfidf.stemming"}, keys)
}

func TestLoadUnknownKeyStrict(t *testing.T) {
	v := viperFrom(t, `
strict: true
wordcloud:
  font: serif
`)
	_, err := Load(v, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOption))
	assert.Contains(t, err.Error(), "wordcloud.font")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"negative clusters", "clustering:\n  n_clusters: -3\n", "clustering.n_clusters"},
		{"explicit zero clusters", "clustering:\n  n_clusters: 0\n", "clustering.n_clusters"},
		{"unknown clustering method", "clustering:\n  method: spectral\n", "Clustering.Method"},
		{"max_df above one", "tfidf:\n  max_df: 1.5\n", "TFIDF.MaxDF"},
		{"zero eps", "clustering:\n  eps: 0\n", "Clustering.Eps"},
		{"components", "reduction:\n  components: 4\n", "Reduction.Components"},
		{"ngram order", "tfidf:\n  ngram_range: [3, 1]\n", "tfidf.ngram_range"},
		{"rake lengths", "rake:\n  min_length: 3\n  max_length: 2\n", "RAKE.MaxLength"},
		{"redis without addr", "embedding:\n  cache: redis\n", "Embedding.RedisAddr"},
		{"period order", "temporal:\n  periods:\n    - {name: p, start: 2020, end: 2010}\n", "temporal.periods"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(viperFrom(t, tt.yaml), nil)
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDefaultsCoverEveryKey(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	assert.Empty(t, UnknownKeys(v))
	assert.Len(t, v.AllKeys(), len(defaults)+len(optional))
}

func TestLoadClusterCount(t *testing.T) {
	cfg, err := Load(viperFrom(t, "clustering:\n  method: kmeans\n"), nil)
	require.NoError(t, err)
	assert.Zero(t, cfg.Clustering.NClusters, "unset means automatic")

	cfg, err = Load(viperFrom(t, "clustering:\n  n_clusters: 7\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Clustering.NClusters)

	t.Setenv("CLUSTERING_N_CLUSTERS", "0")
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_, err = Load(v, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "clustering.n_clusters", verr.Field)
	assert.Equal(t, 0, verr.Value)
}
