// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates the pipeline configuration.
//
// Every recognized option is listed in defaults with its documented default.
// Keys outside that list are reported as warnings, or rejected when strict
// mode is on. Values are validated before any analysis starts.
package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// ErrUnknownOption is returned in strict mode when the configuration holds
// keys that no component recognizes.
var ErrUnknownOption = errors.New("unknown configuration option")

// ValidationError names the first invalid configuration field.
type ValidationError struct {
	Field string
	Rule  string
	Value any
}

func (e *ValidationError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid configuration: %s=%v violates %q", e.Field, e.Value, e.Rule)
}

// defaults enumerates every recognized key. Keys are lowercase because
// viper folds them.
var defaults = map[string]any{
	"tfidf.ngram_range":  []int{1, 3},
	"tfidf.max_features": 1000,
	"tfidf.min_df":       2,
	"tfidf.max_df":       0.85,

	"rake.min_length": 1,
	"rake.max_length": 4,

	"yake.max_ngram_size":  3,
	"yake.dedup_threshold": 0.7,

	"keywords.top_n":                   20,
	"keywords.include_fields_of_study": false,

	"clustering.method":       "kmeans",
	"clustering.eps":          0.5,
	"clustering.min_samples":  5,
	"clustering.random_state": 42,
	"clustering.n_init":       10,
	"clustering.max_iter":     300,

	"reduction.method":     "pca",
	"reduction.components": 2,

	"embedding.provider":         "hashing",
	"embedding.model":            "hashing-v1",
	"embedding.model_version":    "1",
	"embedding.dimensions":       1024,
	"embedding.base_url":         "",
	"embedding.api_key":          "",
	"embedding.batch_size":       32,
	"embedding.max_chars":        8192,
	"embedding.max_retries":      3,
	"embedding.retry_base_delay": time.Second,
	"embedding.timeout":          60 * time.Second,
	"embedding.cache":            "memory",
	"embedding.redis_addr":       "",

	"temporal.min_occurrences":   1,
	"temporal.recent_window":     2,
	"temporal.growth_threshold":  0.25,
	"temporal.decline_threshold": 0.25,
	"temporal.periods":           []any{},

	"wordcloud.max_words":        100,
	"wordcloud.width":            800,
	"wordcloud.height":           400,
	"wordcloud.background_color": "white",
	"wordcloud.colormap":         "viridis",
	"wordcloud.random_state":     42,

	"visualization.top_n":          20,
	"visualization.trend_keywords": 10,

	"output.dir":     "output",
	"output.formats": []string{"markdown", "html"},

	"store.enabled": false,
	"store.dir":     "analytics",

	"logging.env":   "local",
	"logging.level": "info",

	"strict": false,
}

// optional lists recognized keys without a default. Leaving one unset
// selects automatic behaviour; setting it explicitly must yield a valid
// value.
var optional = []string{
	// absent selects cluster.AutoClusters
	"clustering.n_clusters",
}

// Default returns the configuration with every option at its default.
func Default() types.PipelineConfig {
	return types.PipelineConfig{
		TFIDF:    types.TFIDFConfig{NgramRange: []int{1, 3}, MaxFeatures: 1000, MinDF: 2, MaxDF: 0.85},
		RAKE:     types.RAKEConfig{MinLength: 1, MaxLength: 4},
		YAKE:     types.YAKEConfig{MaxNgramSize: 3, DedupThreshold: 0.7},
		Keywords: types.KeywordsConfig{TopN: 20},
		Clustering: types.ClusteringConfig{
			Method: types.ClusterKMeans, Eps: 0.5, MinSamples: 5,
			RandomState: 42, NInit: 10, MaxIter: 300,
		},
		Reduction: types.ReductionConfig{Method: "pca", Components: 2},
		Embedding: types.EmbeddingConfig{
			Provider: types.ProviderHashing, Model: "hashing-v1", ModelVersion: "1",
			Dimensions: 1024, BatchSize: 32, MaxChars: 8192, MaxRetries: 3,
			RetryBaseDelay: time.Second, Timeout: 60 * time.Second,
			Cache: types.CacheMemory,
		},
		Temporal: types.TemporalConfig{
			MinOccurrences: 1, RecentWindow: 2,
			GrowthThreshold: 0.25, DeclineThreshold: 0.25,
			Periods: []types.Period{},
		},
		WordCloud: types.WordCloudConfig{
			MaxWords: 100, Width: 800, Height: 400,
			BackgroundColor: "white", Colormap: "viridis", RandomState: 42,
		},
		Visualization: types.VisualizationConfig{TopN: 20, TrendKeywords: 10},
		Output:        types.OutputConfig{Dir: "output", Formats: []types.OutputFormat{types.OutputMarkdown, types.OutputHTML}},
		Store:         types.StoreConfig{Dir: "analytics"},
		Logging:       types.LoggingConfig{Env: "local", Level: "info"},
	}
}

// SetDefaults registers every recognized key and its default on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range optional {
		_ = v.BindEnv(k)
	}
}

// Load registers defaults on v, checks for unknown keys, decodes, and
// validates. Unknown keys are logged as warnings unless strict mode is on,
// in which case Load fails with ErrUnknownOption.
func Load(v *viper.Viper, log *zap.Logger) (types.PipelineConfig, error) {
	if log == nil {
		log = zap.NewNop()
	}
	SetDefaults(v)

	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.Temporal.Periods == nil {
		cfg.Temporal.Periods = []types.Period{}
	}

	if unknown := UnknownKeys(v); len(unknown) > 0 {
		if cfg.Strict {
			return types.PipelineConfig{}, fmt.Errorf("%w: %s", ErrUnknownOption, strings.Join(unknown, ", "))
		}
		for _, k := range unknown {
			log.Warn("Ignoring unknown configuration option", zap.String("key", k))
		}
	}

	if v.IsSet("clustering.n_clusters") && cfg.Clustering.NClusters <= 0 {
		return types.PipelineConfig{}, &ValidationError{
			Field: "clustering.n_clusters", Rule: "gt=0", Value: cfg.Clustering.NClusters,
		}
	}
	if err := Validate(cfg); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}

// UnknownKeys returns the keys set on v that are not recognized, sorted.
func UnknownKeys(v *viper.Viper) []string {
	var unknown []string
	for _, k := range v.AllKeys() {
		if _, ok := defaults[k]; ok || slices.Contains(optional, k) {
			continue
		}
		// Period entries decode as nested maps under temporal.periods.
		if strings.HasPrefix(k, "temporal.periods.") {
			continue
		}
		unknown = append(unknown, k)
	}
	sort.Strings(unknown)
	return unknown
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg and returns a *ValidationError for the first invalid field.
func Validate(cfg types.PipelineConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			return &ValidationError{Field: fieldPath(fe.Namespace()), Rule: rule, Value: fe.Value()}
		}
		return fmt.Errorf("validating configuration: %w", err)
	}

	if r := cfg.TFIDF.NgramRange; r[0] > r[1] {
		return &ValidationError{Field: "tfidf.ngram_range", Rule: "min<=max", Value: r}
	}
	for _, p := range cfg.Temporal.Periods {
		if p.Name == "" || p.Start > p.End {
			return &ValidationError{Field: "temporal.periods", Rule: "named, start<=end", Value: p}
		}
	}
	return nil
}

// fieldPath turns "PipelineConfig.TFIDF.MaxDF" into "TFIDF.MaxDF".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
