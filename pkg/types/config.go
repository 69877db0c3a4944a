// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TFIDFConfig holds settings for TF-IDF keyword extraction.
type TFIDFConfig struct {
	// NgramRange is the inclusive [min, max] n-gram length (default [1, 3]).
	NgramRange []int `json:"ngram_range" yaml:"ngram_range" mapstructure:"ngram_range" validate:"len=2,dive,min=1,max=6"`

	// MaxFeatures caps the vocabulary by corpus term frequency (default 1000).
	MaxFeatures int `json:"max_features" yaml:"max_features" mapstructure:"max_features" validate:"min=1"`

	// MinDF is the minimum number of documents a term must appear in (default 2).
	MinDF int `json:"min_df" yaml:"min_df" mapstructure:"min_df" validate:"min=1"`

	// MaxDF is the maximum fraction of documents a term may appear in (default 0.85).
	MaxDF float64 `json:"max_df" yaml:"max_df" mapstructure:"max_df" validate:"gt=0,lte=1"`
}

// RAKEConfig holds settings for RAKE keyword extraction.
type RAKEConfig struct {
	// MinLength is the minimum phrase length in words (default 1).
	MinLength int `json:"min_length" yaml:"min_length" mapstructure:"min_length" validate:"min=1"`

	// MaxLength is the maximum phrase length in words (default 4).
	MaxLength int `json:"max_length" yaml:"max_length" mapstructure:"max_length" validate:"min=1,gtefield=MinLength"`
}

// YAKEConfig holds settings for YAKE keyword extraction.
type YAKEConfig struct {
	// MaxNgramSize is the maximum candidate length in words (default 3).
	MaxNgramSize int `json:"max_ngram_size" yaml:"max_ngram_size" mapstructure:"max_ngram_size" validate:"min=1,max=6"`

	// DedupThreshold drops candidates whose Jaccard similarity to a better
	// candidate reaches the threshold (default 0.7).
	DedupThreshold float64 `json:"dedup_threshold" yaml:"dedup_threshold" mapstructure:"dedup_threshold" validate:"gt=0,lte=1"`
}

// KeywordsConfig holds settings shared by all extraction methods.
type KeywordsConfig struct {
	// TopN truncates every keyword set after ranking (default 20).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n" validate:"min=1"`

	// IncludeFieldsOfStudy adds source fields of study to API keywords (default false).
	IncludeFieldsOfStudy bool `json:"include_fields_of_study" yaml:"include_fields_of_study" mapstructure:"include_fields_of_study"`
}

// ClusteringConfig holds settings for semantic clustering.
type ClusteringConfig struct {
	// Method is kmeans or dbscan (default kmeans).
	Method ClusterMethod `json:"method" yaml:"method" mapstructure:"method" validate:"oneof=kmeans dbscan"`

	// NClusters is the k-means cluster count. Leaving it unset (0) selects
	// min(20, n/5), at least 2; an explicit value must be positive.
	NClusters int `json:"n_clusters" yaml:"n_clusters" mapstructure:"n_clusters" validate:"min=0"`

	// Eps is the DBSCAN neighbourhood radius (default 0.5).
	Eps float64 `json:"eps" yaml:"eps" mapstructure:"eps" validate:"gt=0"`

	// MinSamples is the DBSCAN core point threshold (default 5).
	MinSamples int `json:"min_samples" yaml:"min_samples" mapstructure:"min_samples" validate:"min=1"`

	// RandomState seeds k-means initialization (default 42).
	RandomState int64 `json:"random_state" yaml:"random_state" mapstructure:"random_state"`

	// NInit is the number of k-means restarts (default 10).
	NInit int `json:"n_init" yaml:"n_init" mapstructure:"n_init" validate:"min=1"`

	// MaxIter bounds k-means iterations per restart (default 300).
	MaxIter int `json:"max_iter" yaml:"max_iter" mapstructure:"max_iter" validate:"min=1"`
}

// ReductionConfig holds settings for display projections.
type ReductionConfig struct {
	// Method is pca, tsne, or umap (default pca). umap has no Go backend
	// and is reported unavailable.
	Method string `json:"method" yaml:"method" mapstructure:"method" validate:"oneof=pca tsne umap"`

	// Components is 2 or 3 (default 2).
	Components int `json:"components" yaml:"components" mapstructure:"components" validate:"oneof=2 3"`
}

// EmbeddingProvider selects the embedding backend.
type EmbeddingProvider string

const (
	ProviderOpenAI  EmbeddingProvider = "openai"
	ProviderOllama  EmbeddingProvider = "ollama"
	ProviderHashing EmbeddingProvider = "hashing"
)

// CacheBackend selects where cached embeddings live.
type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// EmbeddingConfig holds settings for embedding generation.
type EmbeddingConfig struct {
	// Provider is openai, ollama, or hashing (default hashing).
	Provider EmbeddingProvider `json:"provider" yaml:"provider" mapstructure:"provider" validate:"oneof=openai ollama hashing"`

	// Model is the model name (default "hashing-v1").
	Model string `json:"model" yaml:"model" mapstructure:"model" validate:"required"`

	// ModelVersion is part of the cache namespace (default "1").
	ModelVersion string `json:"model_version" yaml:"model_version" mapstructure:"model_version" validate:"required"`

	// Dimensions is the expected vector size (default 1024).
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions" validate:"min=1"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// APIKey authenticates against the provider. Usually loaded from .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BatchSize is the number of texts embedded per provider call (default 32).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size" validate:"min=1"`

	// MaxChars truncates texts before embedding (default 8192).
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars" validate:"min=1"`

	// MaxRetries is the number of retry attempts for failed calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`

	// RetryBaseDelay is the first backoff delay; it doubles per attempt (default 1s).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" mapstructure:"retry_base_delay" validate:"gte=0"`

	// Timeout is the per-request HTTP timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Cache is none, memory, sqlite, or redis (default memory).
	Cache CacheBackend `json:"cache" yaml:"cache" mapstructure:"cache" validate:"oneof=none memory sqlite redis"`

	// RedisAddr is the Redis address for the redis cache backend.
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr" validate:"required_if=Cache redis"`
}

// TemporalConfig holds settings for trend and lifecycle analysis.
type TemporalConfig struct {
	// MinOccurrences drops terms with fewer total occurrences (default 1).
	MinOccurrences int `json:"min_occurrences" yaml:"min_occurrences" mapstructure:"min_occurrences" validate:"min=1"`

	// RecentWindow is the number of trailing years treated as "recent" (default 2).
	RecentWindow int `json:"recent_window" yaml:"recent_window" mapstructure:"recent_window" validate:"min=1"`

	// GrowthThreshold is the relative gain that marks a keyword growing (default 0.25).
	GrowthThreshold float64 `json:"growth_threshold" yaml:"growth_threshold" mapstructure:"growth_threshold" validate:"gt=0"`

	// DeclineThreshold is the relative loss that marks a keyword declining (default 0.25).
	DeclineThreshold float64 `json:"decline_threshold" yaml:"decline_threshold" mapstructure:"decline_threshold" validate:"gt=0,lte=1"`

	// Periods are the named year ranges compared pairwise. Empty disables
	// period comparison.
	Periods []Period `json:"periods" yaml:"periods" mapstructure:"periods" validate:"dive"`
}

// WordCloudConfig holds settings for word cloud rendering.
type WordCloudConfig struct {
	MaxWords        int    `json:"max_words" yaml:"max_words" mapstructure:"max_words" validate:"min=1"`
	Width           int    `json:"width" yaml:"width" mapstructure:"width" validate:"min=50"`
	Height          int    `json:"height" yaml:"height" mapstructure:"height" validate:"min=50"`
	BackgroundColor string `json:"background_color" yaml:"background_color" mapstructure:"background_color" validate:"required"`

	// Colormap is viridis, plasma, inferno, magma, cividis, or greys (default viridis).
	Colormap string `json:"colormap" yaml:"colormap" mapstructure:"colormap" validate:"oneof=viridis plasma inferno magma cividis greys"`

	// RandomState seeds the layout (default 42).
	RandomState int64 `json:"random_state" yaml:"random_state" mapstructure:"random_state"`
}

// VisualizationConfig holds settings shared by charts.
type VisualizationConfig struct {
	// TopN is the number of bars in frequency charts (default 20).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n" validate:"min=1"`

	// TrendKeywords is the number of series in trend charts (default 10).
	TrendKeywords int `json:"trend_keywords" yaml:"trend_keywords" mapstructure:"trend_keywords" validate:"min=1"`
}

// OutputFormat selects a report format.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputHTML     OutputFormat = "html"
	OutputJSON     OutputFormat = "json"
	OutputYAML     OutputFormat = "yaml"
)

// OutputConfig holds settings for written artifacts.
type OutputConfig struct {
	// Dir is the directory for tables, figures, and reports (default "output").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`

	// Formats lists report formats to write (default [markdown, html]).
	Formats []OutputFormat `json:"formats" yaml:"formats" mapstructure:"formats" validate:"dive,oneof=markdown html json yaml"`
}

// StoreConfig holds settings for the SQLite analysis store.
type StoreConfig struct {
	// Enabled persists every run to the store (default false).
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Dir is the base directory of the store (contains index/) (default "analytics").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Env is prod (JSON) or local/dev (console) (default local).
	Env string `json:"env" yaml:"env" mapstructure:"env" validate:"oneof=prod local dev"`

	// Level overrides the level: debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	TFIDF         TFIDFConfig         `json:"tfidf" yaml:"tfidf" mapstructure:"tfidf"`
	RAKE          RAKEConfig          `json:"rake" yaml:"rake" mapstructure:"rake"`
	YAKE          YAKEConfig          `json:"yake" yaml:"yake" mapstructure:"yake"`
	Keywords      KeywordsConfig      `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	Clustering    ClusteringConfig    `json:"clustering" yaml:"clustering" mapstructure:"clustering"`
	Reduction     ReductionConfig     `json:"reduction" yaml:"reduction" mapstructure:"reduction"`
	Embedding     EmbeddingConfig     `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Temporal      TemporalConfig      `json:"temporal" yaml:"temporal" mapstructure:"temporal"`
	WordCloud     WordCloudConfig     `json:"wordcloud" yaml:"wordcloud" mapstructure:"wordcloud"`
	Visualization VisualizationConfig `json:"visualization" yaml:"visualization" mapstructure:"visualization"`
	Output        OutputConfig        `json:"output" yaml:"output" mapstructure:"output"`
	Store         StoreConfig         `json:"store" yaml:"store" mapstructure:"store"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging" mapstructure:"logging"`

	// Strict turns unknown configuration keys into errors (development builds).
	Strict bool `json:"strict" yaml:"strict" mapstructure:"strict"`
}
