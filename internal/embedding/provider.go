// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// New returns the embedder configured by cfg. When store is non-nil the
// embedder is wrapped in a CachedEmbedder.
func New(cfg types.EmbeddingConfig, store KV, log *zap.Logger) (Embedder, error) {
	var e Embedder
	switch cfg.Provider {
	case types.ProviderHashing, "":
		if cfg.Dimensions <= 0 {
			return nil, fmt.Errorf("hashing embedder needs dimensions > 0, got %d", cfg.Dimensions)
		}
		e = NewHashingEmbedder(cfg.Model, cfg.ModelVersion, cfg.Dimensions)
	case types.ProviderOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("openai provider: no API key: %w", ErrUnavailable)
		}
		e = NewOpenAIEmbedder(cfg)
	case types.ProviderOllama:
		e = NewOllamaEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if store != nil {
		e = NewCachedEmbedder(e, store, log)
	}
	return e, nil
}
