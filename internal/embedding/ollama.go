// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/research-analytics/internal/httputil"
	"github.com/pdiddy/research-analytics/internal/metrics"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// DefaultOllamaURL is the local Ollama endpoint.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaEmbedder calls the Ollama /api/embeddings endpoint, one request
// per text.
type OllamaEmbedder struct {
	baseURL string
	client  *http.Client
	model   types.ModelID
}

// NewOllamaEmbedder creates an embedder for a local Ollama model such as
// nomic-embed-text.
func NewOllamaEmbedder(cfg types.EmbeddingConfig) *OllamaEmbedder {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OllamaEmbedder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		model: types.ModelID{
			Provider:   string(types.ProviderOllama),
			Name:       cfg.Model,
			Version:    cfg.ModelVersion,
			Dimensions: cfg.Dimensions,
		},
	}
}

// Model implements Embedder.
func (o *OllamaEmbedder) Model() types.ModelID { return o.model }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedBatch implements Embedder.
func (o *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := o.embed(ctx, text)
		if err != nil {
			metrics.EmbeddingRequestsTotal.WithLabelValues(o.model.Provider, o.model.Name, "error").Inc()
			return nil, err
		}
		metrics.EmbeddingRequestsTotal.WithLabelValues(o.model.Provider, o.model.Name, "success").Inc()
		out = append(out, vec)
	}
	return out, nil
}

func (o *OllamaEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(ollamaRequest{Model: o.model.Name, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("encoding ollama request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, o.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.EmbeddingRequestDuration.WithLabelValues(o.model.Provider, o.model.Name).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading ollama response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Provider: string(types.ProviderOllama), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding ollama response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	return parsed.Embedding, nil
}
