// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/research-analytics/internal/metrics"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  types.ModelID
}

// NewOpenAIEmbedder creates an embedder for cfg.Model. An empty BaseURL
// uses the OpenAI API.
func NewOpenAIEmbedder(cfg types.EmbeddingConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model: types.ModelID{
			Provider:   string(types.ProviderOpenAI),
			Name:       cfg.Model,
			Version:    cfg.ModelVersion,
			Dimensions: cfg.Dimensions,
		},
	}
}

// Model implements Embedder.
func (e *OpenAIEmbedder) Model() types.ModelID { return e.model }

// EmbedBatch implements Embedder with one request per batch.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          openai.EmbeddingModel(e.model.Name),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     e.model.Dimensions,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.model.Provider, e.model.Name, "error").Inc()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, parseAPIError(err)
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.model.Provider, e.model.Name, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.model.Provider, e.model.Name).Observe(time.Since(start).Seconds())

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs: %w", len(resp.Data), len(texts), ErrLengthMismatch)
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("embedding response index %d out of order: %w", d.Index, ErrLengthMismatch)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// parseAPIError turns an API error into a StatusError with a readable
// message.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := extractDetail(reqErr.Body)
		if msg == "" {
			msg = string(reqErr.Body)
		}
		return &StatusError{Provider: string(types.ProviderOpenAI), StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: string(types.ProviderOpenAI), StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	return fmt.Errorf("embedding request failed: %w", err)
}

// extractDetail reads the "detail" field some compatible servers return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
