// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// HashingEmbedder is a local, deterministic embedder. Content tokens and
// adjacent token pairs are hashed into a fixed number of signed buckets
// and the vector is L2-normalized. Texts without tokens map to the zero
// vector.
type HashingEmbedder struct {
	model types.ModelID
}

// NewHashingEmbedder returns a hashing embedder with dims buckets.
func NewHashingEmbedder(name, version string, dims int) *HashingEmbedder {
	return &HashingEmbedder{model: types.ModelID{
		Provider:   string(types.ProviderHashing),
		Name:       name,
		Version:    version,
		Dimensions: dims,
	}}
}

// Model implements Embedder.
func (h *HashingEmbedder) Model() types.ModelID { return h.model }

// EmbedBatch implements Embedder.
func (h *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h *HashingEmbedder) embed(text string) []float32 {
	dims := h.model.Dimensions
	acc := make([]float64, dims)
	add := func(feature string, weight float64) {
		f := fnv.New64a()
		f.Write([]byte(feature))
		sum := f.Sum64()
		idx := int(sum % uint64(dims))
		if sum>>63 == 1 {
			weight = -weight
		}
		acc[idx] += weight
	}
	for _, run := range textproc.Analyze(0, text).Runs() {
		for i, tok := range run {
			add(tok, 1)
			if i > 0 {
				add(run[i-1]+" "+tok, 0.5)
			}
		}
	}

	norm := 0.0
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, dims)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}
