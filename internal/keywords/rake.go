// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"strings"

	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// RAKE scores candidate phrases, the runs of content words between stop
// words and punctuation, by the degree/frequency ratio of their words.
// A phrase's corpus score is its mean score over the documents it occurs in.
type RAKE struct {
	cfg types.RAKEConfig
}

// NewRAKE returns a RAKE method.
func NewRAKE(cfg types.RAKEConfig) *RAKE {
	return &RAKE{cfg: cfg}
}

// Name implements Method.
func (r *RAKE) Name() types.Method { return types.MethodRAKE }

// Extract implements Method.
func (r *RAKE) Extract(docs []textproc.Document) []types.KeywordEntry {
	sums := make(map[string]float64)
	seen := make(map[string]int)
	var order []string
	for _, d := range docs {
		for phrase, score := range r.scoreDocument(d) {
			if _, ok := seen[phrase]; !ok {
				order = append(order, phrase)
			}
			sums[phrase] += score
			seen[phrase]++
		}
	}

	out := make([]types.KeywordEntry, 0, len(order))
	for _, p := range order {
		out = append(out, types.KeywordEntry{
			Term:   p,
			Score:  sums[p] / float64(seen[p]),
			Method: types.MethodRAKE,
		})
	}
	return out
}

// scoreDocument returns the RAKE score of every candidate phrase in d.
func (r *RAKE) scoreDocument(d textproc.Document) map[string]float64 {
	minLen, maxLen := max(r.cfg.MinLength, 1), r.cfg.MaxLength
	if maxLen < minLen {
		maxLen = minLen
	}

	var phrases [][]string
	for _, run := range d.Runs() {
		if len(run) >= minLen && len(run) <= maxLen {
			phrases = append(phrases, run)
		}
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, p := range phrases {
		for _, w := range p {
			freq[w]++
			degree[w] += float64(len(p))
		}
	}

	scores := make(map[string]float64, len(phrases))
	for _, p := range phrases {
		s := 0.0
		for _, w := range p {
			s += degree[w] / freq[w]
		}
		scores[strings.Join(p, " ")] = s
	}
	return scores
}
