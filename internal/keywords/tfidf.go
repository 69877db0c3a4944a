// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/james-bowman/nlp"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// TFIDF ranks n-grams by their mean TF-IDF weight across documents. The
// weight is tf * (ln((1+n)/(1+df)) + 1), so terms present in every
// document keep a positive weight.
type TFIDF struct {
	cfg types.TFIDFConfig
	log *zap.Logger
	fit func(tok ngramTokeniser, corpus []string) (tfidfModel, error)
}

// tfidfModel is a fitted term-document model. Rows are terms, columns
// documents.
type tfidfModel struct {
	counts     mat.Matrix
	weights    mat.Matrix
	vocabulary map[string]int
}

// NewTFIDF returns a TF-IDF method. Fitting failures are logged on log and
// yield no keywords.
func NewTFIDF(cfg types.TFIDFConfig, log *zap.Logger) *TFIDF {
	return &TFIDF{cfg: cfg, log: logging.OrNop(log), fit: fitTFIDF}
}

func fitTFIDF(tok ngramTokeniser, corpus []string) (tfidfModel, error) {
	vectoriser := nlp.NewCountVectoriser()
	vectoriser.Tokeniser = tok
	counts, err := vectoriser.FitTransform(corpus...)
	if err != nil {
		return tfidfModel{}, fmt.Errorf("counting terms: %w", err)
	}
	weights, err := nlp.NewTfidfTransformer().FitTransform(counts)
	if err != nil {
		return tfidfModel{}, fmt.Errorf("weighting terms: %w", err)
	}
	return tfidfModel{counts: counts, weights: weights, vocabulary: vectoriser.Vocabulary}, nil
}

// Name implements Method.
func (t *TFIDF) Name() types.Method { return types.MethodTFIDF }

// Extract implements Method. Document frequency bounds are clamped to the
// corpus size: min_df never exceeds the number of documents, and max_df is
// dropped when it would admit fewer documents than min_df.
func (t *TFIDF) Extract(docs []textproc.Document) []types.KeywordEntry {
	lo, hi := t.ngramRange()
	tok := ngramTokeniser{min: lo, max: hi}

	corpus := make([]string, len(docs))
	empty := true
	for i, d := range docs {
		corpus[i] = encodeRuns(d.Runs())
		if corpus[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil
	}

	model, err := t.fit(tok, corpus)
	if err != nil {
		t.log.Error("tf-idf fitting failed", zap.Int("documents", len(docs)), zap.Error(err))
		return nil
	}
	counts, weights := model.counts, model.weights

	terms := make([]string, len(model.vocabulary))
	for term, row := range model.vocabulary {
		terms[row] = term
	}
	_, n := counts.Dims()

	minDF := min(max(t.cfg.MinDF, 1), n)
	maxDocs := n
	if limit := int(math.Floor(t.cfg.MaxDF * float64(n))); t.cfg.MaxDF > 0 && limit >= minDF {
		maxDocs = limit
	}

	type scored struct {
		term  string
		total float64
		mean  float64
	}
	var kept []scored
	for row, term := range terms {
		df, total, sum := 0, 0.0, 0.0
		for col := 0; col < n; col++ {
			c := counts.At(row, col)
			if c == 0 {
				continue
			}
			df++
			total += c
			sum += weights.At(row, col) + c
		}
		if df < minDF || df > maxDocs {
			continue
		}
		kept = append(kept, scored{term: term, total: total, mean: sum / float64(n)})
	}

	if t.cfg.MaxFeatures > 0 && len(kept) > t.cfg.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if kept[i].total != kept[j].total {
				return kept[i].total > kept[j].total
			}
			return kept[i].term < kept[j].term
		})
		kept = kept[:t.cfg.MaxFeatures]
	}

	out := make([]types.KeywordEntry, len(kept))
	for i, k := range kept {
		out[i] = types.KeywordEntry{Term: k.term, Score: k.mean, Method: types.MethodTFIDF}
	}
	return out
}

func (t *TFIDF) ngramRange() (int, int) {
	lo, hi := 1, 1
	if len(t.cfg.NgramRange) == 2 {
		lo, hi = max(t.cfg.NgramRange[0], 1), t.cfg.NgramRange[1]
	}
	return lo, max(hi, lo)
}

// encodeRuns joins runs with newlines and run words with spaces, the form
// ngramTokeniser reads.
func encodeRuns(runs [][]string) string {
	lines := make([]string, len(runs))
	for i, r := range runs {
		lines[i] = strings.Join(r, " ")
	}
	return strings.Join(lines, "\n")
}

// ngramTokeniser emits n-grams that never cross a run boundary.
type ngramTokeniser struct {
	min, max int
}

// ForEachIn implements nlp.Tokeniser.
func (t ngramTokeniser) ForEachIn(text string, f func(token string)) {
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		for _, g := range textproc.RunNGrams(words, t.min, t.max) {
			f(g)
		}
	}
}

// Tokenise implements nlp.Tokeniser.
func (t ngramTokeniser) Tokenise(text string) []string {
	var out []string
	t.ForEachIn(text, func(token string) {
		out = append(out, token)
	})
	return out
}

var _ nlp.Tokeniser = ngramTokeniser{}
