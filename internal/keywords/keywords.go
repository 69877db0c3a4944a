// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords derives ranked keyword sets from a corpus. Source API
// keywords are tabulated directly; TF-IDF, RAKE and YAKE run over the
// preprocessed title and abstract text behind one Method interface.
package keywords

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// ErrUnknownMethod is returned when the requested extraction method does
// not exist.
var ErrUnknownMethod = errors.New("unknown keyword extraction method")

// Method is one text keyword extraction algorithm. Extract returns
// candidate terms with raw scores; ranking, importance and frequency are
// computed by the Extractor.
type Method interface {
	Name() types.Method
	Extract(docs []textproc.Document) []types.KeywordEntry
}

// lowerIsBetter is implemented by methods whose raw scores rank ascending.
type lowerIsBetter interface {
	LowerIsBetter() bool
}

// Extractor runs keyword extraction methods over a corpus.
type Extractor struct {
	cfg     types.PipelineConfig
	log     *zap.Logger
	methods map[types.Method]Method
}

// NewExtractor builds an Extractor with the TF-IDF, RAKE and YAKE methods
// configured from cfg.
func NewExtractor(cfg types.PipelineConfig, log *zap.Logger) *Extractor {
	e := &Extractor{cfg: cfg, log: logging.OrNop(log), methods: make(map[types.Method]Method)}
	e.Register(NewTFIDF(cfg.TFIDF, e.log))
	e.Register(NewRAKE(cfg.RAKE))
	e.Register(NewYAKE(cfg.YAKE, cfg.Keywords.TopN))
	return e
}

// Register adds or replaces a method under its name.
func (e *Extractor) Register(m Method) {
	e.methods[m.Name()] = m
}

// resolve maps a requested method to the methods to run, in output order.
func (e *Extractor) resolve(method types.Method) ([]Method, error) {
	if method == types.MethodAll {
		out := make([]Method, 0, len(types.NLPMethods))
		for _, name := range types.NLPMethods {
			if m, ok := e.methods[name]; ok {
				out = append(out, m)
			}
		}
		return out, nil
	}
	m, ok := e.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return []Method{m}, nil
}

// Check returns ErrUnknownMethod when method cannot be run.
func (e *Extractor) Check(method types.Method) error {
	_, err := e.resolve(method)
	return err
}

// ExtractNLPKeywords runs method over texts. A single method yields one
// set; MethodAll yields one set per method in the order tfidf, rake, yake.
// Empty, whitespace-only and invalid UTF-8 texts are skipped and counted.
func (e *Extractor) ExtractNLPKeywords(texts []string, method types.Method) ([]types.KeywordSet, error) {
	methods, err := e.resolve(method)
	if err != nil {
		return nil, err
	}

	docs, skipped := e.Prepare(texts)
	sets := make([]types.KeywordSet, 0, len(methods))
	for _, m := range methods {
		sets = append(sets, e.run(m, docs, skipped))
	}
	return sets, nil
}

// ExtractPublicationKeywords runs method over the title and abstract of
// every publication.
func (e *Extractor) ExtractPublicationKeywords(pubs []types.Publication, method types.Method) ([]types.KeywordSet, error) {
	texts := make([]string, len(pubs))
	for i, p := range pubs {
		texts[i] = p.Text()
	}
	return e.ExtractNLPKeywords(texts, method)
}

// Prepare analyzes the valid texts and returns them with the number of
// skipped entries.
func (e *Extractor) Prepare(texts []string) ([]textproc.Document, int) {
	docs := make([]textproc.Document, 0, len(texts))
	skipped := 0
	for i, t := range texts {
		if !textproc.Valid(t) {
			e.log.Warn("skipping empty or invalid text", zap.Int("index", i))
			skipped++
			continue
		}
		docs = append(docs, textproc.Analyze(i, t))
	}
	return docs, skipped
}

func (e *Extractor) run(m Method, docs []textproc.Document, skipped int) types.KeywordSet {
	set := types.KeywordSet{
		Method:    m.Name(),
		Keywords:  []types.KeywordEntry{},
		Documents: len(docs),
		Skipped:   skipped,
	}
	if len(docs) == 0 {
		return set
	}

	entries := m.Extract(docs)
	set.Vocabulary = len(entries)
	lower := false
	if l, ok := m.(lowerIsBetter); ok {
		lower = l.LowerIsBetter()
	}
	entries = Rank(entries, lower, e.cfg.Keywords.TopN)
	for i := range entries {
		entries[i].Method = m.Name()
		entries[i].Frequency = DocumentFrequency(docs, entries[i].Term)
	}
	set.Keywords = entries

	e.log.Debug("extracted keywords",
		zap.String("method", string(m.Name())),
		zap.Int("documents", len(docs)),
		zap.Int("candidates", set.Vocabulary),
		zap.Int("kept", len(entries)))
	return set
}

// Rank computes Importance from raw scores, sorts by importance descending
// then term ascending, assigns ranks, and keeps the first topN entries.
// With lowerIsBetter, importance is (max-s)/(max-min); otherwise s/max.
func Rank(entries []types.KeywordEntry, lowerIsBetter bool, topN int) []types.KeywordEntry {
	if len(entries) == 0 {
		return []types.KeywordEntry{}
	}
	lo, hi := entries[0].Score, entries[0].Score
	for _, k := range entries[1:] {
		lo = min(lo, k.Score)
		hi = max(hi, k.Score)
	}
	out := make([]types.KeywordEntry, len(entries))
	copy(out, entries)
	for i := range out {
		switch {
		case lowerIsBetter && hi == lo:
			out[i].Importance = 1
		case lowerIsBetter:
			out[i].Importance = (hi - out[i].Score) / (hi - lo)
		case hi > 0:
			out[i].Importance = out[i].Score / hi
		default:
			out[i].Importance = 0
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Term < out[j].Term
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// DocumentFrequency counts the documents that contain term.
func DocumentFrequency(docs []textproc.Document, term string) int {
	key := textproc.TermKey(term)
	n := 0
	for _, d := range docs {
		if d.ContainsKey(key) {
			n++
		}
	}
	return n
}
