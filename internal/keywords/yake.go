// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// YAKE scores candidates from per-word statistical features: casing,
// position, frequency, context relatedness and sentence spread. Lower
// scores are better. Per-document scores are averaged and divided by the
// number of documents containing the candidate.
type YAKE struct {
	cfg   types.YAKEConfig
	limit int
}

// NewYAKE returns a YAKE method. Deduplication stops once limit
// candidates are accepted; limit <= 0 deduplicates every candidate.
func NewYAKE(cfg types.YAKEConfig, limit int) *YAKE {
	return &YAKE{cfg: cfg, limit: limit}
}

// Name implements Method.
func (y *YAKE) Name() types.Method { return types.MethodYAKE }

// LowerIsBetter reports that YAKE scores rank ascending.
func (y *YAKE) LowerIsBetter() bool { return true }

// Extract implements Method.
func (y *YAKE) Extract(docs []textproc.Document) []types.KeywordEntry {
	sums := make(map[string]float64)
	seen := make(map[string]int)
	for _, d := range docs {
		for cand, score := range y.scoreDocument(d) {
			sums[cand] += score
			seen[cand]++
		}
	}

	type scored struct {
		term  string
		score float64
	}
	all := make([]scored, 0, len(sums))
	for term, sum := range sums {
		n := float64(seen[term])
		all = append(all, scored{term: term, score: sum / n / n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score < all[j].score
		}
		return all[i].term < all[j].term
	})

	threshold := y.cfg.DedupThreshold
	var out []types.KeywordEntry
	var accepted [][]string
	for _, c := range all {
		if y.limit > 0 && len(out) >= y.limit {
			break
		}
		grams := trigrams(c.term)
		dup := false
		for _, a := range accepted {
			if jaccard(grams, a) >= threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		accepted = append(accepted, grams)
		out = append(out, types.KeywordEntry{Term: c.term, Score: c.score, Method: types.MethodYAKE})
	}
	return out
}

type wordStats struct {
	tf        float64
	upper     float64
	acronym   float64
	sentences []float64
	left      map[string]int
	right     map[string]int
	leftN     int
	rightN    int
}

// scoreDocument returns the YAKE score of every candidate n-gram in d.
func (y *YAKE) scoreDocument(d textproc.Document) map[string]float64 {
	stats := make(map[string]*wordStats)
	get := func(w string) *wordStats {
		s, ok := stats[w]
		if !ok {
			s = &wordStats{left: map[string]int{}, right: map[string]int{}}
			stats[w] = s
		}
		return s
	}

	for si, sent := range d.Sentences {
		for _, chunk := range sent.Chunks {
			for i, w := range chunk {
				if !w.Content() {
					continue
				}
				s := get(w.Text)
				s.tf++
				if w.Acronym {
					s.acronym++
				} else if w.Capitalized {
					s.upper++
				}
				s.sentences = append(s.sentences, float64(si))
				if i > 0 {
					s.left[chunk[i-1].Text]++
					s.leftN++
				}
				if i+1 < len(chunk) {
					s.right[chunk[i+1].Text]++
					s.rightN++
				}
			}
		}
	}
	if len(stats) == 0 {
		return nil
	}

	tfs := make([]float64, 0, len(stats))
	maxTF := 0.0
	for _, s := range stats {
		tfs = append(tfs, s.tf)
		maxTF = math.Max(maxTF, s.tf)
	}
	meanTF, stdTF := stat.MeanStdDev(tfs, nil)
	if math.IsNaN(stdTF) {
		stdTF = 0
	}
	nSent := float64(len(d.Sentences))

	wordScore := make(map[string]float64, len(stats))
	for w, s := range stats {
		tCase := math.Max(s.upper, s.acronym) / (1 + math.Log(s.tf))
		sort.Float64s(s.sentences)
		tPos := math.Log(math.Log(3 + stat.Quantile(0.5, stat.Empirical, s.sentences, nil)))
		tNorm := s.tf / (meanTF + stdTF)
		tRel := 1 + (ratio(len(s.left), s.leftN)+ratio(len(s.right), s.rightN))*(s.tf/maxTF)
		tSent := float64(distinct(s.sentences)) / nSent
		wordScore[w] = (tRel * tPos) / (tCase + tNorm/tRel + tSent/tRel)
	}

	ngramTF := make(map[string]float64)
	ngramWords := make(map[string][]string)
	maxN := max(y.cfg.MaxNgramSize, 1)
	for _, run := range d.Runs() {
		for n := 1; n <= maxN; n++ {
			for i := 0; i+n <= len(run); i++ {
				key := strings.Join(run[i:i+n], " ")
				ngramTF[key]++
				ngramWords[key] = run[i : i+n]
			}
		}
	}

	out := make(map[string]float64, len(ngramTF))
	for key, tf := range ngramTF {
		prod, sum := 1.0, 0.0
		for _, w := range ngramWords[key] {
			prod *= wordScore[w]
			sum += wordScore[w]
		}
		out[key] = prod / (tf * (1 + sum))
	}
	return out
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func distinct(sorted []float64) int {
	n := 0
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			n++
		}
	}
	return n
}

// trigrams returns the sorted distinct character trigrams of s.
func trigrams(s string) []string {
	r := []rune(" " + s + " ")
	set := make(map[string]struct{})
	for i := 0; i+3 <= len(r); i++ {
		set[string(r[i:i+3])] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// jaccard returns the Jaccard similarity of two sorted string sets.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	i, j, inter := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
