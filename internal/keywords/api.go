// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"sort"

	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// APIImportance is the importance assigned to source-provided keywords,
// which carry no score of their own.
const APIImportance = 1.0

// ExtractAPIKeywords tabulates the source-provided keywords of pubs.
// Keywords are cleaned with textproc.CleanKeyword and deduplicated within
// each record; Frequency is the number of records carrying the term.
// With includeFields, fields of study count as keywords too.
func ExtractAPIKeywords(pubs []types.Publication, includeFields bool) types.APIKeywords {
	out := types.APIKeywords{
		ByPublication: make(map[string][]string),
		Entries:       []types.KeywordEntry{},
	}
	counts := make(map[string]int)
	for _, p := range pubs {
		raw := p.Keywords
		if includeFields && len(p.FieldsOfStudy) > 0 {
			raw = append(append([]string{}, p.Keywords...), p.FieldsOfStudy...)
		}
		terms := CleanKeywords(raw)
		if len(terms) == 0 {
			continue
		}
		out.ByPublication[p.ID] = terms
		out.Publications++
		out.Occurrences += len(terms)
		for _, t := range terms {
			counts[t]++
		}
	}

	for term, n := range counts {
		out.Entries = append(out.Entries, types.KeywordEntry{
			Term:       term,
			Frequency:  n,
			Score:      float64(n),
			Importance: APIImportance,
			Method:     types.MethodAPI,
		})
	}
	sort.Slice(out.Entries, func(i, j int) bool {
		if out.Entries[i].Frequency != out.Entries[j].Frequency {
			return out.Entries[i].Frequency > out.Entries[j].Frequency
		}
		return out.Entries[i].Term < out.Entries[j].Term
	})
	for i := range out.Entries {
		out.Entries[i].Rank = i + 1
	}
	return out
}

// CleanKeywords cleans a keyword list, dropping empty and duplicate terms
// while keeping first-seen order.
func CleanKeywords(raw []string) []string {
	var out []string
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		t := textproc.CleanKeyword(r)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
