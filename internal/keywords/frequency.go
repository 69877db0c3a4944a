// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"sort"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// FrequencyRow is one row of a keyword frequency table.
type FrequencyRow struct {
	Term      string  `json:"term" yaml:"term"`
	Frequency int     `json:"frequency" yaml:"frequency"`
	Relative  float64 `json:"relative" yaml:"relative"`
	Rank      int     `json:"rank" yaml:"rank"`
}

// FrequencyTable sorts entries by frequency descending then term
// ascending and adds each term's share of the summed frequencies.
func FrequencyTable(entries []types.KeywordEntry) []FrequencyRow {
	rows := make([]FrequencyRow, 0, len(entries))
	total := 0
	for _, e := range entries {
		if e.Frequency <= 0 {
			continue
		}
		total += e.Frequency
		rows = append(rows, FrequencyRow{Term: e.Term, Frequency: e.Frequency})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Frequency != rows[j].Frequency {
			return rows[i].Frequency > rows[j].Frequency
		}
		return rows[i].Term < rows[j].Term
	})
	for i := range rows {
		rows[i].Relative = float64(rows[i].Frequency) / float64(total)
		rows[i].Rank = i + 1
	}
	return rows
}

// Combine merges keyword sets into one list keyed by term. Each term keeps
// the entry with the highest importance; frequency is the largest seen.
// The result is ranked by importance descending then term ascending.
// Merging is never implicit: callers that want a union call Combine.
func Combine(sets ...types.KeywordSet) []types.KeywordEntry {
	best := make(map[string]types.KeywordEntry)
	for _, s := range sets {
		for _, k := range s.Keywords {
			cur, ok := best[k.Term]
			if !ok {
				best[k.Term] = k
				continue
			}
			freq := max(cur.Frequency, k.Frequency)
			if k.Importance > cur.Importance {
				cur = k
			}
			cur.Frequency = freq
			best[k.Term] = cur
		}
	}
	out := make([]types.KeywordEntry, 0, len(best))
	for _, k := range best {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Term < out[j].Term
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
