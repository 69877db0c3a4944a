// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package temporal

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/research-analytics/internal/textproc"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// ErrInvalidPeriod is returned for a period whose start is after its end.
var ErrInvalidPeriod = errors.New("invalid period")

// Ratios of after/before counts that mark a change as increased or decreased.
const (
	IncreaseRatio = 1.2
	DecreaseRatio = 0.8
)

// ComparePeriods compares term counts between each pair of consecutive
// periods. A term absent from both periods of a pair is left out.
// Changes are ordered by absolute change descending, then term.
func (a *Analyzer) ComparePeriods(pubs []types.Publication, terms []string, periods []types.Period) ([]types.PeriodComparison, error) {
	for _, p := range periods {
		if p.Start > p.End {
			return nil, fmt.Errorf("period %q (%d-%d): %w", p.Name, p.Start, p.End, ErrInvalidPeriod)
		}
	}
	recs, _ := index(pubs)
	terms = normalizeTerms(terms)
	keys := make([]string, len(terms))
	for i, t := range terms {
		keys[i] = textproc.TermKey(t)
	}

	count := func(p types.Period, i int) int {
		n := 0
		for _, r := range recs {
			if p.Contains(r.year) && r.contains(terms[i], keys[i]) {
				n++
			}
		}
		return n
	}

	out := make([]types.PeriodComparison, 0, max(len(periods)-1, 0))
	for pi := 1; pi < len(periods); pi++ {
		before, after := periods[pi-1], periods[pi]
		cmp := types.PeriodComparison{Before: before, After: after, Changes: []types.KeywordChange{}}
		for i, term := range terms {
			b, c := count(before, i), count(after, i)
			if b == 0 && c == 0 {
				continue
			}
			if b > 0 && c > 0 {
				cmp.Common++
			}
			cmp.Changes = append(cmp.Changes, types.KeywordChange{
				Term:   term,
				Before: b,
				After:  c,
				Growth: rate(b, c),
				Type:   changeType(b, c),
			})
		}
		sort.SliceStable(cmp.Changes, func(i, j int) bool {
			di := abs(cmp.Changes[i].After - cmp.Changes[i].Before)
			dj := abs(cmp.Changes[j].After - cmp.Changes[j].Before)
			if di != dj {
				return di > dj
			}
			return cmp.Changes[i].Term < cmp.Changes[j].Term
		})
		out = append(out, cmp)
	}
	return out, nil
}

func changeType(before, after int) types.ChangeType {
	switch {
	case before == 0:
		return types.ChangeEmerged
	case after == 0:
		return types.ChangeDisappeared
	}
	r := float64(after) / float64(before)
	switch {
	case r >= IncreaseRatio:
		return types.ChangeIncreased
	case r <= DecreaseRatio:
		return types.ChangeDecreased
	default:
		return types.ChangeStable
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
