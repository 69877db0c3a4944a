// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/research-analytics/pkg/types"
)

// WriteKeywordsCSV writes one keyword set as rank,term,frequency,score,importance,method.
func WriteKeywordsCSV(w io.Writer, set types.KeywordSet) error {
	rows := [][]string{{"rank", "term", "frequency", "score", "importance", "method"}}
	for _, k := range set.Keywords {
		rows = append(rows, []string{
			strconv.Itoa(k.Rank), k.Term, strconv.Itoa(k.Frequency),
			ftoa(k.Score), ftoa(k.Importance), string(k.Method),
		})
	}
	return writeCSV(w, rows)
}

// WriteClustersCSV writes one row per clustered publication. ids must be
// aligned with the cluster labels.
func WriteClustersCSV(w io.Writer, ids []string, res types.ClusterResult, proj *types.Projection) error {
	if len(ids) != len(res.Labels) {
		return fmt.Errorf("writing clusters: %d ids for %d labels", len(ids), len(res.Labels))
	}
	header := []string{"publication_id", "cluster"}
	withCoords := proj != nil && len(proj.Coords) == len(ids)
	if withCoords {
		for c := 0; c < proj.Components; c++ {
			header = append(header, fmt.Sprintf("%s_%d", proj.Method, c+1))
		}
	}
	rows := [][]string{header}
	for i, id := range ids {
		row := []string{id, strconv.Itoa(res.Labels[i])}
		if withCoords {
			for _, v := range proj.Coords[i] {
				row = append(row, ftoa(v))
			}
		}
		rows = append(rows, row)
	}
	return writeCSV(w, rows)
}

// WriteTrendsCSV writes the long-format series: term,year,count,total.
func WriteTrendsCSV(w io.Writer, trends []types.TrendRecord) error {
	rows := [][]string{{"term", "year", "count", "publications"}}
	for _, t := range trends {
		for _, p := range t.Points {
			rows = append(rows, []string{t.Term, strconv.Itoa(p.Year), strconv.Itoa(p.Count), strconv.Itoa(p.Total)})
		}
	}
	return writeCSV(w, rows)
}

// WriteLifecycleCSV writes one row per term with its derived signals.
func WriteLifecycleCSV(w io.Writer, trends []types.TrendRecord) error {
	rows := [][]string{{"term", "stage", "total", "first_year", "last_year", "peak_year", "peak_count", "slope", "growth"}}
	for _, t := range trends {
		rows = append(rows, []string{
			t.Term, string(t.Stage), strconv.Itoa(t.Total),
			strconv.Itoa(t.FirstYear), strconv.Itoa(t.LastYear),
			strconv.Itoa(t.PeakYear), strconv.Itoa(t.PeakCount),
			ftoa(t.Slope), growthCell(t.Growth),
		})
	}
	return writeCSV(w, rows)
}

// growthCell joins adjacent-year rates as "2020-2021:0.5;2021-2022:n/a".
func growthCell(g []types.GrowthRate) string {
	parts := make([]string, len(g))
	for i, r := range g {
		v := "n/a"
		if r.Rate != nil {
			v = ftoa(*r.Rate)
		}
		parts[i] = fmt.Sprintf("%d-%d:%s", r.From, r.To, v)
	}
	return strings.Join(parts, ";")
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
