// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visualize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pdiddy/research-analytics/internal/temporal"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// ErrMisaligned is returned when cluster labels and projected coordinates
// differ in length.
var ErrMisaligned = errors.New("labels do not match coordinates")

// ChartOptions control chart rendering.
type ChartOptions struct {
	Title  string
	Width  int
	Height int

	// TopN is the number of bars shown initially; the rest stay reachable
	// through the zoom slider.
	TopN int

	// Series caps the number of lines in trend charts.
	Series int
}

// OptionsFromConfig maps the visualization configuration to ChartOptions.
func OptionsFromConfig(cfg types.VisualizationConfig) ChartOptions {
	return ChartOptions{Width: 900, Height: 500, TopN: cfg.TopN, Series: cfg.TrendKeywords}
}

// FrequencyBar is one bar of a frequency chart.
type FrequencyBar struct {
	Term      string `json:"term"`
	Frequency int    `json:"frequency"`
}

// FrequencyBars returns the terms with frequency > 0 sorted by frequency
// descending, then term. A limit > 0 keeps the first limit bars.
func FrequencyBars(freqs map[string]int, limit int) []FrequencyBar {
	out := make([]FrequencyBar, 0, len(freqs))
	for term, f := range freqs {
		if f > 0 {
			out = append(out, FrequencyBar{Term: term, Frequency: f})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type renderer interface {
	Render(w io.Writer) error
}

func render(kind string, c renderer) (Figure, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return Figure{}, fmt.Errorf("rendering %s chart: %w", kind, err)
	}
	return Figure{Kind: kind, Ext: ".html", Content: buf.Bytes()}, nil
}

func initOpts(kind string, o ChartOptions) charts.GlobalOpts {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 900
	}
	if h <= 0 {
		h = 500
	}
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: o.Title,
		Width:     strconv.Itoa(w) + "px",
		Height:    strconv.Itoa(h) + "px",
		ChartID:   kind,
	})
}

func titleOr(o ChartOptions, def string) string {
	if o.Title != "" {
		return o.Title
	}
	return def
}

// NoDataFigure renders an empty chart titled "No data" with the reason as
// subtitle.
func NoDataFigure(kind, reason string, o ChartOptions) (Figure, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(kind, o),
		charts.WithTitleOpts(opts.Title{Title: "No data", Subtitle: reason}),
	)
	f, err := render(kind, bar)
	if err != nil {
		return Figure{}, err
	}
	f.NoData, f.Reason = true, reason
	return f, nil
}

// PlotKeywordFrequencies renders every term with frequency > 0 as a bar,
// ordered as FrequencyBars. The zoom window initially shows the first
// o.TopN bars.
func PlotKeywordFrequencies(freqs map[string]int, o ChartOptions) (Figure, error) {
	bars := FrequencyBars(freqs, 0)
	if len(bars) == 0 {
		return NoDataFigure(KindFrequencies, "no keyword frequencies", o)
	}
	terms := make([]string, len(bars))
	data := make([]opts.BarData, len(bars))
	for i, b := range bars {
		terms[i] = b.Term
		data[i] = opts.BarData{Name: b.Term, Value: b.Frequency}
	}

	bar := charts.NewBar()
	global := []charts.GlobalOpts{
		initOpts(KindFrequencies, o),
		charts.WithTitleOpts(opts.Title{Title: titleOr(o, "Keyword frequencies")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "records"}),
	}
	if o.TopN > 0 && len(bars) > o.TopN {
		end := float32(100 * float64(o.TopN) / float64(len(bars)))
		global = append(global, charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: end}))
	}
	bar.SetGlobalOptions(global...)
	bar.SetXAxis(terms).AddSeries("frequency", data)
	return render(KindFrequencies, bar)
}

// PlotTemporalTrends draws one line per trend, up to o.Series, over the
// years of the first trend. Trends are expected in display order.
func PlotTemporalTrends(trends []types.TrendRecord, o ChartOptions) (Figure, error) {
	if len(trends) == 0 || len(trends[0].Points) == 0 {
		return NoDataFigure(KindTrends, "no dated records", o)
	}
	if o.Series > 0 && len(trends) > o.Series {
		trends = trends[:o.Series]
	}
	years := make([]string, len(trends[0].Points))
	for i, p := range trends[0].Points {
		years[i] = strconv.Itoa(p.Year)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(KindTrends, o),
		charts.WithTitleOpts(opts.Title{Title: titleOr(o, "Keyword trends")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "records"}),
	)
	line.SetXAxis(years)
	for _, t := range trends {
		data := make([]opts.LineData, len(t.Points))
		for i, p := range t.Points {
			data[i] = opts.LineData{Value: p.Count}
		}
		line.AddSeries(t.Term, data)
	}
	return render(KindTrends, line)
}

// PlotClusters draws projected points colored by cluster label. names, if
// not nil, labels the points (e.g. titles) and must align with labels.
// Three-component projections render as a 3D scatter.
func PlotClusters(proj types.Projection, labels []int, names []string, o ChartOptions) (Figure, error) {
	if len(proj.Coords) == 0 {
		return NoDataFigure(KindClusters, "no projected embeddings", o)
	}
	if len(labels) != len(proj.Coords) || (names != nil && len(names) != len(labels)) {
		return Figure{}, fmt.Errorf("%d labels, %d names for %d points: %w", len(labels), len(names), len(proj.Coords), ErrMisaligned)
	}
	groups := make(map[int][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	order := make([]int, 0, len(groups))
	for l := range groups {
		order = append(order, l)
	}
	sort.Ints(order)

	name := func(i int) string {
		if names != nil {
			return names[i]
		}
		return ""
	}
	seriesName := func(l int) string {
		if l == types.NoiseLabel {
			return "noise"
		}
		return "cluster " + strconv.Itoa(l)
	}
	title := charts.WithTitleOpts(opts.Title{Title: titleOr(o, "Semantic clusters"), Subtitle: proj.Method})
	tooltip := charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"})
	legend := charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"})

	if proj.Components == 3 {
		sc := charts.NewScatter3D()
		sc.SetGlobalOptions(initOpts(KindClusters, o), title, tooltip, legend)
		for _, l := range order {
			data := make([]opts.Chart3DData, len(groups[l]))
			for j, i := range groups[l] {
				c := proj.Coords[i]
				data[j] = opts.Chart3DData{Name: name(i), Value: []interface{}{c[0], c[1], c[2]}}
			}
			sc.AddSeries(seriesName(l), data)
		}
		return render(KindClusters, sc)
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		initOpts(KindClusters, o), title, tooltip, legend,
		charts.WithXAxisOpts(opts.XAxis{Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	for _, l := range order {
		data := make([]opts.ScatterData, len(groups[l]))
		for j, i := range groups[l] {
			c := proj.Coords[i]
			data[j] = opts.ScatterData{Name: name(i), Value: []float64{c[0], c[1]}}
		}
		sc.AddSeries(seriesName(l), data)
	}
	return render(KindClusters, sc)
}

// PlotLifecycle draws the number of keywords in each lifecycle stage.
func PlotLifecycle(trends []types.TrendRecord, o ChartOptions) (Figure, error) {
	counts := temporal.StageCounts(trends)
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return NoDataFigure(KindLifecycle, "no classified keywords", o)
	}
	stages := make([]string, len(types.LifecycleStages))
	data := make([]opts.BarData, len(types.LifecycleStages))
	for i, s := range types.LifecycleStages {
		stages[i] = string(s)
		data[i] = opts.BarData{Name: string(s), Value: counts[s]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(KindLifecycle, o),
		charts.WithTitleOpts(opts.Title{Title: titleOr(o, "Keyword lifecycle stages")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "keywords"}),
	)
	bar.SetXAxis(stages).AddSeries("keywords", data)
	return render(KindLifecycle, bar)
}

// PlotPublicationVolume draws publications per year.
func PlotPublicationVolume(volume []types.VolumePoint, o ChartOptions) (Figure, error) {
	if len(volume) == 0 {
		return NoDataFigure(KindVolume, "no dated records", o)
	}
	years := make([]string, len(volume))
	data := make([]opts.BarData, len(volume))
	for i, v := range volume {
		years[i] = strconv.Itoa(v.Year)
		data[i] = opts.BarData{Value: v.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(KindVolume, o),
		charts.WithTitleOpts(opts.Title{Title: titleOr(o, "Publications per year")}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "publications"}),
	)
	bar.SetXAxis(years).AddSeries("publications", data)
	return render(KindVolume, bar)
}

// PlotPeriodComparison draws one grouped bar chart per comparison: the
// keyword counts of the earlier and later period side by side, for up to
// o.TopN changes in comparison order. Several comparisons share one page.
func PlotPeriodComparison(comparisons []types.PeriodComparison, o ChartOptions) (Figure, error) {
	var bars []*charts.Bar
	for i, c := range comparisons {
		changes := c.Changes
		if len(changes) == 0 {
			continue
		}
		if o.TopN > 0 && len(changes) > o.TopN {
			changes = changes[:o.TopN]
		}
		terms := make([]string, len(changes))
		before := make([]opts.BarData, len(changes))
		after := make([]opts.BarData, len(changes))
		for j, ch := range changes {
			terms[j] = ch.Term
			before[j] = opts.BarData{Name: ch.Term, Value: ch.Before}
			after[j] = opts.BarData{Name: ch.Term, Value: ch.After}
		}

		bar := charts.NewBar()
		bar.SetGlobalOptions(
			initOpts(KindComparison+"-"+strconv.Itoa(i), o),
			charts.WithTitleOpts(opts.Title{
				Title:    titleOr(o, "Period comparison"),
				Subtitle: fmt.Sprintf("%s (%d-%d) vs %s (%d-%d)", c.Before.Name, c.Before.Start, c.Before.End, c.After.Name, c.After.Start, c.After.End),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"}}),
			charts.WithYAxisOpts(opts.YAxis{Name: "records"}),
		)
		bar.SetXAxis(terms).
			AddSeries(c.Before.Name, before).
			AddSeries(c.After.Name, after)
		bars = append(bars, bar)
	}

	switch len(bars) {
	case 0:
		return NoDataFigure(KindComparison, "no keyword changes between periods", o)
	case 1:
		return render(KindComparison, bars[0])
	}
	page := components.NewPage()
	page.SetPageTitle(titleOr(o, "Period comparison"))
	for _, b := range bars {
		page.AddCharts(b)
	}
	return render(KindComparison, page)
}
