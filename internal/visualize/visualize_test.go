// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visualize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-analytics/pkg/types"
)

func cloudConfig() types.WordCloudConfig {
	return types.WordCloudConfig{
		MaxWords: 100, Width: 800, Height: 400,
		BackgroundColor: "white", Colormap: "viridis", RandomState: 42,
	}
}

func sampleFreqs() map[string]int {
	return map[string]int{
		"deep learning":               3,
		"large language models":       3,
		"computer vision":             2,
		"natural language processing": 2,
		"privacy":                     1,
		"unused":                      0,
	}
}

func TestWordCloudKeepsEveryTerm(t *testing.T) {
	freqs := sampleFreqs()
	wc := CreateWordCloud(freqs, cloudConfig())

	assert.False(t, wc.NoData)
	want := map[string]int{}
	for k, v := range freqs {
		if v > 0 {
			want[k] = v
		}
	}
	assert.Equal(t, want, wc.Frequencies())
	for _, w := range wc.Words {
		assert.False(t, w.Overlaps, w.Term)
		assert.GreaterOrEqual(t, w.X, 0.0)
		assert.GreaterOrEqual(t, w.Y, 0.0)
		assert.LessOrEqual(t, w.X+w.Width, 800.0)
		assert.LessOrEqual(t, w.Y+w.Height, 400.0)
		assert.NotEmpty(t, w.Color)
	}
}

func TestWordCloudDeterministic(t *testing.T) {
	a := CreateWordCloud(sampleFreqs(), cloudConfig())
	b := CreateWordCloud(sampleFreqs(), cloudConfig())
	assert.Equal(t, a, b)
	assert.Equal(t, a.SVG(), b.SVG())
}

func TestWordCloudNoOverlap(t *testing.T) {
	wc := CreateWordCloud(sampleFreqs(), cloudConfig())
	for i, a := range wc.Words {
		for _, b := range wc.Words[i+1:] {
			overlap := a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
			assert.False(t, overlap, "%s overlaps %s", a.Term, b.Term)
		}
	}
}

func TestWordCloudKeepsWordsThatDoNotFit(t *testing.T) {
	cfg := cloudConfig()
	cfg.Width, cfg.Height = 40, 40
	wc := CreateWordCloud(sampleFreqs(), cfg)

	require.Len(t, wc.Words, 5)
	flagged := map[string]bool{}
	for _, w := range wc.Words {
		flagged[w.Term] = w.Overlaps
	}
	assert.True(t, flagged["large language models"])
	assert.True(t, flagged["natural language processing"])
	assert.Contains(t, string(wc.SVG()), "large language models")
}

func TestWordCloudBiggerWordsFirst(t *testing.T) {
	wc := CreateWordCloud(sampleFreqs(), cloudConfig())
	require.Len(t, wc.Words, 5)
	assert.Equal(t, "deep learning", wc.Words[0].Term)
	assert.Equal(t, "privacy", wc.Words[4].Term)
}

func TestWordCloudMaxWords(t *testing.T) {
	cfg := cloudConfig()
	cfg.MaxWords = 2
	wc := CreateWordCloud(sampleFreqs(), cfg)
	require.Len(t, wc.Words, 2)
	assert.Equal(t, "deep learning", wc.Words[0].Term)
	assert.Equal(t, "large language models", wc.Words[1].Term)
}

func TestWordCloudEmpty(t *testing.T) {
	wc := CreateWordCloud(map[string]int{}, cloudConfig())
	assert.True(t, wc.NoData)
	assert.Empty(t, wc.Words)

	f := wc.Figure()
	assert.True(t, f.NoData)
	assert.Equal(t, "wordcloud.svg", f.Filename())
	assert.Contains(t, string(f.Content), "No data")
}

func TestWordCloudSVGEscapes(t *testing.T) {
	wc := CreateWordCloud(map[string]int{"r&d <lab>": 2}, cloudConfig())
	svg := string(wc.SVG())
	assert.Contains(t, svg, "r&amp;d &lt;lab&gt;")
	assert.True(t, strings.HasPrefix(svg, "<svg"))
}

func TestFrequencyBars(t *testing.T) {
	bars := FrequencyBars(sampleFreqs(), 0)
	require.Len(t, bars, 5)
	assert.Equal(t, FrequencyBar{Term: "deep learning", Frequency: 3}, bars[0])
	assert.Equal(t, FrequencyBar{Term: "large language models", Frequency: 3}, bars[1])
	assert.Equal(t, FrequencyBar{Term: "privacy", Frequency: 1}, bars[4])

	assert.Len(t, FrequencyBars(sampleFreqs(), 3), 3)
}

func TestPlotKeywordFrequencies(t *testing.T) {
	f, err := PlotKeywordFrequencies(sampleFreqs(), ChartOptions{TopN: 2})
	require.NoError(t, err)
	assert.False(t, f.NoData)
	assert.Equal(t, "frequencies.html", f.Filename())

	html := string(f.Content)
	for term, freq := range sampleFreqs() {
		if freq > 0 {
			assert.Contains(t, html, term)
		}
	}
	assert.NotContains(t, html, "unused")
	assert.Contains(t, html, "dataZoom")
}

func TestPlotKeywordFrequenciesEmpty(t *testing.T) {
	f, err := PlotKeywordFrequencies(nil, ChartOptions{})
	require.NoError(t, err)
	assert.True(t, f.NoData)
	assert.Contains(t, string(f.Content), "No data")
}

func TestPlotTemporalTrends(t *testing.T) {
	trends := []types.TrendRecord{
		{Term: "privacy", Points: []types.YearCount{{Year: 2020, Count: 1}, {Year: 2021, Count: 3}}},
		{Term: "graph mining", Points: []types.YearCount{{Year: 2020, Count: 2}, {Year: 2021, Count: 0}}},
		{Term: "dropped", Points: []types.YearCount{{Year: 2020, Count: 1}, {Year: 2021, Count: 0}}},
	}
	f, err := PlotTemporalTrends(trends, ChartOptions{Series: 2})
	require.NoError(t, err)
	html := string(f.Content)
	assert.Contains(t, html, "privacy")
	assert.Contains(t, html, "graph mining")
	assert.Contains(t, html, "2021")
	assert.NotContains(t, html, "dropped")

	f, err = PlotTemporalTrends(nil, ChartOptions{})
	require.NoError(t, err)
	assert.True(t, f.NoData)
}

func TestPlotClusters(t *testing.T) {
	proj := types.Projection{Method: "pca", Components: 2, Coords: [][]float64{{0, 0}, {1, 1}, {5, 5}}}
	f, err := PlotClusters(proj, []int{0, 0, types.NoiseLabel}, []string{"a", "b", "c"}, ChartOptions{})
	require.NoError(t, err)
	html := string(f.Content)
	assert.Contains(t, html, "cluster 0")
	assert.Contains(t, html, "noise")

	proj3 := types.Projection{Method: "pca", Components: 3, Coords: [][]float64{{0, 0, 0}, {1, 1, 1}}}
	f, err = PlotClusters(proj3, []int{0, 1}, nil, ChartOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(f.Content), "scatter3D")

	_, err = PlotClusters(proj, []int{0}, nil, ChartOptions{})
	assert.ErrorIs(t, err, ErrMisaligned)

	f, err = PlotClusters(types.Projection{}, nil, nil, ChartOptions{})
	require.NoError(t, err)
	assert.True(t, f.NoData)
}

func TestPlotLifecycleAndVolume(t *testing.T) {
	f, err := PlotLifecycle([]types.TrendRecord{{Term: "a", Stage: types.StageEmerging}}, ChartOptions{})
	require.NoError(t, err)
	assert.False(t, f.NoData)
	assert.Contains(t, string(f.Content), "emerging")

	f, err = PlotLifecycle(nil, ChartOptions{})
	require.NoError(t, err)
	assert.True(t, f.NoData)

	f, err = PlotPublicationVolume([]types.VolumePoint{{Year: 1999, Count: 4}}, ChartOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(f.Content), "1999")

	f, err = PlotPublicationVolume(nil, ChartOptions{})
	require.NoError(t, err)
	assert.True(t, f.NoData)
}

func TestPlotPeriodComparison(t *testing.T) {
	early := types.Period{Name: "early", Start: 2000, End: 2005}
	recent := types.Period{Name: "recent", Start: 2010, End: 2015}
	later := types.Period{Name: "later", Start: 2016, End: 2020}
	first := types.PeriodComparison{Before: early, After: recent, Changes: []types.KeywordChange{
		{Term: "neural networks", Before: 1, After: 2, Type: types.ChangeIncreased},
		{Term: "expert systems", Before: 2, After: 0, Type: types.ChangeDisappeared},
		{Term: "fuzzy logic", Before: 1, After: 1, Type: types.ChangeStable},
	}}

	f, err := PlotPeriodComparison([]types.PeriodComparison{first}, ChartOptions{TopN: 2})
	require.NoError(t, err)
	assert.False(t, f.NoData)
	assert.Equal(t, KindComparison, f.Kind)
	html := string(f.Content)
	assert.Contains(t, html, "early (2000-2005) vs recent (2010-2015)")
	assert.Contains(t, html, "neural networks")
	assert.Contains(t, html, "expert systems")
	assert.NotContains(t, html, "fuzzy logic")

	second := types.PeriodComparison{Before: recent, After: later, Changes: []types.KeywordChange{
		{Term: "transformers", Before: 0, After: 4, Type: types.ChangeEmerged},
	}}
	f, err = PlotPeriodComparison([]types.PeriodComparison{first, second}, ChartOptions{})
	require.NoError(t, err)
	html = string(f.Content)
	assert.Contains(t, html, "recent (2010-2015) vs later (2016-2020)")
	assert.Contains(t, html, "transformers")
	assert.Contains(t, html, "fuzzy logic")

	f, err = PlotPeriodComparison([]types.PeriodComparison{{Before: early, After: recent}}, ChartOptions{})
	require.NoError(t, err)
	assert.True(t, f.NoData)

	f, err = PlotPeriodComparison(nil, ChartOptions{})
	require.NoError(t, err)
	assert.True(t, f.NoData)
	assert.Equal(t, KindComparison, f.Kind)
}

func TestFigureSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	f := CreateWordCloud(sampleFreqs(), cloudConfig()).Figure()
	path, err := f.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wordcloud.svg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Content, data)
}
