// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visualize

import (
	"fmt"
	"html"
	"math"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-analytics/pkg/types"
)

const (
	minFontSize     = 6.0
	fontShrink      = 0.9
	glyphWidth      = 0.6
	baseline        = 0.8
	verticalChance  = 0.1
	spiralStep      = 0.15
	spiralGrowth    = 2.0
	wordPadding     = 1.0
	noDataCloudText = "No data"
)

// PlacedWord is one term positioned in the cloud. X and Y are the top-left
// corner of its bounding box.
type PlacedWord struct {
	Term      string  `json:"term"`
	Frequency int     `json:"frequency"`
	FontSize  float64 `json:"font_size"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Vertical  bool    `json:"vertical"`
	Color     string  `json:"color"`

	// Overlaps is set when no free spot existed even at the smallest font
	// size and the word was placed on top of others.
	Overlaps bool `json:"overlaps,omitempty"`
}

// WordCloud is a laid-out word cloud.
type WordCloud struct {
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Background string       `json:"background"`
	Words      []PlacedWord `json:"words"`
	NoData     bool         `json:"no_data"`
}

// CreateWordCloud lays out the terms with frequency > 0, highest first, up
// to cfg.MaxWords. Font size scales linearly with frequency. Each word is
// placed on an Archimedean spiral from a random start, shrinking until it
// fits. The same input and RandomState give the same layout.
func CreateWordCloud(freqs map[string]int, cfg types.WordCloudConfig) WordCloud {
	wc := WordCloud{Width: cfg.Width, Height: cfg.Height, Background: cfg.BackgroundColor, Words: []PlacedWord{}}
	bars := FrequencyBars(freqs, cfg.MaxWords)
	if len(bars) == 0 {
		wc.NoData = true
		return wc
	}

	seed := uint64(cfg.RandomState)
	rng := rand.New(rand.NewPCG(seed, seed))
	colors := palette(cfg.Colormap)
	maxFont := float64(cfg.Height) / 4
	lo, hi := bars[len(bars)-1].Frequency, bars[0].Frequency

	for _, b := range bars {
		size := maxFont
		if hi > lo {
			size = minFontSize + (maxFont-minFontSize)*float64(b.Frequency-lo)/float64(hi-lo)
		}
		w := PlacedWord{
			Term:      b.Term,
			Frequency: b.Frequency,
			Vertical:  rng.Float64() < verticalChance,
			Color:     colors[rng.IntN(len(colors))],
		}
		wc.place(&w, size, rng)
		wc.Words = append(wc.Words, w)
	}
	return wc
}

func (wc *WordCloud) place(w *PlacedWord, size float64, rng *rand.Rand) {
	cw, ch := float64(wc.Width), float64(wc.Height)
	for ; size >= minFontSize; size *= fontShrink {
		bw, bh := boxSize(w.Term, size, w.Vertical)
		if bw > cw || bh > ch {
			continue
		}
		cx, cy := rng.Float64()*(cw-bw), rng.Float64()*(ch-bh)
		maxT := math.Hypot(cw, ch) / spiralGrowth
		for t := 0.0; t <= maxT; t += spiralStep {
			x := cx + spiralGrowth*t*math.Cos(t)
			y := cy + spiralGrowth*t*math.Sin(t)
			if x < 0 || y < 0 || x+bw > cw || y+bh > ch {
				continue
			}
			if wc.free(x, y, bw, bh) {
				w.FontSize, w.X, w.Y, w.Width, w.Height = size, x, y, bw, bh
				return
			}
		}
	}
	bw, bh := boxSize(w.Term, minFontSize, w.Vertical)
	w.FontSize, w.X, w.Y, w.Width, w.Height = minFontSize, 0, 0, bw, bh
	w.Overlaps = true
}

func boxSize(term string, size float64, vertical bool) (float64, float64) {
	w := glyphWidth * size * float64(utf8.RuneCountInString(term))
	h := size
	if vertical {
		return h, w
	}
	return w, h
}

func (wc *WordCloud) free(x, y, w, h float64) bool {
	for _, o := range wc.Words {
		if x < o.X+o.Width+wordPadding && o.X < x+w+wordPadding &&
			y < o.Y+o.Height+wordPadding && o.Y < y+h+wordPadding {
			return false
		}
	}
	return true
}

// Frequencies returns the placed terms and their frequencies.
func (wc WordCloud) Frequencies() map[string]int {
	out := make(map[string]int, len(wc.Words))
	for _, w := range wc.Words {
		out[w.Term] = w.Frequency
	}
	return out
}

// SVG renders the cloud. A NoData cloud renders a centered placeholder.
func (wc WordCloud) SVG() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		wc.Width, wc.Height, wc.Width, wc.Height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(wc.Background))
	if wc.NoData {
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="24" fill="#888888" text-anchor="middle">%s</text>`+"\n",
			wc.Width/2, wc.Height/2, noDataCloudText)
	}
	for _, w := range wc.Words {
		term := html.EscapeString(w.Term)
		if w.Vertical {
			x, y := w.X+baseline*w.FontSize, w.Y+w.Height
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" fill="%s" transform="rotate(-90 %.1f %.1f)">%s</text>`+"\n",
				x, y, w.FontSize, w.Color, x, y, term)
			continue
		}
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" fill="%s">%s</text>`+"\n",
			w.X, w.Y+baseline*w.FontSize, w.FontSize, w.Color, term)
	}
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// Figure wraps the rendered SVG.
func (wc WordCloud) Figure() Figure {
	f := Figure{Kind: KindWordCloud, Ext: ".svg", Content: wc.SVG(), NoData: wc.NoData}
	if wc.NoData {
		f.Reason = "no keyword frequencies"
	}
	return f
}
