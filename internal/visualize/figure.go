// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package visualize renders analysis results: a word cloud as SVG and
// charts as standalone HTML pages built with go-echarts. Every function is
// a pure function of its input and configuration. Empty input produces a
// figure with NoData set instead of an error.
package visualize

import (
	"fmt"
	"os"
	"path/filepath"
)

// Figure kinds. Each kind is written to <kind><ext> in the output directory.
const (
	KindWordCloud   = "wordcloud"
	KindFrequencies = "frequencies"
	KindTrends      = "trends"
	KindClusters    = "clusters"
	KindLifecycle   = "lifecycle"
	KindVolume      = "volume"
	KindComparison  = "comparison"
)

// Figure is one rendered visualization.
type Figure struct {
	Kind string
	// Ext is ".svg" or ".html".
	Ext     string
	Content []byte

	// NoData marks a placeholder rendered for empty input; Reason says why.
	NoData bool
	Reason string
}

// Filename returns the file name the figure is written to.
func (f Figure) Filename() string {
	return f.Kind + f.Ext
}

// Save writes the figure into dir and returns the file path.
func (f Figure) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, f.Filename())
	if err := os.WriteFile(path, f.Content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
