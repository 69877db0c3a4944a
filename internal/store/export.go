// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-analytics/internal/report"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Export writes a stored run under dir/index/ and returns the written
// paths. YAML and JSON produce export-<run>.<ext>; CSV produces one table
// per keyword set plus trends and lifecycle tables in export-<run>/.
func (s *Store) Export(ctx context.Context, runID, format string) ([]string, error) {
	res, err := s.LoadRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(s.dir, indexDir, "export-"+runID)
	switch format {
	case FormatYAML:
		path := base + ".yaml"
		return []string{path}, ExportYAML(path, res)
	case FormatJSON:
		path := base + ".json"
		return []string{path}, ExportJSON(path, res)
	case FormatCSV:
		return ExportCSV(base, res)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// ExportYAML writes res to path as YAML.
func ExportYAML(path string, res *report.Results) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes res to path as indented JSON.
func ExportJSON(path string, res *report.Results) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportCSV writes the keyword, trend, and lifecycle tables of res into dir.
func ExportCSV(dir string, res *report.Results) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	var paths []string
	write := func(name string, fill func(f *os.File) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := fill(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
		return f.Close()
	}

	sets := append(res.KeywordSets[:len(res.KeywordSets):len(res.KeywordSets)], res.APIKeywords.Set())
	for _, set := range sets {
		if err := write(fmt.Sprintf("keywords-%s.csv", set.Method), func(f *os.File) error {
			return report.WriteKeywordsCSV(f, set)
		}); err != nil {
			return paths, err
		}
	}
	if err := write("trends.csv", func(f *os.File) error {
		return report.WriteTrendsCSV(f, res.Trends.Trends)
	}); err != nil {
		return paths, err
	}
	if err := write("lifecycle.csv", func(f *os.File) error {
		return report.WriteLifecycleCSV(f, res.Trends.Trends)
	}); err != nil {
		return paths, err
	}
	return paths, nil
}
