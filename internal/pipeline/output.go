// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-analytics/internal/report"
	"github.com/pdiddy/research-analytics/internal/store"
	"github.com/pdiddy/research-analytics/internal/visualize"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// Output file names.
const (
	ClustersFile  = "clusters.csv"
	TrendsFile    = "trends.csv"
	LifecycleFile = "lifecycle.csv"
	MarkdownFile  = "report.md"
	HTMLFile      = "report.html"
	JSONFile      = "results.json"
	YAMLFile      = "results.yaml"
)

// KeywordsFile returns the table name of one keyword method.
func KeywordsFile(m types.Method) string {
	return fmt.Sprintf("keywords-%s.csv", m)
}

// Write writes the tables, figures, and reports of res into the output
// directory and returns the written paths.
func (p *Pipeline) Write(res *report.Results, figs []visualize.Figure) ([]string, error) {
	dir := p.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	var written []string
	table := func(name string, fill func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		if err := writeFile(path, fill); err != nil {
			return err
		}
		written = append(written, path)
		fmt.Fprintf(p.w, "wrote %s\n", path)
		return nil
	}

	if res.Sections[report.SectionKeywords].Status != report.StatusSkipped {
		api := res.APIKeywords.Set()
		for _, set := range append([]types.KeywordSet{api}, res.KeywordSets...) {
			if err := table(KeywordsFile(set.Method), func(w io.Writer) error {
				return report.WriteKeywordsCSV(w, set)
			}); err != nil {
				return written, err
			}
		}
	}

	if res.Clustering != nil {
		if err := table(ClustersFile, func(w io.Writer) error {
			return report.WriteClustersCSV(w, res.PublicationIDs, *res.Clustering, res.Projection)
		}); err != nil {
			return written, err
		}
	}

	if !res.Trends.Empty() {
		if err := table(TrendsFile, func(w io.Writer) error {
			return report.WriteTrendsCSV(w, res.Trends.Trends)
		}); err != nil {
			return written, err
		}
		if err := table(LifecycleFile, func(w io.Writer) error {
			return report.WriteLifecycleCSV(w, res.Trends.Trends)
		}); err != nil {
			return written, err
		}
	}

	for _, f := range figs {
		path, err := f.Save(dir)
		if err != nil {
			return written, err
		}
		written = append(written, path)
		fmt.Fprintf(p.w, "wrote %s\n", path)
	}

	paths, err := WriteReports(dir, res, p.cfg.Output.Formats)
	for _, path := range paths {
		fmt.Fprintf(p.w, "wrote %s\n", path)
	}
	return append(written, paths...), err
}

// WriteReports renders res in every requested format into dir.
func WriteReports(dir string, res *report.Results, formats []types.OutputFormat) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	rep := report.Build(res)
	var written []string
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case types.OutputMarkdown:
			path = filepath.Join(dir, MarkdownFile)
			err = writeFile(path, func(w io.Writer) error { return report.RenderMarkdown(w, rep) })
		case types.OutputHTML:
			path = filepath.Join(dir, HTMLFile)
			err = writeFile(path, func(w io.Writer) error { return report.RenderHTML(w, rep) })
		case types.OutputJSON:
			path = filepath.Join(dir, JSONFile)
			err = store.ExportJSON(path, res)
		case types.OutputYAML:
			path = filepath.Join(dir, YAMLFile)
			err = store.ExportYAML(path, res)
		default:
			err = fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return written, fmt.Errorf("writing %s report: %w", format, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
