// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/research-analytics/pkg/types"
)

var funcs = map[string]any{
	"f3":   func(v float64) string { return fmt.Sprintf("%.3f", v) },
	"rate": formatRate,
	"optf": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.3f", *v)
	},
	"join":      strings.Join,
	"cell":      func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
	"pct":       percent,
	"anomalies": formatAnomalies,
	"changes":   formatChangePoints,
}

// percent formats part/whole; a zero whole yields "n/a".
func percent(part, whole int) string {
	if whole == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(whole))
}

func formatAnomalies(as []types.YearAnomaly) string {
	if len(as) == 0 {
		return "-"
	}
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = fmt.Sprintf("%d (z=%.2f)", a.Year, a.ZScore)
	}
	return strings.Join(parts, ", ")
}

func formatChangePoints(cs []types.ChangePoint) string {
	if len(cs) == 0 {
		return "-"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%d (%+.2f/yr)", c.Year, c.SlopeChange)
	}
	return strings.Join(parts, ", ")
}

func formatRate(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.0f%%", *v*100)
}

// markdownTmpl renders the report as Markdown.
var markdownTmpl = template.Must(template.New("markdown").Funcs(funcs).Parse(`# {{.Title}}

- Run: {{.RunID}}
- Generated: {{.Generated}}
- Source: {{.Source}}
{{if .NoData}}
**No data:** the corpus contained no usable records. Every analysis section is empty.
{{end}}
## Sections

| Section | Status | Note |
|---|---|---|
{{range .Ordered}}| {{.Title}} | {{.Status}} | {{cell .Reason}} |
{{end}}
{{with index .Sections "corpus"}}## {{.Title}}
{{end}}{{if (index .Sections "corpus").OK}}
Loaded {{.Corpus.Loaded}} of {{.Corpus.Records}} records ({{.Corpus.Skipped}} skipped, {{pct .Corpus.Skipped .Corpus.Records}}; {{.Corpus.Undated}} without a year). Source keywords: {{.Corpus.Occurrences}} occurrences of {{.Corpus.UniqueKeywords}} distinct terms.
{{else}}
_Omitted: {{(index .Sections "corpus").Reason}}_
{{end}}
{{with index .Sections "keywords"}}## {{.Title}}
{{end}}{{if (index .Sections "keywords").OK}}{{if .APIKeywords}}
### Source keywords

| Term | Frequency |
|---|---|
{{range .APIKeywords}}| {{cell .Term}} | {{.Frequency}} |
{{end}}{{end}}{{range .Keywords}}
### {{.Method}}

{{if .Skipped}}Skipped {{.Skipped}} of {{.Inputs}} texts ({{pct .Skipped .Inputs}}).

{{end}}{{if .Entries}}| Rank | Term | Frequency | Importance |
|---|---|---|---|
{{range .Entries}}| {{.Rank}} | {{cell .Term}} | {{.Frequency}} | {{f3 .Importance}} |
{{end}}{{else}}_No keywords extracted._
{{end}}{{end}}{{else}}
_Omitted: {{(index .Sections "keywords").Reason}}_
{{end}}
{{with index .Sections "semantic"}}## {{.Title}}
{{end}}{{if and (index .Sections "semantic").OK .Clustering}}
Method {{.Clustering.Method}}{{if .Model}} on {{.Model}}{{end}}: {{.Clustering.NumClusters}} clusters, {{.Clustering.Noise}} noise points. Silhouette {{optf .Clustering.Silhouette}}, Calinski-Harabasz {{optf .Clustering.CalinskiHarabasz}}.

| Cluster | Size | Mean distance | Top terms | Years |
|---|---|---|---|---|
{{range .Clusters}}| {{.Stats.Label}} | {{.Stats.Size}} | {{f3 .Stats.MeanDistance}} | {{with .Topic}}{{cell (join .TopTerms ", ")}} | {{if .FirstYear}}{{.FirstYear}}-{{.LastYear}}{{end}}{{else}} | {{end}} |
{{end}}{{else}}
_Omitted: {{(index .Sections "semantic").Reason}}_
{{end}}
{{with index .Sections "temporal"}}## {{.Title}}
{{end}}{{if (index .Sections "temporal").OK}}
Years {{.StartYear}}-{{.EndYear}}.

| Term | Total | Peak | Slope | Stage |
|---|---|---|---|---|
{{range .Trends}}| {{cell .Term}} | {{.Total}} | {{.PeakYear}} ({{.PeakCount}}) | {{f3 .Slope}} | {{.Stage}} |
{{end}}{{if .Stages}}
| Stage | Keywords |
|---|---|
{{range .Stages}}| {{.Stage}} | {{.Count}} |
{{end}}{{end}}{{with .PatternSummary}}
### Patterns

{{.Analyzed}} keywords analyzed: {{.WithAnomalies}} with anomalous years, {{.WithChangePoints}} with change points, {{.HighVolatility}} highly volatile. Mean volatility {{f3 .AverageVolatility}}.
{{end}}{{if .Patterns}}
| Term | Volatility | Anomalies | Change points |
|---|---|---|---|
{{range .Patterns}}| {{cell .Term}} | {{f3 .Volatility}} | {{anomalies .Anomalies}} | {{changes .ChangePoints}} |
{{end}}{{end}}{{range .Comparisons}}
### {{.Before.Name}} ({{.Before.Start}}-{{.Before.End}}) vs {{.After.Name}} ({{.After.Start}}-{{.After.End}})

{{.Common}} keywords in both periods.

| Term | Before | After | Growth | Change |
|---|---|---|---|---|
{{range .Changes}}| {{cell .Term}} | {{.Before}} | {{.After}} | {{rate .Growth}} | {{.Type}} |
{{end}}{{end}}{{else}}
_Omitted: {{(index .Sections "temporal").Reason}}_
{{end}}
{{with index .Sections "figures"}}## {{.Title}}
{{end}}{{if (index .Sections "figures").OK}}
{{range .Figures}}- [{{.Kind}}]({{.File}}){{if .NoData}} (no data: {{.Reason}}){{end}}
{{end}}{{else}}
_Omitted: {{(index .Sections "figures").Reason}}_
{{end}}`))

// htmlTmpl renders the report as a standalone HTML page.
var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.omitted { color: #888; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Run {{.RunID}}, generated {{.Generated}} from {{.Source}}</p>
{{if .NoData}}<p class="omitted"><strong>No data:</strong> the corpus contained no usable records. Every analysis section is empty.</p>{{end}}
<h2>Sections</h2>
<table>
<tr><th>Section</th><th>Status</th><th>Note</th></tr>
{{range .Ordered}}<tr><td>{{.Title}}</td><td>{{.Status}}</td><td>{{.Reason}}</td></tr>
{{end}}</table>

<h2>Corpus</h2>
{{if (index .Sections "corpus").OK}}<p>Loaded {{.Corpus.Loaded}} of {{.Corpus.Records}} records ({{.Corpus.Skipped}} skipped, {{pct .Corpus.Skipped .Corpus.Records}}; {{.Corpus.Undated}} without a year). Source keywords: {{.Corpus.Occurrences}} occurrences of {{.Corpus.UniqueKeywords}} distinct terms.</p>
{{else}}<p class="omitted">Omitted: {{(index .Sections "corpus").Reason}}</p>
{{end}}
<h2>Keywords</h2>
{{if (index .Sections "keywords").OK}}{{if .APIKeywords}}<h3>Source keywords</h3>
<table>
<tr><th>Term</th><th>Frequency</th></tr>
{{range .APIKeywords}}<tr><td>{{.Term}}</td><td>{{.Frequency}}</td></tr>
{{end}}</table>
{{end}}{{range .Keywords}}<h3>{{.Method}}</h3>
{{if .Skipped}}<p>Skipped {{.Skipped}} of {{.Inputs}} texts ({{pct .Skipped .Inputs}}).</p>
{{end}}{{if .Entries}}<table>
<tr><th>Rank</th><th>Term</th><th>Frequency</th><th>Importance</th></tr>
{{range .Entries}}<tr><td>{{.Rank}}</td><td>{{.Term}}</td><td>{{.Frequency}}</td><td>{{f3 .Importance}}</td></tr>
{{end}}</table>
{{else}}<p class="omitted">No keywords extracted.</p>
{{end}}{{end}}{{else}}<p class="omitted">Omitted: {{(index .Sections "keywords").Reason}}</p>
{{end}}
<h2>Semantic clusters</h2>
{{if and (index .Sections "semantic").OK .Clustering}}<p>Method {{.Clustering.Method}}{{if .Model}} on {{.Model}}{{end}}: {{.Clustering.NumClusters}} clusters, {{.Clustering.Noise}} noise points. Silhouette {{optf .Clustering.Silhouette}}, Calinski-Harabasz {{optf .Clustering.CalinskiHarabasz}}.</p>
<table>
<tr><th>Cluster</th><th>Size</th><th>Mean distance</th><th>Top terms</th><th>Years</th></tr>
{{range .Clusters}}<tr><td>{{.Stats.Label}}</td><td>{{.Stats.Size}}</td><td>{{f3 .Stats.MeanDistance}}</td>{{with .Topic}}<td>{{join .TopTerms ", "}}</td><td>{{if .FirstYear}}{{.FirstYear}}-{{.LastYear}}{{end}}</td>{{else}}<td></td><td></td>{{end}}</tr>
{{end}}</table>
{{else}}<p class="omitted">Omitted: {{(index .Sections "semantic").Reason}}</p>
{{end}}
<h2>Temporal trends</h2>
{{if (index .Sections "temporal").OK}}<p>Years {{.StartYear}}-{{.EndYear}}.</p>
<table>
<tr><th>Term</th><th>Total</th><th>Peak</th><th>Slope</th><th>Stage</th></tr>
{{range .Trends}}<tr><td>{{.Term}}</td><td>{{.Total}}</td><td>{{.PeakYear}} ({{.PeakCount}})</td><td>{{f3 .Slope}}</td><td>{{.Stage}}</td></tr>
{{end}}</table>
{{if .Stages}}<table>
<tr><th>Stage</th><th>Keywords</th></tr>
{{range .Stages}}<tr><td>{{.Stage}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
{{end}}{{with .PatternSummary}}<h3>Patterns</h3>
<p>{{.Analyzed}} keywords analyzed: {{.WithAnomalies}} with anomalous years, {{.WithChangePoints}} with change points, {{.HighVolatility}} highly volatile. Mean volatility {{f3 .AverageVolatility}}.</p>
{{end}}{{if .Patterns}}<table>
<tr><th>Term</th><th>Volatility</th><th>Anomalies</th><th>Change points</th></tr>
{{range .Patterns}}<tr><td>{{.Term}}</td><td>{{f3 .Volatility}}</td><td>{{anomalies .Anomalies}}</td><td>{{changes .ChangePoints}}</td></tr>
{{end}}</table>
{{end}}{{range .Comparisons}}<h3>{{.Before.Name}} ({{.Before.Start}}-{{.Before.End}}) vs {{.After.Name}} ({{.After.Start}}-{{.After.End}})</h3>
<p>{{.Common}} keywords in both periods.</p>
<table>
<tr><th>Term</th><th>Before</th><th>After</th><th>Growth</th><th>Change</th></tr>
{{range .Changes}}<tr><td>{{.Term}}</td><td>{{.Before}}</td><td>{{.After}}</td><td>{{rate .Growth}}</td><td>{{.Type}}</td></tr>
{{end}}</table>
{{end}}{{else}}<p class="omitted">Omitted: {{(index .Sections "temporal").Reason}}</p>
{{end}}
<h2>Figures</h2>
{{if (index .Sections "figures").OK}}<ul>
{{range .Figures}}<li><a href="{{.File}}">{{.Kind}}</a>{{if .NoData}} (no data: {{.Reason}}){{end}}</li>
{{end}}</ul>
{{else}}<p class="omitted">Omitted: {{(index .Sections "figures").Reason}}</p>
{{end}}</body>
</html>
`))

// RenderMarkdown writes the report as Markdown.
func RenderMarkdown(w io.Writer, rep Report) error {
	if err := markdownTmpl.Execute(w, rep); err != nil {
		return fmt.Errorf("rendering markdown report: %w", err)
	}
	return nil
}

// RenderHTML writes the report as HTML. Text from the corpus is escaped.
func RenderHTML(w io.Writer, rep Report) error {
	if err := htmlTmpl.Execute(w, rep); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}
