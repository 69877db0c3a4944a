// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads publication records produced by acquisition tools.
// CSV files need a header row; JSON files hold an array of records or an
// object with a "publications" array.
package corpus

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported corpus format")

// Summary holds counts from one load.
type Summary struct {
	Loaded int `json:"loaded" yaml:"loaded"`
	// Skipped counts malformed rows and duplicate IDs.
	Skipped int `json:"skipped" yaml:"skipped"`
	// Undated counts loaded records without a usable year.
	Undated int `json:"undated" yaml:"undated"`
}

// Load reads the corpus at path, choosing the decoder by file extension.
func Load(path string, log *zap.Logger) ([]types.Publication, Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(f, log)
	case ".json":
		return LoadJSON(f, log)
	default:
		return nil, Summary{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

var csvColumns = map[string]string{
	"id":               "id",
	"paper_id":         "id",
	"title":            "title",
	"abstract":         "abstract",
	"year":             "year",
	"publication_year": "year",
	"keywords":         "keywords",
	"doi":              "doi",
	"source":           "source",
	"publication_date": "publication_date",
	"published_date":   "publication_date",
	"fields_of_study":  "fields_of_study",
	"cited_by_count":   "cited_by_count",
	"citation_count":   "cited_by_count",
}

// LoadCSV reads records from CSV with a header row.
func LoadCSV(r io.Reader, log *zap.Logger) ([]types.Publication, Summary, error) {
	log = logging.OrNop(log)
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []types.Publication{}, Summary{}, nil
	}
	if err != nil {
		return nil, Summary{}, fmt.Errorf("reading CSV header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := csvColumns[name]; ok {
			if _, seen := cols[field]; !seen {
				cols[field] = i
			}
		}
	}

	b := newBuilder(log)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn("skipping malformed CSV row", zap.Int("line", line), zap.Error(err))
			b.summary.Skipped++
			continue
		}
		get := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		rec := rawRecord{
			ID:              get("id"),
			Title:           get("title"),
			Abstract:        get("abstract"),
			Year:            get("year"),
			Keywords:        SplitKeywords(get("keywords")),
			DOI:             get("doi"),
			Source:          get("source"),
			PublicationDate: get("publication_date"),
			FieldsOfStudy:   SplitKeywords(get("fields_of_study")),
		}
		if c := get("cited_by_count"); c != "" {
			n, err := citationCount(c)
			if err != nil {
				log.Warn("ignoring bad citation count", zap.Int("line", line), zap.String("value", c))
			}
			rec.CitedByCount = n
		}
		b.add(rec, line)
	}
	return b.finish()
}

// LoadJSON reads records from a JSON array or {"publications": [...]}.
func LoadJSON(r io.Reader, log *zap.Logger) ([]types.Publication, Summary, error) {
	log = logging.OrNop(log)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("reading JSON corpus: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return []types.Publication{}, Summary{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var wrapped struct {
			Publications []json.RawMessage `json:"publications"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, Summary{}, fmt.Errorf("parsing JSON corpus: %w", err)
		}
		items = wrapped.Publications
	}

	b := newBuilder(log)
	for i, item := range items {
		var j jsonRecord
		if err := json.Unmarshal(item, &j); err != nil {
			log.Warn("skipping malformed JSON record", zap.Int("index", i), zap.Error(err))
			b.summary.Skipped++
			continue
		}
		b.add(j.raw(log.With(zap.Int("index", i))), i+1)
	}
	return b.finish()
}

type rawRecord struct {
	ID              string
	Title           string
	Abstract        string
	Year            string
	Keywords        []string
	DOI             string
	Source          string
	PublicationDate string
	FieldsOfStudy   []string
	CitedByCount    int
}

type jsonRecord struct {
	ID              string          `json:"id"`
	PaperID         string          `json:"paper_id"`
	Title           string          `json:"title"`
	Abstract        string          `json:"abstract"`
	Year            json.RawMessage `json:"year"`
	Keywords        json.RawMessage `json:"keywords"`
	DOI             string          `json:"doi"`
	Source          string          `json:"source"`
	PublicationDate string          `json:"publication_date"`
	FieldsOfStudy   json.RawMessage `json:"fields_of_study"`
	CitedByCount    json.RawMessage `json:"cited_by_count"`
}

// raw converts a decoded record. Fields with unusable values are dropped
// with a warning; the record itself is kept.
func (j jsonRecord) raw(log *zap.Logger) rawRecord {
	rec := rawRecord{
		ID:              firstNonEmpty(j.ID, j.PaperID),
		Title:           j.Title,
		Abstract:        j.Abstract,
		DOI:             j.DOI,
		Source:          j.Source,
		PublicationDate: j.PublicationDate,
		Keywords:        stringList(j.Keywords, "keywords", log),
		FieldsOfStudy:   stringList(j.FieldsOfStudy, "fields_of_study", log),
	}
	year, err := scalarString(j.Year)
	if err != nil {
		log.Warn("ignoring bad year", zap.String("value", string(j.Year)))
	}
	rec.Year = year

	count, err := scalarString(j.CitedByCount)
	if err == nil {
		rec.CitedByCount, err = citationCount(count)
	}
	if err != nil {
		log.Warn("ignoring bad citation count", zap.String("value", string(j.CitedByCount)))
	}
	return rec
}

// citationCount parses a non-negative integer count; empty is zero.
func citationCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid citation count %q", s)
	}
	return int(f), nil
}

// scalarString accepts a JSON number, string, or null.
func scalarString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// stringList accepts a JSON array, a delimited string, or null. Array
// entries that are not strings are dropped one by one; any other value
// drops the whole field.
func stringList(raw json.RawMessage, field string, log *zap.Logger) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return SplitKeywords(s)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn("ignoring field that is not a list", zap.String("field", field), zap.String("value", string(raw)))
		return nil
	}
	list := make([]string, 0, len(items))
	for i, item := range items {
		var v string
		if err := json.Unmarshal(item, &v); err != nil || string(item) == "null" {
			log.Warn("dropping non-string list entry",
				zap.String("field", field), zap.Int("entry", i), zap.String("value", string(item)))
			continue
		}
		list = append(list, v)
	}
	return list
}

type builder struct {
	log     *zap.Logger
	records []types.Publication
	seen    map[string]bool
	summary Summary
}

func newBuilder(log *zap.Logger) *builder {
	return &builder{log: log, records: []types.Publication{}, seen: make(map[string]bool)}
}

func (b *builder) add(rec rawRecord, position int) {
	id := firstNonEmpty(rec.ID, rec.DOI)
	if id == "" {
		id = fmt.Sprintf("record-%d", position)
	}
	if b.seen[id] {
		b.log.Warn("skipping duplicate record", zap.String("id", id), zap.Int("position", position))
		b.summary.Skipped++
		return
	}
	b.seen[id] = true

	pub := types.Publication{
		ID:              id,
		Title:           strings.TrimSpace(rec.Title),
		Abstract:        strings.TrimSpace(rec.Abstract),
		Year:            ParseYear(rec.Year, rec.PublicationDate),
		Keywords:        rec.Keywords,
		DOI:             rec.DOI,
		Source:          rec.Source,
		PublicationDate: rec.PublicationDate,
		FieldsOfStudy:   rec.FieldsOfStudy,
		CitedByCount:    rec.CitedByCount,
	}
	if pub.Keywords == nil {
		pub.Keywords = []string{}
	}
	if !pub.HasYear() {
		b.summary.Undated++
	}
	b.records = append(b.records, pub)
	b.summary.Loaded++
}

func (b *builder) finish() ([]types.Publication, Summary, error) {
	b.log.Info("loaded corpus",
		zap.Int("loaded", b.summary.Loaded),
		zap.Int("skipped", b.summary.Skipped),
		zap.Int("undated", b.summary.Undated))
	return b.records, b.summary, nil
}

var leadingYear = regexp.MustCompile(`^(\d{4})`)

// ParseYear returns the year from an explicit year value, falling back to
// the leading four digits of a publication date. Years outside 1000-9999
// and unparseable values yield nil.
func ParseYear(year, publicationDate string) *int {
	if y := strings.TrimSpace(year); y != "" {
		if f, err := strconv.ParseFloat(y, 64); err == nil && f == float64(int(f)) {
			return validYear(int(f))
		}
		return nil
	}
	if m := leadingYear.FindStringSubmatch(strings.TrimSpace(publicationDate)); m != nil {
		n, _ := strconv.Atoi(m[1])
		return validYear(n)
	}
	return nil
}

func validYear(y int) *int {
	if y < 1000 || y > 9999 {
		return nil
	}
	return types.IntPtr(y)
}

// SplitKeywords splits a delimited keyword field on ';', '|' or ','.
// The first delimiter present wins, in that order.
func SplitKeywords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	sep := ","
	for _, d := range []string{";", "|"} {
		if strings.Contains(s, d) {
			sep = d
			break
		}
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
