// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis runs in a SQLite database and doubles as
// an embedding cache backend. The database lives at <dir>/index/analytics.db.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-analytics/internal/embedding"
	"github.com/pdiddy/research-analytics/internal/report"
	"github.com/pdiddy/research-analytics/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "analytics.db"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Store manages the analytics SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the database at cfg.Dir/index/analytics.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, indexDir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT,
			config TEXT,
			loaded INTEGER,
			skipped INTEGER,
			undated INTEGER,
			sections TEXT,
			results TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS publications (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			title TEXT,
			year INTEGER,
			doi TEXT,
			source TEXT,
			keywords TEXT,
			cluster INTEGER,
			PRIMARY KEY (run_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS keywords (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			method TEXT NOT NULL,
			term TEXT NOT NULL,
			frequency INTEGER,
			score REAL,
			importance REAL,
			rank INTEGER,
			PRIMARY KEY (run_id, method, term)
		)`,
		`CREATE TABLE IF NOT EXISTS clusters (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			label INTEGER NOT NULL,
			size INTEGER,
			mean_distance REAL,
			max_distance REAL,
			min_distance REAL,
			std_distance REAL,
			centroid_norm REAL,
			top_terms TEXT,
			PRIMARY KEY (run_id, label)
		)`,
		`CREATE TABLE IF NOT EXISTS trends (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			term TEXT NOT NULL,
			year INTEGER NOT NULL,
			count INTEGER,
			PRIMARY KEY (run_id, term, year)
		)`,
		`CREATE TABLE IF NOT EXISTS lifecycle (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			term TEXT NOT NULL,
			stage TEXT,
			total INTEGER,
			first_year INTEGER,
			last_year INTEGER,
			peak_year INTEGER,
			slope REAL,
			PRIMARY KEY (run_id, term)
		)`,
		`CREATE TABLE IF NOT EXISTS embedding_cache (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_keywords_term ON keywords(term)`,
		`CREATE INDEX IF NOT EXISTS idx_trends_term ON trends(term)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns a cached embedding. It implements embedding.KV.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM embedding_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, embedding.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding cache: %w", err)
	}
	return value, nil
}

// Set stores an embedding. It implements embedding.KV.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embedding_cache (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing embedding cache: %w", err)
	}
	return nil
}

// SaveRun writes one pipeline run with its publications, keyword sets,
// clusters, and trends in a single transaction. Saving the same run ID
// again replaces the earlier rows.
func (s *Store) SaveRun(ctx context.Context, res *report.Results, pubs []types.Publication, cfg types.PipelineConfig) error {
	resultsJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	cfg.Embedding.APIKey = ""
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	sectionsJSON, _ := json.Marshal(res.Sections)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Child rows cascade.
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, res.RunID); err != nil {
		return fmt.Errorf("deleting old run: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, config, loaded, skipped, undated, sections, results)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Generated.UTC().Format(time.RFC3339Nano), res.Source, string(cfgJSON),
		res.Corpus.Loaded, res.Corpus.Skipped, res.Corpus.Undated,
		string(sectionsJSON), string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if err := insertPublications(ctx, tx, res, pubs); err != nil {
		return err
	}
	if err := insertKeywords(ctx, tx, res); err != nil {
		return err
	}
	if err := insertClusters(ctx, tx, res); err != nil {
		return err
	}
	if err := insertTrends(ctx, tx, res); err != nil {
		return err
	}

	return tx.Commit()
}

func insertPublications(ctx context.Context, tx *sql.Tx, res *report.Results, pubs []types.Publication) error {
	labels := map[string]int{}
	if res.Clustering != nil && len(res.PublicationIDs) == len(res.Clustering.Labels) {
		for i, id := range res.PublicationIDs {
			labels[id] = res.Clustering.Labels[i]
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO publications (run_id, id, title, year, doi, source, keywords, cluster)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, id) DO UPDATE SET
			title=excluded.title, year=excluded.year, doi=excluded.doi,
			source=excluded.source, keywords=excluded.keywords, cluster=excluded.cluster`)
	if err != nil {
		return fmt.Errorf("preparing publication insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pubs {
		var year, cluster sql.NullInt64
		if p.Year != nil {
			year = sql.NullInt64{Int64: int64(*p.Year), Valid: true}
		}
		if l, ok := labels[p.ID]; ok {
			cluster = sql.NullInt64{Int64: int64(l), Valid: true}
		}
		kwJSON, _ := json.Marshal(p.Keywords)
		if _, err := stmt.ExecContext(ctx, res.RunID, p.ID, p.Title, year, p.DOI, p.Source, string(kwJSON), cluster); err != nil {
			return fmt.Errorf("inserting publication %s: %w", p.ID, err)
		}
	}
	return nil
}

func insertKeywords(ctx context.Context, tx *sql.Tx, res *report.Results) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO keywords (run_id, method, term, frequency, score, importance, rank)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, method, term) DO UPDATE SET
			frequency=excluded.frequency, score=excluded.score,
			importance=excluded.importance, rank=excluded.rank`)
	if err != nil {
		return fmt.Errorf("preparing keyword insert: %w", err)
	}
	defer stmt.Close()

	sets := append([]types.KeywordSet{res.APIKeywords.Set()}, res.KeywordSets...)
	for _, set := range sets {
		for _, k := range set.Keywords {
			if _, err := stmt.ExecContext(ctx, res.RunID, string(set.Method), k.Term, k.Frequency, k.Score, k.Importance, k.Rank); err != nil {
				return fmt.Errorf("inserting keyword %q: %w", k.Term, err)
			}
		}
	}
	return nil
}

func insertClusters(ctx context.Context, tx *sql.Tx, res *report.Results) error {
	if res.Clustering == nil {
		return nil
	}
	topTerms := make(map[int][]string, len(res.Topics))
	for _, t := range res.Topics {
		topTerms[t.Label] = t.TopTerms
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clusters (run_id, label, size, mean_distance, max_distance, min_distance, std_distance, centroid_norm, top_terms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing cluster insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range res.Clustering.Clusters {
		termsJSON, _ := json.Marshal(topTerms[c.Label])
		_, err := stmt.ExecContext(ctx, res.RunID, c.Label, c.Size,
			c.MeanDistance, c.MaxDistance, c.MinDistance, c.StdDistance, c.CentroidNorm,
			string(termsJSON))
		if err != nil {
			return fmt.Errorf("inserting cluster %d: %w", c.Label, err)
		}
	}
	return nil
}

func insertTrends(ctx context.Context, tx *sql.Tx, res *report.Results) error {
	points, err := tx.PrepareContext(ctx,
		`INSERT INTO trends (run_id, term, year, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing trend insert: %w", err)
	}
	defer points.Close()

	stages, err := tx.PrepareContext(ctx,
		`INSERT INTO lifecycle (run_id, term, stage, total, first_year, last_year, peak_year, slope)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing lifecycle insert: %w", err)
	}
	defer stages.Close()

	for _, t := range res.Trends.Trends {
		for _, p := range t.Points {
			if _, err := points.ExecContext(ctx, res.RunID, t.Term, p.Year, p.Count); err != nil {
				return fmt.Errorf("inserting trend %q: %w", t.Term, err)
			}
		}
		_, err := stages.ExecContext(ctx, res.RunID, t.Term, string(t.Stage),
			t.Total, t.FirstYear, t.LastYear, t.PeakYear, t.Slope)
		if err != nil {
			return fmt.Errorf("inserting lifecycle %q: %w", t.Term, err)
		}
	}
	return nil
}

// RunInfo summarizes a stored run.
type RunInfo struct {
	ID      string    `json:"id" yaml:"id"`
	Created time.Time `json:"created" yaml:"created"`
	Source  string    `json:"source" yaml:"source"`
	Loaded  int       `json:"loaded" yaml:"loaded"`
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, loaded FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info    RunInfo
			created string
			source  sql.NullString
		)
		if err := rows.Scan(&info.ID, &created, &source, &info.Loaded); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		info.Created, _ = time.Parse(time.RFC3339Nano, created)
		info.Source = source.String
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// LatestRunID returns the ID of the newest run, or ErrRunNotFound.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC, id LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRunNotFound
	}
	if err != nil {
		return "", fmt.Errorf("finding latest run: %w", err)
	}
	return id, nil
}

// LoadRun returns the results of a stored run.
func (s *Store) LoadRun(ctx context.Context, runID string) (*report.Results, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT results FROM runs WHERE id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}

	var res report.Results
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", runID, err)
	}
	return &res, nil
}

// TermHistory is one term's counts across stored runs.
type TermHistory struct {
	RunID string `json:"run_id" yaml:"run_id"`
	Year  int    `json:"year" yaml:"year"`
	Count int    `json:"count" yaml:"count"`
}

// TermTrend returns the stored yearly counts of term, ordered by run then year.
func (s *Store) TermTrend(ctx context.Context, term string) ([]TermHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.run_id, t.year, t.count FROM trends t
		 JOIN runs r ON r.id = t.run_id
		 WHERE t.term = ?
		 ORDER BY r.created_at, t.year`, term)
	if err != nil {
		return nil, fmt.Errorf("querying trends: %w", err)
	}
	defer rows.Close()

	var out []TermHistory
	for rows.Next() {
		var h TermHistory
		if err := rows.Scan(&h.RunID, &h.Year, &h.Count); err != nil {
			return nil, fmt.Errorf("scanning trend: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// PrintRuns writes one line per stored run.
func (s *Store) PrintRuns(ctx context.Context, w io.Writer) error {
	runs, err := s.Runs(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-30s %d records\n", r.ID, r.Created.Format(time.RFC3339), r.Source, r.Loaded)
	}
	fmt.Fprintf(w, "\nruns: %d\n", len(runs))
	return nil
}
