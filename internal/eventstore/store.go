// Package eventstore keeps a local history of site builds in SQLite.
// Every finished build appends one row; the history command reads them back.
package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/refdocs/internal/site"
)

// DefaultRecentLimit is how many builds Recent returns when the caller
// passes no limit.
const DefaultRecentLimit = 10

// BuildRecord is one stored build, the row form of a site.BuildReport.
type BuildRecord struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Outcome  string
	Pages    int
	Warnings int
	Duration time.Duration
	Report   json.RawMessage // full report as persisted by the build
}

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed creates) the history database at dbPath.
// Use ":memory:" for an in-memory store, or a file path for persistence.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("ensure history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		report BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores the final report of one build. It satisfies site.HistorySink.
func (s *Store) Append(ctx context.Context, report *site.BuildReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO builds (id, started, finished, outcome, pages, warnings, duration_ms, report) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		report.ID, report.Start.UnixMilli(), report.End.UnixMilli(), string(report.Outcome),
		report.Pages, len(report.Warnings), report.Duration().Milliseconds(), blob,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}

	return nil
}

// Recent returns the most recent builds, newest first, at most limit.
// A non-positive limit falls back to DefaultRecentLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started, finished, outcome, pages, warnings, duration_ms, report FROM builds ORDER BY started DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	return scanBuilds(rows)
}

// Get returns one stored build by its ID.
func (s *Store) Get(ctx context.Context, id string) (*BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started, finished, outcome, pages, warnings, duration_ms, report FROM builds WHERE id = ?",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query build: %w", err)
	}
	defer rows.Close()

	builds, err := scanBuilds(rows)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, ErrNotFound
	}
	return &builds[0], nil
}

func scanBuilds(rows *sql.Rows) ([]BuildRecord, error) {
	var builds []BuildRecord
	for rows.Next() {
		var (
			rec        BuildRecord
			startedMS  int64
			finishedMS int64
			durationMS int64
		)
		err := rows.Scan(&rec.ID, &startedMS, &finishedMS, &rec.Outcome, &rec.Pages, &rec.Warnings, &durationMS, &rec.Report)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}

		rec.Started = time.UnixMilli(startedMS)
		rec.Finished = time.UnixMilli(finishedMS)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		builds = append(builds, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return builds, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
