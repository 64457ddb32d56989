package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rendis/geofilter/internal/model"
)

// Store is the run ledger: one row per pipeline invocation plus its warnings.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultLedgerPath is used when the config does not name a ledger file.
func DefaultLedgerPath() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		cfg = "."
	}
	return filepath.Join(cfg, "geofilter", "runs.db")
}

func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating ledger dir: %w", err)
		}
	}

	// pragmas go in the DSN so every pooled connection gets them
	pragmas := []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"busy_timeout(5000)",
		"foreign_keys(1)",
	}
	dsn := dbPath + "?_pragma=" + strings.Join(pragmas, "&_pragma=")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pipeline TEXT NOT NULL,
		predicate TEXT NOT NULL,
		boundary_path TEXT,
		features_path TEXT,
		backup_path TEXT,
		total INTEGER NOT NULL DEFAULT 0,
		kept INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_pipeline ON runs(pipeline);
	CREATE TABLE IF NOT EXISTS run_warnings (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// RecordRun stores a run and its warnings in one transaction.
func (s *Store) RecordRun(run *model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO runs
		(id, pipeline, predicate, boundary_path, features_path, backup_path,
		 total, kept, skipped, status, error, started_at, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		run.ID, run.Pipeline, run.Predicate, run.Boundary, run.Features, run.Backup,
		run.Total, run.Kept, run.Skipped, run.Status, run.Error,
		run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_warnings (run_id, seq, message) VALUES (?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	for i, w := range run.Warnings {
		if _, err := stmt.Exec(run.ID, i, w); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting warning %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. Warnings are not loaded.
func (s *Store) ListRuns(limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, pipeline, predicate, boundary_path, features_path, backup_path,
		       total, kept, skipped, status, error, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var (
			r          model.Run
			errMsg     sql.NullString
			startedMs  int64
			durationMs int64
		)
		err := rows.Scan(
			&r.ID, &r.Pipeline, &r.Predicate, &r.Boundary, &r.Features, &r.Backup,
			&r.Total, &r.Kept, &r.Skipped, &r.Status, &errMsg, &startedMs, &durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Error = errMsg.String
		r.StartedAt = time.UnixMilli(startedMs)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Warnings returns the warnings recorded for one run, in recorded order.
func (s *Store) Warnings(runID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT message FROM run_warnings WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying warnings: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scanning warning: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
