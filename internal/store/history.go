// Package store persists coverage run history in SQLite, so merged totals
// can be compared across runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Run is one recorded coverage run: the grand totals of a merged report.
type Run struct {
	ID        string
	Label     string
	CreatedAt time.Time

	Files         int
	LinesFound    int
	LinesHit      int
	FuncsFound    int
	FuncsHit      int
	BranchesFound int
	BranchesHit   int
}

// LinePercent returns the line coverage of the run as a percentage.
func (r Run) LinePercent() float64 {
	if r.LinesFound == 0 {
		return 100
	}
	return float64(r.LinesHit) / float64(r.LinesFound) * 100
}

// HistoryStore records coverage runs in a SQLite database.
type HistoryStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// Open opens (creating if needed) the history database at path and brings
// its schema up to date.
func Open(path string, logger *zap.Logger) (*HistoryStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &HistoryStore{db: db, logger: logger}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("history store opened", zap.String("path", path))
	return s, nil
}

func (s *HistoryStore) init() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	label          TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	lines_found    INTEGER NOT NULL DEFAULT 0,
	lines_hit      INTEGER NOT NULL DEFAULT 0,
	funcs_found    INTEGER NOT NULL DEFAULT 0,
	funcs_hit      INTEGER NOT NULL DEFAULT 0,
	branches_found INTEGER NOT NULL DEFAULT 0,
	branches_hit   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return s.runMigrations()
}

// RecordRun stores the run and returns its generated ID.
func (s *HistoryStore) RecordRun(run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := run.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, label, created_at, files,
			lines_found, lines_hit, funcs_found, funcs_hit,
			branches_found, branches_hit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.Label, createdAt, run.Files,
		run.LinesFound, run.LinesHit, run.FuncsFound, run.FuncsHit,
		run.BranchesFound, run.BranchesHit)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Info("recorded coverage run",
		zap.String("id", id),
		zap.String("label", run.Label),
		zap.Int("lines_hit", run.LinesHit),
		zap.Int("lines_found", run.LinesFound))
	return id, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns
// all runs.
func (s *HistoryStore) ListRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, label, created_at, files,
			lines_found, lines_hit, funcs_found, funcs_hit,
			branches_found, branches_hit
		FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Label, &run.CreatedAt, &run.Files,
			&run.LinesFound, &run.LinesHit, &run.FuncsFound, &run.FuncsHit,
			&run.BranchesFound, &run.BranchesHit); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune deletes runs recorded before cutoff and returns how many were
// removed.
func (s *HistoryStore) Prune(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned coverage runs", zap.Int64("removed", n))
	}
	return int(n), nil
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
