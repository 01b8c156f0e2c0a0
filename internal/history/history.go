// Package history keeps a local SQLite record of detection runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/logger"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown run id
var ErrNotFound = errors.New("history: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file TEXT NOT NULL,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	dominant TEXT NOT NULL DEFAULT '',
	raw TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`

// Run is one stored submission
type Run struct {
	ID         int64         `json:"id"`
	File       string        `json:"file"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Outcome    string        `json:"outcome"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	Dominant   string        `json:"dominant,omitempty"`
	Raw        string        `json:"raw,omitempty"`
}

// Store is a SQLite-backed run history
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (creating if needed) the history database at path
func Open(path string, log *logger.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	if log == nil {
		log = logger.NewWithCallback("history", func() bool { return false })
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RunFromOutcome converts a settled submission into a storable run
func RunFromOutcome(o detect.Outcome) Run {
	run := Run{
		File:      o.File,
		StartedAt: o.Started,
		Duration:  o.Duration,
		Outcome:   "success",
	}
	if o.Err != nil {
		run.Outcome = string(o.Err.Type)
		run.StatusCode = o.Err.StatusCode
		run.Error = o.Err.Message
	}
	if o.View != nil {
		run.Summary = o.View.Summary
		if o.View.Dominant() != nil {
			run.Dominant = o.View.DominantText()
		}
	}
	if o.Result != nil {
		run.Raw = string(o.Result.Raw)
	}
	return run
}

// Save inserts a run and returns its id
func (s *Store) Save(ctx context.Context, run Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (file, started_at, duration_ms, outcome, status_code, error, summary, dominant, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.File,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Outcome,
		run.StatusCode,
		run.Error,
		run.Summary,
		run.Dominant,
		run.Raw,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return res.LastInsertId()
}

const selectColumns = `SELECT id, file, started_at, duration_ms, outcome, status_code, error, summary, dominant, raw FROM runs`

// List returns the most recent runs first; limit <= 0 returns all
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := selectColumns + ` ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run by id
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Clear deletes every run and reports how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// RecordSubmission implements detect.Recorder. Storage failures are logged
// and never affect the submission.
func (s *Store) RecordSubmission(o detect.Outcome) {
	run := RunFromOutcome(o)
	id, err := s.Save(context.Background(), run)
	if err != nil {
		s.log.WarnWithFields("could not record run", []logger.Field{logger.File(o.File), logger.Error(err)})
		return
	}
	s.log.DebugWithFields("recorded run", []logger.Field{logger.F("id", id), logger.F("outcome", run.Outcome)})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		durationMS int64
	)
	err := sc.Scan(&run.ID, &run.File, &startedAt, &durationMS, &run.Outcome,
		&run.StatusCode, &run.Error, &run.Summary, &run.Dominant, &run.Raw)
	if err != nil {
		return Run{}, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if t, perr := time.Parse(time.RFC3339Nano, startedAt); perr == nil {
		run.StartedAt = t
	}
	return run, nil
}
