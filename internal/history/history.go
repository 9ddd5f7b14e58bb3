// Package history keeps a SQLite log of finished runs so students and
// instructors can see how a submission progressed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seitarof/speccheck/internal/result"
)

// Store is a run history database.
type Store struct {
	conn *sql.DB
	path string
}

// Run summarizes one finished run.
type Run struct {
	ID            string
	Candidate     string
	Mode          string
	Started       time.Time
	Finished      time.Time
	Passed        int
	Total         int
	Score         int
	ScorePossible int
	Outcome       string
	MayPackage    bool
	Failures      []Failure
}

// Failure is one failed case of a run.
type Failure struct {
	Case    string
	Tier    string
	Message string
}

// DefaultPath returns the per-user history database path.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "speccheck", "history.db")
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open history: %w", err)
	}
	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// dsn sets the pragmas on every connection the pool opens, not only the
// first one.
func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

var migrations = []struct {
	version int
	sql     string
}{
	{1, migrationV1Runs},
	{2, migrationV2Failures},
	{3, migrationV3MayPackage},
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	candidate TEXT NOT NULL,
	mode TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	passed INTEGER NOT NULL,
	total INTEGER NOT NULL,
	score INTEGER NOT NULL DEFAULT 0,
	score_possible INTEGER NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_candidate ON runs(candidate, started_at);
`

const migrationV2Failures = `
CREATE TABLE IF NOT EXISTS failures (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	case_name TEXT NOT NULL,
	tier TEXT NOT NULL,
	message TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

const migrationV3MayPackage = `
ALTER TABLE runs ADD COLUMN may_package INTEGER NOT NULL DEFAULT 0;
`

func (s *Store) migrate() error {
	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// FromSet summarizes a finished result set.
func FromSet(set *result.Set, candidate, mode string, late bool) Run {
	run := Run{
		ID:            set.RunID,
		Candidate:     candidate,
		Mode:          mode,
		Started:       set.Started,
		Finished:      set.Finished,
		Passed:        set.Passed(),
		Total:         set.Total(),
		Score:         set.Score(),
		ScorePossible: set.ScorePossible(),
		Outcome:       set.Outcome(late).String(),
		MayPackage:    set.MayPackage(),
	}
	for _, r := range set.Failed() {
		run.Failures = append(run.Failures, Failure{Case: r.Case, Tier: r.Tier.String(), Message: r.Message})
	}
	return run
}

// Record stores run and its failures.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, candidate, mode, started_at, finished_at, passed, total, score, score_possible, outcome, may_package)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Candidate, run.Mode, run.Started.UTC(), run.Finished.UTC(),
		run.Passed, run.Total, run.Score, run.ScorePossible, run.Outcome, run.MayPackage,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, f := range run.Failures {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO failures (run_id, seq, case_name, tier, message) VALUES (?, ?, ?, ?, ?)",
			run.ID, i, f.Case, f.Tier, f.Message,
		); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// List returns the most recent runs first. An empty candidate lists all.
// Failures are not loaded; use Get for them.
func (s *Store) List(ctx context.Context, candidate string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE ? = '' OR candidate = ?
		ORDER BY started_at DESC
		LIMIT ?`, candidate, candidate, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(r.fields()...); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

const runColumns = "id, candidate, mode, started_at, finished_at, passed, total, score, score_possible, outcome, may_package"

// fields returns scan destinations in runColumns order.
func (r *Run) fields() []any {
	return []any{&r.ID, &r.Candidate, &r.Mode, &r.Started, &r.Finished,
		&r.Passed, &r.Total, &r.Score, &r.ScorePossible, &r.Outcome, &r.MayPackage}
}

// Get returns one run with its failures.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.conn.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ?", id).Scan(r.fields()...)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := s.conn.QueryContext(ctx,
		"SELECT case_name, tier, message FROM failures WHERE run_id = ? ORDER BY seq", id)
	if err != nil {
		return Run{}, fmt.Errorf("get failures of %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Case, &f.Tier, &f.Message); err != nil {
			return Run{}, fmt.Errorf("scan failure: %w", err)
		}
		r.Failures = append(r.Failures, f)
	}
	return r, rows.Err()
}
