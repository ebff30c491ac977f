// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/cyberdefender/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the key-value slots and run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS module_runs (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			nickname TEXT NOT NULL,
			module TEXT NOT NULL,
			points INTEGER NOT NULL,
			bonus INTEGER NOT NULL,
			time_up INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_module_runs_ended_at ON module_runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_module_runs_module ON module_runs(module);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the raw value stored under key. ok is false when the key is unset.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Put replaces the value stored under key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// InsertRun stores a completed module run.
func (s *Store) InsertRun(ctx context.Context, run model.ModuleRun) (int64, error) {
	timeUp := 0
	if run.TimeUp {
		timeUp = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO module_runs (session_id, nickname, module, points, bonus, time_up, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.SessionID,
		run.Nickname,
		string(run.Module),
		run.Points,
		run.TimeBonus,
		timeUp,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns module runs in insertion order. A positive Last keeps
// only the most recent rows.
func (s *Store) ListRuns(ctx context.Context, filter model.RunFilter) ([]model.ModuleRun, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Module != "" {
		clauses = append(clauses, "module = ?")
		args = append(args, string(filter.Module))
	}
	query := fmt.Sprintf(`SELECT session_id, nickname, module, points, bonus, time_up, started_at, ended_at
		FROM module_runs
		WHERE %s
		ORDER BY id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.ModuleRun
	for rows.Next() {
		var run model.ModuleRun
		var module, startedAt, endedAt string
		var timeUp int
		if err := rows.Scan(&run.SessionID, &run.Nickname, &module, &run.Points, &run.TimeBonus, &timeUp, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		run.Module = model.ModuleID(module)
		run.TimeUp = timeUp != 0
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(runs) > filter.Last {
		runs = runs[len(runs)-filter.Last:]
	}
	return runs, nil
}
