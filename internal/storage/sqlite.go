//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteJournal struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteJournal(path string) *SQLiteJournal {
	return &SQLiteJournal{path: path}
}

func newSQLiteJournal(path string) (Journal, error) {
	return NewSQLiteJournal(path), nil
}

func (j *SQLiteJournal) Init(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.path == "" {
		return errors.New("sqlite path is required")
	}
	if j.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", j.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	j.db = db
	return nil
}

func (j *SQLiteJournal) RecordRun(ctx context.Context, run RunRecord) error {
	db, err := j.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, brain, body, started_at, fitness)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			brain = excluded.brain,
			body = excluded.body,
			started_at = excluded.started_at,
			fitness = excluded.fitness
	`, run.ID, run.Brain, run.Body, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Fitness)
	return err
}

func (j *SQLiteJournal) RecordMutation(ctx context.Context, m MutationRecord) error {
	db, err := j.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO mutations (run_id, sim_time, op, subject, error, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.RunID, m.Time, m.Op, m.Subject, m.Error, m.Payload)
	return err
}

func (j *SQLiteJournal) Runs(ctx context.Context) ([]RunRecord, error) {
	db, err := j.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, brain, body, started_at, fitness FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var started string
		if err := rows.Scan(&r.ID, &r.Brain, &r.Body, &started, &r.Fitness); err != nil {
			return nil, err
		}
		r.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Mutations(ctx context.Context, runID string) ([]MutationRecord, error) {
	db, err := j.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, sim_time, op, subject, error, payload
		FROM mutations WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MutationRecord, 0)
	for rows.Next() {
		var m MutationRecord
		if err := rows.Scan(&m.RunID, &m.Time, &m.Op, &m.Subject, &m.Error, &m.Payload); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

func (j *SQLiteJournal) getDB() (*sql.DB, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.db == nil {
		return nil, errNotInitialized
	}
	return j.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			brain TEXT NOT NULL,
			body TEXT NOT NULL,
			started_at TEXT NOT NULL,
			fitness REAL NOT NULL
		);
		CREATE TABLE IF NOT EXISTS mutations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			sim_time REAL NOT NULL,
			op TEXT NOT NULL,
			subject TEXT NOT NULL,
			error TEXT NOT NULL,
			payload BLOB
		);
		CREATE INDEX IF NOT EXISTS mutations_run ON mutations(run_id);
	`)
	return err
}
