//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"acctune/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
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

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at_utc, search_method, repetitions)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			created_at_utc = excluded.created_at_utc,
			search_method = excluded.search_method,
			repetitions = excluded.repetitions
	`, run.RunID, run.CreatedAtUTC, run.SearchMethod, run.Repetitions)
	return err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, created_at_utc, search_method, repetitions
		FROM runs
		ORDER BY created_at_utc DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		if err := rows.Scan(&run.RunID, &run.CreatedAtUTC, &run.SearchMethod, &run.Repetitions); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) SaveRawRun(ctx context.Context, runID string, raw RawRun) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO raw_runs (run_id, num_gangs, vector_length, seconds)
		VALUES (?, ?, ?, ?)
	`, runID, raw.Point.NumGangs, raw.Point.VectorLength, raw.Seconds)
	return err
}

func (s *SQLiteStore) GetRawRuns(ctx context.Context, runID string) ([]RawRun, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT num_gangs, vector_length, seconds
		FROM raw_runs
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var raws []RawRun
	for rows.Next() {
		var raw RawRun
		if err := rows.Scan(&raw.Point.NumGangs, &raw.Point.VectorLength, &raw.Seconds); err != nil {
			return nil, false, err
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return raws, len(raws) > 0, nil
}

func (s *SQLiteStore) SaveResult(ctx context.Context, runID string, result model.Result) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeResults([]model.Result{result})
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO results (run_id, num_gangs, vector_length, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, num_gangs, vector_length) DO UPDATE SET
			payload = excluded.payload
	`, runID, result.Point.NumGangs, result.Point.VectorLength, payload)
	return err
}

func (s *SQLiteStore) GetResults(ctx context.Context, runID string) ([]model.Result, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT payload
		FROM results
		WHERE run_id = ?
		ORDER BY num_gangs, vector_length
	`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, false, err
		}
		decoded, err := DecodeResults(payload)
		if err != nil {
			return nil, false, fmt.Errorf("decode result for run %s: %w", runID, err)
		}
		results = append(results, decoded...)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return results, len(results) > 0, nil
}

func (s *SQLiteStore) SaveOutcome(ctx context.Context, runID string, outcome model.Outcome, repetitions int) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeOutcome(outcome, repetitions)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, runID, payload)
	return err
}

func (s *SQLiteStore) GetOutcome(ctx context.Context, runID string) (model.Outcome, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Outcome{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM outcomes WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Outcome{}, false, nil
		}
		return model.Outcome{}, false, err
	}

	outcome, _, err := DecodeOutcome(payload)
	if err != nil {
		return model.Outcome{}, false, fmt.Errorf("decode outcome for run %s: %w", runID, err)
	}
	return outcome, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			search_method TEXT NOT NULL,
			repetitions INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS raw_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			num_gangs INTEGER NOT NULL,
			vector_length INTEGER NOT NULL,
			seconds REAL NOT NULL
		);
		CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL,
			num_gangs INTEGER NOT NULL,
			vector_length INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, num_gangs, vector_length)
		);
		CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
