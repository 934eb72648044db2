package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

type SQLiteJournal struct {
	db *sql.DB
}

var _ Interface = &SQLiteJournal{}

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS submissions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL,
            file TEXT NOT NULL,
            batch_index INTEGER NOT NULL,
            objects INTEGER NOT NULL,
            failed INTEGER NOT NULL DEFAULT 0,
            error TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_run_id ON submissions (run_id);
    `)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func (s *SQLiteJournal) SaveSubmission(ctx context.Context, sub Submission) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (run_id, file, batch_index, objects, failed, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.RunID, sub.File, sub.BatchIndex, sub.Objects, sub.Failed, sub.Error, sub.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save submission for run %s: %w", sub.RunID, err)
	}
	return nil
}

func (s *SQLiteJournal) ListRun(ctx context.Context, runID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, file, batch_index, objects, failed, error, created_at
		 FROM submissions
		 WHERE run_id = ?
		 ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Submission
	for rows.Next() {
		var sub Submission
		var createdAt string
		if err = rows.Scan(&sub.ID, &sub.RunID, &sub.File, &sub.BatchIndex, &sub.Objects, &sub.Failed,
			&sub.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scan submission for run %s: %w", runID, err)
		}
		sub.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		history = append(history, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *SQLiteJournal) LastRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM submissions ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return runID, err
}

func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}
