package storage

import (
	"context"
	"time"
)

type Interface interface {
	SaveSubmission(ctx context.Context, submission Submission) error
	ListRun(ctx context.Context, runID string) ([]Submission, error)
	LastRunID(ctx context.Context) (string, error)
	Close() error
}

// Submission is one batch sent to the vector store during an import run.
type Submission struct {
	ID         int64     `json:"id" db:"id"`
	RunID      string    `json:"run_id" db:"run_id"`
	File       string    `json:"file" db:"file"`
	BatchIndex int       `json:"batch_index" db:"batch_index"`
	Objects    int       `json:"objects" db:"objects"`
	Failed     int       `json:"failed" db:"failed"`
	Error      string    `json:"error" db:"error"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Nop discards every submission. It stands in when no journal path is configured.
type Nop struct{}

var _ Interface = Nop{}

func (Nop) SaveSubmission(context.Context, Submission) error      { return nil }
func (Nop) ListRun(context.Context, string) ([]Submission, error) { return nil, nil }
func (Nop) LastRunID(context.Context) (string, error)             { return "", nil }
func (Nop) Close() error                                          { return nil }
