package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteJournal(t *testing.T) {
	ctx := context.Background()
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "data", "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	last, err := j.LastRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", last)

	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, j.SaveSubmission(ctx, Submission{RunID: "run-1", File: "a.json", BatchIndex: 0, Objects: 101, CreatedAt: at}))
	require.NoError(t, j.SaveSubmission(ctx, Submission{RunID: "run-1", File: "a.json", BatchIndex: 1, Objects: 4, Failed: 1}))
	require.NoError(t, j.SaveSubmission(ctx, Submission{RunID: "run-2", File: "b.json", Objects: 2, Error: "http 500"}))

	last, err = j.LastRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", last)

	subs, err := j.ListRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 101, subs[0].Objects)
	assert.Equal(t, at, subs[0].CreatedAt)
	assert.Equal(t, 1, subs[1].BatchIndex)
	assert.Equal(t, 1, subs[1].Failed)

	subs, err = j.ListRun(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "http 500", subs[0].Error)

	subs, err = j.ListRun(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestJournalReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := NewSQLiteJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.SaveSubmission(ctx, Submission{RunID: "run-1", File: "a.json", Objects: 1}))
	require.NoError(t, j.Close())

	j, err = NewSQLiteJournal(path)
	require.NoError(t, err)
	defer j.Close()
	last, err := j.LastRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", last)
}
