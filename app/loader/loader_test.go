package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"GoQuestionsAI/app/records"
	"GoQuestionsAI/app/storage"
	"GoQuestionsAI/app/vectordb"
)

// recordingStore keeps every batch it receives.
type recordingStore struct {
	vectordb.MockStore
	batches [][]vectordb.Object
	failOn  map[int]error
	reject  map[string]bool
}

func (s *recordingStore) BatchObjects(_ context.Context, objects []vectordb.Object) ([]vectordb.ObjectResult, error) {
	call := len(s.batches)
	s.batches = append(s.batches, objects)
	if err := s.failOn[call]; err != nil {
		return nil, err
	}
	out := make([]vectordb.ObjectResult, len(objects))
	for i, o := range objects {
		out[i].ID = o.ID
		if s.reject[o.Properties["answer"].(string)] {
			out[i].Err = "rejected"
		}
	}
	return out, nil
}

func (s *recordingStore) sizes() []int {
	out := make([]int, len(s.batches))
	for i, b := range s.batches {
		out[i] = len(b)
	}
	return out
}

func writeQuestions(t *testing.T, dir, name string, n int) string {
	t.Helper()
	items := make([]map[string]string, n)
	for i := range items {
		items[i] = map[string]string{
			"Category": "SCIENCE",
			"Question": fmt.Sprintf("question %d", i),
			"Answer":   fmt.Sprintf("%s-%d", name, i),
		}
	}
	data, err := json.Marshal(items)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestLoader(store vectordb.Interface, journal storage.Interface, batchSize int, policy FlushPolicy) *Loader {
	return New(store, journal, nil, Options{Class: "Question", BatchSize: batchSize, FlushPolicy: policy})
}

func TestLoadBatchSizes(t *testing.T) {
	cases := []struct {
		name    string
		policy  FlushPolicy
		records int
		want    []int
		skipped int
	}{
		{"legacy empty", FlushLegacy, 0, []int{}, 1},
		{"legacy single", FlushLegacy, 1, []int{1}, 0},
		{"legacy threshold", FlushLegacy, 100, []int{100}, 0},
		{"legacy threshold plus one", FlushLegacy, 101, []int{101}, 1},
		{"legacy many", FlushLegacy, 250, []int{101, 101, 48}, 0},
		{"exact empty", FlushExact, 0, []int{}, 1},
		{"exact threshold", FlushExact, 100, []int{100}, 1},
		{"exact many", FlushExact, 250, []int{100, 100, 50}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeQuestions(t, t.TempDir(), "q.json", c.records)
			store := &recordingStore{}

			report, err := newTestLoader(store, nil, 100, c.policy).Load(context.Background(), []string{path})
			require.NoError(t, err)
			assert.Equal(t, c.want, store.sizes())
			assert.Equal(t, len(c.want), report.Submissions)
			assert.Equal(t, c.records, report.Sent)
			assert.Equal(t, c.skipped, report.SkippedFlushes)
		})
	}
}

func TestLoadSubmissionCount(t *testing.T) {
	const threshold = 7
	for _, policy := range []FlushPolicy{FlushLegacy, FlushExact} {
		capacity := BatchCapacity(threshold, policy)
		for k := 0; k <= 40; k++ {
			path := writeQuestions(t, t.TempDir(), "q.json", k)
			store := &recordingStore{}

			report, err := newTestLoader(store, nil, threshold, policy).Load(context.Background(), []string{path})
			require.NoError(t, err)

			wantCalls := (k + capacity - 1) / capacity
			assert.Len(t, store.batches, wantCalls, "policy=%s k=%d", policy, k)
			total := 0
			for _, size := range store.sizes() {
				assert.GreaterOrEqual(t, size, 1)
				assert.LessOrEqual(t, size, capacity)
				total += size
			}
			assert.Equal(t, k, total)
			assert.Equal(t, k, report.Sent)
		}
	}
}

func TestLoadCounterResetsPerFile(t *testing.T) {
	dir := t.TempDir()
	a := writeQuestions(t, dir, "a.json", 5)
	b := writeQuestions(t, dir, "b.json", 3)
	store := &recordingStore{}

	report, err := newTestLoader(store, nil, 3, FlushLegacy).Load(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 3}, store.sizes())
	require.Len(t, report.Files, 2)
	assert.Equal(t, 2, report.Files[0].Submissions)
	assert.Equal(t, 1, report.Files[1].Submissions)

	for _, o := range store.batches[2] {
		assert.Equal(t, b, o.Properties["fileSource"])
		assert.Equal(t, "Question", o.Class)
	}
}

func TestLoadSameFileTwiceCreatesNewObjects(t *testing.T) {
	path := writeQuestions(t, t.TempDir(), "q.json", 10)
	store := &recordingStore{}

	_, err := newTestLoader(store, nil, 100, FlushLegacy).Load(context.Background(), []string{path, path})
	require.NoError(t, err)
	require.Len(t, store.batches, 2)

	seen := map[string]bool{}
	for _, batch := range store.batches {
		for _, o := range batch {
			require.NotEmpty(t, o.ID)
			assert.False(t, seen[o.ID], "id reused: %s", o.ID)
			seen[o.ID] = true
		}
	}
	assert.Len(t, seen, 20)
	assert.Equal(t, store.batches[0][3].Properties, store.batches[1][3].Properties)
}

func TestLoadSubmissionFailureSkipsRestOfFile(t *testing.T) {
	dir := t.TempDir()
	a := writeQuestions(t, dir, "a.json", 10)
	b := writeQuestions(t, dir, "b.json", 2)
	boom := errors.New("connection reset")
	store := &recordingStore{failOn: map[int]error{0: boom}}

	report, err := newTestLoader(store, nil, 3, FlushLegacy).Load(context.Background(), []string{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{4, 2}, store.sizes())

	require.Len(t, report.Files, 2)
	assert.ErrorIs(t, report.Files[0].Err, boom)
	assert.Equal(t, 0, report.Files[0].Sent)
	assert.NoError(t, report.Files[1].Err)
	assert.Equal(t, 2, report.Sent)
}

func TestLoadPartialFailure(t *testing.T) {
	path := writeQuestions(t, t.TempDir(), "q.json", 4)
	store := &recordingStore{reject: map[string]bool{"q.json-1": true, "q.json-3": true}}

	report, err := newTestLoader(store, nil, 100, FlushLegacy).Load(context.Background(), []string{path})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialBatch)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 4, report.Sent)
}

func TestLoadParseErrorAborts(t *testing.T) {
	dir := t.TempDir()
	good := writeQuestions(t, dir, "good.json", 2)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o644))
	last := writeQuestions(t, dir, "last.json", 2)
	store := &recordingStore{}

	report, err := newTestLoader(store, nil, 100, FlushLegacy).Load(context.Background(), []string{good, bad, last})
	assert.ErrorIs(t, err, records.ErrParse)
	assert.Len(t, report.Files, 1)
	assert.Len(t, store.batches, 1)
}

func TestLoadMalformedRecordAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Question":"q","Answer":"a"}]`), 0o644))
	store := &vectordb.MockStore{}

	_, err := newTestLoader(store, nil, 100, FlushLegacy).Load(context.Background(), []string{path})
	assert.ErrorIs(t, err, records.ErrMalformedRecord)
	store.AssertNotCalled(t, "BatchObjects", mock.Anything, mock.Anything)
}

func TestLoadWritesJournal(t *testing.T) {
	ctx := context.Background()
	path := writeQuestions(t, t.TempDir(), "q.json", 5)
	journal, err := storage.NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	store := &vectordb.MockStore{}
	store.On("BatchObjects", mock.Anything, mock.MatchedBy(func(o []vectordb.Object) bool { return len(o) == 3 })).
		Return([]vectordb.ObjectResult{{ID: "1"}, {ID: "2", Err: "bad"}, {ID: "3"}}, nil).Once()
	store.On("BatchObjects", mock.Anything, mock.MatchedBy(func(o []vectordb.Object) bool { return len(o) == 2 })).
		Return(nil, errors.New("http 500")).Once()

	report, err := newTestLoader(store, journal, 2, FlushLegacy).Load(ctx, []string{path})
	require.Error(t, err)
	store.AssertExpectations(t)

	subs, err := journal.ListRun(ctx, report.RunID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 3, subs[0].Objects)
	assert.Equal(t, 1, subs[0].Failed)
	assert.Equal(t, 1, subs[1].BatchIndex)
	assert.Contains(t, subs[1].Error, "http 500")
}

func TestLoadCanceled(t *testing.T) {
	path := writeQuestions(t, t.TempDir(), "q.json", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(&recordingStore{}, nil, 100, FlushLegacy).Load(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFlushPolicy(t *testing.T) {
	p, err := ParseFlushPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FlushLegacy, p)
	p, err = ParseFlushPolicy("exact")
	require.NoError(t, err)
	assert.Equal(t, FlushExact, p)
	_, err = ParseFlushPolicy("eager")
	assert.Error(t, err)
}
