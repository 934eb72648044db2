package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"GoQuestionsAI/app/records"
	"GoQuestionsAI/app/storage"
	"GoQuestionsAI/app/vectordb"
)

var ErrPartialBatch = errors.New("objects rejected by the store")

type Options struct {
	Class       string
	BatchSize   int
	FlushPolicy FlushPolicy
}

type Loader struct {
	store   vectordb.Interface
	journal storage.Interface
	logger  *zap.Logger
	opts    Options
	newID   func() string
}

func New(store vectordb.Interface, journal storage.Interface, logger *zap.Logger, opts Options) *Loader {
	if journal == nil {
		journal = storage.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FlushPolicy == "" {
		opts.FlushPolicy = FlushLegacy
	}
	return &Loader{
		store:   store,
		journal: journal,
		logger:  logger,
		opts:    opts,
		newID:   func() string { return uuid.New().String() },
	}
}

type FileReport struct {
	Path           string
	Records        int
	Submissions    int
	Sent           int
	Failed         int
	SkippedFlushes int
	Err            error
}

type Report struct {
	RunID          string
	Files          []FileReport
	Submissions    int
	Sent           int
	Failed         int
	SkippedFlushes int
}

func (r *Report) add(f FileReport) {
	r.Files = append(r.Files, f)
	r.Submissions += f.Submissions
	r.Sent += f.Sent
	r.Failed += f.Failed
	r.SkippedFlushes += f.SkippedFlushes
}

// Load imports every file in order. Read and validation errors abort the run.
// A failed submission ends the current file only; it and any per-object
// rejections are joined into the returned error once all files are done.
func (l *Loader) Load(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{RunID: uuid.New().String()}
	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		l.logger.Info("📂 reading file", zap.String("file", path))
		recs, err := records.ReadFile(path)
		if err != nil {
			return report, err
		}

		fr, ferrs := l.loadFile(ctx, report.RunID, path, recs)
		report.add(fr)
		errs = append(errs, ferrs...)
		if err = ctx.Err(); err != nil {
			return report, err
		}
	}

	l.logger.Info("✅ import finished",
		zap.String("run", report.RunID),
		zap.Int("files", len(report.Files)),
		zap.Int("submissions", report.Submissions),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed))
	return report, errors.Join(errs...)
}

func (l *Loader) loadFile(ctx context.Context, runID, path string, recs []records.Record) (FileReport, []error) {
	fr := FileReport{Path: path, Records: len(recs)}
	var errs []error
	b := newBatcher(l.opts.BatchSize, l.opts.FlushPolicy)

	submit := func() bool {
		objects := b.take()
		failed, err := l.submit(ctx, runID, path, fr.Submissions, objects)
		fr.Submissions++
		if err != nil {
			fr.Err = err
			errs = append(errs, err)
			return false
		}
		fr.Sent += len(objects)
		fr.Failed += failed
		if failed > 0 {
			errs = append(errs, fmt.Errorf("%w: %s batch %d: %d of %d",
				ErrPartialBatch, path, fr.Submissions-1, failed, len(objects)))
		}
		return true
	}

	for _, rec := range recs {
		obj := vectordb.Object{Class: l.opts.Class, ID: l.newID(), Properties: rec.Properties()}
		if b.add(obj) && !submit() {
			l.logger.Warn("⏭️ skipping rest of file", zap.String("file", path))
			return fr, errs
		}
	}

	if b.len() == 0 {
		fr.SkippedFlushes++
		l.logger.Debug("nothing left to flush", zap.String("file", path))
		return fr, errs
	}
	submit()
	return fr, errs
}

func (l *Loader) submit(ctx context.Context, runID, path string, index int, objects []vectordb.Object) (int, error) {
	results, err := l.store.BatchObjects(ctx, objects)
	sub := newSubmission(runID, path, index, len(objects))
	if err != nil {
		l.logger.Error("❌ batch submission failed",
			zap.String("file", path), zap.Int("batch", index), zap.Int("objects", len(objects)), zap.Error(err))
		sub.Error = err.Error()
		l.record(ctx, sub)
		return 0, fmt.Errorf("submit %s batch %d: %w", path, index, err)
	}

	for _, r := range results {
		if r.Err == "" {
			continue
		}
		sub.Failed++
		l.logger.Warn("⚠️ object rejected", zap.String("file", path), zap.String("id", r.ID), zap.String("error", r.Err))
	}
	l.logger.Info("📦 batch submitted",
		zap.String("file", path), zap.Int("batch", index), zap.Int("objects", len(objects)), zap.Int("failed", sub.Failed))
	l.record(ctx, sub)
	return sub.Failed, nil
}

func (l *Loader) record(ctx context.Context, sub storage.Submission) {
	if err := l.journal.SaveSubmission(ctx, sub); err != nil {
		l.logger.Warn("⚠️ journal write failed", zap.Error(err))
	}
}

func newSubmission(runID, path string, index, objects int) storage.Submission {
	return storage.Submission{
		RunID:      runID,
		File:       path,
		BatchIndex: index,
		Objects:    objects,
		CreatedAt:  time.Now(),
	}
}
