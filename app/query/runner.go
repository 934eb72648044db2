package query

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"GoQuestionsAI/app/vectordb"
)

var ErrInvalidQuery = errors.New("invalid query")

type Runner struct {
	store  vectordb.Interface
	logger *zap.Logger
}

func NewRunner(store vectordb.Interface, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{store: store, logger: logger}
}

func Validate(q vectordb.NearTextQuery) error {
	switch {
	case q.Class == "":
		return fmt.Errorf("%w: class is empty", ErrInvalidQuery)
	case len(q.Fields) == 0:
		return fmt.Errorf("%w: no fields requested", ErrInvalidQuery)
	case len(q.Concepts) == 0:
		return fmt.Errorf("%w: no concepts", ErrInvalidQuery)
	case q.Distance <= 0 || q.Distance > 2:
		return fmt.Errorf("%w: distance %v outside (0, 2]", ErrInvalidQuery, q.Distance)
	case q.Limit < 1:
		return fmt.Errorf("%w: limit must be at least 1", ErrInvalidQuery)
	}
	return nil
}

// Run issues the query once. Store rejections come back as errors, never as
// an empty result.
func (r *Runner) Run(ctx context.Context, q vectordb.NearTextQuery) (*vectordb.QueryResult, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	r.logger.Info("🔎 running near text query",
		zap.String("class", q.Class),
		zap.Strings("concepts", q.Concepts),
		zap.Float64("distance", q.Distance),
		zap.Int("limit", q.Limit))

	res, err := r.store.NearText(ctx, q)
	if err != nil {
		r.logger.Error("❌ query failed", zap.String("class", q.Class), zap.Error(err))
		return nil, err
	}

	r.logger.Info("✅ query answered", zap.Int("results", len(res.Results)))
	for _, result := range res.Results {
		if result.GenerateError != "" {
			r.logger.Warn("⚠️ generation failed for result", zap.String("id", result.ID), zap.String("error", result.GenerateError))
		}
	}
	return res, nil
}

// RunAndPrint runs q and writes the result to w in the given format.
func (r *Runner) RunAndPrint(ctx context.Context, q vectordb.NearTextQuery, w io.Writer, format string) error {
	res, err := r.Run(ctx, q)
	if err != nil {
		return err
	}
	return Print(w, res, q.Fields, format)
}
