package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"GoQuestionsAI/app/loader"
	"GoQuestionsAI/app/query"
	"GoQuestionsAI/app/records"
	"GoQuestionsAI/app/schema"
	"GoQuestionsAI/app/storage"
	"GoQuestionsAI/app/vectordb"
)

// Runtime runs the schema, import and query stages against one store handle.
type Runtime struct {
	store   vectordb.Interface
	journal storage.Interface
	logger  *zap.Logger
}

// Plan describes one pass over the stages. Stages run in order and never overlap.
type Plan struct {
	DefineSchema bool
	SkipExisting bool
	Class        vectordb.Class

	Import bool
	Files  []string
	Loader loader.Options

	Query  bool
	Near   vectordb.NearTextQuery
	Output string
}

func NewRuntime(store vectordb.Interface, journal storage.Interface, logger *zap.Logger) *Runtime {
	if journal == nil {
		journal = storage.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{store: store, journal: journal, logger: logger}
}

func (r *Runtime) DefineSchema(ctx context.Context, class vectordb.Class, skipExisting bool) error {
	return schema.NewDefiner(r.store, r.logger, skipExisting).Define(ctx, class)
}

func (r *Runtime) Import(ctx context.Context, opts loader.Options, paths []string) (*loader.Report, error) {
	files, err := records.ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("import: no input files")
	}
	return loader.New(r.store, r.journal, r.logger, opts).Load(ctx, files)
}

func (r *Runtime) Query(ctx context.Context, q vectordb.NearTextQuery, w io.Writer, format string) error {
	return query.NewRunner(r.store, r.logger).RunAndPrint(ctx, q, w, format)
}

// Run executes the plan. Local input errors and schema failures stop the run;
// remote import failures are reported but the query still runs.
func (r *Runtime) Run(ctx context.Context, plan Plan, w io.Writer) (*loader.Report, error) {
	if plan.DefineSchema {
		if err := r.DefineSchema(ctx, plan.Class, plan.SkipExisting); err != nil {
			return nil, fmt.Errorf("schema stage: %w", err)
		}
	}

	var report *loader.Report
	var importErr error
	if plan.Import {
		report, importErr = r.Import(ctx, plan.Loader, plan.Files)
		if importErr != nil {
			if fatalImportError(ctx, importErr) {
				return report, fmt.Errorf("import stage: %w", importErr)
			}
			r.logger.Warn("⚠️ import finished with errors, continuing", zap.Error(importErr))
			importErr = fmt.Errorf("import stage: %w", importErr)
		}
	}

	if plan.Query {
		if err := r.Query(ctx, plan.Near, w, plan.Output); err != nil {
			return report, errors.Join(importErr, fmt.Errorf("query stage: %w", err))
		}
	}
	return report, importErr
}

func fatalImportError(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, records.ErrReadFile) ||
		errors.Is(err, records.ErrParse) ||
		errors.Is(err, records.ErrMalformedRecord)
}
