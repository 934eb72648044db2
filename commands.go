package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"GoQuestionsAI/app/configs"
	"GoQuestionsAI/app/loader"
	"GoQuestionsAI/app/runtime"
)

func schemaCmd(flags *globalFlags) *cobra.Command {
	var skipExisting bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the question class in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(flags, true, func(c *configs.Config) error {
				if cmd.Flags().Changed("skip-existing") {
					c.Schema.SkipExisting = skipExisting
				}
				return nil
			})
			if err != nil {
				return err
			}
			defer a.close()
			return a.runtime.DefineSchema(cmd.Context(), a.cfg.Class(), a.cfg.Schema.SkipExisting)
		},
	}
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "succeed when the class already exists")
	return cmd
}

type importFlags struct {
	batchSize   int
	flushPolicy string
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "flush threshold (default from config: 100)")
	cmd.Flags().StringVar(&f.flushPolicy, "flush-policy", "", "legacy or exact")
}

func (f *importFlags) apply(cmd *cobra.Command, c *configs.Config) error {
	if cmd.Flags().Changed("batch-size") {
		c.Import.BatchSize = f.batchSize
	}
	if cmd.Flags().Changed("flush-policy") {
		policy, err := loader.ParseFlushPolicy(f.flushPolicy)
		if err != nil {
			return err
		}
		c.Import.FlushPolicy = string(policy)
	}
	return nil
}

func importCmd(flags *globalFlags) *cobra.Command {
	f := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import [paths...]",
		Short: "Batch load JSON question files into the store",
		Long:  "Batch load JSON question files into the store. Directories expand to their *.json files. Without paths the configured import.files are used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(flags, true, func(c *configs.Config) error {
				if len(args) > 0 {
					c.Import.Files = args
				}
				return f.apply(cmd, c)
			})
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.runtime.Import(cmd.Context(), a.cfg.LoaderOptions(), a.cfg.Import.Files)
			printReport(cmd.OutOrStdout(), report)
			return err
		},
	}
	f.register(cmd)
	return cmd
}

type queryFlags struct {
	concepts []string
	distance float64
	limit    int
	prompt   string
	grouped  string
	output   string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.concepts, "concept", nil, "near text concept (repeatable)")
	cmd.Flags().Float64Var(&f.distance, "distance", 0, "maximum vector distance")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of results")
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "single result prompt, {field} placeholders are filled per result")
	cmd.Flags().StringVar(&f.grouped, "grouped-task", "", "task run once over all results")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "json or tree")
}

func (f *queryFlags) apply(cmd *cobra.Command, c *configs.Config) {
	if cmd.Flags().Changed("concept") {
		c.Query.Concepts = f.concepts
	}
	if cmd.Flags().Changed("distance") {
		c.Query.Distance = f.distance
	}
	if cmd.Flags().Changed("limit") {
		c.Query.Limit = f.limit
	}
	if cmd.Flags().Changed("prompt") {
		c.Query.SinglePrompt = f.prompt
	}
	if cmd.Flags().Changed("grouped-task") {
		c.Query.GroupedTask = f.grouped
	}
	if cmd.Flags().Changed("output") {
		c.Query.Output = f.output
	}
}

func queryCmd(flags *globalFlags) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a near text query with generative post processing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(flags, true, func(c *configs.Config) error {
				f.apply(cmd, c)
				return nil
			})
			if err != nil {
				return err
			}
			defer a.close()
			return a.runtime.Query(cmd.Context(), a.cfg.NearTextQuery(), cmd.OutOrStdout(), a.cfg.Query.Output)
		},
	}
	f.register(cmd)
	return cmd
}

func runCmd(flags *globalFlags) *cobra.Command {
	var withSchema bool
	imp := &importFlags{}
	qry := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run schema (when enabled), import and query in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(flags, true, func(c *configs.Config) error {
				if cmd.Flags().Changed("with-schema") {
					c.Schema.Enabled = withSchema
				}
				qry.apply(cmd, c)
				return imp.apply(cmd, c)
			})
			if err != nil {
				return err
			}
			defer a.close()

			plan := runtime.Plan{
				DefineSchema: a.cfg.Schema.Enabled,
				SkipExisting: a.cfg.Schema.SkipExisting,
				Class:        a.cfg.Class(),
				Import:       true,
				Files:        a.cfg.Import.Files,
				Loader:       a.cfg.LoaderOptions(),
				Query:        true,
				Near:         a.cfg.NearTextQuery(),
				Output:       a.cfg.Query.Output,
			}
			report, err := a.runtime.Run(cmd.Context(), plan, cmd.OutOrStdout())
			printReport(cmd.ErrOrStderr(), report)
			return err
		},
	}
	cmd.Flags().BoolVar(&withSchema, "with-schema", false, "create the class before importing")
	imp.register(cmd)
	qry.register(cmd)
	return cmd
}

func historyCmd(flags *globalFlags) *cobra.Command {
	var runID, output string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the journaled submissions of an import run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(flags, false, nil)
			if err != nil {
				return err
			}
			defer a.close()
			if a.cfg.Journal.Path == "" {
				return fmt.Errorf("history: no journal configured, set journal.path or JOURNAL_PATH")
			}
			return a.runtime.History(cmd.Context(), runID, cmd.OutOrStdout(), output)
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run id (default: latest run)")
	cmd.Flags().StringVarP(&output, "output", "o", "tree", "json or tree")
	return cmd
}

func printReport(w io.Writer, report *loader.Report) {
	if report == nil {
		return
	}
	fmt.Fprintf(w, "run %s: %d files, %d submissions, %d sent, %d failed, %d skipped flushes\n",
		report.RunID, len(report.Files), report.Submissions, report.Sent, report.Failed, report.SkippedFlushes)
	for _, f := range report.Files {
		status := "ok"
		if f.Err != nil {
			status = f.Err.Error()
		}
		fmt.Fprintf(w, "  %s: %d records, %d submissions, %d sent, %d failed (%s)\n",
			f.Path, f.Records, f.Submissions, f.Sent, f.Failed, status)
	}
}
