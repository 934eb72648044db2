package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/xlab/treeprint"

	"GoQuestionsAI/app/query"
	"GoQuestionsAI/app/storage"
)

// History prints the journaled submissions of runID, or of the latest run when runID is empty.
func (r *Runtime) History(ctx context.Context, runID string, w io.Writer, format string) error {
	if runID == "" {
		last, err := r.journal.LastRunID(ctx)
		if err != nil {
			return fmt.Errorf("find last run: %w", err)
		}
		if last == "" {
			_, err = fmt.Fprintln(w, "no import runs recorded")
			return err
		}
		runID = last
	}

	subs, err := r.journal.ListRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("list run %s: %w", runID, err)
	}

	switch format {
	case "", query.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	case query.OutputTree:
		_, err = io.WriteString(w, renderHistory(runID, subs))
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

func renderHistory(runID string, subs []storage.Submission) string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("run %s (%d submissions)", runID, len(subs)))
	branches := map[string]treeprint.Tree{}

	for _, s := range subs {
		branch, ok := branches[s.File]
		if !ok {
			branch = tree.AddBranch(s.File)
			branches[s.File] = branch
		}
		line := fmt.Sprintf("batch %d: %d objects", s.BatchIndex, s.Objects)
		switch {
		case s.Error != "":
			line = color.RedString("%s, failed: %s", line, s.Error)
		case s.Failed > 0:
			line = color.YellowString("%s, %d rejected", line, s.Failed)
		}
		branch.AddNode(fmt.Sprintf("%s [%s]", line, s.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	return tree.String()
}
