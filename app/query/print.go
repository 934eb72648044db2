package query

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/xlab/treeprint"

	"GoQuestionsAI/app/vectordb"
)

const (
	OutputJSON = "json"
	OutputTree = "tree"
)

func Print(w io.Writer, res *vectordb.QueryResult, fields []string, format string) error {
	switch format {
	case "", OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case OutputTree:
		_, err := io.WriteString(w, renderTree(res, fields))
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

func renderTree(res *vectordb.QueryResult, fields []string) string {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s (%d results)", bold(res.Class), len(res.Results)))

	for i, r := range res.Results {
		label := "#" + strconv.Itoa(i+1)
		if r.ID != "" {
			label += " " + r.ID
		}
		branch := tree.AddMetaBranch(fmt.Sprintf("%.4f", r.Distance), label)
		for _, f := range fields {
			if v, ok := r.Fields[f]; ok {
				branch.AddMetaNode(f, fmt.Sprint(v))
			}
		}
		if r.Generated != "" {
			branch.AddMetaNode("generated", green(r.Generated))
		}
		if r.GenerateError != "" {
			branch.AddMetaNode("error", red(r.GenerateError))
		}
	}
	if res.Grouped != "" {
		tree.AddMetaNode("grouped", green(res.Grouped))
	}
	return tree.String()
}
