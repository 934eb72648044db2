package vectordb

import (
	"fmt"
	"strconv"
	"strings"
)

// buildNearTextQuery renders a Get query with nearText and generative arguments.
func buildNearTextQuery(q NearTextQuery) string {
	var sb strings.Builder

	concepts := make([]string, len(q.Concepts))
	for i, c := range q.Concepts {
		concepts[i] = strconv.Quote(c)
	}

	sb.WriteString("{ Get { ")
	sb.WriteString(q.Class)
	fmt.Fprintf(&sb, "(limit: %d, nearText: {concepts: [%s], distance: %s}) { ",
		q.Limit, strings.Join(concepts, ", "), strconv.FormatFloat(q.Distance, 'f', -1, 64))
	sb.WriteString(strings.Join(q.Fields, " "))
	sb.WriteString(" _additional { id distance")

	var args, outs []string
	if q.SinglePrompt != "" {
		args = append(args, fmt.Sprintf("singleResult: {prompt: %s}", quoteBlock(q.SinglePrompt)))
		outs = append(outs, "singleResult")
	}
	if q.GroupedTask != "" {
		args = append(args, fmt.Sprintf("groupedResult: {task: %s}", quoteBlock(q.GroupedTask)))
		outs = append(outs, "groupedResult")
	}
	if len(args) > 0 {
		fmt.Fprintf(&sb, " generate(%s) { %s error }", strings.Join(args, ", "), strings.Join(outs, " "))
	}

	sb.WriteString(" } } } }")
	return sb.String()
}

// quoteBlock wraps a prompt in a GraphQL block string so `{answer}` placeholders survive.
func quoteBlock(s string) string {
	return `"""` + strings.ReplaceAll(s, `"""`, `\"""`) + `"""`
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   map[string]map[string][]map[string]any `json:"data"`
	Errors []graphQLError                         `json:"errors"`
}

func parseGetResults(class string, resp graphQLResponse) (*QueryResult, error) {
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return nil, &QueryError{Messages: msgs}
	}

	out := &QueryResult{Class: class, Results: []Result{}}
	rows := resp.Data["Get"][class]
	for _, row := range rows {
		r := Result{Fields: map[string]any{}}
		for k, v := range row {
			if k != "_additional" {
				r.Fields[k] = v
			}
		}
		if add, ok := row["_additional"].(map[string]any); ok {
			r.ID, _ = add["id"].(string)
			r.Distance, _ = add["distance"].(float64)
			if gen, ok := add["generate"].(map[string]any); ok {
				r.Generated, _ = gen["singleResult"].(string)
				r.GenerateError, _ = gen["error"].(string)
				if grouped, ok := gen["groupedResult"].(string); ok && grouped != "" {
					out.Grouped = grouped
				}
			}
		}
		out.Results = append(out.Results, r)
	}
	return out, nil
}
