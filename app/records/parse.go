package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadFile loads and validates every element of a JSON array file.
// The first malformed element aborts the read.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrReadFile, path, err)
	}
	return Parse(path, data)
}

func Parse(source string, data []byte) ([]Record, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w %s: top level value is not a JSON array", ErrParse, source)
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParse, source, err)
	}

	out := make([]Record, 0, len(items))
	for i, it := range items {
		r, err := decodeRaw(it)
		if err != nil {
			return nil, fmt.Errorf("%w %s[%d]: %w", ErrParse, source, i, err)
		}
		rec, err := r.toRecord(source, i)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeRaw picks the source keys by exact name; encoding/json alone would
// also accept "answer" or "ANSWER".
func decodeRaw(item map[string]json.RawMessage) (raw, error) {
	var r raw
	targets := []struct {
		key string
		dst **string
	}{
		{"Answer", &r.Answer},
		{"Question", &r.Question},
		{"Category", &r.Category},
	}
	for _, t := range targets {
		msg, ok := item[t.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, t.dst); err != nil {
			return raw{}, fmt.Errorf("field %s: %w", t.key, err)
		}
	}
	return r, nil
}

// ExpandPaths replaces every directory in paths with the *.json files it holds,
// sorted by name. File paths are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrReadFile, p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrReadFile, p, err)
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}
