package records

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`[
		{"Category":"SCIENCE","Question":"This organ is always wanting more","Answer":"the brain","Round":"Jeopardy!"},
		{"Category":"ANIMALS","Question":"","Answer":"Elephant"}
	]`)
	recs, err := Parse("assets/a.json", data)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{FileSource: "assets/a.json", Answer: "the brain",
		Question: "This organ is always wanting more", Category: "SCIENCE"}, recs[0])
	assert.Equal(t, "", recs[1].Question)

	assert.Equal(t, map[string]any{
		"fileSource": "assets/a.json",
		"answer":     "the brain",
		"question":   "This organ is always wanting more",
		"category":   "SCIENCE",
	}, recs[0].Properties())
}

func TestParseEmptyArray(t *testing.T) {
	recs, err := Parse("empty.json", []byte(" [ ] "))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"object", `{"Answer":"x"}`},
		{"null", `null`},
		{"empty", ``},
		{"truncated", `[{"Answer":"x"`},
		{"wrong element type", `[1, 2]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse("bad.json", []byte(c.data))
			assert.ErrorIs(t, err, ErrParse)
			assert.False(t, errors.Is(err, ErrMalformedRecord))
		})
	}
}

func TestParseMissingFields(t *testing.T) {
	data := []byte(`[
		{"Category":"SCIENCE","Question":"q","Answer":"a"},
		{"category":"SCIENCE","Question":"q","Answer":null}
	]`)
	_, err := Parse("a.json", data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "a.json", verr.File)
	assert.ElementsMatch(t, []string{"Answer", "Category"}, verr.Fields)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Category":"C","Question":"Q","Answer":"A"}]`), 0o644))

	recs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, path, recs[0].FileSource)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrReadFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))
	single := filepath.Join(dir, "notes.txt")

	got, err := ExpandPaths([]string{single, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{single, filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, got)

	_, err = ExpandPaths([]string{filepath.Join(dir, "nope")})
	assert.ErrorIs(t, err, ErrReadFile)
}

func TestParseWrongFieldType(t *testing.T) {
	_, err := Parse("a.json", []byte(`[{"Category":"C","Question":"Q","Answer":200}]`))
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorContains(t, err, "field Answer")
}

func TestParseWrongFieldTypeReportsFirstKey(t *testing.T) {
	data := []byte(`[{"Category":true,"Question":7,"Answer":200}]`)
	for i := 0; i < 20; i++ {
		_, err := Parse("a.json", data)
		require.ErrorIs(t, err, ErrParse)
		assert.ErrorContains(t, err, "field Answer")
	}

	_, err := Parse("a.json", []byte(`[{"Category":true,"Question":7,"Answer":"A"}]`))
	assert.ErrorContains(t, err, "field Question")
}
