package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
)

const sampleQuery = `
filters:
  - {field: status, op: in, values: [todo, in_progress]}
  - {field: progress, op: range, min: 10, max: 90.5}
  - field: owner
    op: notnull
  - op: and
    all:
      - {field: title, op: contains, value: dash}
      - {field: due, op: gte, value: "2024-03-01"}
search: {query: dash, fields: [title], mode: fuzzy, threshold: 0.6}
sort: [status, "-due"]
group_by: status
page: {offset: 0, limit: 20}
select: [id, title]
`

func TestParseFile(t *testing.T) {
	spec, err := ParseFile([]byte(sampleQuery))
	require.NoError(t, err)

	th := 0.6
	assert.Equal(t, Spec{
		Filters: []Predicate{
			In{Field: "status", Values: []ir.Value{ir.String("todo"), ir.String("in_progress")}},
			Range{Field: "progress", Min: ir.Int(10), Max: ir.Float(90.5)},
			NotNull{Field: "owner"},
			And{Predicates: []Predicate{
				Contains{Field: "title", Substring: "dash"},
				Range{Field: "due", Min: ir.String("2024-03-01"), Max: ir.Null{}},
			}},
		},
		Search: &Search{Query: "dash", Fields: []string{"title"}, Mode: ModeFuzzy, Threshold: &th},
		Sort: []collection.SortKey{
			{Field: "status", Direction: collection.Asc},
			{Field: "due", Direction: collection.Desc},
		},
		GroupBy: "status",
		Page:    &Page{Limit: 20},
		Select:  []string{"id", "title"},
	}, spec)
}

func TestParseFileErrors(t *testing.T) {
	tests := map[string]string{
		"operator":      "filters: [{field: a, op: like, value: x}]",
		"contains type": "filters: [{field: a, op: contains, value: 3}]",
		"nested value":  "filters: [{field: a, op: eq, value: [1, 2]}]",
		"mode":          "search: {query: a, mode: regex}",
		"sort":          "sort: [\"a:up\"]",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFile([]byte(src))
			assert.True(t, collection.IsInvalidArgument(err), "got %v", err)
		})
	}

	_, err := ParseFile([]byte("filters: {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse query YAML")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filters: [{field: status, op: eq, value: todo}]\nsort: [id]\n"), 0o644))

	spec, err := LoadFile(path)
	require.NoError(t, err)

	res, err := Run(tasks(), spec, taskFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(res.Items))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
