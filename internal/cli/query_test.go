package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/query"
)

type queryGroup struct {
	Key   string           `json:"key"`
	Items []map[string]any `json:"items"`
}

type queryData struct {
	Collection string           `json:"collection"`
	Items      []map[string]any `json:"items"`
	Groups     []queryGroup     `json:"groups"`
	Total      int              `json:"total"`
	HasMore    bool             `json:"has_more"`
}

type queryResponse struct {
	Status string    `json:"status"`
	Data   queryData `json:"data"`
}

func runJSONQuery(t *testing.T, args ...string) queryResponse {
	t.Helper()
	out, err := execute(t, append([]string{"--format", "json", "query"}, args...)...)
	require.NoError(t, err, out)
	var resp queryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func itemIDs(items []map[string]any) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i], _ = it["id"].(string)
	}
	return out
}

func fileArgs(extra ...string) []string {
	return append([]string{"--data", tasksData, "--schema", schemaDir, "-c", "tasks"}, extra...)
}

func TestQuerySearchDefaultsToTextFields(t *testing.T) {
	resp := runJSONQuery(t, fileArgs("-q", "DASHBOARD", "--sort", "title")...)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"t3", "t1", "t7"}, itemIDs(resp.Data.Items))
	assert.Equal(t, 3, resp.Data.Total)
}

func TestQueryFilterSortPage(t *testing.T) {
	resp := runJSONQuery(t, fileArgs(
		"--filter", "status:in:todo|in_progress",
		"--sort", "due",
		"--limit", "2",
		"--select", "id,due",
	)...)
	assert.Equal(t, []string{"t3", "t1"}, itemIDs(resp.Data.Items))
	assert.Equal(t, 5, resp.Data.Total)
	assert.True(t, resp.Data.HasMore)
	assert.Len(t, resp.Data.Items[0], 2)
	assert.Equal(t, "2024-02-10T00:00:00Z", resp.Data.Items[0]["due"])
}

func TestQueryGroup(t *testing.T) {
	resp := runJSONQuery(t, fileArgs("--filter", "progress:gte:10", "--sort", "-progress,id", "--group", "status")...)
	require.Len(t, resp.Data.Groups, 4)
	assert.Equal(t, "done", resp.Data.Groups[0].Key)
	assert.Equal(t, []string{"t4", "t8"}, itemIDs(resp.Data.Groups[0].Items))
	assert.Equal(t, "todo", resp.Data.Groups[3].Key)
}

func TestQuerySpecFileMergedWithFlags(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "q.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte(`filters:
  - {field: status, op: eq, value: todo}
sort: [id]
page: {offset: 0, limit: 1}
`), 0o644))

	resp := runJSONQuery(t, fileArgs("--spec", specPath)...)
	assert.Equal(t, []string{"t2"}, itemIDs(resp.Data.Items))
	assert.Equal(t, 3, resp.Data.Total)

	resp = runJSONQuery(t, fileArgs("--spec", specPath, "--filter", "priority:eq:high", "--limit", "5")...)
	assert.Equal(t, []string{"t3"}, itemIDs(resp.Data.Items))
}

const workspaceTasks = `[
  {"id": "w1", "project_id": "p1", "title": "Draft brief", "status": "review", "priority": "high",
   "due_date": "2024-03-01", "created_at": "2024-01-02", "updated_at": "2024-02-01"},
  {"id": "w2", "project_id": "p1", "title": "Book venue", "status": "todo", "priority": "low",
   "created_at": "2024-01-03", "updated_at": "2024-01-03"},
  {"id": "w3", "project_id": "p2", "title": "Review budget", "status": "review", "priority": "urgent",
   "assignee": "ana", "estimated_hours": 3, "created_at": "2024-01-04", "updated_at": "2024-01-05"}
]`

func TestQueryBuiltinCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(workspaceTasks), 0o644))

	resp := runJSONQuery(t, "--data", path, "-c", "tasks", "--filter", "status:eq:review", "--sort", "-priority")
	assert.Equal(t, []string{"w3", "w1"}, itemIDs(resp.Data.Items))
	assert.Equal(t, "2024-03-01T00:00:00Z", resp.Data.Items[1]["due_date"])

	out, err := execute(t, "--format", "json", "query", "--data", path, "-c", "tasks", "-q", "venue")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"w2"`)
}

func TestQueryBuiltinCollectionValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`[{"id": "w1", "project_id": "p1", "title": "Draft", "status": "blocked", "priority": "high",
		   "created_at": "2024-01-02", "updated_at": "2024-01-02"}]`), 0o644))

	out, err := execute(t, "--format", "json", "query", "--data", path, "-c", "tasks")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidRecord, decodeResponse(t, bytes.NewBufferString(out)).Error.Code)
}

func TestQueryInferredSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"id":"p1","name":"John Doe"}`+"\n"+
			`{"id":"p2","name":"Jane Smith"}`+"\n"+
			`{"id":"p3","name":"Dmitri Jones"}`+"\n"), 0o644))

	resp := runJSONQuery(t, "--data", path, "-c", "contacts", "-q", "jd", "--mode", "subsequence")
	assert.Equal(t, []string{"p1"}, itemIDs(resp.Data.Items))
}

func TestQueryFromStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "recq.db")
	_, err := execute(t, "import", "--db", db, "--schema", schemaDir, "-c", "tasks", tasksData)
	require.NoError(t, err)

	resp := runJSONQuery(t, "--db", db, "-c", "tasks", "--filter", "assignee:null", "--sort", "id")
	assert.Equal(t, []string{"t2", "t6"}, itemIDs(resp.Data.Items))
}

func TestQueryTextTable(t *testing.T) {
	out, err := execute(t, append([]string{"query"}, fileArgs("--filter", "status:eq:done", "--sort", "id", "--select", "id,title", "--group", "priority")...)...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "== urgent (1) ==")
	assert.Contains(t, out, "== low (1) ==")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Ship release 1.0")
	assert.Contains(t, out, "2 of 2 match(es)")
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		exit int
		code string
	}{
		{"unknown field", fileArgs("--sort", "colour"), ExitFailure, ErrCodeFieldNotFound},
		{"bad filter", fileArgs("--filter", "status"), ExitCommandError, ErrCodeInvalidArgument},
		{"bad mode", fileArgs("-q", "x", "--mode", "regex"), ExitCommandError, ErrCodeInvalidArgument},
		{"bad threshold", fileArgs("-q", "x", "--mode", "fuzzy", "--threshold", "2"), ExitFailure, ErrCodeInvalidArgument},
		{"unknown collection", []string{"--data", tasksData, "--schema", schemaDir, "-c", "people"}, ExitCommandError, ErrCodeCollectionNotFound},
		{"missing store collection", []string{"--db", filepath.Join(t.TempDir(), "x.db"), "-c", "tasks"}, ExitCommandError, ErrCodeCollectionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"--format", "json", "query"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestQuerySourceFlags(t *testing.T) {
	_, err := execute(t, "query", "-c", "tasks")
	require.Error(t, err)

	_, err = execute(t, "query", "-c", "tasks", "--db", "x.db", "--data", tasksData)
	require.Error(t, err)
}

func TestMergeSpec(t *testing.T) {
	base := query.Spec{
		Filters: []query.Predicate{query.IsNull{Field: "a"}},
		Sort:    []collection.SortKey{{Field: "a"}},
		GroupBy: "a",
	}
	over := query.Spec{
		Filters: []query.Predicate{query.NotNull{Field: "b"}},
		Page:    &query.Page{Limit: 3},
	}
	got := mergeSpec(base, over)
	assert.Len(t, got.Filters, 2)
	assert.Equal(t, base.Sort, got.Sort)
	assert.Equal(t, "a", got.GroupBy)
	assert.Equal(t, 3, got.Page.Limit)
	assert.Len(t, base.Filters, 1)
}
