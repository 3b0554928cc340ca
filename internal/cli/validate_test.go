package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCUE(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestValidateValidSchemas(t *testing.T) {
	out, err := execute(t, "validate", schemaDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All schemas valid")
	assert.NotContains(t, out, "tasks (")
}

func TestValidateVerboseListsCollections(t *testing.T) {
	out, err := execute(t, "-v", "validate", schemaDir)
	require.NoError(t, err)
	assert.Contains(t, out, "tasks (8 fields)")
}

func TestValidateValidSchemasJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", schemaDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Collections, 1)
	assert.Equal(t, "tasks", resp.Data.Collections[0].Name)
	assert.Equal(t, []string{"id", "title", "status", "priority", "assignee"}, resp.Data.Collections[0].Text)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/schemas")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "a.cue", "collection: tasks: { id: string, tags: [...string] }\n")
	writeCUE(t, dir, "b.cue", "collection: people: { id: string }\n")
	writeCUE(t, dir, "c.cue", "collection: people: { id: int }\n")
	writeCUE(t, dir, "d.cue", "collection: x: {\n")

	out, err := execute(t, "--format", "json", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)
	for _, e := range resp.Data.Errors {
		assert.Equal(t, ErrCodeSchemaInvalid, e.Code)
	}
	assert.Contains(t, resp.Data.Errors[0].Message, "tags")
	assert.Contains(t, resp.Data.Errors[1].Message, "declared twice")
}

func TestValidateTextFailure(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "a.cue", "collection: tasks: {\n\tid: string\n\ttags: [...string]\n}\n")

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "a.cue:3")
}

func TestValidateNoCollections(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "a.cue", "collection: {}\n")

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "no collections declared")
}
