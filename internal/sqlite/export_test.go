// Tests for the JSONL export.
package sqlite

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typekeep/typekeep/pkg/types"
)

// readJSONLines decodes every line of a JSONL file into a mapping.
func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestExportEmptyStore(t *testing.T) {
	b := newAttachedBackend(t)
	dir := t.TempDir()

	summary, err := b.Export(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, summary.Dir)
	assert.Zero(t, summary.Types)
	assert.Zero(t, summary.Objects)

	// The types file is written even when nothing is registered.
	lines := readJSONLines(t, filepath.Join(dir, TypesFileName))
	assert.Empty(t, lines)
}

func TestExport(t *testing.T) {
	b := newAttachedBackend(t)
	registerTask(t, b)
	_, err := b.RegisterType(taskSchema("book"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := b.CreateObject("task", map[string]any{
			"title": "t", "icon": "i", "status": i, "note": "extra",
		})
		require.NoError(t, err)
	}
	_, err = b.CreateObject("book", map[string]any{
		"title": "dune", "icon": "b", "status": 0,
	})
	require.NoError(t, err)

	dir := t.TempDir()
	summary, err := b.Export(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Types)
	assert.Equal(t, 4, summary.Objects)

	typeLines := readJSONLines(t, filepath.Join(dir, TypesFileName))
	require.Len(t, typeLines, 2)
	ids := []string{typeLines[0]["type_id"].(string), typeLines[1]["type_id"].(string)}
	assert.ElementsMatch(t, []string{"task", "book"}, ids)
	assert.Contains(t, typeLines[0], "type_schema")
	assert.Contains(t, typeLines[0], "table_name")

	taskLines := readJSONLines(t, filepath.Join(dir, "objects_task.jsonl"))
	require.Len(t, taskLines, 3)
	assert.Equal(t, "t", taskLines[0]["title"])
	extras, ok := taskLines[0][types.ExtraProperties].(map[string]any)
	require.True(t, ok, "exported rows carry the decoded overflow mapping")
	assert.Equal(t, "extra", extras["note"])

	bookLines := readJSONLines(t, filepath.Join(dir, "objects_book.jsonl"))
	assert.Len(t, bookLines, 1)
}

func TestExportCreatesDirectory(t *testing.T) {
	b := newAttachedBackend(t)
	registerTask(t, b)

	dir := filepath.Join(t.TempDir(), "nested", "export")
	_, err := b.Export(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, TypesFileName))
	assert.NoError(t, err)
}

func TestExportOverwritesPreviousRun(t *testing.T) {
	b := newAttachedBackend(t)
	registerTask(t, b)
	_, err := b.CreateObject("task", map[string]any{
		"title": "one", "icon": "i", "status": 0,
	})
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = b.Export(dir)
	require.NoError(t, err)

	_, err = b.CreateObject("task", map[string]any{
		"title": "two", "icon": "i", "status": 1,
	})
	require.NoError(t, err)

	summary, err := b.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Objects)

	lines := readJSONLines(t, filepath.Join(dir, "objects_task.jsonl"))
	assert.Len(t, lines, 2)
}

func TestExportLeavesNoTempFiles(t *testing.T) {
	b := newAttachedBackend(t)
	registerTask(t, b)

	dir := t.TempDir()
	_, err := b.Export(dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Equal(t, ".jsonl", filepath.Ext(entry.Name()), "unexpected file %s", entry.Name())
	}
}
