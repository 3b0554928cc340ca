package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recq/internal/ir"
)

func tasks() []ir.Record {
	return []ir.Record{
		{"id": ir.Int(1), "status": ir.String("todo")},
		{"id": ir.Int(2), "status": ir.String("done")},
		{"id": ir.Int(3), "status": ir.Null{}},
		{"id": ir.Int(4), "status": ir.String("todo")},
		{"id": ir.Int(5)},
		{"id": ir.Int(6), "status": ir.String("done")},
	}
}

var taskFields = NewRecordAccessor("id", "status", "due", "priority", "title")

func TestGroupByFirstSeenOrder(t *testing.T) {
	groups, err := GroupBy(tasks(), "status", taskFields)
	require.NoError(t, err)

	require.Len(t, groups, 3)
	assert.Equal(t, "todo", groups[0].Key)
	assert.Equal(t, []string{"1", "4"}, ids(groups[0].Items))
	assert.Equal(t, "done", groups[1].Key)
	assert.Equal(t, []string{"2", "6"}, ids(groups[1].Items))
	assert.Equal(t, NullGroupKey, groups[2].Key)
	assert.Equal(t, []string{"3", "5"}, ids(groups[2].Items), "null and absent share the sentinel")
}

func TestGroupByCompleteness(t *testing.T) {
	records := tasks()
	for _, field := range []string{"id", "status", "due"} {
		groups, err := GroupBy(records, field, taskFields)
		require.NoError(t, err)
		total := 0
		for _, g := range groups {
			total += len(g.Items)
		}
		assert.Equal(t, len(records), total, "field %s", field)
	}
}

func TestGroupByNumericKeys(t *testing.T) {
	records := []ir.Record{
		{"id": ir.Int(1), "priority": ir.Int(2)},
		{"id": ir.Int(2), "priority": ir.Float(2)},
		{"id": ir.Int(3), "priority": ir.Float(2.5)},
	}
	groups, err := GroupBy(records, "priority", taskFields)
	require.NoError(t, err)
	m := GroupMap(groups)
	assert.Len(t, m, 2)
	assert.Equal(t, []string{"1", "2"}, ids(m["2"]))
	assert.Equal(t, []string{"3"}, ids(m["2.5"]))
}

func TestGroupByEmpty(t *testing.T) {
	groups, err := GroupBy([]ir.Record(nil), "status", taskFields)
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestGroupByUnknownField(t *testing.T) {
	_, err := GroupBy(tasks(), "colour", taskFields)
	assert.True(t, IsFieldNotFound(err))
}

func TestChunk(t *testing.T) {
	got, err := Chunk([]int{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)

	got, err = Chunk([]int{}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{}, got)

	got, err = Chunk([]int{1, 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}}, got)
}

func TestChunkInvalidSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		_, err := Chunk([]int{1}, size)
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err), "size %d", size)
	}
}

func TestChunkAppendDoesNotClobber(t *testing.T) {
	in := []int{1, 2, 3, 4}
	chunks, err := Chunk(in, 2)
	require.NoError(t, err)

	_ = append(chunks[0], 99)
	assert.Equal(t, []int{1, 2, 3, 4}, in)
	assert.Equal(t, []int{3, 4}, chunks[1])
}
