package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recq/internal/ir"
)

func day(d int) ir.Value {
	return ir.Time(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
}

func TestSortByScoreAscending(t *testing.T) {
	got, err := SortBy(fruits(), []SortKey{{Field: "score", Direction: Asc}}, fruitFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "1"}, ids(got))
}

func TestSortByDoesNotMutateInput(t *testing.T) {
	in := fruits()
	_, err := SortBy(in, []SortKey{{Field: "score", Direction: Desc}}, fruitFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(in))
}

func TestSortByNullsLastBothDirections(t *testing.T) {
	records := []ir.Record{
		{"id": ir.Int(1), "due": ir.Null{}},
		{"id": ir.Int(2), "due": day(5)},
		{"id": ir.Int(3)},
		{"id": ir.Int(4), "due": day(1)},
		{"id": ir.Int(5), "due": day(9)},
	}

	asc, err := SortBy(records, []SortKey{{Field: "due", Direction: Asc}}, taskFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "2", "5", "1", "3"}, ids(asc))

	desc, err := SortBy(records, []SortKey{{Field: "due", Direction: Desc}}, taskFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "2", "4", "1", "3"}, ids(desc), "direction does not move nulls")
}

func TestSortByMultiKey(t *testing.T) {
	records := []ir.Record{
		{"id": ir.Int(1), "status": ir.String("todo"), "priority": ir.Int(1)},
		{"id": ir.Int(2), "status": ir.String("done"), "priority": ir.Int(3)},
		{"id": ir.Int(3), "status": ir.String("todo"), "priority": ir.Int(3)},
		{"id": ir.Int(4), "status": ir.String("done"), "priority": ir.Int(1)},
		{"id": ir.Int(5), "status": ir.String("todo"), "priority": ir.Int(3)},
	}
	keys := []SortKey{{Field: "status"}, {Field: "priority", Direction: Desc}}

	got, err := SortBy(records, keys, taskFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4", "3", "5", "1"}, ids(got))
}

func TestSortByStableAndRepeatable(t *testing.T) {
	records := tasks()
	keys := []SortKey{{Field: "status", Direction: Asc}}

	first, err := SortBy(records, keys, taskFields)
	require.NoError(t, err)
	second, err := SortBy(first, keys, taskFields)
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "6", "1", "4", "3", "5"}, ids(first))
	assert.Equal(t, first, second)
}

func TestSortByNoKeysCopies(t *testing.T) {
	in := fruits()
	got, err := SortBy(in, nil, fruitFields)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	got, err = SortBy([]ir.Record(nil), nil, fruitFields)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSortByErrors(t *testing.T) {
	_, err := SortBy(fruits(), []SortKey{{Field: "colour"}}, fruitFields)
	assert.True(t, IsFieldNotFound(err))

	_, err = SortBy(fruits(), []SortKey{{Field: "name", Direction: "up"}}, fruitFields)
	assert.True(t, IsInvalidArgument(err))
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"": Asc, "asc": Asc, "ASC": Asc, "ascending": Asc,
		"desc": Desc, " Desc ": Desc, "descending": Desc,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDirection("sideways")
	assert.True(t, IsInvalidArgument(err))
}
