package ir

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Verify all types implement Value (compile-time check via assignment)
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Time(time.Now())
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindNull, Null{}.Kind())
	assert.Equal(t, KindString, String("a").Kind())
	assert.Equal(t, KindInt, Int(1).Kind())
	assert.Equal(t, KindFloat, Float(1).Kind())
	assert.Equal(t, KindBool, Bool(true).Kind())
	assert.Equal(t, KindTime, Time(time.Time{}).Kind())
	assert.Equal(t, "time", KindTime.String())
	assert.True(t, KindFloat.Numeric())
	assert.False(t, KindString.Numeric())
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(String("")))
	assert.False(t, IsNull(Int(0)))
}

func TestText(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"null", Null{}, "null"},
		{"nil", nil, "null"},
		{"string", String("Apple"), "Apple"},
		{"int", Int(-7), "-7"},
		{"float", Float(2.5), "2.5"},
		{"integral float", Float(3), "3"},
		{"bool", Bool(false), "false"},
		{"time", Time(ts), "2024-03-01T09:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestCompare(t *testing.T) {
	early := Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := Time(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, -1, Compare(Int(1), Int(2)))
	assert.Equal(t, 1, Compare(Int(3), Float(2.5)))
	assert.Equal(t, 0, Compare(Float(3), Int(3)))
	assert.Equal(t, -1, Compare(String("Apple"), String("apple")), "lexicographic byte order")
	assert.Equal(t, -1, Compare(Bool(false), Bool(true)))
	assert.Equal(t, -1, Compare(early, late))
	assert.Equal(t, 1, Compare(late, early))

	// Unrelated kinds order by rank: bool < number < string < time
	assert.Equal(t, -1, Compare(Bool(true), Int(0)))
	assert.Equal(t, -1, Compare(Int(100), String("0")))
	assert.Equal(t, -1, Compare(String("z"), early))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(3), Float(3)))
	assert.True(t, Equal(String("a"), String("a")))
	assert.False(t, Equal(String("3"), Int(3)))
	assert.False(t, Equal(Null{}, Null{}), "null never equals")
	assert.False(t, Equal(Null{}, String("null")))
}

func TestCoerce(t *testing.T) {
	v, ok := Coerce(String("42"), KindInt)
	require.True(t, ok)
	assert.Equal(t, Int(42), v)

	v, ok = Coerce(String("4.5"), KindInt)
	require.True(t, ok)
	assert.Equal(t, Float(4.5), v)

	v, ok = Coerce(String("true"), KindBool)
	require.True(t, ok)
	assert.Equal(t, Bool(true), v)

	v, ok = Coerce(String("2024-02-10"), KindTime)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), v.(Time).Time())

	v, ok = Coerce(Int(2), KindFloat)
	require.True(t, ok)
	assert.Equal(t, Int(2), v, "numeric kinds are interchangeable without conversion")

	_, ok = Coerce(String("abc"), KindInt)
	assert.False(t, ok)
	_, ok = Coerce(Bool(true), KindString)
	assert.False(t, ok)
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-05-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))

	_, err = ParseTime("May 1st")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RFC 3339")
}

func TestFromAny(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "x", String("x")},
		{"bool", true, Bool(true)},
		{"int", 5, Int(5)},
		{"uint8", uint8(7), Int(7)},
		{"float", 1.25, Float(1.25)},
		{"json int", json.Number("12"), Int(12)},
		{"json float", json.Number("1.5"), Float(1.5)},
		{"json exponent", json.Number("1e2"), Float(100)},
		{"time", ts, Time(ts)},
		{"value", String("already"), String("already")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAnyRejects(t *testing.T) {
	inputs := []any{
		[]any{1, 2},
		map[string]any{"a": 1},
		math.NaN(),
		uint64(math.MaxUint64),
		struct{}{},
	}
	for _, in := range inputs {
		_, err := FromAny(in)
		assert.Error(t, err, "input %#v", in)
	}
}

func TestMarshalValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		in   Value
		want string
	}{
		{Null{}, "null"},
		{String(`a"b`), `"a\"b"`},
		{Int(9), "9"},
		{Float(0.5), "0.5"},
		{Bool(true), "true"},
		{Time(ts), `"2024-01-02T03:04:05Z"`},
	}
	for _, tt := range tests {
		got, err := MarshalValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}

	_, err := MarshalValue(Float(math.Inf(1)))
	assert.Error(t, err)
}
