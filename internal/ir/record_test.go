package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGet(t *testing.T) {
	r := Record{"name": String("Apple"), "owner": Null{}}

	assert.Equal(t, String("Apple"), r.Get("name"))
	assert.Equal(t, Null{}, r.Get("owner"))
	assert.Equal(t, Null{}, r.Get("missing"))
	assert.True(t, r.Has("owner"))
	assert.False(t, r.Has("missing"))
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "7", Record{"id": Int(7)}.ID())
	assert.Equal(t, "t-1", Record{"id": String("t-1")}.ID())
	assert.Equal(t, "", Record{}.ID())
}

func TestRecordPick(t *testing.T) {
	r := Record{"id": Int(1), "name": String("a"), "score": Int(3)}

	got := r.Pick("id", "score", "missing")

	assert.Equal(t, Record{"id": Int(1), "score": Int(3)}, got)
	assert.Len(t, r, 3, "original untouched")
}

func TestRecordSortedKeys(t *testing.T) {
	r := Record{"a": Int(1), "A": Int(2), "aa": Int(3), "Aa": Int(4)}
	assert.Equal(t, []string{"A", "Aa", "a", "aa"}, r.SortedKeys())
}

func TestRecordSortedKeysUTF16(t *testing.T) {
	// U+FB01 (BMP) sorts after the surrogate pair of U+1F600 in UTF-16,
	// but before it in UTF-8 byte order.
	r := Record{"ﬁ": Int(1), "\U0001F600": Int(2)}
	assert.Equal(t, []string{"\U0001F600", "ﬁ"}, r.SortedKeys())
}

func TestRecordJSONRoundTrip(t *testing.T) {
	in := []byte(`{"id":1,"name":"Apple","score":2.5,"done":false,"owner":null}`)

	var r Record
	require.NoError(t, json.Unmarshal(in, &r))

	assert.Equal(t, Int(1), r["id"])
	assert.Equal(t, String("Apple"), r["name"])
	assert.Equal(t, Float(2.5), r["score"])
	assert.Equal(t, Bool(false), r["done"])
	assert.Equal(t, Null{}, r["owner"])

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"done":false,"id":1,"name":"Apple","owner":null,"score":2.5}`, string(out))
}

func TestRecordUnmarshalRejectsNested(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"tags":["a","b"]}`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags")
}

func TestDecodeRecords(t *testing.T) {
	records, err := DecodeRecords([]byte(`[{"id":1},{"id":2,"name":"b"}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1].ID())
}
