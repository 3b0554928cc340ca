package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Record is an immutable mapping of field names to scalar values.
// Use Get for reads: absent fields read as Null.
type Record map[string]Value

// Get returns the value of field, or Null if the field is absent.
func (r Record) Get(field string) Value {
	v, ok := r[field]
	if !ok || v == nil {
		return Null{}
	}
	return v
}

// Has reports whether field is present (an explicit null counts as present).
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// ID returns the text of the "id" field, or "" when it is absent or null.
func (r Record) ID() string {
	v := r.Get("id")
	if IsNull(v) {
		return ""
	}
	return Text(v)
}

// Pick returns a new record holding only the listed fields that are present.
func (r Record) Pick(fields ...string) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs outside the BMP.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// NewRecord converts a decoded map into a Record.
func NewRecord(m map[string]any) (Record, error) {
	r := make(Record, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		r[k] = v
	}
	return r, nil
}

// MarshalJSON implements json.Marshaler with sorted keys.
// NOTE: This is NOT canonical marshaling. Use MarshalCanonical for hashing.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(r[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Integral numbers decode as Int,
// other numbers as Float. Timestamps stay String until a schema decodes them.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	rec, err := NewRecord(raw)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// DecodeRecords decodes a JSON array of objects into records.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
