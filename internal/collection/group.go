package collection

import "github.com/roach88/recq/internal/ir"

// NullGroupKey is the group key for records whose field is null or absent.
// A string field holding the literal text "null" shares this group.
const NullGroupKey = "null"

// Group is one bucket of a GroupBy result.
type Group[R any] struct {
	Key   string
	Items []R
}

// GroupBy buckets records by the text form of field. Groups appear in the
// order their key is first seen; members keep their input order. Every
// record lands in exactly one group.
func GroupBy[R any](records []R, field string, acc Accessor[R]) ([]Group[R], error) {
	if err := CheckFields(acc, field); err != nil {
		return nil, err
	}

	groups := make([]Group[R], 0)
	index := make(map[string]int)
	for _, r := range records {
		key := GroupKey(acc.Value(r, field))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group[R]{Key: key})
		}
		groups[i].Items = append(groups[i].Items, r)
	}
	return groups, nil
}

// GroupKey returns the group key for a field value.
func GroupKey(v ir.Value) string {
	if ir.IsNull(v) {
		return NullGroupKey
	}
	return ir.Text(v)
}

// GroupMap returns groups as a map from key to members.
func GroupMap[R any](groups []Group[R]) map[string][]R {
	m := make(map[string][]R, len(groups))
	for _, g := range groups {
		m[g.Key] = g.Items
	}
	return m
}

// Chunk splits records into consecutive slices of size; the last may be
// shorter. Chunks share the input's backing array but are capacity-clipped,
// so appending to one never overwrites its neighbour.
func Chunk[R any](records []R, size int) ([][]R, error) {
	if size <= 0 {
		return nil, NewInvalidArgument("chunk size must be positive, got %d", size)
	}
	out := make([][]R, 0, (len(records)+size-1)/size)
	for i := 0; i < len(records); i += size {
		end := min(i+size, len(records))
		out = append(out, records[i:end:end])
	}
	return out, nil
}
