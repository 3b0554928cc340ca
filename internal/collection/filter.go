package collection

import (
	"strings"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/similarity"
)

// FilterByQuery keeps records where ANY of fields contains query as a
// case-insensitive substring. The query is trimmed first; an empty or
// whitespace-only query returns records unchanged. Null fields do not
// match, but another field of the same record still can.
func FilterByQuery[R any](records []R, query string, fields []string, acc Accessor[R]) ([]R, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return records, nil
	}
	if err := CheckFields(acc, fields...); err != nil {
		return nil, err
	}

	needle := similarity.Fold(q)
	out := make([]R, 0)
	for _, r := range records {
		if containsAny(r, needle, fields, acc) {
			out = append(out, r)
		}
	}
	return out, nil
}

// containsAny reports whether any non-null field of r contains the folded needle.
func containsAny[R any](r R, needle string, fields []string, acc Accessor[R]) bool {
	for _, f := range fields {
		v := acc.Value(r, f)
		if ir.IsNull(v) {
			continue
		}
		if strings.Contains(similarity.Fold(ir.Text(v)), needle) {
			return true
		}
	}
	return false
}

// UniqueBy keeps the first record for each distinct value of field.
// All null values share a single key.
func UniqueBy[R any](records []R, field string, acc Accessor[R]) ([]R, error) {
	if err := CheckFields(acc, field); err != nil {
		return nil, err
	}

	type key struct {
		kind ir.Kind
		text string
	}
	seen := make(map[key]struct{}, len(records))
	out := make([]R, 0, len(records))
	for _, r := range records {
		v := acc.Value(r, field)
		k := key{kind: ir.KindNull}
		if !ir.IsNull(v) {
			k = key{kind: v.Kind(), text: ir.Text(v)}
			if v.Kind() == ir.KindTime {
				k.text = v.(ir.Time).Time().UTC().String()
			}
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}
