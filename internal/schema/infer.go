package schema

import (
	"fmt"

	"github.com/roach88/recq/internal/ir"
)

// Infer derives a schema from sample records. Fields are ordered by first
// appearance (keys within a record in sorted order). A field that is null
// or absent in any record is optional; mixing ints and floats gives float;
// a field that is always null is an optional string. Strings are never
// guessed to be dates.
func Infer(name string, records []ir.Record) (*Schema, error) {
	type seen struct {
		kind  Kind
		count int
	}

	var order []string
	info := make(map[string]*seen)
	for _, r := range records {
		for _, key := range r.SortedKeys() {
			s, ok := info[key]
			if !ok {
				s = &seen{}
				info[key] = s
				order = append(order, key)
			}
			v := r[key]
			if ir.IsNull(v) {
				continue
			}
			s.count++

			k := kindOf(v)
			switch {
			case s.kind == "" || s.kind == k:
				s.kind = k
			case isNumber(s.kind) && isNumber(k):
				s.kind = KindFloat
			default:
				return nil, fmt.Errorf("infer %s: field %q mixes %s and %s", name, key, s.kind, k)
			}
		}
	}

	fields := make([]Field, 0, len(order))
	for _, key := range order {
		s := info[key]
		f := Field{Name: key, Kind: s.kind, Optional: s.count < len(records)}
		if f.Kind == "" {
			f.Kind = KindString
		}
		fields = append(fields, f)
	}
	return New(name, fields...)
}

func kindOf(v ir.Value) Kind {
	switch v.Kind() {
	case ir.KindInt:
		return KindInt
	case ir.KindFloat:
		return KindFloat
	case ir.KindBool:
		return KindBool
	case ir.KindTime:
		return KindDate
	default:
		return KindString
	}
}

func isNumber(k Kind) bool {
	return k == KindInt || k == KindFloat
}
