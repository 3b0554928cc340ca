package collection

import (
	"slices"
	"strings"

	"github.com/roach88/recq/internal/ir"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts asc/ascending and desc/descending in any case.
// An empty string means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return "", NewInvalidArgument("invalid sort direction %q: must be asc or desc", s)
	}
}

// SortKey is one (field, direction) pair of a sort specification.
type SortKey struct {
	Field     string    `json:"field" yaml:"field"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// CheckSort validates sort keys against acc: every field must exist and
// every direction must be asc, desc or empty (asc).
func CheckSort[R any](keys []SortKey, acc Accessor[R]) error {
	for _, k := range keys {
		if !acc.HasField(k.Field) {
			return NewFieldNotFound(k.Field)
		}
		if k.Direction != "" && k.Direction != Asc && k.Direction != Desc {
			return NewInvalidArgument("invalid sort direction %q for field %q: must be asc or desc", k.Direction, k.Field)
		}
	}
	return nil
}

// SortBy returns a sorted copy of records. Keys apply in order: ties on the
// first are broken by the second, and so on. Null values sort after all
// non-null values regardless of direction; direction only flips the
// comparison of non-null values. The sort is stable.
func SortBy[R any](records []R, keys []SortKey, acc Accessor[R]) ([]R, error) {
	if err := CheckSort(keys, acc); err != nil {
		return nil, err
	}

	out := slices.Clone(records)
	if out == nil {
		out = []R{}
	}
	if len(keys) == 0 {
		return out, nil
	}
	slices.SortStableFunc(out, func(a, b R) int {
		for _, k := range keys {
			if c := compareField(acc.Value(a, k.Field), acc.Value(b, k.Field), k.Direction); c != 0 {
				return c
			}
		}
		return 0
	})
	return out, nil
}

// compareField applies the null-last rule, then the directed natural order.
func compareField(a, b ir.Value, dir Direction) int {
	aNull, bNull := ir.IsNull(a), ir.IsNull(b)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return 1
	case bNull:
		return -1
	}
	c := ir.Compare(a, b)
	if dir == Desc {
		return -c
	}
	return c
}
