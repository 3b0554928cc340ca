package query

import (
	"strings"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/similarity"
)

// Matches reports whether record r satisfies predicate p.
// Unknown predicate types never match; call Validate first.
func Matches[R any](p Predicate, r R, acc collection.Accessor[R]) bool {
	switch pred := p.(type) {
	case Equals:
		return equalLiteral(acc.Value(r, pred.Field), pred.Value)
	case NotEquals:
		v := acc.Value(r, pred.Field)
		if ir.IsNull(v) {
			return false
		}
		return !equalLiteral(v, pred.Value)
	case In:
		v := acc.Value(r, pred.Field)
		for _, lit := range pred.Values {
			if equalLiteral(v, lit) {
				return true
			}
		}
		return false
	case Range:
		return inRange(acc.Value(r, pred.Field), pred.Min, pred.Max)
	case Contains:
		v := acc.Value(r, pred.Field)
		if ir.IsNull(v) {
			return false
		}
		return strings.Contains(similarity.Fold(ir.Text(v)), similarity.Fold(pred.Substring))
	case IsNull:
		return ir.IsNull(acc.Value(r, pred.Field))
	case NotNull:
		return !ir.IsNull(acc.Value(r, pred.Field))
	case And:
		for _, sub := range pred.Predicates {
			if !Matches(sub, r, acc) {
				return false
			}
		}
		return true
	case Not:
		return !Matches(pred.Predicate, r, acc)
	case Func[R]:
		return pred.Fn != nil && pred.Fn(r)
	default:
		return false
	}
}

// Filter returns the records matching every predicate, preserving order.
func Filter[R any](records []R, preds []Predicate, acc collection.Accessor[R]) ([]R, error) {
	if err := ValidatePredicates(preds, acc); err != nil {
		return nil, err
	}
	return filter(records, preds, acc), nil
}

func filter[R any](records []R, preds []Predicate, acc collection.Accessor[R]) []R {
	if len(preds) == 0 {
		return records
	}
	all := And{Predicates: preds}
	out := make([]R, 0, len(records))
	for _, r := range records {
		if Matches(all, r, acc) {
			out = append(out, r)
		}
	}
	return out
}

// equalLiteral compares a field value to a literal, coercing the literal
// to the field's kind when they differ.
func equalLiteral(v, lit ir.Value) bool {
	if ir.IsNull(v) || ir.IsNull(lit) {
		return false
	}
	if c, ok := ir.Coerce(lit, v.Kind()); ok && ir.Equal(v, c) {
		return true
	}
	// String fields compare against the literal's text form ("42" = 42).
	if s, ok := v.(ir.String); ok {
		return string(s) == ir.Text(lit)
	}
	return false
}

func inRange(v, lo, hi ir.Value) bool {
	if ir.IsNull(v) {
		return false
	}
	if !ir.IsNull(lo) {
		c, ok := comparableLiteral(v, lo)
		if !ok || ir.Compare(v, c) < 0 {
			return false
		}
	}
	if !ir.IsNull(hi) {
		c, ok := comparableLiteral(v, hi)
		if !ok || ir.Compare(v, c) > 0 {
			return false
		}
	}
	return true
}

// comparableLiteral coerces lit to v's kind and reports whether the two
// can be ordered meaningfully.
func comparableLiteral(v, lit ir.Value) (ir.Value, bool) {
	c, ok := ir.Coerce(lit, v.Kind())
	if !ok {
		return nil, false
	}
	if v.Kind() == c.Kind() || (v.Kind().Numeric() && c.Kind().Numeric()) {
		return c, true
	}
	return nil, false
}
