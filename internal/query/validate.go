package query

import (
	"math"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
)

// Validate checks a Spec against the fields an accessor exposes.
//
// Every field name referenced by filters, search, sort, group-by and select
// must exist, and every parameter must be well-formed. The first problem
// found is returned as a *collection.Error.
//
// Validate is a pure function with no side effects.
func Validate[R any](spec Spec, acc collection.Accessor[R]) error {
	v := &validator[R]{acc: acc}
	return v.validateSpec(spec)
}

// ValidatePredicates checks filter predicates only.
func ValidatePredicates[R any](preds []Predicate, acc collection.Accessor[R]) error {
	v := &validator[R]{acc: acc}
	for _, p := range preds {
		if err := v.validatePredicate(p); err != nil {
			return err
		}
	}
	return nil
}

// validator carries the accessor through the traversal.
type validator[R any] struct {
	acc collection.Accessor[R]
}

func (v *validator[R]) validateSpec(spec Spec) error {
	for _, p := range spec.Filters {
		if err := v.validatePredicate(p); err != nil {
			return err
		}
	}

	if spec.Search != nil {
		if err := v.validateSearch(*spec.Search); err != nil {
			return err
		}
	}

	if err := collection.CheckSort(spec.Sort, v.acc); err != nil {
		return err
	}

	if spec.GroupBy != "" {
		if err := collection.CheckFields(v.acc, spec.GroupBy); err != nil {
			return err
		}
	}

	if spec.Page != nil {
		if spec.Page.Offset < 0 {
			return collection.NewInvalidArgument("page offset must be >= 0, got %d", spec.Page.Offset)
		}
		if spec.Page.Limit < 0 {
			return collection.NewInvalidArgument("page limit must be >= 0, got %d", spec.Page.Limit)
		}
	}

	return collection.CheckFields(v.acc, spec.Select...)
}

func (v *validator[R]) validateSearch(s Search) error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if err := collection.CheckFields(v.acc, s.Fields...); err != nil {
		return err
	}
	if s.Threshold != nil {
		return collection.CheckThreshold(*s.Threshold)
	}
	return nil
}

// validatePredicate recursively validates a predicate node.
func (v *validator[R]) validatePredicate(p Predicate) error {
	if p == nil {
		return collection.NewInvalidArgument("nil predicate")
	}

	switch pred := p.(type) {
	case Equals:
		return v.validateComparison("eq", pred.Field, pred.Value)
	case NotEquals:
		return v.validateComparison("ne", pred.Field, pred.Value)
	case In:
		if err := collection.CheckFields(v.acc, pred.Field); err != nil {
			return err
		}
		if len(pred.Values) == 0 {
			return collection.NewInvalidArgument("in filter on %q needs at least one value", pred.Field)
		}
		for _, val := range pred.Values {
			if err := validateLiteral("in", pred.Field, val); err != nil {
				return err
			}
		}
		return nil
	case Range:
		return v.validateRange(pred)
	case Contains:
		return collection.CheckFields(v.acc, pred.Field)
	case IsNull:
		return collection.CheckFields(v.acc, pred.Field)
	case NotNull:
		return collection.CheckFields(v.acc, pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			if err := v.validatePredicate(sub); err != nil {
				return err
			}
		}
		return nil
	case Not:
		return v.validatePredicate(pred.Predicate)
	case Func[R]:
		if pred.Fn == nil {
			return collection.NewInvalidArgument("func predicate %q has no function", pred.Name)
		}
		return nil
	default:
		if _, ok := p.(funcPredicate); ok {
			return collection.NewInvalidArgument("func predicate %T does not match the record type", p)
		}
		return collection.NewInvalidArgument("unsupported predicate type %T", p)
	}
}

func (v *validator[R]) validateComparison(op, field string, val ir.Value) error {
	if err := collection.CheckFields(v.acc, field); err != nil {
		return err
	}
	return validateLiteral(op, field, val)
}

func (v *validator[R]) validateRange(r Range) error {
	if err := collection.CheckFields(v.acc, r.Field); err != nil {
		return err
	}
	if ir.IsNull(r.Min) && ir.IsNull(r.Max) {
		return collection.NewInvalidArgument("range filter on %q needs a min or max bound", r.Field)
	}
	if !ir.IsNull(r.Min) {
		if err := validateLiteral("gte", r.Field, r.Min); err != nil {
			return err
		}
	}
	if !ir.IsNull(r.Max) {
		if err := validateLiteral("lte", r.Field, r.Max); err != nil {
			return err
		}
	}
	if orderedBounds(r.Min, r.Max) && ir.Compare(r.Min, r.Max) > 0 {
		return collection.NewInvalidArgument("range filter on %q has min %s above max %s",
			r.Field, ir.Text(r.Min), ir.Text(r.Max))
	}
	return nil
}

// validateLiteral rejects null and non-finite comparison literals.
// Null comparisons are spelled IsNull / NotNull.
func validateLiteral(op, field string, val ir.Value) error {
	if ir.IsNull(val) {
		return collection.NewInvalidArgument("%s filter on %q compares to null; use null/notnull", op, field)
	}
	if f, ok := val.(ir.Float); ok && (math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)) {
		return collection.NewInvalidArgument("%s filter on %q has non-finite value", op, field)
	}
	return nil
}

// orderedBounds reports whether both bounds are typed so that comparing
// them is meaningful. String bounds are coerced per record and skipped here.
func orderedBounds(lo, hi ir.Value) bool {
	if ir.IsNull(lo) || ir.IsNull(hi) {
		return false
	}
	if lo.Kind().Numeric() && hi.Kind().Numeric() {
		return true
	}
	return lo.Kind() == ir.KindTime && hi.Kind() == ir.KindTime
}
