package collection

import (
	"time"

	"github.com/roach88/recq/internal/ir"
)

// Accessor reads named fields from records of type R.
//
// HasField reports whether name is part of R's schema; Value returns the
// field's value for one record, or ir.Null{} when it is absent. Value is
// only called with names for which HasField returned true.
type Accessor[R any] interface {
	HasField(name string) bool
	Value(r R, name string) ir.Value
}

// CheckFields returns a FIELD_NOT_FOUND error for the first name acc does
// not know.
func CheckFields[R any](acc Accessor[R], names ...string) error {
	for _, name := range names {
		if !acc.HasField(name) {
			return NewFieldNotFound(name)
		}
	}
	return nil
}

// Fields is an Accessor for Go struct types built from per-field getters.
//
// Example:
//
//	var taskFields = collection.NewFields[Task]().
//		String("title", func(t Task) string { return t.Title }).
//		OptionalTime("due_date", func(t Task) *time.Time { return t.DueDate })
type Fields[R any] struct {
	order []string
	get   map[string]func(R) ir.Value
}

// NewFields creates an empty field registry for R.
func NewFields[R any]() *Fields[R] {
	return &Fields[R]{get: make(map[string]func(R) ir.Value)}
}

// Add registers a raw getter. Registering a name twice replaces the getter.
func (f *Fields[R]) Add(name string, get func(R) ir.Value) *Fields[R] {
	if _, exists := f.get[name]; !exists {
		f.order = append(f.order, name)
	}
	f.get[name] = get
	return f
}

// String registers a string field.
func (f *Fields[R]) String(name string, get func(R) string) *Fields[R] {
	return f.Add(name, func(r R) ir.Value { return ir.String(get(r)) })
}

// Int registers an integer field.
func (f *Fields[R]) Int(name string, get func(R) int64) *Fields[R] {
	return f.Add(name, func(r R) ir.Value { return ir.Int(get(r)) })
}

// Float registers a floating point field.
func (f *Fields[R]) Float(name string, get func(R) float64) *Fields[R] {
	return f.Add(name, func(r R) ir.Value { return ir.Float(get(r)) })
}

// Bool registers a boolean field.
func (f *Fields[R]) Bool(name string, get func(R) bool) *Fields[R] {
	return f.Add(name, func(r R) ir.Value { return ir.Bool(get(r)) })
}

// Time registers a time field.
func (f *Fields[R]) Time(name string, get func(R) time.Time) *Fields[R] {
	return f.Add(name, func(r R) ir.Value { return ir.Time(get(r)) })
}

// OptionalString registers a string field where "" reads as null.
func (f *Fields[R]) OptionalString(name string, get func(R) string) *Fields[R] {
	return f.Add(name, func(r R) ir.Value {
		if s := get(r); s != "" {
			return ir.String(s)
		}
		return ir.Null{}
	})
}

// OptionalFloat registers a float field where a nil pointer reads as null.
func (f *Fields[R]) OptionalFloat(name string, get func(R) *float64) *Fields[R] {
	return f.Add(name, func(r R) ir.Value {
		if p := get(r); p != nil {
			return ir.Float(*p)
		}
		return ir.Null{}
	})
}

// OptionalInt registers an integer field where a nil pointer reads as null.
func (f *Fields[R]) OptionalInt(name string, get func(R) *int64) *Fields[R] {
	return f.Add(name, func(r R) ir.Value {
		if p := get(r); p != nil {
			return ir.Int(*p)
		}
		return ir.Null{}
	})
}

// OptionalTime registers a time field where a nil pointer reads as null.
func (f *Fields[R]) OptionalTime(name string, get func(R) *time.Time) *Fields[R] {
	return f.Add(name, func(r R) ir.Value {
		if p := get(r); p != nil {
			return ir.Time(*p)
		}
		return ir.Null{}
	})
}

// HasField implements Accessor.
func (f *Fields[R]) HasField(name string) bool {
	_, ok := f.get[name]
	return ok
}

// Value implements Accessor. Unknown names read as null.
func (f *Fields[R]) Value(r R, name string) ir.Value {
	get, ok := f.get[name]
	if !ok {
		return ir.Null{}
	}
	v := get(r)
	if v == nil {
		return ir.Null{}
	}
	return v
}

// Names returns field names in registration order.
func (f *Fields[R]) Names() []string {
	return append([]string(nil), f.order...)
}

// Record materializes r as an ir.Record holding every registered field.
func (f *Fields[R]) Record(r R) ir.Record {
	out := make(ir.Record, len(f.order))
	for _, name := range f.order {
		out[name] = f.Value(r, name)
	}
	return out
}

// RecordAccessor reads ir.Record values by key and accepts any field in
// its known set. Use schema.Schema when kinds matter.
type RecordAccessor map[string]struct{}

// NewRecordAccessor creates a RecordAccessor knowing the given names.
func NewRecordAccessor(names ...string) RecordAccessor {
	acc := make(RecordAccessor, len(names))
	for _, n := range names {
		acc[n] = struct{}{}
	}
	return acc
}

// HasField implements Accessor.
func (a RecordAccessor) HasField(name string) bool {
	_, ok := a[name]
	return ok
}

// Value implements Accessor.
func (a RecordAccessor) Value(r ir.Record, name string) ir.Value {
	return r.Get(name)
}
