package schema

import (
	"fmt"
	"math"

	"cuelang.org/go/cue"

	"github.com/roach88/recq/internal/ir"
)

// Kind is the declared kind of a field.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindDate   Kind = "date"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindInt, KindFloat, KindBool, KindDate:
		return true
	}
	return false
}

// Field is one declared field of a collection.
type Field struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Optional bool   `json:"optional,omitempty"`
}

// Schema is the field layout of a named collection.
type Schema struct {
	Name   string
	Fields []Field

	// Source is the CUE text the schema was compiled from, if any.
	Source string

	index    map[string]int
	value    cue.Value       // zero unless compiled from CUE
	nullable map[string]bool // CUE fields whose type admits null
}

// New builds a schema from Go field declarations. Such schemas check kinds
// and required fields but carry no CUE constraints.
func New(name string, fields ...Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	s := &Schema{Name: name, index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field name is required", name)
		}
		if !f.Kind.Valid() {
			return nil, fmt.Errorf("schema %s: field %q has unknown kind %q", name, f.Name, f.Kind)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", name, f.Name)
		}
		s.index[f.Name] = len(s.Fields)
		s.Fields = append(s.Fields, f)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("schema %s: at least one field is required", name)
	}
	return s, nil
}

// HasField implements collection.Accessor.
func (s *Schema) HasField(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Value implements collection.Accessor.
func (s *Schema) Value(r ir.Record, name string) ir.Value {
	return r.Get(name)
}

// Field returns the declaration of name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// TextFields returns the string fields, the default search targets.
func (s *Schema) TextFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == KindString {
			names = append(names, f.Name)
		}
	}
	return names
}

// RecordError reports a record that does not fit its schema.
type RecordError struct {
	Index   int // position in the input, -1 when decoding a single record
	Field   string
	Message string
}

func (e *RecordError) Error() string {
	prefix := ""
	if e.Index >= 0 {
		prefix = fmt.Sprintf("record %d: ", e.Index)
	}
	if e.Field != "" {
		return fmt.Sprintf("%sfield %q: %s", prefix, e.Field, e.Message)
	}
	return prefix + e.Message
}

func recordErr(field, format string, args ...any) *RecordError {
	return &RecordError{Index: -1, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Decode converts raw decoded JSON/YAML into a record of the schema's
// kinds (see Convert) and validates it.
func (s *Schema) Decode(raw map[string]any) (ir.Record, error) {
	r, err := ir.NewRecord(raw)
	if err != nil {
		return nil, &RecordError{Index: -1, Message: err.Error()}
	}
	if err := s.Convert(r); err != nil {
		return nil, err
	}
	if err := s.Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Convert rewrites the declared fields of r in place to the schema's kinds:
// date strings become ir.Time, integral numbers in int fields become
// ir.Int, ints in float fields become ir.Float. Undeclared and null fields
// are left alone.
func (s *Schema) Convert(r ir.Record) error {
	for name, v := range r {
		f, ok := s.Field(name)
		if !ok || ir.IsNull(v) {
			continue
		}
		cv, err := convert(f, v)
		if err != nil {
			return err
		}
		r[name] = cv
	}
	return nil
}

// DecodeAll decodes a batch; the first failure is reported with its index.
func (s *Schema) DecodeAll(raws []map[string]any) ([]ir.Record, error) {
	out := make([]ir.Record, 0, len(raws))
	for i, raw := range raws {
		r, err := s.Decode(raw)
		if err != nil {
			if re, ok := err.(*RecordError); ok {
				re.Index = i
				return nil, re
			}
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func convert(f Field, v ir.Value) (ir.Value, error) {
	switch f.Kind {
	case KindDate:
		if _, ok := v.(ir.Time); ok {
			return v, nil
		}
		if str, ok := v.(ir.String); ok {
			t, err := ir.ParseTime(string(str))
			if err != nil {
				return nil, recordErr(f.Name, "%v", err)
			}
			return ir.NewTime(t), nil
		}
	case KindInt:
		switch n := v.(type) {
		case ir.Int:
			return n, nil
		case ir.Float:
			if float64(n) == math.Trunc(float64(n)) && math.Abs(float64(n)) < 1<<53 {
				return ir.Int(int64(n)), nil
			}
		}
	case KindFloat:
		switch n := v.(type) {
		case ir.Float:
			return n, nil
		case ir.Int:
			return ir.Float(float64(n)), nil
		}
	default:
		return v, nil
	}
	return nil, recordErr(f.Name, "expected %s, got %s %s", f.Kind, v.Kind(), ir.Text(v))
}

// Validate checks that r fits the schema: no undeclared fields, every
// required field present and non-null, every value of the declared kind,
// and (for CUE schemas) every constraint satisfied.
func (s *Schema) Validate(r ir.Record) error {
	for _, name := range r.SortedKeys() {
		if !s.HasField(name) {
			return recordErr(name, "not declared in collection %s", s.Name)
		}
	}
	for _, f := range s.Fields {
		v := r.Get(f.Name)
		if ir.IsNull(v) {
			if !f.Optional {
				return recordErr(f.Name, "required")
			}
			continue
		}
		if !kindMatches(f.Kind, v.Kind()) {
			return recordErr(f.Name, "expected %s, got %s", f.Kind, v.Kind())
		}
	}
	if s.value.Exists() {
		return s.checkConstraints(r)
	}
	return nil
}

func kindMatches(k Kind, vk ir.Kind) bool {
	switch k {
	case KindString:
		return vk == ir.KindString
	case KindInt:
		return vk == ir.KindInt
	case KindFloat:
		return vk.Numeric()
	case KindBool:
		return vk == ir.KindBool
	case KindDate:
		return vk == ir.KindTime
	}
	return false
}
