package ir

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindTime:   "time",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Numeric reports whether k is KindInt or KindFloat.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Value is a sealed interface representing a scalar field value.
// Only Null, String, Int, Float, Bool, and Time implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
	Kind() Kind
}

// Null represents an explicit null or an absent field.
type Null struct{}

func (Null) irValue()   {}
func (Null) Kind() Kind { return KindNull }

// String represents a string value.
type String string

func (String) irValue()   {}
func (String) Kind() Kind { return KindString }

// Int represents an integer value.
type Int int64

func (Int) irValue()   {}
func (Int) Kind() Kind { return KindInt }

// Float represents a floating point value.
type Float float64

func (Float) irValue()   {}
func (Float) Kind() Kind { return KindFloat }

// Bool represents a boolean value.
type Bool bool

func (Bool) irValue()   {}
func (Bool) Kind() Kind { return KindBool }

// Time represents a point in time (dates are midnight UTC).
type Time time.Time

func (Time) irValue()   {}
func (Time) Kind() Kind { return KindTime }

// Time returns the underlying time.Time.
func (t Time) Time() time.Time { return time.Time(t) }

// NewTime creates a Time value.
func NewTime(t time.Time) Time {
	return Time(t)
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Text returns the string form of v used for search, grouping and display.
// Null renders as "null".
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Time:
		return val.Time().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// Compare orders two non-null values by natural ordering: numeric for Int
// and Float (cross-comparable), lexicographic for String, chronological for
// Time, false before true for Bool. Values of unrelated kinds order by kind
// rank (bool, number, string, time, null) so the result is always total.
func Compare(a, b Value) int {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return cmp.Compare(x, y)
		case Float:
			return cmp.Compare(float64(x), float64(y))
		}
	case Float:
		switch y := b.(type) {
		case Int:
			return cmp.Compare(float64(x), float64(y))
		case Float:
			return cmp.Compare(x, y)
		}
	case String:
		if y, ok := b.(String); ok {
			return strings.Compare(string(x), string(y))
		}
	case Bool:
		if y, ok := b.(Bool); ok {
			return compareBool(bool(x), bool(y))
		}
	case Time:
		if y, ok := b.(Time); ok {
			return x.Time().Compare(y.Time())
		}
	}
	return cmp.Compare(rank(a), rank(b))
}

// Equal reports whether two values are equal under Compare.
// Null is never equal to anything, including another Null.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return false
	}
	if rank(a) != rank(b) {
		return false
	}
	return Compare(a, b) == 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// rank orders kinds for cross-kind comparison. Int and Float share a rank.
func rank(v Value) int {
	if v == nil {
		return 5
	}
	switch v.Kind() {
	case KindBool:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindString:
		return 3
	case KindTime:
		return 4
	default:
		return 5
	}
}

// Coerce converts v towards kind k. Strings are parsed into the target kind;
// Int and Float are interchangeable. Returns false when no conversion applies.
func Coerce(v Value, k Kind) (Value, bool) {
	if IsNull(v) {
		return Null{}, k == KindNull
	}
	if v.Kind() == k || (v.Kind().Numeric() && k.Numeric()) {
		return v, true
	}
	s, ok := v.(String)
	if !ok {
		return v, false
	}
	str := strings.TrimSpace(string(s))
	switch k {
	case KindInt:
		if n, err := strconv.ParseInt(str, 10, 64); err == nil {
			return Int(n), true
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return Float(f), true
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return Float(f), true
		}
	case KindBool:
		if b, err := strconv.ParseBool(str); err == nil {
			return Bool(b), true
		}
	case KindTime:
		if t, err := ParseTime(str); err == nil {
			return Time(t), true
		}
	}
	return v, false
}

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseTime parses an RFC 3339 timestamp or a bare date (midnight UTC).
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", s)
}

// FromAny converts a decoded Go value (from encoding/json, yaml.v3 or a
// literal) into a Value. Nested arrays and objects are rejected: records
// carry scalars only.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint(val)
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case json.Number:
		return fromNumber(val)
	case time.Time:
		return Time(val), nil
	case *time.Time:
		if val == nil {
			return Null{}, nil
		}
		return Time(*val), nil
	case []any, map[string]any:
		return nil, fmt.Errorf("nested values are not supported: %T", v)
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer out of int64 range: %d", u)
	}
	return Int(int64(u)), nil
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number: %v", f)
	}
	return Float(f), nil
}

// fromNumber keeps integral JSON numbers as Int and everything else as Float.
func fromNumber(n json.Number) (Value, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return fromFloat(f)
}

// MarshalValue marshals a Value to JSON bytes. Time renders as an
// RFC 3339 string.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Float:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("non-finite number: %v", float64(val))
		}
		return json.Marshal(float64(val))
	case Bool:
		return []byte(strconv.FormatBool(bool(val))), nil
	case Time:
		return json.Marshal(val.Time().Format(time.RFC3339Nano))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
