package query

import (
	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
)

// Predicate represents a filter condition over one record.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Equals matches records whose field equals Value.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// NotEquals matches records whose field is non-null and differs from Value.
type NotEquals struct {
	Field string
	Value ir.Value
}

func (NotEquals) predicateNode() {}

// In matches records whose field equals any of Values (dropdown filters).
type In struct {
	Field  string
	Values []ir.Value
}

func (In) predicateNode() {}

// Range matches records whose field lies within [Min, Max]. A nil or Null
// bound is open. Values of a kind not comparable with the bounds never match.
type Range struct {
	Field string
	Min   ir.Value
	Max   ir.Value
}

func (Range) predicateNode() {}

// Contains matches records whose field contains Substring, ignoring case.
type Contains struct {
	Field     string
	Substring string
}

func (Contains) predicateNode() {}

// IsNull matches records whose field is null or absent.
type IsNull struct {
	Field string
}

func (IsNull) predicateNode() {}

// NotNull matches records whose field is present and non-null.
type NotNull struct {
	Field string
}

func (NotNull) predicateNode() {}

// And matches when every predicate matches (empty = always true).
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Not inverts a predicate. Records with a null field DO match
// Not{Equals{...}}; use NotEquals to exclude them.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Func is an arbitrary pure predicate over R. It cannot be serialized or
// pushed down to storage; Name is used in error messages only.
type Func[R any] struct {
	Name string
	Fn   func(R) bool
}

func (Func[R]) predicateNode() {}
func (Func[R]) funcPredicate() {}

// funcPredicate is implemented by every Func instantiation.
type funcPredicate interface {
	funcPredicate()
}

// Mode selects the search algorithm.
type Mode string

const (
	// ModeExact is case-insensitive substring search (the default).
	ModeExact Mode = "exact"

	// ModeFuzzy is edit-distance similarity search ranked by score.
	ModeFuzzy Mode = "fuzzy"

	// ModeSubsequence matches query characters in order, command-menu style.
	ModeSubsequence Mode = "subsequence"
)

// ParseMode parses a search mode name; "" means ModeExact.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeExact:
		return ModeExact, nil
	case ModeFuzzy, ModeSubsequence:
		return Mode(s), nil
	default:
		return "", collection.NewInvalidArgument("invalid search mode %q: must be exact, fuzzy or subsequence", s)
	}
}

// Search is the free-text search stage.
type Search struct {
	Query  string
	Fields []string
	Mode   Mode

	// Threshold is the minimum fuzzy score (nil = collection.DefaultThreshold).
	// Ignored by the other modes.
	Threshold *float64
}

// threshold returns the effective fuzzy threshold.
func (s *Search) threshold() float64 {
	if s.Threshold == nil {
		return collection.DefaultThreshold
	}
	return *s.Threshold
}

// Page selects a window of the sorted result. Limit 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

// Spec is a declarative query over a record collection.
type Spec struct {
	// Filters are combined with logical AND.
	Filters []Predicate

	// Search is optional free-text search over the filtered records.
	Search *Search

	// Sort is applied after search; empty keeps the current order.
	Sort []collection.SortKey

	// GroupBy, when set, groups the final page by this field.
	GroupBy string

	// Page is optional pagination applied after sorting.
	Page *Page

	// Select lists the fields callers should emit (projection). The
	// pipeline validates the names but does not rewrite records.
	Select []string
}
