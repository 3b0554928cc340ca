package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
)

// Filter operators accepted by ParseFilter.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpIn       = "in"
	OpGte      = "gte"
	OpLte      = "lte"
	OpContains = "contains"
	OpNull     = "null"
	OpNotNull  = "notnull"
)

// inSeparator separates the values of an "in" filter.
const inSeparator = "|"

// ParseSort parses a comma-separated sort expression.
//
//	"status,-due_date"          status asc, due_date desc
//	"priority:desc,title:asc"   explicit directions
func ParseSort(s string) ([]collection.SortKey, error) {
	var keys []collection.SortKey
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, err := parseSortKey(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func parseSortKey(part string) (collection.SortKey, error) {
	if field, ok := strings.CutPrefix(part, "-"); ok {
		return collection.SortKey{Field: field, Direction: collection.Desc}, nil
	}
	part = strings.TrimPrefix(part, "+")
	field, dir, _ := strings.Cut(part, ":")
	d, err := collection.ParseDirection(dir)
	if err != nil {
		return collection.SortKey{}, err
	}
	if field == "" {
		return collection.SortKey{}, collection.NewInvalidArgument("sort key %q has no field", part)
	}
	return collection.SortKey{Field: field, Direction: d}, nil
}

// ParseFilter parses a "field:op:value" filter expression. Values stay
// strings and are coerced to the field's kind at evaluation time.
//
//	status:eq:active
//	status:in:todo|in_progress
//	due_date:gte:2024-03-01
//	owner:null
func ParseFilter(s string) (Predicate, error) {
	field, rest, ok := strings.Cut(s, ":")
	if !ok || field == "" {
		return nil, collection.NewInvalidArgument("filter %q must be field:op[:value]", s)
	}
	op, value, hasValue := strings.Cut(rest, ":")

	switch op {
	case OpNull, OpNotNull:
		if hasValue {
			return nil, collection.NewInvalidArgument("filter %q: %s takes no value", s, op)
		}
		if op == OpNull {
			return IsNull{Field: field}, nil
		}
		return NotNull{Field: field}, nil
	case OpEq, OpNe, OpIn, OpGte, OpLte, OpContains:
		if !hasValue {
			return nil, collection.NewInvalidArgument("filter %q: %s requires a value", s, op)
		}
	default:
		return nil, collection.NewInvalidArgument("filter %q: unknown operator %q", s, op)
	}

	switch op {
	case OpEq:
		return Equals{Field: field, Value: ir.String(value)}, nil
	case OpNe:
		return NotEquals{Field: field, Value: ir.String(value)}, nil
	case OpIn:
		var values []ir.Value
		for v := range strings.SplitSeq(value, inSeparator) {
			values = append(values, ir.String(v))
		}
		return In{Field: field, Values: values}, nil
	case OpGte:
		return Range{Field: field, Min: ir.String(value)}, nil
	case OpLte:
		return Range{Field: field, Max: ir.String(value)}, nil
	default:
		return Contains{Field: field, Substring: value}, nil
	}
}

// ParseValues builds a Spec from URL query parameters:
//
//	q / search      search query
//	mode            exact | fuzzy | subsequence
//	fields          comma-separated search fields
//	threshold       fuzzy threshold in [0,1]
//	sort / sortBy   sort expression (see ParseSort)
//	order           direction applied to a single bare sort field
//	groupBy         group field
//	filter          repeated filter expressions (see ParseFilter)
//	offset, limit   pagination; page (1-based) may replace offset
//	select          comma-separated projection
func ParseValues(v url.Values) (Spec, error) {
	var spec Spec

	for _, f := range v["filter"] {
		p, err := ParseFilter(f)
		if err != nil {
			return Spec{}, err
		}
		spec.Filters = append(spec.Filters, p)
	}

	q := first(v, "q", "search")
	if q != "" || v.Has("mode") || v.Has("fields") {
		s := &Search{Query: q, Fields: splitList(v.Get("fields"))}
		mode, err := ParseMode(v.Get("mode"))
		if err != nil {
			return Spec{}, err
		}
		s.Mode = mode
		if raw := v.Get("threshold"); raw != "" {
			t, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Spec{}, collection.NewInvalidArgument("invalid threshold %q", raw)
			}
			s.Threshold = &t
		}
		spec.Search = s
	}

	keys, err := ParseSort(first(v, "sort", "sortBy"))
	if err != nil {
		return Spec{}, err
	}
	if order := v.Get("order"); order != "" {
		if len(keys) != 1 {
			return Spec{}, collection.NewInvalidArgument("order requires exactly one sort field")
		}
		d, err := collection.ParseDirection(order)
		if err != nil {
			return Spec{}, err
		}
		keys[0].Direction = d
	}
	spec.Sort = keys

	spec.GroupBy = v.Get("groupBy")
	spec.Select = splitList(v.Get("select"))

	page, err := parsePage(v)
	if err != nil {
		return Spec{}, err
	}
	spec.Page = page

	return spec, nil
}

func parsePage(v url.Values) (*Page, error) {
	if !v.Has("offset") && !v.Has("limit") && !v.Has("page") {
		return nil, nil
	}
	limit, err := intParam(v, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := intParam(v, "offset")
	if err != nil {
		return nil, err
	}
	if v.Has("page") {
		n, err := intParam(v, "page")
		if err != nil {
			return nil, err
		}
		if n < 1 || limit < 1 {
			return nil, collection.NewInvalidArgument("page must be >= 1 and requires limit")
		}
		if n-1 > math.MaxInt/limit {
			return nil, collection.NewInvalidArgument("page %d with limit %d is out of range", n, limit)
		}
		offset = (n - 1) * limit
	}
	return &Page{Offset: offset, Limit: limit}, nil
}

func intParam(v url.Values, name string) (int, error) {
	raw := v.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, collection.NewInvalidArgument("invalid %s %q", name, raw)
	}
	return n, nil
}

// first returns the first non-empty parameter among names.
func first(v url.Values, names ...string) string {
	for _, n := range names {
		if s := v.Get(n); s != "" {
			return s
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
