package query

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
)

// File is the YAML form of a Spec.
//
//	filters:
//	  - {field: status, op: in, values: [todo, in_progress]}
//	  - {field: due_date, op: range, min: 2024-03-01}
//	search: {query: dash, fields: [name], mode: fuzzy, threshold: 0.6}
//	sort: [status, -due_date]
//	group_by: status
//	page: {offset: 0, limit: 20}
//	select: [id, title]
type File struct {
	Filters []FilterFile `yaml:"filters,omitempty"`
	Search  *SearchFile  `yaml:"search,omitempty"`
	Sort    []string     `yaml:"sort,omitempty"`
	GroupBy string       `yaml:"group_by,omitempty"`
	Page    *PageFile    `yaml:"page,omitempty"`
	Select  []string     `yaml:"select,omitempty"`
}

// FilterFile is one YAML filter. Op is one of the ParseFilter operators
// plus "range" (min and/or max) and "and" (nested all).
type FilterFile struct {
	Field  string       `yaml:"field,omitempty"`
	Op     string       `yaml:"op"`
	Value  any          `yaml:"value,omitempty"`
	Values []any        `yaml:"values,omitempty"`
	Min    any          `yaml:"min,omitempty"`
	Max    any          `yaml:"max,omitempty"`
	All    []FilterFile `yaml:"all,omitempty"`
}

// SearchFile is the YAML search stage.
type SearchFile struct {
	Query     string   `yaml:"query"`
	Fields    []string `yaml:"fields,omitempty"`
	Mode      string   `yaml:"mode,omitempty"`
	Threshold *float64 `yaml:"threshold,omitempty"`
}

// PageFile is the YAML page window.
type PageFile struct {
	Offset int `yaml:"offset"`
	Limit  int `yaml:"limit"`
}

// LoadFile reads and parses a YAML query file.
func LoadFile(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read query file: %w", err)
	}
	spec, err := ParseFile(data)
	if err != nil {
		return Spec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// ParseFile parses YAML query data.
func ParseFile(data []byte) (Spec, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Spec{}, fmt.Errorf("failed to parse query YAML: %w", err)
	}
	return f.Spec()
}

// Spec converts the file form into a Spec. Field names are not checked
// here; Run validates them against the collection.
func (f File) Spec() (Spec, error) {
	var spec Spec

	for i, ff := range f.Filters {
		p, err := ff.predicate()
		if err != nil {
			return Spec{}, fmt.Errorf("filters[%d]: %w", i, err)
		}
		spec.Filters = append(spec.Filters, p)
	}

	if f.Search != nil {
		mode, err := ParseMode(f.Search.Mode)
		if err != nil {
			return Spec{}, err
		}
		spec.Search = &Search{
			Query:     f.Search.Query,
			Fields:    f.Search.Fields,
			Mode:      mode,
			Threshold: f.Search.Threshold,
		}
	}

	for _, s := range f.Sort {
		keys, err := ParseSort(s)
		if err != nil {
			return Spec{}, err
		}
		spec.Sort = append(spec.Sort, keys...)
	}

	spec.GroupBy = f.GroupBy
	spec.Select = f.Select
	if f.Page != nil {
		spec.Page = &Page{Offset: f.Page.Offset, Limit: f.Page.Limit}
	}
	return spec, nil
}

func (ff FilterFile) predicate() (Predicate, error) {
	switch ff.Op {
	case "and":
		and := And{}
		for i, sub := range ff.All {
			p, err := sub.predicate()
			if err != nil {
				return nil, fmt.Errorf("all[%d]: %w", i, err)
			}
			and.Predicates = append(and.Predicates, p)
		}
		return and, nil
	case OpNull:
		return IsNull{Field: ff.Field}, nil
	case OpNotNull:
		return NotNull{Field: ff.Field}, nil
	case OpEq, OpNe:
		v, err := ir.FromAny(ff.Value)
		if err != nil {
			return nil, collection.NewInvalidArgument("%s filter on %q: %v", ff.Op, ff.Field, err)
		}
		if ff.Op == OpEq {
			return Equals{Field: ff.Field, Value: v}, nil
		}
		return NotEquals{Field: ff.Field, Value: v}, nil
	case OpIn:
		in := In{Field: ff.Field}
		for _, raw := range ff.Values {
			v, err := ir.FromAny(raw)
			if err != nil {
				return nil, collection.NewInvalidArgument("in filter on %q: %v", ff.Field, err)
			}
			in.Values = append(in.Values, v)
		}
		return in, nil
	case "range", OpGte, OpLte:
		lo, err := ir.FromAny(ff.Min)
		if err != nil {
			return nil, collection.NewInvalidArgument("range filter on %q: %v", ff.Field, err)
		}
		hi, err := ir.FromAny(ff.Max)
		if err != nil {
			return nil, collection.NewInvalidArgument("range filter on %q: %v", ff.Field, err)
		}
		// gte/lte accept the bound in value as well.
		if ff.Value != nil {
			v, err := ir.FromAny(ff.Value)
			if err != nil {
				return nil, collection.NewInvalidArgument("range filter on %q: %v", ff.Field, err)
			}
			switch ff.Op {
			case OpGte:
				lo = v
			case OpLte:
				hi = v
			}
		}
		return Range{Field: ff.Field, Min: lo, Max: hi}, nil
	case OpContains:
		s, ok := ff.Value.(string)
		if !ok {
			return nil, collection.NewInvalidArgument("contains filter on %q needs a string value", ff.Field)
		}
		return Contains{Field: ff.Field, Substring: s}, nil
	default:
		return nil, collection.NewInvalidArgument("unknown filter operator %q", ff.Op)
	}
}
