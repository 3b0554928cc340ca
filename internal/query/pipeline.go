package query

import (
	"github.com/roach88/recq/internal/collection"
)

// Result is the outcome of running a Spec.
type Result[R any] struct {
	// Items is the final page in sorted order.
	Items []R

	// Groups is set when the Spec has GroupBy; nil otherwise.
	Groups []collection.Group[R]

	// Total is the number of records after filtering and search, before
	// pagination.
	Total int

	// HasMore reports whether records exist beyond the page.
	HasMore bool
}

// Grouped reports whether the result carries groups.
func (r Result[R]) Grouped() bool {
	return r.Groups != nil
}

// Counts returns the number of items per group key (faceted counts).
func (r Result[R]) Counts() map[string]int {
	counts := make(map[string]int, len(r.Groups))
	for _, g := range r.Groups {
		counts[g.Key] = len(g.Items)
	}
	return counts
}

// Run validates spec and applies it to records:
// filters → search → sort → page → group.
//
// The input slice is never modified. On error the zero Result is returned
// and no stage has run.
func Run[R any](records []R, spec Spec, acc collection.Accessor[R]) (Result[R], error) {
	if err := Validate(spec, acc); err != nil {
		return Result[R]{}, err
	}

	items := filter(records, spec.Filters, acc)

	items, err := search(items, spec.Search, acc)
	if err != nil {
		return Result[R]{}, err
	}

	if len(spec.Sort) > 0 {
		items, err = collection.SortBy(items, spec.Sort, acc)
		if err != nil {
			return Result[R]{}, err
		}
	}

	res := Result[R]{Total: len(items)}
	res.Items, res.HasMore = paginate(items, spec.Page)

	if spec.GroupBy != "" {
		res.Groups, err = collection.GroupBy(res.Items, spec.GroupBy, acc)
		if err != nil {
			return Result[R]{}, err
		}
	}

	return res, nil
}

// search applies the search stage. Fuzzy mode orders by descending score;
// the other modes keep input order.
func search[R any](records []R, s *Search, acc collection.Accessor[R]) ([]R, error) {
	if s == nil {
		return records, nil
	}
	mode, err := ParseMode(string(s.Mode))
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeFuzzy:
		return collection.FuzzySearch(records, s.Query, s.Fields, s.threshold(), acc)
	case ModeSubsequence:
		return collection.Subsequence(records, s.Query, s.Fields, acc)
	default:
		return collection.FilterByQuery(records, s.Query, s.Fields, acc)
	}
}

// paginate copies out the page window and reports whether records remain
// after it. The result is never nil.
func paginate[R any](records []R, p *Page) ([]R, bool) {
	start, end := 0, len(records)
	if p != nil {
		start = min(p.Offset, len(records))
		if p.Limit > 0 && p.Limit < len(records)-start {
			end = start + p.Limit
		}
	}
	page := make([]R, 0, end-start)
	return append(page, records[start:end]...), end < len(records)
}
