package collection

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/similarity"
)

// DefaultThreshold is the minimum similarity FuzzySearch keeps by default.
const DefaultThreshold = 0.5

// Match is a record with its fuzzy similarity score.
type Match[R any] struct {
	Item  R
	Score float64
}

// FuzzyRank scores every record against query and returns those scoring at
// least threshold, best first. A record's score is the maximum
// similarity.Score over its non-null selected fields (0 when all are null).
// Records with equal scores keep their input order.
//
// An empty or whitespace-only query returns every record with score 1 in
// input order. An empty fields list yields no matches.
func FuzzyRank[R any](records []R, query string, fields []string, threshold float64, acc Accessor[R]) ([]Match[R], error) {
	q := strings.TrimSpace(query)
	if q == "" {
		out := make([]Match[R], len(records))
		for i, r := range records {
			out[i] = Match[R]{Item: r, Score: 1}
		}
		return out, nil
	}
	if err := CheckThreshold(threshold); err != nil {
		return nil, err
	}
	if err := CheckFields(acc, fields...); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return []Match[R]{}, nil
	}

	matches := make([]Match[R], 0)
	for _, r := range records {
		best := 0.0
		for _, f := range fields {
			v := acc.Value(r, f)
			if ir.IsNull(v) {
				continue
			}
			best = max(best, similarity.Score(ir.Text(v), q))
		}
		if best >= threshold {
			matches = append(matches, Match[R]{Item: r, Score: best})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match[R]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return matches, nil
}

// FuzzySearch returns records whose best field similarity to query is at
// least threshold, ordered by score descending (stable). An empty or
// whitespace-only query returns records unchanged; an empty fields list
// returns an empty result.
func FuzzySearch[R any](records []R, query string, fields []string, threshold float64, acc Accessor[R]) ([]R, error) {
	if strings.TrimSpace(query) == "" {
		return records, nil
	}
	matches, err := FuzzyRank(records, query, fields, threshold, acc)
	if err != nil {
		return nil, err
	}
	out := make([]R, len(matches))
	for i, m := range matches {
		out[i] = m.Item
	}
	return out, nil
}

// CheckThreshold rejects thresholds outside [0,1] (and NaN).
func CheckThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return NewInvalidArgument("threshold must be within [0,1], got %v", threshold)
	}
	return nil
}

// Subsequence keeps records where the query's characters appear in order
// (not necessarily adjacent) in ANY selected field, ignoring case and
// diacritics: "prjdsh" matches "Project Dashboard". Input order is kept.
// An empty or whitespace-only query returns records unchanged.
func Subsequence[R any](records []R, query string, fields []string, acc Accessor[R]) ([]R, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return records, nil
	}
	if err := CheckFields(acc, fields...); err != nil {
		return nil, err
	}

	out := make([]R, 0)
	for _, r := range records {
		for _, f := range fields {
			v := acc.Value(r, f)
			if ir.IsNull(v) {
				continue
			}
			if fuzzy.MatchNormalizedFold(q, ir.Text(v)) {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}
