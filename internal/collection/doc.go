// Package collection provides the generic record-list operations behind
// every list screen: substring and fuzzy search, grouping, multi-key
// sorting, chunking and de-duplication.
//
// Every function is generic over a record type R and reads fields through
// an Accessor[R]. Field names are validated against the accessor at call
// time: an unknown name fails with a FIELD_NOT_FOUND *Error rather than
// being ignored. Absent and null field values never cause errors; they are
// simply non-matching (search) or ordered last (sort).
//
// Functions never mutate their input slice or its records. Results that
// pass the input through unchanged (empty search query) return the input
// slice itself; all other results are freshly allocated.
//
// # Null handling
//
//   - FilterByQuery, FuzzySearch, Subsequence: a null field does not match,
//     other fields of the same record still can
//   - SortBy: nulls sort after all non-null values in both directions
//   - GroupBy: nulls group under NullGroupKey ("null")
//   - UniqueBy: all nulls share one key
package collection
