// Package query composes filters, search, sort, pagination and grouping
// into one declarative Spec applied to a record collection.
//
// PIPELINE:
//
// The stage order is fixed and mirrors every list screen:
//
//	[records] → filters (AND) → search → sort → page → group → [Result]
//
// Searching before sorting avoids re-sorting discarded records; grouping
// last means group membership reflects the final filtered, sorted page.
//
// ATOMICITY:
//
// Run validates the whole Spec against the record accessor before any
// stage executes. An unknown field anywhere (filter, search, sort, group,
// select) fails with collection FIELD_NOT_FOUND; malformed parameters fail
// with INVALID_ARGUMENT. Either the full pipeline runs or none of it does.
//
// SEALED PREDICATES:
//
// Predicate is a sealed interface using the marker method pattern. Only
// types in this package implement it, which keeps evaluation, validation
// and SQL pushdown (internal/querysql) exhaustive:
//
//	switch p := pred.(type) {
//	case Equals:
//	    // field = value
//	case Range:
//	    // min <= field <= max
//	...
//	}
//
// Predicates never fail on absent or null fields. Field predicates do not
// match them; IsNull selects them, and so does Not wrapped around a field
// predicate (Not{Equals{...}} keeps null records, NotEquals drops them).
//
// LITERALS:
//
// Literal values are ir.Value. A String literal compared against a field of
// another kind is coerced (ir.Coerce) at evaluation time, so filters parsed
// from query strings ("progress:gte:50") work against numeric, boolean and
// time fields without knowing the schema up front.
package query
