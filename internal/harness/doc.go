// Package harness runs query scenarios: a dataset, an optional CUE
// schema, a query, and assertions on the result.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: dashboard_search
//	description: "Exact search over titles, sorted"
//	schema: ../schemas/tasks.cue   # optional; inferred from the data if absent
//	collection: tasks
//	dataset: ../data/tasks.yaml    # or inline `records:`
//	query:
//	  search: {query: dashboard, fields: [title]}
//	  sort: [title]
//	assertions:
//	  - type: ids
//	    ids: [t3, t1, t7]
//	  - type: total
//	    count: 3
//
// Paths are relative to the scenario file.
//
// # Assertion Types
//
//   - ids: result ids in exact order
//   - ids_unordered: result ids as a set
//   - total: number of matches before pagination
//   - has_more: whether records remain after the page
//   - groups: group keys in order, each with its member ids
//   - error: the query fails with the given code (and field, if set)
//
// # Store Cross-Check
//
// When a scenario has a schema, the query also runs against an in-memory
// SQLite store holding the same records. Any difference between the store
// and the in-memory pipeline fails the scenario, so every scenario checks
// that SQL pushdown never changes a result.
//
// # Golden Files
//
// RunWithGolden snapshots results under testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
