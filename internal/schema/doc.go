// Package schema describes the fields of a record collection and decodes raw
// data into typed ir.Records.
//
// Schemas are declared in CUE under a top-level "collection" struct:
//
//	collection: tasks: {
//		id:        string
//		title:     string
//		status:    "todo" | "in_progress" | "done"
//		due?:      string @kind(date)
//		progress:  int & >=0 & <=100
//		estimate?: number
//	}
//
// Field kinds come from the CUE type: string, int, float (float or number),
// bool, and date (a string field tagged @kind(date), stored as ir.Time).
// Fields marked optional ("?") or admitting null may be absent; every other
// field is required and non-null.
//
// CUE constraints (enums, bounds, patterns) are enforced on Decode and
// Validate by unifying the record with the schema value.
//
// A *Schema is a collection.Accessor[ir.Record], so the whole query pipeline
// runs on dynamic records with field names checked against the schema.
package schema
