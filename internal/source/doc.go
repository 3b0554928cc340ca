// Package source defines where queries read records from.
//
// A Source is either the SQLite snapshot store or a MemorySource built from
// a dataset file. Both validate imports against the collection schema and
// skip records whose content is already present.
package source
