// Package store provides SQLite-backed snapshot storage for record
// collections.
//
// A collection is a name, the CUE source of its schema, and an ordered set
// of records:
//   - collections: name → schema source
//   - imports: one row per Import batch (UUIDv7 batch id)
//   - records: canonical JSON documents keyed by (collection, seq)
//
// # Critical Patterns
//
// Content-addressed idempotency:
//   - UNIQUE(collection, hash) where hash = ir.RecordHash
//   - Re-importing the same record is a no-op, reported as skipped
//
// Deterministic order:
//   - seq is assigned per collection in import order
//   - every read uses ORDER BY seq ASC
//
// Exact filtering over a pushed-down superset:
//   - Select compiles what it can to json_extract conditions
//     (internal/querysql) and re-checks every row in memory
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
