package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/schema"
)

// ImportResult reports the outcome of an Import batch.
type ImportResult struct {
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// Import validates records against the collection schema and inserts them
// in one transaction, in order.
//
// Uses ON CONFLICT(collection, hash) DO NOTHING for idempotency: a record
// whose canonical content is already stored (or appears earlier in the
// same batch) is counted as skipped. If any record fails validation,
// nothing is written.
func (s *Store) Import(ctx context.Context, name string, records []ir.Record) (ImportResult, error) {
	sch, err := s.Collection(ctx, name)
	if err != nil {
		return ImportResult{}, err
	}
	for i, r := range records {
		if err := sch.Validate(r); err != nil {
			var re *schema.RecordError
			if errors.As(err, &re) {
				re.Index = i
			}
			return ImportResult{}, fmt.Errorf("import %s: %w", name, err)
		}
	}

	batch, err := uuid.NewV7()
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: batch id: %w", name, err)
	}
	res := ImportResult{BatchID: batch.String()}

	// Use a transaction so a batch is all-or-nothing
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: begin tx: %w", name, err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM records WHERE collection = ?
	`, name).Scan(&seq); err != nil {
		return ImportResult{}, fmt.Errorf("import %s: max seq: %w", name, err)
	}

	// The batch row must exist before records reference it
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO imports (batch_id, collection, seq, inserted, skipped)
		VALUES (?, ?, ?, 0, 0)
	`, res.BatchID, name, seq+1); err != nil {
		return ImportResult{}, fmt.Errorf("import %s: write batch: %w", name, err)
	}

	for _, r := range records {
		doc, err := marshalDoc(r)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: %w", name, err)
		}
		hash, err := ir.RecordHash(name, r)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: %w", name, err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO records (collection, seq, hash, batch_id, doc)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(collection, hash) DO NOTHING
		`, name, seq+1, hash, res.BatchID, doc)
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: insert: %w", name, err)
		}

		// Check if a row was actually inserted
		n, err := result.RowsAffected()
		if err != nil {
			return ImportResult{}, fmt.Errorf("import %s: rows affected: %w", name, err)
		}
		if n > 0 {
			seq++
			res.Inserted++
		} else {
			res.Skipped++
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE imports SET inserted = ?, skipped = ? WHERE batch_id = ?
	`, res.Inserted, res.Skipped, res.BatchID); err != nil {
		return ImportResult{}, fmt.Errorf("import %s: update batch: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("import %s: commit: %w", name, err)
	}
	return res, nil
}
