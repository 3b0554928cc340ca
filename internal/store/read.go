package store

import (
	"context"
	"fmt"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/query"
	"github.com/roach88/recq/internal/querysql"
	"github.com/roach88/recq/internal/schema"
)

// Load returns every record of a collection in import order.
// Returns an empty slice (not nil) for an empty collection.
func (s *Store) Load(ctx context.Context, name string) ([]ir.Record, error) {
	records, _, err := s.Select(ctx, name, nil)
	return records, err
}

// Select returns the records of a collection matching every predicate, in
// import order, together with the collection schema.
//
// Pushable predicates are evaluated by SQLite; every returned row is then
// re-checked in memory, so the result is exact for any predicate.
func (s *Store) Select(ctx context.Context, name string, preds []query.Predicate) ([]ir.Record, *schema.Schema, error) {
	sch, err := s.Collection(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if err := query.ValidatePredicates(preds, sch); err != nil {
		return nil, nil, err
	}

	st, err := querysql.NewCompiler(sch).Compile(name, preds)
	if err != nil {
		return nil, nil, fmt.Errorf("select %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, st.SQL, st.Params...)
	if err != nil {
		return nil, nil, fmt.Errorf("select %s: %w", name, err)
	}
	defer rows.Close()

	records := []ir.Record{}
	for rows.Next() {
		var (
			seq int64
			doc string
		)
		if err := rows.Scan(&seq, &doc); err != nil {
			return nil, nil, fmt.Errorf("scan record: %w", err)
		}
		r, err := unmarshalDoc(doc, sch)
		if err != nil {
			return nil, nil, fmt.Errorf("record %s/%d: %w", name, seq, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate records: %w", err)
	}

	if len(preds) > 0 {
		records, err = query.Filter(records, preds, sch)
		if err != nil {
			return nil, nil, err
		}
	}
	return records, sch, nil
}

// Run executes a full query against a stored collection. Filters are
// pushed down through Select; the pipeline then runs in memory.
func (s *Store) Run(ctx context.Context, name string, spec query.Spec) (query.Result[ir.Record], *schema.Schema, error) {
	records, sch, err := s.Select(ctx, name, spec.Filters)
	if err != nil {
		return query.Result[ir.Record]{}, nil, err
	}
	res, err := query.Run(records, spec, sch)
	if err != nil {
		return query.Result[ir.Record]{}, nil, err
	}
	return res, sch, nil
}
