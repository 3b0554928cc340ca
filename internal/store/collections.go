package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/recq/internal/schema"
)

// ErrCollectionNotFound is returned for operations on an unknown collection.
var ErrCollectionNotFound = errors.New("collection not found")

// CollectionInfo summarizes a stored collection.
type CollectionInfo struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// PutCollection creates a collection or replaces its schema. The source
// must compile and declare the collection. Existing records are not
// re-validated against a replaced schema.
func (s *Store) PutCollection(ctx context.Context, name, schemaSource string) error {
	if _, err := schema.CompileCollection(schemaSource, name); err != nil {
		return fmt.Errorf("put collection %s: %w", name, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, schema_source, created_seq)
		VALUES (?, ?, (SELECT COALESCE(MAX(created_seq), 0) + 1 FROM collections))
		ON CONFLICT(name) DO UPDATE SET schema_source = excluded.schema_source
	`, name, schemaSource)
	if err != nil {
		return fmt.Errorf("put collection %s: %w", name, err)
	}
	return nil
}

// Collection returns the compiled schema of a stored collection.
// Returns ErrCollectionNotFound if it does not exist.
func (s *Store) Collection(ctx context.Context, name string) (*schema.Schema, error) {
	var src string
	err := s.db.QueryRowContext(ctx, `
		SELECT schema_source FROM collections WHERE name = ?
	`, name).Scan(&src)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", name, err)
	}
	return schema.CompileCollection(src, name)
}

// Collections lists stored collections in creation order with record counts.
// Returns an empty slice (not nil) when there are none.
func (s *Store) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, COUNT(r.seq)
		FROM collections c
		LEFT JOIN records r ON r.collection = c.name
		GROUP BY c.name
		ORDER BY c.created_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	infos := []CollectionInfo{}
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.Records); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return infos, nil
}
