package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/query"
	"github.com/roach88/recq/internal/schema"
	"github.com/roach88/recq/internal/store"
)

// Source supplies queryable collections to the HTTP server and the CLI.
// *store.Store implements it.
type Source interface {
	Collections(ctx context.Context) ([]store.CollectionInfo, error)
	Collection(ctx context.Context, name string) (*schema.Schema, error)
	Run(ctx context.Context, name string, spec query.Spec) (query.Result[ir.Record], *schema.Schema, error)
	Import(ctx context.Context, name string, records []ir.Record) (store.ImportResult, error)
}

var _ Source = (*store.Store)(nil)

// MemorySource serves collections held in memory. Safe for concurrent use.
type MemorySource struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*memoryCollection
}

type memoryCollection struct {
	schema  *schema.Schema
	records []ir.Record
	hashes  map[string]struct{}
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{entries: make(map[string]*memoryCollection)}
}

// Add registers a collection under sch.Name and imports records into it.
// Adding an existing name replaces the schema and keeps its records.
func (m *MemorySource) Add(sch *schema.Schema, records []ir.Record) error {
	m.mu.Lock()
	e, ok := m.entries[sch.Name]
	if !ok {
		e = &memoryCollection{hashes: make(map[string]struct{})}
		m.entries[sch.Name] = e
		m.order = append(m.order, sch.Name)
	}
	e.schema = sch
	m.mu.Unlock()

	_, err := m.Import(context.Background(), sch.Name, records)
	return err
}

func (m *MemorySource) Collections(ctx context.Context) ([]store.CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]store.CollectionInfo, 0, len(m.order))
	for _, name := range m.order {
		infos = append(infos, store.CollectionInfo{Name: name, Records: len(m.entries[name].records)})
	}
	return infos, nil
}

func (m *MemorySource) Collection(ctx context.Context, name string) (*schema.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	return e.schema, nil
}

func (m *MemorySource) Run(ctx context.Context, name string, spec query.Spec) (query.Result[ir.Record], *schema.Schema, error) {
	m.mu.RLock()
	e, ok := m.entries[name]
	var (
		sch     *schema.Schema
		records []ir.Record
	)
	if ok {
		sch, records = e.schema, e.records
	}
	m.mu.RUnlock()

	if !ok {
		return query.Result[ir.Record]{}, nil, fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	res, err := query.Run(records, spec, sch)
	if err != nil {
		return query.Result[ir.Record]{}, nil, err
	}
	return res, sch, nil
}

// Import validates every record first and then appends the ones whose
// content is not already present, matching the store's idempotency.
func (m *MemorySource) Import(ctx context.Context, name string, records []ir.Record) (store.ImportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[name]
	if !ok {
		return store.ImportResult{}, fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}

	hashes := make([]string, len(records))
	for i, r := range records {
		if err := e.schema.Validate(r); err != nil {
			var re *schema.RecordError
			if errors.As(err, &re) {
				re.Index = i
			}
			return store.ImportResult{}, fmt.Errorf("import %s: %w", name, err)
		}
		h, err := ir.RecordHash(name, r)
		if err != nil {
			return store.ImportResult{}, fmt.Errorf("import %s: %w", name, err)
		}
		hashes[i] = h
	}

	var res store.ImportResult
	for i, r := range records {
		if _, dup := e.hashes[hashes[i]]; dup {
			res.Skipped++
			continue
		}
		e.hashes[hashes[i]] = struct{}{}
		// Copy-on-write so readers holding the previous slice are unaffected
		e.records = append(e.records[:len(e.records):len(e.records)], r)
		res.Inserted++
	}
	return res, nil
}

// Project applies a select list to records. An empty list keeps whole
// records; the input is never modified.
func Project(records []ir.Record, fields []string) []ir.Record {
	if len(fields) == 0 {
		return records
	}
	out := make([]ir.Record, len(records))
	for i, r := range records {
		out[i] = r.Pick(fields...)
	}
	return out
}
