package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/dataset"
	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/query"
	"github.com/roach88/recq/internal/schema"
	"github.com/roach88/recq/internal/store"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the dataset and compile (or infer) the schema
//  2. Decode the records against the schema
//  3. Run the query through the in-memory pipeline
//  4. With a schema file, run it again against a fresh in-memory store
//  5. Evaluate assertions against the snapshot
//
// An error is returned only when the scenario cannot be set up; query
// failures are part of the snapshot.
func Run(scenario *Scenario) (*Result, error) {
	rows, err := loadRows(scenario)
	if err != nil {
		return nil, err
	}

	sch, src, err := loadSchema(scenario, rows)
	if err != nil {
		return nil, err
	}

	records, err := sch.DecodeAll(rows)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	result := NewResult()

	var res query.Result[ir.Record]
	spec, specErr := scenario.Query.Spec()
	err = specErr
	if err == nil {
		res, err = query.Run(records, spec, sch)
	}
	result.Snapshot = snapshot(scenario.Name, res, err)

	if src != "" && specErr == nil {
		stored, err := runStored(scenario.Collection, src, records, spec)
		if err != nil {
			return nil, err
		}
		if diff := compareSnapshots(result.Snapshot, snapshot(scenario.Name, stored.res, stored.err)); diff != "" {
			result.AddError("store result differs from in-memory result: " + diff)
		}
	}

	for _, msg := range EvaluateAssertions(result.Snapshot, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadRows(s *Scenario) ([]map[string]any, error) {
	if s.Dataset == "" {
		return s.Records, nil
	}
	rows, err := dataset.Load(s.Dataset)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return rows, nil
}

// loadSchema compiles the scenario's CUE file, returning its source too,
// or infers a schema when there is none.
func loadSchema(s *Scenario, rows []map[string]any) (*schema.Schema, string, error) {
	if s.Schema != "" {
		data, err := os.ReadFile(s.Schema)
		if err != nil {
			return nil, "", fmt.Errorf("read schema: %w", err)
		}
		sch, err := schema.CompileCollection(string(data), s.Collection)
		if err != nil {
			return nil, "", fmt.Errorf("compile schema: %w", err)
		}
		return sch, string(data), nil
	}

	records := make([]ir.Record, len(rows))
	for i, row := range rows {
		r, err := ir.NewRecord(row)
		if err != nil {
			return nil, "", fmt.Errorf("record %d: %w", i, err)
		}
		records[i] = r
	}
	sch, err := schema.Infer(s.Collection, records)
	if err != nil {
		return nil, "", fmt.Errorf("infer schema: %w", err)
	}
	return sch, "", nil
}

type storedRun struct {
	res query.Result[ir.Record]
	err error
}

// runStored imports records into a fresh in-memory store and runs spec
// there. Query errors are returned inside storedRun.
func runStored(collectionName, src string, records []ir.Record, spec query.Spec) (storedRun, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return storedRun{}, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.PutCollection(ctx, collectionName, src); err != nil {
		return storedRun{}, err
	}
	if _, err := st.Import(ctx, collectionName, records); err != nil {
		return storedRun{}, fmt.Errorf("import: %w", err)
	}

	res, _, err := st.Run(ctx, collectionName, spec)
	return storedRun{res: res, err: err}, nil
}

func snapshot(name string, res query.Result[ir.Record], err error) Snapshot {
	snap := Snapshot{Scenario: name, IDs: []string{}}
	if err != nil {
		snap.Error = errorSnapshot(err)
		return snap
	}
	snap.Total = res.Total
	snap.HasMore = res.HasMore
	snap.IDs = ids(res.Items)
	for _, g := range res.Groups {
		snap.Groups = append(snap.Groups, GroupSnapshot{Key: g.Key, IDs: ids(g.Items)})
	}
	return snap
}

func errorSnapshot(err error) *ErrorSnapshot {
	var ce *collection.Error
	if errors.As(err, &ce) {
		return &ErrorSnapshot{Code: string(ce.Code), Field: ce.Field, Message: ce.Message}
	}
	return &ErrorSnapshot{Code: "ERROR", Message: err.Error()}
}

func ids(records []ir.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

// compareSnapshots returns a description of the first difference, or "".
func compareSnapshots(mem, stored Snapshot) string {
	switch {
	case (mem.Error == nil) != (stored.Error == nil):
		return fmt.Sprintf("error %v vs %v", mem.Error, stored.Error)
	case mem.Error != nil && mem.Error.Code != stored.Error.Code:
		return fmt.Sprintf("error code %s vs %s", mem.Error.Code, stored.Error.Code)
	case mem.Total != stored.Total:
		return fmt.Sprintf("total %d vs %d", mem.Total, stored.Total)
	case !slices.Equal(mem.IDs, stored.IDs):
		return fmt.Sprintf("ids %v vs %v", mem.IDs, stored.IDs)
	case !slices.EqualFunc(mem.Groups, stored.Groups, func(a, b GroupSnapshot) bool {
		return a.Key == b.Key && slices.Equal(a.IDs, b.IDs)
	}):
		return fmt.Sprintf("groups %v vs %v", mem.Groups, stored.Groups)
	}
	return ""
}
