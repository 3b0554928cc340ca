package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/recq/internal/dataset"
	"github.com/roach88/recq/internal/domain"
	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/schema"
)

// LoadMode controls how errors are handled during schema loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the collections compiled from a schema directory.
type LoadResult struct {
	Schemas   []*schema.Schema
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSchemas compiles every CUE file under dir. A nil result means the
// directory itself could not be used; otherwise errs holds per-file
// compile errors (only the first in LoadModeFailFast).
func LoadSchemas(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := schema.FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	result := &LoadResult{FileCount: len(files)}
	var errs []error
	for _, path := range files {
		schemas, err := schema.CompileFile(path)
		if err != nil {
			errs = append(errs, convertCompileError(err, path))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		for _, s := range schemas {
			if _, dup := schema.Find(result.Schemas, s.Name); dup {
				errs = append(errs, &LoadError{
					Code:    ErrCodeSchemaInvalid,
					Message: fmt.Sprintf("%s: collection %q declared twice", path, s.Name),
				})
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Schemas = append(result.Schemas, s)
		}
	}
	return result, errs
}

// LoadCollection compiles the schema directory and returns collection name.
func LoadCollection(dir, name string) (*schema.Schema, error) {
	result, errs := LoadSchemas(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	s, ok := schema.Find(result.Schemas, name)
	if !ok {
		return nil, &LoadError{Code: ErrCodeCollectionNotFound, Message: fmt.Sprintf("collection %q not declared in %s", name, dir)}
	}
	return s, nil
}

// BuiltinSchemas returns the workspace collections compiled into the
// binary, used when no schema directory is given.
func BuiltinSchemas() ([]*schema.Schema, error) {
	schemas, err := domain.Schemas()
	if err != nil {
		return nil, convertCompileError(err, "builtin")
	}
	return schemas, nil
}

// BuiltinCollection returns the built-in schema named name, or nil when no
// workspace collection has that name.
func BuiltinCollection(name string) (*schema.Schema, error) {
	schemas, err := BuiltinSchemas()
	if err != nil {
		return nil, err
	}
	s, _ := schema.Find(schemas, name)
	return s, nil
}

// LoadRecords reads a dataset file and decodes it against sch. A nil sch
// infers one named name from the data.
func LoadRecords(path, name string, sch *schema.Schema) ([]ir.Record, *schema.Schema, error) {
	rows, err := dataset.Load(path)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeDatasetInvalid, Message: err.Error()}
	}

	if sch != nil {
		records, err := sch.DecodeAll(rows)
		if err != nil {
			return nil, nil, err
		}
		return records, sch, nil
	}

	records := make([]ir.Record, len(rows))
	for i, raw := range rows {
		r, err := ir.NewRecord(raw)
		if err != nil {
			return nil, nil, &LoadError{Code: ErrCodeDatasetInvalid, Message: fmt.Sprintf("record %d: %v", i, err)}
		}
		records[i] = r
	}
	inferred, err := schema.Infer(name, records)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeDatasetInvalid, Message: err.Error()}
	}
	return records, inferred, nil
}

// convertCompileError converts a schema compile error to a LoadError with
// position info.
func convertCompileError(err error, path string) *LoadError {
	var compileErr *schema.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeSchemaInvalid,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeSchemaInvalid,
		Message: fmt.Sprintf("%s: %v", path, err),
	}
}
