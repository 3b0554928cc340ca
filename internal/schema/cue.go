package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/recq/internal/ir"
)

// dateAttr is the field attribute marking a string field as a date.
const dateAttr = "kind"

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile parses one collection struct into a Schema. The value should be
// the struct itself, e.g. the result of
//
//	v.LookupPath(cue.ParsePath("collection.tasks"))
func Compile(name string, v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{Field: name, Message: "collection must be a struct", Pos: v.Pos()}
	}

	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []Field
	nullable := make(map[string]bool)
	for iter.Next() {
		fv := iter.Value()
		f, err := compileField(iter.Label(), fv, iter.IsOptional())
		if err != nil {
			return nil, err
		}
		if fv.IncompleteKind()&cue.NullKind != 0 {
			nullable[f.Name] = true
		}
		fields = append(fields, f)
	}

	s, err := New(name, fields...)
	if err != nil {
		return nil, &CompileError{Field: name, Message: err.Error(), Pos: v.Pos()}
	}
	s.value = v
	s.nullable = nullable
	return s, nil
}

// compileField maps a CUE field to a Field. Nullable types (null | T) are
// treated as optional.
func compileField(name string, v cue.Value, optional bool) (Field, error) {
	k := v.IncompleteKind()
	if k&cue.NullKind != 0 {
		optional = true
		k &^= cue.NullKind
	}

	f := Field{Name: name, Optional: optional}

	if attr := v.Attribute(dateAttr); attr.Err() == nil {
		arg, err := attr.String(0)
		if err != nil || arg != string(KindDate) {
			return Field{}, &CompileError{Field: name, Message: "@kind attribute supports only @kind(date)", Pos: v.Pos()}
		}
		if k != cue.StringKind {
			return Field{}, &CompileError{Field: name, Message: "@kind(date) requires a string field", Pos: v.Pos()}
		}
		f.Kind = KindDate
		return f, nil
	}

	switch k {
	case cue.StringKind:
		f.Kind = KindString
	case cue.IntKind:
		f.Kind = KindInt
	case cue.FloatKind, cue.NumberKind:
		f.Kind = KindFloat
	case cue.BoolKind:
		f.Kind = KindBool
	default:
		return Field{}, &CompileError{
			Field:   name,
			Message: fmt.Sprintf("unsupported field type %v: records hold scalars only", k),
			Pos:     v.Pos(),
		}
	}
	return f, nil
}

// CompileSource compiles every collection declared in CUE source text.
// Collections keep their declaration order.
func CompileSource(src string) ([]*Schema, error) {
	return compileSource(cuecontext.New(), []byte(src), "")
}

// CompileCollection compiles src and returns the named collection.
func CompileCollection(src, name string) (*Schema, error) {
	schemas, err := CompileSource(src)
	if err != nil {
		return nil, err
	}
	if s, ok := Find(schemas, name); ok {
		return s, nil
	}
	return nil, &CompileError{Field: name, Message: "collection not declared"}
}

func compileSource(ctx *cue.Context, src []byte, filename string) ([]*Schema, error) {
	var opts []cue.BuildOption
	if filename != "" {
		opts = append(opts, cue.Filename(filename))
	}
	v := ctx.CompileBytes(src, opts...)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	collVal := v.LookupPath(cue.ParsePath("collection"))
	if !collVal.Exists() {
		return nil, &CompileError{Field: "collection", Message: "no collections declared", Pos: v.Pos()}
	}

	iter, err := collVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var schemas []*Schema
	for iter.Next() {
		s, err := Compile(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		s.Source = string(src)
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// CompileFile compiles every collection declared in the CUE file at path.
// Error positions carry the file name.
func CompileFile(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return compileSource(cuecontext.New(), data, path)
}

// LoadDir compiles every .cue file under dir. Each file is compiled on its
// own, so files cannot reference each other. A collection name declared in
// two files is an error.
func LoadDir(dir string) ([]*Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	var all []*Schema
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		schemas, err := compileSource(ctx, data, path)
		if err != nil {
			return nil, err
		}
		for _, s := range schemas {
			if _, dup := Find(all, s.Name); dup {
				return nil, &CompileError{Field: s.Name, Message: "collection declared twice", Pos: s.value.Pos()}
			}
			all = append(all, s)
		}
	}
	return all, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Find returns the schema named name.
func Find(schemas []*Schema, name string) (*Schema, bool) {
	for _, s := range schemas {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// checkConstraints unifies r with the CUE schema value. Null fields are
// encoded as null where the CUE type admits it and omitted otherwise;
// dates are encoded as RFC 3339 strings.
func (s *Schema) checkConstraints(r ir.Record) error {
	doc := make(map[string]any, len(r))
	for name := range s.nullable {
		if ir.IsNull(r.Get(name)) {
			doc[name] = nil
		}
	}
	for name, v := range r {
		switch x := v.(type) {
		case ir.String:
			doc[name] = string(x)
		case ir.Int:
			doc[name] = int64(x)
		case ir.Float:
			doc[name] = float64(x)
		case ir.Bool:
			doc[name] = bool(x)
		case ir.Time:
			doc[name] = x.Time().UTC().Format(time.RFC3339Nano)
		}
	}

	u := s.value.Unify(s.value.Context().Encode(doc))
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return constraintError(err)
	}
	return nil
}

// constraintError converts the first CUE error into a RecordError.
func constraintError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &RecordError{Index: -1, Message: err.Error()}
	}
	first := errs[0]
	field := ""
	if path := first.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	format, args := first.Msg()
	return &RecordError{Index: -1, Field: field, Message: fmt.Sprintf(format, args...)}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
