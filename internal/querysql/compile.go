package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/query"
	"github.com/roach88/recq/internal/schema"
)

// Compiler compiles filter predicates to a parameterized SQLite SELECT over
// the records table.
//
// Pushdown is conservative: a predicate is compiled only when the SQL
// condition selects exactly the records the in-memory evaluation keeps.
// Everything else (Contains, Not, Func, date fields, uncoercible literals)
// is left out, so the statement selects a superset and callers must still
// run the full pipeline over its rows.
//
// CRITICAL: all values and JSON paths are parameterized, never interpolated.
// CRITICAL: every statement has ORDER BY for deterministic results.
type Compiler struct {
	schema *schema.Schema
}

// NewCompiler creates a Compiler for records of s.
func NewCompiler(s *schema.Schema) *Compiler {
	return &Compiler{schema: s}
}

// Statement is a compiled query.
type Statement struct {
	SQL    string
	Params []any

	// Pushed counts the predicates (including And members) compiled to SQL.
	Pushed int
}

// Compile builds the SELECT for one collection.
func (c *Compiler) Compile(collection string, preds []query.Predicate) (Statement, error) {
	if collection == "" {
		return Statement{}, fmt.Errorf("cannot compile query without a collection")
	}

	st := Statement{Params: []any{collection}}
	where := []string{"collection = ?"}
	for _, p := range preds {
		if sql, params, ok := c.compilePredicate(p, &st.Pushed); ok {
			where = append(where, sql)
			st.Params = append(st.Params, params...)
		}
	}

	st.SQL = fmt.Sprintf("SELECT seq, doc FROM records WHERE %s ORDER BY %s",
		strings.Join(where, " AND "),
		stableOrderKey())
	return st, nil
}

// stableOrderKey returns the ORDER BY clause: import order.
func stableOrderKey() string {
	return "seq ASC"
}

// compilePredicate compiles p when it can be pushed down exactly.
func (c *Compiler) compilePredicate(p query.Predicate, pushed *int) (string, []any, bool) {
	var (
		sql    string
		params []any
		ok     bool
	)
	switch pred := p.(type) {
	case query.Equals:
		sql, params, ok = c.compareOp(pred.Field, "=", pred.Value)
	case query.NotEquals:
		sql, params, ok = c.compareOp(pred.Field, "<>", pred.Value)
	case query.In:
		sql, params, ok = c.compileIn(pred)
	case query.Range:
		sql, params, ok = c.compileRange(pred)
	case query.IsNull:
		sql, params, ok = c.nullCheck(pred.Field, "IS NULL")
	case query.NotNull:
		sql, params, ok = c.nullCheck(pred.Field, "IS NOT NULL")
	case query.And:
		// Members are pushed individually; dropping a member widens the result.
		return c.compileAnd(pred, pushed)
	default:
		return "", nil, false
	}
	if ok {
		*pushed++
	}
	return sql, params, ok
}

func (c *Compiler) compileAnd(and query.And, pushed *int) (string, []any, bool) {
	var parts []string
	var all []any
	for _, sub := range and.Predicates {
		if sql, params, ok := c.compilePredicate(sub, pushed); ok {
			parts = append(parts, sql)
			all = append(all, params...)
		}
	}
	if len(parts) == 0 {
		return "", nil, false
	}
	return "(" + strings.Join(parts, " AND ") + ")", all, true
}

// compareOp compiles "json_extract(doc, path) op ?". NULL never compares,
// matching in-memory evaluation for both = and <>.
func (c *Compiler) compareOp(field, op string, lit ir.Value) (string, []any, bool) {
	path, kind, ok := c.fieldPath(field)
	if !ok {
		return "", nil, false
	}
	param, ok := literalParam(kind, lit)
	if !ok {
		return "", nil, false
	}
	return fmt.Sprintf("json_extract(doc, ?) %s ?", op), []any{path, param}, true
}

func (c *Compiler) compileIn(in query.In) (string, []any, bool) {
	path, kind, ok := c.fieldPath(in.Field)
	if !ok || len(in.Values) == 0 {
		return "", nil, false
	}
	params := []any{path}
	for _, lit := range in.Values {
		param, ok := literalParam(kind, lit)
		if !ok {
			return "", nil, false
		}
		params = append(params, param)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(in.Values)), ", ")
	return fmt.Sprintf("json_extract(doc, ?) IN (%s)", placeholders), params, true
}

// compileRange pushes numeric ranges only; text and date ordering in SQLite
// differs from in-memory comparison.
func (c *Compiler) compileRange(r query.Range) (string, []any, bool) {
	path, kind, ok := c.fieldPath(r.Field)
	if !ok || (kind != schema.KindInt && kind != schema.KindFloat) {
		return "", nil, false
	}
	var parts []string
	var params []any
	for _, b := range []struct {
		op  string
		lit ir.Value
	}{{">=", r.Min}, {"<=", r.Max}} {
		if ir.IsNull(b.lit) {
			continue
		}
		param, ok := literalParam(kind, b.lit)
		if !ok {
			return "", nil, false
		}
		parts = append(parts, fmt.Sprintf("json_extract(doc, ?) %s ?", b.op))
		params = append(params, path, param)
	}
	if len(parts) == 0 {
		return "", nil, false
	}
	return strings.Join(parts, " AND "), params, true
}

func (c *Compiler) nullCheck(field, check string) (string, []any, bool) {
	path, _, ok := c.fieldPath(field)
	if !ok {
		return "", nil, false
	}
	return "json_extract(doc, ?) " + check, []any{path}, true
}

// fieldPath returns the JSON path of a declared field. Names containing a
// double quote cannot be expressed as a quoted path label.
func (c *Compiler) fieldPath(field string) (string, schema.Kind, bool) {
	if c.schema == nil || strings.Contains(field, `"`) {
		return "", "", false
	}
	f, ok := c.schema.Field(field)
	if !ok {
		return "", "", false
	}
	return `$."` + field + `"`, f.Kind, true
}

// literalParam converts a literal to the SQL parameter json_extract would
// produce for an equal value of kind k. Date fields are never pushed.
func literalParam(k schema.Kind, lit ir.Value) (any, bool) {
	if ir.IsNull(lit) {
		return nil, false
	}
	switch k {
	case schema.KindString:
		// In-memory evaluation compares string fields to the literal's text.
		return ir.Text(lit), true
	case schema.KindInt, schema.KindFloat:
		v, ok := ir.Coerce(lit, ir.KindFloat)
		if !ok {
			return nil, false
		}
		switch n := v.(type) {
		case ir.Int:
			return int64(n), true
		case ir.Float:
			return float64(n), true
		}
	case schema.KindBool:
		v, ok := ir.Coerce(lit, ir.KindBool)
		if !ok {
			return nil, false
		}
		if v.(ir.Bool) {
			return int64(1), true
		}
		return int64(0), true
	}
	return nil, false
}
