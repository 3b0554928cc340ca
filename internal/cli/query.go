package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/query"
	"github.com/roach88/recq/internal/schema"
	"github.com/roach88/recq/internal/source"
	"github.com/roach88/recq/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DBPath     string
	SchemaDir  string
	DataPath   string
	Collection string
	SpecPath   string

	Search    string
	Mode      string
	Fields    string
	Threshold string
	Sort      string
	Group     string
	Filters   []string
	Offset    string
	Limit     string
	Page      string
	Select    string
}

// QueryOutput is the JSON form of a query result.
type QueryOutput struct {
	Collection string       `json:"collection"`
	Items      []ir.Record  `json:"items"`
	Groups     []QueryGroup `json:"groups,omitempty"`
	Total      int          `json:"total"`
	HasMore    bool         `json:"has_more"`
}

// QueryGroup is one group of a grouped result.
type QueryGroup struct {
	Key   string      `json:"key"`
	Items []ir.Record `json:"items"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a collection",
		Long: `Filter, search, sort, page and group a collection.

Records come either from a dataset file (--data) or from the snapshot
store (--db). A dataset is decoded against the collection declared in
--schema; without --schema the built-in workspace collections (projects,
tasks, people, resources) are used, and any other name gets a schema
inferred from the data. A YAML query file (--spec) may supply the base
query; flags override or extend it.

Filters use field:op[:value] with ops eq, ne, in, gte, lte, contains,
null and notnull. Sort keys are comma-separated; prefix "-" or suffix
":desc" for descending.`,
		Example: `  recq query --data tasks.yaml --schema ./schemas -c tasks --search dash --sort -due
  recq query --db recq.db -c tasks --filter status:in:todo|doing --group status
  recq query --data tasks.json -c tasks --filter due_date:lte:2024-03-01
  recq query --data contacts.json -c contacts --search jdo --mode subsequence`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.DBPath, "db", "", "query the snapshot store at this path")
	f.StringVar(&opts.SchemaDir, "schema", "", "schema directory for --data")
	f.StringVar(&opts.DataPath, "data", "", "dataset file (json, jsonl or yaml)")
	f.StringVarP(&opts.Collection, "collection", "c", "", "collection name (required)")
	f.StringVar(&opts.SpecPath, "spec", "", "YAML query file")
	f.StringVarP(&opts.Search, "search", "q", "", "search text")
	f.StringVar(&opts.Mode, "mode", "", "search mode (exact|fuzzy|subsequence)")
	f.StringVar(&opts.Fields, "fields", "", "comma-separated search fields (default: text fields)")
	f.StringVar(&opts.Threshold, "threshold", "", "fuzzy similarity threshold in [0,1]")
	f.StringVar(&opts.Sort, "sort", "", "sort expression, e.g. status,-due")
	f.StringVar(&opts.Group, "group", "", "group results by field")
	f.StringArrayVar(&opts.Filters, "filter", nil, "filter field:op[:value] (repeatable)")
	f.StringVar(&opts.Offset, "offset", "", "skip this many results")
	f.StringVar(&opts.Limit, "limit", "", "page size")
	f.StringVar(&opts.Page, "page", "", "1-based page number (requires --limit)")
	f.StringVar(&opts.Select, "select", "", "comma-separated fields to output")
	_ = cmd.MarkFlagRequired("collection")
	cmd.MarkFlagsMutuallyExclusive("db", "data")
	cmd.MarkFlagsOneRequired("db", "data")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	spec, err := buildSpec(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}

	src, closeSource, err := openSource(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	defer closeSource()

	sch, err := src.Collection(ctx, opts.Collection)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	if spec.Search != nil && len(spec.Search.Fields) == 0 {
		spec.Search.Fields = sch.TextFields()
	}

	res, _, err := src.Run(ctx, opts.Collection, spec)
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}
	formatter.VerboseLog("%d match(es), %d shown", res.Total, len(res.Items))

	out := QueryOutput{
		Collection: opts.Collection,
		Items:      source.Project(res.Items, spec.Select),
		Total:      res.Total,
		HasMore:    res.HasMore,
	}
	for _, g := range res.Groups {
		out.Groups = append(out.Groups, QueryGroup{Key: g.Key, Items: source.Project(g.Items, spec.Select)})
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	columns := spec.Select
	if len(columns) == 0 {
		columns = sch.Names()
	}
	return writeTable(formatter.Writer, columns, out)
}

// buildSpec parses the query flags the same way the HTTP server parses
// query parameters, then merges them over the --spec file.
func buildSpec(opts *QueryOptions) (query.Spec, error) {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", opts.Search)
	set("mode", opts.Mode)
	set("fields", opts.Fields)
	set("threshold", opts.Threshold)
	set("sort", opts.Sort)
	set("groupBy", opts.Group)
	set("offset", opts.Offset)
	set("limit", opts.Limit)
	set("page", opts.Page)
	set("select", opts.Select)
	for _, f := range opts.Filters {
		v.Add("filter", f)
	}

	flags, err := query.ParseValues(v)
	if err != nil {
		return query.Spec{}, err
	}
	if opts.SpecPath == "" {
		return flags, nil
	}

	base, err := query.LoadFile(opts.SpecPath)
	if err != nil {
		return query.Spec{}, err
	}
	return mergeSpec(base, flags), nil
}

// mergeSpec lays over on top of base: filters accumulate, every other
// stage set in over replaces base's.
func mergeSpec(base, over query.Spec) query.Spec {
	out := base
	out.Filters = append(append([]query.Predicate(nil), base.Filters...), over.Filters...)
	if over.Search != nil {
		out.Search = over.Search
	}
	if len(over.Sort) > 0 {
		out.Sort = over.Sort
	}
	if over.GroupBy != "" {
		out.GroupBy = over.GroupBy
	}
	if over.Page != nil {
		out.Page = over.Page
	}
	if len(over.Select) > 0 {
		out.Select = over.Select
	}
	return out
}

// openSource returns the record source the flags select, plus its closer.
func openSource(opts *QueryOptions) (source.Source, func(), error) {
	if opts.DBPath != "" {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return nil, nil, &LoadError{Code: ErrCodeStore, Message: err.Error()}
		}
		return st, func() { st.Close() }, nil
	}

	var sch *schema.Schema
	if opts.SchemaDir != "" {
		var err error
		if sch, err = LoadCollection(opts.SchemaDir, opts.Collection); err != nil {
			return nil, nil, err
		}
	} else {
		var err error
		if sch, err = BuiltinCollection(opts.Collection); err != nil {
			return nil, nil, err
		}
	}
	records, sch, err := LoadRecords(opts.DataPath, opts.Collection, sch)
	if err != nil {
		return nil, nil, err
	}
	mem := source.NewMemorySource()
	if err := mem.Add(sch, records); err != nil {
		return nil, nil, err
	}
	return mem, func() {}, nil
}

// writeTable renders records as aligned columns. Grouped results print a
// heading per group.
func writeTable(w io.Writer, columns []string, out QueryOutput) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := func() {
		fmt.Fprintln(tw, strings.Join(upper(columns), "\t"))
	}
	rows := func(records []ir.Record) {
		for _, r := range records {
			cells := make([]string, len(columns))
			for i, c := range columns {
				cells[i] = ir.Text(r.Get(c))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}

	if len(out.Groups) > 0 {
		for _, g := range out.Groups {
			fmt.Fprintf(tw, "== %s (%d) ==\n", g.Key, len(g.Items))
			header()
			rows(g.Items)
			fmt.Fprintln(tw)
		}
	} else {
		header()
		rows(out.Items)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	more := ""
	if out.HasMore {
		more = ", more available"
	}
	_, err := fmt.Fprintf(w, "\n%d of %d match(es)%s\n", len(out.Items), out.Total, more)
	return err
}

func upper(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(s)
	}
	return out
}
