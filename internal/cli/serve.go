package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/recq/internal/config"
	"github.com/roach88/recq/internal/schema"
	"github.com/roach88/recq/internal/server"
	"github.com/roach88/recq/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
	SchemaDir  string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}
	d := config.Defaults()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve collections over HTTP",
		Long: `Serve the snapshot store over HTTP until interrupted.

Configuration is read from defaults, then --config (YAML), then RECQ_*
environment variables (RECQ_ADDR, RECQ_DB, RECQ_DEFAULT_COLLECTION,
RECQ_FUZZY_THRESHOLD, RECQ_MAX_LIMIT), then explicitly set flags.

With --schema, every collection declared in the directory is registered
in the store before serving. Without it, the built-in workspace
collections (projects, tasks, people, resources) are registered unless
the store already holds a collection of the same name.`,
		Example: `  recq serve --db recq.db --default-collection tasks
  RECQ_ADDR=:9090 recq serve --config recq.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	f.StringVar(&opts.SchemaDir, "schema", "", "register collections from this schema directory")
	f.String("addr", d.Addr, "listen address")
	f.String("db", d.DB, "snapshot store path")
	f.String("default-collection", d.DefaultCollection, "collection served at /records")
	f.Float64("fuzzy-threshold", d.FuzzyThreshold, "default fuzzy similarity threshold")
	f.Int("max-limit", d.MaxLimit, "maximum page size (0 = unlimited)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())

	cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}

	st, err := store.Open(cfg.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, &LoadError{Code: ErrCodeStore, Message: err.Error()})
	}
	defer st.Close()

	// Registration is startup work and finishes even if a shutdown signal
	// has already arrived.
	if err := registerSchemas(context.WithoutCancel(ctx), opts, st, logger); err != nil {
		return formatter.Fail(ExitCommandError, err)
	}

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(cfg, st, logger)
	if err := srv.Run(ctx); err != nil {
		return formatter.Fail(ExitCommandError, fmt.Errorf("serve: %w", err))
	}
	return nil
}

// registerSchemas stores every collection of --schema, replacing stored
// schemas of the same name. Without --schema the built-in workspace
// collections are added, leaving collections already in the store alone.
func registerSchemas(ctx context.Context, opts *ServeOptions, st *store.Store, logger *slog.Logger) error {
	replace := opts.SchemaDir != ""
	var schemas []*schema.Schema
	if replace {
		result, errs := LoadSchemas(opts.SchemaDir, LoadModeFailFast)
		if len(errs) > 0 {
			return errs[0]
		}
		schemas = result.Schemas
	} else {
		var err error
		if schemas, err = BuiltinSchemas(); err != nil {
			return err
		}
	}

	stored, err := st.Collections(ctx)
	if err != nil {
		return &LoadError{Code: ErrCodeStore, Message: err.Error()}
	}
	for _, s := range schemas {
		if !replace && slices.ContainsFunc(stored, func(c store.CollectionInfo) bool { return c.Name == s.Name }) {
			logger.Debug("collection already stored", "collection", s.Name)
			continue
		}
		if err := st.PutCollection(ctx, s.Name, s.Source); err != nil {
			return &LoadError{Code: ErrCodeStore, Message: err.Error()}
		}
		logger.Info("registered collection", "collection", s.Name, "builtin", !replace)
	}
	return nil
}
