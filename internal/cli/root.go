// Package cli implements the storyshelf command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
	"github.com/mrlokans/storyshelf/internal/logging"
)

type rootOpts struct {
	dbPath   string
	backend  string
	logLevel string
}

// Execute runs the root command. With no sub command it serves the API.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. Configuration comes from the
// environment; flags override it.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOpts{}
	cfg := config.NewConfig()

	serve := newServeCommand(cfg, version)
	root := &cobra.Command{
		Use:           "storyshelf",
		Short:         "Level, book and page catalog service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.apply(cmd, cfg)
		},
		RunE: serve.RunE,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the SQLite database (env DATABASE_PATH)")
	root.PersistentFlags().StringVar(&opts.backend, "store", "", "record store backend: sqlite or mongo (env STORE_BACKEND)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (env LOG_LEVEL)")

	root.AddCommand(
		serve,
		newTreeCommand(cfg),
		newImportCommand(cfg),
		newExportCommand(cfg),
		newSweepCommand(cfg),
		newCreateUserCommand(cfg),
		newSeedDemoCommand(cfg),
		newAuditCommand(cfg),
	)
	return root
}

func (o *rootOpts) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database.Path = o.dbPath
	}
	if flags.Changed("store") {
		cfg.Store.Backend = o.backend
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	return logging.Configure(logrus.StandardLogger(), cfg.Log, cmd.ErrOrStderr())
}

// withApp opens the application for a one-shot command.
func withApp(cmd *cobra.Command, cfg *config.Config, fn func(ctx context.Context, app *entrypoint.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := entrypoint.NewApp(ctx, cfg, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer app.Close(context.Background())
	return fn(ctx, app)
}
