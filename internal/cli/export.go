package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
	"github.com/mrlokans/storyshelf/internal/exporters"
)

func newExportCommand(cfg *config.Config) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as YAML or Markdown",
		Args:  cobra.NoArgs,
		Example: `  # Fixture that 'storyshelf import' can load:
  storyshelf export --out catalog.yaml

  # One Markdown file per book:
  storyshelf export --format markdown --out ./books`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, app *entrypoint.App) error {
				var (
					result exporters.ExportResult
					err    error
				)
				switch format {
				case "yaml":
					result, err = exportYAML(ctx, app, out, cmd.OutOrStdout())
				case "markdown":
					if out == "" {
						return fmt.Errorf("--out is required for markdown export")
					}
					result, err = exporters.NewMarkdownExporter(app.Catalog, out, logrus.StandardLogger()).Export(ctx)
				default:
					return fmt.Errorf("unknown format %q (want yaml or markdown)", format)
				}
				if err != nil {
					return err
				}
				if out != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %d levels, %d books, %d pages to %s\n",
						result.LevelsExported, result.BooksExported, result.PagesExported, out)
				}
				if result.Skipped > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d entries could not be loaded and were skipped\n", result.Skipped)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or markdown")
	cmd.Flags().StringVar(&out, "out", "", "output file (yaml) or directory (markdown); yaml defaults to stdout")
	return cmd
}

func exportYAML(ctx context.Context, app *entrypoint.App, path string, stdout io.Writer) (exporters.ExportResult, error) {
	exporter := exporters.NewYAMLExporter(app.Catalog)
	if path == "" {
		return exporter.Export(ctx, stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return exporters.ExportResult{}, fmt.Errorf("create %s: %w", path, err)
	}
	result, err := exporter.Export(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	return result, err
}
