package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
	"github.com/mrlokans/storyshelf/internal/importers"
)

func newImportCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load a YAML catalog fixture",
		Args:  cobra.ExactArgs(1),
		Example: `  # Load a fixture into the default database:
  storyshelf import catalog.yaml

  # Only validate the fixture:
  storyshelf import catalog.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read fixture: %w", err)
			}
			fixture, err := importers.ParseCatalog(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "Fixture is valid: %d languages, %d levels\n", len(fixture.Languages), len(fixture.Levels))
				return nil
			}

			return withApp(cmd, cfg, func(ctx context.Context, app *entrypoint.App) error {
				result, err := importers.NewPipeline(app.Catalog, logrus.StandardLogger()).Import(ctx, fixture)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d levels, %d books, %d pages, %d languages (%d languages already present)\n",
					result.LevelsCreated, result.BooksCreated, result.PagesCreated,
					result.LanguagesCreated, result.LanguagesSkipped)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the fixture without writing")
	return cmd
}
