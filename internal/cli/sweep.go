package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
)

func newSweepCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "sweep",
		Short:   "Remove references to deleted books and pages",
		Args:    cobra.NoArgs,
		Example: `storyshelf sweep`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, app *entrypoint.App) error {
				report, err := app.Catalog.SweepDanglingReferences(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d levels and %d books, removed %d dangling references\n",
					report.LevelsScanned, report.BooksScanned, report.RefsRemoved)
				return nil
			})
		},
	}
}
