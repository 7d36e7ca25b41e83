package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/demo"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
)

func newSeedDemoCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Load the sample catalog into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, app *entrypoint.App) error {
				seeded, err := demo.Seed(ctx, app.Catalog, app.Catalog, logrus.StandardLogger())
				if err != nil {
					return err
				}
				if !seeded {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is not empty, nothing to do")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Sample catalog loaded")
				return nil
			})
		},
	}
}
