package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
)

func newServeCommand(cfg *config.Config, version string) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Start the HTTP server (default if no command given)",
		Args:    cobra.NoArgs,
		Example: `storyshelf serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cfg, version)
		},
	}
}
