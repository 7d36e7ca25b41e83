package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/auth"
	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
)

// passwordEnv lets scripts pass the password without exposing it in argv.
const passwordEnv = "STORYSHELF_PASSWORD"

func newCreateUserCommand(cfg *config.Config) *cobra.Command {
	var (
		username string
		password string
		admin    bool
		token    bool
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		Example: `  # Create an editor that may change the catalog:
  STORYSHELF_PASSWORD=... storyshelf create-user --username editor --admin --token`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			return withApp(cmd, cfg, func(ctx context.Context, app *entrypoint.App) error {
				svc := auth.NewService(app.Users(), cfg.Auth)
				user, err := svc.CreateUser(username, password, admin)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				role := "viewer"
				if user.IsAdmin {
					role = "admin"
				}
				fmt.Fprintf(out, "Created %s %q (id %d)\n", role, user.Username, user.ID)

				if token {
					plaintext, err := svc.GenerateToken(user.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "API token: %s\n", plaintext)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account name (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (default from env "+passwordEnv+")")
	cmd.Flags().BoolVar(&admin, "admin", false, "allow the account to edit the catalog")
	cmd.Flags().BoolVar(&token, "token", false, "also issue an API token")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
