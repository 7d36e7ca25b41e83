package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/config"
	auditRepo "github.com/mrlokans/storyshelf/internal/database/audit"
	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
)

func newAuditCommand(cfg *config.Config) *cobra.Command {
	var (
		eventType string
		status    string
		since     time.Duration
		limit     int
	)
	cmd := &cobra.Command{
		Use:     "audit",
		Short:   "List recent catalog changes",
		Args:    cobra.NoArgs,
		Example: `storyshelf audit --type import --status failed --since 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, app *entrypoint.App) error {
				filter := auditRepo.Filter{Type: entities.AuditEventType(eventType), Status: entities.AuditStatus(status)}
				if since > 0 {
					filter.Since = time.Now().Add(-since)
				}
				events, total, err := auditRepo.NewRepository(app.DB.DB).List(filter, limit, 0)
				if err != nil {
					return err
				}
				renderAudit(cmd.OutOrStdout(), events, total)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "only show events of this type (catalog_write, import, sweep)")
	cmd.Flags().StringVar(&status, "status", "", "only show events with this status (success, failed)")
	cmd.Flags().DurationVar(&since, "since", 0, "only show events newer than this, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events to show")
	return cmd
}

func renderAudit(out io.Writer, events []entities.AuditEvent, total int64) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Time", "User", "Action", "Entity", "Status"})

	for _, e := range events {
		user := e.Username
		if user == "" {
			user = strconv.FormatUint(uint64(e.UserID), 10)
		}
		table.Append([]string{
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			user,
			e.Action,
			e.EntityID,
			fmt.Sprintf("%s (%d)", e.Status, e.HTTPStatus),
		})
	}
	table.Render()
	fmt.Fprintf(out, "%d of %d events\n", len(events), total)
}
