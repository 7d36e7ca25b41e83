package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entrypoint"
)

func newTreeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "tree",
		Short:   "Print the materialized catalog",
		Args:    cobra.NoArgs,
		Example: `storyshelf tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, app *entrypoint.App) error {
				tree, err := app.Catalog.Materialize(ctx)
				if err != nil {
					return err
				}
				renderTree(cmd.OutOrStdout(), tree)
				return nil
			})
		},
	}
}

func renderTree(out io.Writer, tree *catalog.Tree) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Level", "Book", "Pages", "Front cover", "Book ID"})
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)

	for _, level := range tree.Levels {
		if len(level.Books) == 0 {
			table.Append([]string{level.Name, "-", "0", "-", "-"})
			continue
		}
		for _, book := range level.Books {
			cover := "no"
			if len(book.Pages) > 0 && book.Pages[0].IsFrontCover {
				cover = "yes"
			}
			table.Append([]string{level.Name, book.Name, strconv.Itoa(len(book.Pages)), cover, book.ID})
		}
	}
	table.Render()

	if tree.Skipped > 0 {
		fmt.Fprintf(out, "%d entries could not be loaded and were skipped\n", tree.Skipped)
	}
}
