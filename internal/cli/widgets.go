package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pulseboard/internal/widget"
)

func newWidgetsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "widgets",
		Short: "List the widget catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			byCategory := map[string][]widget.Definition{}
			for _, def := range widget.All() {
				byCategory[def.Category] = append(byCategory[def.Category], def)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tID\tNAME\tDEFAULT SIZE")
			for _, cat := range widget.Categories() {
				for _, def := range byCategory[cat] {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d×%d\n",
						cat, def.ID, def.Name, def.DefaultWidth, def.DefaultHeight)
				}
			}
			return tw.Flush()
		},
	}
}
