package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show each stage's cache key and whether it would be reused",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			plan, err := c.app.Plan(cmd.Context(), path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tKIND\tKEY\tSTATE")
			for _, stage := range plan {
				state := "build"
				if stage.Cached {
					state = "cached"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", stage.Name, stage.Kind, stage.CacheKey, state)
			}
			return w.Flush()
		},
	}
}
