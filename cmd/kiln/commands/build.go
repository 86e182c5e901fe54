package commands

import (
	"github.com/larsclaussen/kiln/internal/app"
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	var (
		force bool
		env   []string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the image described by the recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			snapshot, err := c.app.Build(cmd.Context(), app.BuildOptions{
				ConfigPath: path,
				Force:      force,
				Env:        env,
			})
			if err != nil {
				return err
			}

			cmd.Println(snapshot.ID.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-execute every stage, ignoring cached snapshots")
	cmd.Flags().StringArrayVarP(&env, "env", "e", nil, "Runtime environment override (KEY=VALUE, repeatable)")

	return cmd
}
