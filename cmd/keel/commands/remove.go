package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [packages...]",
		Short: "Remove packages from the environment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, specName := commonFlags(cmd)
			prefix, _ := cmd.Flags().GetString("prefix")
			return c.app.RemovePackages(cmd.Context(), dir, specName, prefix, args)
		},
	}
	cmd.Flags().String("prefix", "", "Environment prefix or env name known to conda (defaults to envs/<spec> in the project)")
	return cmd
}
