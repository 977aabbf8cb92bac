package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Create or repair the environment so it matches its spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, specName := commonFlags(cmd)
			prefix, _ := cmd.Flags().GetString("prefix")
			return c.app.Prepare(cmd.Context(), dir, specName, prefix)
		},
	}
	cmd.Flags().String("prefix", "", "Environment prefix or env name known to conda (defaults to envs/<spec> in the project)")
	return cmd
}
