package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newLockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Resolve the env spec on every platform and write keel-lock.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, specName := commonFlags(cmd)
			return c.app.Lock(cmd.Context(), dir, specName)
		},
	}
}
