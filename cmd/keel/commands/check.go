package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/keel/internal/core/domain"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report how the environment deviates from its spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, specName := commonFlags(cmd)
			prefix, _ := cmd.Flags().GetString("prefix")
			deviations, err := c.app.Check(cmd.Context(), dir, specName, prefix)
			if err != nil {
				return err
			}
			printDeviations(cmd, deviations)
			if !deviations.OK() {
				return fmt.Errorf("environment deviates from its spec")
			}
			return nil
		},
	}
	cmd.Flags().String("prefix", "", "Environment prefix or env name known to conda (defaults to envs/<spec> in the project)")
	return cmd
}

func printDeviations(cmd *cobra.Command, d *domain.EnvironmentDeviations) {
	cmd.Println(d.Summary)
	printList(cmd, "missing packages", d.MissingPackages)
	printList(cmd, "wrong versions", d.WrongVersionPackages)
	printList(cmd, "missing pip packages", d.MissingPipPackages)
}

func printList(cmd *cobra.Command, label string, names []string) {
	if len(names) > 0 {
		cmd.Printf("  %s: %s\n", label, strings.Join(names, ", "))
	}
}
