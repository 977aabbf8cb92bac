// Package commands implements the CLI commands for keel.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/keel/internal/app"
)

// CLI represents the command line interface for keel.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "keel",
		Short:         "Reproducible conda-style environments for a project",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("directory", "C", ".", "Project directory containing keel.yaml")
	rootCmd.PersistentFlags().StringP("env-spec", "e", "", "Env spec name (defaults to the project default)")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newLockCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newPrepareCmd())
	rootCmd.AddCommand(c.newRemoveCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOut sets the output writer for the root command. Used for testing.
func (c *CLI) SetOut(out io.Writer) {
	c.rootCmd.SetOut(out)
}

func commonFlags(cmd *cobra.Command) (dir, specName string) {
	dir, _ = cmd.Flags().GetString("directory")
	specName, _ = cmd.Flags().GetString("env-spec")
	return dir, specName
}
