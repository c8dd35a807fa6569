package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <group>...",
	Short: "Run step groups without the menu",
	Long: `Run converges the named groups in the order given. First-run setup runs
first when it has not completed yet.

A failing step does not stop the steps after it; the exit status is
non-zero when any step did not converge.`,
	Args: cobra.MinimumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		c, err := newClient(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.Registry().IDs(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runRun,
}

var installAllCmd = &cobra.Command{
	Use:   "install-all",
	Short: "Run every step group in menu order",
	Args:  cobra.NoArgs,
	RunE:  runInstallAll,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(installAllCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	c, err := prepare(cmd)
	if err != nil {
		return err
	}
	b, err := c.RunGroups(cmd.Context(), args...)
	if err != nil {
		return err
	}
	return batchError(b)
}

func runInstallAll(cmd *cobra.Command, _ []string) error {
	c, err := prepare(cmd)
	if err != nil {
		return err
	}
	return batchError(c.InstallAll(cmd.Context()))
}

// prepare builds the client, checks privileges and runs first-run setup.
func prepare(cmd *cobra.Command) (client, error) {
	c, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	if err := requireRoot(c); err != nil {
		return nil, err
	}
	if _, err := c.Bootstrap(cmd.Context()); err != nil {
		return nil, err
	}
	return c, nil
}
