package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which steps are already satisfied",
	Long: `Status evaluates every step's precondition without changing the host.
It does not need root, but probes that read root-only files report unknown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		c.PrintStatus(cmd.Context())
		return nil
	},
}

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset-bootstrap",
	Short: "Remove the first-run marker",
	Long:  `Reset-bootstrap removes the first-run marker so baseline setup runs again on the next start.`,
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "skip the confirmation prompt")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	if err := requireRoot(c); err != nil {
		return err
	}
	if !resetForce && !yesFlag {
		ok, err := c.Confirm("Reset the first-run marker?",
			"Baseline packages are checked again on the next start.")
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Reset cancelled.")
			return nil
		}
	}
	if err := c.ResetBootstrap(); err != nil {
		return err
	}
	cmd.Println("First-run marker removed.")
	return nil
}
