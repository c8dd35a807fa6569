package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive menu (default)",
	Long: `Menu runs first-run setup when it has not completed yet and then offers
every step group, Install All, a first-run reset and Quit.

The menu comes back after every action until Quit is chosen.`,
	RunE: runMenuCmd,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

// isTerminal reports whether stdin and stdout are attached to a terminal.
var isTerminal = func() bool {
	return isInteractive(os.Stdin.Fd()) && isInteractive(os.Stdout.Fd())
}

func isInteractive(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runProgram shows a menu and returns its final model.
var runProgram = func(ctx context.Context, m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithContext(ctx)).Run()
}

func runMenuCmd(cmd *cobra.Command, _ []string) error {
	if !isTerminal() {
		return config.NewUserError(config.ErrCodeNoTerminal, "the interactive menu needs a terminal").
			WithSuggestion("Use 'debprep run <group>' or 'debprep install-all' for unattended runs.")
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	if err := requireRoot(c); err != nil {
		return err
	}
	return runMenu(cmd.Context(), c)
}

// runMenu bootstraps the host and then loops over the menu until Quit.
func runMenu(ctx context.Context, c client) error {
	status := ""
	if _, err := c.Bootstrap(ctx); err != nil {
		return err
	}
	if c.NeedsBootstrap() {
		status = "first-run setup did not complete; it runs again on the next start"
	}

	for ctx.Err() == nil {
		entries := tui.MenuEntries(c.Registry().Groups())
		final, err := runProgram(ctx, tui.NewMenuModel("debprep", entries).WithStatus(status))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("menu: %w", err)
		}
		m, ok := final.(tui.MenuModel)
		if !ok {
			return nil
		}
		entry, chosen := m.Choice()
		if !chosen || entry.ID == tui.ActionQuit {
			return nil
		}

		status, err = dispatch(ctx, c, entry)
		if err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs one menu action and returns the status line for the next menu.
func dispatch(ctx context.Context, c client, entry tui.MenuEntry) (string, error) {
	switch entry.ID {
	case tui.ActionInstallAll:
		return "Install All: " + c.InstallAll(ctx).Summary(), nil
	case tui.ActionReset:
		ok, err := c.Confirm("Reset the first-run marker?",
			"Baseline packages are checked again on the next start.")
		if err != nil {
			return "", err
		}
		if !ok {
			return "reset cancelled", nil
		}
		if err := c.ResetBootstrap(); err != nil {
			return "", err
		}
		return "first-run marker removed", nil
	default:
		b, err := c.RunGroups(ctx, entry.ID)
		if err != nil {
			return "", err
		}
		return entry.Title + ": " + b.Summary(), nil
	}
}
