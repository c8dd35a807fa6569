package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/debprep/internal/app"
	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

var (
	// Global flags
	cfgFile  string
	envFile  string
	verbose  bool
	jsonLogs bool
	yesFlag  bool
)

// errStepsFailed is returned after the reporter already listed the failures.
var errStepsFailed = errors.New("one or more steps did not converge")

var rootCmd = &cobra.Command{
	Use:   "debprep",
	Short: "Prepare a fresh Debian host",
	Long: `Debprep converges a fresh Debian host: apt sources, baseline packages,
TCP congestion control, Docker, a supervised telemetry agent and the
monitoring agent.

Every step checks the host first, changes only what differs and verifies
the result against the live system. Without a subcommand the interactive
menu starts.`,
	RunE:          runMenuCmd,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errStepsFailed) {
		printError(err)
	}
	return err
}

// Exit codes. Not running as root uses EX_NOPERM from sysexits.h.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
	exitNoPerm = 77
)

// exitCode maps the error returned by Execute to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if config.IsUserError(err, config.ErrCodeNotRoot) {
		return exitNoPerm
	}
	var list *config.ErrorList
	if errors.As(err, &list) {
		return exitConfig
	}
	if userErr := config.GetUserError(err); userErr != nil {
		switch userErr.Code {
		case config.ErrCodeConfigNotFound, config.ErrCodeConfigInvalid, config.ErrCodeConfigParse,
			config.ErrCodeEnvFile, config.ErrCodeValidationFailed:
			return exitConfig
		}
	}
	return exitFailed
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with DEBPREP_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "write logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// client is the part of the application the commands drive.
type client interface {
	Registry() *provision.Registry
	IsRoot() bool
	NeedsBootstrap() bool
	Confirm(title, description string) (bool, error)
	Bootstrap(ctx context.Context) (provision.StepResult, error)
	RunGroups(ctx context.Context, ids ...string) (provision.BatchResult, error)
	InstallAll(ctx context.Context) provision.BatchResult
	PrintStatus(ctx context.Context) []app.StepStatus
	ResetBootstrap() error
}

var newClient = func(cmd *cobra.Command) (client, error) {
	cfg, err := app.LoadConfig(resolveConfigPath(), envFile)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.Options{
		Verbose:   verbose,
		JSONLogs:  jsonLogs,
		AssumeYes: yesFlag,
		Out:       cmd.OutOrStdout(),
		LogOut:    cmd.ErrOrStderr(),
	})
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath
}

// requireRoot fails before any step runs when the process is not root.
func requireRoot(c client) error {
	if c.IsRoot() {
		return nil
	}
	return config.NewUserError(config.ErrCodeNotRoot, "debprep must run as root").
		WithSuggestion("Re-run the command with sudo.")
}

// batchError maps a failed batch to errStepsFailed.
func batchError(b provision.BatchResult) error {
	if b.Success() {
		return nil
	}
	return errStepsFailed
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	if userErr := config.GetUserError(err); userErr != nil {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	var list *config.ErrorList
	if errors.As(err, &list) {
		return list.Format()
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = rootCmd.RegisterFlagCompletionFunc("env-file", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"env"}, cobra.ShellCompDirectiveFilterFileExt
	})
}
