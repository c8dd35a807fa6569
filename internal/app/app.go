// Package app provides the main application logic for debprep.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/debprep/internal/adapters/accounts"
	"github.com/felixgeelhaar/debprep/internal/adapters/apt"
	"github.com/felixgeelhaar/debprep/internal/adapters/command"
	"github.com/felixgeelhaar/debprep/internal/adapters/filesystem"
	"github.com/felixgeelhaar/debprep/internal/adapters/httpfetch"
	"github.com/felixgeelhaar/debprep/internal/adapters/logging"
	"github.com/felixgeelhaar/debprep/internal/adapters/marker"
	"github.com/felixgeelhaar/debprep/internal/adapters/metrics"
	"github.com/felixgeelhaar/debprep/internal/adapters/pgpkey"
	"github.com/felixgeelhaar/debprep/internal/adapters/sysctl"
	"github.com/felixgeelhaar/debprep/internal/adapters/systemd"
	"github.com/felixgeelhaar/debprep/internal/adapters/tmux"
	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/gate"
	"github.com/felixgeelhaar/debprep/internal/domain/platform"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/provider"
	"github.com/felixgeelhaar/debprep/internal/provider/baseline"
	"github.com/felixgeelhaar/debprep/internal/provider/congestion"
	"github.com/felixgeelhaar/debprep/internal/provider/docker"
	"github.com/felixgeelhaar/debprep/internal/provider/monitoring"
	"github.com/felixgeelhaar/debprep/internal/provider/repository"
	"github.com/felixgeelhaar/debprep/internal/provider/telemetry"
	"github.com/felixgeelhaar/debprep/internal/tui"
	"github.com/felixgeelhaar/debprep/internal/tui/ui"
)

// Options control presentation and prompting.
type Options struct {
	Verbose bool
	// JSONLogs forces JSON log lines regardless of the log config.
	JSONLogs bool
	// AssumeYes answers every confirmation with yes.
	AssumeYes bool
	// Out receives the operator-facing report (default: os.Stdout).
	Out io.Writer
	// LogOut receives structured logs (default: os.Stderr).
	LogOut io.Writer
}

// Host is everything the App needs from the machine it runs on.
type Host struct {
	Deps    provider.Deps
	Marker  ports.FlagStore
	IsRoot  func() bool
	Sleeper provision.Sleeper
}

// App is the main application orchestrator.
type App struct {
	cfg      *config.Config
	runID    string
	logger   ports.Logger
	registry *provision.Registry
	runner   *provision.Runner
	gate     *gate.Gate
	reporter *tui.Reporter
	recorder *metrics.Recorder
	confirm  ports.Confirmer
	isRoot   func() bool
}

// LoadConfig reads the configuration file and overlays an optional env file.
func LoadConfig(path, envFile string) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return nil, err
	}
	if envFile == "" {
		return cfg, nil
	}
	vars, err := config.LoadEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(vars); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New creates an App backed by the real host.
func New(cfg *config.Config, opts Options) (*App, error) {
	opts = opts.withDefaults()
	runID := uuid.NewString()
	logger, err := newLogger(cfg.Log, opts, runID)
	if err != nil {
		return nil, err
	}

	plat, err := platform.Detect()
	if err != nil {
		return nil, fmt.Errorf("failed to detect platform: %w", err)
	}

	runner := command.NewRealRunner(command.WithLogger(logger))
	fs := filesystem.NewRealFileSystem()

	var confirmer ports.Confirmer = tui.NewHuhConfirmer(os.Getenv("ACCESSIBLE") != "")
	if opts.AssumeYes {
		confirmer = tui.AutoConfirmer{}
	}

	host := Host{
		Deps: provider.Deps{
			FS:         fs,
			Packages:   apt.New(runner),
			Services:   systemd.New(runner),
			Sysctl:     sysctl.New(runner),
			Fetcher:    httpfetch.New(logger),
			Keys:       pgpkey.New(),
			Accounts:   accounts.New(runner),
			Supervisor: tmux.New(runner, logger),
			Confirmer:  confirmer,
			Platform:   plat,
			Logger:     logger,
		},
		Marker: marker.New(fs, cfg.MarkerPath, runID),
		IsRoot: platform.IsRoot,
	}
	return NewWithHost(cfg, host, opts, runID)
}

// NewWithHost creates an App over the given host collaborators.
func NewWithHost(cfg *config.Config, host Host, opts Options, runID string) (*App, error) {
	opts = opts.withDefaults()
	if host.Deps.Logger == nil {
		host.Deps.Logger = logging.NewNopLogger()
	}
	if host.IsRoot == nil {
		host.IsRoot = platform.IsRoot
	}

	registry, err := provider.BuildRegistry(cfg,
		repository.NewProvider(host.Deps),
		baseline.NewProvider(host.Deps),
		congestion.NewProvider(host.Deps),
		docker.NewProvider(host.Deps),
		telemetry.NewProvider(host.Deps),
		monitoring.NewProvider(host.Deps),
	)
	if err != nil {
		return nil, err
	}

	styles := ui.DefaultStyles()
	if f, ok := opts.Out.(*os.File); !ok || f != os.Stdout {
		styles = ui.Plain()
	}
	reporter := tui.NewReporter(opts.Out, styles)
	reporter.SetVerbose(opts.Verbose)

	runnerOpts := []provision.RunnerOption{
		provision.WithLogger(host.Deps.Logger),
		provision.WithDefaultPolicy(cfg.Retry.Policy()),
		provision.WithPolicyLookup(func(id provision.StepID) provision.RetryPolicy {
			return cfg.Retry.PolicyFor(id.String())
		}),
		provision.WithPrivilegeCheck(host.IsRoot),
		provision.WithObserver(reporter),
	}
	if host.Sleeper != nil {
		runnerOpts = append(runnerOpts, provision.WithSleeper(host.Sleeper))
	}

	a := &App{
		cfg:      cfg,
		runID:    runID,
		logger:   host.Deps.Logger,
		registry: registry,
		runner:   provision.NewRunner(runnerOpts...),
		gate:     gate.New(host.Marker),
		reporter: reporter,
		confirm:  host.Deps.Confirmer,
		isRoot:   host.IsRoot,
	}
	if cfg.Metrics.Enabled {
		a.recorder = metrics.NewRecorder(cfg.Metrics.TextfileDir, runID)
	}
	return a, nil
}

func (o Options) withDefaults() Options {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.LogOut == nil {
		o.LogOut = os.Stderr
	}
	return o
}

func newLogger(cfg config.LogConfig, opts Options, runID string) (ports.Logger, error) {
	level, err := ports.ParseLevel(cfg.Level)
	if err != nil {
		return nil, config.NewValidationFailedError("log.level", err.Error())
	}
	if opts.Verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(opts.LogOut),
		logging.WithLevel(level),
		logging.WithJSONFormat(cfg.JSON || opts.JSONLogs),
		logging.WithTimestamp(true),
		logging.WithLevelLabel(true),
		logging.WithRunID(runID),
	), nil
}

// RunID identifies this invocation in logs, the marker and metrics.
func (a *App) RunID() string {
	return a.runID
}

// Registry returns the compiled step groups.
func (a *App) Registry() *provision.Registry {
	return a.registry
}

// Reporter returns the operator-facing reporter.
func (a *App) Reporter() *tui.Reporter {
	return a.reporter
}

// IsRoot reports whether the process runs with root privileges.
func (a *App) IsRoot() bool {
	return a.isRoot()
}

// Confirm asks the operator a yes/no question.
func (a *App) Confirm(title, description string) (bool, error) {
	if a.confirm == nil {
		return false, fmt.Errorf("no confirmer configured")
	}
	return a.confirm.Confirm(title, description)
}

// NeedsBootstrap reports whether first-run setup is still pending.
func (a *App) NeedsBootstrap() bool {
	return a.gate.ShouldBootstrap()
}

// Bootstrap runs first-run setup when the marker is absent. With no baseline
// group configured there is nothing to install and the host is only marked.
func (a *App) Bootstrap(ctx context.Context) (provision.StepResult, error) {
	group, ok := a.registry.Get("baseline")
	if !ok || len(group.Steps) == 0 {
		if !a.gate.ShouldBootstrap() {
			return provision.StepResult{}, nil
		}
		return provision.StepResult{}, a.gate.MarkBootstrapped()
	}

	open := a.gate.ShouldBootstrap()
	if open {
		a.reporter.Info("first run: installing baseline packages")
	}
	res, err := a.gate.Bootstrap(ctx, a.runner, group.Steps[0])
	if !open {
		return res, err
	}
	a.reporter.Result(res)
	a.observe(res)
	a.flush(ctx)
	return res, err
}

// ResetBootstrap clears the first-run marker.
func (a *App) ResetBootstrap() error {
	if err := a.gate.ResetBootstrap(); err != nil {
		return err
	}
	a.logger.Info(context.Background(), "first-run marker removed")
	return nil
}

// RunGroups runs the named groups in order and reports the batch.
func (a *App) RunGroups(ctx context.Context, ids ...string) (provision.BatchResult, error) {
	for _, id := range ids {
		if _, ok := a.registry.Get(id); !ok {
			return provision.BatchResult{}, config.NewUnknownGroupError(id, a.registry.IDs())
		}
	}
	steps, err := a.registry.Steps(ids...)
	if err != nil {
		return provision.BatchResult{}, err
	}
	return a.runBatch(ctx, steps), nil
}

// InstallAll runs every group in menu order; a failing step does not stop
// the ones after it.
func (a *App) InstallAll(ctx context.Context) provision.BatchResult {
	return a.runBatch(ctx, a.registry.AllSteps())
}

func (a *App) runBatch(ctx context.Context, steps []provision.Step) provision.BatchResult {
	batch := a.runner.RunAll(ctx, steps)
	a.reporter.Batch(batch)
	if a.recorder != nil {
		a.recorder.ObserveBatch(batch)
	}
	a.flush(ctx)
	return batch
}

func (a *App) observe(res provision.StepResult) {
	if a.recorder != nil && !res.StepID().IsZero() {
		a.recorder.Observe(res)
	}
}

func (a *App) flush(ctx context.Context) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.Flush(); err != nil {
		a.logger.Warn(ctx, "failed to write metrics", ports.F("path", a.recorder.Path()), ports.F("error", err.Error()))
	}
}
