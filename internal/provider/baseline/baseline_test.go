package baseline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/gate"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/provider"
	"github.com/felixgeelhaar/debprep/internal/testutil/mocks"
)

func newRunner() *provision.Runner {
	return provision.NewRunner(
		provision.WithSleeper(func(context.Context, time.Duration) error { return nil }),
		provision.WithPrivilegeCheck(func() bool { return true }),
	)
}

func TestPackagesStep_InstallsExactlyTheMissing(t *testing.T) {
	t.Parallel()

	pkgs := mocks.NewPackageManager("curl", "gnupg")
	step := NewPackagesStep([]string{"curl", "tmux", "gnupg", "sudo"}, pkgs)

	result := newRunner().Run(context.Background(), step)

	require.Equal(t, provision.OutcomeSucceeded, result.Outcome())
	assert.Equal(t, [][]string{{"tmux", "sudo"}}, pkgs.Installs())
	assert.Equal(t, 1, pkgs.Updates())
	assert.Equal(t, "+ packages apt:baseline (tmux sudo)", result.Diff().Summary())
}

func TestPackagesStep_AllPresentIsNoop(t *testing.T) {
	t.Parallel()

	pkgs := mocks.NewPackageManager("curl", "tmux")
	step := NewPackagesStep([]string{"curl", "tmux"}, pkgs)

	result := newRunner().Run(context.Background(), step)

	assert.Equal(t, provision.OutcomeAlreadySatisfied, result.Outcome())
	assert.Empty(t, pkgs.Installs())
	assert.Equal(t, 0, pkgs.Updates())
}

func TestPackagesStep_ExitCodeIsNotTrusted(t *testing.T) {
	t.Parallel()

	pkgs := mocks.NewPackageManager()
	pkgs.Broken = true
	step := NewPackagesStep([]string{"htop"}, pkgs)

	result := newRunner().Run(context.Background(), step)

	assert.Equal(t, provision.OutcomeFailedAfterRetries, result.Outcome())
	assert.Equal(t, 3, result.Attempts())
	assert.Contains(t, result.Error().Error(), "still missing: htop")
}

func TestPackagesStep_TransientInstallFailure(t *testing.T) {
	t.Parallel()

	pkgs := mocks.NewPackageManager()
	pkgs.InstallErr = errors.New("Could not get lock /var/lib/dpkg/lock-frontend")
	pkgs.InstallFailures = 1
	step := NewPackagesStep([]string{"unzip"}, pkgs)

	result := newRunner().Run(context.Background(), step)

	assert.Equal(t, provision.OutcomeSucceeded, result.Outcome())
	assert.Equal(t, 2, result.Attempts())
}

func TestPackagesStep_GatesFirstRun(t *testing.T) {
	t.Parallel()

	store := mocks.NewFlagStore()
	g := gate.New(store)
	pkgs := mocks.NewPackageManager("curl")
	step := NewPackagesStep([]string{"curl", "sudo"}, pkgs)
	runner := newRunner()

	require.True(t, g.ShouldBootstrap())
	result, err := g.Bootstrap(context.Background(), runner, step)
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.False(t, g.ShouldBootstrap())

	_, err = g.Bootstrap(context.Background(), runner, step)
	require.NoError(t, err)
	assert.Len(t, pkgs.Installs(), 1, "closed gate does not rerun the step")
}

func TestProvider_Compile(t *testing.T) {
	t.Parallel()

	p := NewProvider(provider.Deps{Packages: mocks.NewPackageManager()})

	steps, err := p.Compile(config.Default())
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, StepID, steps[0].ID().String())

	cfg := config.Default()
	cfg.Baseline.Packages = nil
	steps, err = p.Compile(cfg)
	require.NoError(t, err)
	assert.Empty(t, steps)
}
