// Package docker installs Docker Engine from Docker's own apt repository.
package docker

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/provider"
)

// EngineStep installs and starts Docker Engine from a fingerprint-pinned repository.
type EngineStep struct {
	id       provision.StepID
	cfg      config.DockerConfig
	codename string
	deps     provider.Deps
}

// NewEngineStep creates the docker:engine step for the given Debian codename.
func NewEngineStep(cfg config.DockerConfig, codename string, deps provider.Deps) *EngineStep {
	return &EngineStep{
		id:       provision.MustNewStepID("docker:engine"),
		cfg:      cfg,
		codename: codename,
		deps:     deps,
	}
}

// ID returns the step identifier.
func (s *EngineStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that apt and systemd changes need root.
func (s *EngineStep) RequiresRoot() bool {
	return true
}

// Guard rejects hosts Docker publishes no packages for.
func (s *EngineStep) Guard(_ provision.RunContext) error {
	plat := s.deps.Platform
	if !plat.IsDebian() {
		return provision.Unsupported("docker packages are only installed on Debian, found %q", plat.Release().ID)
	}
	if !slices.Contains(s.cfg.Architectures, plat.Arch()) {
		return provision.Unsupported("docker is not published for architecture %s (supported: %s)",
			plat.Arch(), strings.Join(s.cfg.Architectures, ", "))
	}
	if s.codename == "" {
		return provision.Unsupported("cannot determine the Debian codename; set repository.codename")
	}
	return nil
}

// Check is satisfied when the repository is configured, the packages are
// installed and the service is running.
func (s *EngineStep) Check(ctx provision.RunContext) (provision.StepStatus, error) {
	if !s.deps.FS.Exists(s.cfg.KeyringPath) {
		return provision.StatusNeedsApply, nil
	}
	list, err := s.deps.FS.ReadFile(s.cfg.ListPath)
	if err != nil || string(list) != s.ListLine() {
		return provision.StatusNeedsApply, nil //nolint:nilerr // a missing list file only means apply
	}
	missing, err := s.missing(ctx)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if len(missing) > 0 {
		return provision.StatusNeedsApply, nil
	}
	active, err := s.deps.Services.IsActive(ctx.Context(), s.cfg.Service)
	if err != nil {
		return provision.StatusUnknown, err
	}
	if !active {
		return provision.StatusNeedsApply, nil
	}
	return provision.StatusSatisfied, nil
}

// Plan returns the diff for this step.
func (s *EngineStep) Plan(_ provision.RunContext) (provision.Diff, error) {
	return provision.NewDiff(provision.DiffTypeAdd, "docker", s.cfg.Service, "", strings.Join(s.cfg.Packages, " ")), nil
}

// Apply trusts the signing key, adds the repository, installs the packages
// and starts the service.
func (s *EngineStep) Apply(ctx provision.RunContext) error {
	return provision.Sequence(ctx,
		provision.Op("install signing key", s.installKey),
		provision.Op("write "+s.cfg.ListPath, func(provision.RunContext) error {
			return s.deps.FS.WriteFileAtomic(s.cfg.ListPath, []byte(s.ListLine()), 0o644)
		}),
		provision.Op("update index", func(rc provision.RunContext) error {
			return s.deps.Packages.UpdateIndex(rc.Context())
		}),
		provision.Op("install packages", func(rc provision.RunContext) error {
			missing, err := s.missing(rc)
			if err != nil || len(missing) == 0 {
				return err
			}
			return s.deps.Packages.Install(rc.Context(), missing...)
		}),
		provision.Op("enable "+s.cfg.Service, func(rc provision.RunContext) error {
			return s.deps.Services.EnableNow(rc.Context(), s.cfg.Service)
		}),
	)
}

// installKey downloads the signing key and keeps it only if its fingerprint
// matches. A mismatch is fatal; retrying would fetch the same key.
func (s *EngineStep) installKey(rc provision.RunContext) error {
	path, err := s.deps.Fetcher.Download(rc.Context(), s.cfg.KeyURL)
	if err != nil {
		return err
	}
	defer func() {
		if derr := s.deps.Fetcher.Discard(path); derr != nil {
			s.deps.Logger.Warn(rc.Context(), "could not remove downloaded key",
				ports.F("path", path), ports.F("error", derr.Error()))
		}
	}()

	data, err := s.deps.FS.ReadFile(path)
	if err != nil {
		return err
	}
	keyring, err := s.deps.Keys.Verify(data, s.cfg.KeyFingerprint)
	if err != nil {
		if errors.Is(err, ports.ErrFingerprintMismatch) {
			serr := provision.Unsupported("refusing key from %s", s.cfg.KeyURL)
			serr.Underlying = err
			return serr.WithSuggestion("check docker.key_fingerprint against https://docs.docker.com/engine/install/debian/")
		}
		return err
	}
	if err := s.deps.FS.MkdirAll(filepath.Dir(s.cfg.KeyringPath), 0o755); err != nil {
		return err
	}
	return s.deps.FS.WriteFileAtomic(s.cfg.KeyringPath, keyring, 0o644)
}

// Verify requires the service to be active, not just the install to have exited 0.
func (s *EngineStep) Verify(ctx provision.RunContext) (bool, error) {
	missing, err := s.missing(ctx)
	if err != nil {
		return false, err
	}
	if len(missing) > 0 {
		return false, fmt.Errorf("still missing: %s", strings.Join(missing, " "))
	}
	return s.deps.Services.IsActive(ctx.Context(), s.cfg.Service)
}

// Explain provides a human-readable explanation.
func (s *EngineStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Install Docker Engine",
		fmt.Sprintf("Adds %s signed by key %s and installs %s.",
			s.cfg.RepoURL, s.cfg.KeyFingerprint, strings.Join(s.cfg.Packages, ", ")),
		[]string{"https://docs.docker.com/engine/install/debian/"},
	)
}

// ListLine returns the sources.list.d entry for the repository.
func (s *EngineStep) ListLine() string {
	return fmt.Sprintf("deb [arch=%s signed-by=%s] %s %s stable\n",
		s.deps.Platform.Arch(), s.cfg.KeyringPath, s.cfg.RepoURL, s.codename)
}

func (s *EngineStep) missing(ctx provision.RunContext) ([]string, error) {
	states, err := s.deps.Packages.Query(ctx.Context(), s.cfg.Packages...)
	if err != nil {
		return nil, err
	}
	return ports.Missing(states), nil
}

var (
	_ provision.GuardedStep    = (*EngineStep)(nil)
	_ provision.PrivilegedStep = (*EngineStep)(nil)
)
