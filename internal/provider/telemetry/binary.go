package telemetry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// BinaryStep downloads the agent and installs it when its checksum matches.
type BinaryStep struct {
	id          provision.StepID
	url         string
	sha256      string
	installPath string
	fs          ports.FileSystem
	fetcher     ports.Fetcher
	logger      ports.Logger
}

// NewBinaryStep creates the telemetry:binary step.
func NewBinaryStep(url, sha256, installPath string, fsys ports.FileSystem, fetcher ports.Fetcher, logger ports.Logger) *BinaryStep {
	return &BinaryStep{
		id:          provision.MustNewStepID("telemetry:binary"),
		url:         url,
		sha256:      strings.ToLower(sha256),
		installPath: installPath,
		fs:          fsys,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// ID returns the step identifier.
func (s *BinaryStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that the install path is root-owned.
func (s *BinaryStep) RequiresRoot() bool {
	return true
}

// Check compares the installed file's checksum.
func (s *BinaryStep) Check(_ provision.RunContext) (provision.StepStatus, error) {
	if !s.fs.Exists(s.installPath) {
		return provision.StatusNeedsApply, nil
	}
	ok, err := s.installed()
	if err != nil {
		return provision.StatusUnknown, err
	}
	if ok {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *BinaryStep) Plan(_ provision.RunContext) (provision.Diff, error) {
	current, err := s.fs.FileHash(s.installPath)
	if err != nil {
		return provision.NewDiff(provision.DiffTypeAdd, "file", s.installPath, "", short(s.sha256)), nil
	}
	return provision.NewDiff(provision.DiffTypeModify, "file", s.installPath, short(current), short(s.sha256)), nil
}

// Apply downloads, checks and installs the binary. The download is always discarded.
func (s *BinaryStep) Apply(ctx provision.RunContext) error {
	path, err := s.fetcher.Download(ctx.Context(), s.url)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer func() {
		if derr := s.fetcher.Discard(path); derr != nil {
			s.logger.Warn(ctx.Context(), "could not remove download",
				ports.F("path", path), ports.F("error", derr.Error()))
		}
	}()

	return provision.Sequence(ctx,
		provision.Op("checksum", func(provision.RunContext) error {
			got, err := s.fs.FileHash(path)
			if err != nil {
				return err
			}
			if got != s.sha256 {
				return provision.Unsupported("checksum mismatch for %s: got %s, want %s", s.url, got, s.sha256)
			}
			return nil
		}),
		provision.Op("install", func(provision.RunContext) error {
			if err := s.fs.MkdirAll(filepath.Dir(s.installPath), 0o755); err != nil {
				return err
			}
			if err := s.fs.CopyFile(path, s.installPath); err != nil {
				return err
			}
			return s.fs.Chmod(s.installPath, 0o755)
		}),
	)
}

// Verify re-hashes the installed file.
func (s *BinaryStep) Verify(_ provision.RunContext) (bool, error) {
	return s.installed()
}

// Explain provides a human-readable explanation.
func (s *BinaryStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Install the telemetry agent",
		fmt.Sprintf("Downloads %s and installs it to %s if its SHA-256 is %s.", s.url, s.installPath, s.sha256),
		nil,
	)
}

func (s *BinaryStep) installed() (bool, error) {
	got, err := s.fs.FileHash(s.installPath)
	if err != nil {
		return false, err
	}
	return got == s.sha256, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

var _ provision.PrivilegedStep = (*BinaryStep)(nil)
