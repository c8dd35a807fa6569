// Package repository renders /etc/apt/sources.list for the running Debian release.
package repository

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/platform"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// BackupSuffix is appended to the sources path for the one-time backup.
const BackupSuffix = ".debprep.bak"

// legacySecurity lists releases whose security suite is "<codename>/updates".
var legacySecurity = []string{"jessie", "stretch", "buster"}

// preFirmware lists releases older than the non-free-firmware component.
var preFirmware = []string{"jessie", "stretch", "buster", "bullseye"}

// SourcesStep replaces sources.list with the configured mirrors and refreshes the index.
type SourcesStep struct {
	id       provision.StepID
	cfg      config.RepositoryConfig
	fs       ports.FileSystem
	packages ports.PackageManager
	platform *platform.Platform
}

// NewSourcesStep creates the apt:sources step.
func NewSourcesStep(cfg config.RepositoryConfig, fsys ports.FileSystem, packages ports.PackageManager, plat *platform.Platform) *SourcesStep {
	return &SourcesStep{
		id:       provision.MustNewStepID("apt:sources"),
		cfg:      cfg,
		fs:       fsys,
		packages: packages,
		platform: plat,
	}
}

// ID returns the step identifier.
func (s *SourcesStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that /etc/apt is root-owned.
func (s *SourcesStep) RequiresRoot() bool {
	return true
}

// Guard rejects non-Debian hosts and hosts without a known codename.
func (s *SourcesStep) Guard(_ provision.RunContext) error {
	if !s.platform.IsDebian() {
		return provision.Unsupported("apt sources can only be managed on Debian, found %q", s.platform.Release().ID)
	}
	if s.codename() == "" {
		return provision.Unsupported("cannot determine the Debian codename; set repository.codename")
	}
	return nil
}

// Check requires the rendered file on disk and an index built from it.
func (s *SourcesStep) Check(_ provision.RunContext) (provision.StepStatus, error) {
	managed, err := s.isManaged()
	if err != nil {
		return provision.StatusUnknown, err
	}
	if !managed {
		return provision.StatusNeedsApply, nil
	}
	stamp, err := s.fs.ReadFile(s.cfg.IndexStamp)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return provision.StatusNeedsApply, nil
		}
		return provision.StatusUnknown, err
	}
	if string(bytes.TrimSpace(stamp)) == s.digest() {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// isManaged reports whether the sources file already holds the rendered content.
func (s *SourcesStep) isManaged() (bool, error) {
	current, err := s.fs.ReadFile(s.cfg.SourcesPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(current, s.Render()), nil
}

func (s *SourcesStep) digest() string {
	sum := sha256.Sum256(s.Render())
	return hex.EncodeToString(sum[:])
}

// Plan returns the diff for this step.
func (s *SourcesStep) Plan(_ provision.RunContext) (provision.Diff, error) {
	want := s.codename() + " from " + s.cfg.Mirror
	if !s.fs.Exists(s.cfg.SourcesPath) {
		return provision.NewDiff(provision.DiffTypeAdd, "file", s.cfg.SourcesPath, "", want), nil
	}
	return provision.NewDiff(provision.DiffTypeModify, "file", s.cfg.SourcesPath, "original", want), nil
}

// Apply backs up the original once, writes the new file, refreshes the index
// and records which content was indexed.
func (s *SourcesStep) Apply(ctx provision.RunContext) error {
	return provision.Sequence(ctx,
		provision.Op("backup", func(provision.RunContext) error { return s.backup() }),
		provision.Op("write", func(provision.RunContext) error {
			return s.fs.WriteFileAtomic(s.cfg.SourcesPath, s.Render(), 0o644)
		}),
		provision.Op("update index", func(rc provision.RunContext) error {
			return s.packages.UpdateIndex(rc.Context())
		}),
		provision.Op("record index", func(provision.RunContext) error {
			if err := s.fs.MkdirAll(filepath.Dir(s.cfg.IndexStamp), 0o755); err != nil {
				return err
			}
			return s.fs.WriteFileAtomic(s.cfg.IndexStamp, []byte(s.digest()+"\n"), 0o644)
		}),
	)
}

// Verify rereads the file.
func (s *SourcesStep) Verify(ctx provision.RunContext) (bool, error) {
	status, err := s.Check(ctx)
	return status == provision.StatusSatisfied, err
}

// Explain provides a human-readable explanation.
func (s *SourcesStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Configure apt repositories",
		fmt.Sprintf("Points %s at %s for %s and keeps the original as %s.",
			s.cfg.SourcesPath, s.cfg.Mirror, s.codename(), s.BackupPath()),
		[]string{"https://wiki.debian.org/SourcesList"},
	)
}

// BackupPath returns where the original file is preserved.
func (s *SourcesStep) BackupPath() string {
	return s.cfg.SourcesPath + BackupSuffix
}

// backup copies the original file once; an existing backup is never
// overwritten and a file that already holds the rendered content is not an
// original.
func (s *SourcesStep) backup() error {
	if s.fs.Exists(s.BackupPath()) {
		return nil
	}
	managed, err := s.isManaged()
	if err != nil {
		return err
	}
	if managed || !s.fs.Exists(s.cfg.SourcesPath) {
		return nil
	}
	if err := s.fs.CopyFile(s.cfg.SourcesPath, s.BackupPath()); err != nil {
		return fmt.Errorf("back up %s: %w", s.cfg.SourcesPath, err)
	}
	return nil
}

func (s *SourcesStep) codename() string {
	if s.cfg.Codename != "" {
		return s.cfg.Codename
	}
	return s.platform.Release().Codename
}

// Render returns the sources.list content for the configured mirrors.
func (s *SourcesStep) Render() []byte {
	codename := s.codename()
	components := s.components(codename)

	security := codename + "-security"
	if slices.Contains(legacySecurity, codename) {
		security = codename + "/updates"
	}

	suites := [][2]string{
		{s.cfg.Mirror, codename},
		{s.cfg.Mirror, codename + "-updates"},
		{s.cfg.SecurityMirror, security},
	}

	var b strings.Builder
	b.WriteString("# Managed by debprep. The original file is kept as sources.list" + BackupSuffix + ".\n")
	for _, suite := range suites {
		fmt.Fprintf(&b, "deb %s %s %s\n", suite[0], suite[1], components)
		if s.cfg.Sources {
			fmt.Fprintf(&b, "deb-src %s %s %s\n", suite[0], suite[1], components)
		}
	}
	return []byte(b.String())
}

func (s *SourcesStep) components(codename string) string {
	out := make([]string, 0, len(s.cfg.Components))
	for _, c := range s.cfg.Components {
		if c == "non-free-firmware" && slices.Contains(preFirmware, codename) {
			continue
		}
		out = append(out, c)
	}
	return strings.Join(out, " ")
}

var (
	_ provision.GuardedStep    = (*SourcesStep)(nil)
	_ provision.PrivilegedStep = (*SourcesStep)(nil)
)
