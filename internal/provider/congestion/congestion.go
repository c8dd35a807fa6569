// Package congestion switches TCP congestion control to BBR with the fq qdisc.
package congestion

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/debprep/internal/domain/config"
	"github.com/felixgeelhaar/debprep/internal/domain/platform"
	"github.com/felixgeelhaar/debprep/internal/domain/provision"
	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Kernel parameters managed by this step.
const (
	KeyAlgorithm = "net.ipv4.tcp_congestion_control"
	KeyQdisc     = "net.core.default_qdisc"
)

// TuneStep loads the congestion-control module and persists the sysctl settings.
type TuneStep struct {
	id       provision.StepID
	cfg      config.CongestionConfig
	fs       ports.FileSystem
	sysctl   ports.Sysctl
	platform *platform.Platform
}

// NewTuneStep creates the sysctl:congestion step.
func NewTuneStep(cfg config.CongestionConfig, fsys ports.FileSystem, sysctl ports.Sysctl, plat *platform.Platform) *TuneStep {
	return &TuneStep{
		id:       provision.MustNewStepID("sysctl:congestion"),
		cfg:      cfg,
		fs:       fsys,
		sysctl:   sysctl,
		platform: plat,
	}
}

// ID returns the step identifier.
func (s *TuneStep) ID() provision.StepID {
	return s.id
}

// RequiresRoot reports that module loading and /etc/sysctl.d need root.
func (s *TuneStep) RequiresRoot() bool {
	return true
}

// Guard rejects kernels without the algorithm and containers that share the host kernel.
func (s *TuneStep) Guard(_ provision.RunContext) error {
	if s.platform.IsContainer() {
		return provision.Unsupported("kernel parameters cannot be tuned from inside a container")
	}
	if !s.platform.KernelAtLeast(s.cfg.MinKernel) {
		return provision.Unsupported("%s needs kernel %s or newer, running %q",
			s.cfg.Algorithm, s.cfg.MinKernel, s.platform.Kernel())
	}
	return nil
}

// Check is satisfied when the live values match and the settings survive a reboot.
func (s *TuneStep) Check(_ provision.RunContext) (provision.StepStatus, error) {
	live, err := s.liveMatches()
	if err != nil {
		return provision.StatusUnknown, err
	}
	if !live {
		return provision.StatusNeedsApply, nil
	}
	persisted, err := s.filePersisted()
	if err != nil {
		return provision.StatusUnknown, err
	}
	if !persisted {
		return provision.StatusNeedsApply, nil
	}
	return provision.StatusSatisfied, nil
}

// Plan returns the diff for this step.
func (s *TuneStep) Plan(_ provision.RunContext) (provision.Diff, error) {
	current, err := s.sysctl.Get(KeyAlgorithm)
	if err != nil {
		current = "unknown"
	}
	return provision.NewDiff(provision.DiffTypeModify, "sysctl", KeyAlgorithm, current, s.cfg.Algorithm), nil
}

// Apply loads the module, writes the sysctl.d file and applies it.
func (s *TuneStep) Apply(ctx provision.RunContext) error {
	return provision.Sequence(ctx,
		provision.Op("load module", func(rc provision.RunContext) error {
			if s.cfg.Module == "" {
				return nil
			}
			return s.sysctl.LoadModule(rc.Context(), s.cfg.Module)
		}),
		provision.Op("write "+s.cfg.SysctlFile, func(provision.RunContext) error {
			data, err := s.Render()
			if err != nil {
				return err
			}
			if err := s.fs.MkdirAll(filepath.Dir(s.cfg.SysctlFile), 0o755); err != nil {
				return err
			}
			return s.fs.WriteFileAtomic(s.cfg.SysctlFile, data, 0o644)
		}),
		provision.Op("apply", func(rc provision.RunContext) error {
			return s.sysctl.Apply(rc.Context(), s.cfg.SysctlFile)
		}),
	)
}

// Verify reads the live values from the kernel.
func (s *TuneStep) Verify(_ provision.RunContext) (bool, error) {
	return s.liveMatches()
}

// Explain provides a human-readable explanation.
func (s *TuneStep) Explain() provision.Explanation {
	return provision.NewExplanation(
		"Enable "+s.cfg.Algorithm+" congestion control",
		fmt.Sprintf("Sets %s=%s and %s=%s and persists them in %s.",
			KeyAlgorithm, s.cfg.Algorithm, KeyQdisc, s.cfg.Qdisc, s.cfg.SysctlFile),
		[]string{"https://www.kernel.org/doc/Documentation/networking/ip-sysctl.txt"},
	)
}

// Render returns the sysctl.d file content.
func (s *TuneStep) Render() ([]byte, error) {
	f := ini.Empty()
	sec := f.Section(ini.DefaultSection)
	qdisc, err := sec.NewKey(KeyQdisc, s.cfg.Qdisc)
	if err != nil {
		return nil, err
	}
	qdisc.Comment = "# Managed by debprep"
	if _, err := sec.NewKey(KeyAlgorithm, s.cfg.Algorithm); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *TuneStep) liveMatches() (bool, error) {
	alg, err := s.sysctl.Get(KeyAlgorithm)
	if err != nil {
		return false, err
	}
	qdisc, err := s.sysctl.Get(KeyQdisc)
	if err != nil {
		return false, err
	}
	return alg == s.cfg.Algorithm && qdisc == s.cfg.Qdisc, nil
}

// filePersisted parses the sysctl.d file rather than comparing bytes, so
// hand-edited spacing and comments are accepted.
func (s *TuneStep) filePersisted() (bool, error) {
	data, err := s.fs.ReadFile(s.cfg.SysctlFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	f, err := ini.Load(data)
	if err != nil {
		return false, nil
	}
	sec := f.Section(ini.DefaultSection)
	return sec.Key(KeyAlgorithm).String() == s.cfg.Algorithm &&
		sec.Key(KeyQdisc).String() == s.cfg.Qdisc, nil
}

var (
	_ provision.GuardedStep    = (*TuneStep)(nil)
	_ provision.PrivilegedStep = (*TuneStep)(nil)
)
