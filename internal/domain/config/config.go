// Package config loads the debprep configuration.
//
// The configuration is a single YAML or TOML document. Every field has a
// default, so an empty or missing file yields a working Debian setup.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

// Config is the complete tool configuration.
type Config struct {
	StateDir   string           `yaml:"state_dir" toml:"state_dir"`
	MarkerPath string           `yaml:"marker_path" toml:"marker_path"`
	Retry      RetryConfig      `yaml:"retry" toml:"retry"`
	Repository RepositoryConfig `yaml:"repository" toml:"repository"`
	Baseline   BaselineConfig   `yaml:"baseline" toml:"baseline"`
	Congestion CongestionConfig `yaml:"congestion" toml:"congestion"`
	Docker     DockerConfig     `yaml:"docker" toml:"docker"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" toml:"telemetry"`
	Monitoring MonitoringConfig `yaml:"monitoring" toml:"monitoring"`
	Metrics    MetricsConfig    `yaml:"metrics" toml:"metrics"`
	Log        LogConfig        `yaml:"log" toml:"log"`
}

// RetryConfig is the default retry policy plus per-step overrides keyed by step ID.
type RetryConfig struct {
	MaxAttempts int                    `yaml:"max_attempts" toml:"max_attempts"`
	Backoff     Duration               `yaml:"backoff" toml:"backoff"`
	MaxBackoff  Duration               `yaml:"max_backoff" toml:"max_backoff"`
	Multiplier  float64                `yaml:"multiplier" toml:"multiplier"`
	Overrides   map[string]RetryConfig `yaml:"overrides,omitempty" toml:"overrides,omitempty"`
}

// RepositoryConfig controls the rendered /etc/apt/sources.list.
type RepositoryConfig struct {
	SourcesPath    string   `yaml:"sources_path" toml:"sources_path"`
	Mirror         string   `yaml:"mirror" toml:"mirror"`
	SecurityMirror string   `yaml:"security_mirror" toml:"security_mirror"`
	Components     []string `yaml:"components" toml:"components"`
	// Codename overrides VERSION_CODENAME from /etc/os-release.
	Codename string `yaml:"codename,omitempty" toml:"codename,omitempty"`
	Sources  bool   `yaml:"deb_src" toml:"deb_src"`
	// IndexStamp records the digest of the sources last indexed by apt-get update.
	IndexStamp string `yaml:"index_stamp" toml:"index_stamp"`
}

// BaselineConfig is the first-run package set.
type BaselineConfig struct {
	Packages []string `yaml:"packages" toml:"packages"`
}

// CongestionConfig controls TCP congestion-control tuning.
type CongestionConfig struct {
	Algorithm  string `yaml:"algorithm" toml:"algorithm"`
	Qdisc      string `yaml:"qdisc" toml:"qdisc"`
	Module     string `yaml:"module" toml:"module"`
	MinKernel  string `yaml:"min_kernel" toml:"min_kernel"`
	SysctlFile string `yaml:"sysctl_file" toml:"sysctl_file"`
}

// DockerConfig controls the Docker engine install.
type DockerConfig struct {
	KeyURL         string   `yaml:"key_url" toml:"key_url"`
	KeyFingerprint string   `yaml:"key_fingerprint" toml:"key_fingerprint"`
	KeyringPath    string   `yaml:"keyring_path" toml:"keyring_path"`
	RepoURL        string   `yaml:"repo_url" toml:"repo_url"`
	ListPath       string   `yaml:"list_path" toml:"list_path"`
	Packages       []string `yaml:"packages" toml:"packages"`
	Service        string   `yaml:"service" toml:"service"`
	Architectures  []string `yaml:"architectures" toml:"architectures"`
	Group          string   `yaml:"group" toml:"group"`
	// Operator is added to Group; empty means $SUDO_USER.
	Operator string `yaml:"operator,omitempty" toml:"operator,omitempty"`
}

// TelemetryConfig controls the telemetry agent account, binary and session.
type TelemetryConfig struct {
	Enabled      bool              `yaml:"enabled" toml:"enabled"`
	Account      string            `yaml:"account" toml:"account"`
	PreferredUID int               `yaml:"preferred_uid" toml:"preferred_uid"`
	BinaryURL    string            `yaml:"binary_url" toml:"binary_url"`
	SHA256       string            `yaml:"sha256" toml:"sha256"`
	InstallPath  string            `yaml:"install_path" toml:"install_path"`
	Session      string            `yaml:"session" toml:"session"`
	Args         []string          `yaml:"args,omitempty" toml:"args,omitempty"`
	Env          map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
}

// MonitoringConfig controls the monitoring agent.
type MonitoringConfig struct {
	Package string `yaml:"package" toml:"package"`
	Service string `yaml:"service" toml:"service"`
}

// MetricsConfig controls the node-exporter textfile written after each run.
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	TextfileDir string `yaml:"textfile_dir" toml:"textfile_dir"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	JSON  bool   `yaml:"json" toml:"json"`
}

// Duration is a time.Duration written as a Go duration string ("5s", "1m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by TOML).
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String returns the Go duration string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Policy converts the config into a retry policy.
func (r RetryConfig) Policy() provision.RetryPolicy {
	return provision.RetryPolicy{
		MaxAttempts: r.MaxAttempts,
		Backoff:     r.Backoff.Std(),
		MaxBackoff:  r.MaxBackoff.Std(),
		Multiplier:  r.Multiplier,
	}.Normalize()
}

// PolicyFor returns the policy for a step, applying any override. Zero fields
// in an override inherit the default.
func (r RetryConfig) PolicyFor(stepID string) provision.RetryPolicy {
	o, ok := r.Overrides[stepID]
	if !ok {
		return r.Policy()
	}
	merged := r
	if o.MaxAttempts != 0 {
		merged.MaxAttempts = o.MaxAttempts
	}
	if o.Backoff != 0 {
		merged.Backoff = o.Backoff
	}
	if o.MaxBackoff != 0 {
		merged.MaxBackoff = o.MaxBackoff
	}
	if o.Multiplier != 0 {
		merged.Multiplier = o.Multiplier
	}
	return merged.Policy()
}
