package config

import (
	"path/filepath"
	"time"
)

// Default locations.
const (
	DefaultStateDir    = "/var/lib/debprep"
	DefaultMarkerName  = "initialized"
	DefaultConfigPath  = "/etc/debprep/config.yaml"
	DefaultSourcesPath = "/etc/apt/sources.list"
	DefaultIndexStamp  = "apt-index"
)

// DockerKeyFingerprint is the published fingerprint of Docker's release signing key.
const DockerKeyFingerprint = "9DC858229FC7DD38854AE2D88D81803C0EBFCD88"

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		StateDir:   DefaultStateDir,
		MarkerPath: filepath.Join(DefaultStateDir, DefaultMarkerName),
		Retry: RetryConfig{
			MaxAttempts: 3,
			Backoff:     Duration(5 * time.Second),
			MaxBackoff:  Duration(time.Minute),
			Multiplier:  2,
		},
		Repository: RepositoryConfig{
			SourcesPath:    DefaultSourcesPath,
			IndexStamp:     filepath.Join(DefaultStateDir, DefaultIndexStamp),
			Mirror:         "http://deb.debian.org/debian",
			SecurityMirror: "http://security.debian.org/debian-security",
			Components:     []string{"main", "contrib", "non-free", "non-free-firmware"},
		},
		Baseline: BaselineConfig{
			Packages: []string{
				"curl", "wget", "ca-certificates", "gnupg",
				"sudo", "tmux", "htop", "unzip",
			},
		},
		Congestion: CongestionConfig{
			Algorithm:  "bbr",
			Qdisc:      "fq",
			Module:     "tcp_bbr",
			MinKernel:  "4.9",
			SysctlFile: "/etc/sysctl.d/60-debprep-congestion.conf",
		},
		Docker: DockerConfig{
			KeyURL:         "https://download.docker.com/linux/debian/gpg",
			KeyFingerprint: DockerKeyFingerprint,
			KeyringPath:    "/etc/apt/keyrings/docker.gpg",
			RepoURL:        "https://download.docker.com/linux/debian",
			ListPath:       "/etc/apt/sources.list.d/docker.list",
			Packages: []string{
				"docker-ce", "docker-ce-cli", "containerd.io",
				"docker-buildx-plugin", "docker-compose-plugin",
			},
			Service:       "docker",
			Architectures: []string{"amd64", "arm64", "armhf"},
			Group:         "docker",
		},
		Telemetry: TelemetryConfig{
			Account:      "telemetry",
			PreferredUID: 1500,
			InstallPath:  "/usr/local/bin/telemetry-agent",
			Session:      "telemetry",
		},
		Monitoring: MonitoringConfig{
			Package: "prometheus-node-exporter",
			Service: "prometheus-node-exporter",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			TextfileDir: "/var/lib/prometheus/node-exporter",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills zero fields of c from Default().
func (c *Config) applyDefaults() {
	d := Default()

	if c.StateDir == "" {
		c.StateDir = d.StateDir
	}
	if c.MarkerPath == "" {
		c.MarkerPath = filepath.Join(c.StateDir, DefaultMarkerName)
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = d.Retry.MaxAttempts
	}
	if c.Retry.Backoff == 0 {
		c.Retry.Backoff = d.Retry.Backoff
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = d.Retry.MaxBackoff
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = d.Retry.Multiplier
	}

	r := &c.Repository
	setString(&r.SourcesPath, d.Repository.SourcesPath)
	setString(&r.Mirror, d.Repository.Mirror)
	setString(&r.SecurityMirror, d.Repository.SecurityMirror)
	setStrings(&r.Components, d.Repository.Components)
	if r.IndexStamp == "" {
		r.IndexStamp = filepath.Join(c.StateDir, DefaultIndexStamp)
	}

	setStrings(&c.Baseline.Packages, d.Baseline.Packages)

	cc := &c.Congestion
	setString(&cc.Algorithm, d.Congestion.Algorithm)
	setString(&cc.Qdisc, d.Congestion.Qdisc)
	setString(&cc.Module, d.Congestion.Module)
	setString(&cc.MinKernel, d.Congestion.MinKernel)
	setString(&cc.SysctlFile, d.Congestion.SysctlFile)

	dc := &c.Docker
	setString(&dc.KeyURL, d.Docker.KeyURL)
	setString(&dc.KeyFingerprint, d.Docker.KeyFingerprint)
	setString(&dc.KeyringPath, d.Docker.KeyringPath)
	setString(&dc.RepoURL, d.Docker.RepoURL)
	setString(&dc.ListPath, d.Docker.ListPath)
	setStrings(&dc.Packages, d.Docker.Packages)
	setString(&dc.Service, d.Docker.Service)
	setStrings(&dc.Architectures, d.Docker.Architectures)
	setString(&dc.Group, d.Docker.Group)

	tc := &c.Telemetry
	setString(&tc.Account, d.Telemetry.Account)
	if tc.PreferredUID == 0 {
		tc.PreferredUID = d.Telemetry.PreferredUID
	}
	setString(&tc.InstallPath, d.Telemetry.InstallPath)
	setString(&tc.Session, d.Telemetry.Session)

	setString(&c.Monitoring.Package, d.Monitoring.Package)
	setString(&c.Monitoring.Service, d.Monitoring.Service)

	setString(&c.Metrics.TextfileDir, d.Metrics.TextfileDir)

	setString(&c.Log.Level, d.Log.Level)
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setStrings(dst *[]string, def []string) {
	if len(*dst) == 0 {
		*dst = append([]string(nil), def...)
	}
}
