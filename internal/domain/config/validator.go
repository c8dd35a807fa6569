package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/debprep/internal/ports"
	"github.com/felixgeelhaar/debprep/internal/validation"
)

var (
	fingerprintRegex = regexp.MustCompile(`^[0-9A-Fa-f]{40}$`)
	sha256Regex      = regexp.MustCompile(`^[0-9a-f]{64}$`)
	identifierRegex  = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.@-]*$`)
	envNameRegex     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	list := NewErrorList()

	requireAbs(list, "state_dir", c.StateDir)
	requireAbs(list, "marker_path", c.MarkerPath)
	validateRetry(list, "retry", c.Retry)
	for id, o := range c.Retry.Overrides {
		if o.MaxAttempts < 0 || (o.Multiplier != 0 && o.Multiplier < 1) {
			list.AddValidation("retry.overrides."+id, "max_attempts must not be negative and multiplier must be at least 1", "")
		}
	}

	requireAbs(list, "repository.sources_path", c.Repository.SourcesPath)
	requireAbs(list, "repository.index_stamp", c.Repository.IndexStamp)
	requireURL(list, "repository.mirror", c.Repository.Mirror)
	requireURL(list, "repository.security_mirror", c.Repository.SecurityMirror)
	for i, comp := range c.Repository.Components {
		requireIdentifier(list, fmt.Sprintf("repository.components[%d]", i), comp)
	}
	if c.Repository.Codename != "" {
		requireIdentifier(list, "repository.codename", c.Repository.Codename)
	}

	requirePackages(list, "baseline.packages", c.Baseline.Packages)

	requireIdentifier(list, "congestion.algorithm", c.Congestion.Algorithm)
	requireIdentifier(list, "congestion.qdisc", c.Congestion.Qdisc)
	requireIdentifier(list, "congestion.module", c.Congestion.Module)
	requireAbs(list, "congestion.sysctl_file", c.Congestion.SysctlFile)

	requireURL(list, "docker.key_url", c.Docker.KeyURL)
	if !fingerprintRegex.MatchString(strings.ReplaceAll(c.Docker.KeyFingerprint, " ", "")) {
		list.AddValidation("docker.key_fingerprint", "must be 40 hexadecimal characters",
			"Copy the fingerprint from the vendor's install documentation.")
	}
	requireAbs(list, "docker.keyring_path", c.Docker.KeyringPath)
	requireURL(list, "docker.repo_url", c.Docker.RepoURL)
	requireAbs(list, "docker.list_path", c.Docker.ListPath)
	requirePackages(list, "docker.packages", c.Docker.Packages)
	requireUnit(list, "docker.service", c.Docker.Service)
	if err := validation.ValidateUserName(c.Docker.Group); err != nil {
		list.AddValidation("docker.group", err.Error(), "")
	}
	if c.Docker.Operator != "" {
		if err := validation.ValidateUserName(c.Docker.Operator); err != nil {
			list.AddValidation("docker.operator", err.Error(), "")
		}
	}

	if c.Telemetry.Enabled {
		c.validateTelemetry(list)
	}

	requirePackages(list, "monitoring.package", []string{c.Monitoring.Package})
	requireUnit(list, "monitoring.service", c.Monitoring.Service)

	if c.Metrics.Enabled {
		requireAbs(list, "metrics.textfile_dir", c.Metrics.TextfileDir)
	}

	if _, err := ports.ParseLevel(c.Log.Level); err != nil {
		list.AddValidation("log.level", err.Error(), "Use debug, info, warn or error.")
	}

	return list.AsError()
}

func (c *Config) validateTelemetry(list *ErrorList) {
	t := c.Telemetry
	if err := validation.ValidateUserName(t.Account); err != nil {
		list.AddValidation("telemetry.account", err.Error(),
			"Use lowercase letters, digits, '-' or '_', starting with a letter.")
	}
	if t.PreferredUID < 100 || t.PreferredUID > 59999 {
		list.AddValidation("telemetry.preferred_uid", "must be between 100 and 59999", "")
	}
	requireURL(list, "telemetry.binary_url", t.BinaryURL)
	if !sha256Regex.MatchString(t.SHA256) {
		list.AddValidation("telemetry.sha256", "must be 64 lowercase hexadecimal characters",
			"Set DEBPREP_TELEMETRY_SHA256 in the env file.")
	}
	requireAbs(list, "telemetry.install_path", t.InstallPath)
	if err := validation.ValidateSessionName(t.Session); err != nil {
		list.AddValidation("telemetry.session", err.Error(), "")
	}
	for name := range t.Env {
		if !envNameRegex.MatchString(name) {
			list.AddValidation("telemetry.env."+name, "is not a valid variable name", "")
		}
	}
}

func validateRetry(list *ErrorList, field string, r RetryConfig) {
	if r.MaxAttempts < 1 {
		list.AddValidation(field+".max_attempts", "must be at least 1", "")
	}
	if r.Backoff < 0 || r.MaxBackoff < 0 {
		list.AddValidation(field+".backoff", "must not be negative", "")
	}
	if r.MaxBackoff < r.Backoff {
		list.AddValidation(field+".max_backoff", "must not be shorter than backoff", "")
	}
	if r.Multiplier < 1 {
		list.AddValidation(field+".multiplier", "must be at least 1", "")
	}
}

func requireAbs(list *ErrorList, field, path string) {
	if path == "" || !filepath.IsAbs(path) {
		list.AddValidation(field, "must be an absolute path", "")
		return
	}
	if err := validation.ValidatePath(path); err != nil {
		list.AddValidation(field, err.Error(), "")
	}
}

func requireURL(list *ErrorList, field, url string) {
	if err := validation.ValidateURL(url); err != nil {
		list.AddValidation(field, err.Error(), "Use a plain http:// or https:// URL.")
	}
}

func requireUnit(list *ErrorList, field, unit string) {
	if err := validation.ValidateUnitName(unit); err != nil {
		list.AddValidation(field, err.Error(), "")
	}
}

func requireIdentifier(list *ErrorList, field, value string) {
	if !identifierRegex.MatchString(value) {
		list.AddValidation(field, fmt.Sprintf("invalid value %q", value), "")
	}
}

func requirePackages(list *ErrorList, field string, names []string) {
	if len(names) == 0 {
		list.AddValidation(field, "must not be empty", "")
		return
	}
	for i, name := range names {
		if err := validation.ValidatePackageName(name); err != nil {
			list.AddValidation(fmt.Sprintf("%s[%d]", field, i), err.Error(), "")
		}
	}
}
