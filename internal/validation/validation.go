// Package validation checks values before they are passed to system commands
// or written into system configuration files.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput         = errors.New("input cannot be empty")
	ErrInvalidPackageName = errors.New("invalid package name")
	ErrPathTraversal      = errors.New("path traversal detected")
	ErrInvalidPath        = errors.New("invalid path")
	ErrCommandInjection   = errors.New("potential command injection detected")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrInvalidUserName    = errors.New("invalid user name")
	ErrInvalidUnitName    = errors.New("invalid systemd unit name")
	ErrInvalidSysctlKey   = errors.New("invalid sysctl key")
	ErrInvalidSessionName = errors.New("invalid session name")
)

var (
	// packageNameRegex matches Debian package names, e.g. "ca-certificates", "g++", "containerd.io".
	packageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	// urlRegex matches plain http(s) URLs with an optional port and path.
	urlRegex = regexp.MustCompile(`^https?://[a-zA-Z0-9][a-zA-Z0-9.-]*(:[0-9]{1,5})?(/[a-zA-Z0-9._~%+/-]*)?$`)

	// userNameRegex follows the Debian adduser default NAME_REGEX.
	userNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]*$`)

	unitNameRegex    = regexp.MustCompile(`^[a-zA-Z0-9:_.@-]+$`)
	sysctlKeyRegex   = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_-]+)+$`)
	sessionNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidatePackageName validates an apt package name.
func ValidatePackageName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 256 {
		return fmt.Errorf("%w: name too long (max 256 characters)", ErrInvalidPackageName)
	}

	if !packageNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPackageName, name)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	return nil
}

// ValidatePackageNames validates every name in names.
func ValidatePackageNames(names []string) error {
	for _, name := range names {
		if err := ValidatePackageName(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURL validates a download or repository URL.
func ValidateURL(urlStr string) error {
	if urlStr == "" {
		return ErrEmptyInput
	}

	if len(urlStr) > 2048 {
		return fmt.Errorf("%w: URL too long", ErrInvalidURL)
	}

	if !urlRegex.MatchString(urlStr) {
		return fmt.Errorf("%w: %q must be a valid HTTP/HTTPS URL", ErrInvalidURL, urlStr)
	}

	if containsShellMeta(urlStr) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, urlStr)
	}

	return nil
}

// ValidatePath validates a file path and rejects traversal sequences.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	return nil
}

// ValidateUserName validates a system account or group name.
func ValidateUserName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}
	if len(name) > 32 {
		return fmt.Errorf("%w: %q is longer than 32 characters", ErrInvalidUserName, name)
	}
	if !userNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidUserName, name)
	}
	return nil
}

// ValidateUnitName validates a systemd unit name such as "docker" or "getty@tty1.service".
func ValidateUnitName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}
	if strings.HasPrefix(name, "-") || !unitNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidUnitName, name)
	}
	return nil
}

// ValidateSysctlKey validates a dotted sysctl key such as "net.ipv4.tcp_congestion_control".
func ValidateSysctlKey(key string) error {
	if key == "" {
		return ErrEmptyInput
	}
	if !sysctlKeyRegex.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidSysctlKey, key)
	}
	return nil
}

// ValidateSessionName validates a tmux session name.
func ValidateSessionName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}
	if !sessionNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionName, name)
	}
	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	normalized := filepath.Clean(path)

	for _, seg := range strings.Split(normalized, string(filepath.Separator)) {
		if seg == ".." {
			return true
		}
	}

	if strings.Contains(path, "%2e%2e") || strings.Contains(path, "%2E%2E") {
		return true
	}

	return false
}
