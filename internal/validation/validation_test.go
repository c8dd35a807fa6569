package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple name", input: "curl", wantErr: nil},
		{name: "with hyphen", input: "ca-certificates", wantErr: nil},
		{name: "with dot", input: "containerd.io", wantErr: nil},
		{name: "with plus", input: "g++", wantErr: nil},
		{name: "numeric start", input: "7zip", wantErr: nil},

		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "with semicolon", input: "curl;rm -rf", wantErr: ErrInvalidPackageName},
		{name: "with dollar", input: "curl$PATH", wantErr: ErrInvalidPackageName},
		{name: "with newline", input: "curl\nrm", wantErr: ErrInvalidPackageName},
		{name: "with space", input: "docker ce", wantErr: ErrInvalidPackageName},
		{name: "option injection", input: "-oDpkg::Pre-Invoke=x", wantErr: ErrInvalidPackageName},
		{name: "too long", input: strings.Repeat("a", 300), wantErr: ErrInvalidPackageName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePackageNames(t *testing.T) {
	assert.NoError(t, ValidatePackageNames([]string{"curl", "tmux"}))
	assert.ErrorIs(t, ValidatePackageNames([]string{"curl", "tmux;reboot"}), ErrInvalidPackageName)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "debian mirror", input: "http://deb.debian.org/debian"},
		{name: "docker key", input: "https://download.docker.com/linux/debian/gpg"},
		{name: "with port", input: "https://mirror.internal:8443/debian/"},
		{name: "host only", input: "https://example.com"},

		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "ftp", input: "ftp://example.com/file", wantErr: ErrInvalidURL},
		{name: "command substitution", input: "https://example.com/$(id)", wantErr: ErrInvalidURL},
		{name: "query string", input: "https://example.com/a?b=c", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "absolute", input: "/etc/apt/sources.list", wantErr: nil},
		{name: "relative", input: "config/debprep.yaml", wantErr: nil},
		{name: "with dots in name", input: "/etc/apt/keyrings/docker.gpg", wantErr: nil},

		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "path traversal", input: "../../../etc/shadow", wantErr: ErrPathTraversal},
		{name: "encoded traversal", input: "%2e%2e/%2e%2e/etc/shadow", wantErr: ErrPathTraversal},
		{name: "null byte", input: "/etc/passwd\x00.txt", wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUserName(t *testing.T) {
	assert.NoError(t, ValidateUserName("telemetry"))
	assert.NoError(t, ValidateUserName("_apt"))
	assert.ErrorIs(t, ValidateUserName(""), ErrEmptyInput)
	assert.ErrorIs(t, ValidateUserName("Telemetry"), ErrInvalidUserName)
	assert.ErrorIs(t, ValidateUserName("root;id"), ErrInvalidUserName)
	assert.ErrorIs(t, ValidateUserName("-o"), ErrInvalidUserName)
	assert.ErrorIs(t, ValidateUserName(strings.Repeat("a", 33)), ErrInvalidUserName)
}

func TestValidateUnitName(t *testing.T) {
	assert.NoError(t, ValidateUnitName("docker"))
	assert.NoError(t, ValidateUnitName("prometheus-node-exporter.service"))
	assert.NoError(t, ValidateUnitName("getty@tty1.service"))
	assert.ErrorIs(t, ValidateUnitName("--now"), ErrInvalidUnitName)
	assert.ErrorIs(t, ValidateUnitName("docker service"), ErrInvalidUnitName)
}

func TestValidateSysctlKey(t *testing.T) {
	assert.NoError(t, ValidateSysctlKey("net.ipv4.tcp_congestion_control"))
	assert.NoError(t, ValidateSysctlKey("net.core.default_qdisc"))
	assert.ErrorIs(t, ValidateSysctlKey("net"), ErrInvalidSysctlKey)
	assert.ErrorIs(t, ValidateSysctlKey("net/../../etc"), ErrInvalidSysctlKey)
}

func TestValidateSessionName(t *testing.T) {
	assert.NoError(t, ValidateSessionName("telemetry"))
	assert.ErrorIs(t, ValidateSessionName("a:b"), ErrInvalidSessionName)
	assert.ErrorIs(t, ValidateSessionName(""), ErrEmptyInput)
}

func TestContainsShellMeta(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"safe-string", false},
		{"with;semicolon", true},
		{"with|pipe", true},
		{"with&ampersand", true},
		{"with$dollar", true},
		{"with`backtick`", true},
		{"with(parens)", true},
		{"with{braces}", true},
		{"with<angle>", true},
		{"with\nnewline", true},
		{"with\\backslash", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsShellMeta(tt.input))
		})
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"/normal/path/file.txt", false},
		{"relative/path/file.txt", false},
		{"../etc/passwd", true},
		{"/path/../etc/passwd", false}, // filepath.Clean removes the ..
		{"%2e%2e/etc/passwd", true},
		{"%2E%2E/etc/passwd", true},
		{"file.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsPathTraversal(tt.input))
		})
	}
}
