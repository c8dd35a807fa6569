// Package platform detects the host the provisioning steps run on.
package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// OS represents the operating system type.
type OS string

const (
	// OSLinux is Linux.
	OSLinux OS = "linux"
	// OSUnknown is any other operating system.
	OSUnknown OS = "unknown"
)

// Environment represents the execution environment.
type Environment string

const (
	// EnvNative is a bare-metal or virtual machine host.
	EnvNative Environment = "native"
	// EnvContainer is a Docker or containerd container, where kernel
	// settings are usually read-only.
	EnvContainer Environment = "container"
	// EnvWSL is Windows Subsystem for Linux.
	EnvWSL Environment = "wsl"
)

// Platform contains detected platform information.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	release     Release
	kernel      string
}

const (
	osReleasePath     = "/etc/os-release"
	kernelReleasePath = "/proc/sys/kernel/osrelease"
)

var (
	detected     *Platform
	detectOnce   sync.Once
	detectedErr  error
	testPlatform *Platform
	testMu       sync.RWMutex
)

// Detect returns the current platform information.
// Results are cached after the first call.
func Detect() (*Platform, error) {
	testMu.RLock()
	p := testPlatform
	testMu.RUnlock()
	if p != nil {
		return p, nil
	}

	detectOnce.Do(func() {
		detected, detectedErr = detect()
	})
	return detected, detectedErr
}

// SetTestPlatform sets a fixed platform for testing.
// Pass nil to reset to actual detection.
func SetTestPlatform(p *Platform) {
	testMu.Lock()
	defer testMu.Unlock()
	testPlatform = p
}

func detect() (*Platform, error) {
	p := &Platform{
		arch:        DebianArch(runtime.GOARCH),
		environment: EnvNative,
	}

	if runtime.GOOS != "linux" {
		p.os = OSUnknown
		return p, nil
	}
	p.os = OSLinux

	release, err := ReadRelease(osReleasePath)
	if err != nil {
		return nil, err
	}
	p.release = release

	if data, err := os.ReadFile(kernelReleasePath); err == nil {
		p.kernel = strings.TrimSpace(string(data))
	}

	p.environment = detectEnvironment()
	return p, nil
}

func detectEnvironment() Environment {
	if data, err := os.ReadFile("/proc/version"); err == nil {
		version := strings.ToLower(string(data))
		if strings.Contains(version, "microsoft") || strings.Contains(version, "wsl") {
			return EnvWSL
		}
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return EnvContainer
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return EnvNative
	}
	if strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd") {
		return EnvContainer
	}
	return EnvNative
}

// DebianArch maps a Go architecture name to the dpkg architecture name.
func DebianArch(goarch string) string {
	switch goarch {
	case "arm":
		return "armhf"
	case "386":
		return "i386"
	case "ppc64le":
		return "ppc64el"
	default:
		return goarch
	}
}

// OS returns the operating system.
func (p *Platform) OS() OS {
	return p.os
}

// Arch returns the dpkg architecture (amd64, arm64, armhf, ...).
func (p *Platform) Arch() string {
	return p.arch
}

// Environment returns the execution environment.
func (p *Platform) Environment() Environment {
	return p.environment
}

// Release returns the parsed os-release information.
func (p *Platform) Release() Release {
	return p.release
}

// Kernel returns the running kernel release, e.g. "6.1.0-18-amd64".
func (p *Platform) Kernel() string {
	return p.kernel
}

// IsLinux returns true if running on Linux.
func (p *Platform) IsLinux() bool {
	return p.os == OSLinux
}

// IsDebian returns true for Debian and distributions that declare ID_LIKE=debian.
func (p *Platform) IsDebian() bool {
	return p.release.IsDebianFamily()
}

// IsContainer returns true inside a container.
func (p *Platform) IsContainer() bool {
	return p.environment == EnvContainer
}

// KernelAtLeast reports whether the running kernel is at least minimum.
func (p *Platform) KernelAtLeast(minimum string) bool {
	return KernelAtLeast(p.kernel, minimum)
}

// HasCommand checks if a command is available in PATH.
func (p *Platform) HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// String returns a human-readable description.
func (p *Platform) String() string {
	parts := []string{string(p.os), p.arch}
	if p.release.ID != "" {
		name := p.release.ID
		if p.release.Codename != "" {
			name += "-" + p.release.Codename
		}
		parts = append(parts, name)
	}
	if p.environment != EnvNative {
		parts = append(parts, string(p.environment))
	}
	return strings.Join(parts, "/")
}

// New creates a Platform with specified values (for testing).
func New(os OS, arch string, env Environment, release Release, kernel string) *Platform {
	return &Platform{
		os:          os,
		arch:        arch,
		environment: env,
		release:     release,
		kernel:      kernel,
	}
}

// IsRoot reports whether the process runs with effective UID 0.
func IsRoot() bool {
	return os.Geteuid() == 0
}
