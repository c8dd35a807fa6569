package platform

import (
	"strings"

	"golang.org/x/mod/semver"
)

// KernelVersion converts a kernel release such as "6.1.0-18-amd64" into a
// canonical semantic version ("v6.1.0"). It returns "" when no version can be
// extracted.
func KernelVersion(release string) string {
	release = strings.TrimSpace(release)
	end := 0
	for end < len(release) && (release[end] == '.' || (release[end] >= '0' && release[end] <= '9')) {
		end++
	}
	core := strings.Trim(release[:end], ".")
	if core == "" {
		return ""
	}

	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	v := "v" + strings.Join(parts, ".")
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// KernelAtLeast reports whether release is at least minimum. An unparsable
// release is never considered new enough.
func KernelAtLeast(release, minimum string) bool {
	have := KernelVersion(release)
	want := KernelVersion(minimum)
	if have == "" || want == "" {
		return false
	}
	return semver.Compare(have, want) >= 0
}
