package platform

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Release is the subset of os-release(5) the steps care about.
type Release struct {
	ID         string
	IDLike     []string
	VersionID  string
	Codename   string
	PrettyName string
}

// ReadRelease loads an os-release file.
func ReadRelease(path string) (Release, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Release{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return releaseFrom(cfg), nil
}

// ParseRelease parses os-release content.
func ParseRelease(data []byte) (Release, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return Release{}, fmt.Errorf("failed to parse os-release: %w", err)
	}
	return releaseFrom(cfg), nil
}

func releaseFrom(cfg *ini.File) Release {
	sec := cfg.Section(ini.DefaultSection)
	r := Release{
		ID:         strings.ToLower(sec.Key("ID").String()),
		VersionID:  sec.Key("VERSION_ID").String(),
		Codename:   sec.Key("VERSION_CODENAME").String(),
		PrettyName: sec.Key("PRETTY_NAME").String(),
	}
	if like := sec.Key("ID_LIKE").String(); like != "" {
		r.IDLike = strings.Fields(strings.ToLower(like))
	}
	// Older Debian releases only carry the codename inside VERSION, e.g. "9 (stretch)".
	if r.Codename == "" {
		version := sec.Key("VERSION").String()
		if start := strings.Index(version, "("); start >= 0 {
			if end := strings.Index(version[start:], ")"); end > 0 {
				r.Codename = strings.ToLower(version[start+1 : start+end])
			}
		}
	}
	return r
}

// IsDebianFamily reports whether the release is Debian or derived from it.
func (r Release) IsDebianFamily() bool {
	if r.ID == "debian" {
		return true
	}
	for _, like := range r.IDLike {
		if like == "debian" {
			return true
		}
	}
	return false
}
