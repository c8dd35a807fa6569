package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Loader loads configuration from the filesystem.
type Loader struct {
	readFile func(string) ([]byte, error)
}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{readFile: os.ReadFile}
}

// Load reads the config at path, applies defaults and validates the result.
// An empty path, or the default path when it does not exist, yields the defaults.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		return l.finish(Default())
	}

	data, err := l.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if path == DefaultConfigPath {
				return l.finish(Default())
			}
			return nil, NewConfigNotFoundError(path)
		}
		return nil, NewUserError(ErrCodeConfigInvalid, "failed to read configuration file").
			WithContext(path).
			WithUnderlying(err)
	}

	cfg, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	return l.finish(cfg)
}

func (l *Loader) finish(cfg *Config) (*Config, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data in the format implied by the extension of path.
// Fields missing from data keep their default values.
func Parse(path string, data []byte) (*Config, error) {
	cfg := Default()
	// marker_path follows state_dir unless set explicitly
	cfg.MarkerPath = ""

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewYAMLParseError(path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, NewConfigParseError(path, err)
		}
	default:
		return nil, NewUnsupportedFormatError(path)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
