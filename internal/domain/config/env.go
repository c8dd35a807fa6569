package config

import (
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names read from the --env-file.
const (
	EnvPrefix             = "DEBPREP_"
	EnvLogLevel           = "DEBPREP_LOG_LEVEL"
	EnvDockerOperator     = "DEBPREP_DOCKER_OPERATOR"
	EnvTelemetryEnabled   = "DEBPREP_TELEMETRY_ENABLED"
	EnvTelemetryBinaryURL = "DEBPREP_TELEMETRY_BINARY_URL"
	EnvTelemetrySHA256    = "DEBPREP_TELEMETRY_SHA256"
	EnvTelemetryUID       = "DEBPREP_TELEMETRY_UID"
	// EnvTelemetryVarPrefix prefixes variables passed to the agent, e.g.
	// DEBPREP_TELEMETRY_ENV_TOKEN becomes TOKEN in the agent's session.
	EnvTelemetryVarPrefix = "DEBPREP_TELEMETRY_ENV_"
)

// LoadEnvFile reads a dotenv file without touching the process environment.
func LoadEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, NewEnvFileError(path, err)
	}
	return vars, nil
}

// ApplyEnv applies DEBPREP_* overrides to cfg.
func (c *Config) ApplyEnv(vars map[string]string) error {
	list := NewErrorList()

	for key, value := range vars {
		switch {
		case key == EnvLogLevel:
			c.Log.Level = value
		case key == EnvDockerOperator:
			c.Docker.Operator = value
		case key == EnvTelemetryEnabled:
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				list.AddValidation(key, "must be true or false", "")
				continue
			}
			c.Telemetry.Enabled = enabled
		case key == EnvTelemetryBinaryURL:
			c.Telemetry.BinaryURL = value
		case key == EnvTelemetrySHA256:
			c.Telemetry.SHA256 = strings.ToLower(value)
		case key == EnvTelemetryUID:
			uid, err := strconv.Atoi(value)
			if err != nil {
				list.AddValidation(key, "must be a number", "")
				continue
			}
			c.Telemetry.PreferredUID = uid
		case strings.HasPrefix(key, EnvTelemetryVarPrefix):
			name := strings.TrimPrefix(key, EnvTelemetryVarPrefix)
			if name == "" {
				continue
			}
			if c.Telemetry.Env == nil {
				c.Telemetry.Env = make(map[string]string)
			}
			c.Telemetry.Env[name] = value
		}
	}

	return list.AsError()
}
