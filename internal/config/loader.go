package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultFileName = "brigadier.yaml"
	DefaultEnvFile  = ".env"
	DefaultColor    = ColorAuto
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Color:   DefaultColor,
		EnvFile: DefaultEnvFile,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// LoadConfig reads and parses brigadier.yaml from the given project directory.
// If the file doesn't exist, returns default config.
// Applies defaults for any missing fields.
func LoadConfig(projectDir string) (*Config, error) {
	configPath := filepath.Join(projectDir, DefaultFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Color == "" {
		cfg.Color = DefaultColor
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return ValidationError{Field: "color", Message: "must be one of auto, always, never"}
	}

	for key, value := range cfg.Defaults {
		if key == "" {
			return ValidationError{Field: "defaults", Message: "keys must not be empty"}
		}
		switch value.(type) {
		case nil, bool, int, int64, float64, string:
		default:
			return ValidationError{Field: "defaults." + key, Message: "must be a scalar"}
		}
	}

	for _, name := range cfg.Disable {
		if name == "" {
			return ValidationError{Field: "disable", Message: "names must not be empty"}
		}
	}

	return nil
}

// LoadEnvFile parses the env file named by cfg, relative to projectDir, into
// KEY=VALUE entries sorted by key. A missing file yields no entries.
func LoadEnvFile(projectDir string, cfg *Config) ([]string, error) {
	if cfg.EnvFile == "" {
		return nil, nil
	}
	envPath := cfg.EnvFile
	if !filepath.IsAbs(envPath) {
		envPath = filepath.Join(projectDir, envPath)
	}

	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil, nil
	}

	vars, err := godotenv.Read(envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env, nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
