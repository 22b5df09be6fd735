// Package config loads runtime settings for the persona tools from defaults,
// an optional .personarc file and PERSONA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ahrav/go-persona/internal/ports"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "PERSONA"

// configNames are the file names searched in the working directory, in order.
var configNames = []string{".personarc.yaml", ".personarc.yml", ".personarc.json"}

// Config holds the settings shared by every command.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path" validate:"required"`
	// Catalog is an optional YAML catalog used instead of the database as
	// the question and profile source.
	Catalog string `mapstructure:"catalog"`
	// LogLevel is the minimum zap level.
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	// Verbose forces debug logging with a development encoder.
	Verbose bool `mapstructure:"verbose"`
	// CacheSize bounds the number of resolved question sets kept in memory.
	CacheSize int `mapstructure:"cache_size" validate:"gte=1,lte=100000"`
	// MetricsAddr, when set, serves Prometheus metrics on that address.
	MetricsAddr string `mapstructure:"metrics_addr" validate:"omitempty,hostname_port"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	dataDir, err := os.UserConfigDir()
	if err != nil {
		dataDir = "."
	}
	v.SetDefault("db_path", filepath.Join(dataDir, "persona", "persona.db"))
	v.SetDefault("catalog", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("verbose", false)
	v.SetDefault("cache_size", 128)
	v.SetDefault("metrics_addr", "")
}

// Load reads configuration into a Config. When path is non-empty that file
// must exist; otherwise the .personarc files in the working directory are
// tried and their absence is not an error. Environment variables override
// file values, and flags bound to v by the caller override both.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return ports.NewConfigError(path, ports.ErrConfigNotFound)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return ports.NewConfigError(path, fmt.Errorf("error reading config file: %w", err))
		}
		return nil
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		v.SetConfigFile(name)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", name, err)
		}
		return nil
	}
	return nil
}

// Validate checks field constraints and returns a single error listing every
// violation.
func Validate(cfg *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
