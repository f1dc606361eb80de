// Package config provides Viper-based configuration loading for the combat engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig holds game content loading settings.
type ContentConfig struct {
	// Dir is the root directory of the YAML definition tree.
	Dir string `mapstructure:"dir"`
}

// ScriptsConfig holds condition-script execution settings.
type ScriptsConfig struct {
	// Dir is the directory of Lua lifecycle-hook scripts. Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps Lua opcodes per hook; 0 uses the package default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// EngineConfig holds combat engine settings.
type EngineConfig struct {
	// MaxRounds aborts an encounter that runs past this many rounds; 0 means no cap.
	MaxRounds int `mapstructure:"max_rounds"`
	// Seed fixes the dice sequence for reproducible encounters; 0 uses crypto randomness.
	Seed int64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Content ContentConfig `mapstructure:"content"`
	Scripts ScriptsConfig `mapstructure:"scripts"`
	Engine  EngineConfig  `mapstructure:"engine"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.Scripts.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripts.instruction_limit must be >= 0, got %d", c.Scripts.InstructionLimit))
	}
	if c.Engine.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("engine.max_rounds must be >= 0, got %d", c.Engine.MaxRounds))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("content.dir", "content")
	v.SetDefault("scripts.dir", "")
	v.SetDefault("scripts.instruction_limit", 0)
	v.SetDefault("engine.max_rounds", 0)
	v.SetDefault("engine.seed", 0)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARBITER_ prefix
	v.SetEnvPrefix("ARBITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
