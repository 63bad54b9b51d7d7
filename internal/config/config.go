// Package config loads and validates application configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Model   ModelConfig   `mapstructure:"model"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig holds bid store configuration.
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// ModelConfig holds anomaly-model configuration.
type ModelConfig struct {
	Dir            string  `mapstructure:"dir"`
	Contamination  float64 `mapstructure:"contamination"`
	EnsembleSize   int     `mapstructure:"ensemble_size"`
	VocabularySize int     `mapstructure:"vocabulary_size"`
	Seed           int64   `mapstructure:"seed"`
	TrainingFloor  int     `mapstructure:"training_floor"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path uses defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("BIDGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.database_path", "./data/actms.db")

	v.SetDefault("model.dir", "./models")
	v.SetDefault("model.contamination", 0.10)
	v.SetDefault("model.ensemble_size", 100)
	v.SetDefault("model.vocabulary_size", 100)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.training_floor", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path is required")
	}

	if c.Model.Dir == "" {
		return fmt.Errorf("model.dir is required")
	}
	if c.Model.Contamination <= 0 || c.Model.Contamination >= 0.5 {
		return fmt.Errorf("model.contamination must be in (0, 0.5)")
	}
	if c.Model.EnsembleSize < 1 {
		return fmt.Errorf("model.ensemble_size must be at least 1")
	}
	if c.Model.VocabularySize < 1 {
		return fmt.Errorf("model.vocabulary_size must be at least 1")
	}
	if c.Model.TrainingFloor < 1 {
		return fmt.Errorf("model.training_floor must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
