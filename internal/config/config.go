// Package config loads pipeline configuration from file, environment
// and defaults via viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when a generating run has no API key.
var ErrMissingAPIKey = errors.New("generation api key is required (set GENERATION_API_KEY)")

// Config is the root configuration for a pipeline run.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Data       DataConfig       `mapstructure:"data"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// DataConfig locates the shared data directory and the category catalog.
type DataConfig struct {
	Dir     string `mapstructure:"dir"`
	Catalog string `mapstructure:"catalog"`
}

// GenerationConfig holds the generative-service and batch settings.
type GenerationConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	PrimaryModel      string        `mapstructure:"primary_model"`
	FallbackModel     string        `mapstructure:"fallback_model"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	BaseDelay         time.Duration `mapstructure:"base_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
	Temperature       float32       `mapstructure:"temperature"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BatchSize         int           `mapstructure:"batch_size"`
	Concurrency       int           `mapstructure:"concurrency"`
	CuriosityTarget   int           `mapstructure:"curiosity_target"`
	QuizTarget        int           `mapstructure:"quiz_target"`
}

// SetDefaults registers every default with viper. Called once before
// the config file and environment are read.
func SetDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("data.dir", "./data")
	viper.SetDefault("data.catalog", "")

	// An empty default keeps the key visible to viper so the
	// GENERATION_API_KEY environment variable is picked up.
	viper.SetDefault("generation.api_key", "")
	viper.SetDefault("generation.primary_model", "gemini-2.0-flash")
	viper.SetDefault("generation.fallback_model", "gemini-2.0-flash-lite")
	viper.SetDefault("generation.max_attempts", 6)
	viper.SetDefault("generation.base_delay", 2*time.Second)
	viper.SetDefault("generation.max_delay", 60*time.Second)
	viper.SetDefault("generation.temperature", 0.9)
	viper.SetDefault("generation.requests_per_minute", 12)
	viper.SetDefault("generation.batch_size", 40)
	viper.SetDefault("generation.concurrency", 4)
	viper.SetDefault("generation.curiosity_target", 1000)
	viper.SetDefault("generation.quiz_target", 300)
}

// Load unmarshals the effective viper state into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Data.Catalog == "" {
		cfg.Data.Catalog = filepath.Join(cfg.Data.Dir, "categories.json")
	}

	return &cfg, nil
}

// StateDir returns the directory holding pipeline-internal state.
func (c *Config) StateDir() string {
	return filepath.Join(c.Data.Dir, "state")
}

// CheckpointPath returns the checkpoint file path.
func (c *Config) CheckpointPath() string {
	return filepath.Join(c.StateDir(), "checkpoints.json")
}

// HashIndexPath returns the hash index snapshot path.
func (c *Config) HashIndexPath() string {
	return filepath.Join(c.StateDir(), "hash-index.json")
}

// LockPath returns the run lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.StateDir(), "forge.lock")
}
