package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Device  string        `mapstructure:"device"`
	Launch  LaunchConfig  `mapstructure:"launch"`
	Array   ArrayConfig   `mapstructure:"array"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type LaunchConfig struct {
	Workers int `mapstructure:"workers"`
}

type ArrayConfig struct {
	Elements       int  `mapstructure:"elements"`
	BitsPerElement int  `mapstructure:"bits_per_element"`
	Atomic         bool `mapstructure:"atomic"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Device: "auto",
		Launch: LaunchConfig{
			Workers: 0,
		},
		Array: ArrayConfig{
			Elements:       64,
			BitsPerElement: 64,
			Atomic:         false,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "warn",
			File:    "",
			Console: true,
		},
	}
}

// Load loads configuration from file, environment, and defaults
func Load(cfgFile string) (*Config, error) {
	return LoadWith(viper.New(), cfgFile)
}

// LoadWith loads configuration into v, which may already carry bound flags.
func LoadWith(v *viper.Viper, cfgFile string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bitgrid"))
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BITGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ExpandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validDevices := []string{"auto", "cpu", "gpu", "metal", "cuda"}
	if !contains(validDevices, strings.ToLower(c.Device)) {
		return fmt.Errorf("device must be one of: %v", validDevices)
	}

	if c.Launch.Workers < 0 {
		return errors.New("launch.workers must be >= 0")
	}

	if c.Array.Elements <= 0 {
		return errors.New("array.elements must be positive")
	}
	if c.Array.BitsPerElement <= 0 {
		return errors.New("array.bits_per_element must be positive")
	}

	validFormats := []string{"png", "pbm"}
	if !contains(validFormats, c.Export.Format) {
		return fmt.Errorf("export.format must be one of: %v", validFormats)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// ExpandPaths expands ~ and environment variables in paths
func (c *Config) ExpandPaths() {
	c.Export.Dir = expandPath(c.Export.Dir)
	c.Logging.File = expandPath(c.Logging.File)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("device", cfg.Device)

	v.SetDefault("launch.workers", cfg.Launch.Workers)

	v.SetDefault("array.elements", cfg.Array.Elements)
	v.SetDefault("array.bits_per_element", cfg.Array.BitsPerElement)
	v.SetDefault("array.atomic", cfg.Array.Atomic)

	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("export.format", cfg.Export.Format)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
}
