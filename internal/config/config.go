package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Database   string   `mapstructure:"database"`
	Extensions []string `mapstructure:"extensions"`
	Comments   bool     `mapstructure:"comments"`
	BatchSize  int      `mapstructure:"batch_size"`
	LogLevel   string   `mapstructure:"log_level"`
	LogFormat  string   `mapstructure:"log_format"`
}

// DefaultExtensions are the KeyValues text formats plus compiled maps
var DefaultExtensions = []string{".vmt", ".vmf", ".res", ".txt", ".vdf", ".bsp"}

// Load initializes and loads configuration from file
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("database", "assets.db")
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("comments", false)
	v.SetDefault("batch_size", 1000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// SOURCEDB_DATABASE, SOURCEDB_LOG_LEVEL, ...
	v.SetEnvPrefix("sourcedb")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Config file handling
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName("sourcedb")
		v.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
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

// Validate checks values that viper cannot type-check on its own
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if err := validateExtensions(c.Extensions); err != nil {
		return fmt.Errorf("invalid extension configuration: %w", err)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format '%s': expected text or json", c.LogFormat)
	}

	return nil
}
