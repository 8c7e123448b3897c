// Package config loads kendb3.yml and environment configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the KenDB3 configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Generate GenerateConfig `mapstructure:"generate"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	// Driver selects the storage backend: "memory" or "sqlite".
	Driver string `mapstructure:"driver"`

	// Path is the SQLite database file. Ignored by the memory driver.
	Path string `mapstructure:"path"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Host      string `mapstructure:"host"`
	APIPrefix string `mapstructure:"api_prefix"`

	// StaticDir serves built frontend assets under /static when set.
	StaticDir string `mapstructure:"static_dir"`
}

// GenerateConfig represents asset generation configuration
type GenerateConfig struct {
	// OutputDir receives generated frontend sources.
	OutputDir string `mapstructure:"output_dir"`
}

// Load loads the configuration from kendb3.yml, falling back to
// defaults, with KENDB3_* environment variables taking precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "kendb3.sqlite3")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("generate.output_dir", "build/generated")

	v.SetConfigName("kendb3")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KENDB3")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Address returns the listen address in host:port form.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Database.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("database.driver must be 'memory' or 'sqlite', got: %s", cfg.Database.Driver)
	}

	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required for the sqlite driver")
	}

	if cfg.Server.APIPrefix != "" {
		if !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must start with '/', got: %s", cfg.Server.APIPrefix)
		}
		if strings.HasSuffix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must not end with '/', got: %s", cfg.Server.APIPrefix)
		}
	}
	return nil
}
