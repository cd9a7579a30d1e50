// Package config loads filterql CLI settings from defaults, a YAML file and
// FILTERQL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hugr-lab/filterql/filter"
)

// EnvPrefix prefixes environment overrides (FILTERQL_SERVER_ADDRESS, ...).
const EnvPrefix = "FILTERQL"

// Config holds all CLI configuration.
type Config struct {
	// Schema is the path of the YAML entity definitions.
	Schema string `mapstructure:"schema"`
	// Database is the DuckDB DSN. Empty means in-memory.
	Database string `mapstructure:"database"`
	// InitScript is an optional SQL file run once after opening the database.
	InitScript string `mapstructure:"init_script"`

	Server ServerConfig `mapstructure:"server"`
	Filter FilterConfig `mapstructure:"filter"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MaxMessageSize int    `mapstructure:"max_message_size"`
	// Tokens maps accepted bearer tokens to identities.
	// Empty disables authentication.
	Tokens map[string]string `mapstructure:"tokens"`
}

type FilterConfig struct {
	MaxDepth  int `mapstructure:"max_depth"`
	MaxTokens int `mapstructure:"max_tokens"`
	MaxLength int `mapstructure:"max_length"`
	// Overrides maps entity name to field name to SQL expression.
	Overrides map[string]map[string]string `mapstructure:"overrides"`
	// DefaultLimit caps DoGet rows when the ticket sets no limit. 0 is unlimited.
	DefaultLimit uint64 `mapstructure:"default_limit"`
}

// Limits returns the configured filter size limits.
func (c FilterConfig) Limits() filter.Limits {
	return filter.Limits{
		MaxDepth:  c.MaxDepth,
		MaxTokens: c.MaxTokens,
		MaxLength: c.MaxLength,
	}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding set.
// Callers bind their command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("schema", "")
	v.SetDefault("database", "")
	v.SetDefault("init_script", "")
	v.SetDefault("server.address", "127.0.0.1:50051")
	v.SetDefault("server.max_message_size", 16<<20)
	v.SetDefault("filter.max_depth", 32)
	v.SetDefault("filter.max_tokens", 1024)
	v.SetDefault("filter.max_length", 16<<10)
	v.SetDefault("filter.default_limit", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or filterql.yaml from the working directory and the
// user config directory when path is empty. A missing default file is not
// an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("filterql")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "filterql"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// SlogLevel parses the configured log level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return level, nil
}

// Logger builds a slog.Logger writing to stderr in the configured format.
func (c LogConfig) Logger() (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", c.Format)
}
