// ABOUTME: Configuration loading and parsing for the command cleaner bot
// ABOUTME: YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAdminMarker is the text-command marker used when none is configured.
const DefaultAdminMarker = ",,"

// Config represents the complete bot configuration.
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Bot      BotConfig      `yaml:"bot"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DiscordConfig holds the Discord connection settings.
type DiscordConfig struct {
	Token string `yaml:"token"`
}

// BotConfig holds routing and reconciliation tunables.
type BotConfig struct {
	AdminMarker  string `yaml:"admin_marker"`
	RecentWindow int    `yaml:"recent_window"`

	GracePeriod time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	GracePeriodRaw string `yaml:"grace_period"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds the optional HTTP health endpoint address.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func parseDurations(cfg *Config) error {
	if cfg.Bot.GracePeriodRaw != "" {
		var err error
		cfg.Bot.GracePeriod, err = time.ParseDuration(cfg.Bot.GracePeriodRaw)
		if err != nil {
			return fmt.Errorf("parsing grace_period %q: %w", cfg.Bot.GracePeriodRaw, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Bot.AdminMarker == "" {
		c.Bot.AdminMarker = DefaultAdminMarker
	}
}

// Validate checks that all required configuration fields are present.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Bot.GracePeriod < 0 {
		return fmt.Errorf("bot.grace_period must not be negative")
	}
	if c.Bot.RecentWindow < 0 {
		return fmt.Errorf("bot.recent_window must not be negative")
	}
	return nil
}
