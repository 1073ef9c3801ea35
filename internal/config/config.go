package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bidding   BiddingConfig   `yaml:"bidding"`
	Notify    NotifyConfig    `yaml:"notify"`
	Retry     RetryConfig     `yaml:"retry"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Driver   string `yaml:"driver"` // "sqlx" or "memory"
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Insecure       bool   `yaml:"insecure"`
}

// BiddingConfig holds bid acceptance rules.
type BiddingConfig struct {
	MinGoodPercentage float64            `yaml:"min_good_percentage"`
	RatingTimeout     time.Duration      `yaml:"rating_timeout"`
	ExtendPolicy      ExtendPolicyConfig `yaml:"extend_policy"`
}

// ExtendPolicyConfig selects where the anti-snipe windows come from.
// With source "database" the durations below are only a fallback.
type ExtendPolicyConfig struct {
	Source       string        `yaml:"source"` // "config" or "database"
	BeforeWindow time.Duration `yaml:"before_window"`
	Extension    time.Duration `yaml:"extension"`
}

// NotifyConfig holds outcome notification settings.
type NotifyConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxInFlight int           `yaml:"max_in_flight"`
	QueueSize   int           `yaml:"queue_size"`
	Discord     DiscordConfig `yaml:"discord"`
}

// DiscordConfig holds Discord direct-message delivery settings.
type DiscordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// RetryConfig bounds how callers resubmit conflicting operations.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
}

// Default returns the configuration used before a file is applied.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
			Driver:  "sqlx",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "auctiond",
			ServiceVersion: "0.1.0",
		},
		Bidding: BiddingConfig{
			MinGoodPercentage: 80,
			RatingTimeout:     2 * time.Second,
			ExtendPolicy: ExtendPolicyConfig{
				Source:       "config",
				BeforeWindow: 5 * time.Minute,
				Extension:    10 * time.Minute,
			},
		},
		Notify: NotifyConfig{
			Timeout:     5 * time.Second,
			MaxInFlight: 64,
			QueueSize:   1024,
		},
		Retry: RetryConfig{
			MaxAttempts:     5,
			InitialInterval: 50 * time.Millisecond,
		},
	}
}

// Load reads a YAML configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlx", "memory":
		// valid
	default:
		return fmt.Errorf("unsupported database driver %q: must be \"sqlx\" or \"memory\"", c.Database.Driver)
	}

	b := c.Bidding
	if b.MinGoodPercentage <= 0 || b.MinGoodPercentage > 100 {
		return fmt.Errorf("bidding.min_good_percentage %v out of range (0, 100]", b.MinGoodPercentage)
	}
	if b.RatingTimeout < 0 {
		return fmt.Errorf("bidding.rating_timeout must not be negative")
	}
	switch b.ExtendPolicy.Source {
	case "config", "database":
	default:
		return fmt.Errorf("unsupported extend policy source %q: must be \"config\" or \"database\"", b.ExtendPolicy.Source)
	}
	if b.ExtendPolicy.BeforeWindow < 0 || b.ExtendPolicy.Extension < 0 {
		return fmt.Errorf("bidding.extend_policy durations must not be negative")
	}

	if c.Notify.MaxInFlight <= 0 {
		return fmt.Errorf("notify.max_in_flight must be positive")
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify.queue_size must be positive")
	}
	if c.Notify.Discord.Enabled && c.Notify.Discord.Token == "" {
		return fmt.Errorf("notify.discord.token is required when discord is enabled")
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	return nil
}
