package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Mailchimp MailchimpConfig `toml:"mailchimp"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP hook server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// MailchimpConfig contains transport settings for the batch API.
//
// Credentials are not read from here at sync time; see [SeedConfig].
type MailchimpConfig struct {
	TimeoutSeconds int        `toml:"timeout_seconds"`
	Timezone       string     `toml:"timezone"`
	Seed           SeedConfig `toml:"seed"`
}

// SeedConfig holds credentials used to create a configuration record during setup.
type SeedConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	APIKey   string `toml:"api_key"`
	URL      string `toml:"url"`
}

// Timeout returns the batch create timeout as a [time.Duration].
func (m MailchimpConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Location resolves the configured timezone. Empty and "Local" map to [time.Local].
func (m MailchimpConfig) Location() (*time.Location, error) {
	switch m.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidConfig, m.Timezone, err)
	}
	return loc, nil
}

// Validate checks settings that would otherwise fail late during a sync.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Mailchimp.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: mailchimp.timeout_seconds must be positive, got %d", ErrInvalidTimeout, c.Mailchimp.TimeoutSeconds)
	}
	if _, err := c.Mailchimp.Location(); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
