package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a bot process.
type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Connector ConnectorConfig `yaml:"connector"`
	Command   CommandConfig   `yaml:"command"`
	Access    AccessConfig    `yaml:"access"`
	Log       LogConfig       `yaml:"log"`
}

// BotConfig names the bot instance.
type BotConfig struct {
	Name string `yaml:"name"`
}

// ConnectorConfig configures the forward WebSocket connection to the
// protocol endpoint.
type ConnectorConfig struct {
	URL            string        `yaml:"url"`
	AccessToken    string        `yaml:"access_token"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	MaxRetry       int           `yaml:"max_retry"`
	SendCooldown   time.Duration `yaml:"send_cooldown"`
}

// CommandConfig holds the token sets used to recognise command messages.
type CommandConfig struct {
	Start []string `yaml:"start"`
	Sep   []string `yaml:"sep"`
}

// AccessConfig describes the access tiers applied by permission checkers.
type AccessConfig struct {
	Owner       int64   `yaml:"owner"`
	SuperUsers  []int64 `yaml:"super_users"`
	WhiteUsers  []int64 `yaml:"white_users"`
	BlackUsers  []int64 `yaml:"black_users"`
	WhiteGroups []int64 `yaml:"white_groups"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Bot: BotConfig{
			Name: "wirebot",
		},
		Connector: ConnectorConfig{
			URL:            "ws://127.0.0.1:8080",
			ReconnectDelay: 5 * time.Second,
			MaxRetry:       -1,
			SendCooldown:   0,
		},
		Command: CommandConfig{
			Start: []string{"/"},
			Sep:   []string{" "},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse unmarshals YAML data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration values no connector or parser could use.
func (c *Config) Validate() error {
	if c.Connector.URL == "" {
		return fmt.Errorf("connector.url must not be empty")
	}
	if c.Connector.ReconnectDelay < 0 {
		return fmt.Errorf("connector.reconnect_delay must not be negative")
	}
	if c.Connector.SendCooldown < 0 {
		return fmt.Errorf("connector.send_cooldown must not be negative")
	}
	if len(c.Command.Start) == 0 {
		return fmt.Errorf("command.start must list at least one token")
	}
	if len(c.Command.Sep) == 0 {
		return fmt.Errorf("command.sep must list at least one token")
	}
	return nil
}

// AccessLists converts the access section into checker inputs.
func (c *Config) AccessLists() (owner int64, superUsers, whiteUsers, blackUsers, whiteGroups []int64) {
	return c.Access.Owner, c.Access.SuperUsers, c.Access.WhiteUsers, c.Access.BlackUsers, c.Access.WhiteGroups
}

// LogLevel maps the configured level string onto the logging levels
// understood by slog. Unknown values fall back to info.
func (c *Config) LogLevel() string {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		return c.Log.Level
	default:
		return "info"
	}
}
