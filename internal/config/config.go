package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Workflow      WorkflowConfig      `yaml:"workflow"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port string `yaml:"port" default:"8080"`
	Host string `yaml:"host" default:"localhost"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver" default:"sqlite"`
	DSN    string `yaml:"dsn" default:"sentinel.db"`
}

// WorkflowConfig represents the external workflow orchestrator configuration
type WorkflowConfig struct {
	APIURL         string `yaml:"api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"10"`
	UIURL          string `yaml:"ui_url" default:"http://localhost:4200"`
}

// SchedulerConfig controls the background sweep/sync/tick loops
type SchedulerConfig struct {
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" default:"60"`
	SyncIntervalSeconds  int `yaml:"sync_interval_seconds" default:"60"`
	TickIntervalSeconds  int `yaml:"tick_interval_seconds" default:"30"`
}

// NotificationsConfig represents notification delivery configuration
type NotificationsConfig struct {
	ResendAPIKey string `yaml:"resend_api_key,omitempty"`
	FromAddress  string `yaml:"from_address" default:"sentinel@localhost"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

// DefaultConfig returns a configuration with all defaults applied, used
// when no config file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "sentinel.db"
	}
	if c.Workflow.TimeoutSeconds <= 0 {
		c.Workflow.TimeoutSeconds = 10
	}
	if c.Workflow.UIURL == "" {
		c.Workflow.UIURL = "http://localhost:4200"
	}
	if c.Scheduler.SweepIntervalSeconds <= 0 {
		c.Scheduler.SweepIntervalSeconds = 60
	}
	if c.Scheduler.SyncIntervalSeconds <= 0 {
		c.Scheduler.SyncIntervalSeconds = 60
	}
	if c.Scheduler.TickIntervalSeconds <= 0 {
		c.Scheduler.TickIntervalSeconds = 30
	}
	if c.Notifications.FromAddress == "" {
		c.Notifications.FromAddress = "sentinel@localhost"
	}
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
