// Package config loads issuetrail configuration from defaults, an optional
// YAML file and ISSUETRAIL_* environment variables, in that order.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines issuetrail configuration.
type Config struct {
	Jira   JiraConfig   `yaml:"jira"`
	Server ServerConfig `yaml:"server"`
	Watch  WatchConfig  `yaml:"watch"`
	Log    LogConfig    `yaml:"log"`
}

// JiraConfig locates and authenticates against the tracker site.
type JiraConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Email    string   `yaml:"email"`
	APIToken string   `yaml:"api_token"`
	Timeout  Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr joins host and port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type WatchConfig struct {
	Interval Duration `yaml:"interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name to a slog level. Unknown names
// fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment variables win over the file; the file wins over
// defaults.
func Load() (Config, error) {
	cfg := Config{
		Jira: JiraConfig{
			Timeout: Duration(30 * time.Second),
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8099,
		},
		Watch: WatchConfig{
			// The dashboard panel re-polls on this cadence.
			Interval: Duration(10 * time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("ISSUETRAIL_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if baseURL := os.Getenv("ISSUETRAIL_JIRA_URL"); baseURL != "" {
		cfg.Jira.BaseURL = baseURL
	}
	if email := os.Getenv("ISSUETRAIL_JIRA_EMAIL"); email != "" {
		cfg.Jira.Email = email
	}
	if token := os.Getenv("ISSUETRAIL_JIRA_TOKEN"); token != "" {
		cfg.Jira.APIToken = token
	}
	if timeoutStr := os.Getenv("ISSUETRAIL_JIRA_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ISSUETRAIL_JIRA_TIMEOUT: %w", err)
		}
		cfg.Jira.Timeout = Duration(timeout)
	}
	if host := os.Getenv("ISSUETRAIL_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("ISSUETRAIL_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ISSUETRAIL_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if intervalStr := os.Getenv("ISSUETRAIL_WATCH_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ISSUETRAIL_WATCH_INTERVAL: %w", err)
		}
		cfg.Watch.Interval = Duration(interval)
	}
	if level := os.Getenv("ISSUETRAIL_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// ValidateJira checks that the tracker connection is configured. Commands
// that reach the tracker call this before doing any work; serve-only
// concerns like port numbers are left to net/http to reject.
func (c Config) ValidateJira() error {
	if c.Jira.BaseURL == "" {
		return fmt.Errorf("jira base URL not configured - set ISSUETRAIL_JIRA_URL")
	}
	if c.Jira.Email == "" {
		return fmt.Errorf("jira email not configured - set ISSUETRAIL_JIRA_EMAIL")
	}
	if c.Jira.APIToken == "" {
		return fmt.Errorf("jira API token not configured - set ISSUETRAIL_JIRA_TOKEN")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
