// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prbot/prbot/consts"
	"github.com/prbot/prbot/pkg/logger"
	"github.com/prbot/prbot/pkg/telemetry"
)

// Default configuration values
const (
	defaultOTLPEndpoint   = "localhost:4317"
	defaultPrometheusPort = 9090
	defaultBotNickname    = "bot"
	defaultLockTimeoutMs  = 100
	defaultResyncSchedule = "0 */2 * * *"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	Lock      LockConfig       `yaml:"lock"`
	GitHub    GitHubConfig     `yaml:"github"`
	Gif       GifConfig        `yaml:"gif"`
	Bot       BotConfig        `yaml:"bot"`
	Resync    ResyncConfig     `yaml:"resync"`
	Logging   logger.Config    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	IP          string   `yaml:"ip"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	// URL is a DSN or filesystem path; the sqlite driver accepts either a
	// bare file path or a "sqlite://" prefixed URL.
	URL string `yaml:"url"`
}

// LockConfig holds the distributed lock service configuration.
type LockConfig struct {
	// URL is the Redis connection string used by internal/lock.
	URL string `yaml:"url"`
	// TimeoutMs is not read by internal/lock: lock acquisition always
	// waits up to a fixed 100 ms, whatever this field holds.
	TimeoutMs int `yaml:"timeout_ms"`
}

// GitHubConfig holds GitHub platform authentication configuration. Exactly
// one of PersonalToken or (AppClientID + AppPrivateKey) is expected to be
// set; internal/auth.Upgrader picks User vs. App accordingly.
type GitHubConfig struct {
	WebhookSecret  string `yaml:"webhook_secret"`
	PersonalToken  string `yaml:"personal_token"`
	AppClientID    string `yaml:"app_client_id"`
	AppPrivateKey  string `yaml:"app_private_key"`
}

// GifConfig holds the animated-image search client configuration.
type GifConfig struct {
	TenorKey string `yaml:"tenor_key"`
}

// BotConfig holds command-parser configuration.
type BotConfig struct {
	Nickname string `yaml:"nickname"`
}

// ResyncConfig holds the periodic full-resync scheduler configuration.
// Webhooks keep tracked pull requests current in real time; the periodic
// pass exists to catch drift from missed or out-of-order deliveries.
type ResyncConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
			CORSOrigins: []string{
				"http://localhost:8091",
				"http://localhost:8092",
			},
		},
		Database: DatabaseConfig{
			URL: "./data/prbot.db",
		},
		Lock: LockConfig{
			URL:       "redis://localhost:6379/0",
			TimeoutMs: defaultLockTimeoutMs,
		},
		GitHub: GitHubConfig{},
		Gif:    GifConfig{},
		Bot: BotConfig{
			Nickname: defaultBotNickname,
		},
		Resync: ResyncConfig{
			Enabled:  true,
			Schedule: defaultResyncSchedule,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 5,
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid conflicts with
// special characters that can appear in secrets.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return c.IP + ":" + strconv.Itoa(c.Port)
}

// UsesPersonalToken reports whether the GitHub client should authenticate
// with a static personal access token rather than a GitHub App.
func (c *GitHubConfig) UsesPersonalToken() bool {
	return c.PersonalToken != ""
}

// UsesApp reports whether the GitHub client should authenticate as a
// GitHub App (client id + private key pair).
func (c *GitHubConfig) UsesApp() bool {
	return c.AppClientID != "" && c.AppPrivateKey != ""
}
