// Package config provides configuration management for the application.
// This file handles bootstrap configuration which requires server restart to take effect.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prbot/prbot/pkg/logger"
	"github.com/prbot/prbot/pkg/telemetry"
)

// BootstrapConfig holds configuration that requires server restart to take effect.
// These are the core system settings the spec's configuration surface names:
// database/lock connections, GitHub credentials, the Tenor key, the bot
// nickname, and server bind address.
type BootstrapConfig struct {
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

// BootstrapConfigPath is the default path for bootstrap configuration.
const BootstrapConfigPath = "config/bootstrap.yaml"

// DefaultBootstrapConfig returns default bootstrap configuration.
func DefaultBootstrapConfig() *BootstrapConfig {
	def := Default()
	return &BootstrapConfig{
		Server:    def.Server,
		Database:  def.Database,
		Lock:      def.Lock,
		GitHub:    def.GitHub,
		Gif:       def.Gif,
		Bot:       def.Bot,
		Resync:    def.Resync,
		Logging:   def.Logging,
		Telemetry: def.Telemetry,
	}
}

// LoadBootstrap loads bootstrap configuration from file with environment
// variable support. Environment variables can override values using the
// PRBOT_ prefix:
//   - PRBOT_SERVER_IP, PRBOT_SERVER_PORT, PRBOT_SERVER_DEBUG
//   - PRBOT_DATABASE_URL
//   - PRBOT_LOCK_URL
//   - PRBOT_GITHUB_WEBHOOK_SECRET, PRBOT_GITHUB_PERSONAL_TOKEN,
//     PRBOT_GITHUB_APP_CLIENT_ID, PRBOT_GITHUB_APP_PRIVATE_KEY
//   - PRBOT_TENOR_KEY
//   - PRBOT_BOT_NICKNAME
//   - PRBOT_LOG_LEVEL, PRBOT_LOG_FORMAT, PRBOT_LOG_FILE
//   - PRBOT_TELEMETRY_ENABLED, PRBOT_OTLP_ENDPOINT,
//     PRBOT_PROMETHEUS_ENABLED, PRBOT_PROMETHEUS_PORT
func LoadBootstrap(path string) (*BootstrapConfig, error) {
	cfg := DefaultBootstrapConfig()

	if data, err := os.ReadFile(path); err == nil {
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse bootstrap config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read bootstrap config: %w", err)
	}

	applyBootstrapEnvOverrides(cfg)

	return cfg, nil
}

// ToConfig converts a BootstrapConfig into the runtime Config used to wire
// the server and CLI commands; prbot has no hot-reloadable settings layer
// on top of it, so the conversion is a direct field copy.
func (b *BootstrapConfig) ToConfig() *Config {
	return &Config{
		Server:    b.Server,
		Database:  b.Database,
		Lock:      b.Lock,
		GitHub:    b.GitHub,
		Gif:       b.Gif,
		Bot:       b.Bot,
		Resync:    b.Resync,
		Logging:   b.Logging,
		Telemetry: b.Telemetry,
	}
}

// BootstrapExists checks if bootstrap configuration file exists.
func BootstrapExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateDefaultBootstrap creates a default bootstrap configuration file.
func CreateDefaultBootstrap(path string) error {
	cfg := DefaultBootstrapConfig()
	return WriteBootstrap(path, cfg)
}

// WriteBootstrap writes bootstrap configuration to file.
func WriteBootstrap(path string, cfg *BootstrapConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal bootstrap config: %w", err)
	}

	content := bootstrapHeader + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write bootstrap config: %w", err)
	}

	return nil
}

// bootstrapHeader is the comment header for bootstrap.yaml.
const bootstrapHeader = `# prbot bootstrap configuration
# This file contains core system settings that require server restart to take effect.
#
# Environment Variable Support:
#   - Use ${VAR_NAME} syntax in values to reference environment variables
#   - Or use PRBOT_* prefix environment variables to override:
#     PRBOT_SERVER_IP, PRBOT_SERVER_PORT, PRBOT_SERVER_DEBUG
#     PRBOT_DATABASE_URL, PRBOT_LOCK_URL
#     PRBOT_GITHUB_WEBHOOK_SECRET, PRBOT_GITHUB_PERSONAL_TOKEN
#     PRBOT_GITHUB_APP_CLIENT_ID, PRBOT_GITHUB_APP_PRIVATE_KEY
#     PRBOT_TENOR_KEY, PRBOT_BOT_NICKNAME
#     PRBOT_LOG_LEVEL, PRBOT_LOG_FORMAT
#

`

// applyBootstrapEnvOverrides applies environment variable overrides to bootstrap config.
func applyBootstrapEnvOverrides(cfg *BootstrapConfig) {
	if v := os.Getenv("PRBOT_SERVER_IP"); v != "" {
		cfg.Server.IP = v
	}
	if v := os.Getenv("PRBOT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PRBOT_SERVER_DEBUG"); v != "" {
		cfg.Server.Debug = parseBool(v)
	}

	if v := os.Getenv("PRBOT_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}

	if v := os.Getenv("PRBOT_LOCK_URL"); v != "" {
		cfg.Lock.URL = v
	}

	if v := os.Getenv("PRBOT_GITHUB_WEBHOOK_SECRET"); v != "" {
		cfg.GitHub.WebhookSecret = v
	}
	if v := os.Getenv("PRBOT_GITHUB_PERSONAL_TOKEN"); v != "" {
		cfg.GitHub.PersonalToken = v
	}
	if v := os.Getenv("PRBOT_GITHUB_APP_CLIENT_ID"); v != "" {
		cfg.GitHub.AppClientID = v
	}
	if v := os.Getenv("PRBOT_GITHUB_APP_PRIVATE_KEY"); v != "" {
		cfg.GitHub.AppPrivateKey = v
	}

	if v := os.Getenv("PRBOT_TENOR_KEY"); v != "" {
		cfg.Gif.TenorKey = v
	}

	if v := os.Getenv("PRBOT_BOT_NICKNAME"); v != "" {
		cfg.Bot.Nickname = v
	}

	if v := os.Getenv("PRBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PRBOT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PRBOT_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}

	if v := os.Getenv("PRBOT_TELEMETRY_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("PRBOT_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLP.Enabled = true
		cfg.Telemetry.OTLP.Endpoint = v
	}
	if v := os.Getenv("PRBOT_PROMETHEUS_ENABLED"); v != "" {
		cfg.Telemetry.Prometheus.Enabled = parseBool(v)
	}
	if v := os.Getenv("PRBOT_PROMETHEUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.Prometheus.Port = port
		}
	}
}

// parseBool parses a boolean string value.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
