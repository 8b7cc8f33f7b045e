package config

import (
	"fmt"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := config.NodeDB.Validate(); err != nil {
		return fmt.Errorf("node_db validation failed: %w", err)
	}
	if err := config.Journal.Validate(); err != nil {
		return fmt.Errorf("journal validation failed: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	return nil
}

// validateServerConfig validates the [server] section
func validateServerConfig(server *ServerConfig) error {
	if server.Port <= 0 || server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", server.Port)
	}
	if strings.TrimSpace(server.Bind) == "" {
		return fmt.Errorf("bind address is required")
	}
	if server.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", server.TimeoutSeconds)
	}
	if server.MaxWSClients < 0 {
		return fmt.Errorf("max_ws_clients must be non-negative, got %d", server.MaxWSClients)
	}
	return nil
}

// validateLogConfig validates the [log] section
func validateLogConfig(l *LogConfig) error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return err
	}
	if !slices.Contains([]string{"text", "json"}, l.Format) {
		return fmt.Errorf("invalid log format: %s (valid options: text, json)", l.Format)
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must be non-negative")
	}
	return nil
}
