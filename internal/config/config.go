package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config represents the complete escrowd configuration
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	NodeDB  NodeDBConfig  `toml:"node_db" mapstructure:"node_db"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`

	configPath string
}

// LogConfig represents the [log] section
type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	Format     string `toml:"format" mapstructure:"format"` // text or json
	File       string `toml:"file" mapstructure:"file"`     // empty logs to stderr
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
}

// EngineConfig represents the [engine] section
type EngineConfig struct {
	SkipSignatureVerification bool `toml:"skip_signature_verification" mapstructure:"skip_signature_verification"`
}

// ConfigPath returns the file the configuration was loaded from
func (c *Config) ConfigPath() string {
	return c.configPath
}

// ResolvePath makes a relative path relative to the config file directory
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.configPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.configPath), p)
}

// ListenAddr returns host:port of the RPC server
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Timeout returns the server request timeout
func (s *ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}
