package config

import (
	"fmt"
	"slices"
	"time"
)

// NodeDBConfig represents the [node_db] section
// Configures the key-value store holding ledger entries
type NodeDBConfig struct {
	Type         string `toml:"type" mapstructure:"type"`
	Path         string `toml:"path" mapstructure:"path"`
	CacheSize    int    `toml:"cache_size" mapstructure:"cache_size"`       // MB, backend block cache
	CacheEntries int    `toml:"cache_entries" mapstructure:"cache_entries"` // entry LRU size
}

// JournalConfig represents the [journal] section
// An empty driver disables the transaction journal
type JournalConfig struct {
	Driver           string `toml:"driver" mapstructure:"driver"`
	ConnectionString string `toml:"connection_string" mapstructure:"connection_string"`
	Path             string `toml:"path" mapstructure:"path"` // sqlite file
	Host             string `toml:"host" mapstructure:"host"`
	Port             int    `toml:"port" mapstructure:"port"`
	Database         string `toml:"database" mapstructure:"database"`
	Username         string `toml:"username" mapstructure:"username"`
	Password         string `toml:"password" mapstructure:"password"`
	SSLMode          string `toml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns     int    `toml:"max_open_conns" mapstructure:"max_open_conns"`
	TimeoutSeconds   int    `toml:"timeout" mapstructure:"timeout"`
}

var validNodeDBTypes = []string{"pebble", "bbolt", "leveldb", "memory"}

// Validate performs validation on the NodeDB configuration
func (n *NodeDBConfig) Validate() error {
	if n.Type == "" {
		return fmt.Errorf("node_db type is required")
	}
	if !slices.Contains(validNodeDBTypes, n.Type) {
		return fmt.Errorf("invalid node_db type: %s (valid options: %v)", n.Type, validNodeDBTypes)
	}
	if n.Type != "memory" && n.Path == "" {
		return fmt.Errorf("node_db path is required")
	}
	if n.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", n.CacheSize)
	}
	if n.CacheEntries < 0 {
		return fmt.Errorf("cache_entries must be non-negative, got %d", n.CacheEntries)
	}
	return nil
}

// Enabled reports whether a journal is configured
func (j *JournalConfig) Enabled() bool {
	return j.Driver != ""
}

// Timeout returns the journal statement timeout
func (j *JournalConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// Validate performs validation on the journal configuration
func (j *JournalConfig) Validate() error {
	switch j.Driver {
	case "":
		return nil
	case "sqlite":
		if j.Path == "" && j.ConnectionString == "" {
			return fmt.Errorf("journal path is required for sqlite")
		}
	case "postgres":
		if j.ConnectionString == "" && (j.Host == "" || j.Database == "") {
			return fmt.Errorf("journal host and database are required for postgres")
		}
	default:
		return fmt.Errorf("invalid journal driver: %s (valid options: sqlite, postgres)", j.Driver)
	}
	if j.MaxOpenConns < 0 {
		return fmt.Errorf("max_open_conns must be non-negative, got %d", j.MaxOpenConns)
	}
	if j.TimeoutSeconds <= 0 {
		return fmt.Errorf("journal timeout must be positive, got %d", j.TimeoutSeconds)
	}
	return nil
}
