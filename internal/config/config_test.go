package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "escrowd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		config, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:5005", config.ListenAddr())
		assert.Equal(t, "pebble", config.NodeDB.Type)
		assert.False(t, config.Journal.Enabled())
		assert.Equal(t, "info", config.Log.Level)
		assert.False(t, config.Engine.SkipSignatureVerification)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = 6006
websocket = false

[node_db]
type = "bbolt"
path = "data/state.db"

[journal]
driver = "sqlite"
path = "data/journal.db"

[log]
level = "debug"
format = "json"
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 6006, config.Server.Port)
		assert.False(t, config.Server.WebSocket)
		assert.Equal(t, "bbolt", config.NodeDB.Type)
		assert.True(t, config.Journal.Enabled())
		assert.Equal(t, filepath.Join(filepath.Dir(path), "data/journal.db"), config.ResolvePath(config.Journal.Path))
		assert.Equal(t, "json", config.Log.Format)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "[server]\nport = 6006\n")
		t.Setenv("ESCROWD_SERVER_PORT", "7007")
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 7007, config.Server.Port)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Bind: "127.0.0.1", Port: 5005, TimeoutSeconds: 30},
			NodeDB:  NodeDBConfig{Type: "memory"},
			Log:     LogConfig{Level: "info", Format: "text"},
			Journal: JournalConfig{TimeoutSeconds: 30},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "port must be between"},
		{"bad node_db type", func(c *Config) { c.NodeDB.Type = "rocksdb" }, "invalid node_db type"},
		{"node_db path required", func(c *Config) { c.NodeDB.Type = "pebble" }, "node_db path is required"},
		{"bad journal driver", func(c *Config) { c.Journal.Driver = "mysql" }, "invalid journal driver"},
		{"sqlite needs path", func(c *Config) { c.Journal.Driver = "sqlite" }, "journal path is required"},
		{"postgres needs host", func(c *Config) { c.Journal.Driver = "postgres" }, "host and database"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "not a valid logrus Level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := ValidateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
