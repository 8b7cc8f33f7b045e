package config

import "github.com/spf13/viper"

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind", "127.0.0.1")
	v.SetDefault("server.port", 5005)
	v.SetDefault("server.timeout", 30)
	v.SetDefault("server.websocket", true)
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.max_ws_clients", 0)

	// NodeDB defaults
	v.SetDefault("node_db.type", "pebble")
	v.SetDefault("node_db.path", "db/state")
	v.SetDefault("node_db.cache_size", 64)
	v.SetDefault("node_db.cache_entries", 4096)

	// Journal defaults (disabled)
	v.SetDefault("journal.driver", "")
	v.SetDefault("journal.path", "db/journal.db")
	v.SetDefault("journal.host", "localhost")
	v.SetDefault("journal.port", 5432)
	v.SetDefault("journal.database", "escrowd")
	v.SetDefault("journal.username", "escrowd")
	v.SetDefault("journal.ssl_mode", "prefer")
	v.SetDefault("journal.max_open_conns", 25)
	v.SetDefault("journal.timeout", 30)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	// Engine defaults
	v.SetDefault("engine.skip_signature_verification", false)
}
