package config

// ServerConfig represents the [server] section
type ServerConfig struct {
	Bind           string `toml:"bind" mapstructure:"bind"`
	Port           int    `toml:"port" mapstructure:"port"`
	TimeoutSeconds int    `toml:"timeout" mapstructure:"timeout"`
	WebSocket      bool   `toml:"websocket" mapstructure:"websocket"`
	Metrics        bool   `toml:"metrics" mapstructure:"metrics"`
	// MaxWSClients limits concurrent /ws subscribers, 0 means no limit
	MaxWSClients int `toml:"max_ws_clients" mapstructure:"max_ws_clients"`
}
