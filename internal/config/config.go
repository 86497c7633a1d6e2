package config

import (
	"fmt"
	"time"
)

// Config represents the complete oracled.toml configuration
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Oracle  OracleConfig  `toml:"oracle" mapstructure:"oracle"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`

	// Path of the loaded file, empty when running on defaults
	configPath string
}

// ServerConfig represents the [server] section
type ServerConfig struct {
	Bind           string `toml:"bind" mapstructure:"bind"`
	Port           int    `toml:"port" mapstructure:"port"`
	TimeoutSeconds int    `toml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MetricsPath    string `toml:"metrics_path" mapstructure:"metrics_path"`
	WebSocket      bool   `toml:"websocket" mapstructure:"websocket"`
}

// StorageConfig represents the [storage] section
type StorageConfig struct {
	Backend           string `toml:"backend" mapstructure:"backend"`
	Path              string `toml:"path" mapstructure:"path"`
	DSN               string `toml:"dsn" mapstructure:"dsn"`
	CacheSize         int    `toml:"cache_size" mapstructure:"cache_size"`
	CompressThreshold int    `toml:"compress_threshold" mapstructure:"compress_threshold"`
}

// OracleConfig represents the [oracle] section
type OracleConfig struct {
	Namespace       string `toml:"namespace" mapstructure:"namespace"`
	PruneRule       string `toml:"prune_rule" mapstructure:"prune_rule"`
	TimestampPolicy string `toml:"timestamp_policy" mapstructure:"timestamp_policy"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// Address returns bind:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Bind, s.Port)
}

// Timeout returns the request timeout
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ConfigPath returns the file the configuration was read from
func (c *Config) ConfigPath() string {
	return c.configPath
}
