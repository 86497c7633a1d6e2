package config

import "github.com/spf13/viper"

// setDefaults sets every key so environment overrides apply to all of them
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind", "127.0.0.1")
	v.SetDefault("server.port", 5005)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.websocket", true)

	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.cache_size", 256)
	v.SetDefault("storage.compress_threshold", 4096)

	v.SetDefault("oracle.namespace", "oracle")
	v.SetDefault("oracle.prune_rule", "literal")
	v.SetDefault("oracle.timestamp_policy", "trust")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
