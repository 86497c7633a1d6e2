package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oracled.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5005", config.Server.Address())
	assert.Equal(t, "/metrics", config.Server.MetricsPath)
	assert.True(t, config.Server.WebSocket)
	assert.Equal(t, "pebble", config.Storage.Backend)
	assert.Equal(t, 4096, config.Storage.CompressThreshold)
	assert.Equal(t, "oracle", config.Oracle.Namespace)
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.ConfigPath())

	opts, err := config.OracleOptions()
	require.NoError(t, err)
	assert.Equal(t, oracle.DefaultOptions(), opts)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[server]
bind = "0.0.0.0"
port = 6006
timeout_seconds = 5
websocket = false

[storage]
backend = "bbolt"
path = "/var/lib/oracled"
cache_size = 0
compress_threshold = 0

[oracle]
namespace = "xlm"
prune_rule = "interval"
timestamp_policy = "reject"

[log]
level = "debug"
format = "json"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigPath())
	assert.Equal(t, "0.0.0.0:6006", config.Server.Address())
	assert.Equal(t, int64(5e9), int64(config.Server.Timeout()))
	assert.False(t, config.Server.WebSocket)
	assert.Equal(t, "/metrics", config.Server.MetricsPath)
	assert.Equal(t, "bbolt", config.Storage.Backend)
	assert.Equal(t, "/var/lib/oracled", config.Storage.Path)
	assert.Equal(t, "xlm", config.Oracle.Namespace)
	assert.Equal(t, "json", config.Log.Format)

	opts, err := config.OracleOptions()
	require.NoError(t, err)
	assert.Equal(t, oracle.PruneInterval, opts.PruneRule)
	assert.Equal(t, oracle.TimestampReject, opts.TimestampPolicy)
	assert.Equal(t, 0, opts.CompressThreshold)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, `
[storage]
backend = "leveldb"
`)
	t.Setenv("ORACLED_STORAGE_BACKEND", "memory")
	t.Setenv("ORACLED_SERVER_PORT", "7007")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", config.Storage.Backend)
	assert.Equal(t, 7007, config.Server.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server config"},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"root metrics path", func(c *Config) { c.Server.MetricsPath = "/" }, "metrics_path"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "rocksdb" }, "unknown backend"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = "postgres" }, "dsn is required"},
		{"pebble without path", func(c *Config) { c.Storage.Path = "" }, "path is required"},
		{"negative cache", func(c *Config) { c.Storage.CacheSize = -1 }, "cache_size"},
		{"slash namespace", func(c *Config) { c.Oracle.Namespace = "a/b" }, "namespace"},
		{"bad prune rule", func(c *Config) { c.Oracle.PruneRule = "sometimes" }, "oracle config"},
		{"bad policy", func(c *Config) { c.Oracle.TimestampPolicy = "maybe" }, "oracle config"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig("")
			require.NoError(t, err)
			tt.mutate(config)

			err = ValidateConfig(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
