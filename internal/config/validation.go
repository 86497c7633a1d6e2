package config

import (
	"fmt"
	"strings"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage"
)

// ValidateConfig performs validation of the entire configuration
func ValidateConfig(config *Config) error {
	if err := config.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}
	if err := config.Oracle.Validate(); err != nil {
		return fmt.Errorf("oracle config validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	return nil
}

// Validate validates the [server] section
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", s.TimeoutSeconds)
	}
	if !strings.HasPrefix(s.MetricsPath, "/") || s.MetricsPath == "/" {
		return fmt.Errorf("metrics_path must be an absolute path other than /, got %q", s.MetricsPath)
	}
	return nil
}

// Validate validates the [storage] section
func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case "memory":
	case "pebble", "bbolt", "leveldb", "sqlite":
		if s.Path == "" {
			return fmt.Errorf("path is required for backend %s", s.Backend)
		}
	case "postgres":
		if s.DSN == "" {
			return fmt.Errorf("dsn is required for backend postgres")
		}
	default:
		return fmt.Errorf("unknown backend %q, expected one of %s",
			s.Backend, strings.Join(storage.Backends, ", "))
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size cannot be negative, got %d", s.CacheSize)
	}
	return nil
}

// Validate validates the [oracle] section
func (o *OracleConfig) Validate() error {
	if o.Namespace == "" || strings.Contains(o.Namespace, "/") {
		return fmt.Errorf("namespace must be non-empty and contain no '/', got %q", o.Namespace)
	}
	if _, err := oracle.ParsePruneRule(o.PruneRule); err != nil {
		return err
	}
	if _, err := oracle.ParseTimestampPolicy(o.TimestampPolicy); err != nil {
		return err
	}
	return nil
}

// Validate validates the [log] section
func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q, expected text or json", l.Format)
	}
	return nil
}

// OracleOptions converts the [oracle] and [storage] sections into contract options
func (c *Config) OracleOptions() (oracle.Options, error) {
	opts := oracle.DefaultOptions()
	rule, err := oracle.ParsePruneRule(c.Oracle.PruneRule)
	if err != nil {
		return opts, err
	}
	policy, err := oracle.ParseTimestampPolicy(c.Oracle.TimestampPolicy)
	if err != nil {
		return opts, err
	}
	opts.PruneRule = rule
	opts.TimestampPolicy = policy
	opts.CompressThreshold = c.Storage.CompressThreshold
	return opts, nil
}
