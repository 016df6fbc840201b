// Package config loads merkledagctl's store-backend selection and log
// level, with flag > env > file > default precedence, via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Backend names a Store adapter.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBolt   Backend = "bolt"
	BackendSQLite Backend = "sqlite"
)

// Config is the resolved configuration for the CLI.
type Config struct {
	Backend Backend `mapstructure:"backend"`
	Path    string  `mapstructure:"path"`
	Debug   bool    `mapstructure:"debug"`
}

// Load reads configPath (if non-empty and present), overlays the
// MERKLEDAG_-prefixed environment, and finally overlays any of flags'
// backend/path/debug flags the caller actually set, giving the documented
// flag > env > file > default precedence. flags may be nil, for callers
// (tests, library use) with no command-line layer. An empty configPath is
// not an error; only a malformed file is.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("backend", string(BackendMemory))
	v.SetDefault("path", "merkledag.db")
	v.SetDefault("debug", false)

	v.SetEnvPrefix("MERKLEDAG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	if flags != nil {
		for _, key := range []string{"backend", "path", "debug"} {
			if f := flags.Lookup(key); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: binding --%s: %w", key, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendBolt, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
}
