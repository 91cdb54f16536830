// Package config loads the chromactl connection configuration. Settings come
// from built-in defaults, an optional YAML config file, and CHROMA_* environment
// variables, in that order of precedence. Configuration is read once at startup
// and is immutable for the process lifetime.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for configuration environment variables
// (CHROMA_HOST, CHROMA_PORT, ...).
const EnvPrefix = "CHROMA_"

// ErrHostMissing is returned when no Chroma host is configured.
var ErrHostMissing = errors.New("config: CHROMA_HOST is not set")

// Config holds the connection settings for the remote Chroma server.
type Config struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	SSL      bool   `koanf:"ssl"`
	Token    string `koanf:"token"`
	Tenant   string `koanf:"tenant"`
	Database string `koanf:"database"`
}

// Load builds the configuration. path names an optional YAML config file;
// environment variables override file values.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("port", 8000)
	k.Set("ssl", false)
	k.Set("tenant", "default_tenant")
	k.Set("database", "default_database")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 2. Load from ENV (CHROMA_HOST -> host)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Host == "" {
		return nil, ErrHostMissing
	}
	return &cfg, nil
}
