// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package config loads process configuration from defaults, an optional
// YAML file, environment variables, and command-line flags (highest wins).
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment names recognized by Config.Production.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the assembled process configuration. It is built once at startup
// and passed down explicitly; no package reads configuration from globals.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Session  SessionConfig  `koanf:"session"`
	Auth     AuthConfig     `koanf:"auth"`
	Mail     MailConfig     `koanf:"mail"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr        string `koanf:"addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	Env         string `koanf:"env"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// RedisConfig configures the key-value cache connection.
type RedisConfig struct {
	URL string `koanf:"url"`
}

// SessionConfig configures the session cookie and server-side store.
type SessionConfig struct {
	CookieName string        `koanf:"cookie_name"`
	Domain     string        `koanf:"domain"`
	TTL        time.Duration `koanf:"ttl"`
}

// AuthConfig configures the password-reset flow.
type AuthConfig struct {
	// ResetURLBase is the frontend URL the reset token is appended to.
	ResetURLBase string `koanf:"reset_url_base"`
}

// MailConfig configures outbound mail. An empty SMTPAddr selects the
// log-only mailer.
type MailConfig struct {
	SMTPAddr string `koanf:"smtp_addr"`
	From     string `koanf:"from"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"`
}

// Production returns true when the server runs in the production environment.
// It drives the Secure flag on the session cookie.
func (c *Config) Production() bool {
	return c.Server.Env == EnvProduction
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":4000",
			MetricsAddr: "127.0.0.1:9100",
			Env:         EnvDevelopment,
		},
		Session: SessionConfig{
			CookieName: "qid",
			TTL:        10 * 365 * 24 * time.Hour,
		},
		Auth: AuthConfig{
			ResetURLBase: "http://localhost:3000/change-password/",
		},
		Mail: MailConfig{
			From: "noreply@driftboard.local",
		},
		Log: LogConfig{
			Format: "json",
		},
	}
}

// Load assembles the configuration. path is an optional YAML file; flags may
// be nil. DATABASE_URL and REDIS_URL environment variables override the file
// but not flags.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	// Defaults go in first so later layers only override what they set.
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return cfg, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := k.Set("database.url", url); err != nil {
			return cfg, oops.Code("CONFIG_ENV_FAILED").With("key", "database.url").Wrap(err)
		}
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		if err := k.Set("redis.url", url); err != nil {
			return cfg, oops.Code("CONFIG_ENV_FAILED").With("key", "redis.url").Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return cfg, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	return cfg, cfg.Validate()
}

// Validate checks invariants that hold for every command.
func (c *Config) Validate() error {
	if c.Server.Env != EnvDevelopment && c.Server.Env != EnvProduction {
		return oops.Code("CONFIG_INVALID").
			With("env", c.Server.Env).
			Errorf("server.env must be %q or %q", EnvDevelopment, EnvProduction)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("format", c.Log.Format).
			Errorf("log.format must be 'json' or 'text'")
	}
	if c.Session.CookieName == "" {
		return oops.Code("CONFIG_INVALID").Errorf("session.cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.ttl must be positive")
	}
	return nil
}
