// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftboard/driftboard/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.MetricsAddr)
	assert.Equal(t, config.EnvDevelopment, cfg.Server.Env)
	assert.Equal(t, "qid", cfg.Session.CookieName)
	assert.Equal(t, 10*365*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "http://localhost:3000/change-password/", cfg.Auth.ResetURLBase)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Production())
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":8080"
  env: production
database:
  url: postgres://db.internal/driftboard
log:
  format: text
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "postgres://db.internal/driftboard", cfg.Database.URL)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Production())

	// Values the file does not mention keep their defaults.
	assert.Equal(t, "qid", cfg.Session.CookieName)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://from-file/db
redis:
  url: redis://from-file:6379
`)
	t.Setenv("DATABASE_URL", "postgres://from-env/db")
	t.Setenv("REDIS_URL", "redis://from-env:6379")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-env/db", cfg.Database.URL)
	assert.Equal(t, "redis://from-env:6379", cfg.Redis.URL)
}

func TestLoad_FlagsWinOverEverything(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":8080"
database:
  url: postgres://from-file/db
`)
	t.Setenv("DATABASE_URL", "postgres://from-env/db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", "", "")
	flags.String("database.url", "", "")
	require.NoError(t, flags.Parse([]string{
		"--server.addr", ":9999",
		"--database.url", "postgres://from-flag/db",
	}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "postgres://from-flag/db", cfg.Database.URL)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown environment",
			yaml: "server:\n  env: staging\n",
		},
		{
			name: "unknown log format",
			yaml: "log:\n  format: xml\n",
		},
		{
			name: "empty cookie name",
			yaml: "session:\n  cookie_name: \"\"\n",
		},
		{
			name: "negative session TTL",
			yaml: "session:\n  ttl: -1h\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			_, err := config.Load(path, nil)
			require.Error(t, err)
		})
	}
}
