package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SERVER_ADDRESS",
	"DATABASE_URL",
	"GRPC_ADDRESS",
	"LOG_LEVEL",
	"LOG_FILE",
	"CORS_ORIGINS",
	"SHUTDOWN_TIMEOUT",
	"CONFIG",
}

// clearEnv unsets every variable the config reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ServerAddress)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.GRPCAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestParseWithArgs(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]string{
		"-a", "localhost:8888",
		"-d", "sqlite:///tmp/shortlink.db",
		"-g", ":3200",
		"-l", "debug",
		"-log-file", "/tmp/shortlink.log",
		"-cors", "https://a.example.com, https://b.example.com",
		"-shutdown-timeout", "3s",
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8888", cfg.ServerAddress)
	assert.Equal(t, "sqlite:///tmp/shortlink.db", cfg.DatabaseURL)
	assert.Equal(t, ":3200", cfg.GRPCAddress)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/shortlink.log", cfg.LogFile)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestParseWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDRESS", "env:9000")
	t.Setenv("DATABASE_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ORIGINS", "https://x.example.com,https://y.example.com")
	t.Setenv("SHUTDOWN_TIMEOUT", "1m")

	cfg, err := Parse([]string{"-a", "flag:8000", "-d", "memory://"})
	require.NoError(t, err)

	assert.Equal(t, "env:9000", cfg.ServerAddress)
	assert.Equal(t, "redis://localhost:6379/0", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://x.example.com", "https://y.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, time.Minute, cfg.ShutdownTimeout)
}

func TestParseWithJSON(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `{
		"server_address": "json:8080",
		"database_url": "file:///tmp/urls.jsonl",
		"log_level": "warn",
		"cors_origins": ["https://json.example.com"],
		"shutdown_timeout": "5s"
	}`)

	cfg, err := Parse([]string{"-c", path})
	require.NoError(t, err)

	assert.Equal(t, "json:8080", cfg.ServerAddress)
	assert.Equal(t, "file:///tmp/urls.jsonl", cfg.DatabaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"https://json.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestParsePriority(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `{
		"server_address": "json:8080",
		"database_url": "file:///tmp/urls.jsonl",
		"log_level": "warn"
	}`)
	t.Setenv("CONFIG", path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Parse([]string{"-a", "flag:8000", "-l", "debug"})
	require.NoError(t, err)

	// flag over JSON
	assert.Equal(t, "flag:8000", cfg.ServerAddress)
	// JSON over default
	assert.Equal(t, "file:///tmp/urls.jsonl", cfg.DatabaseURL)
	// env over flag
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestParseErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		args []string
		file string
	}{
		{name: "unknown flag", args: []string{"-x"}},
		{name: "bad duration flag", args: []string{"-shutdown-timeout", "soon"}},
		{name: "non-positive timeout", args: []string{"-shutdown-timeout", "0s"}},
		{name: "empty address", args: []string{"-a", ""}},
		{name: "missing config file", args: []string{"-c", filepath.Join(t.TempDir(), "missing.json")}},
		{name: "malformed config file", file: `{"server_address":`},
		{name: "bad duration in file", file: `{"shutdown_timeout":"later"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.file != "" {
				args = []string{"-config", writeConfigFile(t, tt.file)}
			}

			_, err := Parse(args)
			assert.Error(t, err)
		})
	}
}

func TestParseDotEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GRPC_ADDRESS=:3300\nLOG_LEVEL=debug\n"), 0o644))
	t.Setenv("LOG_LEVEL", "warn")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("GRPC_ADDRESS")
	})

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3300", cfg.GRPCAddress)
	// real environment wins over .env
	assert.Equal(t, "warn", cfg.LogLevel)
}
