package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30*time.Second, time.Duration(cfg.RPC.Timeout))
	assert.Equal(t, uint64(3), cfg.RPC.Retries)
	assert.Zero(t, cfg.RPC.RateLimit)
	assert.Equal(t, 16, cfg.Engine.Concurrency)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
	assert.Nil(t, cfg.Overrides())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
chains:
  mainnet: http://localhost:9000
rpc:
  timeout: 5s
  rate_limit: 10
engine:
  concurrency: 4
cache:
  enabled: true
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, time.Duration(cfg.RPC.Timeout))
	assert.Equal(t, uint64(3), cfg.RPC.Retries, "unset keys keep defaults")
	assert.Equal(t, 10.0, cfg.RPC.RateLimit)
	assert.Equal(t, 4, cfg.Engine.Concurrency)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, chain.Overrides{chain.Mainnet: "http://localhost:9000"}, cfg.Overrides())

	opts := cfg.RPCOptions()
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, 10.0, opts.RateLimit)
}

func TestLoad_EmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_CUE(t *testing.T) {
	path := writeFile(t, "config.cue", `
chains: testnet: "https://rpc.example.com"
engine: max_rows: 50
history: enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Engine.MaxRows)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 16, cfg.Engine.Concurrency)
	assert.Equal(t, "https://rpc.example.com", cfg.Overrides()[chain.Testnet])
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown yaml key", "c.yaml", "engine:\n  workers: 3\n"},
		{"bad chain name", "c.yaml", "chains:\n  moonnet: http://x\n"},
		{"bad chain url", "c.yaml", "chains:\n  mainnet: localhost\n"},
		{"zero concurrency", "c.yaml", "engine:\n  concurrency: 0\n"},
		{"bad level", "c.yaml", "log:\n  level: chatty\n"},
		{"bad duration", "c.yaml", "rpc:\n  timeout: soon\n"},
		{"unknown cue key", "c.cue", "extra: 1\n"},
		{"cue type error", "c.cue", "rpc: retries: \"three\"\n"},
		{"unsupported extension", "c.toml", "x = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.NotEmpty(t, cfgErr.Path)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	path, required := Resolve("explicit.yaml")
	assert.Equal(t, "explicit.yaml", path)
	assert.True(t, required)

	path, required = Resolve("")
	assert.Equal(t, filepath.Join("/xdg", "suiql", "config.yaml"), path)
	assert.False(t, required)

	t.Setenv(EnvPath, "/etc/suiql.yaml")
	path, required = Resolve("")
	assert.Equal(t, "/etc/suiql.yaml", path)
	assert.True(t, required)
}

func TestLoadDefault_MissingDefaultIsFine(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefault_MissingExplicitFails(t *testing.T) {
	_, err := LoadDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"
	assert.Equal(t, "WARN", cfg.LogLevel().String())

	cfg.Log.Level = "???"
	assert.Equal(t, "INFO", cfg.LogLevel().String())
}
