package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Embedded())
	assert.Equal(t, 30*time.Second, cfg.GetServiceTimeout())
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.ListenAddr)
	assert.Equal(t, int64(4194304), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.False(t, cfg.Logging.DebugMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uncss.yaml")
	data := `
service:
  endpoint: http://reducer.internal:3000/api/uncss
  timeout: 10s
server:
  ignore:
    - .js-toggle
    - /^\.is-/
ui:
  theme: dark
logging:
  debug_mode: true
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Embedded())
	assert.Equal(t, "http://reducer.internal:3000/api/uncss", cfg.Service.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.GetServiceTimeout())
	assert.Equal(t, []string{".js-toggle", `/^\.is-/`}, cfg.Server.Ignore)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.True(t, cfg.Logging.DebugMode)

	// Unset keys keep their defaults.
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.ListenAddr)
	assert.Equal(t, "uncss.log", cfg.Logging.File)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service: [unterminated"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "uncss.yaml")

	cfg := DefaultConfig()
	cfg.Service.Endpoint = "https://example.com/api/uncss"
	cfg.Server.Ignore = []string{".keep"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Service.Timeout = "soon"
	cfg.Server.ShutdownTimeout = "-1s"

	assert.Equal(t, 30*time.Second, cfg.GetServiceTimeout())
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative endpoint", func(c *Config) { c.Service.Endpoint = "/api/uncss" }, "invalid service endpoint"},
		{"ftp endpoint", func(c *Config) { c.Service.Endpoint = "ftp://host/x" }, "invalid service endpoint"},
		{"bad timeout", func(c *Config) { c.Service.Timeout = "ten" }, "invalid service timeout"},
		{"bad listen addr", func(c *Config) { c.Server.ListenAddr = "localhost" }, "invalid listen address"},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "max_body_bytes"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "invalid ui theme"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestZapLevel(t *testing.T) {
	lc := LoggingConfig{}
	lvl, err := lc.ZapLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lc.Level = "warn"
	lvl, err = lc.ZapLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)
}
