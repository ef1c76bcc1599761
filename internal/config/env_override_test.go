package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("UNCSS_ENDPOINT sets the endpoint", func(t *testing.T) {
		t.Setenv("UNCSS_ENDPOINT", "http://10.0.0.2:3000/api/uncss")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://10.0.0.2:3000/api/uncss", cfg.Service.Endpoint)
		assert.False(t, cfg.Embedded())
	})

	t.Run("empty UNCSS_ENDPOINT forces embedded mode", func(t *testing.T) {
		t.Setenv("UNCSS_ENDPOINT", "")

		cfg := DefaultConfig()
		cfg.Service.Endpoint = "http://from-file/api/uncss"
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Embedded())
	})

	t.Run("UNCSS_LISTEN_ADDR", func(t *testing.T) {
		t.Setenv("UNCSS_LISTEN_ADDR", "0.0.0.0:8080")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "0.0.0.0:8080", cfg.Server.ListenAddr)
	})

	t.Run("UNCSS_DEBUG parses booleans", func(t *testing.T) {
		t.Setenv("UNCSS_DEBUG", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.True(t, cfg.Logging.DebugMode)

		t.Setenv("UNCSS_DEBUG", "nonsense")
		cfg = DefaultConfig()
		cfg.applyEnvOverrides()
		assert.False(t, cfg.Logging.DebugMode)
	})

	t.Run("UNCSS_LOG_LEVEL", func(t *testing.T) {
		t.Setenv("UNCSS_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("unset variables leave config alone", func(t *testing.T) {
		for _, k := range []string{"UNCSS_ENDPOINT", "UNCSS_LISTEN_ADDR", "UNCSS_DEBUG", "UNCSS_LOG_LEVEL"} {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}

		cfg := DefaultConfig()
		cfg.Service.Endpoint = "http://from-file/api/uncss"
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://from-file/api/uncss", cfg.Service.Endpoint)
		assert.Equal(t, DefaultConfig().Server, cfg.Server)
		assert.Equal(t, DefaultConfig().Logging, cfg.Logging)
	})
}
