package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool   `yaml:"debug_mode"` // Master toggle - false = no log file (production)
	Level      string `yaml:"level"`      // debug, info, warn, error
	File       string `yaml:"file"`       // created under <dir>/logs
	JSONFormat bool   `yaml:"json_format"`
}

// ZapLevel parses Level. An empty level means info.
func (c *LoggingConfig) ZapLevel() (zapcore.Level, error) {
	if c.Level == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return lvl, nil
}
