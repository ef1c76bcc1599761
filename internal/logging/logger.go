// Package logging builds the zap loggers used across uncss.
//
// The terminal UI owns stdout and stderr, so in TUI mode logs go to a file
// under <dir>/logs and only when debug mode is on. The serve and reduce
// commands log to stderr instead.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"uncss/internal/config"
)

// Category names a subsystem. Each maps to a zap named logger.
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and configuration
	CategorySubmission Category = "submission" // Controller state transitions
	CategoryReduction  Category = "reduction"  // Reduction client requests
	CategoryClipboard  Category = "clipboard"  // Copy attempts
	CategoryServer     Category = "server"     // HTTP service
	CategoryUncss      Category = "uncss"      // Stylesheet reduction
	CategoryUI         Category = "ui"         // Page model
)

// For returns the named child logger for a category.
func For(l *zap.Logger, c Category) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(string(c))
}

// New returns the file-backed logger for TUI mode and a function that
// flushes and closes it. With debug mode off it returns a no-op logger and
// creates nothing on disk.
func New(cfg config.LoggingConfig, dir string) (*zap.Logger, func(), error) {
	if !cfg.DebugMode {
		return zap.NewNop(), func() {}, nil
	}

	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, nil, err
	}

	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := cfg.File
	if name == "" {
		name = "uncss.log"
	}
	path := filepath.Join(logsDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	core := zapcore.NewCore(newEncoder(cfg.JSONFormat), zapcore.AddSync(f), level)
	logger := zap.New(core, zap.AddCaller())

	For(logger, CategoryBoot).Info("logging initialized",
		zap.String("file", path),
		zap.Stringer("level", level),
	)

	cleanup := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, cleanup, nil
}

// NewStderr returns the logger used by the non-interactive commands: zap's
// production config writing to stderr at the configured level, console
// encoded unless json_format is set.
func NewStderr(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if !cfg.JSONFormat {
		zapCfg.Encoding = "console"
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func newEncoder(json bool) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if json {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}
