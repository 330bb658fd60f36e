// Package logging configures the zap loggers used across the SDK.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by ParseLevel.
const (
	LevelOff   = "off"
	LevelError = "error"
	LevelWarn  = "warn"
	LevelInfo  = "info"
	LevelDebug = "debug"
)

// ParseLevel maps a level name to a zap level. ok is false for "off".
// Unknown names fall back to info.
func ParseLevel(s string) (level zapcore.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelOff, "none":
		return zapcore.InfoLevel, false
	case LevelError:
		return zapcore.ErrorLevel, true
	case LevelWarn, "warning":
		return zapcore.WarnLevel, true
	case LevelDebug, "trace":
		return zapcore.DebugLevel, true
	default:
		return zapcore.InfoLevel, true
	}
}

// New builds a logger at the given level. With a file path it writes JSON
// lines to that file (a leading ~/ is expanded); otherwise it writes
// human-readable lines to stderr.
func New(level, filePath string) (*zap.Logger, error) {
	lvl, ok := ParseLevel(level)
	if !ok {
		return zap.NewNop(), nil
	}

	if filePath == "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.DisableStacktrace = true
		return cfg.Build()
	}

	if strings.HasPrefix(filePath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		filePath = filepath.Join(home, filePath[2:])
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{filePath}
	cfg.ErrorOutputPaths = []string{filePath}
	return cfg.Build()
}

// Init builds a stderr logger and installs it as the zap global, which SDK
// components use unless given their own logger.
func Init(level string) *zap.Logger {
	logger, err := New(level, "")
	if err != nil {
		logger = zap.NewNop()
	}
	zap.ReplaceGlobals(logger)
	return logger
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
