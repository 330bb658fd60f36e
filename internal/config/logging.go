package config

import (
	"go.uber.org/zap"

	"github.com/mrz1836/lexe/pkg/logging"
)

// NewLogger builds the CLI logger. Verbose output forces debug logs to
// stderr; otherwise the configured level goes to the configured file.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.Output.Verbose {
		return logging.New(logging.LevelDebug, "")
	}
	return logging.New(c.Logging.Level, ExpandHome(c.Logging.File))
}
