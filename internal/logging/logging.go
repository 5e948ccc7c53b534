// Package logging builds the structured logger shared by the commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger writing JSON to stderr, at debug level when
// debug is set and info level otherwise.
func New(debug bool) (*zap.Logger, error) {
	level := "info"
	if debug {
		level = "debug"
	}
	return NewAtLevel(level)
}

// NewAtLevel returns a production logger at the named level ("debug", "info",
// "warn", "error"). An empty name means info.
func NewAtLevel(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		lvl = parsed
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	// a CLI has no use for the sampling production enables
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
