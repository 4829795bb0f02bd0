package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidLogLevel is returned for an unrecognized MANGUIDE_LOG_LEVEL.
var ErrInvalidLogLevel = errors.New("invalid log level")

// defaultLogLevel keeps stderr quiet unless something fails.
const defaultLogLevel = zapcore.ErrorLevel

// newLogger builds a production logger writing to stderr.
// verbose forces debug level regardless of level.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := resolveLogLevel(level, verbose)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// resolveLogLevel parses level (debug, info, warn, error).
// An empty level yields defaultLogLevel.
func resolveLogLevel(level string, verbose bool) (zapcore.Level, error) {
	if verbose {
		return zapcore.DebugLevel, nil
	}
	if level == "" {
		return defaultLogLevel, nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return defaultLogLevel, fmt.Errorf("%w: %s=%q", ErrInvalidLogLevel, envLogLevel, level)
	}
	return lvl, nil
}
