package main

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time and logging.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Logger *zap.Logger
}

// DefaultEnv returns the production environment. main replaces Logger once
// the log level is known.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: zap.NewNop(),
	}
}
