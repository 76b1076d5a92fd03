// Package xlog provides the structured logger shared by the scheduler,
// the TURBO coordinator, and the CLI driver. The core's data path
// (state machine transitions, buffer writes) never logs; only
// lifecycle events on long-running or concurrent components do.
package xlog

import "go.uber.org/zap"

// Nop returns a logger that discards everything, the default for
// library callers that never configure one explicitly.
func Nop() *zap.Logger { return zap.NewNop() }

// Production returns a JSON-structured logger suitable for the CLI's
// default mode.
func Production() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Development returns a human-readable, verbose logger for the CLI's
// --verbose mode.
func Development() *zap.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
