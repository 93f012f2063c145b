// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// VerboseEnv enables debug logging for every command when set to "1".
const VerboseEnv = "LODGE_VERBOSE"

// ParseLevel maps a config/flag string onto a pterm log level. Unknown values yield info.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}

// New returns a structured logger writing to w at the given level.
// LODGE_VERBOSE=1 forces debug regardless of level.
func New(w io.Writer, level string) *pterm.Logger {
	lvl := ParseLevel(level)
	if os.Getenv(VerboseEnv) == "1" {
		lvl = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.
		WithWriter(w).
		WithLevel(lvl).
		WithTime(false)
}

// Nop returns a logger that discards everything. Library components default to it.
func Nop() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard).WithLevel(pterm.LogLevelDisabled)
}
