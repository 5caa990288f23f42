// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic16"
	"github.com/retroenv/retrolift/internal/arch/pic18"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// Modes returns all supported processor modes.
func Modes() []arch.Mode {
	return []arch.Mode{
		pic16.BasicMode(),
		pic16.EnhancedMode(),
		pic16.FullMode(),
		pic18.TraditionalMode(),
		pic18.ExtendedMode(),
	}
}

// CreateRegistry returns a registry of all supported processor modes.
func CreateRegistry() (*arch.Registry, error) {
	return arch.NewRegistry(Modes()...)
}
