// Package detector handles processor mode and image format detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrolift/internal/arch/pic16"
	"github.com/retroenv/retrolift/internal/arch/pic18"
	"github.com/retroenv/retrolift/internal/options"
)

// Format of an input image.
type Format int

// Supported image formats.
const (
	IntelHex Format = iota
	RawBinary
)

func (f Format) String() string {
	if f == RawBinary {
		return "binary"
	}
	return "intel-hex"
}

// Detector handles processor mode detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new mode detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the processor mode from options or file auto-detection.
// It first checks if a mode is explicitly specified in options, otherwise
// attempts to detect the mode from the input filename extension.
func (d *Detector) Detect(opts options.Program) string {
	mode := strings.ToLower(opts.Mode)
	if mode == "" {
		mode = d.detectFromFile(opts.Input)
		d.logger.Debug("Auto-detected processor mode",
			log.String("mode", mode),
			log.String("file", opts.Input))
	}
	return mode
}

// DetectFormat determines the image format from options or the file extension.
func (d *Detector) DetectFormat(opts options.Program) Format {
	if opts.Binary {
		return RawBinary
	}
	switch strings.ToLower(filepath.Ext(opts.Input)) {
	case ".hex", ".ihx", ".ihex":
		return IntelHex
	default:
		return RawBinary
	}
}

// detectFromFile determines the processor mode based on file extension.
func (d *Detector) detectFromFile(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".p16", ".pic16":
		return pic16.EnhancedName
	case ".p18", ".pic18":
		return pic18.TraditionalName
	default:
		// Intel HEX and raw images default to the traditional PIC18 instruction set
		return pic18.TraditionalName
	}
}
