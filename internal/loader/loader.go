// Package loader handles program image loading operations.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrolift/internal/detector"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
	"github.com/retroenv/retrolift/internal/options"
)

// Loader handles loading program images from disk.
type Loader struct{}

// New creates a new image loader.
func New() *Loader {
	return &Loader{}
}

// Load loads and parses an image file in the given format.
// Raw binary images are placed at the base address of the options.
func (l *Loader) Load(opts options.Program, format detector.Format) (*image.Memory, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	mem, err := l.LoadReader(file, opts, format)
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", opts.Input, err)
	}
	return mem, nil
}

// LoadFromBytes loads an image from memory.
// This is useful for testing and programmatic usage where the file is already in memory.
func (l *Loader) LoadFromBytes(data []byte, opts options.Program, format detector.Format) (*image.Memory, error) {
	return l.LoadReader(bytes.NewReader(data), opts, format)
}

// LoadReader loads an image from a reader.
func (l *Loader) LoadReader(r io.Reader, opts options.Program, format detector.Format) (*image.Memory, error) {
	if format == detector.IntelHex {
		limit := opts.ProgramLimit
		if limit == 0 {
			limit = options.DefaultProgramLimit
		}
		return ParseHex(r, limit)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading binary image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}
	return image.New(ir.Address(opts.Base), data), nil
}
