// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrolift/internal/options"
	"github.com/retroenv/retrolift/internal/pipeline"
)

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, p *pipeline.Pipeline, opts options.Program, lifterOpts options.Lifter) error {
	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok && writer != os.Stdout {
			_ = closer.Close()
		}
	}()

	if _, err := p.Execute(ctx, opts, lifterOpts, writer); err != nil {
		return fmt.Errorf("lifting %s: %w", opts.Input, err)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".lst"
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrolift", log.String("version", buildinfo.Version(version, commit, date)))
}
