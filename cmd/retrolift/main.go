// Package main implements the main entry point for the PIC instruction lifter
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/cli"
	"github.com/retroenv/retrolift/internal/config"
	"github.com/retroenv/retrolift/internal/fileprocessor"
	"github.com/retroenv/retrolift/internal/options"
	"github.com/retroenv/retrolift/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	registry, err := config.CreateRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := cli.NewRootCommand(registry, func(cmd *cobra.Command, opts options.Program, lifterOpts options.Lifter) error {
		return run(cmd.Context(), registry, opts, lifterOpts)
	})
	root.Version = buildinfo.Version(version, commit, date)

	if err := root.ExecuteContext(ctx); err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%s\n\n", usageErr)
			_ = root.Usage()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, registry *arch.Registry, opts options.Program, lifterOpts options.Lifter) error {
	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		return err
	}

	p := pipeline.New(logger, registry)
	var failed int
	for _, file := range files {
		opts.Input = file
		if len(files) > 1 {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(ctx, p, opts, lifterOpts); err != nil {
			// Handle context cancellation (Ctrl+C) gracefully
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return nil
			}
			logger.Error("Lifting failed", log.String("file", file), log.Err(err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
