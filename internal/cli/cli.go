// Package cli handles command line interface logic
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
	"github.com/retroenv/retrolift/internal/options"
	"github.com/spf13/cobra"
)

// RunFunc processes the input files with the parsed options.
type RunFunc func(cmd *cobra.Command, opts options.Program, lifterOpts options.Lifter) error

// UsageError represents an error that should show usage information
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

type liftFlags struct {
	ranges          []string
	maxInstructions int
	workers         int
	strict          bool
}

// NewRootCommand returns the retrolift command with its lift and modes sub commands.
func NewRootCommand(registry *arch.Registry, run RunFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "retrolift",
		Short:         "Lift PIC16 and PIC18 machine code into an intermediate representation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLiftCommand(registry, run), newModesCommand(registry))
	return root
}

func newLiftCommand(registry *arch.Registry, run RunFunc) *cobra.Command {
	var opts options.Program
	var lf liftFlags

	cmd := &cobra.Command{
		Use:   "lift [flags] <file to lift>",
		Short: "Disassemble an image and print the IR of every instruction",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.Batch == "" {
				return &UsageError{msg: "missing file to lift"}
			}
			if opts.Batch == "" {
				opts.Input = args[0]
			}

			lifterOpts, err := createLifterOptions(registry, opts, lf)
			if err != nil {
				return err
			}
			return run(cmd, opts, lifterOpts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "", "name of the output listing file, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .lst file naming, for example *.hex")
	flags.StringVarP(&opts.Mode, "mode", "m", "", "processor mode to lift for, auto-detected from file extension if not given")
	flags.BoolVar(&opts.Binary, "binary", false, "read input file as raw binary image instead of Intel HEX")
	flags.Uint32Var(&opts.Base, "base", 0, "load address of a raw binary image")
	flags.Uint32Var(&opts.ProgramLimit, "limit", options.DefaultProgramLimit, "ignore Intel HEX data at or above this address")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "perform operations quietly")
	flags.BoolVar(&opts.NoHexBytes, "nohexbytes", false, "do not output the instruction bytes")
	flags.BoolVar(&opts.NoStatements, "nostatements", false, "do not output the IR statements")

	flags.StringSliceVarP(&lf.ranges, "range", "r", nil, "address range start:end to lift, can be repeated")
	flags.IntVar(&lf.maxInstructions, "max-instructions", 0, "maximum number of instructions to lift per range")
	flags.IntVar(&lf.workers, "workers", 4, "maximum number of ranges lifted in parallel")
	flags.BoolVar(&lf.strict, "strict", false, "stop at the first instruction that can not be rewritten")

	return cmd
}

func newModesCommand(registry *arch.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the supported processor modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range registry.Names() {
				mode, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", mode.Name, mode.Description); err != nil {
					return fmt.Errorf("writing mode: %w", err)
				}
			}
			return nil
		},
	}
}

// createLifterOptions creates lifter options based on program options
func createLifterOptions(registry *arch.Registry, opts options.Program, lf liftFlags) (options.Lifter, error) {
	lifterOpts := options.NewLifter(opts.Mode)
	if opts.Mode != "" {
		if _, err := registry.Lookup(opts.Mode); err != nil {
			return options.Lifter{}, &UsageError{msg: err.Error()}
		}
	}
	if lf.workers < 1 {
		return options.Lifter{}, &UsageError{msg: "workers must be at least 1"}
	}

	for _, s := range lf.ranges {
		rng, err := parseRange(s)
		if err != nil {
			return options.Lifter{}, err
		}
		lifterOpts.Ranges = append(lifterOpts.Ranges, rng)
	}

	lifterOpts.MaxInstructions = lf.maxInstructions
	lifterOpts.Workers = lf.workers
	lifterOpts.ContinueOnError = !lf.strict
	lifterOpts.HexBytes = !opts.NoHexBytes
	lifterOpts.Statements = !opts.NoStatements
	return lifterOpts, nil
}

// parseRange parses a start:end address range, numbers can be given in any Go integer syntax.
func parseRange(s string) (options.Range, error) {
	start, end, ok := strings.Cut(s, ":")
	if !ok {
		return options.Range{}, &UsageError{msg: fmt.Sprintf("invalid range '%s', expected start:end", s)}
	}
	first, err := strconv.ParseUint(start, 0, 32)
	if err != nil {
		return options.Range{}, &UsageError{msg: fmt.Sprintf("invalid range start '%s'", start)}
	}
	last, err := strconv.ParseUint(end, 0, 32)
	if err != nil {
		return options.Range{}, &UsageError{msg: fmt.Sprintf("invalid range end '%s'", end)}
	}
	if last <= first {
		return options.Range{}, &UsageError{msg: fmt.Sprintf("empty range '%s'", s)}
	}
	return options.Range{Start: ir.Address(first), End: ir.Address(last)}, nil
}
