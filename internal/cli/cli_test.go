package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/config"
	"github.com/retroenv/retrolift/internal/options"
	"github.com/spf13/cobra"
)

func execute(t *testing.T, args ...string) (options.Program, options.Lifter, string, error) {
	t.Helper()
	registry, err := config.CreateRegistry()
	assert.NoError(t, err)

	var gotOpts options.Program
	var gotLifter options.Lifter
	root := NewRootCommand(registry, func(_ *cobra.Command, opts options.Program, lifterOpts options.Lifter) error {
		gotOpts = opts
		gotLifter = lifterOpts
		return nil
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err = root.Execute()
	return gotOpts, gotLifter, out.String(), err
}

//nolint:funlen // test functions can be long
func TestLiftFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Lifter
	}{
		{
			name: "default flags",
			args: []string{"lift", "firmware.hex"},
			want: options.Lifter{ContinueOnError: true, Workers: 4, HexBytes: true, Statements: true},
		},
		{
			name: "mode flag",
			args: []string{"lift", "-m", "PIC16-Enhanced", "firmware.hex"},
			want: options.Lifter{Mode: "pic16-enhanced", ContinueOnError: true, Workers: 4, HexBytes: true, Statements: true},
		},
		{
			name: "output flags",
			args: []string{"lift", "--nohexbytes", "--nostatements", "firmware.hex"},
			want: options.Lifter{ContinueOnError: true, Workers: 4},
		},
		{
			name: "strict and limits",
			args: []string{"lift", "--strict", "--max-instructions", "10", "--workers", "2", "firmware.hex"},
			want: options.Lifter{MaxInstructions: 10, Workers: 2, HexBytes: true, Statements: true},
		},
		{
			name: "ranges",
			args: []string{"lift", "-r", "0x0:0x100", "--range", "0x200:0x300", "firmware.hex"},
			want: options.Lifter{
				Ranges:          []options.Range{{Start: 0, End: 0x100}, {Start: 0x200, End: 0x300}},
				ContinueOnError: true,
				Workers:         4,
				HexBytes:        true,
				Statements:      true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, got, _, err := execute(t, tt.args...)
			assert.NoError(t, err)
			assert.Equal(t, "firmware.hex", opts.Input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgramFlags(t *testing.T) {
	opts, _, _, err := execute(t, "lift", "--binary", "--base", "0x800", "-o", "out.lst", "-q", "firmware.bin")
	assert.NoError(t, err)
	assert.True(t, opts.Binary)
	assert.True(t, opts.Quiet)
	assert.Equal(t, uint32(0x800), opts.Base)
	assert.Equal(t, uint32(options.DefaultProgramLimit), opts.ProgramLimit)
	assert.Equal(t, "out.lst", opts.Output)

	opts, _, _, err = execute(t, "lift", "--batch", "*.hex")
	assert.NoError(t, err)
	assert.Equal(t, "*.hex", opts.Batch)
	assert.Equal(t, "", opts.Input)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"lift"}},
		{name: "unknown mode", args: []string{"lift", "-m", "z80", "firmware.hex"}},
		{name: "invalid range", args: []string{"lift", "-r", "0x100", "firmware.hex"}},
		{name: "invalid range start", args: []string{"lift", "-r", "x:0x100", "firmware.hex"}},
		{name: "empty range", args: []string{"lift", "-r", "0x100:0x100", "firmware.hex"}},
		{name: "no workers", args: []string{"lift", "--workers", "0", "firmware.hex"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := execute(t, tt.args...)
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr), err)
			assert.NotEmpty(t, usageErr.Error())
		})
	}

	_, _, _, err := execute(t, "lift", "a.hex", "b.hex")
	assert.Error(t, err)
}

func TestModesCommand(t *testing.T) {
	_, _, out, err := execute(t, "modes")
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, 5, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "pic16 "))
	assert.True(t, strings.HasPrefix(lines[4], "pic18-extended "))
}
