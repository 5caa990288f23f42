// Package options contains the program options.
package options

import (
	"strings"

	"github.com/retroenv/retrolift/internal/ir"
)

// DefaultProgramLimit is the first address past the largest PIC program memory.
// Intel HEX records at or above it, like configuration words and EEPROM data, are ignored.
const DefaultProgramLimit = 0x200000

// Parameters contains file path options.
type Parameters struct {
	Input  string // input image file
	Output string // output listing file, stdout if empty
	Batch  string // file pattern of a batch run
}

// Flags contains behavior options.
type Flags struct {
	Mode   string
	Binary bool   // raw binary image instead of Intel HEX
	Base   uint32 // load address of a raw binary image
	Debug  bool
	Quiet  bool

	ProgramLimit uint32 // Intel HEX data at or above this address is ignored
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	NoHexBytes   bool
	NoStatements bool
}

// Program options of the lifter.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Range is a half open address range of program memory to lift.
// An End of 0 lifts until the end of the image.
type Range struct {
	Start ir.Address
	End   ir.Address
}

// Lifter defines options to control the lifting sessions.
type Lifter struct {
	Mode            string  // processor mode name
	Ranges          []Range // ranges to lift, the whole image if empty
	MaxInstructions int     // maximum instructions per range, 0 for no limit
	ContinueOnError bool    // substitute an invalid cluster for failed rewrites
	Workers         int     // maximum number of ranges lifted in parallel

	HexBytes   bool
	Statements bool
}

// NewLifter returns a new options instance with default options.
func NewLifter(mode string) Lifter {
	return Lifter{
		Mode:            strings.ToLower(mode),
		ContinueOnError: true,
		Workers:         4,

		HexBytes:   true,
		Statements: true,
	}
}
