// Package arch contains types and functions used for multi architecture support.
// It acts as a bridge between the lifting pipeline and the architecture specific code.
package arch

import (
	"encoding/binary"

	"github.com/retroenv/retrolift/internal/ir"
)

// Architecture contains architecture specific information.
type Architecture interface {
	// ID returns the identifier of the architecture family, shared by all its modes.
	ID() string
	// Name returns the name of the processor mode the architecture was created for.
	Name() string
	// ByteOrder returns the byte order of instruction words.
	ByteOrder() binary.ByteOrder
	// MinOpcodeWidth returns the smallest instruction size in bytes.
	// Undecodable input is skipped in steps of this size.
	MinOpcodeWidth() int
	// PointerType returns the data type of code addresses.
	PointerType() ir.DataType
}

// Instruction is a decoded machine instruction.
type Instruction interface {
	// Location returns the address of the first byte of the instruction.
	Location() ir.Address
	// Size returns the byte length of the instruction.
	Size() int
	// IsValid returns false for instructions that could not be decoded.
	IsValid() bool
	// Mnemonic returns the lowercase instruction name.
	Mnemonic() string
	// String returns the instruction in assembler notation.
	String() string
}

// Disassembler decodes a stream of instructions from an image reader.
type Disassembler interface {
	// DecodeNext decodes the instruction at the cursor and advances the cursor by its size.
	// It returns ErrEndOfStream once the input is exhausted.
	DecodeNext() (Instruction, error)
	// Seek positions the cursor at the given address and resets an exhausted stream.
	Seek(address ir.Address) error
}

// Rewriter translates decoded instructions into IR clusters.
type Rewriter interface {
	// Rewrite returns the validated cluster for the instruction.
	Rewrite(inst Instruction) (*ir.Cluster, error)
}

// ProcessorState tracks register values known during lifting.
type ProcessorState interface {
	// PC returns the address of the instruction being lifted.
	PC() ir.Address
	// SetPC sets the address of the instruction being lifted.
	SetPC(address ir.Address)
}

// StorageBinder maps storage names to IR identifiers.
type StorageBinder interface {
	// EnsureIdentifier returns the identifier for the named storage, creating it on first use.
	EnsureIdentifier(name string, typ ir.DataType) *ir.Identifier
}

// Severity of a diagnostic report.
type Severity int

// Diagnostic severities.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Host is the services boundary of the lifting core.
type Host interface {
	// PseudoProcedure returns the application of the named pseudo procedure to the arguments.
	// Equal names always refer to the same procedure.
	PseudoProcedure(name string, returnType ir.DataType, args ...ir.Expression) ir.Expression
	// Report records a diagnostic for the given address.
	Report(severity Severity, address ir.Address, message string)
}
