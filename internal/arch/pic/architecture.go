// Package pic contains the code shared by the Microchip PIC instruction set families:
// the register catalogue, the processor state, the table driven disassembler and
// the rewriter core that the family specific rewrite tables build on.
package pic

import (
	"encoding/binary"
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
)

// Architecture family identifiers.
const (
	PIC16 = "pic16"
	PIC18 = "pic18"
)

const minOpcodeWidth = 2

// Config describes a processor mode of a family.
type Config struct {
	Family             string
	Name               string
	WordBits           int // width of an instruction word
	DataAddressBits    int
	ProgramAddressBits int
	BankBits           int // width of the bank select value
	Extended           bool
}

// Architecture is the architecture of a PIC processor mode.
type Architecture struct {
	cfg         Config
	registers   *RegisterSet
	makeAddress func(c ir.Constant) ir.Address
}

// NewArchitecture returns a new architecture with an empty register catalogue.
func NewArchitecture(cfg Config) *Architecture {
	return &Architecture{
		cfg:       cfg,
		registers: NewRegisterSet(),
	}
}

// AsArchitecture converts a generic architecture into a PIC architecture of the given family.
func AsArchitecture(a arch.Architecture, family string) (*Architecture, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: architecture", arch.ErrNilCollaborator)
	}
	p, ok := a.(*Architecture)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: unsupported architecture type %T", arch.ErrWrongArchitecture, a)
	}
	if p.cfg.Family != family {
		return nil, fmt.Errorf("%w: %s is not %s", arch.ErrWrongArchitecture, p.cfg.Family, family)
	}
	return p, nil
}

// SetAddressRule sets the conversion of decoded constants to code addresses.
func (a *Architecture) SetAddressRule(fn func(c ir.Constant) ir.Address) {
	a.makeAddress = fn
}

// MakeAddress converts a decoded constant to a code address using the rule
// of the processor mode, zero extension if none is set.
func (a *Architecture) MakeAddress(c ir.Constant) ir.Address {
	if a.makeAddress == nil {
		return arch.ZeroExtendAddress(c)
	}
	return a.makeAddress(c)
}

// ID returns the family identifier.
func (a *Architecture) ID() string { return a.cfg.Family }

// Name returns the mode name.
func (a *Architecture) Name() string { return a.cfg.Name }

// ByteOrder returns the little endian byte order of instruction words.
func (a *Architecture) ByteOrder() binary.ByteOrder { return binary.LittleEndian }

// MinOpcodeWidth returns the size of an instruction word in bytes.
func (a *Architecture) MinOpcodeWidth() int { return minOpcodeWidth }

// PointerType returns the type of code addresses.
func (a *Architecture) PointerType() ir.DataType { return ir.Ptr32 }

// Config returns the mode configuration.
func (a *Architecture) Config() Config { return a.cfg }

// Registers returns the register catalogue.
func (a *Architecture) Registers() *RegisterSet { return a.registers }

// Extended returns whether the extended instruction set is enabled.
func (a *Architecture) Extended() bool { return a.cfg.Extended }

// WordMask returns the mask of the valid bits of an instruction word.
func (a *Architecture) WordMask() uint16 {
	return uint16(1<<a.cfg.WordBits - 1)
}

// ProgramMask returns the mask of valid program memory byte addresses.
func (a *Architecture) ProgramMask() uint32 {
	return 1<<a.cfg.ProgramAddressBits - 1
}

// DataMask returns the mask of valid data memory addresses.
func (a *Architecture) DataMask() uint32 {
	return 1<<a.cfg.DataAddressBits - 1
}
