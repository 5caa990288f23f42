package pic

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/ir"
)

// Operand is an instruction operand.
type Operand interface {
	fmt.Stringer
	operand()
}

// ImmediateOperand is a literal value of the given bit width.
type ImmediateOperand struct {
	Value int32
	Width int
}

func (o ImmediateOperand) String() string {
	if o.Value < 0 {
		return fmt.Sprintf("-0x%02X", -o.Value)
	}
	return fmt.Sprintf("0x%02X", o.Value)
}

// Unsigned returns the value truncated to the operand width.
func (o ImmediateOperand) Unsigned() uint32 {
	return uint32(o.Value) & (1<<o.Width - 1)
}

// RegisterOperand names a register directly.
type RegisterOperand struct {
	Reg *Register
}

func (o RegisterOperand) String() string {
	return o.Reg.Name
}

// Adjust is the pointer adjustment of an indexed access.
type Adjust int

// Pointer adjustments.
const (
	NoAdjust Adjust = iota
	AdjustPreInc
	AdjustPreDec
	AdjustPostInc
	AdjustPostDec
)

// IndexedOperand accesses data memory through an FSR register.
type IndexedOperand struct {
	Base         *Register
	Displacement int32
	Adjust       Adjust
}

func (o IndexedOperand) String() string {
	switch o.Adjust {
	case AdjustPreInc:
		return "++" + o.Base.Name
	case AdjustPreDec:
		return "--" + o.Base.Name
	case AdjustPostInc:
		return o.Base.Name + "++"
	case AdjustPostDec:
		return o.Base.Name + "--"
	}
	if o.Displacement < 0 {
		return fmt.Sprintf("[%s-0x%02X]", o.Base.Name, -o.Displacement)
	}
	return fmt.Sprintf("[%s+0x%02X]", o.Base.Name, o.Displacement)
}

// AccessMode selects how a file register address is formed.
type AccessMode int

// File register access modes.
const (
	Absolute   AccessMode = iota // full data address
	AccessBank                   // PIC18 access bank
	Banked                       // offset into the bank selected by the processor
	BankOffset                   // PIC16 offset into the bank selected by RP or BSR
)

// FileOperand is a file register reference.
type FileOperand struct {
	Offset uint16
	Access AccessMode
}

func (o FileOperand) String() string {
	if o.Access == Absolute {
		return fmt.Sprintf("0x%03X", o.Offset)
	}
	return fmt.Sprintf("0x%02X", o.Offset)
}

// DestOperand selects whether a result is stored in WREG or the file register.
type DestOperand struct {
	ToFile bool
}

func (o DestOperand) String() string {
	if o.ToFile {
		return "F"
	}
	return "W"
}

// BitOperand is a bit number of a file register.
type BitOperand struct {
	Bit uint8
}

func (o BitOperand) String() string {
	return fmt.Sprintf("%d", o.Bit)
}

// TargetOperand is a code address.
type TargetOperand struct {
	Address ir.Address
}

func (o TargetOperand) String() string {
	return o.Address.String()
}

// FastOperand selects the shadow register save or restore of calls and returns.
type FastOperand struct {
	Fast bool
}

func (o FastOperand) String() string {
	if o.Fast {
		return "FAST"
	}
	return ""
}

// TableOperand is the TBLPTR adjustment of table reads and writes.
type TableOperand struct {
	Adjust Adjust
}

func (o TableOperand) String() string {
	switch o.Adjust {
	case AdjustPostInc:
		return "*+"
	case AdjustPostDec:
		return "*-"
	case AdjustPreInc:
		return "+*"
	default:
		return "*"
	}
}

func (ImmediateOperand) operand() {}
func (RegisterOperand) operand()  {}
func (IndexedOperand) operand()   {}
func (FileOperand) operand()      {}
func (DestOperand) operand()      {}
func (BitOperand) operand()       {}
func (TargetOperand) operand()    {}
func (FastOperand) operand()      {}
func (TableOperand) operand()     {}
