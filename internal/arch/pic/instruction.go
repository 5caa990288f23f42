package pic

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
)

const maxOperands = 3

// Instruction is a decoded PIC instruction. It is not modified after decoding.
type Instruction struct {
	Address  ir.Address
	Length   int
	Bytes    []byte
	Opcode   Opcode
	Operands []Operand
}

// NewInstruction returns a validated instruction. Immediates can not be
// wider than an instruction word.
func NewInstruction(address ir.Address, data []byte, opcode Opcode, wordBits int, operands ...Operand) (*Instruction, error) {
	if len(operands) > maxOperands {
		return nil, fmt.Errorf("%w: %s has %d operands", arch.ErrInvalidOperand, opcode, len(operands))
	}
	for _, op := range operands {
		if err := validateOperand(op, wordBits); err != nil {
			return nil, fmt.Errorf("%s: %w", opcode, err)
		}
	}
	return &Instruction{
		Address:  address,
		Length:   len(data),
		Bytes:    data,
		Opcode:   opcode,
		Operands: operands,
	}, nil
}

// NewInvalid returns the marker instruction for undecodable input.
func NewInvalid(address ir.Address, data []byte) *Instruction {
	return &Instruction{
		Address: address,
		Length:  len(data),
		Bytes:   data,
		Opcode:  Invalid,
	}
}

func validateOperand(op Operand, wordBits int) error {
	switch o := op.(type) {
	case nil:
		return fmt.Errorf("%w: nil operand", arch.ErrInvalidOperand)
	case ImmediateOperand:
		if o.Width <= 0 || o.Width > wordBits {
			return fmt.Errorf("%w: immediate width %d", arch.ErrInvalidOperand, o.Width)
		}
		// negative values are signed immediates of the given width
		limit := int64(1) << o.Width
		if int64(o.Value) >= limit || int64(o.Value) < -limit/2 {
			return fmt.Errorf("%w: immediate %d exceeds %d bits", arch.ErrInvalidOperand, o.Value, o.Width)
		}
	case IndexedOperand:
		if o.Base == nil {
			return fmt.Errorf("%w: indexed operand without base", arch.ErrInvalidOperand)
		}
		if o.Displacement > 0xFF || o.Displacement < -0xFF {
			return fmt.Errorf("%w: displacement %d", arch.ErrInvalidOperand, o.Displacement)
		}
	case RegisterOperand:
		if o.Reg == nil {
			return fmt.Errorf("%w: nil register", arch.ErrInvalidOperand)
		}
	case BitOperand:
		if o.Bit > 7 {
			return fmt.Errorf("%w: bit number %d", arch.ErrInvalidOperand, o.Bit)
		}
	}
	return nil
}

// Location returns the instruction address.
func (i *Instruction) Location() ir.Address { return i.Address }

// Size returns the instruction length in bytes.
func (i *Instruction) Size() int { return i.Length }

// IsValid returns whether the instruction was decoded successfully.
func (i *Instruction) IsValid() bool { return i.Opcode != Invalid }

// Mnemonic returns the instruction name.
func (i *Instruction) Mnemonic() string { return i.Opcode.String() }

func (i *Instruction) String() string {
	if !i.IsValid() {
		return fmt.Sprintf("invalid 0x%X", i.Bytes)
	}

	var ops []string
	access := ""
	for _, op := range i.Operands {
		if f, ok := op.(FileOperand); ok {
			switch f.Access {
			case AccessBank:
				access = "ACCESS"
			case Banked:
				access = "BANKED"
			}
		}
		if s := op.String(); s != "" {
			ops = append(ops, s)
		}
	}
	if access != "" && i.Opcode != MOVFF {
		ops = append(ops, access)
	}

	if len(ops) == 0 {
		return i.Mnemonic()
	}
	return i.Mnemonic() + " " + strings.Join(ops, ", ")
}

// Next returns the address following the instruction.
func (i *Instruction) Next() ir.Address {
	return i.Address.Add(i.Length)
}

// OperandAs returns the operand at the given index converted to the requested type.
func OperandAs[T Operand](inst *Instruction, index int) (T, error) {
	var zero T
	if index < 0 || index >= len(inst.Operands) {
		return zero, fmt.Errorf("%w: %s at %s is missing operand %d",
			arch.ErrInvalidOperand, inst.Opcode, inst.Address, index+1)
	}
	op, ok := inst.Operands[index].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s at %s operand %d is %T, expected %T",
			arch.ErrInvalidOperand, inst.Opcode, inst.Address, index+1, inst.Operands[index], zero)
	}
	return op, nil
}
