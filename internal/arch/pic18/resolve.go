package pic18

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

const (
	accessBankSplit = 0x60
	accessBankSFR   = 0xF00
	dataAddressMask = 0xFFF
)

// resolveFile maps a file operand to a register or data memory location.
// Access bank offsets from 0x60 address the special function registers,
// banked offsets use BSR if it is known and a symbolic bank otherwise.
func resolveFile(r *pic.Rewriter, op pic.FileOperand) (pic.Location, error) {
	switch op.Access {
	case pic.Absolute:
		return r.AbsoluteLocation(op.Offset & dataAddressMask), nil

	case pic.AccessBank:
		address := op.Offset & 0xFF
		if address >= accessBankSplit {
			address |= accessBankSFR
		}
		return r.AbsoluteLocation(address), nil

	case pic.Banked:
		offset := op.Offset & 0xFF
		if bank, ok := r.State().Read(bsr); ok {
			return r.AbsoluteLocation(uint16(bank)<<8 | offset), nil
		}
		ea := ir.Seq(r.Reg(bsr), ir.Byte8(uint8(offset)), ir.Word16)
		return pic.Location{Mem: ir.Mem(ir.DataSpace, ea, ir.Byte)}, nil

	default:
		return pic.Location{}, fmt.Errorf("%w: access mode %d", arch.ErrInvalidOperand, op.Access)
	}
}
