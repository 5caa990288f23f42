package pic16

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

const (
	bankSize       = 0x80
	offsetMask     = 0x7F
	commonRAMStart = 0x70
)

func bankOffset(op pic.FileOperand) (uint16, error) {
	if op.Access != pic.BankOffset {
		return 0, fmt.Errorf("%w: access mode %d", arch.ErrInvalidOperand, op.Access)
	}
	return op.Offset & offsetMask, nil
}

// mirrored returns the core register at the offset if it is visible in every bank.
func mirrored(r *pic.Rewriter, offset uint16) (*pic.Register, bool) {
	reg, ok := r.Architecture().Registers().ByAddress(offset)
	if !ok || !reg.Mirrored {
		return nil, false
	}
	return reg, true
}

func symbolicBank(r *pic.Rewriter, selector string, offset uint16) pic.Location {
	ea := ir.Seq(r.Reg(selector), ir.Byte8(uint8(offset)), ir.Word16)
	return pic.Location{Mem: ir.Mem(ir.DataSpace, ea, ir.Byte)}
}

// resolveBasic maps a file operand using the STATUS RP1:RP0 bank bits.
func resolveBasic(r *pic.Rewriter, op pic.FileOperand) (pic.Location, error) {
	offset, err := bankOffset(op)
	if err != nil {
		return pic.Location{}, err
	}
	if reg, ok := mirrored(r, offset); ok {
		return pic.Location{Reg: reg}, nil
	}
	if bank, ok := r.State().Read(rp); ok {
		return r.AbsoluteLocation(uint16(bank)*bankSize | offset), nil
	}
	return symbolicBank(r, rp, offset), nil
}

// resolveEnhanced maps a file operand using BSR. The core registers and the
// common RAM at 0x70 to 0x7F are reachable from every bank.
func resolveEnhanced(r *pic.Rewriter, op pic.FileOperand) (pic.Location, error) {
	offset, err := bankOffset(op)
	if err != nil {
		return pic.Location{}, err
	}
	if reg, ok := mirrored(r, offset); ok {
		return pic.Location{Reg: reg}, nil
	}
	if offset >= commonRAMStart {
		return r.AbsoluteLocation(offset), nil
	}
	if bank, ok := r.State().Read(bsr); ok {
		return r.AbsoluteLocation(uint16(bank)*bankSize | offset), nil
	}
	return symbolicBank(r, bsr, offset), nil
}
