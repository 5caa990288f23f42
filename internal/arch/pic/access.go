package pic

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
)

// Access is a resolved operand location together with the pointer adjustment
// that has to be emitted around its use.
type Access struct {
	Expr    ir.Expression
	Reg     *Register // register accessed directly, nil for memory
	pointer *ir.Identifier
	adjust  Adjust
}

// HasPost returns whether the access modifies its pointer after the use.
func (a Access) HasPost() bool {
	return a.adjust == AdjustPostInc || a.adjust == AdjustPostDec
}

// Access resolves a file, register or indexed operand.
func (r *Rewriter) Access(op Operand) (Access, error) {
	switch o := op.(type) {
	case FileOperand:
		loc, err := r.cfg.ResolveFile(r, o)
		if err != nil {
			return Access{}, err
		}
		if loc.Reg != nil {
			return r.registerAccess(loc.Reg)
		}
		if loc.Mem == nil {
			return Access{}, fmt.Errorf("%w: unresolved file operand %s", arch.ErrInvalidOperand, o)
		}
		return Access{Expr: loc.Mem}, nil

	case RegisterOperand:
		if o.Reg == nil {
			return Access{}, fmt.Errorf("%w: nil register", arch.ErrInvalidOperand)
		}
		return r.registerAccess(o.Reg)

	case IndexedOperand:
		if o.Base == nil {
			return Access{}, fmt.Errorf("%w: indexed operand without base", arch.ErrInvalidOperand)
		}
		base := r.Reg(o.Base.Name)
		return Access{
			Expr:    ir.Mem(ir.DataSpace, displace(base, o.Displacement), ir.Byte),
			pointer: base,
			adjust:  o.Adjust,
		}, nil

	default:
		return Access{}, fmt.Errorf("%w: %T is not a data operand", arch.ErrInvalidOperand, op)
	}
}

// AccessAt resolves the operand at the given index of the instruction.
func (r *Rewriter) AccessAt(inst *Instruction, index int) (Access, error) {
	if index >= len(inst.Operands) {
		return Access{}, fmt.Errorf("%w: %s at %s is missing operand %d",
			arch.ErrInvalidOperand, inst.Opcode, inst.Address, index+1)
	}
	return r.Access(inst.Operands[index])
}

// AbsoluteLocation resolves a full data address to a register or data memory.
func (r *Rewriter) AbsoluteLocation(address uint16) Location {
	if reg, ok := r.arch.Registers().ByAddress(address); ok {
		return Location{Reg: reg}
	}
	return Location{Mem: ir.Mem(ir.DataSpace, ir.Word(address), ir.Byte)}
}

func (r *Rewriter) registerAccess(reg *Register) (Access, error) {
	if reg.Indirect == Direct {
		return Access{Expr: r.Reg(reg.Name), Reg: reg}, nil
	}
	if reg.Pointer == "" {
		return Access{}, fmt.Errorf("%w: indirect register %s without pointer", arch.ErrInvalidOperand, reg.Name)
	}

	pointer := r.Reg(reg.Pointer)
	a := Access{
		Expr:    ir.Mem(ir.DataSpace, pointer, ir.Byte),
		pointer: pointer,
	}
	switch reg.Indirect {
	case PostInc:
		a.adjust = AdjustPostInc
	case PostDec:
		a.adjust = AdjustPostDec
	case PreInc:
		a.adjust = AdjustPreInc
	case PlusW:
		a.Expr = ir.Mem(ir.DataSpace, ir.Add(pointer, r.Reg(WREG)), ir.Byte)
	}
	return a, nil
}

// Pre emits the pointer adjustment that precedes the use of the access.
func (r *Rewriter) Pre(a Access) {
	switch a.adjust {
	case AdjustPreInc:
		r.Assign(a.pointer, ir.Add(a.pointer, ir.Byte8(1)))
	case AdjustPreDec:
		r.Assign(a.pointer, ir.Sub(a.pointer, ir.Byte8(1)))
	}
}

// Post emits the pointer adjustment that follows the use of the access.
func (r *Rewriter) Post(a Access) {
	switch a.adjust {
	case AdjustPostInc:
		r.Assign(a.pointer, ir.Add(a.pointer, ir.Byte8(1)))
	case AdjustPostDec:
		r.Assign(a.pointer, ir.Sub(a.pointer, ir.Byte8(1)))
	}
}

// Move emits a memory to memory move. The source pointer is adjusted before the
// destination pointer on both sides of the move.
func (r *Rewriter) Move(src, dst Access) {
	r.Pre(src)
	r.Pre(dst)
	r.Assign(dst.Expr, src.Expr)
	r.Post(src)
	r.Post(dst)
}

func displace(base ir.Expression, displacement int32) ir.Expression {
	switch {
	case displacement > 0:
		return ir.Add(base, ir.Byte8(uint8(displacement)))
	case displacement < 0:
		return ir.Sub(base, ir.Byte8(uint8(-displacement)))
	default:
		return base
	}
}

// NewPointerAccess returns an access through a pointer register that is
// adjusted around the use.
func NewPointerAccess(expr ir.Expression, pointer *ir.Identifier, adjust Adjust) Access {
	return Access{Expr: expr, pointer: pointer, adjust: adjust}
}
