package pic18

import (
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

// extendedRewrites contains the rewrite functions of the extended instruction set.
// Indexed literal offset addressing of the base instructions is handled by the
// operands the extended table decodes.
var extendedRewrites = pic.RewriteTable{
	pic.ADDFSR:  fsrArith(ir.Add),
	pic.SUBFSR:  fsrArith(ir.Sub),
	pic.ADDULNK: stackFrameReturn(ir.Add),
	pic.SUBULNK: stackFrameReturn(ir.Sub),
	pic.CALLW:   rewriteCALLW,
	pic.MOVSF:   rewriteMOVFF,
	pic.MOVSS:   rewriteMOVSS,
	pic.PUSHL:   rewritePUSHL,
}

func fsrArith(op func(l, r ir.Expression) *ir.Binary) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		fsr, err := pic.OperandAs[pic.RegisterOperand](inst, 0)
		if err != nil {
			return err
		}
		k, err := r.Literal(inst, 1)
		if err != nil {
			return err
		}
		reg := r.Reg(fsr.Reg.Name)
		r.Assign(reg, op(reg, k))
		return nil
	}
}

// stackFrameReturn adjusts the software stack pointer FSR2 and returns.
func stackFrameReturn(op func(l, r ir.Expression) *ir.Binary) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		k, err := r.Literal(inst, 0)
		if err != nil {
			return err
		}
		reg := r.Reg(fsr2)
		r.Assign(reg, op(reg, k))
		r.ReturnFromCall()
		return nil
	}
}

// rewriteCALLW calls the address formed by PCLATU, PCLATH and WREG.
func rewriteCALLW(r *pic.Rewriter, inst *pic.Instruction) error {
	target := r.Pseudo("__callw", ir.Void, r.Reg(pic.WREG), r.Reg(pclat))
	r.CallTo(target, inst.Next())
	return nil
}

func rewriteMOVSS(r *pic.Rewriter, inst *pic.Instruction) error {
	src, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}
	dst, err := r.AccessAt(inst, 1)
	if err != nil {
		return err
	}
	r.Move(src, dst)
	return nil
}

// rewritePUSHL stores a literal at the software stack pointer and increments it.
func rewritePUSHL(r *pic.Rewriter, inst *pic.Instruction) error {
	k, err := r.Literal(inst, 0)
	if err != nil {
		return err
	}
	ptr := r.Reg(fsr2)
	r.Assign(ir.Mem(ir.DataSpace, ptr, ir.Byte), k)
	r.Assign(ptr, ir.Add(ptr, ir.Byte8(1)))
	return nil
}
