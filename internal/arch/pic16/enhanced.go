package pic16

import (
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

const flagsCZ = pic.FlagC | pic.FlagZ

// enhancedRewrites contains the rewrite functions that the enhanced mid-range
// core adds or changes.
var enhancedRewrites = pic.RewriteTable{
	pic.ADDWFC: fileOp(pic.FlagsPIC16, func(r *pic.Rewriter, f ir.Expression) ir.Expression {
		return ir.Add(ir.Add(f, r.Reg(pic.WREG)), r.FlagGroup(pic.FlagC))
	}),
	pic.SUBWFB: fileOp(pic.FlagsPIC16, func(r *pic.Rewriter, f ir.Expression) ir.Expression {
		return ir.Sub(ir.Sub(f, r.Reg(pic.WREG)), ir.Not(r.FlagGroup(pic.FlagC)))
	}),
	pic.ASRF: fileOp(flagsCZ, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Sar(f, ir.Byte8(1)) }),
	pic.LSLF: fileOp(flagsCZ, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Shl(f, ir.Byte8(1)) }),
	pic.LSRF: fileOp(flagsCZ, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Shr(f, ir.Byte8(1)) }),

	pic.ADDFSR: rewriteADDFSR,
	pic.MOVIW:  rewriteMOVIW,
	pic.MOVWI:  rewriteMOVWI,
	pic.MOVLB:  loadRegister(bsr),
	pic.MOVLP:  loadRegister(pclath),

	pic.BRA:    func(r *pic.Rewriter, inst *pic.Instruction) error { return r.Jump(inst) },
	pic.BRW:    rewriteBRW,
	pic.CALLW:  rewriteCALLW,
	pic.RETFIE: rewriteEnhancedRETFIE,
	pic.RESET:  rewriteRESET,
}

// rewriteADDFSR adds a signed literal to FSR0 or FSR1.
func rewriteADDFSR(r *pic.Rewriter, inst *pic.Instruction) error {
	fsr, err := pic.OperandAs[pic.RegisterOperand](inst, 0)
	if err != nil {
		return err
	}
	k, err := pic.OperandAs[pic.ImmediateOperand](inst, 1)
	if err != nil {
		return err
	}
	reg := r.Reg(fsr.Reg.Name)
	if k.Value < 0 {
		r.Assign(reg, ir.Sub(reg, ir.Word(uint16(-k.Value))))
	} else {
		r.Assign(reg, ir.Add(reg, ir.Word(uint16(k.Value))))
	}
	return nil
}

func rewriteMOVIW(r *pic.Rewriter, inst *pic.Instruction) error {
	src, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}
	w := r.Reg(pic.WREG)
	r.Pre(src)
	r.Assign(w, src.Expr)
	r.SetStatusFlags(w, pic.FlagZ)
	r.Post(src)
	return nil
}

func rewriteMOVWI(r *pic.Rewriter, inst *pic.Instruction) error {
	dst, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}
	r.Pre(dst)
	r.Assign(dst.Expr, r.Reg(pic.WREG))
	r.Post(dst)
	return nil
}

func loadRegister(name string) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		k, err := r.Literal(inst, 0)
		if err != nil {
			return err
		}
		r.Assign(r.Reg(name), k)
		return nil
	}
}

// rewriteBRW jumps relative to the next instruction by WREG words. The
// offset is widened before the shift so that it keeps the ninth bit.
func rewriteBRW(r *pic.Rewriter, inst *pic.Instruction) error {
	offset := ir.Seq(ir.Byte8(0), r.Reg(pic.WREG), ir.Word16)
	r.Goto(ir.Add(inst.Next(), ir.Shl(offset, ir.Byte8(1))))
	return nil
}

// rewriteCALLW calls the address formed by PCLATH and WREG.
func rewriteCALLW(r *pic.Rewriter, inst *pic.Instruction) error {
	target := r.Pseudo("__callw", ir.Void, r.Reg(pic.WREG), r.Reg(pclath))
	r.CallTo(target, inst.Next())
	return nil
}

// rewriteEnhancedRETFIE restores the registers saved on interrupt entry.
func rewriteEnhancedRETFIE(r *pic.Rewriter, _ *pic.Instruction) error {
	r.Shadow(shadowed, true)
	setGIE(r)
	r.ReturnFromCall()
	return nil
}

func rewriteRESET(r *pic.Rewriter, _ *pic.Instruction) error {
	r.SideEffect("__reset")
	r.Goto(ir.Address(0))
	return nil
}
