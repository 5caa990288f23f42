package pic16

import (
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

const intconGIE = 7

// basicRewrites contains the rewrite functions of the basic mid-range instruction set.
var basicRewrites = pic.RewriteTable{
	pic.ADDWF: fileOp(pic.FlagsPIC16, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Add(f, r.Reg(pic.WREG)) }),
	pic.ANDWF: fileOp(pic.FlagZ, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.And(f, r.Reg(pic.WREG)) }),
	pic.COMF:  fileOp(pic.FlagZ, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Comp(f) }),
	pic.DECF:  fileOp(pic.FlagZ, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return decrement(f) }),
	pic.INCF:  fileOp(pic.FlagZ, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return increment(f) }),
	pic.IORWF: fileOp(pic.FlagZ, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Or(f, r.Reg(pic.WREG)) }),
	pic.MOVF:  fileOp(pic.FlagZ, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return f }),
	pic.RLF:   fileOp(pic.FlagC, rotateThroughCarry("__rlf")),
	pic.RRF:   fileOp(pic.FlagC, rotateThroughCarry("__rrf")),
	pic.SUBWF: fileOp(pic.FlagsPIC16, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Sub(f, r.Reg(pic.WREG)) }),
	pic.SWAPF: fileOp(0, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return r.Pseudo("__swapf", ir.Byte, f) }),
	pic.XORWF: fileOp(pic.FlagZ, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Xor(f, r.Reg(pic.WREG)) }),

	pic.DECFSZ: func(r *pic.Rewriter, inst *pic.Instruction) error { return r.FileSkipOp(inst, decrement, isZero) },
	pic.INCFSZ: func(r *pic.Rewriter, inst *pic.Instruction) error { return r.FileSkipOp(inst, increment, isZero) },

	pic.CLRF:  rewriteCLRF,
	pic.CLRW:  rewriteCLRW,
	pic.MOVWF: rewriteMOVWF,

	pic.BCF:   func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitWrite(inst, false) },
	pic.BSF:   func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitWrite(inst, true) },
	pic.BTFSC: func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitTest(inst, false) },
	pic.BTFSS: func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitTest(inst, true) },

	pic.ADDLW: literalOp(pic.FlagsPIC16, func(w, k ir.Expression) ir.Expression { return ir.Add(w, k) }),
	pic.ANDLW: literalOp(pic.FlagZ, func(w, k ir.Expression) ir.Expression { return ir.And(w, k) }),
	pic.IORLW: literalOp(pic.FlagZ, func(w, k ir.Expression) ir.Expression { return ir.Or(w, k) }),
	pic.XORLW: literalOp(pic.FlagZ, func(w, k ir.Expression) ir.Expression { return ir.Xor(w, k) }),
	pic.SUBLW: literalOp(pic.FlagsPIC16, func(w, k ir.Expression) ir.Expression { return ir.Sub(k, w) }),
	pic.MOVLW: literalOp(0, func(_, k ir.Expression) ir.Expression { return k }),

	pic.CALL:   rewriteCALL,
	pic.GOTO:   rewriteGOTO,
	pic.RETURN: func(r *pic.Rewriter, _ *pic.Instruction) error { r.ReturnFromCall(); return nil },
	pic.RETFIE: rewriteRETFIE,
	pic.RETLW:  rewriteRETLW,

	pic.NOP:    func(r *pic.Rewriter, _ *pic.Instruction) error { r.Nop(); return nil },
	pic.SLEEP:  sideEffect("__sleep"),
	pic.CLRWDT: sideEffect("__clrwdt"),
	pic.OPTION: rewriteOPTION,
	pic.TRIS:   rewriteTRIS,
}

func fileOp(flags pic.Flag, compute func(r *pic.Rewriter, f ir.Expression) ir.Expression) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		return r.FileOp(inst, flags, func(f ir.Expression) ir.Expression { return compute(r, f) })
	}
}

func literalOp(flags pic.Flag, compute func(w, k ir.Expression) ir.Expression) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		return r.LiteralOp(inst, flags, compute)
	}
}

func rotateThroughCarry(name string) func(r *pic.Rewriter, f ir.Expression) ir.Expression {
	return func(r *pic.Rewriter, f ir.Expression) ir.Expression {
		return r.Pseudo(name, ir.Byte, f, r.FlagGroup(pic.FlagC))
	}
}

func sideEffect(name string) pic.RewriteFunc {
	return func(r *pic.Rewriter, _ *pic.Instruction) error {
		r.SideEffect(name)
		return nil
	}
}

func decrement(f ir.Expression) ir.Expression { return ir.Sub(f, ir.Byte8(1)) }
func increment(f ir.Expression) ir.Expression { return ir.Add(f, ir.Byte8(1)) }
func isZero(v ir.Expression) ir.Expression    { return ir.Eq(v, ir.Byte8(0)) }

func rewriteCLRF(r *pic.Rewriter, inst *pic.Instruction) error {
	if _, err := r.StoreFile(inst, ir.Byte8(0)); err != nil {
		return err
	}
	r.SetFlag(pic.FlagZ, true)
	return nil
}

func rewriteCLRW(r *pic.Rewriter, _ *pic.Instruction) error {
	r.Assign(r.Reg(pic.WREG), ir.Byte8(0))
	r.SetFlag(pic.FlagZ, true)
	return nil
}

func rewriteMOVWF(r *pic.Rewriter, inst *pic.Instruction) error {
	_, err := r.StoreFile(inst, r.Reg(pic.WREG))
	return err
}

// codeTarget returns the target of CALL and GOTO. The page bits are taken from
// PCLATH if they are known, otherwise the page of the instruction is kept.
func codeTarget(r *pic.Rewriter, inst *pic.Instruction) (ir.Address, error) {
	target, err := pic.OperandAs[pic.TargetOperand](inst, 0)
	if err != nil {
		return 0, err
	}
	word := uint32(target.Address) >> 1
	pageBits := r.Architecture().ProgramMask() >> 1 &^ pageMask
	if latch, ok := r.State().ReadBits(pclath, pageBits>>8); ok {
		word = latch<<8 | word&pageMask
	}
	return r.Code(ir.Address(word << 1)), nil
}

func rewriteCALL(r *pic.Rewriter, inst *pic.Instruction) error {
	target, err := codeTarget(r, inst)
	if err != nil {
		return err
	}
	r.CallTo(target, inst.Next())
	return nil
}

func rewriteGOTO(r *pic.Rewriter, inst *pic.Instruction) error {
	target, err := codeTarget(r, inst)
	if err != nil {
		return err
	}
	r.Goto(target)
	return nil
}

func setGIE(r *pic.Rewriter) {
	gie := r.Reg(intcon)
	r.AssignBit(gie, ir.Or(gie, ir.Byte8(1<<intconGIE)), intconGIE, true)
}

func rewriteRETFIE(r *pic.Rewriter, _ *pic.Instruction) error {
	setGIE(r)
	r.ReturnFromCall()
	return nil
}

func rewriteRETLW(r *pic.Rewriter, inst *pic.Instruction) error {
	k, err := r.Literal(inst, 0)
	if err != nil {
		return err
	}
	r.Assign(r.Reg(pic.WREG), k)
	r.ReturnFromCall()
	return nil
}

// rewriteOPTION loads OPTION_REG from WREG.
func rewriteOPTION(r *pic.Rewriter, _ *pic.Instruction) error {
	r.Assign(r.Reg(optionReg), r.Pseudo("__option", ir.Byte, r.Reg(pic.WREG)))
	return nil
}

// rewriteTRIS loads the direction register of a port from WREG.
func rewriteTRIS(r *pic.Rewriter, inst *pic.Instruction) error {
	f, err := pic.OperandAs[pic.ImmediateOperand](inst, 0)
	if err != nil {
		return err
	}
	r.SideEffect("__tris", ir.Byte8(uint8(f.Unsigned())), r.Reg(pic.WREG))
	return nil
}
