package pic18

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

const intconGIE = 7

// traditionalRewrites contains the rewrite functions of the PIC18 base instruction set.
var traditionalRewrites = pic.RewriteTable{
	pic.ADDWF:  fileOp(pic.FlagsArith, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Add(f, r.Reg(pic.WREG)) }),
	pic.ADDWFC: fileOp(pic.FlagsArith, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Add(ir.Add(f, r.Reg(pic.WREG)), carry(r)) }),
	pic.ANDWF:  fileOp(pic.FlagsZN, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.And(f, r.Reg(pic.WREG)) }),
	pic.COMF:   fileOp(pic.FlagsZN, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Comp(f) }),
	pic.DECF:   fileOp(pic.FlagsArith, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Sub(f, ir.Byte8(1)) }),
	pic.INCF:   fileOp(pic.FlagsArith, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Add(f, ir.Byte8(1)) }),
	pic.IORWF:  fileOp(pic.FlagsZN, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Or(f, r.Reg(pic.WREG)) }),
	pic.MOVF:   fileOp(pic.FlagsZN, func(_ *pic.Rewriter, f ir.Expression) ir.Expression { return f }),
	pic.RLCF:   fileOp(pic.FlagsCZN, rotateThroughCarry("__rlcf")),
	pic.RRCF:   fileOp(pic.FlagsCZN, rotateThroughCarry("__rrcf")),
	pic.RLNCF:  fileOp(pic.FlagsZN, rotate("__rlncf")),
	pic.RRNCF:  fileOp(pic.FlagsZN, rotate("__rrncf")),
	pic.SUBFWB: fileOp(pic.FlagsArith, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Sub(ir.Sub(r.Reg(pic.WREG), f), borrow(r)) }),
	pic.SUBWF:  fileOp(pic.FlagsArith, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Sub(f, r.Reg(pic.WREG)) }),
	pic.SUBWFB: fileOp(pic.FlagsArith, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Sub(ir.Sub(f, r.Reg(pic.WREG)), borrow(r)) }),
	pic.SWAPF:  fileOp(0, rotate("__swapf")),
	pic.XORWF:  fileOp(pic.FlagsZN, func(r *pic.Rewriter, f ir.Expression) ir.Expression { return ir.Xor(f, r.Reg(pic.WREG)) }),

	pic.DECFSZ: skipOp(decrement, isZero),
	pic.DCFSNZ: skipOp(decrement, isNotZero),
	pic.INCFSZ: skipOp(increment, isZero),
	pic.INFSNZ: skipOp(increment, isNotZero),
	pic.TSTFSZ: skipOp(nil, isZero),
	pic.CPFSEQ: compareOp(ir.Eq),
	pic.CPFSGT: compareOp(ir.Ugt),
	pic.CPFSLT: compareOp(ir.Ult),

	pic.CLRF:  rewriteCLRF,
	pic.SETF:  store(func(*pic.Rewriter) ir.Expression { return ir.Byte8(0xFF) }),
	pic.MOVWF: store(func(r *pic.Rewriter) ir.Expression { return r.Reg(pic.WREG) }),
	pic.MULWF: rewriteMULWF,
	pic.NEGF:  rewriteNEGF,
	pic.MOVFF: rewriteMOVFF,

	pic.BCF:   func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitWrite(inst, false) },
	pic.BSF:   func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitWrite(inst, true) },
	pic.BTG:   func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitToggle(inst) },
	pic.BTFSC: func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitTest(inst, false) },
	pic.BTFSS: func(r *pic.Rewriter, inst *pic.Instruction) error { return r.BitTest(inst, true) },

	pic.BC:   branch(ir.ULT, pic.FlagC),
	pic.BNC:  branch(ir.UGE, pic.FlagC),
	pic.BZ:   branch(ir.EQ, pic.FlagZ),
	pic.BNZ:  branch(ir.NE, pic.FlagZ),
	pic.BN:   branch(ir.LT, pic.FlagN),
	pic.BNN:  branch(ir.GE, pic.FlagN),
	pic.BOV:  branch(ir.OV, pic.FlagOV),
	pic.BNOV: branch(ir.NO, pic.FlagOV),

	pic.BRA:    func(r *pic.Rewriter, inst *pic.Instruction) error { return r.Jump(inst) },
	pic.GOTO:   func(r *pic.Rewriter, inst *pic.Instruction) error { return r.Jump(inst) },
	pic.CALL:   rewriteCALL,
	pic.RCALL:  rewriteRCALL,
	pic.RETURN: rewriteRETURN,
	pic.RETFIE: rewriteRETFIE,
	pic.RETLW:  rewriteRETLW,
	pic.PUSH:   rewritePUSH,
	pic.POP:    rewritePOP,
	pic.RESET:  rewriteRESET,

	pic.NOP:    func(r *pic.Rewriter, _ *pic.Instruction) error { r.Nop(); return nil },
	pic.SLEEP:  sideEffect("__sleep"),
	pic.CLRWDT: sideEffect("__clrwdt"),
	pic.DAW:    rewriteDAW,
	pic.LFSR:   rewriteLFSR,
	pic.MOVLB:  rewriteMOVLB,

	pic.ADDLW: literalOp(pic.FlagsArith, func(w, k ir.Expression) ir.Expression { return ir.Add(w, k) }),
	pic.ANDLW: literalOp(pic.FlagsZN, func(w, k ir.Expression) ir.Expression { return ir.And(w, k) }),
	pic.IORLW: literalOp(pic.FlagsZN, func(w, k ir.Expression) ir.Expression { return ir.Or(w, k) }),
	pic.XORLW: literalOp(pic.FlagsZN, func(w, k ir.Expression) ir.Expression { return ir.Xor(w, k) }),
	pic.SUBLW: literalOp(pic.FlagsArith, func(w, k ir.Expression) ir.Expression { return ir.Sub(k, w) }),
	pic.MOVLW: literalOp(0, func(_, k ir.Expression) ir.Expression { return k }),
	pic.MULLW: rewriteMULLW,

	pic.TBLRD: tableOp(false),
	pic.TBLWT: tableOp(true),
}

func carry(r *pic.Rewriter) ir.Expression {
	return r.FlagGroup(pic.FlagC)
}

func borrow(r *pic.Rewriter) ir.Expression {
	return ir.Not(r.FlagGroup(pic.FlagC))
}

func fileOp(flags pic.Flag, compute func(r *pic.Rewriter, f ir.Expression) ir.Expression) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		return r.FileOp(inst, flags, func(f ir.Expression) ir.Expression { return compute(r, f) })
	}
}

func rotate(name string) func(r *pic.Rewriter, f ir.Expression) ir.Expression {
	return func(r *pic.Rewriter, f ir.Expression) ir.Expression {
		return r.Pseudo(name, ir.Byte, f)
	}
}

func rotateThroughCarry(name string) func(r *pic.Rewriter, f ir.Expression) ir.Expression {
	return func(r *pic.Rewriter, f ir.Expression) ir.Expression {
		return r.Pseudo(name, ir.Byte, f, carry(r))
	}
}

func decrement(f ir.Expression) ir.Expression { return ir.Sub(f, ir.Byte8(1)) }
func increment(f ir.Expression) ir.Expression { return ir.Add(f, ir.Byte8(1)) }
func isZero(v ir.Expression) ir.Expression    { return ir.Eq(v, ir.Byte8(0)) }
func isNotZero(v ir.Expression) ir.Expression { return ir.Ne(v, ir.Byte8(0)) }

func skipOp(compute pic.ComputeFunc, test pic.TestFunc) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		return r.FileSkipOp(inst, compute, test)
	}
}

func compareOp(cmp func(l, r ir.Expression) *ir.Binary) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		w := r.Reg(pic.WREG)
		return r.FileSkipOp(inst, nil, func(f ir.Expression) ir.Expression { return cmp(f, w) })
	}
}

func store(value func(r *pic.Rewriter) ir.Expression) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		_, err := r.StoreFile(inst, value(r))
		return err
	}
}

func rewriteCLRF(r *pic.Rewriter, inst *pic.Instruction) error {
	if _, err := r.StoreFile(inst, ir.Byte8(0)); err != nil {
		return err
	}
	r.SetFlag(pic.FlagZ, true)
	return nil
}

func rewriteMULWF(r *pic.Rewriter, inst *pic.Instruction) error {
	f, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}
	r.Pre(f)
	r.Assign(r.Reg(prod), ir.Mul(r.Reg(pic.WREG), f.Expr, ir.Word16))
	r.Post(f)
	return nil
}

func rewriteNEGF(r *pic.Rewriter, inst *pic.Instruction) error {
	f, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}
	r.Pre(f)
	r.Assign(f.Expr, ir.Neg(f.Expr))
	r.SetStatusFlags(f.Expr, pic.FlagsArith)
	r.Post(f)
	return nil
}

// writableDestination resolves the destination of a memory to memory move.
func writableDestination(r *pic.Rewriter, inst *pic.Instruction, index int) (pic.Access, error) {
	dst, err := r.AccessAt(inst, index)
	if err != nil {
		return pic.Access{}, err
	}
	if dst.Reg != nil && slices.Contains(nonWritable, dst.Reg.Name) {
		return pic.Access{}, fmt.Errorf("%w: %s can not be the destination of %s",
			arch.ErrInvalidOperand, dst.Reg.Name, inst.Opcode)
	}
	return dst, nil
}

func rewriteMOVFF(r *pic.Rewriter, inst *pic.Instruction) error {
	src, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}
	dst, err := writableDestination(r, inst, 1)
	if err != nil {
		return err
	}
	r.Move(src, dst)
	return nil
}

func branch(code ir.ConditionCode, flag pic.Flag) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		return r.Branch(inst, code, flag)
	}
}

func callTarget(r *pic.Rewriter, inst *pic.Instruction) (ir.Address, error) {
	target, err := pic.OperandAs[pic.TargetOperand](inst, 0)
	if err != nil {
		return 0, err
	}
	return r.Code(target.Address), nil
}

func rewriteCALL(r *pic.Rewriter, inst *pic.Instruction) error {
	target, err := callTarget(r, inst)
	if err != nil {
		return err
	}
	if pic.IsFast(inst) {
		r.Shadow(shadowed, false)
	}
	r.CallTo(target, inst.Next())
	return nil
}

func rewriteRCALL(r *pic.Rewriter, inst *pic.Instruction) error {
	target, err := callTarget(r, inst)
	if err != nil {
		return err
	}
	r.CallTo(target, inst.Next())
	return nil
}

func rewriteRETURN(r *pic.Rewriter, inst *pic.Instruction) error {
	if pic.IsFast(inst) {
		r.Shadow(shadowed, true)
	}
	r.ReturnFromCall()
	return nil
}

func rewriteRETFIE(r *pic.Rewriter, inst *pic.Instruction) error {
	if pic.IsFast(inst) {
		r.Shadow(shadowed, true)
	}
	gie := r.Reg(intcon)
	r.AssignBit(gie, ir.Or(gie, ir.Byte8(1<<intconGIE)), intconGIE, true)
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

func rewritePUSH(r *pic.Rewriter, inst *pic.Instruction) error {
	r.PushReturnAddress(inst.Next())
	return nil
}

func rewritePOP(r *pic.Rewriter, _ *pic.Instruction) error {
	r.PopReturnAddress()
	return nil
}

func rewriteRESET(r *pic.Rewriter, _ *pic.Instruction) error {
	r.SideEffect("__reset")
	r.Goto(ir.Address(0))
	return nil
}

func sideEffect(name string) pic.RewriteFunc {
	return func(r *pic.Rewriter, _ *pic.Instruction) error {
		r.SideEffect(name)
		return nil
	}
}

func rewriteDAW(r *pic.Rewriter, _ *pic.Instruction) error {
	w := r.Reg(pic.WREG)
	r.Assign(w, r.Pseudo("__daw", ir.Byte, w))
	r.SetStatusFlags(w, pic.FlagC)
	return nil
}

func rewriteLFSR(r *pic.Rewriter, inst *pic.Instruction) error {
	fsr, err := pic.OperandAs[pic.RegisterOperand](inst, 0)
	if err != nil {
		return err
	}
	k, err := pic.OperandAs[pic.ImmediateOperand](inst, 1)
	if err != nil {
		return err
	}
	r.Assign(r.Reg(fsr.Reg.Name), ir.Word(uint16(k.Unsigned())))
	return nil
}

func rewriteMOVLB(r *pic.Rewriter, inst *pic.Instruction) error {
	k, err := r.Literal(inst, 0)
	if err != nil {
		return err
	}
	r.Assign(r.Reg(bsr), k)
	return nil
}

func literalOp(flags pic.Flag, compute func(w, k ir.Expression) ir.Expression) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		return r.LiteralOp(inst, flags, compute)
	}
}

func rewriteMULLW(r *pic.Rewriter, inst *pic.Instruction) error {
	k, err := r.Literal(inst, 0)
	if err != nil {
		return err
	}
	r.Assign(r.Reg(prod), ir.Mul(r.Reg(pic.WREG), k, ir.Word16))
	return nil
}

// tableOp moves a byte between program memory at TBLPTR and TABLAT.
func tableOp(write bool) pic.RewriteFunc {
	return func(r *pic.Rewriter, inst *pic.Instruction) error {
		mode, err := pic.OperandAs[pic.TableOperand](inst, 0)
		if err != nil {
			return err
		}
		ptr := r.Reg(tblptr)
		access := pic.NewPointerAccess(ir.Mem(ir.ProgramSpace, ptr, ir.Byte), ptr, mode.Adjust)
		latch := r.Reg(tablat)

		r.Pre(access)
		if write {
			r.Assign(access.Expr, latch)
		} else {
			r.Assign(latch, access.Expr)
		}
		r.Post(access)
		return nil
	}
}
