package pic

import (
	"github.com/retroenv/retrolift/internal/ir"
)

// ComputeFunc computes the result of an operation on a file register value.
type ComputeFunc func(f ir.Expression) ir.Expression

// TestFunc returns the skip condition for a value.
type TestFunc func(v ir.Expression) ir.Expression

// destination returns the result location of a byte oriented file operation.
func (r *Rewriter) destination(inst *Instruction, src Access) ir.Expression {
	for _, op := range inst.Operands {
		if d, ok := op.(DestOperand); ok && !d.ToFile {
			return r.Reg(WREG)
		}
	}
	return src.Expr
}

// FileOp emits a byte oriented file register operation. The result is stored
// in WREG or the file register depending on the destination operand.
func (r *Rewriter) FileOp(inst *Instruction, flags Flag, compute ComputeFunc) error {
	src, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}
	dst := r.destination(inst, src)

	r.Pre(src)
	r.Assign(dst, compute(src.Expr))
	if flags != 0 {
		r.SetStatusFlags(dst, flags)
	}
	r.Post(src)
	return nil
}

// StoreFile emits an assignment of a value to the file register operand.
func (r *Rewriter) StoreFile(inst *Instruction, value ir.Expression) (Access, error) {
	dst, err := r.AccessAt(inst, 0)
	if err != nil {
		return Access{}, err
	}
	r.Pre(dst)
	r.Assign(dst.Expr, value)
	r.Post(dst)
	return dst, nil
}

// FileSkipOp emits an optional file register operation followed by a skip of
// the next instruction if the test on the result holds.
func (r *Rewriter) FileSkipOp(inst *Instruction, compute ComputeFunc, test TestFunc) error {
	src, err := r.AccessAt(inst, 0)
	if err != nil {
		return err
	}

	r.Pre(src)
	value := src.Expr
	if compute != nil {
		dst := r.destination(inst, src)
		r.Assign(dst, compute(src.Expr))
		value = dst
	}
	if src.HasPost() && value == src.Expr {
		tmp := r.Temp(ir.Byte)
		r.emitter.Assign(tmp, value)
		value = tmp
	}
	r.Post(src)

	r.SkipIf(inst, test(value))
	return nil
}

// SkipIf emits a branch over the next instruction.
func (r *Rewriter) SkipIf(inst *Instruction, cond ir.Expression) {
	r.emitter.Branch(cond, r.SkipTarget(inst))
	r.class = ir.ConditionalTransfer
}

func (r *Rewriter) bitOperands(inst *Instruction) (Access, uint8, error) {
	bit, err := OperandAs[BitOperand](inst, 1)
	if err != nil {
		return Access{}, 0, err
	}
	f, err := r.AccessAt(inst, 0)
	if err != nil {
		return Access{}, 0, err
	}
	return f, bit.Bit, nil
}

// BitWrite emits the set or clear of a file register bit.
func (r *Rewriter) BitWrite(inst *Instruction, set bool) error {
	f, bit, err := r.bitOperands(inst)
	if err != nil {
		return err
	}

	r.Pre(f)
	mask := uint8(1) << bit
	if set {
		r.AssignBit(f.Expr, ir.Or(f.Expr, ir.Byte8(mask)), int(bit), true)
	} else {
		r.AssignBit(f.Expr, ir.And(f.Expr, ir.Byte8(^mask)), int(bit), false)
	}
	r.Post(f)
	return nil
}

// BitToggle emits the inversion of a file register bit.
func (r *Rewriter) BitToggle(inst *Instruction) error {
	f, bit, err := r.bitOperands(inst)
	if err != nil {
		return err
	}

	r.Pre(f)
	r.ToggleBit(f.Expr, ir.Xor(f.Expr, ir.Byte8(uint8(1)<<bit)), int(bit))
	r.Post(f)
	return nil
}

// BitTest emits a skip of the next instruction depending on a file register bit.
func (r *Rewriter) BitTest(inst *Instruction, skipIfSet bool) error {
	f, bit, err := r.bitOperands(inst)
	if err != nil {
		return err
	}

	r.Pre(f)
	value := f.Expr
	if f.HasPost() {
		tmp := r.Temp(ir.Byte)
		r.emitter.Assign(tmp, value)
		value = tmp
	}
	r.Post(f)

	test := ir.And(value, ir.Byte8(uint8(1)<<bit))
	if skipIfSet {
		r.SkipIf(inst, ir.Ne(test, ir.Byte8(0)))
	} else {
		r.SkipIf(inst, ir.Eq(test, ir.Byte8(0)))
	}
	return nil
}

// Literal returns the 8 bit literal operand at the given index.
func (r *Rewriter) Literal(inst *Instruction, index int) (ir.Constant, error) {
	k, err := OperandAs[ImmediateOperand](inst, index)
	if err != nil {
		return ir.Constant{}, err
	}
	return ir.Byte8(uint8(k.Unsigned())), nil
}

// LiteralOp emits WREG = compute(WREG, k) for a literal operation.
func (r *Rewriter) LiteralOp(inst *Instruction, flags Flag, compute func(w, k ir.Expression) ir.Expression) error {
	k, err := r.Literal(inst, 0)
	if err != nil {
		return err
	}
	w := r.Reg(WREG)
	r.Assign(w, compute(w, k))
	if flags != 0 {
		r.SetStatusFlags(w, flags)
	}
	return nil
}

// Branch emits a branch to the target operand if the flag test holds.
func (r *Rewriter) Branch(inst *Instruction, code ir.ConditionCode, flag Flag) error {
	target, err := OperandAs[TargetOperand](inst, 0)
	if err != nil {
		return err
	}
	r.emitter.Branch(ir.Test(code, r.FlagGroup(flag)), r.Code(target.Address))
	r.class = ir.ConditionalTransfer
	return nil
}

// Jump emits an unconditional jump to the target operand.
func (r *Rewriter) Jump(inst *Instruction) error {
	target, err := OperandAs[TargetOperand](inst, 0)
	if err != nil {
		return err
	}
	r.Goto(r.Code(target.Address))
	return nil
}

// Goto emits an unconditional jump.
func (r *Rewriter) Goto(target ir.Expression) {
	r.emitter.Goto(target)
	r.class = ir.Transfer
}

// CallTo pushes the return address and emits a call. The top of stack register
// is written after the call statement.
func (r *Rewriter) CallTo(target ir.Expression, ret ir.Address) {
	r.pushSlot(ret)
	r.emitter.Call(target, 0)
	r.Assign(r.Reg(TOS), ret)
	r.class = ir.Transfer | ir.CallClass
}

// ReturnFromCall pops the hardware stack and emits a return.
func (r *Rewriter) ReturnFromCall() {
	r.PopReturnAddress()
	r.emitter.Return(0, 0)
	r.class = ir.Transfer | ir.ReturnClass
}

// SideEffect emits a pseudo procedure call without result.
func (r *Rewriter) SideEffect(name string, args ...ir.Expression) {
	r.emitter.SideEffect(r.Pseudo(name, ir.Void, args...))
}

// Nop emits a no operation.
func (r *Rewriter) Nop() {
	r.emitter.Nop()
}

// IsFast returns whether the instruction carries a set fast operand.
func IsFast(inst *Instruction) bool {
	for _, op := range inst.Operands {
		if f, ok := op.(FastOperand); ok {
			return f.Fast
		}
	}
	return false
}

// Shadow emits the copy of registers into their shadow registers, or back when restore is set.
func (r *Rewriter) Shadow(names []string, restore bool) {
	for _, name := range names {
		reg, shadow := r.Reg(name), r.Reg(name+"_SHAD")
		if restore {
			r.Assign(reg, shadow)
		} else {
			r.Assign(shadow, reg)
		}
	}
}
