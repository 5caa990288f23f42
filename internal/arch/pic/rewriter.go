package pic

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
)

// Names of registers used by the rewriter core.
const (
	WREG   = "WREG"
	STKPTR = "STKPTR"
	TOS    = "TOS"
)

// RewriteFunc emits the IR statements of one instruction.
type RewriteFunc func(r *Rewriter, inst *Instruction) error

// RewriteTable maps opcodes to their rewrite functions.
type RewriteTable map[Opcode]RewriteFunc

// Location is the result of resolving a file register operand.
type Location struct {
	Reg *Register     // resolved register, nil for plain data memory
	Mem ir.Expression // data memory location if Reg is nil
}

// FileResolver resolves a file operand to a register or data memory location
// using the banking rules of a family.
type FileResolver func(r *Rewriter, op FileOperand) (Location, error)

// RewriterConfig contains the family specific parts of a rewriter.
type RewriterConfig struct {
	Family        string
	Tables        []RewriteTable // searched in order, variant tables first
	ResolveFile   FileResolver
	Required      []string    // registers that must exist in the catalogue
	StackSlotType ir.DataType // type of return addresses on the hardware stack
}

// Rewriter translates PIC instructions into IR clusters. It is not safe for concurrent use.
type Rewriter struct {
	arch   *Architecture
	dis    *Disassembler
	state  *State
	binder arch.StorageBinder
	host   arch.Host
	cfg    RewriterConfig

	emitter ir.Emitter
	inst    *Instruction
	class   ir.Class
	temps   int
}

// NewRewriter returns a new rewriter, all collaborators are required.
func NewRewriter(a arch.Architecture, dis arch.Disassembler, state arch.ProcessorState,
	binder arch.StorageBinder, host arch.Host, cfg RewriterConfig) (*Rewriter, error) {

	p, err := AsArchitecture(a, cfg.Family)
	if err != nil {
		return nil, err
	}
	d, err := AsDisassembler(dis)
	if err != nil {
		return nil, err
	}
	if d.Architecture() != p {
		return nil, fmt.Errorf("%w: disassembler was created for %s", arch.ErrWrongArchitecture, d.Architecture().Name())
	}
	s, err := AsState(state)
	if err != nil {
		return nil, err
	}
	if binder == nil {
		return nil, fmt.Errorf("%w: storage binder", arch.ErrNilCollaborator)
	}
	if host == nil {
		return nil, fmt.Errorf("%w: rewriter host", arch.ErrNilCollaborator)
	}
	if cfg.ResolveFile == nil || len(cfg.Tables) == 0 {
		return nil, fmt.Errorf("%w: rewriter configuration", arch.ErrNilCollaborator)
	}
	for _, name := range cfg.Required {
		if _, err := p.Registers().MustByName(name); err != nil {
			return nil, fmt.Errorf("creating rewriter: %w", err)
		}
	}
	if cfg.StackSlotType == ir.Unknown {
		cfg.StackSlotType = ir.Ptr32
	}

	return &Rewriter{
		arch:   p,
		dis:    d,
		state:  s,
		binder: binder,
		host:   host,
		cfg:    cfg,
	}, nil
}

// Rewrite returns the validated cluster of the instruction.
func (r *Rewriter) Rewrite(inst arch.Instruction) (*ir.Cluster, error) {
	p, ok := inst.(*Instruction)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: unsupported instruction type %T", arch.ErrWrongArchitecture, inst)
	}

	r.begin(p)
	if !p.IsValid() {
		return ir.NewInvalidCluster(p.Address, p.Length), nil
	}

	fn, ok := r.lookup(p.Opcode)
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", arch.ErrNotImplemented, p.Opcode, p.Address)
	}
	if err := fn(r, p); err != nil {
		r.emitter.Reset()
		return nil, fmt.Errorf("rewriting %s at %s: %w", p.Opcode, p.Address, err)
	}

	cluster := &ir.Cluster{
		Address:    p.Address,
		Length:     p.Length,
		Class:      r.class,
		Statements: r.emitter.Statements(),
	}
	if err := cluster.Validate(); err != nil {
		return nil, fmt.Errorf("rewriting %s: %w", p.Opcode, err)
	}
	return cluster, nil
}

// Supports returns whether a rewrite function exists for the opcode.
func (r *Rewriter) Supports(opcode Opcode) bool {
	_, ok := r.lookup(opcode)
	return ok
}

func (r *Rewriter) lookup(opcode Opcode) (RewriteFunc, bool) {
	for _, table := range r.cfg.Tables {
		if fn, ok := table[opcode]; ok {
			return fn, true
		}
	}
	return nil, false
}

func (r *Rewriter) begin(inst *Instruction) {
	r.inst = inst
	r.class = ir.Linear
	r.temps = 0
	r.emitter.Reset()
	r.state.SetPC(inst.Address)
}

// Architecture returns the architecture of the rewriter.
func (r *Rewriter) Architecture() *Architecture { return r.arch }

// State returns the processor state.
func (r *Rewriter) State() *State { return r.state }

// Emitter returns the emitter of the current cluster.
func (r *Rewriter) Emitter() *ir.Emitter { return &r.emitter }

// SetClass sets the classification of the current cluster.
func (r *Rewriter) SetClass(class ir.Class) { r.class = class }

// Reg returns the identifier of a register of the catalogue.
func (r *Rewriter) Reg(name string) *ir.Identifier {
	typ := ir.Byte
	if reg, ok := r.arch.Registers().ByName(name); ok {
		typ = reg.Type
	}
	return r.binder.EnsureIdentifier(name, typ)
}

// FlagGroup returns the identifier of a group of status flags.
func (r *Rewriter) FlagGroup(flags Flag) *ir.Identifier {
	typ := ir.Byte
	if flags&(flags-1) == 0 {
		typ = ir.Bool
	}
	return r.binder.EnsureIdentifier(flags.Name(), typ)
}

// Temp returns a new temporary of the current cluster.
func (r *Rewriter) Temp(typ ir.DataType) *ir.Identifier {
	id := r.binder.EnsureIdentifier(fmt.Sprintf("tmp%d", r.temps), typ)
	r.temps++
	return id
}

// Assign emits dst = src and records the written value in the processor state.
func (r *Rewriter) Assign(dst, src ir.Expression) {
	r.emitter.Assign(dst, src)
	if id, ok := dst.(*ir.Identifier); ok {
		if _, isReg := r.arch.Registers().ByName(id.Name); isReg {
			r.state.Write(id.Name, constantOf(src))
		}
	}
}

// AssignBit emits dst = src for a single bit update and records the bit in the processor state.
func (r *Rewriter) AssignBit(dst, src ir.Expression, bit int, value bool) {
	r.emitter.Assign(dst, src)
	if id, ok := dst.(*ir.Identifier); ok {
		r.state.WriteBit(id.Name, bit, value)
	}
}

// ToggleBit emits dst = src for a bit toggle, the bit becomes unknown.
func (r *Rewriter) ToggleBit(dst, src ir.Expression, bit int) {
	r.emitter.Assign(dst, src)
	if id, ok := dst.(*ir.Identifier); ok {
		r.state.InvalidateBits(id.Name, 1<<bit)
	}
}

// SetStatusFlags emits the flag group assignment for the result of an operation.
func (r *Rewriter) SetStatusFlags(result ir.Expression, flags Flag) {
	r.emitter.Assign(r.FlagGroup(flags), ir.Cond(result))
	r.state.SetFlags(constantOf(result), flags)
}

// SetFlag emits the assignment of a constant flag value.
func (r *Rewriter) SetFlag(flag Flag, value bool) {
	v := ir.False
	if value {
		v = ir.True
	}
	r.emitter.Assign(r.FlagGroup(flag), v)
	r.state.WriteBit(StatusRegister, flagBit(flag), value)
}

// Pseudo returns the application of a host pseudo procedure.
func (r *Rewriter) Pseudo(name string, returnType ir.DataType, args ...ir.Expression) ir.Expression {
	return r.host.PseudoProcedure(name, returnType, args...)
}

// Report forwards a diagnostic for the current instruction to the host.
func (r *Rewriter) Report(severity arch.Severity, message string) {
	r.host.Report(severity, r.inst.Address, message)
}

// PushReturnAddress pushes a return address on the hardware stack and updates
// the top of stack register.
func (r *Rewriter) PushReturnAddress(address ir.Address) {
	r.pushSlot(address)
	r.Assign(r.Reg(TOS), address)
}

func (r *Rewriter) pushSlot(address ir.Address) {
	stkptr := r.Reg(STKPTR)
	r.Assign(stkptr, ir.Add(stkptr, ir.Byte8(1)))
	r.emitter.Assign(ir.Mem(ir.StackSpace, stkptr, r.cfg.StackSlotType), address)
}

// PopReturnAddress pops the hardware stack and refreshes the top of stack register
// with the restored slot.
func (r *Rewriter) PopReturnAddress() {
	stkptr := r.Reg(STKPTR)
	tos := r.Reg(TOS)
	r.Assign(stkptr, ir.Sub(stkptr, ir.Byte8(1)))
	r.Assign(tos, ir.Mem(ir.StackSpace, stkptr, r.cfg.StackSlotType))
}

// SkipTarget returns the address after the instruction that follows inst.
func (r *Rewriter) SkipTarget(inst *Instruction) ir.Address {
	next := inst.Next()
	return next.Add(r.dis.PeekLength(next))
}

// Code returns the code address of a target operand.
func (r *Rewriter) Code(address ir.Address) ir.Address {
	return ir.Address(uint32(address) & r.arch.ProgramMask())
}

func flagBit(flag Flag) int {
	for bit := 0; bit < 8; bit++ {
		if Flag(1<<bit) == flag {
			return bit
		}
	}
	return 0
}

// constantOf converts addresses to constants so that the state records them.
func constantOf(e ir.Expression) ir.Expression {
	if a, ok := e.(ir.Address); ok {
		return ir.NewConstant(uint32(a), ir.Ptr32)
	}
	return e
}
