package pic

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
)

// StatusRegister is the name of the register holding the condition flags.
const StatusRegister = "STATUS"

// State tracks which register bits hold a known constant during lifting.
// Values of wide registers and of the registers they are composed of are kept in sync.
// Only constants are tracked, the state never evaluates expressions.
type State struct {
	regs   *RegisterSet
	values map[string]uint32
	known  map[string]uint32 // mask of known bits
	pc     ir.Address
}

// NewState returns a state with all registers unknown.
func NewState(regs *RegisterSet) *State {
	return &State{
		regs:   regs,
		values: map[string]uint32{},
		known:  map[string]uint32{},
	}
}

// AsState converts a generic processor state into a PIC state.
func AsState(s arch.ProcessorState) (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: processor state", arch.ErrNilCollaborator)
	}
	p, ok := s.(*State)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: unsupported processor state type %T", arch.ErrWrongArchitecture, s)
	}
	return p, nil
}

// PC returns the address of the instruction being lifted.
func (s *State) PC() ir.Address { return s.pc }

// SetPC sets the address of the instruction being lifted.
func (s *State) SetPC(address ir.Address) { s.pc = address }

// Reset marks all registers unknown.
func (s *State) Reset() {
	s.values = map[string]uint32{}
	s.known = map[string]uint32{}
}

// Read returns the register value if all its bits are known.
func (s *State) Read(name string) (uint32, bool) {
	return s.ReadBits(name, s.mask(name))
}

// ReadBits returns the masked register bits if they are all known.
func (s *State) ReadBits(name string, mask uint32) (uint32, bool) {
	if s.known[name]&mask != mask {
		return 0, false
	}
	return s.values[name] & mask, true
}

// Write records the value written to a register. Constants are recorded,
// any other value leaves the register unknown.
func (s *State) Write(name string, value ir.Expression) {
	if c, ok := value.(ir.Constant); ok {
		s.WriteValue(name, c.Value)
		return
	}
	s.Invalidate(name)
}

// WriteValue records a known register value.
func (s *State) WriteValue(name string, value uint32) {
	s.update(name, s.mask(name), value, true, "")
}

// WriteBit records a single known register bit.
func (s *State) WriteBit(name string, bit int, value bool) {
	var v uint32
	if value {
		v = 1 << bit
	}
	s.update(name, 1<<bit, v, true, "")
}

// Invalidate marks all bits of a register unknown.
func (s *State) Invalidate(name string) {
	s.update(name, s.mask(name), 0, false, "")
}

// InvalidateBits marks the masked bits of a register unknown.
func (s *State) InvalidateBits(name string, mask uint32) {
	s.update(name, mask, 0, false, "")
}

// ReadFlag returns the value of a single condition flag if it is known.
func (s *State) ReadFlag(flag Flag) (value, known bool) {
	bits, ok := s.ReadBits(StatusRegister, uint32(flag))
	return bits != 0, ok
}

// SetFlags updates the flags affected by an operation with the given result.
// A constant result determines the zero and negative flags, all other affected
// flags become unknown.
func (s *State) SetFlags(result ir.Expression, flags Flag) {
	s.InvalidateBits(StatusRegister, uint32(flags))

	c, ok := result.(ir.Constant)
	if !ok {
		return
	}
	if flags&FlagZ != 0 {
		s.update(StatusRegister, uint32(FlagZ), boolBit(c.Value == 0, FlagZ), true, "")
	}
	if flags&FlagN != 0 {
		sign := uint32(1) << (c.Type.Bits() - 1)
		if c.Type.Bits() == 0 {
			sign = 0x80
		}
		s.update(StatusRegister, uint32(FlagN), boolBit(c.Value&sign != 0, FlagN), true, "")
	}
}

func boolBit(b bool, flag Flag) uint32 {
	if b {
		return uint32(flag)
	}
	return 0
}

func (s *State) mask(name string) uint32 {
	if reg, ok := s.regs.ByName(name); ok {
		return reg.Mask()
	}
	return 0xFF
}

// update sets or clears the masked bits of a register and propagates the change
// to the registers it is composed of and to its parent. from is the register
// the change was propagated from.
func (s *State) update(name string, mask, value uint32, known bool, from string) {
	if mask == 0 {
		return
	}
	if known {
		s.values[name] = s.values[name]&^mask | value&mask
		s.known[name] |= mask
	} else {
		s.known[name] &^= mask
	}

	for _, child := range s.regs.Children(name) {
		if child.Name == from {
			continue
		}
		childMask := mask >> child.Offset & child.Mask()
		s.update(child.Name, childMask, value>>child.Offset, known, name)
	}

	reg, ok := s.regs.ByName(name)
	if !ok || reg.Parent == "" || reg.Parent == from {
		return
	}
	parentMask := (mask & reg.Mask()) << reg.Offset
	s.update(reg.Parent, parentMask, value<<reg.Offset, known, name)
}
