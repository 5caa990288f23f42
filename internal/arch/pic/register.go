package pic

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/ir"
)

// IndirectMode describes how an indirect file register accesses memory through its FSR.
type IndirectMode int

// Indirect access modes.
const (
	Direct  IndirectMode = iota
	Indf                 // access Data[FSR]
	PostInc              // access Data[FSR], then FSR++
	PostDec              // access Data[FSR], then FSR--
	PreInc               // FSR++, then access Data[FSR]
	PlusW                // access Data[FSR + WREG]
)

// Register describes a register of the catalogue.
type Register struct {
	Name     string
	Type     ir.DataType
	Address  uint16 // data memory address of memory mapped registers
	Mapped   bool   // register has a data memory address
	Mirrored bool   // register is visible in every bank at the same offset
	Indirect IndirectMode
	Pointer  string // FSR used by indirect registers
	Parent   string // wider register this register is a part of
	Offset   int    // bit offset inside the parent
	Bits     int    // width inside the parent, defaults to the type width
}

// Width returns the width of the register in bits.
func (r *Register) Width() int {
	if r.Bits > 0 {
		return r.Bits
	}
	return r.Type.Bits()
}

// Mask returns the mask of the valid register value bits.
func (r *Register) Mask() uint32 {
	w := r.Width()
	if w >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<w - 1
}

func (r *Register) String() string {
	return r.Name
}

// RegisterSet is the register catalogue of an architecture.
type RegisterSet struct {
	populated bool
	order     []*Register
	byName    map[string]*Register
	byAddress map[uint16]*Register
	children  map[string][]*Register
}

// NewRegisterSet returns an empty register catalogue.
func NewRegisterSet() *RegisterSet {
	return &RegisterSet{
		byName:    map[string]*Register{},
		byAddress: map[uint16]*Register{},
		children:  map[string][]*Register{},
	}
}

// Populate fills the catalogue, it can only be called once.
// On error the catalogue is left empty.
func (s *RegisterSet) Populate(registers []Register) error {
	if s.populated {
		return arch.ErrDuplicateRegistration
	}

	order := make([]*Register, 0, len(registers))
	byName := make(map[string]*Register, len(registers))
	byAddress := map[uint16]*Register{}
	children := map[string][]*Register{}

	for i := range registers {
		reg := registers[i]
		if _, ok := byName[reg.Name]; ok {
			return fmt.Errorf("%w: register %s defined twice", arch.ErrDuplicateRegistration, reg.Name)
		}
		if reg.Mapped {
			if other, ok := byAddress[reg.Address]; ok {
				return fmt.Errorf("%w: %s and %s share address 0x%03X",
					arch.ErrDuplicateRegistration, reg.Name, other.Name, reg.Address)
			}
			byAddress[reg.Address] = &reg
		}
		byName[reg.Name] = &reg
		order = append(order, &reg)
	}

	for _, reg := range order {
		if reg.Parent == "" {
			continue
		}
		if _, ok := byName[reg.Parent]; !ok {
			return fmt.Errorf("%w: parent %s of %s", arch.ErrMissingRegister, reg.Parent, reg.Name)
		}
		children[reg.Parent] = append(children[reg.Parent], reg)
	}

	s.order = order
	s.byName = byName
	s.byAddress = byAddress
	s.children = children
	s.populated = true
	return nil
}

// Populated returns whether the catalogue has been filled.
func (s *RegisterSet) Populated() bool {
	return s.populated
}

// ByName returns the register with the given name.
func (s *RegisterSet) ByName(name string) (*Register, bool) {
	reg, ok := s.byName[name]
	return reg, ok
}

// MustByName returns the register with the given name or an error if it does not exist.
func (s *RegisterSet) MustByName(name string) (*Register, error) {
	reg, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", arch.ErrMissingRegister, name)
	}
	return reg, nil
}

// ByAddress returns the memory mapped register at the given data address.
func (s *RegisterSet) ByAddress(address uint16) (*Register, bool) {
	reg, ok := s.byAddress[address]
	return reg, ok
}

// Children returns the registers that are part of the given register.
func (s *RegisterSet) Children(name string) []*Register {
	return s.children[name]
}

// All returns all registers in definition order.
func (s *RegisterSet) All() []*Register {
	return s.order
}
