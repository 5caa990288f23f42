package arch

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

// Mode is the variant strategy of a processor mode: a set of factories that
// create the collaborators of a lifting session. Modes are immutable values.
type Mode struct {
	Name           string // unique mode name, for example pic18-extended
	ArchitectureID string // family identifier shared by related modes
	Description    string

	CreateArchitecture   func() (Architecture, error)
	CreateRegisters      func(a Architecture) error
	CreateDisassembler   func(a Architecture, reader *image.Reader) (Disassembler, error)
	CreateProcessorState func(a Architecture) (ProcessorState, error)
	CreateRewriter       func(a Architecture, dis Disassembler, state ProcessorState,
		binder StorageBinder, host Host) (Rewriter, error)
	MakeAddress func(c ir.Constant) ir.Address
}

// Validate checks that all factories are set.
func (m Mode) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: mode name", ErrNilCollaborator)
	}
	factories := []struct {
		name  string
		isNil bool
	}{
		{"CreateArchitecture", m.CreateArchitecture == nil},
		{"CreateRegisters", m.CreateRegisters == nil},
		{"CreateDisassembler", m.CreateDisassembler == nil},
		{"CreateProcessorState", m.CreateProcessorState == nil},
		{"CreateRewriter", m.CreateRewriter == nil},
		{"MakeAddress", m.MakeAddress == nil},
	}
	for _, f := range factories {
		if f.isNil {
			return fmt.Errorf("%w: mode %s has no %s", ErrNilCollaborator, m.Name, f.name)
		}
	}
	return nil
}

// ZeroExtendAddress converts a decoded constant to a 32 bit code address.
func ZeroExtendAddress(c ir.Constant) ir.Address {
	return ir.Address(c.Value & c.Type.Mask())
}
