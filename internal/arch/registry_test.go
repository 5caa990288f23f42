package arch

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

func testMode(name, id string) Mode {
	return Mode{
		Name:                 name,
		ArchitectureID:       id,
		CreateArchitecture:   func() (Architecture, error) { return nil, nil },
		CreateRegisters:      func(Architecture) error { return nil },
		CreateDisassembler:   func(Architecture, *image.Reader) (Disassembler, error) { return nil, nil },
		CreateProcessorState: func(Architecture) (ProcessorState, error) { return nil, nil },
		CreateRewriter: func(Architecture, Disassembler, ProcessorState, StorageBinder, Host) (Rewriter, error) {
			return nil, nil
		},
		MakeAddress: ZeroExtendAddress,
	}
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(testMode("b-mode", "fam1"), testMode("a-mode", "fam1"), testMode("c-mode", "fam2"))
	assert.NoError(t, err)

	assert.Equal(t, []string{"a-mode", "b-mode", "c-mode"}, r.Names())

	m, err := r.Lookup("B-Mode")
	assert.NoError(t, err)
	assert.Equal(t, "b-mode", m.Name)

	_, err = r.Lookup("missing")
	assert.True(t, errors.Is(err, ErrUnknownMode))
	assert.ErrorContains(t, err, "a-mode")

	family := r.Family("fam1")
	assert.Len(t, family, 2)
	assert.Equal(t, "a-mode", family[0].Name)

	err = r.Register(testMode("a-mode", "fam3"))
	assert.True(t, errors.Is(err, ErrDuplicateMode))
}

func TestModeValidate(t *testing.T) {
	m := testMode("x", "fam")
	assert.NoError(t, m.Validate())

	m.CreateRewriter = nil
	err := m.Validate()
	assert.True(t, errors.Is(err, ErrNilCollaborator))
	assert.ErrorContains(t, err, "CreateRewriter")

	_, err = NewRegistry(m)
	assert.True(t, errors.Is(err, ErrNilCollaborator))
}

func TestZeroExtendAddress(t *testing.T) {
	assert.Equal(t, ir.Address(0x1234), ZeroExtendAddress(ir.Word(0x1234)))
	assert.Equal(t, ir.Address(0xFF), ZeroExtendAddress(ir.Byte8(0xFF)))
}
