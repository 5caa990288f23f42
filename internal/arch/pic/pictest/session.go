// Package pictest contains helpers to test PIC processor modes.
package pictest

import (
	"encoding/binary"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/mocks"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

// Session bundles the collaborators of a processor mode bound to a program.
type Session struct {
	Arch     *pic.Architecture
	Dis      *pic.Disassembler
	State    *pic.State
	Rewriter *pic.Rewriter
	Binder   *ir.Binder
	Host     *mocks.Host
}

// Words returns the little endian encoding of instruction words.
func Words(words ...uint16) []byte {
	data := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(data[2*i:], w)
	}
	return data
}

// NewSession creates all collaborators of the mode for the program words loaded at address 0.
func NewSession(t *testing.T, mode arch.Mode, words ...uint16) *Session {
	t.Helper()
	return NewSessionAt(t, mode, 0, Words(words...))
}

// NewSessionAt creates all collaborators of the mode for the data loaded at the base address.
func NewSessionAt(t *testing.T, mode arch.Mode, base ir.Address, data []byte) *Session {
	t.Helper()

	a, err := mode.CreateArchitecture()
	assert.NoError(t, err)
	assert.NoError(t, mode.CreateRegisters(a))

	reader, err := image.New(base, data).NewReader(base, a.ByteOrder())
	assert.NoError(t, err)
	dis, err := mode.CreateDisassembler(a, reader)
	assert.NoError(t, err)
	state, err := mode.CreateProcessorState(a)
	assert.NoError(t, err)

	s := &Session{
		Binder: ir.NewBinder(),
		Host:   mocks.NewHost(),
	}
	rw, err := mode.CreateRewriter(a, dis, state, s.Binder, s.Host)
	assert.NoError(t, err)

	s.Arch = a.(*pic.Architecture)
	s.Dis = dis.(*pic.Disassembler)
	s.State = state.(*pic.State)
	s.Rewriter = rw.(*pic.Rewriter)
	return s
}

// Next decodes the next instruction.
func (s *Session) Next(t *testing.T) *pic.Instruction {
	t.Helper()
	inst, err := s.Dis.Next()
	assert.NoError(t, err)
	return inst
}

// Lift decodes and rewrites the next instruction.
func (s *Session) Lift(t *testing.T) *ir.Cluster {
	t.Helper()
	inst := s.Next(t)
	cluster, err := s.Rewriter.Rewrite(inst)
	assert.NoError(t, err)
	return cluster
}

// Statements returns the string form of the cluster statements.
func Statements(c *ir.Cluster) []string {
	stmts := make([]string, len(c.Statements))
	for i, stmt := range c.Statements {
		stmts[i] = stmt.String()
	}
	return stmts
}
