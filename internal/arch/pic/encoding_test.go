package pic

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

func decodeLiteral(_ *Disassembler, _ ir.Address, w []uint16) ([]Operand, error) {
	return []Operand{ImmediateOperand{Value: int32(w[0] & 0xFF), Width: 8}}, nil
}

func decodeRejected(*Disassembler, ir.Address, []uint16) ([]Operand, error) {
	return nil, arch.ErrInvalidOperand
}

var testTable = Table{
	WordMask: 0x3FFF,
	Entries: []Encoding{
		{Mask: 0x3FFF, Value: 0x0000, Opcode: NOP, Words: 1},
		{Mask: 0x3F00, Value: 0x3000, Opcode: MOVLW, Words: 1, Decode: decodeLiteral},
		{Mask: 0x3C00, Value: 0x3400, Opcode: RETLW, Words: 1, Decode: decodeLiteral},
		{Mask: 0x3F00, Value: 0x0100, Opcode: CLRW, Words: 1, Decode: decodeRejected},
		{Mask: 0x3F00, Value: 0x0200, Opcode: MOVFF, Words: 2},
	},
}

func TestTableMatch(t *testing.T) {
	enc, ok := testTable.Match(0x3012)
	assert.True(t, ok)
	assert.Equal(t, MOVLW, enc.Opcode)

	_, ok = testTable.Match(0x3100)
	assert.False(t, ok)
	_, ok = testTable.Match(0x4000)
	assert.False(t, ok)

	enc, ok = testTable.Match(0x3512)
	assert.True(t, ok)
	assert.Equal(t, RETLW, enc.Opcode)
}

func TestTableWith(t *testing.T) {
	narrowed := testTable.With(
		Encoding{Mask: 0x3F00, Value: 0x3400, Opcode: RETLW, Words: 1, Decode: decodeLiteral},
		Encoding{Mask: 0x3FFF, Value: 0x000A, Opcode: CALLW, Words: 1},
	)
	assert.Equal(t, []Opcode{RETLW, CALLW, NOP, MOVLW, CLRW, MOVFF}, narrowed.Opcodes())

	_, ok := narrowed.Match(0x3512)
	assert.False(t, ok)
	enc, ok := narrowed.Match(0x000A)
	assert.True(t, ok)
	assert.Equal(t, CALLW, enc.Opcode)

	// the original table is not modified
	assert.Equal(t, 5, len(testTable.Entries))

	without := narrowed.Without(CALLW, MOVFF)
	assert.Equal(t, []Opcode{RETLW, NOP, MOVLW, CLRW}, without.Opcodes())
}

func newTestDisassembler(t *testing.T, data []byte) *Disassembler {
	t.Helper()
	a := NewArchitecture(Config{Family: PIC16, Name: "test", WordBits: 14, ProgramAddressBits: 13})
	reader, err := image.New(0, data).NewReader(0, a.ByteOrder())
	assert.NoError(t, err)
	d, err := NewDisassembler(a, reader, testTable)
	assert.NoError(t, err)
	return d
}

func TestDisassemblerNext(t *testing.T) {
	d := newTestDisassembler(t, []byte{
		0x12, 0x30, // movlw 0x12
		0x00, 0x01, // rejected operand decode
		0xFF, 0x3F, // no match
		0x00, 0x02, 0x00, 0xF0, // two words
		0x00, 0x02, 0x00, 0x00, // second word without marker, decoded as nop
	})

	expected := []struct {
		text   string
		valid  bool
		length int
	}{
		{"movlw 0x12", true, 2},
		{"invalid 0x0001", false, 2},
		{"invalid 0xFF3F", false, 2},
		{"movff", true, 4},
		{"invalid 0x0002", false, 2},
		{"nop", true, 2},
	}
	for _, e := range expected {
		inst, err := d.Next()
		assert.NoError(t, err)
		assert.Equal(t, e.text, inst.String())
		assert.Equal(t, e.valid, inst.IsValid())
		assert.Equal(t, e.length, inst.Size())
	}

	_, err := d.Next()
	assert.True(t, errors.Is(err, arch.ErrEndOfStream))
}

func TestDisassemblerIterator(t *testing.T) {
	d := newTestDisassembler(t, []byte{0x00, 0x00, 0x12, 0x30, 0x00, 0x02})

	var mnemonics []string
	for inst, err := range d.Instructions() {
		assert.NoError(t, err)
		mnemonics = append(mnemonics, inst.Mnemonic())
	}
	assert.Equal(t, []string{"nop", "movlw"}, mnemonics)
	assert.Equal(t, 4, int(d.Address()))

	assert.NoError(t, d.Seek(2))
	inst, err := d.DecodeNext()
	assert.NoError(t, err)
	assert.Equal(t, "movlw", inst.Mnemonic())

	assert.Error(t, d.Seek(0x100))
}

func TestNewInstructionValidation(t *testing.T) {
	reg := &Register{Name: "FSR0", Type: ir.Word16}

	tests := []struct {
		name     string
		operands []Operand
		valid    bool
	}{
		{name: "immediate fits", operands: []Operand{ImmediateOperand{Value: 0xFF, Width: 8}}, valid: true},
		{name: "negative immediate", operands: []Operand{ImmediateOperand{Value: -32, Width: 6}}, valid: true},
		{name: "negative immediate too small", operands: []Operand{ImmediateOperand{Value: -33, Width: 6}}},
		{name: "immediate too large", operands: []Operand{ImmediateOperand{Value: 0x100, Width: 8}}},
		{name: "immediate wider than word", operands: []Operand{ImmediateOperand{Value: 1, Width: 15}}},
		{name: "zero width", operands: []Operand{ImmediateOperand{Value: 0, Width: 0}}},
		{name: "displacement", operands: []Operand{IndexedOperand{Base: reg, Displacement: 0x7F}}, valid: true},
		{name: "displacement too large", operands: []Operand{IndexedOperand{Base: reg, Displacement: 0x100}}},
		{name: "indexed without base", operands: []Operand{IndexedOperand{}}},
		{name: "nil register", operands: []Operand{RegisterOperand{}}},
		{name: "bit number", operands: []Operand{BitOperand{Bit: 8}}},
		{name: "too many operands", operands: []Operand{BitOperand{}, BitOperand{}, BitOperand{}, BitOperand{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := NewInstruction(0, []byte{0, 0}, ADDFSR, 14, tt.operands...)
			if tt.valid {
				assert.NoError(t, err)
				assert.NotNil(t, inst)
				return
			}
			assert.True(t, errors.Is(err, arch.ErrInvalidOperand))
		})
	}
}

func TestOperandAs(t *testing.T) {
	inst := &Instruction{Opcode: MOVLW, Operands: []Operand{ImmediateOperand{Value: 5, Width: 8}}}

	k, err := OperandAs[ImmediateOperand](inst, 0)
	assert.NoError(t, err)
	assert.Equal(t, int32(5), k.Value)

	_, err = OperandAs[BitOperand](inst, 0)
	assert.True(t, errors.Is(err, arch.ErrInvalidOperand))
	_, err = OperandAs[ImmediateOperand](inst, 1)
	assert.True(t, errors.Is(err, arch.ErrInvalidOperand))
}
