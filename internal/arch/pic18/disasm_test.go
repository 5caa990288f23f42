package pic18

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/arch/pic/pictest"
)

//nolint:funlen // test functions can be long
func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		extended bool
		words    []uint16
		expected string
		length   int
	}{
		{name: "nop", words: []uint16{0x0000}, expected: "nop", length: 2},
		{name: "movlw", words: []uint16{0x0E12}, expected: "movlw 0x12", length: 2},
		{name: "addwf access", words: []uint16{0x2420}, expected: "addwf 0x20, W, ACCESS", length: 2},
		{name: "addwf banked", words: []uint16{0x2720}, expected: "addwf 0x20, F, BANKED", length: 2},
		{name: "bsf", words: []uint16{0x8689}, expected: "bsf 0x89, 3, ACCESS", length: 2},
		{name: "movff", words: []uint16{0xC080, 0xF081}, expected: "movff 0x080, 0x081", length: 4},
		{name: "call fast", words: []uint16{0xED80, 0xF000}, expected: "call 0x000100, FAST", length: 4},
		{name: "goto", words: []uint16{0xEF10, 0xF001}, expected: "goto 0x000220", length: 4},
		{name: "lfsr", words: []uint16{0xEE10, 0xF034}, expected: "lfsr FSR1, 0x34", length: 4},
		{name: "bz forward", words: []uint16{0xE002}, expected: "bz 0x000006", length: 2},
		{name: "bra backward", words: []uint16{0xD7FF}, expected: "bra 0x000000", length: 2},
		{name: "rcall", words: []uint16{0xD802}, expected: "rcall 0x000006", length: 2},
		{name: "tblrd post increment", words: []uint16{0x0009}, expected: "tblrd *+", length: 2},
		{name: "return fast", words: []uint16{0x0013}, expected: "return FAST", length: 2},
		{name: "retfie", words: []uint16{0x0010}, expected: "retfie", length: 2},
		{name: "movlb", words: []uint16{0x0105}, expected: "movlb 0x05", length: 2},
		{name: "second word nop", words: []uint16{0xF123}, expected: "nop", length: 2},
		{name: "call without second word", words: []uint16{0xEC00, 0x0000}, expected: "invalid 0x00EC", length: 2},
		{name: "lfsr fsr3", words: []uint16{0xEE30, 0xF000}, expected: "invalid 0x30EE", length: 2},
		{name: "reserved traditional", words: []uint16{0xE805}, expected: "invalid 0x05E8", length: 2},
		{name: "reserved callw traditional", words: []uint16{0x0014}, expected: "invalid 0x1400", length: 2},

		{name: "addfsr", extended: true, words: []uint16{0xE805}, expected: "addfsr FSR0, 0x05", length: 2},
		{name: "addulnk", extended: true, words: []uint16{0xE8C3}, expected: "addulnk 0x03", length: 2},
		{name: "subfsr", extended: true, words: []uint16{0xE942}, expected: "subfsr FSR1, 0x02", length: 2},
		{name: "pushl", extended: true, words: []uint16{0xEA7F}, expected: "pushl 0x7F", length: 2},
		{name: "callw", extended: true, words: []uint16{0x0014}, expected: "callw", length: 2},
		{name: "movsf", extended: true, words: []uint16{0xEB05, 0xF080}, expected: "movsf [FSR2+0x05], 0x080", length: 4},
		{name: "movss", extended: true, words: []uint16{0xEB81, 0xF002}, expected: "movss [FSR2+0x01], [FSR2+0x02]", length: 4},
		{name: "indexed literal offset", extended: true, words: []uint16{0x5005}, expected: "movf [FSR2+0x05], W", length: 2},
		{name: "access bank sfr", extended: true, words: []uint16{0x5080}, expected: "movf 0x80, W, ACCESS", length: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := TraditionalMode()
			if tt.extended {
				mode = ExtendedMode()
			}
			s := pictest.NewSession(t, mode, tt.words...)

			inst := s.Next(t)
			assert.Equal(t, tt.expected, inst.String())
			assert.Equal(t, tt.length, inst.Size())
			assert.Equal(t, tt.length, int(s.Dis.Address()))
		})
	}
}

func TestDecodeInvalidResumes(t *testing.T) {
	s := pictest.NewSession(t, TraditionalMode(), 0xE805, 0x0E01)

	inst, err := s.Dis.DecodeNext()
	assert.NoError(t, err)
	assert.False(t, inst.IsValid())
	assert.Equal(t, 0, int(inst.Location()))
	assert.Equal(t, s.Arch.MinOpcodeWidth(), inst.Size())

	inst, err = s.Dis.DecodeNext()
	assert.NoError(t, err)
	assert.True(t, inst.IsValid())
	assert.Equal(t, 2, int(inst.Location()))
	assert.Equal(t, "movlw", inst.Mnemonic())

	_, err = s.Dis.DecodeNext()
	assert.True(t, errors.Is(err, arch.ErrEndOfStream))
	_, err = s.Dis.DecodeNext()
	assert.True(t, errors.Is(err, arch.ErrEndOfStream))

	assert.NoError(t, s.Dis.Seek(2))
	inst, err = s.Dis.DecodeNext()
	assert.NoError(t, err)
	assert.Equal(t, "movlw 0x01", inst.String())
}

func TestDecodeTruncated(t *testing.T) {
	s := pictest.NewSession(t, TraditionalMode(), 0xC080)

	_, err := s.Dis.Next()
	assert.True(t, errors.Is(err, arch.ErrEndOfStream))
	assert.Equal(t, 0, int(s.Dis.Address()))
}

func TestCursorAccounting(t *testing.T) {
	words := []uint16{
		0x0E12,         // movlw
		0xC080, 0xF081, // movff
		0xE805,         // reserved
		0xEC80, 0xF000, // call
		0x0012, // return
	}
	s := pictest.NewSession(t, TraditionalMode(), words...)

	total := 0
	count := 0
	for inst, err := range s.Dis.Instructions() {
		assert.NoError(t, err)
		assert.Equal(t, total, int(inst.Address))
		total += inst.Size()
		count++
	}
	assert.Equal(t, 2*len(words), total)
	assert.Equal(t, 5, count)
}

func TestDecodeDeterministic(t *testing.T) {
	words := []uint16{0x2420, 0xC080, 0xF081, 0xED80, 0xF000, 0xE002}
	first := pictest.NewSession(t, ExtendedMode(), words...)
	second := pictest.NewSession(t, ExtendedMode(), words...)

	for {
		a, errA := first.Dis.Next()
		b, errB := second.Dis.Next()
		if errA != nil {
			assert.True(t, errors.Is(errA, arch.ErrEndOfStream))
			assert.True(t, errors.Is(errB, arch.ErrEndOfStream))
			return
		}
		assert.NoError(t, errB)
		assert.Equal(t, a.String(), b.String())
		assert.Equal(t, a.Bytes, b.Bytes)
		assert.Equal(t, a.Opcode, b.Opcode)
	}
}

func TestPeekLength(t *testing.T) {
	s := pictest.NewSession(t, TraditionalMode(), 0x0000, 0xC080, 0xF081, 0x0000)

	assert.Equal(t, 2, s.Dis.PeekLength(0))
	assert.Equal(t, 4, s.Dis.PeekLength(2))
	assert.Equal(t, 2, s.Dis.PeekLength(6))
	assert.Equal(t, 2, s.Dis.PeekLength(0x100))
	assert.Equal(t, 0, int(s.Dis.Address()))
}

func TestExtendedTableOpcodes(t *testing.T) {
	traditional := traditionalTable.Opcodes()
	extended := extendedTable.Opcodes()

	for _, op := range []pic.Opcode{pic.ADDFSR, pic.ADDULNK, pic.CALLW, pic.MOVSF, pic.MOVSS, pic.PUSHL, pic.SUBFSR, pic.SUBULNK} {
		assert.False(t, containsOpcode(traditional, op))
		assert.True(t, containsOpcode(extended, op))
	}
	for _, op := range traditional {
		assert.True(t, containsOpcode(extended, op))
	}
}

func containsOpcode(opcodes []pic.Opcode, op pic.Opcode) bool {
	for _, o := range opcodes {
		if o == op {
			return true
		}
	}
	return false
}
