package pic

import (
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/retrolift/internal/ir"
)

// DecodeFunc decodes the operands of an instruction from its words. An error
// marks the encoding as invalid.
type DecodeFunc func(d *Disassembler, address ir.Address, words []uint16) ([]Operand, error)

// Encoding matches an instruction word by mask and value.
type Encoding struct {
	Mask   uint16
	Value  uint16
	Opcode Opcode
	Words  int // number of instruction words, second words carry 0xF in the upper nibble
	Decode DecodeFunc
}

// Table is an ordered list of encodings, the first matching entry wins.
type Table struct {
	WordMask uint16 // valid bits of an instruction word
	Entries  []Encoding
}

// With returns a copy of the table where the given entries replace all entries
// of the same opcodes and are matched before the remaining ones.
func (t Table) With(overrides ...Encoding) Table {
	replaced := set.New[Opcode]()
	for _, e := range overrides {
		replaced.Add(e.Opcode)
	}

	entries := make([]Encoding, 0, len(overrides)+len(t.Entries))
	entries = append(entries, overrides...)
	for _, e := range t.Entries {
		if !replaced.Contains(e.Opcode) {
			entries = append(entries, e)
		}
	}
	return Table{WordMask: t.WordMask, Entries: entries}
}

// Without returns a copy of the table without the entries of the given opcodes.
func (t Table) Without(opcodes ...Opcode) Table {
	removed := set.New[Opcode]()
	for _, op := range opcodes {
		removed.Add(op)
	}

	entries := make([]Encoding, 0, len(t.Entries))
	for _, e := range t.Entries {
		if !removed.Contains(e.Opcode) {
			entries = append(entries, e)
		}
	}
	return Table{WordMask: t.WordMask, Entries: entries}
}

// Match returns the first encoding matching the word.
func (t Table) Match(word uint16) (Encoding, bool) {
	if word&^t.WordMask != 0 {
		return Encoding{}, false
	}
	for _, e := range t.Entries {
		if word&e.Mask == e.Value {
			return e, true
		}
	}
	return Encoding{}, false
}

// Opcodes returns the opcodes that the table can decode, in table order without duplicates.
func (t Table) Opcodes() []Opcode {
	seen := set.New[Opcode]()
	var opcodes []Opcode
	for _, e := range t.Entries {
		if seen.Contains(e.Opcode) {
			continue
		}
		seen.Add(e.Opcode)
		opcodes = append(opcodes, e.Opcode)
	}
	return opcodes
}

// NoOperands decodes instructions without operands.
func NoOperands(*Disassembler, ir.Address, []uint16) ([]Operand, error) {
	return nil, nil
}
