package pic

import (
	"errors"
	"fmt"
	"iter"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

const secondWordMarker = 0xF000

// Disassembler decodes PIC instructions using an encoding table.
// Once the input is exhausted it keeps returning arch.ErrEndOfStream until it is moved by Seek.
type Disassembler struct {
	arch      *Architecture
	reader    *image.Reader
	table     Table
	exhausted bool
}

// NewDisassembler returns a disassembler bound to the cursor of the reader.
func NewDisassembler(a *Architecture, reader *image.Reader, table Table) (*Disassembler, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: architecture", arch.ErrNilCollaborator)
	}
	if reader == nil {
		return nil, fmt.Errorf("%w: image reader", arch.ErrNilCollaborator)
	}
	return &Disassembler{
		arch:   a,
		reader: reader,
		table:  table,
	}, nil
}

// AsDisassembler converts a generic disassembler into a PIC disassembler.
func AsDisassembler(d arch.Disassembler) (*Disassembler, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: disassembler", arch.ErrNilCollaborator)
	}
	p, ok := d.(*Disassembler)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: unsupported disassembler type %T", arch.ErrWrongArchitecture, d)
	}
	return p, nil
}

// Architecture returns the architecture the disassembler decodes for.
func (d *Disassembler) Architecture() *Architecture {
	return d.arch
}

// Table returns the encoding table.
func (d *Disassembler) Table() Table {
	return d.table
}

// Address returns the cursor position.
func (d *Disassembler) Address() ir.Address {
	return d.reader.Address()
}

// DecodeNext decodes the next instruction.
func (d *Disassembler) DecodeNext() (arch.Instruction, error) {
	inst, err := d.Next()
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// Next decodes the instruction at the cursor and advances the cursor by its length.
// Undecodable words result in an Invalid instruction of one word.
func (d *Disassembler) Next() (*Instruction, error) {
	if d.exhausted {
		return nil, fmt.Errorf("%w: at %s", arch.ErrEndOfStream, d.reader.Address())
	}

	address := d.reader.Address()
	inst, err := d.decode(address)
	if err != nil {
		d.exhausted = true
		return nil, err
	}
	if err := d.reader.Skip(inst.Length); err != nil {
		d.exhausted = true
		return nil, fmt.Errorf("%w: %w", arch.ErrEndOfStream, err)
	}
	return inst, nil
}

// Instructions returns an iterator over the remaining instructions. The iteration
// ends at the end of the input, other errors are yielded.
func (d *Disassembler) Instructions() iter.Seq2[*Instruction, error] {
	return func(yield func(*Instruction, error) bool) {
		for {
			inst, err := d.Next()
			if err != nil {
				if !errors.Is(err, arch.ErrEndOfStream) {
					yield(nil, err)
				}
				return
			}
			if !yield(inst, nil) {
				return
			}
		}
	}
}

// Seek moves the cursor to the given address.
func (d *Disassembler) Seek(address ir.Address) error {
	if err := d.reader.Seek(address); err != nil {
		return fmt.Errorf("seeking disassembler: %w", err)
	}
	d.exhausted = false
	return nil
}

// PeekLength returns the length of the instruction at the given address without
// moving the cursor. Addresses that can not be decoded count as one word.
func (d *Disassembler) PeekLength(address ir.Address) int {
	word, err := d.reader.PeekUint16At(address)
	if err != nil {
		return minOpcodeWidth
	}
	enc, ok := d.table.Match(word)
	if !ok || enc.Words < 2 {
		return minOpcodeWidth
	}
	second, err := d.reader.PeekUint16At(address.Add(2))
	if err != nil || second&secondWordMarker != secondWordMarker {
		return minOpcodeWidth
	}
	return 2 * minOpcodeWidth
}

// decode decodes the instruction at the cursor without moving it.
func (d *Disassembler) decode(address ir.Address) (*Instruction, error) {
	word, err := d.reader.PeekUint16(0)
	if err != nil {
		return nil, fmt.Errorf("%w: at %s", arch.ErrEndOfStream, address)
	}
	words := []uint16{word}

	enc, ok := d.table.Match(word)
	if !ok {
		return NewInvalid(address, d.encode(words)), nil
	}

	if enc.Words == 2 {
		second, err := d.reader.PeekUint16(2)
		if err != nil {
			return nil, fmt.Errorf("%w: second word of %s at %s", arch.ErrEndOfStream, enc.Opcode, address)
		}
		if second&secondWordMarker != secondWordMarker {
			return NewInvalid(address, d.encode(words)), nil
		}
		words = append(words, second)
	}

	decode := enc.Decode
	if decode == nil {
		decode = NoOperands
	}
	operands, err := decode(d, address, words)
	if err != nil {
		return NewInvalid(address, d.encode(words[:1])), nil //nolint:nilerr // invalid encodings are not errors
	}

	inst, err := NewInstruction(address, d.encode(words), enc.Opcode, d.arch.cfg.WordBits, operands...)
	if err != nil {
		return NewInvalid(address, d.encode(words[:1])), nil //nolint:nilerr // invalid encodings are not errors
	}
	return inst, nil
}

func (d *Disassembler) encode(words []uint16) []byte {
	data := make([]byte, 2*len(words))
	for i, w := range words {
		d.arch.ByteOrder().PutUint16(data[2*i:], w)
	}
	return data
}
