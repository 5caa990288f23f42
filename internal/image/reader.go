package image

import (
	"encoding/binary"
	"fmt"

	"github.com/retroenv/retrolift/internal/ir"
)

// Reader reads words from a memory image at a cursor position.
// A failed read never moves the cursor.
type Reader struct {
	mem   *Memory
	order binary.ByteOrder
	pos   ir.Address
	limit ir.Address
}

// Address returns the current cursor position.
func (r *Reader) Address() ir.Address {
	return r.pos
}

// ByteOrder returns the byte order used for word reads.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// Seek moves the cursor to the given address.
func (r *Reader) Seek(address ir.Address) error {
	if address < r.mem.Base || address > r.limit {
		return fmt.Errorf("%w: %s", ErrOutOfRange, address)
	}
	r.pos = address
	return nil
}

// SetLimit restricts reading to addresses below end.
func (r *Reader) SetLimit(end ir.Address) error {
	if end < r.mem.Base || end > r.mem.End() {
		return fmt.Errorf("%w: limit %s", ErrOutOfRange, end)
	}
	r.limit = end
	if r.pos > r.limit {
		r.pos = r.limit
	}
	return nil
}

// Remaining returns the number of readable bytes left.
func (r *Reader) Remaining() int {
	return int(r.limit - r.pos)
}

// ReadUint16 reads a word and advances the cursor by 2.
func (r *Reader) ReadUint16() (uint16, error) {
	w, err := r.PeekUint16(0)
	if err != nil {
		return 0, err
	}
	r.pos += 2
	return w, nil
}

// PeekUint16 reads a word at the given byte offset from the cursor without advancing.
func (r *Reader) PeekUint16(offset int) (uint16, error) {
	address := r.pos.Add(offset)
	if address < r.pos || uint64(address)+2 > uint64(r.limit) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, address)
	}
	b, err := r.mem.ReadAt(address, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// Skip advances the cursor by count bytes.
func (r *Reader) Skip(count int) error {
	if count < 0 || count > r.Remaining() {
		return fmt.Errorf("%w: skip %d at %s", ErrOutOfRange, count, r.pos)
	}
	r.pos = r.pos.Add(count)
	return nil
}

// PeekUint16At reads the word at an absolute address inside the readable range without advancing.
func (r *Reader) PeekUint16At(address ir.Address) (uint16, error) {
	if address < r.mem.Base || uint64(address)+2 > uint64(r.limit) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, address)
	}
	b, err := r.mem.ReadAt(address, 2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}
