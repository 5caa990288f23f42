// Package image provides the loaded program memory and a cursor based reader over it.
package image

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/retrolift/internal/ir"
)

// ErrOutOfRange is returned for reads outside of the image.
var ErrOutOfRange = errors.New("address out of range")

// Memory is a contiguous program memory image starting at a base address.
type Memory struct {
	Base ir.Address
	Data []byte
}

// New returns a memory image with the given base address.
func New(base ir.Address, data []byte) *Memory {
	return &Memory{Base: base, Data: data}
}

// End returns the first address after the image.
func (m *Memory) End() ir.Address {
	return m.Base.Add(len(m.Data))
}

// Contains returns whether the given address is part of the image.
func (m *Memory) Contains(address ir.Address) bool {
	return address >= m.Base && address < m.End()
}

// ReadAt returns count bytes starting at the given address.
func (m *Memory) ReadAt(address ir.Address, count int) ([]byte, error) {
	if count < 0 || !m.Contains(address) || uint64(address)+uint64(count) > uint64(m.End()) {
		return nil, fmt.Errorf("%w: %s+%d", ErrOutOfRange, address, count)
	}
	offset := int(address - m.Base)
	return m.Data[offset : offset+count], nil
}

// NewReader returns a reader positioned at the given address.
func (m *Memory) NewReader(address ir.Address, order binary.ByteOrder) (*Reader, error) {
	if address < m.Base || address > m.End() {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, address)
	}
	return &Reader{
		mem:   m,
		order: order,
		pos:   address,
		limit: m.End(),
	}, nil
}
