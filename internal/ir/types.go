// Package ir contains the architecture independent intermediate representation
// that instruction rewriters emit and that later analysis stages consume.
package ir

import "fmt"

// DataType is a minimal type tag used for operand and storage widths.
type DataType int

// Supported data types.
const (
	Unknown DataType = iota // type without a known size
	Void
	Bool
	Byte
	Word16
	Word32
	Ptr32
)

var dataTypeNames = [...]string{
	Unknown: "unknown",
	Void:    "void",
	Bool:    "bool",
	Byte:    "byte",
	Word16:  "word16",
	Word32:  "word32",
	Ptr32:   "ptr32",
}

var dataTypeSizes = [...]int{
	Unknown: 0,
	Void:    0,
	Bool:    1,
	Byte:    1,
	Word16:  2,
	Word32:  4,
	Ptr32:   4,
}

func (d DataType) String() string {
	if d < 0 || int(d) >= len(dataTypeNames) {
		return fmt.Sprintf("type(%d)", int(d))
	}
	return dataTypeNames[d]
}

// Size returns the size of the type in bytes, 0 for types without a size.
func (d DataType) Size() int {
	if d < 0 || int(d) >= len(dataTypeSizes) {
		return 0
	}
	return dataTypeSizes[d]
}

// Bits returns the size of the type in bits.
func (d DataType) Bits() int {
	return d.Size() * 8
}

// Mask returns the value mask of the type, all bits set for unsized types.
func (d DataType) Mask() uint32 {
	bits := d.Bits()
	if bits == 0 || bits >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<bits - 1
}

// Address is a native address of an architecture, zero-extended to 32 bits.
// It is also usable as an expression, for example as a jump target.
type Address uint32

func (a Address) String() string {
	return fmt.Sprintf("0x%06X", uint32(a))
}

// DataType returns the pointer type.
func (a Address) DataType() DataType {
	return Ptr32
}

// Add returns the address moved by the given byte offset.
func (a Address) Add(offset int) Address {
	return Address(int64(a) + int64(offset))
}
