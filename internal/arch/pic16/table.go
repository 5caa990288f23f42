package pic16

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

// pageMask is the part of a word address that CALL and GOTO encode directly.
const pageMask = 0x7FF

func byteEncoding(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0x3F00, Value: value, Opcode: opcode, Words: 1, Decode: decodeFileD}
}

func bitEncoding(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0x3C00, Value: value, Opcode: opcode, Words: 1, Decode: decodeBit}
}

func literalEncoding(mask, value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: mask, Value: value, Opcode: opcode, Words: 1, Decode: decodeLiteral8}
}

func fixed(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0x3FFF, Value: value, Opcode: opcode, Words: 1, Decode: pic.NoOperands}
}

// basicTable is the encoding table of the 35 instructions of the basic mid-range core.
var basicTable = pic.Table{
	WordMask: 0x3FFF,
	Entries: []pic.Encoding{
		fixed(0x0008, pic.RETURN),
		fixed(0x0009, pic.RETFIE),
		fixed(0x0062, pic.OPTION),
		fixed(0x0063, pic.SLEEP),
		fixed(0x0064, pic.CLRWDT),
		{Mask: 0x3F9F, Value: 0x0000, Opcode: pic.NOP, Words: 1, Decode: pic.NoOperands},
		{Mask: 0x3FF8, Value: 0x0060, Opcode: pic.TRIS, Words: 1, Decode: decodeTRIS},
		{Mask: 0x3F80, Value: 0x0080, Opcode: pic.MOVWF, Words: 1, Decode: decodeFile},
		{Mask: 0x3F80, Value: 0x0100, Opcode: pic.CLRW, Words: 1, Decode: pic.NoOperands},
		{Mask: 0x3F80, Value: 0x0180, Opcode: pic.CLRF, Words: 1, Decode: decodeFile},

		byteEncoding(0x0200, pic.SUBWF),
		byteEncoding(0x0300, pic.DECF),
		byteEncoding(0x0400, pic.IORWF),
		byteEncoding(0x0500, pic.ANDWF),
		byteEncoding(0x0600, pic.XORWF),
		byteEncoding(0x0700, pic.ADDWF),
		byteEncoding(0x0800, pic.MOVF),
		byteEncoding(0x0900, pic.COMF),
		byteEncoding(0x0A00, pic.INCF),
		byteEncoding(0x0B00, pic.DECFSZ),
		byteEncoding(0x0C00, pic.RRF),
		byteEncoding(0x0D00, pic.RLF),
		byteEncoding(0x0E00, pic.SWAPF),
		byteEncoding(0x0F00, pic.INCFSZ),

		bitEncoding(0x1000, pic.BCF),
		bitEncoding(0x1400, pic.BSF),
		bitEncoding(0x1800, pic.BTFSC),
		bitEncoding(0x1C00, pic.BTFSS),

		{Mask: 0x3800, Value: 0x2000, Opcode: pic.CALL, Words: 1, Decode: decodeAbsolute},
		{Mask: 0x3800, Value: 0x2800, Opcode: pic.GOTO, Words: 1, Decode: decodeAbsolute},

		literalEncoding(0x3C00, 0x3000, pic.MOVLW),
		literalEncoding(0x3C00, 0x3400, pic.RETLW),
		literalEncoding(0x3F00, 0x3800, pic.IORLW),
		literalEncoding(0x3F00, 0x3900, pic.ANDLW),
		literalEncoding(0x3F00, 0x3A00, pic.XORLW),
		literalEncoding(0x3E00, 0x3C00, pic.SUBLW),
		literalEncoding(0x3E00, 0x3E00, pic.ADDLW),
	},
}

// enhancedTable adds the 14 instructions of the enhanced mid-range core. The
// literal instructions lose their don't care bits to the new encodings.
var enhancedTable = basicTable.With(
	fixed(0x0000, pic.NOP),
	fixed(0x0001, pic.RESET),
	fixed(0x000A, pic.CALLW),
	fixed(0x000B, pic.BRW),
	pic.Encoding{Mask: 0x3FF8, Value: 0x0010, Opcode: pic.MOVIW, Words: 1, Decode: decodeIndirect},
	pic.Encoding{Mask: 0x3F80, Value: 0x3F00, Opcode: pic.MOVIW, Words: 1, Decode: decodeIndexed},
	pic.Encoding{Mask: 0x3FF8, Value: 0x0018, Opcode: pic.MOVWI, Words: 1, Decode: decodeIndirect},
	pic.Encoding{Mask: 0x3F80, Value: 0x3F80, Opcode: pic.MOVWI, Words: 1, Decode: decodeIndexed},
	pic.Encoding{Mask: 0x3FE0, Value: 0x0020, Opcode: pic.MOVLB, Words: 1, Decode: decodeMOVLB(5)},
	pic.Encoding{Mask: 0x3F80, Value: 0x3100, Opcode: pic.ADDFSR, Words: 1, Decode: decodeADDFSR},
	pic.Encoding{Mask: 0x3F80, Value: 0x3180, Opcode: pic.MOVLP, Words: 1, Decode: decodeMOVLP},
	pic.Encoding{Mask: 0x3E00, Value: 0x3200, Opcode: pic.BRA, Words: 1, Decode: decodeRelative9},
	byteEncoding(0x3500, pic.LSLF),
	byteEncoding(0x3600, pic.LSRF),
	byteEncoding(0x3700, pic.ASRF),
	byteEncoding(0x3B00, pic.SUBWFB),
	byteEncoding(0x3D00, pic.ADDWFC),
	literalEncoding(0x3F00, 0x3000, pic.MOVLW),
	literalEncoding(0x3F00, 0x3400, pic.RETLW),
	literalEncoding(0x3F00, 0x3C00, pic.SUBLW),
	literalEncoding(0x3F00, 0x3E00, pic.ADDLW),
)

// fullTable widens MOVLB to select one of 64 banks.
var fullTable = enhancedTable.With(
	pic.Encoding{Mask: 0x3FC0, Value: 0x0140, Opcode: pic.MOVLB, Words: 1, Decode: decodeMOVLB(6)},
)

func fileOperand(w uint16) pic.FileOperand {
	return pic.FileOperand{Offset: w & 0x7F, Access: pic.BankOffset}
}

func decodeFileD(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{fileOperand(w[0]), pic.DestOperand{ToFile: w[0]&0x80 != 0}}, nil
}

func decodeFile(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{fileOperand(w[0])}, nil
}

func decodeBit(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{fileOperand(w[0]), pic.BitOperand{Bit: uint8(w[0]>>7) & 7}}, nil
}

func decodeLiteral8(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.ImmediateOperand{Value: int32(w[0] & 0xFF), Width: 8}}, nil
}

// decodeAbsolute decodes the 11 bit word address of CALL and GOTO inside the
// page of the instruction. The rewriter replaces the page by PCLATH if it is known.
func decodeAbsolute(d *pic.Disassembler, address ir.Address, w []uint16) ([]pic.Operand, error) {
	word := uint32(address)>>1&^pageMask | uint32(w[0]&pageMask)
	target := d.Architecture().MakeAddress(ir.NewConstant(word<<1, ir.Word32))
	return []pic.Operand{pic.TargetOperand{Address: target}}, nil
}

func decodeRelative9(_ *pic.Disassembler, address ir.Address, w []uint16) ([]pic.Operand, error) {
	n := int(w[0] & 0x1FF)
	if n&0x100 != 0 {
		n -= 0x200
	}
	return []pic.Operand{pic.TargetOperand{Address: address.Add(2 + 2*n)}}, nil
}

// decodeTRIS accepts the port registers 5 to 7.
func decodeTRIS(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	f := int32(w[0] & 7)
	if f < 5 {
		return nil, fmt.Errorf("%w: tris register %d", arch.ErrInvalidOperand, f)
	}
	return []pic.Operand{pic.ImmediateOperand{Value: f, Width: 3}}, nil
}

func decodeMOVLB(bits int) pic.DecodeFunc {
	return func(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
		return []pic.Operand{pic.ImmediateOperand{Value: int32(w[0]) & (1<<bits - 1), Width: bits}}, nil
	}
}

func decodeMOVLP(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.ImmediateOperand{Value: int32(w[0] & 0x7F), Width: 7}}, nil
}

func fsrRegister(d *pic.Disassembler, n uint16) (*pic.Register, error) {
	return d.Architecture().Registers().MustByName(fmt.Sprintf("FSR%d", n&1))
}

func signed6(w uint16) int32 {
	k := int32(w & 0x3F)
	if k&0x20 != 0 {
		k -= 0x40
	}
	return k
}

func decodeADDFSR(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	reg, err := fsrRegister(d, w[0]>>6)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{pic.RegisterOperand{Reg: reg}, pic.ImmediateOperand{Value: signed6(w[0]), Width: 6}}, nil
}

var indirectAdjust = [4]pic.Adjust{pic.AdjustPreInc, pic.AdjustPreDec, pic.AdjustPostInc, pic.AdjustPostDec}

// decodeIndirect decodes the ++FSRn, --FSRn, FSRn++ and FSRn-- forms of MOVIW and MOVWI.
func decodeIndirect(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	reg, err := fsrRegister(d, w[0]>>2)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{pic.IndexedOperand{Base: reg, Adjust: indirectAdjust[w[0]&3]}}, nil
}

// decodeIndexed decodes the k[FSRn] form of MOVIW and MOVWI.
func decodeIndexed(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	reg, err := fsrRegister(d, w[0]>>6)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{pic.IndexedOperand{Base: reg, Displacement: signed6(w[0])}}, nil
}
