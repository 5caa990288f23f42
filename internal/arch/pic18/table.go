package pic18

import (
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

// indexedLiteralLimit is the highest access bank offset that the extended
// instruction set maps to [FSR2+f].
const indexedLiteralLimit = 0x5F

func byteEncoding(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0xFC00, Value: value, Opcode: opcode, Words: 1, Decode: decodeFileDA}
}

func fileEncoding(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0xFE00, Value: value, Opcode: opcode, Words: 1, Decode: decodeFileA}
}

func bitEncoding(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0xF000, Value: value, Opcode: opcode, Words: 1, Decode: decodeBit}
}

func literalEncoding(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0xFF00, Value: value, Opcode: opcode, Words: 1, Decode: decodeLiteral8}
}

func branchEncoding(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0xFF00, Value: value, Opcode: opcode, Words: 1, Decode: decodeRelative8}
}

func fixed(value uint16, opcode pic.Opcode) pic.Encoding {
	return pic.Encoding{Mask: 0xFFFF, Value: value, Opcode: opcode, Words: 1, Decode: pic.NoOperands}
}

// traditionalTable is the encoding table of the PIC18 instruction set without
// the extended instructions.
var traditionalTable = pic.Table{
	WordMask: 0xFFFF,
	Entries: []pic.Encoding{
		fixed(0x0000, pic.NOP),
		fixed(0x0003, pic.SLEEP),
		fixed(0x0004, pic.CLRWDT),
		fixed(0x0005, pic.PUSH),
		fixed(0x0006, pic.POP),
		fixed(0x0007, pic.DAW),
		fixed(0x00FF, pic.RESET),
		{Mask: 0xFFFC, Value: 0x0008, Opcode: pic.TBLRD, Words: 1, Decode: decodeTable},
		{Mask: 0xFFFC, Value: 0x000C, Opcode: pic.TBLWT, Words: 1, Decode: decodeTable},
		{Mask: 0xFFFE, Value: 0x0010, Opcode: pic.RETFIE, Words: 1, Decode: decodeFast},
		{Mask: 0xFFFE, Value: 0x0012, Opcode: pic.RETURN, Words: 1, Decode: decodeFast},
		{Mask: 0xFFF0, Value: 0x0100, Opcode: pic.MOVLB, Words: 1, Decode: decodeMOVLB},

		fileEncoding(0x0200, pic.MULWF),
		byteEncoding(0x0400, pic.DECF),
		literalEncoding(0x0800, pic.SUBLW),
		literalEncoding(0x0900, pic.IORLW),
		literalEncoding(0x0A00, pic.XORLW),
		literalEncoding(0x0B00, pic.ANDLW),
		literalEncoding(0x0C00, pic.RETLW),
		literalEncoding(0x0D00, pic.MULLW),
		literalEncoding(0x0E00, pic.MOVLW),
		literalEncoding(0x0F00, pic.ADDLW),
		byteEncoding(0x1000, pic.IORWF),
		byteEncoding(0x1400, pic.ANDWF),
		byteEncoding(0x1800, pic.XORWF),
		byteEncoding(0x1C00, pic.COMF),
		byteEncoding(0x2000, pic.ADDWFC),
		byteEncoding(0x2400, pic.ADDWF),
		byteEncoding(0x2800, pic.INCF),
		byteEncoding(0x2C00, pic.DECFSZ),
		byteEncoding(0x3000, pic.RRCF),
		byteEncoding(0x3400, pic.RLCF),
		byteEncoding(0x3800, pic.SWAPF),
		byteEncoding(0x3C00, pic.INCFSZ),
		byteEncoding(0x4000, pic.RRNCF),
		byteEncoding(0x4400, pic.RLNCF),
		byteEncoding(0x4800, pic.INFSNZ),
		byteEncoding(0x4C00, pic.DCFSNZ),
		byteEncoding(0x5000, pic.MOVF),
		byteEncoding(0x5400, pic.SUBFWB),
		byteEncoding(0x5800, pic.SUBWFB),
		byteEncoding(0x5C00, pic.SUBWF),
		fileEncoding(0x6000, pic.CPFSLT),
		fileEncoding(0x6200, pic.CPFSEQ),
		fileEncoding(0x6400, pic.CPFSGT),
		fileEncoding(0x6600, pic.TSTFSZ),
		fileEncoding(0x6800, pic.SETF),
		fileEncoding(0x6A00, pic.CLRF),
		fileEncoding(0x6C00, pic.NEGF),
		fileEncoding(0x6E00, pic.MOVWF),
		bitEncoding(0x7000, pic.BTG),
		bitEncoding(0x8000, pic.BSF),
		bitEncoding(0x9000, pic.BCF),
		bitEncoding(0xA000, pic.BTFSS),
		bitEncoding(0xB000, pic.BTFSC),
		{Mask: 0xF000, Value: 0xC000, Opcode: pic.MOVFF, Words: 2, Decode: decodeMOVFF},
		{Mask: 0xF800, Value: 0xD000, Opcode: pic.BRA, Words: 1, Decode: decodeRelative11},
		{Mask: 0xF800, Value: 0xD800, Opcode: pic.RCALL, Words: 1, Decode: decodeRelative11},
		branchEncoding(0xE000, pic.BZ),
		branchEncoding(0xE100, pic.BNZ),
		branchEncoding(0xE200, pic.BC),
		branchEncoding(0xE300, pic.BNC),
		branchEncoding(0xE400, pic.BOV),
		branchEncoding(0xE500, pic.BNOV),
		branchEncoding(0xE600, pic.BN),
		branchEncoding(0xE700, pic.BNN),
		{Mask: 0xFE00, Value: 0xEC00, Opcode: pic.CALL, Words: 2, Decode: decodeCall},
		{Mask: 0xFFC0, Value: 0xEE00, Opcode: pic.LFSR, Words: 2, Decode: decodeLFSR},
		{Mask: 0xFF00, Value: 0xEF00, Opcode: pic.GOTO, Words: 2, Decode: decodeGoto},
		{Mask: 0xF000, Value: 0xF000, Opcode: pic.NOP, Words: 1, Decode: pic.NoOperands},
	},
}

// extendedTable adds the extended instruction set.
var extendedTable = traditionalTable.With(
	fixed(0x0014, pic.CALLW),
	pic.Encoding{Mask: 0xFFC0, Value: 0xE8C0, Opcode: pic.ADDULNK, Words: 1, Decode: decodeLiteral6},
	pic.Encoding{Mask: 0xFF00, Value: 0xE800, Opcode: pic.ADDFSR, Words: 1, Decode: decodeFSRLiteral},
	pic.Encoding{Mask: 0xFFC0, Value: 0xE9C0, Opcode: pic.SUBULNK, Words: 1, Decode: decodeLiteral6},
	pic.Encoding{Mask: 0xFF00, Value: 0xE900, Opcode: pic.SUBFSR, Words: 1, Decode: decodeFSRLiteral},
	pic.Encoding{Mask: 0xFF00, Value: 0xEA00, Opcode: pic.PUSHL, Words: 1, Decode: decodeLiteral8},
	pic.Encoding{Mask: 0xFF80, Value: 0xEB00, Opcode: pic.MOVSF, Words: 2, Decode: decodeMOVSF},
	pic.Encoding{Mask: 0xFF80, Value: 0xEB80, Opcode: pic.MOVSS, Words: 2, Decode: decodeMOVSS},
)

// fileOperand returns the operand for an 8 bit file address and access bit.
func fileOperand(d *pic.Disassembler, f uint16, banked bool) (pic.Operand, error) {
	if banked {
		return pic.FileOperand{Offset: f, Access: pic.Banked}, nil
	}
	if d.Architecture().Extended() && f <= indexedLiteralLimit {
		base, err := d.Architecture().Registers().MustByName(fsr2)
		if err != nil {
			return nil, err
		}
		return pic.IndexedOperand{Base: base, Displacement: int32(f)}, nil
	}
	return pic.FileOperand{Offset: f, Access: pic.AccessBank}, nil
}

func decodeFileDA(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	f, err := fileOperand(d, w[0]&0xFF, w[0]&0x100 != 0)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{f, pic.DestOperand{ToFile: w[0]&0x200 != 0}}, nil
}

func decodeFileA(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	f, err := fileOperand(d, w[0]&0xFF, w[0]&0x100 != 0)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{f}, nil
}

func decodeBit(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	f, err := fileOperand(d, w[0]&0xFF, w[0]&0x100 != 0)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{f, pic.BitOperand{Bit: uint8(w[0]>>9) & 7}}, nil
}

func decodeLiteral8(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.ImmediateOperand{Value: int32(w[0] & 0xFF), Width: 8}}, nil
}

func decodeLiteral6(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.ImmediateOperand{Value: int32(w[0] & 0x3F), Width: 6}}, nil
}

func decodeMOVLB(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.ImmediateOperand{Value: int32(w[0] & 0x0F), Width: 4}}, nil
}

func decodeFast(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.FastOperand{Fast: w[0]&1 != 0}}, nil
}

var tableAdjust = [4]pic.Adjust{pic.NoAdjust, pic.AdjustPostInc, pic.AdjustPostDec, pic.AdjustPreInc}

func decodeTable(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.TableOperand{Adjust: tableAdjust[w[0]&3]}}, nil
}

func decodeRelative8(_ *pic.Disassembler, address ir.Address, w []uint16) ([]pic.Operand, error) {
	n := int(int8(w[0] & 0xFF))
	return []pic.Operand{pic.TargetOperand{Address: address.Add(2 + 2*n)}}, nil
}

func decodeRelative11(_ *pic.Disassembler, address ir.Address, w []uint16) ([]pic.Operand, error) {
	n := int(w[0] & 0x7FF)
	if n&0x400 != 0 {
		n -= 0x800
	}
	return []pic.Operand{pic.TargetOperand{Address: address.Add(2 + 2*n)}}, nil
}

func absoluteTarget(d *pic.Disassembler, w []uint16) ir.Address {
	k := uint32(w[0]&0xFF) | uint32(w[1]&0x0FFF)<<8
	return d.Architecture().MakeAddress(ir.NewConstant(k*2, ir.Word32))
}

func decodeCall(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{
		pic.TargetOperand{Address: absoluteTarget(d, w)},
		pic.FastOperand{Fast: w[0]&0x100 != 0},
	}, nil
}

func decodeGoto(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{pic.TargetOperand{Address: absoluteTarget(d, w)}}, nil
}

func fsrOperand(d *pic.Disassembler, n uint16) (pic.Operand, error) {
	if n > 2 {
		return nil, fmt.Errorf("%w: FSR%d", arch.ErrInvalidOperand, n)
	}
	reg, err := d.Architecture().Registers().MustByName(fmt.Sprintf("FSR%d", n))
	if err != nil {
		return nil, err
	}
	return pic.RegisterOperand{Reg: reg}, nil
}

func decodeLFSR(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	fsr, err := fsrOperand(d, (w[0]>>4)&3)
	if err != nil {
		return nil, err
	}
	if w[1]&0x0F00 != 0 {
		return nil, fmt.Errorf("%w: lfsr second word", arch.ErrInvalidOperand)
	}
	k := int32(w[0]&0x0F)<<8 | int32(w[1]&0xFF)
	return []pic.Operand{fsr, pic.ImmediateOperand{Value: k, Width: 12}}, nil
}

func decodeFSRLiteral(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	fsr, err := fsrOperand(d, (w[0]>>6)&3)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{fsr, pic.ImmediateOperand{Value: int32(w[0] & 0x3F), Width: 6}}, nil
}

func fsr2Index(d *pic.Disassembler, offset uint16) (pic.Operand, error) {
	base, err := d.Architecture().Registers().MustByName(fsr2)
	if err != nil {
		return nil, err
	}
	return pic.IndexedOperand{Base: base, Displacement: int32(offset)}, nil
}

func decodeMOVSF(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	src, err := fsr2Index(d, w[0]&0x7F)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{src, pic.FileOperand{Offset: w[1] & 0x0FFF, Access: pic.Absolute}}, nil
}

func decodeMOVSS(d *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	src, err := fsr2Index(d, w[0]&0x7F)
	if err != nil {
		return nil, err
	}
	dst, err := fsr2Index(d, w[1]&0x7F)
	if err != nil {
		return nil, err
	}
	return []pic.Operand{src, dst}, nil
}

func decodeMOVFF(_ *pic.Disassembler, _ ir.Address, w []uint16) ([]pic.Operand, error) {
	return []pic.Operand{
		pic.FileOperand{Offset: w[0] & 0x0FFF, Access: pic.Absolute},
		pic.FileOperand{Offset: w[1] & 0x0FFF, Access: pic.Absolute},
	}, nil
}
