package pic18

import (
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

// Register names used by the rewriter.
const (
	bsr    = "BSR"
	fsr0   = "FSR0"
	fsr1   = "FSR1"
	fsr2   = "FSR2"
	intcon = "INTCON"
	pcl    = "PCL"
	pclat  = "PCLAT"
	prod   = "PROD"
	tablat = "TABLAT"
	tblptr = "TBLPTR"
	tos    = pic.TOS
	tosh   = "TOSH"
	tosl   = "TOSL"
	tosu   = "TOSU"
)

// shadowed registers are saved by fast calls and interrupts and restored by fast returns.
var shadowed = []string{pic.WREG, pic.StatusRegister, bsr}

func sfr(name string, address uint16) pic.Register {
	return pic.Register{Name: name, Type: ir.Byte, Address: address, Mapped: true}
}

func child(name string, address uint16, parent string, offset, bits int) pic.Register {
	return pic.Register{
		Name: name, Type: ir.Byte, Address: address, Mapped: true,
		Parent: parent, Offset: offset, Bits: bits,
	}
}

func indirect(name string, address uint16, mode pic.IndirectMode, pointer string) pic.Register {
	return pic.Register{
		Name: name, Type: ir.Byte, Address: address, Mapped: true,
		Indirect: mode, Pointer: pointer,
	}
}

// registers returns the register catalogue of the PIC18 core and its common peripherals.
func registers() []pic.Register {
	regs := []pic.Register{
		// wide pseudo registers composed of the special function registers
		{Name: tos, Type: ir.Word32, Bits: 21},
		{Name: pclat, Type: ir.Word16, Bits: 13},
		{Name: tblptr, Type: ir.Word32, Bits: 22},
		{Name: prod, Type: ir.Word16},
		{Name: fsr0, Type: ir.Word16},
		{Name: fsr1, Type: ir.Word16},
		{Name: fsr2, Type: ir.Word16},

		child(tosu, 0xFFF, tos, 16, 5),
		child(tosh, 0xFFE, tos, 8, 8),
		child(tosl, 0xFFD, tos, 0, 8),
		sfr(pic.STKPTR, 0xFFC),
		child("PCLATU", 0xFFB, pclat, 8, 5),
		child("PCLATH", 0xFFA, pclat, 0, 8),
		sfr(pcl, 0xFF9),
		child("TBLPTRU", 0xFF8, tblptr, 16, 6),
		child("TBLPTRH", 0xFF7, tblptr, 8, 8),
		child("TBLPTRL", 0xFF6, tblptr, 0, 8),
		sfr(tablat, 0xFF5),
		child("PRODH", 0xFF4, prod, 8, 8),
		child("PRODL", 0xFF3, prod, 0, 8),
		sfr(intcon, 0xFF2),
		sfr("INTCON2", 0xFF1),
		sfr("INTCON3", 0xFF0),

		indirect("INDF0", 0xFEF, pic.Indf, fsr0),
		indirect("POSTINC0", 0xFEE, pic.PostInc, fsr0),
		indirect("POSTDEC0", 0xFED, pic.PostDec, fsr0),
		indirect("PREINC0", 0xFEC, pic.PreInc, fsr0),
		indirect("PLUSW0", 0xFEB, pic.PlusW, fsr0),
		child("FSR0H", 0xFEA, fsr0, 8, 8),
		child("FSR0L", 0xFE9, fsr0, 0, 8),
		sfr(pic.WREG, 0xFE8),
		indirect("INDF1", 0xFE7, pic.Indf, fsr1),
		indirect("POSTINC1", 0xFE6, pic.PostInc, fsr1),
		indirect("POSTDEC1", 0xFE5, pic.PostDec, fsr1),
		indirect("PREINC1", 0xFE4, pic.PreInc, fsr1),
		indirect("PLUSW1", 0xFE3, pic.PlusW, fsr1),
		child("FSR1H", 0xFE2, fsr1, 8, 8),
		child("FSR1L", 0xFE1, fsr1, 0, 8),
		{Name: bsr, Type: ir.Byte, Address: 0xFE0, Mapped: true, Bits: 4},
		indirect("INDF2", 0xFDF, pic.Indf, fsr2),
		indirect("POSTINC2", 0xFDE, pic.PostInc, fsr2),
		indirect("POSTDEC2", 0xFDD, pic.PostDec, fsr2),
		indirect("PREINC2", 0xFDC, pic.PreInc, fsr2),
		indirect("PLUSW2", 0xFDB, pic.PlusW, fsr2),
		child("FSR2H", 0xFDA, fsr2, 8, 8),
		child("FSR2L", 0xFD9, fsr2, 0, 8),
		sfr(pic.StatusRegister, 0xFD8),

		sfr("TMR0H", 0xFD7),
		sfr("TMR0L", 0xFD6),
		sfr("T0CON", 0xFD5),
		sfr("OSCCON", 0xFD3),
		sfr("WDTCON", 0xFD1),
		sfr("RCON", 0xFD0),
		sfr("PORTA", 0xF80),
		sfr("PORTB", 0xF81),
		sfr("PORTC", 0xF82),
		sfr("LATA", 0xF89),
		sfr("LATB", 0xF8A),
		sfr("LATC", 0xF8B),
		sfr("TRISA", 0xF92),
		sfr("TRISB", 0xF93),
		sfr("TRISC", 0xF94),
	}

	for _, name := range shadowed {
		regs = append(regs, pic.Register{Name: name + "_SHAD", Type: ir.Byte})
	}
	return regs
}

// nonWritable are the registers that memory to memory moves can not write.
var nonWritable = []string{pcl, tosu, tosh, tosl}
