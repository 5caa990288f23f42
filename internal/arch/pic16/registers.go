package pic16

import (
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/ir"
)

// Register names used by the rewriter.
const (
	bsr       = "BSR"
	fsr       = "FSR"
	fsr0      = "FSR0"
	fsr1      = "FSR1"
	intcon    = "INTCON"
	optionReg = "OPTION_REG"
	pclath    = "PCLATH"
	rp        = "RP"
)

// statusRP is the bit offset of the bank select bits RP1:RP0 in STATUS.
const statusRP = 5

func sfr(name string, address uint16) pic.Register {
	return pic.Register{Name: name, Type: ir.Byte, Address: address, Mapped: true}
}

// core returns a register that is visible at the same offset in every bank.
func core(name string, address uint16) pic.Register {
	reg := sfr(name, address)
	reg.Mirrored = true
	return reg
}

func coreChild(name string, address uint16, parent string, offset int) pic.Register {
	reg := core(name, address)
	reg.Parent = parent
	reg.Offset = offset
	reg.Bits = 8
	return reg
}

func coreIndirect(name string, address uint16, pointer string) pic.Register {
	reg := core(name, address)
	reg.Indirect = pic.Indf
	reg.Pointer = pointer
	return reg
}

// basicRegisters returns the register catalogue of the basic mid-range core
// with four banks of 128 bytes selected by STATUS RP1:RP0.
func basicRegisters() []pic.Register {
	latch := core(pclath, 0x0A)
	latch.Bits = 5

	return []pic.Register{
		{Name: pic.WREG, Type: ir.Byte},
		{Name: pic.STKPTR, Type: ir.Byte, Bits: 3},
		{Name: pic.TOS, Type: ir.Word16, Bits: 14},

		coreIndirect("INDF", 0x00, fsr),
		sfr("TMR0", 0x01),
		core("PCL", 0x02),
		core(pic.StatusRegister, 0x03),
		{Name: rp, Type: ir.Byte, Parent: pic.StatusRegister, Offset: statusRP, Bits: 2},
		core(fsr, 0x04),
		sfr("PORTA", 0x05),
		sfr("PORTB", 0x06),
		sfr("PORTC", 0x07),
		sfr("PORTD", 0x08),
		sfr("PORTE", 0x09),
		latch,
		core(intcon, 0x0B),
		sfr("PIR1", 0x0C),
		sfr("PIR2", 0x0D),
		sfr("TMR1L", 0x0E),
		sfr("TMR1H", 0x0F),
		sfr("T1CON", 0x10),
		sfr("TMR2", 0x11),
		sfr("T2CON", 0x12),

		sfr(optionReg, 0x81),
		sfr("TRISA", 0x85),
		sfr("TRISB", 0x86),
		sfr("TRISC", 0x87),
		sfr("TRISD", 0x88),
		sfr("TRISE", 0x89),
		sfr("PIE1", 0x8C),
		sfr("PIE2", 0x8D),
		sfr("PCON", 0x8E),
		sfr("PR2", 0x92),
	}
}

// shadowed are the core registers saved on interrupt entry and restored by RETFIE.
var shadowed = []string{pic.StatusRegister, pic.WREG, bsr, pclath, "FSR0L", "FSR0H", "FSR1L", "FSR1H"}

// enhancedRegisters returns the register catalogue of the enhanced mid-range core.
// Data addresses are linear: bank * 0x80 + offset.
func enhancedRegisters(bankBits int) []pic.Register {
	bank := core(bsr, 0x08)
	bank.Bits = bankBits
	latch := core(pclath, 0x0A)
	latch.Bits = 7

	regs := []pic.Register{
		{Name: fsr0, Type: ir.Word16},
		{Name: fsr1, Type: ir.Word16},
		{Name: pic.TOS, Type: ir.Word16},

		coreIndirect("INDF0", 0x00, fsr0),
		coreIndirect("INDF1", 0x01, fsr1),
		core("PCL", 0x02),
		core(pic.StatusRegister, 0x03),
		coreChild("FSR0L", 0x04, fsr0, 0),
		coreChild("FSR0H", 0x05, fsr0, 8),
		coreChild("FSR1L", 0x06, fsr1, 0),
		coreChild("FSR1H", 0x07, fsr1, 8),
		bank,
		core(pic.WREG, 0x09),
		latch,
		core(intcon, 0x0B),

		sfr("PORTA", 0x00C),
		sfr("PORTB", 0x00D),
		sfr("PORTC", 0x00E),
		sfr("PIR1", 0x011),
		sfr("PIR2", 0x012),
		sfr("TMR0", 0x015),
		sfr("TMR1L", 0x016),
		sfr("TMR1H", 0x017),
		sfr("T1CON", 0x018),
		sfr("TRISA", 0x08C),
		sfr("TRISB", 0x08D),
		sfr("TRISC", 0x08E),
		sfr("PIE1", 0x091),
		sfr("PIE2", 0x092),
		sfr(optionReg, 0x095),
		sfr("PCON", 0x096),
		sfr("WDTCON", 0x097),
		sfr("OSCCON", 0x099),
		sfr("LATA", 0x10C),
		sfr("LATB", 0x10D),
		sfr("LATC", 0x10E),
		sfr("ANSELA", 0x18C),
		sfr("ANSELB", 0x18D),
		sfr("ANSELC", 0x18E),
		sfr("WPUA", 0x20C),
		sfr("WPUB", 0x20D),

		{Name: pic.STKPTR, Type: ir.Byte, Address: 0xFED, Mapped: true, Bits: 5},
		sfr("TOSL", 0xFEE),
		sfr("TOSH", 0xFEF),
	}

	for i, name := range shadowed {
		regs = append(regs, sfr(name+"_SHAD", 0xFE4+uint16(i)))
	}
	return regs
}
