// Package pic18 implements the PIC18 processor modes: the traditional
// instruction set and the extended instruction set with indexed literal
// offset addressing.
package pic18

import (
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

// Mode names.
const (
	TraditionalName = "pic18"
	ExtendedName    = "pic18-extended"
)

var requiredRegisters = []string{
	pic.WREG, pic.StatusRegister, bsr, pic.STKPTR, tos, fsr2, pclat,
}

// TraditionalMode returns the mode of the PIC18 base instruction set.
func TraditionalMode() arch.Mode {
	return newMode(pic.Config{
		Family:             pic.PIC18,
		Name:               TraditionalName,
		WordBits:           16,
		DataAddressBits:    12,
		ProgramAddressBits: 21,
		BankBits:           4,
	}, "PIC18 traditional instruction set", traditionalTable, traditionalRewrites)
}

// ExtendedMode returns the mode of the PIC18 extended instruction set.
func ExtendedMode() arch.Mode {
	return newMode(pic.Config{
		Family:             pic.PIC18,
		Name:               ExtendedName,
		WordBits:           16,
		DataAddressBits:    12,
		ProgramAddressBits: 21,
		BankBits:           4,
		Extended:           true,
	}, "PIC18 extended instruction set", extendedTable, extendedRewrites, traditionalRewrites)
}

func newMode(cfg pic.Config, description string, table pic.Table, rewrites ...pic.RewriteTable) arch.Mode {
	makeAddress := arch.ZeroExtendAddress
	return arch.Mode{
		Name:           cfg.Name,
		ArchitectureID: pic.PIC18,
		Description:    description,

		CreateArchitecture: func() (arch.Architecture, error) {
			p := pic.NewArchitecture(cfg)
			p.SetAddressRule(makeAddress)
			return p, nil
		},

		CreateRegisters: func(a arch.Architecture) error {
			p, err := pic.AsArchitecture(a, pic.PIC18)
			if err != nil {
				return err
			}
			return p.Registers().Populate(registers())
		},

		CreateDisassembler: func(a arch.Architecture, reader *image.Reader) (arch.Disassembler, error) {
			p, err := pic.AsArchitecture(a, pic.PIC18)
			if err != nil {
				return nil, err
			}
			dis, err := pic.NewDisassembler(p, reader, table)
			if err != nil {
				return nil, err
			}
			return dis, nil
		},

		CreateProcessorState: func(a arch.Architecture) (arch.ProcessorState, error) {
			p, err := pic.AsArchitecture(a, pic.PIC18)
			if err != nil {
				return nil, err
			}
			return pic.NewState(p.Registers()), nil
		},

		CreateRewriter: func(a arch.Architecture, dis arch.Disassembler, state arch.ProcessorState,
			binder arch.StorageBinder, host arch.Host) (arch.Rewriter, error) {

			rw, err := pic.NewRewriter(a, dis, state, binder, host, pic.RewriterConfig{
				Family:        pic.PIC18,
				Tables:        rewrites,
				ResolveFile:   resolveFile,
				Required:      requiredRegisters,
				StackSlotType: ir.Ptr32,
			})
			if err != nil {
				return nil, err
			}
			return rw, nil
		},

		MakeAddress: makeAddress,
	}
}
