// Package pic16 implements the PIC16 mid-range processor modes: the basic core
// with STATUS bank bits, the enhanced core and the enhanced core with 64 banks.
package pic16

import (
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

// Mode names.
const (
	BasicName    = "pic16"
	EnhancedName = "pic16-enhanced"
	FullName     = "pic16-full"
)

type variant struct {
	cfg         pic.Config
	description string
	table       pic.Table
	registers   func() []pic.Register
	resolve     pic.FileResolver
	required    []string
	rewrites    []pic.RewriteTable
}

// BasicMode returns the mode of the basic mid-range instruction set.
func BasicMode() arch.Mode {
	return newMode(variant{
		cfg: pic.Config{
			Family:             pic.PIC16,
			Name:               BasicName,
			WordBits:           14,
			DataAddressBits:    9,
			ProgramAddressBits: 14,
			BankBits:           2,
		},
		description: "PIC16 basic mid-range instruction set",
		table:       basicTable,
		registers:   basicRegisters,
		resolve:     resolveBasic,
		required:    []string{pic.WREG, pic.StatusRegister, rp, fsr, pclath, intcon, pic.STKPTR, pic.TOS},
		rewrites:    []pic.RewriteTable{basicRewrites},
	})
}

// EnhancedMode returns the mode of the enhanced mid-range instruction set with 32 banks.
func EnhancedMode() arch.Mode {
	return newEnhancedMode(EnhancedName, "PIC16 enhanced mid-range instruction set", 5, enhancedTable)
}

// FullMode returns the mode of the enhanced mid-range instruction set with 64 banks.
func FullMode() arch.Mode {
	return newEnhancedMode(FullName, "PIC16 enhanced mid-range instruction set with 64 banks", 6, fullTable)
}

func newEnhancedMode(name, description string, bankBits int, table pic.Table) arch.Mode {
	return newMode(variant{
		cfg: pic.Config{
			Family:             pic.PIC16,
			Name:               name,
			WordBits:           14,
			DataAddressBits:    7 + bankBits,
			ProgramAddressBits: 16,
			BankBits:           bankBits,
			Extended:           true,
		},
		description: description,
		table:       table,
		registers:   func() []pic.Register { return enhancedRegisters(bankBits) },
		resolve:     resolveEnhanced,
		required:    []string{pic.WREG, pic.StatusRegister, bsr, fsr0, fsr1, pclath, intcon, pic.STKPTR, pic.TOS},
		rewrites:    []pic.RewriteTable{enhancedRewrites, basicRewrites},
	})
}

func newMode(v variant) arch.Mode {
	makeAddress := arch.ZeroExtendAddress
	return arch.Mode{
		Name:           v.cfg.Name,
		ArchitectureID: pic.PIC16,
		Description:    v.description,

		CreateArchitecture: func() (arch.Architecture, error) {
			p := pic.NewArchitecture(v.cfg)
			p.SetAddressRule(makeAddress)
			return p, nil
		},

		CreateRegisters: func(a arch.Architecture) error {
			p, err := pic.AsArchitecture(a, pic.PIC16)
			if err != nil {
				return err
			}
			return p.Registers().Populate(v.registers())
		},

		CreateDisassembler: func(a arch.Architecture, reader *image.Reader) (arch.Disassembler, error) {
			p, err := pic.AsArchitecture(a, pic.PIC16)
			if err != nil {
				return nil, err
			}
			dis, err := pic.NewDisassembler(p, reader, v.table)
			if err != nil {
				return nil, err
			}
			return dis, nil
		},

		CreateProcessorState: func(a arch.Architecture) (arch.ProcessorState, error) {
			p, err := pic.AsArchitecture(a, pic.PIC16)
			if err != nil {
				return nil, err
			}
			return pic.NewState(p.Registers()), nil
		},

		CreateRewriter: func(a arch.Architecture, dis arch.Disassembler, state arch.ProcessorState,
			binder arch.StorageBinder, host arch.Host) (arch.Rewriter, error) {

			rw, err := pic.NewRewriter(a, dis, state, binder, host, pic.RewriterConfig{
				Family:        pic.PIC16,
				Tables:        v.rewrites,
				ResolveFile:   v.resolve,
				Required:      v.required,
				StackSlotType: ir.Word16,
			})
			if err != nil {
				return nil, err
			}
			return rw, nil
		},

		MakeAddress: makeAddress,
	}
}
