package pic18

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/arch/pic"
	"github.com/retroenv/retrolift/internal/arch/pic/pictest"
	"github.com/retroenv/retrolift/internal/ir"
)

//nolint:funlen // test functions can be long
func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		extended bool
		words    []uint16
		class    ir.Class
		expected []string
	}{
		{
			name:     "movlw",
			words:    []uint16{0x0E12},
			class:    ir.Linear,
			expected: []string{"WREG = 0x12"},
		},
		{
			name:  "addwf to wreg",
			words: []uint16{0x2420},
			class: ir.Linear,
			expected: []string{
				"WREG = Data[0x0020] + WREG",
				"CDCZOVN = cond(WREG)",
			},
		},
		{
			name:  "addwfc to file",
			words: []uint16{0x2280},
			class: ir.Linear,
			expected: []string{
				"PORTA = (PORTA + WREG) + C",
				"CDCZOVN = cond(PORTA)",
			},
		},
		{
			name:     "movwf access sfr",
			words:    []uint16{0x6E80},
			class:    ir.Linear,
			expected: []string{"PORTA = WREG"},
		},
		{
			name:     "movwf banked unknown bsr",
			words:    []uint16{0x6F10},
			class:    ir.Linear,
			expected: []string{"Data[SEQ(BSR, 0x10)] = WREG"},
		},
		{
			name:     "clrf",
			words:    []uint16{0x6A89},
			class:    ir.Linear,
			expected: []string{"LATA = 0x00", "Z = true"},
		},
		{
			name:     "bsf",
			words:    []uint16{0x8689},
			class:    ir.Linear,
			expected: []string{"LATA = LATA | 0x08"},
		},
		{
			name:     "bcf",
			words:    []uint16{0x9689},
			class:    ir.Linear,
			expected: []string{"LATA = LATA & 0xF7"},
		},
		{
			name:     "btg",
			words:    []uint16{0x7089},
			class:    ir.Linear,
			expected: []string{"LATA = LATA ^ 0x01"},
		},
		{
			name:     "btfss",
			words:    []uint16{0xA080},
			class:    ir.ConditionalTransfer,
			expected: []string{"if ((PORTA & 0x01) != 0x00) branch 0x000004"},
		},
		{
			name:     "btfsc skips two word instruction",
			words:    []uint16{0xB080, 0xC080, 0xF081},
			class:    ir.ConditionalTransfer,
			expected: []string{"if ((PORTA & 0x01) == 0x00) branch 0x000006"},
		},
		{
			name:  "decfsz",
			words: []uint16{0x2E20},
			class: ir.ConditionalTransfer,
			expected: []string{
				"Data[0x0020] = Data[0x0020] - 0x01",
				"if (Data[0x0020] == 0x00) branch 0x000004",
			},
		},
		{
			name:     "cpfsgt",
			words:    []uint16{0x6420},
			class:    ir.ConditionalTransfer,
			expected: []string{"if (Data[0x0020] >u WREG) branch 0x000004"},
		},
		{
			name:  "movf postinc",
			words: []uint16{0x50EE},
			class: ir.Linear,
			expected: []string{
				"WREG = Data[FSR0]",
				"ZN = cond(WREG)",
				"FSR0 = FSR0 + 0x01",
			},
		},
		{
			name:  "movwf preinc",
			words: []uint16{0x6EDC},
			class: ir.Linear,
			expected: []string{
				"FSR2 = FSR2 + 0x01",
				"Data[FSR2] = WREG",
			},
		},
		{
			name:     "movwf plusw",
			words:    []uint16{0x6EEB},
			class:    ir.Linear,
			expected: []string{"Data[FSR0 + WREG] = WREG"},
		},
		{
			name:  "tstfsz postdec",
			words: []uint16{0x66ED},
			class: ir.ConditionalTransfer,
			expected: []string{
				"tmp0 = Data[FSR0]",
				"FSR0 = FSR0 - 0x01",
				"if (tmp0 == 0x00) branch 0x000004",
			},
		},
		{
			name:  "movff postinc to postinc",
			words: []uint16{0xCFEE, 0xFFE6},
			class: ir.Linear,
			expected: []string{
				"Data[FSR1] = Data[FSR0]",
				"FSR0 = FSR0 + 0x01",
				"FSR1 = FSR1 + 0x01",
			},
		},
		{
			name:     "movff",
			words:    []uint16{0xC080, 0xF081},
			class:    ir.Linear,
			expected: []string{"PORTB = PORTA"},
		},
		{
			name:     "mulwf",
			words:    []uint16{0x0280},
			class:    ir.Linear,
			expected: []string{"PROD = WREG * PORTA"},
		},
		{
			name:     "rlcf",
			words:    []uint16{0x3620},
			class:    ir.Linear,
			expected: []string{"Data[0x0020] = __rlcf(Data[0x0020], C)", "CZN = cond(Data[0x0020])"},
		},
		{
			name:     "swapf",
			words:    []uint16{0x3820},
			class:    ir.Linear,
			expected: []string{"WREG = __swapf(Data[0x0020])"},
		},
		{
			name:     "subwfb",
			words:    []uint16{0x5A20},
			class:    ir.Linear,
			expected: []string{"Data[0x0020] = (Data[0x0020] - WREG) - !C", "CDCZOVN = cond(Data[0x0020])"},
		},
		{
			name:     "sublw",
			words:    []uint16{0x0810},
			class:    ir.Linear,
			expected: []string{"WREG = 0x10 - WREG", "CDCZOVN = cond(WREG)"},
		},
		{
			name:     "bz",
			words:    []uint16{0xE002},
			class:    ir.ConditionalTransfer,
			expected: []string{"if (Test(EQ,Z)) branch 0x000006"},
		},
		{
			name:     "bnc",
			words:    []uint16{0xE3FE},
			class:    ir.ConditionalTransfer,
			expected: []string{"if (Test(UGE,C)) branch 0x1FFFFE"},
		},
		{
			name:     "bra",
			words:    []uint16{0xD7FF},
			class:    ir.Transfer,
			expected: []string{"goto 0x000000"},
		},
		{
			name:  "call fast",
			words: []uint16{0xED80, 0xF000},
			class: ir.Transfer | ir.CallClass,
			expected: []string{
				"WREG_SHAD = WREG",
				"STATUS_SHAD = STATUS",
				"BSR_SHAD = BSR",
				"STKPTR = STKPTR + 0x01",
				"Stack[STKPTR] = 0x000004",
				"call 0x000100 (0)",
				"TOS = 0x000004",
			},
		},
		{
			name:  "rcall",
			words: []uint16{0xD802},
			class: ir.Transfer | ir.CallClass,
			expected: []string{
				"STKPTR = STKPTR + 0x01",
				"Stack[STKPTR] = 0x000002",
				"call 0x000006 (0)",
				"TOS = 0x000002",
			},
		},
		{
			name:  "retlw",
			words: []uint16{0x0C05},
			class: ir.Transfer | ir.ReturnClass,
			expected: []string{
				"WREG = 0x05",
				"STKPTR = STKPTR - 0x01",
				"TOS = Stack[STKPTR]",
				"return (0,0)",
			},
		},
		{
			name:  "retfie fast",
			words: []uint16{0x0011},
			class: ir.Transfer | ir.ReturnClass,
			expected: []string{
				"WREG = WREG_SHAD",
				"STATUS = STATUS_SHAD",
				"BSR = BSR_SHAD",
				"INTCON = INTCON | 0x80",
				"STKPTR = STKPTR - 0x01",
				"TOS = Stack[STKPTR]",
				"return (0,0)",
			},
		},
		{
			name:  "push",
			words: []uint16{0x0005},
			class: ir.Linear,
			expected: []string{
				"STKPTR = STKPTR + 0x01",
				"Stack[STKPTR] = 0x000002",
				"TOS = 0x000002",
			},
		},
		{
			name:  "pop",
			words: []uint16{0x0006},
			class: ir.Linear,
			expected: []string{
				"STKPTR = STKPTR - 0x01",
				"TOS = Stack[STKPTR]",
			},
		},
		{
			name:     "reset",
			words:    []uint16{0x00FF},
			class:    ir.Transfer,
			expected: []string{"__reset()", "goto 0x000000"},
		},
		{
			name:     "sleep",
			words:    []uint16{0x0003},
			class:    ir.Linear,
			expected: []string{"__sleep()"},
		},
		{
			name:     "daw",
			words:    []uint16{0x0007},
			class:    ir.Linear,
			expected: []string{"WREG = __daw(WREG)", "C = cond(WREG)"},
		},
		{
			name:     "nop",
			words:    []uint16{0x0000},
			class:    ir.Linear,
			expected: []string{"nop"},
		},
		{
			name:     "lfsr",
			words:    []uint16{0xEE21, 0xF000},
			class:    ir.Linear,
			expected: []string{"FSR2 = 0x0100"},
		},
		{
			name:  "tblrd post increment",
			words: []uint16{0x0009},
			class: ir.Linear,
			expected: []string{
				"TABLAT = Prog[TBLPTR]",
				"TBLPTR = TBLPTR + 0x01",
			},
		},
		{
			name:  "tblwt pre increment",
			words: []uint16{0x000F},
			class: ir.Linear,
			expected: []string{
				"TBLPTR = TBLPTR + 0x01",
				"Prog[TBLPTR] = TABLAT",
			},
		},
		{
			name:     "addfsr",
			extended: true,
			words:    []uint16{0xE805},
			class:    ir.Linear,
			expected: []string{"FSR0 = FSR0 + 0x05"},
		},
		{
			name:     "subfsr",
			extended: true,
			words:    []uint16{0xE982},
			class:    ir.Linear,
			expected: []string{"FSR2 = FSR2 - 0x02"},
		},
		{
			name:     "subulnk",
			extended: true,
			words:    []uint16{0xE9C4},
			class:    ir.Transfer | ir.ReturnClass,
			expected: []string{
				"FSR2 = FSR2 - 0x04",
				"STKPTR = STKPTR - 0x01",
				"TOS = Stack[STKPTR]",
				"return (0,0)",
			},
		},
		{
			name:     "pushl",
			extended: true,
			words:    []uint16{0xEA7F},
			class:    ir.Linear,
			expected: []string{"Data[FSR2] = 0x7F", "FSR2 = FSR2 + 0x01"},
		},
		{
			name:     "movsf",
			extended: true,
			words:    []uint16{0xEB05, 0xF081},
			class:    ir.Linear,
			expected: []string{"PORTB = Data[FSR2 + 0x05]"},
		},
		{
			name:     "movss",
			extended: true,
			words:    []uint16{0xEB81, 0xF002},
			class:    ir.Linear,
			expected: []string{"Data[FSR2 + 0x02] = Data[FSR2 + 0x01]"},
		},
		{
			name:     "indexed literal offset",
			extended: true,
			words:    []uint16{0x2605},
			class:    ir.Linear,
			expected: []string{"Data[FSR2 + 0x05] = Data[FSR2 + 0x05] + WREG", "CDCZOVN = cond(Data[FSR2 + 0x05])"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := TraditionalMode()
			if tt.extended {
				mode = ExtendedMode()
			}
			s := pictest.NewSession(t, mode, tt.words...)

			cluster := s.Lift(t)
			assert.Equal(t, tt.class, cluster.Class)
			assert.Equal(t, tt.expected, pictest.Statements(cluster))
			assert.NoError(t, cluster.Validate())
		})
	}
}

func TestRewriteAddFSRLeavesRegisterSymbolic(t *testing.T) {
	s := pictest.NewSession(t, ExtendedMode(), 0xE805)
	s.State.WriteValue(fsr0, 0x1000)

	cluster := s.Lift(t)
	assert.Equal(t, ir.Linear, cluster.Class)
	assert.Equal(t, []string{"FSR0 = FSR0 + 0x05"}, pictest.Statements(cluster))

	_, known := s.State.Read(fsr0)
	assert.False(t, known)
	_, known = s.State.Read("FSR0L")
	assert.False(t, known)
}

func TestRewriteCallW(t *testing.T) {
	s := pictest.NewSession(t, ExtendedMode(), 0x0014)

	cluster := s.Lift(t)
	assert.True(t, cluster.Class.Has(ir.CallClass))
	assert.True(t, cluster.Class.Has(ir.Transfer))

	var call *ir.Call
	callIndex := -1
	for i, stmt := range cluster.Statements {
		if c, ok := stmt.(*ir.Call); ok {
			call = c
			callIndex = i
		}
	}
	assert.NotNil(t, call)

	app, ok := call.Target.(*ir.Application)
	assert.True(t, ok)
	assert.Equal(t, "__callw", app.Proc.Name)
	assert.Equal(t, 2, len(app.Args))
	assert.Equal(t, "WREG", app.Args[0].String())
	assert.Equal(t, "PCLAT", app.Args[1].String())

	assert.Equal(t, len(cluster.Statements)-1, callIndex+1)
	tos, ok := cluster.Statements[callIndex+1].(*ir.Assignment)
	assert.True(t, ok)
	assert.Equal(t, "TOS = 0x000002", tos.String())

	second := pictest.NewSession(t, ExtendedMode(), 0x0014).Lift(t)
	assert.Equal(t, cluster.String(), second.String())
}

func TestRewriteStackFrameReturnRefreshesTOS(t *testing.T) {
	s := pictest.NewSession(t, ExtendedMode(), 0xE8C3)
	s.State.WriteValue(tos, 0x1234)

	cluster := s.Lift(t)
	assert.True(t, cluster.Class.Has(ir.Transfer|ir.ReturnClass))
	assert.Equal(t, []string{
		"FSR2 = FSR2 + 0x03",
		"STKPTR = STKPTR - 0x01",
		"TOS = Stack[STKPTR]",
		"return (0,0)",
	}, pictest.Statements(cluster))

	_, known := s.State.Read(tos)
	assert.False(t, known)
}

func TestRewriteBankTracking(t *testing.T) {
	s := pictest.NewSession(t, TraditionalMode(), 0x0102, 0x6F10)

	s.Lift(t)
	bank, known := s.State.Read(bsr)
	assert.True(t, known)
	assert.Equal(t, uint32(2), bank)

	cluster := s.Lift(t)
	assert.Equal(t, []string{"Data[0x0210] = WREG"}, pictest.Statements(cluster))
}

func TestRewriteFlagState(t *testing.T) {
	s := pictest.NewSession(t, TraditionalMode(), 0x6A89, 0x0F01)

	s.Lift(t)
	zero, known := s.State.ReadFlag(pic.FlagZ)
	assert.True(t, known)
	assert.True(t, zero)

	s.Lift(t)
	_, known = s.State.ReadFlag(pic.FlagZ)
	assert.False(t, known)
}

func TestRewriteErrors(t *testing.T) {
	s := pictest.NewSession(t, TraditionalMode(), 0xC080, 0xFFF9)

	inst := s.Next(t)
	_, err := s.Rewriter.Rewrite(inst)
	assert.True(t, errors.Is(err, arch.ErrInvalidOperand))
	assert.ErrorContains(t, err, "PCL")

	_, err = s.Rewriter.Rewrite(&pic.Instruction{Address: 4, Length: 2, Opcode: pic.MOVLW})
	assert.True(t, errors.Is(err, arch.ErrInvalidOperand))

	_, err = s.Rewriter.Rewrite(&pic.Instruction{Address: 4, Length: 2, Opcode: pic.MOVIW})
	assert.True(t, errors.Is(err, arch.ErrNotImplemented))

	_, err = s.Rewriter.Rewrite(nil)
	assert.True(t, errors.Is(err, arch.ErrWrongArchitecture))
}

func TestRewriteInvalid(t *testing.T) {
	s := pictest.NewSession(t, TraditionalMode(), 0xE805)

	cluster := s.Lift(t)
	assert.Equal(t, ir.InvalidClass, cluster.Class)
	assert.Equal(t, 2, cluster.Length)
	assert.Equal(t, []string{"<invalid>"}, pictest.Statements(cluster))
}

func TestRewriteCoverage(t *testing.T) {
	for _, mode := range []arch.Mode{TraditionalMode(), ExtendedMode()} {
		s := pictest.NewSession(t, mode)
		for _, op := range s.Dis.Table().Opcodes() {
			assert.True(t, s.Rewriter.Supports(op), op.String())
		}
	}
}

func TestRewriteIdempotent(t *testing.T) {
	words := []uint16{0x0E12, 0x6F10, 0x0102, 0x6F10, 0xED80, 0xF000, 0x50EE, 0xE8C3, 0x0014}
	lift := func() []string {
		s := pictest.NewSession(t, ExtendedMode(), words...)
		var out []string
		for inst, err := range s.Dis.Instructions() {
			assert.NoError(t, err)
			cluster, err := s.Rewriter.Rewrite(inst)
			assert.NoError(t, err)
			out = append(out, cluster.String())
		}
		return out
	}

	first := lift()
	assert.Equal(t, 8, len(first))
	assert.Equal(t, first, lift())
}

func TestClassificationMatchesStatements(t *testing.T) {
	words := []uint16{0x0E12, 0xE002, 0xD7FF, 0xD802, 0x0012, 0x0005, 0x0006, 0x00FF, 0x0014, 0xE8C3}
	s := pictest.NewSession(t, ExtendedMode(), words...)

	for inst, err := range s.Dis.Instructions() {
		assert.NoError(t, err)
		cluster, err := s.Rewriter.Rewrite(inst)
		assert.NoError(t, err)

		transfers := 0
		for _, stmt := range cluster.Statements {
			switch stmt.(type) {
			case *ir.Branch, *ir.Goto, *ir.Call, *ir.Return:
				transfers++
			}
		}
		if cluster.Class.Has(ir.Transfer) || cluster.Class.Has(ir.CallClass) {
			assert.True(t, transfers > 0, inst.String())
		}
		if cluster.Class == ir.Linear {
			assert.Equal(t, 0, transfers, inst.String())
		}
	}
}
