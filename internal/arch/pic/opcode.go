package pic

import "fmt"

// Opcode is the instruction tag shared by all PIC instruction set families.
type Opcode int

// Opcodes. Invalid marks undecodable input.
const (
	Invalid Opcode = iota
	ADDFSR
	ADDLW
	ADDULNK
	ADDWF
	ADDWFC
	ANDLW
	ANDWF
	ASRF
	BC
	BCF
	BN
	BNC
	BNN
	BNOV
	BNZ
	BOV
	BRA
	BRW
	BSF
	BTFSC
	BTFSS
	BTG
	BZ
	CALL
	CALLW
	CLRF
	CLRW
	CLRWDT
	COMF
	CPFSEQ
	CPFSGT
	CPFSLT
	DAW
	DCFSNZ
	DECF
	DECFSZ
	GOTO
	INCF
	INCFSZ
	INFSNZ
	IORLW
	IORWF
	LFSR
	LSLF
	LSRF
	MOVF
	MOVFF
	MOVIW
	MOVLB
	MOVLP
	MOVLW
	MOVSF
	MOVSS
	MOVWF
	MOVWI
	MULLW
	MULWF
	NEGF
	NOP
	OPTION
	POP
	PUSH
	PUSHL
	RCALL
	RESET
	RETFIE
	RETLW
	RETURN
	RLCF
	RLF
	RLNCF
	RRCF
	RRF
	RRNCF
	SETF
	SLEEP
	SUBFSR
	SUBFWB
	SUBLW
	SUBULNK
	SUBWF
	SUBWFB
	SWAPF
	TBLRD
	TBLWT
	TRIS
	TSTFSZ
	XORLW
	XORWF

	opcodeCount
)

var opcodeNames = [...]string{
	Invalid: "invalid",
	ADDFSR:  "addfsr",
	ADDLW:   "addlw",
	ADDULNK: "addulnk",
	ADDWF:   "addwf",
	ADDWFC:  "addwfc",
	ANDLW:   "andlw",
	ANDWF:   "andwf",
	ASRF:    "asrf",
	BC:      "bc",
	BCF:     "bcf",
	BN:      "bn",
	BNC:     "bnc",
	BNN:     "bnn",
	BNOV:    "bnov",
	BNZ:     "bnz",
	BOV:     "bov",
	BRA:     "bra",
	BRW:     "brw",
	BSF:     "bsf",
	BTFSC:   "btfsc",
	BTFSS:   "btfss",
	BTG:     "btg",
	BZ:      "bz",
	CALL:    "call",
	CALLW:   "callw",
	CLRF:    "clrf",
	CLRW:    "clrw",
	CLRWDT:  "clrwdt",
	COMF:    "comf",
	CPFSEQ:  "cpfseq",
	CPFSGT:  "cpfsgt",
	CPFSLT:  "cpfslt",
	DAW:     "daw",
	DCFSNZ:  "dcfsnz",
	DECF:    "decf",
	DECFSZ:  "decfsz",
	GOTO:    "goto",
	INCF:    "incf",
	INCFSZ:  "incfsz",
	INFSNZ:  "infsnz",
	IORLW:   "iorlw",
	IORWF:   "iorwf",
	LFSR:    "lfsr",
	LSLF:    "lslf",
	LSRF:    "lsrf",
	MOVF:    "movf",
	MOVFF:   "movff",
	MOVIW:   "moviw",
	MOVLB:   "movlb",
	MOVLP:   "movlp",
	MOVLW:   "movlw",
	MOVSF:   "movsf",
	MOVSS:   "movss",
	MOVWF:   "movwf",
	MOVWI:   "movwi",
	MULLW:   "mullw",
	MULWF:   "mulwf",
	NEGF:    "negf",
	NOP:     "nop",
	OPTION:  "option",
	POP:     "pop",
	PUSH:    "push",
	PUSHL:   "pushl",
	RCALL:   "rcall",
	RESET:   "reset",
	RETFIE:  "retfie",
	RETLW:   "retlw",
	RETURN:  "return",
	RLCF:    "rlcf",
	RLF:     "rlf",
	RLNCF:   "rlncf",
	RRCF:    "rrcf",
	RRF:     "rrf",
	RRNCF:   "rrncf",
	SETF:    "setf",
	SLEEP:   "sleep",
	SUBFSR:  "subfsr",
	SUBFWB:  "subfwb",
	SUBLW:   "sublw",
	SUBULNK: "subulnk",
	SUBWF:   "subwf",
	SUBWFB:  "subwfb",
	SWAPF:   "swapf",
	TBLRD:   "tblrd",
	TBLWT:   "tblwt",
	TRIS:    "tris",
	TSTFSZ:  "tstfsz",
	XORLW:   "xorlw",
	XORWF:   "xorwf",
}

func (o Opcode) String() string {
	if o < 0 || o >= opcodeCount {
		return fmt.Sprintf("opcode(%d)", int(o))
	}
	return opcodeNames[o]
}
