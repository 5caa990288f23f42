package ir

import (
	"fmt"
	"strings"
)

// Expression is a side effect free IR value.
type Expression interface {
	fmt.Stringer
	// DataType returns the type of the value the expression evaluates to.
	DataType() DataType
}

// Constant is a literal value of a given type.
type Constant struct {
	Value uint32
	Type  DataType
}

// NewConstant returns a constant with the value truncated to the width of the type.
func NewConstant(value uint32, typ DataType) Constant {
	return Constant{Value: value & typ.Mask(), Type: typ}
}

// Byte8 returns a byte constant.
func Byte8(value uint8) Constant {
	return NewConstant(uint32(value), Byte)
}

// Word returns a 16 bit constant.
func Word(value uint16) Constant {
	return NewConstant(uint32(value), Word16)
}

// Boolean constants.
var (
	True  = Constant{Value: 1, Type: Bool}
	False = Constant{Value: 0, Type: Bool}
)

// DataType returns the type of the constant.
func (c Constant) DataType() DataType {
	return c.Type
}

func (c Constant) String() string {
	switch c.Type {
	case Bool:
		if c.Value != 0 {
			return "true"
		}
		return "false"
	case Byte:
		return fmt.Sprintf("0x%02X", c.Value)
	case Word16:
		return fmt.Sprintf("0x%04X", c.Value)
	case Word32, Ptr32:
		return fmt.Sprintf("0x%08X", c.Value)
	default:
		return fmt.Sprintf("%d", c.Value)
	}
}

// Identifier names a storage location, usually a register or a flag group.
// Identifiers are handed out by a Binder and compared by pointer.
type Identifier struct {
	Name string
	Type DataType
}

// DataType returns the type of the storage.
func (i *Identifier) DataType() DataType {
	return i.Type
}

func (i *Identifier) String() string {
	return i.Name
}

// MemorySpace identifies an address space of the target.
type MemorySpace string

// Memory spaces used by the rewriters.
const (
	DataSpace    MemorySpace = "Data"
	ProgramSpace MemorySpace = "Prog"
	StackSpace   MemorySpace = "Stack"
)

// MemoryAccess reads or writes a memory location of a space.
type MemoryAccess struct {
	Space MemorySpace
	EA    Expression // effective address
	Type  DataType
}

// Mem returns a memory access expression.
func Mem(space MemorySpace, ea Expression, typ DataType) *MemoryAccess {
	return &MemoryAccess{Space: space, EA: ea, Type: typ}
}

// DataType returns the type of the accessed value.
func (m *MemoryAccess) DataType() DataType {
	return m.Type
}

func (m *MemoryAccess) String() string {
	return fmt.Sprintf("%s[%s]", m.Space, m.EA)
}

// Sequence concatenates two values, for example a bank register with an offset.
type Sequence struct {
	Hi, Lo Expression
	Type   DataType
}

// Seq returns a sequence expression.
func Seq(hi, lo Expression, typ DataType) *Sequence {
	return &Sequence{Hi: hi, Lo: lo, Type: typ}
}

// DataType returns the type of the combined value.
func (s *Sequence) DataType() DataType {
	return s.Type
}

func (s *Sequence) String() string {
	return fmt.Sprintf("SEQ(%s, %s)", s.Hi, s.Lo)
}

// ConditionCode selects the flag predicate a test evaluates.
type ConditionCode int

// Condition codes.
const (
	EQ  ConditionCode = iota // zero set
	NE                       // zero clear
	ULT                      // carry set
	UGE                      // carry clear
	LT                       // negative set
	GE                       // negative clear
	OV                       // overflow set
	NO                       // overflow clear
)

var conditionNames = [...]string{
	EQ:  "EQ",
	NE:  "NE",
	ULT: "ULT",
	UGE: "UGE",
	LT:  "LT",
	GE:  "GE",
	OV:  "OV",
	NO:  "NO",
}

func (c ConditionCode) String() string {
	if c < 0 || int(c) >= len(conditionNames) {
		return fmt.Sprintf("cc(%d)", int(c))
	}
	return conditionNames[c]
}

// TestCondition evaluates a condition code against a flag group.
type TestCondition struct {
	Code ConditionCode
	Flag Expression
}

// Test returns a flag test expression.
func Test(code ConditionCode, flag Expression) *TestCondition {
	return &TestCondition{Code: code, Flag: flag}
}

// DataType returns the boolean type.
func (t *TestCondition) DataType() DataType {
	return Bool
}

func (t *TestCondition) String() string {
	return fmt.Sprintf("Test(%s,%s)", t.Code, t.Flag)
}

// ConditionOf stands for the flag bits computed from a result value.
type ConditionOf struct {
	Expr Expression
}

// Cond returns the condition of an expression.
func Cond(e Expression) *ConditionOf {
	return &ConditionOf{Expr: e}
}

// DataType returns the byte type of a flag group.
func (c *ConditionOf) DataType() DataType {
	return Byte
}

func (c *ConditionOf) String() string {
	return fmt.Sprintf("cond(%s)", c.Expr)
}

// PseudoProcedure is a named operation without a native IR equivalent.
type PseudoProcedure struct {
	Name       string
	ReturnType DataType
	ArgTypes   []DataType
}

func (p *PseudoProcedure) String() string {
	types := make([]string, len(p.ArgTypes))
	for i, t := range p.ArgTypes {
		types[i] = t.String()
	}
	return fmt.Sprintf("%s %s(%s)", p.ReturnType, p.Name, strings.Join(types, ", "))
}

// Application applies a pseudo procedure to arguments.
type Application struct {
	Proc *PseudoProcedure
	Args []Expression
}

// DataType returns the return type of the applied procedure.
func (a *Application) DataType() DataType {
	return a.Proc.ReturnType
}

func (a *Application) String() string {
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.Proc.Name, strings.Join(args, ", "))
}
