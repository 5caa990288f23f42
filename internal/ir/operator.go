package ir

import "fmt"

// Operator is a binary operator.
type Operator int

// Binary operators.
const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr // logical
	OpSar // arithmetic
	OpEq
	OpNe
	OpUlt
	OpUgt
)

var operatorSymbols = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpAnd: "&",
	OpOr:  "|",
	OpXor: "^",
	OpShl: "<<",
	OpShr: ">>u",
	OpSar: ">>",
	OpEq:  "==",
	OpNe:  "!=",
	OpUlt: "<u",
	OpUgt: ">u",
}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorSymbols) {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return operatorSymbols[o]
}

// Binary applies an operator to two operands.
type Binary struct {
	Op          Operator
	Left, Right Expression
	Type        DataType
}

// DataType returns the result type.
func (b *Binary) DataType() DataType {
	return b.Type
}

func (b *Binary) String() string {
	return fmt.Sprintf("%s %s %s", operand(b.Left), b.Op, operand(b.Right))
}

// operand wraps nested operator expressions in parentheses.
func operand(e Expression) string {
	switch e.(type) {
	case *Binary:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}

func binary(op Operator, left, right Expression, typ DataType) *Binary {
	return &Binary{Op: op, Left: left, Right: right, Type: typ}
}

// Add returns left + right typed like left.
func Add(left, right Expression) *Binary { return binary(OpAdd, left, right, left.DataType()) }

// Sub returns left - right typed like left.
func Sub(left, right Expression) *Binary { return binary(OpSub, left, right, left.DataType()) }

// Mul returns the product of the operands with the given result type.
func Mul(left, right Expression, typ DataType) *Binary { return binary(OpMul, left, right, typ) }

// And returns left & right typed like left.
func And(left, right Expression) *Binary { return binary(OpAnd, left, right, left.DataType()) }

// Or returns left | right typed like left.
func Or(left, right Expression) *Binary { return binary(OpOr, left, right, left.DataType()) }

// Xor returns left ^ right typed like left.
func Xor(left, right Expression) *Binary { return binary(OpXor, left, right, left.DataType()) }

// Shl returns left << right typed like left.
func Shl(left, right Expression) *Binary { return binary(OpShl, left, right, left.DataType()) }

// Shr returns the logical right shift of left typed like left.
func Shr(left, right Expression) *Binary { return binary(OpShr, left, right, left.DataType()) }

// Sar returns the arithmetic right shift of left typed like left.
func Sar(left, right Expression) *Binary { return binary(OpSar, left, right, left.DataType()) }

// Eq returns the boolean left == right.
func Eq(left, right Expression) *Binary { return binary(OpEq, left, right, Bool) }

// Ne returns the boolean left != right.
func Ne(left, right Expression) *Binary { return binary(OpNe, left, right, Bool) }

// Ult returns the boolean unsigned left < right.
func Ult(left, right Expression) *Binary { return binary(OpUlt, left, right, Bool) }

// Ugt returns the boolean unsigned left > right.
func Ugt(left, right Expression) *Binary { return binary(OpUgt, left, right, Bool) }

// UnaryOperator is an operator taking a single operand.
type UnaryOperator int

// Unary operators.
const (
	OpNeg  UnaryOperator = iota // two's complement
	OpComp                      // one's complement
	OpNot                       // boolean negation
)

var unarySymbols = [...]string{
	OpNeg:  "-",
	OpComp: "~",
	OpNot:  "!",
}

func (o UnaryOperator) String() string {
	if o < 0 || int(o) >= len(unarySymbols) {
		return fmt.Sprintf("unop(%d)", int(o))
	}
	return unarySymbols[o]
}

// Unary applies an operator to one operand.
type Unary struct {
	Op   UnaryOperator
	Expr Expression
}

// DataType returns the type of the operand, bool for negations.
func (u *Unary) DataType() DataType {
	if u.Op == OpNot {
		return Bool
	}
	return u.Expr.DataType()
}

func (u *Unary) String() string {
	return u.Op.String() + operand(u.Expr)
}

// Neg returns the two's complement of e.
func Neg(e Expression) *Unary { return &Unary{Op: OpNeg, Expr: e} }

// Comp returns the one's complement of e.
func Comp(e Expression) *Unary { return &Unary{Op: OpComp, Expr: e} }

// Not returns the boolean negation of e.
func Not(e Expression) *Unary { return &Unary{Op: OpNot, Expr: e} }
