package ir

import "fmt"

// Statement is a single IR statement of a cluster.
type Statement interface {
	fmt.Stringer
}

// Assignment stores the value of Src in Dst.
type Assignment struct {
	Dst Expression // identifier, memory access or sequence
	Src Expression
}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.Dst, a.Src)
}

// Branch transfers control to Target if Cond holds, otherwise execution continues
// after the cluster.
type Branch struct {
	Cond   Expression
	Target Address
}

func (b *Branch) String() string {
	return fmt.Sprintf("if (%s) branch %s", b.Cond, b.Target)
}

// Goto transfers control unconditionally.
type Goto struct {
	Target Expression
}

func (g *Goto) String() string {
	return fmt.Sprintf("goto %s", g.Target)
}

// Call invokes a subroutine, ReturnSize is the size of the pushed return address in bytes.
type Call struct {
	Target     Expression
	ReturnSize int
}

func (c *Call) String() string {
	return fmt.Sprintf("call %s (%d)", c.Target, c.ReturnSize)
}

// Return leaves the current subroutine.
type Return struct {
	ReturnSize int
	ExtraPop   int
}

func (r *Return) String() string {
	return fmt.Sprintf("return (%d,%d)", r.ReturnSize, r.ExtraPop)
}

// SideEffect evaluates an expression only for its effect, usually a pseudo procedure application.
type SideEffect struct {
	Expr Expression
}

func (s *SideEffect) String() string {
	return s.Expr.String()
}

// Nop does nothing.
type Nop struct{}

func (n *Nop) String() string {
	return "nop"
}

// InvalidStatement marks an instruction that could not be decoded.
type InvalidStatement struct{}

func (i *InvalidStatement) String() string {
	return "<invalid>"
}
