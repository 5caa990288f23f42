package ir

// Emitter collects the statements of the cluster that is currently being built.
type Emitter struct {
	statements []Statement
}

// Assign emits dst = src.
func (e *Emitter) Assign(dst, src Expression) {
	e.statements = append(e.statements, &Assignment{Dst: dst, Src: src})
}

// Branch emits a conditional branch.
func (e *Emitter) Branch(cond Expression, target Address) {
	e.statements = append(e.statements, &Branch{Cond: cond, Target: target})
}

// Goto emits an unconditional jump.
func (e *Emitter) Goto(target Expression) {
	e.statements = append(e.statements, &Goto{Target: target})
}

// Call emits a subroutine call.
func (e *Emitter) Call(target Expression, returnSize int) {
	e.statements = append(e.statements, &Call{Target: target, ReturnSize: returnSize})
}

// Return emits a subroutine return.
func (e *Emitter) Return(returnSize, extraPop int) {
	e.statements = append(e.statements, &Return{ReturnSize: returnSize, ExtraPop: extraPop})
}

// SideEffect emits an expression evaluated for its effect.
func (e *Emitter) SideEffect(expr Expression) {
	e.statements = append(e.statements, &SideEffect{Expr: expr})
}

// Nop emits a no operation statement.
func (e *Emitter) Nop() {
	e.statements = append(e.statements, &Nop{})
}

// Invalid emits an invalid instruction marker.
func (e *Emitter) Invalid() {
	e.statements = append(e.statements, &InvalidStatement{})
}

// Statements returns the emitted statements and resets the emitter.
func (e *Emitter) Statements() []Statement {
	stmts := e.statements
	e.statements = nil
	return stmts
}

// Reset discards all emitted statements.
func (e *Emitter) Reset() {
	e.statements = nil
}

// Len returns the number of emitted statements.
func (e *Emitter) Len() int {
	return len(e.statements)
}
