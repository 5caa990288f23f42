package ir

// Walk calls fn for every expression of the statement, parents before their operands.
func Walk(stmt Statement, fn func(Expression)) {
	switch s := stmt.(type) {
	case *Assignment:
		walkExpression(s.Dst, fn)
		walkExpression(s.Src, fn)
	case *Branch:
		walkExpression(s.Cond, fn)
	case *Goto:
		walkExpression(s.Target, fn)
	case *Call:
		walkExpression(s.Target, fn)
	case *SideEffect:
		walkExpression(s.Expr, fn)
	}
}

func walkExpression(e Expression, fn func(Expression)) {
	if e == nil {
		return
	}
	fn(e)

	switch x := e.(type) {
	case *Binary:
		walkExpression(x.Left, fn)
		walkExpression(x.Right, fn)
	case *Unary:
		walkExpression(x.Expr, fn)
	case *MemoryAccess:
		walkExpression(x.EA, fn)
	case *Sequence:
		walkExpression(x.Hi, fn)
		walkExpression(x.Lo, fn)
	case *TestCondition:
		walkExpression(x.Flag, fn)
	case *ConditionOf:
		walkExpression(x.Expr, fn)
	case *Application:
		for _, arg := range x.Args {
			walkExpression(arg, fn)
		}
	}
}

// PseudoUses returns the addresses of the clusters that apply each pseudo procedure.
func PseudoUses(clusters []*Cluster) map[string][]Address {
	uses := map[string][]Address{}
	for _, c := range clusters {
		for _, stmt := range c.Statements {
			Walk(stmt, func(e Expression) {
				app, ok := e.(*Application)
				if !ok {
					return
				}
				name := app.Proc.Name
				if addrs := uses[name]; len(addrs) > 0 && addrs[len(addrs)-1] == c.Address {
					return
				}
				uses[name] = append(uses[name], c.Address)
			})
		}
	}
	return uses
}
