package ir

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestPseudoUses(t *testing.T) {
	sleep := &PseudoProcedure{Name: "__sleep", ReturnType: Void}
	swap := &PseudoProcedure{Name: "__swapf", ReturnType: Byte, ArgTypes: []DataType{Byte}}
	w := &Identifier{Name: "WREG", Type: Byte}

	clusters := []*Cluster{
		{
			Address: 0x10,
			Statements: []Statement{
				&SideEffect{Expr: &Application{Proc: sleep}},
			},
		},
		{
			Address: 0x12,
			Statements: []Statement{
				&Assignment{Dst: w, Src: &Application{Proc: swap, Args: []Expression{w}}},
				&Assignment{Dst: w, Src: Add(&Application{Proc: swap, Args: []Expression{w}}, Byte8(1))},
			},
		},
		{
			Address: 0x14,
			Statements: []Statement{
				&SideEffect{Expr: &Application{Proc: sleep}},
			},
		},
	}

	uses := PseudoUses(clusters)
	assert.Equal(t, 2, len(uses))
	assert.Equal(t, []Address{0x10, 0x14}, uses["__sleep"])
	assert.Equal(t, []Address{0x12}, uses["__swapf"])
}

func TestWalkOrder(t *testing.T) {
	w := &Identifier{Name: "WREG", Type: Byte}
	stmt := &Assignment{Dst: Mem(DataSpace, w, Byte), Src: Neg(w)}

	var visited []string
	Walk(stmt, func(e Expression) {
		visited = append(visited, e.String())
	})
	assert.Equal(t, []string{"Data[WREG]", "WREG", "-WREG", "WREG"}, visited)
}
