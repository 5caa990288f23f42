package symbols

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/ir"
)

func cluster(address ir.Address, statements ...ir.Statement) *ir.Cluster {
	return &ir.Cluster{Address: address, Length: 2, Class: ir.Linear, Statements: statements}
}

//nolint:funlen // test functions can be long
func TestManager(t *testing.T) {
	t.Run("new manager is empty", func(t *testing.T) {
		mgr := New()

		assert.NotNil(t, mgr)
		assert.Equal(t, 0, mgr.Len())
		assert.Equal(t, 0, len(mgr.Sorted()))
	})

	t.Run("goto and branch targets are jump labels", func(t *testing.T) {
		mgr := New()
		mgr.Add(cluster(0x10, &ir.Goto{Target: ir.Address(0x40)}))
		mgr.Add(cluster(0x12, &ir.Branch{Cond: ir.Cond(&ir.Identifier{Name: "STATUS", Type: ir.Byte}), Target: 0x40}))

		label, ok := mgr.Get(0x40)
		assert.True(t, ok)
		assert.Equal(t, Jump, label.Kind)
		assert.Equal(t, "_label_000040", label.Name())
		assert.Equal(t, []ir.Address{0x10, 0x12}, label.Sources)
	})

	t.Run("call target takes precedence", func(t *testing.T) {
		mgr := New()
		mgr.Add(cluster(0x10, &ir.Goto{Target: ir.Address(0x80)}))
		mgr.Add(cluster(0x20, &ir.Call{Target: ir.Address(0x80), ReturnSize: 0}))
		mgr.Add(cluster(0x30, &ir.Goto{Target: ir.Address(0x80)}))

		label, ok := mgr.Get(0x80)
		assert.True(t, ok)
		assert.Equal(t, Function, label.Kind)
		assert.Equal(t, "_func_000080", label.Name())
		assert.Equal(t, 3, len(label.Sources))
	})

	t.Run("computed targets are ignored", func(t *testing.T) {
		mgr := New()
		mgr.Add(cluster(0x10, &ir.Goto{Target: &ir.Identifier{Name: "PCL", Type: ir.Byte}}))
		mgr.Add(cluster(0x12, &ir.Return{}))

		assert.Equal(t, 0, mgr.Len())
		assert.True(t, mgr.IsDefined(0x10))
		assert.True(t, mgr.IsDefined(0x12))
		assert.False(t, mgr.IsDefined(0x14))
	})

	t.Run("sorted and unresolved", func(t *testing.T) {
		mgr := New()
		mgr.Add(cluster(0x00, &ir.Goto{Target: ir.Address(0x400)}))
		mgr.Add(cluster(0x02, &ir.Call{Target: ir.Address(0x04)}))
		mgr.Add(cluster(0x04, &ir.Goto{Target: ir.Address(0x00)}))

		sorted := mgr.Sorted()
		assert.Equal(t, 3, len(sorted))
		assert.Equal(t, ir.Address(0x00), sorted[0].Address)
		assert.Equal(t, ir.Address(0x04), sorted[1].Address)
		assert.Equal(t, ir.Address(0x400), sorted[2].Address)

		unresolved := mgr.Unresolved()
		assert.Equal(t, 1, len(unresolved))
		assert.Equal(t, ir.Address(0x400), unresolved[0].Address)
	})
}
