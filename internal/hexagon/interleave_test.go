package hexagon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexagonhvx/peephole/internal/ir"
)

func TestInterleaveEliminator_LetBothBindingsUsedProducesTwoNestedLets(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	x := ir.Variable(i16v, "x")
	body := ir.Add(ir.Variable(i16v, "y"), ir.Variable(i16v, "y.deinterleaved"))
	e := ir.Let("y", nativeInterleave(x), body)

	ie := NewInterleaveEliminator()
	out := ie.Mutate(e)

	require.Equal(t, ir.OpLet, out.Op())
	require.Equal(t, "y.deinterleaved", out.Name())
	require.Equal(t, "x", out.A().Name())

	inner := out.B()
	require.Equal(t, ir.OpLet, inner.Op())
	require.Equal(t, "y", inner.Name())
	require.True(t, isNativeInterleave(inner.A()))
	require.Equal(t, "y.deinterleaved", inner.A().Args()[0].Name())
	require.Equal(t, ir.OpAdd, inner.B().Op())
}

func TestInterleaveEliminator_LetOnlyDeinterleavedUsedDropsOriginalBinding(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	x := ir.Variable(i16v, "x")
	body := ir.Variable(i16v, "y.deinterleaved")
	e := ir.Let("y", nativeInterleave(x), body)

	ie := NewInterleaveEliminator()
	out := ie.Mutate(e)

	require.Equal(t, ir.OpLet, out.Op())
	require.Equal(t, "y.deinterleaved", out.Name())
	require.Equal(t, "x", out.A().Name())
	require.Equal(t, "y.deinterleaved", out.B().Name())
}

func TestInterleaveEliminator_LetOnlyOriginalUsedKeepsInterleavedBinding(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	x := ir.Variable(i16v, "x")
	body := ir.Variable(i16v, "y")
	e := ir.Let("y", nativeInterleave(x), body)

	ie := NewInterleaveEliminator()
	out := ie.Mutate(e)

	require.Equal(t, ir.OpLet, out.Op())
	require.Equal(t, "y", out.Name())
	require.True(t, isNativeInterleave(out.A()))
	require.Equal(t, "x", out.A().Args()[0].Name())
	require.Equal(t, "y", out.B().Name())
}

func TestInterleaveEliminator_LetDeadBindingIsLeftAlone(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	x := ir.Variable(i16v, "x")
	body := ir.Variable(i16v, "z")
	e := ir.Let("y", nativeInterleave(x), body)

	ie := NewInterleaveEliminator()
	out := ie.Mutate(e)

	require.Equal(t, ir.OpLet, out.Op())
	require.Equal(t, "y", out.Name())
	require.Equal(t, "z", out.B().Name())
}

func TestInterleaveEliminator_BitwiseAndGangRegathersUnderOneInterleave(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	x := ir.Variable(i16v, "x")
	y := ir.Variable(i16v, "y")
	e := ir.Call(i16v, "bitwise_and", []*ir.Expr{nativeInterleave(x), nativeInterleave(y)}, ir.PureExtern)

	ie := NewInterleaveEliminator()
	out := ie.Mutate(e)

	require.True(t, isNativeInterleave(out))
	inner := out.Args()[0]
	require.Equal(t, "bitwise_and", inner.Name())
	require.Equal(t, "x", inner.Args()[0].Name())
	require.Equal(t, "y", inner.Args()[1].Name())
}

func TestInterleaveEliminator_PackUsesDeinterleavingAlternativeNotWrappedInterleave(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	i8v := ir.Vector(ir.Int, 8, 64)
	x := ir.Variable(i16v, "x")
	e := ir.Call(i8v, "halide.hexagon.pack.vh", []*ir.Expr{nativeInterleave(x)}, ir.PureExtern)

	ie := NewInterleaveEliminator()
	out := ie.Mutate(e)

	require.Equal(t, ir.OpCall, out.Op())
	require.Equal(t, "halide.hexagon.trunc.vh", out.Name())
	require.Equal(t, "x", out.Args()[0].Name())
	require.False(t, isNativeInterleave(out))
}

func TestInterleaveEliminator_CastOfSameWidthInterleavePushesOutward(t *testing.T) {
	u16v := ir.Vector(ir.UInt, 16, 64)
	i16v := ir.Vector(ir.Int, 16, 64)
	w := ir.Variable(u16v, "w")
	e := ir.Cast(i16v, nativeInterleave(w))

	ie := NewInterleaveEliminator()
	out := ie.Mutate(e)

	require.True(t, isNativeInterleave(out))
	require.Equal(t, ir.OpCast, out.Args()[0].Op())
	require.True(t, out.Args()[0].Type().Equal(i16v))
	require.Equal(t, "w", out.Args()[0].A().Name())
}
