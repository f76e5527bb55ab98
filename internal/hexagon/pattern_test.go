package hexagon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexagonhvx/peephole/internal/ir"
)

func identityMutate(e *ir.Expr) *ir.Expr { return e }

func TestApplyPatterns_NoMatchReturnsInputUnchanged(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	table := Table{{Intrinsic: "foo", Pattern: wc(ir.UInt, 8, 0)}}
	x := ir.IntImm(i32, 3)
	out, ok := applyPatterns(x, table, identityMutate)
	require.False(t, ok)
	require.Same(t, x, out)
}

func TestApplyPatterns_FirstMatchingPatternWins(t *testing.T) {
	vub := ir.Vector(ir.UInt, 8, 64)
	a := wc(ir.UInt, 8, 0)
	table := Table{
		{Intrinsic: "first", Pattern: ir.Cast(vub, a)},
		{Intrinsic: "second", Pattern: ir.Cast(vub, a)},
	}
	x := ir.Cast(vub, ir.Variable(ir.Vector(ir.UInt, 8, 64), "v"))
	out, ok := applyPatterns(x, table, identityMutate)
	require.True(t, ok)
	require.Equal(t, "first", out.Name())
}

func TestApplyPatterns_InterleaveResultWrapsCall(t *testing.T) {
	vh := ir.Vector(ir.UInt, 16, 64)
	a := wc(ir.UInt, 16, 0)
	table := Table{{Intrinsic: "widen", Pattern: a, Flags: InterleaveResult}}
	x := ir.Variable(vh, "v")
	out, ok := applyPatterns(x, table, identityMutate)
	require.True(t, ok)
	require.True(t, isNativeInterleave(out))
	require.Equal(t, "widen", out.Args()[0].Name())
}

func TestApplyPatterns_NarrowOpFailsWhenLossy(t *testing.T) {
	a := wc(ir.Int, 32, 0)
	table := Table{{Intrinsic: "narrowed", Pattern: a, Flags: NarrowOp0}}
	// 100000 doesn't fit in an i16, so NarrowOp0 must decline this match.
	x := ir.IntImm(ir.Scalar(ir.Int, 32), 100000)
	out, ok := applyPatterns(x, table, identityMutate)
	require.False(t, ok)
	require.Same(t, x, out)
}

func TestApplyPatterns_NarrowOpSucceedsWhenLossless(t *testing.T) {
	narrow := ir.Scalar(ir.Int, 16)
	wide := ir.Scalar(ir.Int, 32)
	widened := ir.Cast(wide, ir.Variable(narrow, "x"))
	table := Table{{Intrinsic: "narrowed", Pattern: wc(ir.Int, 32, 1), Flags: NarrowOp0}}
	out, ok := applyPatterns(widened, table, identityMutate)
	require.True(t, ok)
	require.Equal(t, narrow, out.Args()[0].Type())
}

func TestApplyPatterns_ExactLog2SubstitutesLogValue(t *testing.T) {
	a := wc(ir.Int, 32, 0)
	k := wc(ir.Int, 32, 0)
	table := Table{{Intrinsic: "shift", Pattern: ir.Div(a, k), Flags: ExactLog2Op1}}
	v32 := ir.Vector(ir.Int, 32, 64)
	x := ir.Div(ir.Variable(v32, "v"), ir.IntImm(v32, 256))
	out, ok := applyPatterns(x, table, identityMutate)
	require.True(t, ok)
	require.Equal(t, int64(8), out.Args()[1].ConstValue())
}

func TestApplyPatterns_ExactLog2FailsOnNonPowerOfTwo(t *testing.T) {
	a := wc(ir.Int, 32, 0)
	k := wc(ir.Int, 32, 0)
	table := Table{{Intrinsic: "shift", Pattern: ir.Div(a, k), Flags: ExactLog2Op1}}
	v32 := ir.Vector(ir.Int, 32, 64)
	x := ir.Div(ir.Variable(v32, "v"), ir.IntImm(v32, 3))
	_, ok := applyPatterns(x, table, identityMutate)
	require.False(t, ok)
}

func TestApplyPatterns_SwapOps01(t *testing.T) {
	a := wc(ir.Int, 32, 0)
	b := wc(ir.Int, 32, 0)
	table := Table{{Intrinsic: "sw", Pattern: ir.Add(a, b), Flags: SwapOps01}}
	v := ir.Vector(ir.Int, 32, 64)
	x := ir.Add(ir.Variable(v, "first"), ir.Variable(v, "second"))
	out, ok := applyPatterns(x, table, identityMutate)
	require.True(t, ok)
	require.Equal(t, "second", out.Args()[0].Name())
	require.Equal(t, "first", out.Args()[1].Name())
}

func TestApplyPatterns_DeinterleaveOpWrapsCapture(t *testing.T) {
	v := ir.Vector(ir.Int, 32, 64)
	table := Table{{Intrinsic: "d", Pattern: wc(ir.Int, 32, 0), Flags: DeinterleaveOp0}}
	x := ir.Variable(v, "x")
	out, ok := applyPatterns(x, table, identityMutate)
	require.True(t, ok)
	require.True(t, isNativeDeinterleave(out.Args()[0]))
}
