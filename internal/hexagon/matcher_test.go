package hexagon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexagonhvx/peephole/internal/ir"
)

func TestPatternMatcher_AveragingCast(t *testing.T) {
	u8v := ir.Vector(ir.UInt, 8, 64)
	u16v := ir.Vector(ir.UInt, 16, 64)
	a := ir.Variable(u8v, "a")
	b := ir.Variable(u8v, "b")
	sum := ir.Add(ir.Cast(u16v, a), ir.Cast(u16v, b))
	two := ir.UIntImm(u16v, 2)
	e := ir.Cast(u8v, ir.Div(sum, two))

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.Equal(t, ir.OpCall, out.Op())
	require.Equal(t, "halide.hexagon.avg.vub.vub", out.Name())
	require.Len(t, out.Args(), 2)
	require.Equal(t, "a", out.Args()[0].Name())
	require.Equal(t, "b", out.Args()[1].Name())
}

func TestPatternMatcher_SaturatingAddCast(t *testing.T) {
	i8v := ir.Vector(ir.Int, 8, 64)
	i16v := ir.Vector(ir.Int, 16, 64)
	a := ir.Variable(i8v, "a")
	b := ir.Variable(i8v, "b")
	sum := ir.Add(ir.Cast(i16v, a), ir.Cast(i16v, b))
	wideMax := ir.Cast(i16v, i8v.Max())
	wideMin := ir.Cast(i16v, i8v.Min())
	clamped := ir.Max(ir.Min(sum, wideMax), wideMin)
	e := ir.Cast(i8v, clamped)

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.Equal(t, ir.OpCall, out.Op())
	require.Equal(t, "halide.hexagon.satb_add.vb.vb", out.Name())
}

func TestPatternMatcher_WideningMultiplyInterleavesResult(t *testing.T) {
	u8v := ir.Vector(ir.UInt, 8, 64)
	u16v := ir.Vector(ir.UInt, 16, 64)
	a := ir.Variable(u8v, "a")
	b := ir.Variable(u8v, "b")
	e := ir.Mul(ir.Cast(u16v, a), ir.Cast(u16v, b))

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.True(t, isNativeInterleave(out))
	inner := out.Args()[0]
	require.Equal(t, "halide.hexagon.mpy.vub.vub", inner.Name())
	require.Equal(t, "a", inner.Args()[0].Name())
	require.Equal(t, "b", inner.Args()[1].Name())
}

func TestPatternMatcher_BroadcastMultiplyEmitsScalarBroadcastOperand(t *testing.T) {
	u8v := ir.Vector(ir.UInt, 8, 64)
	u16v := ir.Vector(ir.UInt, 16, 64)
	u8s := ir.Scalar(ir.UInt, 8)
	u16s := ir.Scalar(ir.UInt, 16)
	a := ir.Variable(u8v, "a")
	k := ir.Variable(u8s, "k")
	e := ir.Mul(ir.Cast(u16v, a), ir.Broadcast(ir.Cast(u16s, k), 64))

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.True(t, isNativeInterleave(out))
	inner := out.Args()[0]
	require.Equal(t, "halide.hexagon.mpy.vub.ub", inner.Name())
	require.Equal(t, "a", inner.Args()[0].Name())

	scalarArg := inner.Args()[1]
	require.Equal(t, ir.OpBroadcast, scalarArg.Op())
	require.Equal(t, uint16(1), scalarArg.Lanes())
	require.Equal(t, "k", scalarArg.A().Name())
	require.True(t, scalarArg.A().Type().Equal(u8s))
}

func TestPatternMatcher_MaxClzIdiomBecomesCLS(t *testing.T) {
	xt := ir.Vector(ir.Int, 32, 64)
	x := ir.Variable(xt, "x")
	clzX := ir.Call(xt, "clz", []*ir.Expr{x}, ir.PureExtern)
	clzNotX := ir.Call(xt, "clz", []*ir.Expr{ir.Not(x)}, ir.PureExtern)
	e := ir.Max(clzX, clzNotX)

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.Equal(t, ir.OpAdd, out.Op())
	require.Equal(t, ir.OpCall, out.A().Op())
	require.Equal(t, "halide.hexagon.cls.vw", out.A().Name())
	require.Equal(t, int64(1), out.B().ConstValue())
}

func TestPatternMatcher_MaxClzIdiomRejectsDifferentOperands(t *testing.T) {
	xt := ir.Vector(ir.Int, 32, 64)
	x := ir.Variable(xt, "x")
	y := ir.Variable(xt, "y")
	clzX := ir.Call(xt, "clz", []*ir.Expr{x}, ir.PureExtern)
	clzNotY := ir.Call(xt, "clz", []*ir.Expr{ir.Not(y)}, ir.PureExtern)
	e := ir.Max(clzX, clzNotY)

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.Equal(t, ir.OpMax, out.Op())
}

func TestPatternMatcher_SubRewritesThroughNegatedMulToGenericMAC(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	acc := ir.Variable(i16v, "acc")
	bv := ir.Variable(i16v, "b")
	three := ir.IntImm(i16v, 3)
	e := ir.Sub(acc, ir.Mul(bv, three))

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.Equal(t, ir.OpCall, out.Op())
	require.Equal(t, "halide.hexagon.add_mul.vh.vh.vh", out.Name())
	require.Equal(t, "acc", out.Args()[0].Name())
	require.Equal(t, "b", out.Args()[1].Name())
	require.Equal(t, int64(-3), out.Args()[2].ConstValue())
}

func TestPatternMatcher_SubWithoutNegatableOperandIsLeftAlone(t *testing.T) {
	i16v := ir.Vector(ir.Int, 16, 64)
	a := ir.Variable(i16v, "a")
	b := ir.Variable(i16v, "b")
	e := ir.Sub(a, b)

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.Equal(t, ir.OpSub, out.Op())
}

func TestCollapseDoubleCast_SplitsNarrowingDoubleCastThroughIntermediate16Bit(t *testing.T) {
	i8v := ir.Vector(ir.Int, 8, 64)
	i32v := ir.Vector(ir.Int, 32, 64)
	x := ir.Variable(i32v, "x")
	e := ir.Cast(i8v, x)

	pm := NewPatternMatcher()
	out := pm.Mutate(e)

	require.Equal(t, ir.OpCast, out.Op())
	require.True(t, out.Type().Equal(i8v))
	require.Equal(t, ir.OpCast, out.A().Op())
	require.Equal(t, uint8(16), out.A().Type().Bits)
	require.True(t, out.A().A().Equal(x))
}

func TestCollapseDoubleCast_DeclinesWhenLaneCountsDiffer(t *testing.T) {
	i8v := ir.Vector(ir.Int, 8, 32)
	i32v := ir.Vector(ir.Int, 32, 64)
	x := ir.Variable(i32v, "x")
	e := ir.Cast(i8v, x)

	pm := NewPatternMatcher()
	_, ok := pm.collapseDoubleCast(e)
	require.False(t, ok)
}

func TestLosslessNegate_RefusesMinInt(t *testing.T) {
	i8 := ir.Scalar(ir.Int, 8)
	minVal := ir.IntImm(i8, -128)
	require.Nil(t, losslessNegate(minVal))
}

func TestLosslessNegate_NegatesOrdinaryConstant(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	got := losslessNegate(ir.IntImm(i32, 7))
	require.NotNil(t, got)
	require.Equal(t, int64(-7), got.ConstValue())
}

func TestLosslessNegate_PushesThroughMul(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	x := ir.Variable(i32, "x")
	e := ir.Mul(x, ir.IntImm(i32, 5))
	got := losslessNegate(e)
	require.NotNil(t, got)
	require.Equal(t, ir.OpMul, got.Op())
	require.Equal(t, int64(-5), got.B().ConstValue())
}
