package hexagon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexagonhvx/peephole/internal/ir"
)

func TestUpperBound_SharedMinClampDifferenceTightensToOperandDifference(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	x := ir.Variable(i32, "x")
	y := ir.Variable(i32, "y")
	k := ir.IntImm(i32, 10)
	e := ir.Sub(ir.Min(x, k), ir.Min(y, k))

	out := UpperBound(e)

	require.Equal(t, ir.OpSub, out.Op())
	require.Equal(t, "x", out.A().Name())
	require.Equal(t, "y", out.B().Name())
}

func TestUpperBound_SharedMaxClampDifferenceTightensToOperandDifference(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	x := ir.Variable(i32, "x")
	y := ir.Variable(i32, "y")
	k := ir.IntImm(i32, 10)
	e := ir.Sub(ir.Max(x, k), ir.Max(y, k))

	out := UpperBound(e)

	require.Equal(t, ir.OpSub, out.Op())
	require.Equal(t, "x", out.A().Name())
	require.Equal(t, "y", out.B().Name())
}

func TestUpperBound_DifferentClampValuesDeclinesTightening(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	x := ir.Variable(i32, "x")
	y := ir.Variable(i32, "y")
	e := ir.Sub(ir.Min(x, ir.IntImm(i32, 10)), ir.Min(y, ir.IntImm(i32, 20)))

	out := UpperBound(e)

	require.Equal(t, ir.OpSub, out.Op())
	require.Equal(t, ir.OpMin, out.A().Op())
	require.Equal(t, ir.OpMin, out.B().Op())
}

func TestUpperBound_MismatchedClampKindDeclinesTightening(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	x := ir.Variable(i32, "x")
	y := ir.Variable(i32, "y")
	k := ir.IntImm(i32, 10)
	e := ir.Sub(ir.Min(x, k), ir.Max(y, k))

	out := UpperBound(e)

	require.Equal(t, ir.OpSub, out.Op())
	require.Equal(t, ir.OpMin, out.A().Op())
	require.Equal(t, ir.OpMax, out.B().Op())
}

func TestUpperBound_TighteningAppliesToNestedSubtree(t *testing.T) {
	i32 := ir.Scalar(ir.Int, 32)
	x := ir.Variable(i32, "x")
	y := ir.Variable(i32, "y")
	z := ir.Variable(i32, "z")
	k := ir.IntImm(i32, 10)
	e := ir.Add(ir.Sub(ir.Min(x, k), ir.Min(y, k)), z)

	out := UpperBound(e)

	require.Equal(t, ir.OpAdd, out.Op())
	require.Equal(t, ir.OpSub, out.A().Op())
	require.Equal(t, "x", out.A().A().Name())
	require.Equal(t, "y", out.A().B().Name())
	require.Equal(t, "z", out.B().Name())
}
