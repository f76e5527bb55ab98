package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimplify_ConstantFolding(t *testing.T) {
	i32 := Scalar(Int, 32)
	tests := []struct {
		name string
		expr *Expr
		want int64
	}{
		{"add", Add(IntImm(i32, 2), IntImm(i32, 3)), 5},
		{"sub", Sub(IntImm(i32, 2), IntImm(i32, 3)), -1},
		{"mul", Mul(IntImm(i32, 4), IntImm(i32, 5)), 20},
		{"div", Div(IntImm(i32, 7), IntImm(i32, 2)), 3},
		{"min", Min(IntImm(i32, 7), IntImm(i32, 2)), 2},
		{"max", Max(IntImm(i32, 7), IntImm(i32, 2)), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.expr)
			require.True(t, got.IsConst())
			require.Equal(t, tt.want, got.ConstValue())
		})
	}
}

func TestSimplify_Identities(t *testing.T) {
	i32 := Scalar(Int, 32)
	x := Variable(i32, "x")
	zero := IntImm(i32, 0)
	one := IntImm(i32, 1)

	require.True(t, Simplify(Add(x, zero)).Equal(x))
	require.True(t, Simplify(Add(zero, x)).Equal(x))
	require.True(t, Simplify(Sub(x, zero)).Equal(x))
	require.True(t, Simplify(Mul(x, one)).Equal(x))
	require.True(t, Simplify(Mul(one, x)).Equal(x))
	require.True(t, Simplify(Min(x, x)).Equal(x))
	require.True(t, Simplify(Max(x, x)).Equal(x))
}

func TestSimplify_DivisionByZeroLeftUnsimplified(t *testing.T) {
	i32 := Scalar(Int, 32)
	e := Div(IntImm(i32, 1), IntImm(i32, 0))
	got := Simplify(e)
	require.False(t, got.IsConst())
}

func TestSimplify_LetInlinesConstant(t *testing.T) {
	i32 := Scalar(Int, 32)
	body := Add(Variable(i32, "x"), IntImm(i32, 1))
	let := Let("x", IntImm(i32, 41), body)
	got := Simplify(let)
	require.True(t, got.IsConst())
	require.Equal(t, int64(42), got.ConstValue())
}

func TestSimplify_SelectWithConstantCond(t *testing.T) {
	i32 := Scalar(Int, 32)
	cond := UIntImm(Scalar(UInt, 1), 1)
	sel := Select(cond, IntImm(i32, 1), IntImm(i32, 2))
	got := Simplify(sel)
	require.Equal(t, int64(1), got.ConstValue())
}
