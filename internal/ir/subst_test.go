package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubstitute_ReplacesFreeOccurrences(t *testing.T) {
	i32 := Scalar(Int, 32)
	body := Add(Variable(i32, "x"), Variable(i32, "y"))
	got := Substitute("x", IntImm(i32, 7), body)
	want := Add(IntImm(i32, 7), Variable(i32, "y"))
	require.True(t, got.Equal(want))
}

func TestSubstitute_LetShadowsOwnBodyButNotItsValue(t *testing.T) {
	i32 := Scalar(Int, 32)
	// let x = x + 1 in x
	inner := Let("x", Add(Variable(i32, "x"), IntImm(i32, 1)), Variable(i32, "x"))
	got := Substitute("x", IntImm(i32, 9), inner)

	// the bound value is substituted (outer x), the body is not (shadowed).
	want := Let("x", Add(IntImm(i32, 9), IntImm(i32, 1)), Variable(i32, "x"))
	require.True(t, got.Equal(want))
}

func TestExprUsesVar(t *testing.T) {
	i32 := Scalar(Int, 32)
	require.True(t, ExprUsesVar(Variable(i32, "x"), "x"))
	require.False(t, ExprUsesVar(Variable(i32, "y"), "x"))
	require.True(t, ExprUsesVar(Add(Variable(i32, "x"), IntImm(i32, 1)), "x"))
}

func TestExprUsesVar_LetShadowing(t *testing.T) {
	i32 := Scalar(Int, 32)
	// let x = 1 in x -- does not use the outer x
	let := Let("x", IntImm(i32, 1), Variable(i32, "x"))
	require.False(t, ExprUsesVar(let, "x"))

	// let y = x in y -- the bound value still references outer x
	let2 := Let("y", Variable(i32, "x"), Variable(i32, "y"))
	require.True(t, ExprUsesVar(let2, "x"))
}
