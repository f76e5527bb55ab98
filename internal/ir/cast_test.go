package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLosslessCast_SameTypeIsIdentity(t *testing.T) {
	u16 := Scalar(UInt, 16)
	x := Variable(u16, "x")
	require.True(t, LosslessCast(u16, x).Equal(x))
}

func TestLosslessCast_UnwrapsWideningCast(t *testing.T) {
	u8, u16 := Scalar(UInt, 8), Scalar(UInt, 16)
	x := Variable(u8, "x")
	widened := Cast(u16, x)
	got := LosslessCast(u8, widened)
	require.NotNil(t, got)
	require.True(t, got.Equal(x))
}

func TestLosslessCast_RejectsLaneMismatch(t *testing.T) {
	u8 := Scalar(UInt, 8)
	u8x64 := Vector(UInt, 8, 64)
	require.Nil(t, LosslessCast(u8x64, Variable(u8, "x")))
}

func TestLosslessCast_ConstantMustFit(t *testing.T) {
	u8, i32 := Scalar(UInt, 8), Scalar(Int, 32)
	require.NotNil(t, LosslessCast(u8, IntImm(i32, 200)))
	require.Nil(t, LosslessCast(u8, IntImm(i32, -1)))
	require.Nil(t, LosslessCast(u8, IntImm(i32, 256)))
}

func TestLosslessCast_WideningPreservesSignedness(t *testing.T) {
	u8, i16 := Scalar(UInt, 8), Scalar(Int, 16)
	// unsigned fits in a strictly wider signed type
	require.NotNil(t, LosslessCast(i16, Variable(u8, "x")))
	// but a signed value does not losslessly cast to unsigned in general
	require.Nil(t, LosslessCast(Scalar(UInt, 16), Variable(i16, "x")))
}

func TestIsConstPowerOfTwoInteger(t *testing.T) {
	i32 := Scalar(Int, 32)
	out, ok := IsConstPowerOfTwoInteger(IntImm(i32, 256))
	require.True(t, ok)
	require.Equal(t, uint64(8), out)

	_, ok = IsConstPowerOfTwoInteger(IntImm(i32, 3))
	require.False(t, ok)

	_, ok = IsConstPowerOfTwoInteger(IntImm(i32, 0))
	require.False(t, ok)

	_, ok = IsConstPowerOfTwoInteger(IntImm(i32, -4))
	require.False(t, ok)
}
