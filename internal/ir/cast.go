package ir

import "math/bits"

// LosslessCast returns an expression of type t semantically equal to e
// whenever every value e's type can hold fits in t, or e is a constant
// that happens to fit; otherwise nil, the sentinel a failed narrow
// attempt in a pattern table's NarrowOp handling tests for.
//
// Two cases beyond that are load-bearing for the pattern tables in
// internal/hexagon: a Cast node that widens a narrower
// expression can be unwrapped (lossless_cast(u8, u16(x)) where x:u8
// recovers x exactly, rather than refusing because u16->u8 narrowing is
// not generally safe), and lanes must match exactly — a lossless_cast
// never changes lane count, only code/bits.
func LosslessCast(t Type, e *Expr) *Expr {
	if e == nil {
		return nil
	}
	if e.typ.Equal(t) {
		return e
	}
	if e.typ.Lanes != t.Lanes {
		return nil
	}
	switch e.op {
	case OpIntImm:
		v := e.intImm
		if t.Code == UInt {
			if v < 0 || uint64(v) > maxUint(t.Bits) {
				return nil
			}
			return uintImm(t, uint64(v))
		}
		if v < minInt(t.Bits) || v > maxInt(t.Bits) {
			return nil
		}
		return intImm(t, v)
	case OpUIntImm:
		v := e.uintImm
		if t.Code == UInt {
			if v > maxUint(t.Bits) {
				return nil
			}
			return uintImm(t, v)
		}
		if v > uint64(maxInt(t.Bits)) {
			return nil
		}
		return intImm(t, int64(v))
	case OpCast:
		// Unwrap: if the pre-cast value already fits losslessly in t,
		// skip the intermediate cast entirely.
		if inner := LosslessCast(t, e.a); inner != nil {
			return inner
		}
		return nil
	default:
		if typeRangeFits(e.typ, t) {
			return Cast(t, e)
		}
		return nil
	}
}

// typeRangeFits reports whether every value representable by from is
// also representable by to, for integer types of equal lane count.
func typeRangeFits(from, to Type) bool {
	if !from.IsInt() || !to.IsInt() {
		return false
	}
	if from.Bits > to.Bits {
		return false
	}
	if from.Bits == to.Bits {
		return from.Code == to.Code
	}
	switch {
	case from.Code == to.Code:
		return true // widening, same signedness: always safe
	case from.Code == UInt && to.Code == Int:
		return true // unsigned fits in a strictly wider signed type
	default: // from signed, to unsigned: negative values don't fit
		return false
	}
}

// IsConstPowerOfTwoInteger implements the §6
// "is_const_power_of_two_integer(e, &out)" contract: true iff e is a
// positive integer constant equal to 2^out.
func IsConstPowerOfTwoInteger(e *Expr) (out uint64, ok bool) {
	if e == nil || !e.IsConst() {
		return 0, false
	}
	v := e.ConstValue()
	if v <= 0 {
		return 0, false
	}
	uv := uint64(v)
	if uv&(uv-1) != 0 {
		return 0, false
	}
	return uint64(bits.TrailingZeros64(uv)), true
}
