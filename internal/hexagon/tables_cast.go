package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// narrowTarget is one (wide signed source, narrow destination) pair the
// saturating-narrow-cast family supports.
type narrowTarget struct {
	wideBits     uint8
	narrowCode   ir.Code
	narrowBits   uint8
	narrowSuffix string
}

var narrowTargets = []narrowTarget{
	{16, ir.UInt, 8, "ub"},
	{16, ir.Int, 8, "b"},
	{32, ir.UInt, 16, "uh"},
	{32, ir.Int, 16, "h"},
}

// truncSatTable builds trunc_sat*.* : a signed wide value clamped into
// a narrower type's representable range, then cast down. truncSatRnd
// additionally biases by half the narrow type's step before clamping,
// matching Halide's rounding-shift-then-saturate lowering for the *_rnd
// intrinsics.
func truncSatTable() Table {
	var t Table
	for _, n := range narrowTargets {
		wide := ir.Vector(ir.Int, n.wideBits, 0)
		narrow := ir.Vector(n.narrowCode, n.narrowBits, 0)
		a := wc(ir.Int, n.wideBits, 0)

		wideMax := ir.Cast(wide, narrow.Max())
		wideMin := ir.Cast(wide, narrow.Min())
		clamp := func(x *ir.Expr) *ir.Expr {
			return ir.Max(ir.Min(x, wideMax), wideMin)
		}

		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.trunc_sat" + n.narrowSuffix + ".v" + narrowBitsLetter(n.wideBits),
			Pattern:   ir.Cast(narrow, clamp(a)),
		})

		step := wideConst(ir.Int, n.wideBits, 1<<(n.wideBits-n.narrowBits-1))
		rounded := ir.Add(a, step)
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.trunc_sat" + n.narrowSuffix + "_rnd.v" + narrowBitsLetter(n.wideBits),
			Pattern:   ir.Cast(narrow, clamp(rounded)),
		})
	}
	return t
}

func narrowBitsLetter(wideBits uint8) string {
	switch wideBits {
	case 16:
		return "h"
	case 32:
		return "w"
	default:
		panic("BUG: unsupported wide width for trunc_sat naming")
	}
}

// roundShiftTarget is a (wide 32-bit source, narrow destination reached
// via an intermediate 16-bit stage) pair for the "rounding half-up"
// narrow-via-shift family: u8_sat((i32(a)+128)/256) and its dual.
type roundShiftTarget struct {
	narrowCode   ir.Code
	narrowSuffix string
}

var roundShiftTargets = []roundShiftTarget{
	{ir.UInt, "ub"},
	{ir.Int, "b"},
}

// truncSatRndShiftTable builds trunc_sat{ub,b}_rnd.vh: a 32-bit-precision
// sum biased by half the divisor then divided by 256 (a right-shift by
// 8), clamped into the narrow type's range and cast down. The captured
// operand is the full 32-bit addend (Cast(i32, a) for some narrower a);
// NarrowOp0 invokes ir.LosslessCast to recover a at half width (16 bits,
// hence the ".vh" suffix) and DeinterleaveOp0 wraps it — matching
// spec.md §8 scenario 2 exactly.
func truncSatRndShiftTable() Table {
	var t Table
	for _, n := range roundShiftTargets {
		narrow := ir.Vector(n.narrowCode, 8, 0)
		wide := ir.Vector(ir.Int, 32, 0)
		a := wc(ir.Int, 32, 0)

		wideMax := ir.Cast(wide, narrow.Max())
		wideMin := ir.Cast(wide, narrow.Min())
		clamp := func(x *ir.Expr) *ir.Expr {
			return ir.Max(ir.Min(x, wideMax), wideMin)
		}

		bias := wideConst(ir.Int, 32, 128)
		divisor := wideConst(ir.Int, 32, 256)
		rounded := ir.Div(ir.Add(a, bias), divisor)

		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.trunc_sat" + n.narrowSuffix + "_rnd.vh",
			Pattern:   ir.Cast(narrow, clamp(rounded)),
			Flags:     DeinterleaveOp0 | NarrowOp0,
		})
	}
	return t
}

// truncLoTable builds trunclo.v{h,w}: a non-saturating narrow that
// keeps the low half of a value already divided down into the narrow
// type's range by a power-of-two shift — Halide's "narrow(x >> k)"
// lowering for the no-saturation high-half-pack case, e.g.
// u8(u16(a)/256) where the /256 is lowered to a shift via
// ExactLog2Op1. The captured dividend is deinterleaved first: the
// unshifted value arrives already native_interleaved from an earlier
// widening rewrite in the common case this fires for.
func truncLoTable() Table {
	var t Table
	for _, n := range narrowTargets {
		wide := ir.Vector(n.narrowCode, n.wideBits, 0)
		narrow := ir.Vector(n.narrowCode, n.narrowBits, 0)
		a := wc(n.narrowCode, n.wideBits, 0)
		k := wc(n.narrowCode, n.wideBits, 0)

		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.trunclo.v" + narrowBitsLetter(n.wideBits),
			Pattern:   ir.Cast(narrow, ir.Div(a, k)),
			Flags:     DeinterleaveOp0 | ExactLog2Op1,
		})
	}
	return t
}

// packTable builds pack.v{h,w}: an unrounded, unsaturated narrow cast —
// the plain u8(u16(x)) truncation HVX still issues as a single named
// instruction rather than the generic narrowing Cast. These have
// deinterleaving alternatives (trunc.v{h,w}) chosen later by
// InterleaveEliminator when the operand is already interleaved
// (spec.md §4.3's table); the plain form is what PatternMatcher emits.
func packTable() Table {
	var t Table
	for _, n := range narrowTargets {
		if n.narrowCode != ir.UInt {
			continue // HVX's pack.v* instructions are unsigned-destination only.
		}
		wide := ir.Vector(n.narrowCode, n.wideBits, 0)
		narrow := ir.Vector(n.narrowCode, n.narrowBits, 0)
		a := wc(n.narrowCode, n.wideBits, 0)
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.pack.v" + narrowBitsLetter(n.wideBits),
			Pattern:   ir.Cast(narrow, a),
		})
	}
	return t
}

// widenTargets is a (narrow source, wide destination) pair the
// widening-cast family is instantiated over: a same-signedness widening
// cast produces a single zero/sign-extend instruction, tagged to be
// interleaved because HVX's extend instructions natively produce the
// paired even/odd layout.
type widenTarget struct {
	code            ir.Code
	narrowBits      uint8
	wideBits        uint8
	intrinsicLetter string
}

var widenTargets = []widenTarget{
	{ir.UInt, 8, 16, "h"},
	{ir.Int, 8, 16, "h"},
	{ir.UInt, 16, 32, "w"},
	{ir.Int, 16, 32, "w"},
}

// widenTable builds zxt.v{h,w}/sxt.v{h,w}: a widening cast of the same
// signedness, tagged InterleaveResult because HVX's extend instructions
// natively emit the paired even/odd lane layout (spec.md §4.2's
// "Widening casts produce zxt/sxt with InterleaveResult").
func widenTable() Table {
	var t Table
	for _, w := range widenTargets {
		narrow := ir.Vector(w.code, w.narrowBits, 0)
		wide := ir.Vector(w.code, w.wideBits, 0)
		a := wc(w.code, w.narrowBits, 0)
		name := "zxt"
		if w.code == ir.Int {
			name = "sxt"
		}
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon." + name + ".v" + w.intrinsicLetter,
			Pattern:   ir.Cast(wide, a),
			Flags:     InterleaveResult,
		})
	}
	return t
}

// castTable is the ordered table PatternMatcher's Cast visitor scans.
// Order matters (spec.md §3's Invariants): the rounding-shift and
// divide-lowering families must precede the plain pack/widen entries,
// since those also structurally match a bare Cast(narrow, wc) or
// Cast(wide, wc) once the more specific arithmetic wrapper is stripped
// away, and a more specific pattern earlier in the table must win. The
// averaging and saturating add/sub family likewise precedes
// truncSatTable, whose bare wildcard inside the clamp would otherwise
// capture the whole widened sum of a saturating add.
func castTable() Table {
	var t Table
	t = append(t, truncSatRndShiftTable()...)
	t = append(t, castAddSubTable()...)
	t = append(t, truncSatTable()...)
	t = append(t, truncLoTable()...)
	t = append(t, packTable()...)
	t = append(t, widenTable()...)
	return t
}
