package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// mulWidth is a narrow multiplicand width the widening-multiply family
// is instantiated over.
type mulWidth struct {
	code   ir.Code
	bits   uint8
	suffix string
}

var mulWidths = []mulWidth{
	{ir.UInt, 8, "ub"},
	{ir.Int, 8, "b"},
	{ir.UInt, 16, "uh"},
	{ir.Int, 16, "h"},
}

// wideningMultiplyTable matches a same-code Mul whose operands are
// already wide (because an earlier Cast widened them, or because the
// surrounding arithmetic simplified to a wide constant), and narrows
// each operand back down with NarrowOp before emitting the single-step
// widening multiply intrinsic. This relies on ir.LosslessCast's
// Cast-unwrapping: captures[i] is typically itself a Cast(wide, narrow)
// node, and LosslessCast recognizes that and strips it rather than
// requiring the matcher to special-case "operand is a cast".
func wideningMultiplyTable() Table {
	var t Table
	for _, w := range mulWidths {
		wide := wc(w.code, w.bits*2, 0)
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.mpy.v" + w.suffix + ".v" + w.suffix,
			Pattern:   ir.Mul(wide, wide),
			Flags:     InterleaveResult | NarrowOp0 | NarrowOp1,
		})
	}
	return t
}

// broadcastMultiplyTable covers the vector×scalar-broadcast form of the
// widening multiply (spec.md §8 scenario 3): one operand is a
// lane-broadcast scalar rather than a second wide vector. NarrowOp1
// recovers the narrow scalar from inside the widening cast the same way
// NarrowOp0 recovers it from the vector operand; BroadcastOp1 then
// re-wraps that narrowed scalar in a lanes==1 Broadcast, since
// NarrowOp1 matched and narrowed the Broadcast's inner value rather
// than the Broadcast node itself and spec.md §8 scenario 3's call arg
// is `broadcast(k,1)`, not the bare scalar.
func broadcastMultiplyTable() Table {
	var t Table
	for _, w := range mulWidths {
		wide := wc(w.code, w.bits*2, 0)
		scalar := wc(w.code, w.bits*2, 1)
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.mpy.v" + w.suffix + "." + w.suffix,
			Pattern:   ir.Mul(wide, ir.Broadcast(scalar, 0)),
			Flags:     InterleaveResult | NarrowOp0 | NarrowOp1 | BroadcastOp1,
		})
	}
	return t
}

// mixedMultiplyTable covers the unsigned*signed widening multiplies HVX
// also supports (mpy.vub.vb etc): the wide operand type is carried as Int
// (large enough to hold either a sign- or zero-extended narrow value),
// with NarrowUnsignedOp0 pulling an unsigned narrow operand back out of
// the first position and NarrowOp1 pulling a signed one out of the
// second.
func mixedMultiplyTable() Table {
	var t Table
	pairs := []struct {
		bits             uint8
		unsigned, signed string
	}{
		{8, "ub", "b"},
		{16, "uh", "h"},
	}
	for _, p := range pairs {
		wide := wc(ir.Int, p.bits*2, 0)
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.mpy.v" + p.unsigned + ".v" + p.signed,
			Pattern:   ir.Mul(wide, wide),
			Flags:     NarrowUnsignedOp0 | NarrowOp1,
		})
	}
	return t
}

// macTable holds the shift/multiply-accumulate family. The first entry,
// satw_add_mpy.vw.vh.h, accumulates a 32-bit interleaved value with a
// saturating widening multiply of two 16-bit operands; its accumulator
// operand arrives already native_interleaved and must be deinterleaved
// before the add (DeinterleaveOp0) with the whole result re-interleaved
// afterward (InterleaveResult), hence ReinterleaveOp0. As recorded in
// the design ledger, this entry treats 32-bit signed overflow of the
// matched a + b*c as undefined: on inputs where that sum overflows 32
// bits, the wrapping IR expression and the saturating intrinsic give
// different results, and no guard excludes such inputs.
func macTable() Table {
	wideAcc := wc(ir.Int, 32, 0)
	wideOperand := wc(ir.Int, 32, 0)
	pattern := ir.Add(wideAcc, ir.Mul(wideOperand, wideOperand))

	genericAcc := wc(ir.Int, 16, 0)
	genericB := wc(ir.Int, 16, 0)
	genericC := wc(ir.Int, 16, 0)
	generic := ir.Add(genericAcc, ir.Mul(genericB, genericC))

	return Table{
		{
			Intrinsic: "halide.hexagon.satw_add_mpy.vw.vh.h",
			Pattern:   pattern,
			Flags:     ReinterleaveOp0 | NarrowOp1 | NarrowOp2,
		},
		{
			// Fallback MAC (spec.md §4.2): no saturation, no
			// interleaving, no narrowing — matches whenever the
			// saturating widening form above doesn't, since it is
			// listed last.
			Intrinsic: "halide.hexagon.add_mul.vh.vh.vh",
			Pattern:   generic,
		},
	}
}

// mulTable is the ordered table PatternMatcher's Mul visitor scans.
func mulTable() Table {
	var t Table
	t = append(t, wideningMultiplyTable()...)
	t = append(t, broadcastMultiplyTable()...)
	t = append(t, mixedMultiplyTable()...)
	return t
}
