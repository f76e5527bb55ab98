package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// addWidth describes one narrow integer lane width that the averaging
// and saturating add/sub families are instantiated over: HVX carries
// native instructions for each of vub/vuh/vb/vh, so these tables are
// built by looping over the four rather than hand-duplicating one
// pattern four times with only the suffix and Code changed.
type addWidth struct {
	code   ir.Code
	bits   uint8
	suffix string
}

var addWidths = []addWidth{
	{ir.UInt, 8, "vub"},
	{ir.UInt, 16, "vuh"},
	{ir.Int, 8, "vb"},
	{ir.Int, 16, "vh"},
}

// wideConst builds an integer constant carrying the AnyLanes marker
// (Lanes == 0) rather than a scalar Lanes == 1, so it unifies with the
// wide vector type everywhere it's used as a binOp operand alongside an
// AnyLanes-typed capture — binOp requires its two operands' types to
// compare exactly Equal, and Lanes == 1 would never match Lanes == 0.
func wideConst(code ir.Code, bits uint8, v uint64) *ir.Expr {
	t := ir.Vector(code, bits, 0)
	if code == ir.UInt {
		return ir.UIntImm(t, v)
	}
	return ir.IntImm(t, int64(v))
}

// averagingTable builds the avg.* and avg_rnd.* families: a widening
// add of two same-width operands, divided by two, narrowed back down.
// The avg_rnd.* entries add the +1 rounding bias Halide's avg_round lowering
// inserts before the halving divide.
func averagingTable() Table {
	var t Table
	for _, w := range addWidths {
		wide := ir.Vector(w.code, w.bits*2, 0)
		narrow := ir.Vector(w.code, w.bits, 0)
		a := wc(w.code, w.bits, 0)
		b := wc(w.code, w.bits, 0)
		sum := ir.Add(ir.Cast(wide, a), ir.Cast(wide, b))
		two := wideConst(w.code, w.bits*2, 2)

		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.avg." + w.suffix + "." + w.suffix,
			Pattern:   ir.Cast(narrow, ir.Div(sum, two)),
		})

		rounded := ir.Add(sum, wideConst(w.code, w.bits*2, 1))
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.avg_rnd." + w.suffix + "." + w.suffix,
			Pattern:   ir.Cast(narrow, ir.Div(rounded, two)),
		})
	}
	return t
}

// negativeAveragingTable builds navg.*: a widening subtract halved, for
// signed operand widths only — HVX has no unsigned navg instruction
// since an unsigned difference can't go negative in the first place.
func negativeAveragingTable() Table {
	var t Table
	for _, w := range addWidths {
		if w.code != ir.Int {
			continue
		}
		wide := ir.Vector(w.code, w.bits*2, 0)
		narrow := ir.Vector(w.code, w.bits, 0)
		a := wc(w.code, w.bits, 0)
		b := wc(w.code, w.bits, 0)
		diff := ir.Sub(ir.Cast(wide, a), ir.Cast(wide, b))
		two := wideConst(w.code, w.bits*2, 2)
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.navg." + w.suffix + "." + w.suffix,
			Pattern:   ir.Cast(narrow, ir.Div(diff, two)),
		})
	}
	return t
}

// saturatingAddSubTable builds satub_add.*/satb_add.* and their _sub
// duals: a widening add/subtract clamped back into the narrow type's
// representable range before narrowing, so overflow saturates instead
// of wrapping. Both families are rooted at Cast (the outer u8_sat(...)
// / i8_sat(...) in spec.md §4.2's worked examples), so — like
// averagingTable and negativeAveragingTable — they belong to the Cast
// visitor's table, not a dedicated Add/Sub one.
func saturatingAddSubTable() Table {
	var t Table
	for _, w := range addWidths {
		wide := ir.Vector(w.code, w.bits*2, 0)
		narrow := ir.Vector(w.code, w.bits, 0)
		a := wc(w.code, w.bits, 0)
		b := wc(w.code, w.bits, 0)
		wideMax := ir.Cast(wide, narrow.Max())

		clamp := func(x *ir.Expr) *ir.Expr {
			clamped := ir.Min(x, wideMax)
			if w.code != ir.UInt {
				clamped = ir.Max(clamped, ir.Cast(wide, narrow.Min()))
			}
			return clamped
		}

		sum := ir.Add(ir.Cast(wide, a), ir.Cast(wide, b))
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.sat" + w.suffix[1:] + "_add.v" + w.suffix[1:] + ".v" + w.suffix[1:],
			Pattern:   ir.Cast(narrow, clamp(sum)),
		})

		diff := ir.Sub(ir.Cast(wide, a), ir.Cast(wide, b))
		t = append(t, Pattern{
			Intrinsic: "halide.hexagon.sat" + w.suffix[1:] + "_sub.v" + w.suffix[1:] + ".v" + w.suffix[1:],
			Pattern:   ir.Cast(narrow, clamp(diff)),
		})
	}
	return t
}

// castAddSubTable is the ordered concatenation the Cast visitor's
// table includes for the averaging/saturating-add/sub families:
// averaging first (narrowest match shape), then negative averaging,
// then the saturating forms.
func castAddSubTable() Table {
	var t Table
	t = append(t, averagingTable()...)
	t = append(t, negativeAveragingTable()...)
	t = append(t, saturatingAddSubTable()...)
	return t
}

