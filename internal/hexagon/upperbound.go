package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// UpperBound is the public entry for spec.md §4.5: a pure tree
// normalizer over an already-computed bound expression (typically
// `hi - lo` from an interval query), with no bounds-scope of its own —
// it exploits shared structure already present in the expression rather
// than consulting any external bounds query itself.
func UpperBound(e *ir.Expr) *ir.Expr {
	return ir.Simplify(mutateUpperBound(e))
}

// mutateUpperBound tightens Sub{a, b} when both sides are of the form
// min(x, k) or both of the form max(x, k) sharing the same k: in that
// case the bound on their difference is just the (generally much
// tighter) bound on x_a - x_b, since a shared clamp can only narrow
// both sides by the same amount or less — the case generic interval
// arithmetic over-widens, lacking any way to know the two mins/maxes
// are correlated. Otherwise the subtraction is rebuilt if its children
// changed; every other node is default-recursed.
func mutateUpperBound(e *ir.Expr) *ir.Expr {
	if e == nil {
		return nil
	}
	if e.Op() == ir.OpSub {
		if diff, ok := asSharedClampDifference(e); ok {
			return mutateUpperBound(ir.Simplify(diff))
		}
		a, b := mutateUpperBound(e.A()), mutateUpperBound(e.B())
		return ir.WithChildren(e, a, b, nil, nil)
	}
	return recurseUpperBound(e)
}

// asSharedClampDifference recognizes Sub{Min{xa,ka},Min{xb,kb}} or
// Sub{Max{xa,ka},Max{xb,kb}} with ka == kb (after simplification),
// returning xa - xb.
func asSharedClampDifference(e *ir.Expr) (*ir.Expr, bool) {
	xa, ka, op, ok := asClamp(e.A())
	if !ok {
		return nil, false
	}
	xb, kb, opB, ok := asClamp(e.B())
	if !ok || op != opB || !ir.Simplify(ka).Equal(ir.Simplify(kb)) {
		return nil, false
	}
	return ir.Sub(xa, xb), true
}

// asClamp recognizes e as Min{x,k} or Max{x,k}, returning x, k and the
// op for the caller to compare against the other side's op.
func asClamp(e *ir.Expr) (x, k *ir.Expr, op ir.Opcode, ok bool) {
	if e == nil || (e.Op() != ir.OpMin && e.Op() != ir.OpMax) {
		return nil, nil, 0, false
	}
	return e.A(), e.B(), e.Op(), true
}

func recurseUpperBound(e *ir.Expr) *ir.Expr {
	var args []*ir.Expr
	if e.Args() != nil {
		args = make([]*ir.Expr, len(e.Args()))
		for i, a := range e.Args() {
			args[i] = mutateUpperBound(a)
		}
	}
	return ir.WithChildren(e, mutateUpperBound(e.A()), mutateUpperBound(e.B()), mutateUpperBound(e.C()), args)
}
