package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// maxLUTSpan is the largest index span (inclusive) a single
// dynamic_shuffle lookup table can cover: HVX's table-lookup
// instructions address at most 256 byte-granular table entries.
const maxLUTSpan = 256

// BoundedShuffleRewriter replaces an indirect vector load (one whose
// index is not a contiguous Ramp) with a dynamic-shuffle intrinsic over
// a small materialized lookup table, whenever the index's provable
// range is narrow enough for one. It carries a bounds scope across the
// Stmt/Expr walk so an index expression referencing a let-bound
// variable can still be bounded.
type BoundedShuffleRewriter struct {
	scope *ir.Scope[ir.Interval]
}

// NewBoundedShuffleRewriter builds a rewriter with an empty bounds
// scope.
func NewBoundedShuffleRewriter() *BoundedShuffleRewriter {
	return &BoundedShuffleRewriter{scope: ir.NewScope[ir.Interval]()}
}

// MutateStmt rewrites every load reachable from s, pushing a bounds
// frame for each LetStmt's name for the duration of its body. The Push
// and its Pop are always paired via defer, so a BoundedShuffleRewriter
// that panics partway through a body (e.g. on a FatalError from a
// nested PatternMatcher-produced node it doesn't recognize) still
// leaves the scope balanced for any caller that recovers and inspects
// it.
func (r *BoundedShuffleRewriter) MutateStmt(s *ir.Stmt) *ir.Stmt {
	if s == nil {
		return nil
	}
	switch s.Op() {
	case ir.StmtLet:
		value := r.Mutate(s.Expr())
		r.scope.Push(s.Name(), ir.BoundsOfExprInScope(value, r.scope))
		defer r.scope.Pop()
		return ir.LetStmt(s.Name(), value, r.MutateStmt(s.Body()))
	case ir.StmtStore:
		return ir.Store(s.Name(), r.Mutate(s.Index()), r.Mutate(s.Expr()))
	case ir.StmtBlock:
		stmts := make([]*ir.Stmt, len(s.Stmts()))
		for i, inner := range s.Stmts() {
			stmts[i] = r.MutateStmt(inner)
		}
		return ir.Block(stmts...)
	case ir.StmtIfThenElse:
		return ir.IfThenElse(r.Mutate(s.Expr()), r.MutateStmt(s.Body()), r.MutateStmt(s.Else()))
	case ir.StmtEvaluate:
		return ir.Evaluate(r.Mutate(s.Expr()))
	default:
		panicFatal(nil, "unhandled statement op in BoundedShuffleRewriter")
		return nil
	}
}

// Mutate rewrites e bottom-up.
func (r *BoundedShuffleRewriter) Mutate(e *ir.Expr) *ir.Expr {
	if e == nil {
		return nil
	}
	switch e.Op() {
	case ir.OpLoad:
		return r.mutateLoad(e)
	case ir.OpLet:
		value := r.Mutate(e.A())
		r.scope.Push(e.Name(), ir.BoundsOfExprInScope(value, r.scope))
		defer r.scope.Pop()
		return ir.Let(e.Name(), value, r.Mutate(e.B()))
	default:
		return r.recurse(e)
	}
}

// mutateLoad implements the core rewrite. A Ramp index is already a
// contiguous vector load and is left untouched. Otherwise it bounds the
// index's span in the current scope; if that span provably fits a
// table of at most maxLUTSpan entries, the gather becomes a small
// contiguous Load (the LUT) feeding a dynamic_shuffle call keyed by the
// index's offset from the span's lower bound. An index whose bounds
// can't be established, or whose span is too wide, is left as an
// ordinary (presumably slower, fully-general) indirect load.
func (r *BoundedShuffleRewriter) mutateLoad(e *ir.Expr) *ir.Expr {
	idx := r.Mutate(e.A())
	if idx.Op() == ir.OpRamp {
		return ir.WithChildren(e, idx, nil, nil, nil)
	}

	iv := ir.BoundsOfExprInScope(idx, r.scope)
	if !iv.IsFullyKnown() {
		return ir.WithChildren(e, idx, nil, nil, nil)
	}

	lo := broadcastToMatch(iv.Min, idx.Type())
	hi := broadcastToMatch(iv.Max, idx.Type())
	span := ir.Simplify(UpperBound(ir.Sub(hi, lo)))
	if !span.IsConst() {
		return ir.WithChildren(e, idx, nil, nil, nil)
	}
	spanValue := span.ConstValue()
	if spanValue < 0 || spanValue >= maxLUTSpan {
		return ir.WithChildren(e, idx, nil, nil, nil)
	}

	lutBase := ir.Simplify(iv.Min)
	lutLen := uint16(spanValue) + 1
	stride := ir.IntImm(ir.Scalar(ir.Int, 32), 1)
	lutType := ir.Vector(e.Type().Code, e.Type().Bits, lutLen)
	lut := ir.Load(lutType, e.Name(), ir.Ramp(lutBase, stride, lutLen), e.Image(), e.Param())

	offset := ir.Simplify(ir.Cast(ir.Vector(ir.UInt, 8, idx.Type().Lanes), ir.Sub(idx, lo)))
	zero := ir.IntImm(ir.Scalar(ir.Int, 32), 0)
	extent := ir.IntImm(ir.Scalar(ir.Int, 32), spanValue+1)
	log.WithField("name", e.Name()).WithField("extent", lutLen).Debug("hexagon: synthesized dynamic_shuffle LUT for bounded indirect load")
	return ir.Call(e.Type(), "halide.hexagon.dynamic_shuffle", []*ir.Expr{lut, offset, zero, extent}, ir.PureIntrinsic)
}

// broadcastToMatch widens/casts base (typically a scalar bound) to
// exactly match target's lane count and element type, so it can appear
// as a Sub operand alongside an expression of target's type. A constant
// base is re-stamped at the target type directly rather than wrapped in
// a Broadcast node, the same way Type.Min/Max and the pattern tables
// represent a vector constant — Simplify's folding only recognizes
// IntImm/UIntImm, so a span derived from two constant bounds (the usual
// case: a loop-invariant interval already resolved to numbers by the
// bounds query) must stay constant through this step to reach
// span.IsConst() below.
func broadcastToMatch(base *ir.Expr, target ir.Type) *ir.Expr {
	t := ir.Type{Code: target.Code, Bits: target.Bits, Lanes: target.Lanes}
	if base.IsConst() {
		if base.Op() == ir.OpUIntImm {
			return ir.UIntImm(t, base.UIntImmValue())
		}
		return ir.IntImm(t, base.ConstValue())
	}
	out := base
	if out.Type().Lanes != target.Lanes {
		out = ir.Broadcast(out, target.Lanes)
	}
	if out.Type().Code != target.Code || out.Type().Bits != target.Bits {
		out = ir.Cast(t, out)
	}
	return out
}

func (r *BoundedShuffleRewriter) recurse(e *ir.Expr) *ir.Expr {
	var args []*ir.Expr
	if e.Args() != nil {
		args = make([]*ir.Expr, len(e.Args()))
		for i, a := range e.Args() {
			args[i] = r.Mutate(a)
		}
	}
	return ir.WithChildren(e, r.Mutate(e.A()), r.Mutate(e.B()), r.Mutate(e.C()), args)
}
