package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// InterleaveEliminator cancels redundant native_interleave/
// native_deinterleave marker pairs. PatternMatcher introduces these
// markers locally (an accumulator
// that must be deinterleaved before a MAC, a widening multiply whose
// result must be re-interleaved to match its caller's expected layout);
// composed across multiple rewrites the markers often end up adjacent
// or separated only by lane-wise arithmetic, and this pass removes them.
//
// vars records, for each let-bound variable currently in scope whose
// name+".deinterleaved" binding is available, the type that deinterleaved
// binding carries — the same role as the bounds scope in
// BoundedShuffleRewriter, but mapping names to an availability fact
// instead of an interval.
type InterleaveEliminator struct {
	vars *ir.Scope[ir.Type]
}

// NewInterleaveEliminator builds an eliminator with an empty vars scope.
func NewInterleaveEliminator() *InterleaveEliminator {
	return &InterleaveEliminator{vars: ir.NewScope[ir.Type]()}
}

// MutateStmt rewrites every expression reachable from s.
func (ie *InterleaveEliminator) MutateStmt(s *ir.Stmt) *ir.Stmt {
	if s == nil {
		return nil
	}
	switch s.Op() {
	case ir.StmtLet:
		return ir.LetStmt(s.Name(), ie.Mutate(s.Expr()), ie.MutateStmt(s.Body()))
	case ir.StmtStore:
		return ir.Store(s.Name(), ie.Mutate(s.Index()), ie.Mutate(s.Expr()))
	case ir.StmtBlock:
		stmts := make([]*ir.Stmt, len(s.Stmts()))
		for i, inner := range s.Stmts() {
			stmts[i] = ie.MutateStmt(inner)
		}
		return ir.Block(stmts...)
	case ir.StmtIfThenElse:
		return ir.IfThenElse(ie.Mutate(s.Expr()), ie.MutateStmt(s.Body()), ie.MutateStmt(s.Else()))
	case ir.StmtEvaluate:
		return ir.Evaluate(ie.Mutate(s.Expr()))
	default:
		panicFatal(nil, "unhandled statement op in InterleaveEliminator")
		return nil
	}
}

// Mutate rewrites e bottom-up, canceling interleave/deinterleave pairs
// and pushing a surviving interleave outward through elementwise
// arithmetic so it has another chance to meet a deinterleave higher in
// the tree.
func (ie *InterleaveEliminator) Mutate(e *ir.Expr) *ir.Expr {
	if e == nil {
		return nil
	}
	switch e.Op() {
	case ir.OpCall:
		return ie.mutateCall(e)
	case ir.OpCast:
		return ie.mutateCast(e)
	case ir.OpNot:
		return ie.mutateUnary(e)
	case ir.OpSelect:
		return ie.mutateSelect(e)
	case ir.OpLet:
		return ie.mutateLet(e)
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpMin, ir.OpMax,
		ir.OpEQ, ir.OpNE, ir.OpLT, ir.OpLE, ir.OpGT, ir.OpGE, ir.OpAnd, ir.OpOr:
		return ie.mutateBinary(e)
	default:
		return ie.recurse(e)
	}
}

// yieldsInterleave implements spec.md §4.3's "yields an interleave":
// true for a literal native_interleave call, a scalar, a Broadcast, or a
// variable whose deinterleaved form is currently published in vars.
func (ie *InterleaveEliminator) yieldsInterleave(e *ir.Expr) bool {
	if isNativeInterleave(e) {
		return true
	}
	if e.Type().IsScalar() {
		return true
	}
	if e.Op() == ir.OpBroadcast {
		return true
	}
	if e.Op() == ir.OpVariable {
		return ie.vars.Contains(e.Name())
	}
	return false
}

// removeInterleave implements spec.md §4.3's remove_interleave, valid
// only when yieldsInterleave(e) holds.
func (ie *InterleaveEliminator) removeInterleave(e *ir.Expr) *ir.Expr {
	if isNativeInterleave(e) {
		return e.Args()[0]
	}
	if e.Type().IsScalar() || e.Op() == ir.OpBroadcast {
		return e
	}
	if e.Op() == ir.OpVariable {
		if t, ok := ie.vars.Lookup(e.Name()); ok {
			return ir.Variable(t, e.Name()+".deinterleaved")
		}
	}
	panicFatal(e, "remove_interleave invariant violated: does not yield an interleave")
	return nil
}

// isRemovableGang reports whether operands is a removable-interleave
// gang: at least one is a literal native_interleave call and every
// operand yields an interleave.
func (ie *InterleaveEliminator) isRemovableGang(operands ...*ir.Expr) bool {
	anyLiteral := false
	for _, op := range operands {
		if isNativeInterleave(op) {
			anyLiteral = true
		}
		if !ie.yieldsInterleave(op) {
			return false
		}
	}
	return anyLiteral
}

func (ie *InterleaveEliminator) mutateCall(e *ir.Expr) *ir.Expr {
	args := make([]*ir.Expr, len(e.Args()))
	for i, a := range e.Args() {
		args[i] = ie.Mutate(a)
	}
	out := ir.WithChildren(e, nil, nil, nil, args)

	if isNativeDeinterleave(out) && len(args) == 1 && ie.yieldsInterleave(args[0]) {
		log.WithField("expr", out.String()).Debug("hexagon: interleave/deinterleave pair cancelled")
		return ie.removeInterleave(args[0])
	}

	if isInterleavable(out) && ie.isRemovableGang(args...) {
		stripped := make([]*ir.Expr, len(args))
		for i, a := range args {
			stripped[i] = ie.removeInterleave(a)
		}
		rebuilt := ir.Call(out.Type(), out.Name(), stripped, out.CallType())
		log.WithField("call", out.Name()).Debug("hexagon: interleave pushed outward through interleavable call")
		return nativeInterleave(rebuilt)
	}

	if alt, ok := deinterleavingAlternative(out.Name()); ok && ie.isRemovableGang(args...) {
		stripped := make([]*ir.Expr, len(args))
		for i, a := range args {
			stripped[i] = ie.removeInterleave(a)
		}
		stripped = append(stripped, alt.extraArgs...)
		log.WithField("from", out.Name()).WithField("to", alt.name).Debug("hexagon: rewrote to deinterleaving alternative")
		return ir.Call(out.Type(), alt.name, stripped, out.CallType())
	}

	return out
}

// isInterleavable implements spec.md §4.3's is_interleavable
// classification for Call nodes.
func isInterleavable(e *ir.Expr) bool {
	if e.Op() != ir.OpCall {
		return false
	}
	switch e.Name() {
	case "bitwise_and", "bitwise_not", "bitwise_xor", "bitwise_or",
		"shift_left", "shift_right", "abs", "absd":
		return true
	}
	if isNativeInterleave(e) || isNativeDeinterleave(e) {
		return false
	}
	if hasPrefix(e.Name(), hexagonPrefix) {
		for _, a := range e.Args() {
			if a.Type().IsVector() && (a.Type().Lanes != e.Type().Lanes || a.Type().Bits != e.Type().Bits) {
				return false
			}
		}
		return true
	}
	return false
}

// deinterleavingAlternative is one row of spec.md §4.3's fixed
// alternative table.
type deinterleavingAlternative struct {
	name      string
	extraArgs []*ir.Expr
}

// deinterleavingAlternative returns the named alternative call for a
// narrowing pack intrinsic, if one exists. original is the
// full dotted intrinsic name (e.g. "halide.hexagon.pack.vh").
func deinterleavingAlternative(original string) (deinterleavingAlternative, bool) {
	zero := ir.IntImm(ir.Scalar(ir.Int, 32), 0)
	switch original {
	case "halide.hexagon.pack.vh":
		return deinterleavingAlternative{name: "halide.hexagon.trunc.vh"}, true
	case "halide.hexagon.pack.vw":
		return deinterleavingAlternative{name: "halide.hexagon.trunc.vw"}, true
	case "halide.hexagon.pack_satub.vh":
		return deinterleavingAlternative{name: "halide.hexagon.trunc_satub.vh"}, true
	case "halide.hexagon.pack_sath.vw":
		return deinterleavingAlternative{name: "halide.hexagon.trunc_sath.vw"}, true
	case "halide.hexagon.pack_satuh.vw":
		return deinterleavingAlternative{name: "halide.hexagon.trunc_satuh_shr.vw.w", extraArgs: []*ir.Expr{zero}}, true
	default:
		return deinterleavingAlternative{}, false
	}
}

func (ie *InterleaveEliminator) mutateCast(e *ir.Expr) *ir.Expr {
	a := ie.Mutate(e.A())
	if e.Type().Bits == a.Type().Bits && ie.yieldsInterleave(a) {
		stripped := ie.removeInterleave(a)
		casted := ir.Cast(ir.Type{Code: e.Type().Code, Bits: e.Type().Bits, Lanes: stripped.Type().Lanes}, stripped)
		log.Trace("hexagon: interleave pushed outward through same-width cast")
		return nativeInterleave(casted)
	}
	return ir.Cast(e.Type(), a)
}

func (ie *InterleaveEliminator) mutateUnary(e *ir.Expr) *ir.Expr {
	a := ie.Mutate(e.A())
	if ie.isRemovableGang(a) {
		log.Trace("hexagon: interleave pushed outward through unary op")
		return nativeInterleave(ir.Not(ie.removeInterleave(a)))
	}
	return ir.Not(a)
}

func (ie *InterleaveEliminator) mutateBinary(e *ir.Expr) *ir.Expr {
	a := ie.Mutate(e.A())
	b := ie.Mutate(e.B())
	if ie.isRemovableGang(a, b) {
		rebuilt := ir.WithChildren(e, ie.removeInterleave(a), ie.removeInterleave(b), nil, nil)
		log.WithField("op", e.Op().String()).Trace("hexagon: interleave pushed outward through pointwise binary op")
		return nativeInterleave(rebuilt)
	}
	return ir.WithChildren(e, a, b, nil, nil)
}

func (ie *InterleaveEliminator) mutateSelect(e *ir.Expr) *ir.Expr {
	cond := ie.Mutate(e.A())
	then := ie.Mutate(e.B())
	els := ie.Mutate(e.C())
	if ie.isRemovableGang(cond, then, els) {
		log.Trace("hexagon: interleave pushed outward through select")
		return nativeInterleave(ir.Select(ie.removeInterleave(cond), ie.removeInterleave(then), ie.removeInterleave(els)))
	}
	return ir.Select(cond, then, els)
}

// mutateLet implements spec.md §4.3's let-binding discipline: when a
// let-bound value is itself a native_interleave call, a second binding
// of its deinterleaved form is published in vars for the duration of
// mutating the body, so every native_deinterleave(var) — or any other
// use recognized by yieldsInterleave — resolves to it directly, skipping
// a deinterleave/interleave round trip at each use site. When the body
// uses only one of the two names, only that binding is emitted; when it
// uses neither, the let is returned with its original name and value.
func (ie *InterleaveEliminator) mutateLet(e *ir.Expr) *ir.Expr {
	value := ie.Mutate(e.A())
	if !isNativeInterleave(value) {
		return ir.Let(e.Name(), value, ie.Mutate(e.B()))
	}

	deinterleavedName := e.Name() + ".deinterleaved"
	deinterleavedValue := value.Args()[0]

	body := func() *ir.Expr {
		ie.vars.Push(e.Name(), deinterleavedValue.Type())
		defer ie.vars.Pop()
		return ie.Mutate(e.B())
	}()

	usesOriginal := ir.ExprUsesVar(body, e.Name())
	usesDeinterleaved := ir.ExprUsesVar(body, deinterleavedName)

	switch {
	case usesOriginal && usesDeinterleaved:
		log.WithField("name", e.Name()).Debug("hexagon: let binding split into interleaved and deinterleaved forms")
		return ir.Let(deinterleavedName, deinterleavedValue,
			ir.Let(e.Name(), nativeInterleave(ir.Variable(deinterleavedValue.Type(), deinterleavedName)), body))
	case usesDeinterleaved:
		log.WithField("name", e.Name()).Debug("hexagon: let binding published only in deinterleaved form")
		return ir.Let(deinterleavedName, deinterleavedValue, body)
	case usesOriginal:
		return ir.Let(e.Name(), value, body)
	default:
		if ir.ExprUsesVar(e.B(), e.Name()) {
			panicFatal(e, "dead let binding still referenced before mutation: invariant violated")
		}
		return ir.Let(e.Name(), value, body)
	}
}

func (ie *InterleaveEliminator) recurse(e *ir.Expr) *ir.Expr {
	var args []*ir.Expr
	if e.Args() != nil {
		args = make([]*ir.Expr, len(e.Args()))
		for i, a := range e.Args() {
			args[i] = ie.Mutate(a)
		}
	}
	return ir.WithChildren(e, ie.Mutate(e.A()), ie.Mutate(e.B()), ie.Mutate(e.C()), args)
}
