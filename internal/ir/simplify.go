package ir

// Simplify is a conservative bottom-up algebraic simplifier over
// integer expressions — constant folding plus the handful of identities
// the rewriters in internal/hexagon actually drive it with (x+0, x*1,
// x*0, self-min/max, constant-let inlining, constant-branch Select). It
// is intentionally not a general CAS: it is the black-box collaborator
// the rewriters call into to tidy up what they produce, not a
// general-purpose optimizer in its own right.
//
// Grounded on ssa/pass.go's passConstFoldingOpt in the teacher package:
// a single bottom-up walk that folds each instruction's constant operands
// in place, with the same "rebuild only if something changed" discipline.
func Simplify(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.op {
	case OpIntImm, OpUIntImm, OpVariable:
		return e
	case OpCast:
		a := Simplify(e.a)
		if folded := foldCast(e.typ, a); folded != nil {
			return folded
		}
		if a == e.a {
			return e
		}
		return WithChildren(e, a, nil, nil, nil)
	case OpNot:
		a := Simplify(e.a)
		if a.IsConst() {
			if a.ConstValue() != 0 {
				return boolConst(e.typ, false)
			}
			return boolConst(e.typ, true)
		}
		if a == e.a {
			return e
		}
		return WithChildren(e, a, nil, nil, nil)
	case OpBroadcast:
		a := Simplify(e.a)
		if a == e.a {
			return e
		}
		return WithChildren(e, a, nil, nil, nil)
	case OpRamp:
		a, b := Simplify(e.a), Simplify(e.b)
		if a == e.a && b == e.b {
			return e
		}
		return WithChildren(e, a, b, nil, nil)
	case OpSelect:
		cond, t, f := Simplify(e.a), Simplify(e.b), Simplify(e.c)
		if cond.IsConst() {
			if cond.ConstValue() != 0 {
				return t
			}
			return f
		}
		if cond == e.a && t == e.b && f == e.c {
			return e
		}
		return WithChildren(e, cond, t, f, nil)
	case OpLoad:
		idx := Simplify(e.a)
		if idx == e.a {
			return e
		}
		return WithChildren(e, idx, nil, nil, nil)
	case OpCall:
		changed := false
		args := make([]*Expr, len(e.args))
		for i, arg := range e.args {
			na := Simplify(arg)
			args[i] = na
			if na != arg {
				changed = true
			}
		}
		if !changed {
			return e
		}
		return WithChildren(e, nil, nil, nil, args)
	case OpLet:
		val := Simplify(e.a)
		if val.IsConst() {
			return Simplify(Substitute(e.name, val, e.b))
		}
		body := Simplify(e.b)
		if val == e.a && body == e.b {
			return e
		}
		return WithChildren(e, val, body, nil, nil)
	default: // Add, Sub, Mul, Div, Mod, Min, Max, comparisons, And, Or
		a, b := Simplify(e.a), Simplify(e.b)
		if folded := foldBinary(e.op, a, b); folded != nil {
			return folded
		}
		if ident := identity(e.op, a, b); ident != nil {
			return ident
		}
		if a == e.a && b == e.b {
			return e
		}
		return WithChildren(e, a, b, nil, nil)
	}
}

func boolConst(t Type, v bool) *Expr {
	if v {
		return uintImm(t, 1)
	}
	return uintImm(t, 0)
}

func mask(bits uint8) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<bits - 1
}

func rawConst(e *Expr) uint64 {
	if e.op == OpIntImm {
		return uint64(e.intImm) & mask(e.typ.Bits)
	}
	return e.uintImm & mask(e.typ.Bits)
}

func signExtend(v uint64, bits uint8) int64 {
	if bits >= 64 {
		return int64(v)
	}
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// foldCast constant-folds a cast of a known-constant operand; nil if a
// is not constant.
func foldCast(t Type, a *Expr) *Expr {
	if !a.IsConst() {
		return nil
	}
	raw := rawConst(a) & mask(t.Bits)
	if t.Code == UInt {
		return uintImm(t, raw)
	}
	return intImm(t, signExtend(raw, t.Bits))
}

// foldBinary constant-folds a binary/comparison/logical op over two
// known constants of the same operand type; nil if either is not
// constant (or the op is undefined for these operands, e.g. division by
// zero — left unsimplified so the caller can decide).
func foldBinary(op Opcode, a, b *Expr) *Expr {
	if !a.IsConst() || !b.IsConst() {
		return nil
	}
	ot := a.typ
	ua, ub := rawConst(a), rawConst(b)
	signed := ot.Code == Int

	switch op {
	case OpAdd:
		return wrapInt(ot, ua+ub)
	case OpSub:
		return wrapInt(ot, ua-ub)
	case OpMul:
		return wrapInt(ot, ua*ub)
	case OpDiv:
		if ub == 0 {
			return nil
		}
		if signed {
			sa, sb := signExtend(ua, ot.Bits), signExtend(ub, ot.Bits)
			return wrapInt(ot, uint64(sa/sb))
		}
		return wrapInt(ot, ua/ub)
	case OpMod:
		if ub == 0 {
			return nil
		}
		if signed {
			sa, sb := signExtend(ua, ot.Bits), signExtend(ub, ot.Bits)
			return wrapInt(ot, uint64(sa%sb))
		}
		return wrapInt(ot, ua%ub)
	case OpMin:
		if less(ot, ua, ub) {
			return wrapInt(ot, ua)
		}
		return wrapInt(ot, ub)
	case OpMax:
		if less(ot, ua, ub) {
			return wrapInt(ot, ub)
		}
		return wrapInt(ot, ua)
	case OpEQ:
		return boolConst(boolType(a), ua == ub)
	case OpNE:
		return boolConst(boolType(a), ua != ub)
	case OpLT:
		return boolConst(boolType(a), less(ot, ua, ub))
	case OpLE:
		return boolConst(boolType(a), ua == ub || less(ot, ua, ub))
	case OpGT:
		return boolConst(boolType(a), less(ot, ub, ua))
	case OpGE:
		return boolConst(boolType(a), ua == ub || less(ot, ub, ua))
	case OpAnd:
		return boolConst(ot, ua != 0 && ub != 0)
	case OpOr:
		return boolConst(ot, ua != 0 || ub != 0)
	default:
		return nil
	}
}

func boolType(a *Expr) Type {
	return Type{Code: UInt, Bits: 1, Lanes: a.typ.Lanes}
}

func less(ot Type, ua, ub uint64) bool {
	if ot.Code == UInt {
		return ua < ub
	}
	return signExtend(ua, ot.Bits) < signExtend(ub, ot.Bits)
}

func wrapInt(t Type, raw uint64) *Expr {
	raw &= mask(t.Bits)
	if t.Code == UInt {
		return uintImm(t, raw)
	}
	return intImm(t, signExtend(raw, t.Bits))
}

// identity applies the handful of non-constant algebraic identities the
// rewriters rely on: x+0, 0+x, x-0, x*1, 1*x, x*0, 0*x, min(x,x),
// max(x,x). Returns nil if no identity applies.
func identity(op Opcode, a, b *Expr) *Expr {
	switch op {
	case OpAdd:
		if isZero(b) {
			return a
		}
		if isZero(a) {
			return b
		}
	case OpSub:
		if isZero(b) {
			return a
		}
	case OpMul:
		if isOne(b) {
			return a
		}
		if isOne(a) {
			return b
		}
		if isZero(a) {
			return a
		}
		if isZero(b) {
			return b
		}
	case OpDiv:
		if isOne(b) {
			return a
		}
	case OpMin, OpMax:
		if a.Equal(b) {
			return a
		}
	}
	return nil
}

func isZero(e *Expr) bool { return e.IsConst() && e.ConstValue() == 0 }
func isOne(e *Expr) bool  { return e.IsConst() && e.ConstValue() == 1 }
