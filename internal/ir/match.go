package ir

// match.go implements ExprMatch, a recursive tree pattern matcher. There
// is no direct teacher analogue for one — wazero's MatchInstr/
// MatchInstrOneOf (backend/isa/*/lower_mem.go) only test a single
// instruction's opcode — so this is built from the wildcard discipline
// the pattern tables need, with the left-to-right child walk modeled on
// the operand-order convention lowerAddendsToAmode uses when it
// processes x then y.
//
// Design note on wildcards: the "lanes == 0 means any lane count"
// marker is kept as an explicit Lanes field on Type rather than encoded
// as a special value buried in a lane-agnostic dynamic type, and is
// resolved here by unifying every AnyLanes occurrence in one match
// against the first concrete lane count seen.

// ExprMatch attempts to match pattern against value. On success it
// returns the wildcard captures in traversal order (pre-order,
// left-to-right); on failure it returns (nil, false) and the caller
// falls through to the next pattern in the table.
func ExprMatch(pattern, value *Expr) ([]*Expr, bool) {
	var captures []*Expr
	var boundLanes uint16
	if !matchExpr(pattern, value, &captures, &boundLanes) {
		return nil, false
	}
	return captures, true
}

func matchLanes(patternLanes, valueLanes uint16, bound *uint16) bool {
	if patternLanes != 0 {
		return patternLanes == valueLanes
	}
	if *bound == 0 {
		*bound = valueLanes
		return true
	}
	return *bound == valueLanes
}

func matchExpr(p, v *Expr, captures *[]*Expr, boundLanes *uint16) bool {
	if p == nil || v == nil {
		return p == v
	}
	if p.IsWildcard() {
		if p.typ.Code != v.typ.Code || p.typ.Bits != v.typ.Bits {
			return false
		}
		if !matchLanes(p.typ.Lanes, v.typ.Lanes, boundLanes) {
			return false
		}
		*captures = append(*captures, v)
		return true
	}
	if p.op != v.op {
		return false
	}
	if p.typ.Code != v.typ.Code || p.typ.Bits != v.typ.Bits {
		return false
	}
	if !matchLanes(p.typ.Lanes, v.typ.Lanes, boundLanes) {
		return false
	}
	switch p.op {
	case OpIntImm:
		return p.intImm == v.intImm
	case OpUIntImm:
		return p.uintImm == v.uintImm
	case OpVariable:
		return p.name == v.name
	case OpLoad:
		return p.name == v.name && matchExpr(p.a, v.a, captures, boundLanes)
	case OpCall:
		if p.name != v.name || p.callType != v.callType || len(p.args) != len(v.args) {
			return false
		}
		for i := range p.args {
			if !matchExpr(p.args[i], v.args[i], captures, boundLanes) {
				return false
			}
		}
		return true
	case OpBroadcast, OpRamp:
		return matchExpr(p.a, v.a, captures, boundLanes) && matchExpr(p.b, v.b, captures, boundLanes)
	case OpSelect:
		return matchExpr(p.a, v.a, captures, boundLanes) &&
			matchExpr(p.b, v.b, captures, boundLanes) &&
			matchExpr(p.c, v.c, captures, boundLanes)
	case OpLet:
		return p.name == v.name && matchExpr(p.a, v.a, captures, boundLanes) && matchExpr(p.b, v.b, captures, boundLanes)
	case OpCast, OpNot:
		return matchExpr(p.a, v.a, captures, boundLanes)
	default: // binary arithmetic, comparisons, And/Or
		return matchExpr(p.a, v.a, captures, boundLanes) && matchExpr(p.b, v.b, captures, boundLanes)
	}
}
