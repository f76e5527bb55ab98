package ir

// Substitute implements the §6 "substitute(name, value, body)" contract:
// alpha-safe replacement of every free occurrence of variable name with
// value inside body. A Let that rebinds name shadows it for its own
// body subtree (but not for its own bound value, which is still
// evaluated in the outer scope) — the standard capture-avoiding rule.
func Substitute(name string, value, body *Expr) *Expr {
	return substExpr(name, value, body)
}

func substExpr(name string, value, e *Expr) *Expr {
	if e == nil {
		return nil
	}
	switch e.op {
	case OpIntImm, OpUIntImm:
		return e
	case OpVariable:
		if e.name == name {
			return value
		}
		return e
	case OpLet:
		na := substExpr(name, value, e.a)
		nb := e.b
		if e.name != name {
			nb = substExpr(name, value, e.b)
		}
		if na == e.a && nb == e.b {
			return e
		}
		return WithChildren(e, na, nb, nil, nil)
	case OpCall:
		changed := false
		newArgs := make([]*Expr, len(e.args))
		for i, a := range e.args {
			na := substExpr(name, value, a)
			newArgs[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return e
		}
		return WithChildren(e, nil, nil, nil, newArgs)
	case OpLoad:
		na := substExpr(name, value, e.a)
		if na == e.a {
			return e
		}
		return WithChildren(e, na, nil, nil, nil)
	case OpBroadcast:
		na := substExpr(name, value, e.a)
		if na == e.a {
			return e
		}
		return WithChildren(e, na, nil, nil, nil)
	case OpRamp:
		na := substExpr(name, value, e.a)
		nb := substExpr(name, value, e.b)
		if na == e.a && nb == e.b {
			return e
		}
		return WithChildren(e, na, nb, nil, nil)
	case OpSelect:
		na := substExpr(name, value, e.a)
		nb := substExpr(name, value, e.b)
		nc := substExpr(name, value, e.c)
		if na == e.a && nb == e.b && nc == e.c {
			return e
		}
		return WithChildren(e, na, nb, nc, nil)
	case OpCast, OpNot:
		na := substExpr(name, value, e.a)
		if na == e.a {
			return e
		}
		return WithChildren(e, na, nil, nil, nil)
	default: // binary arithmetic, comparisons, And/Or
		na := substExpr(name, value, e.a)
		nb := substExpr(name, value, e.b)
		if na == e.a && nb == e.b {
			return e
		}
		return WithChildren(e, na, nb, nil, nil)
	}
}

// ExprUsesVar implements the §6 "expr_uses_var" contract: true iff name
// occurs free in e.
func ExprUsesVar(e *Expr, name string) bool {
	if e == nil {
		return false
	}
	switch e.op {
	case OpIntImm, OpUIntImm:
		return false
	case OpVariable:
		return e.name == name
	case OpLet:
		if ExprUsesVar(e.a, name) {
			return true
		}
		if e.name == name {
			return false // shadowed in body
		}
		return ExprUsesVar(e.b, name)
	case OpCall:
		for _, a := range e.args {
			if ExprUsesVar(a, name) {
				return true
			}
		}
		return false
	case OpLoad:
		return ExprUsesVar(e.a, name)
	case OpBroadcast, OpCast, OpNot:
		return ExprUsesVar(e.a, name)
	case OpSelect:
		return ExprUsesVar(e.a, name) || ExprUsesVar(e.b, name) || ExprUsesVar(e.c, name)
	default:
		return ExprUsesVar(e.a, name) || ExprUsesVar(e.b, name)
	}
}

// StmtUsesVar implements the §6 "stmt_uses_var" contract.
func StmtUsesVar(s *Stmt, name string) bool {
	if s == nil {
		return false
	}
	switch s.op {
	case StmtLet:
		if ExprUsesVar(s.expr, name) {
			return true
		}
		if s.name == name {
			return false
		}
		return StmtUsesVar(s.body, name)
	case StmtStore:
		return ExprUsesVar(s.index, name) || ExprUsesVar(s.expr, name)
	case StmtBlock:
		for _, c := range s.stmts {
			if StmtUsesVar(c, name) {
				return true
			}
		}
		return false
	case StmtIfThenElse:
		return ExprUsesVar(s.expr, name) || StmtUsesVar(s.body, name) || StmtUsesVar(s.elseBody, name)
	case StmtEvaluate:
		return ExprUsesVar(s.expr, name)
	default:
		return false
	}
}
