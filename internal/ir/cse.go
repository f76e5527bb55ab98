package ir

import "fmt"

// CommonSubexprElimination implements the §6
// "common_subexpression_elimination(e)" contract for a single
// expression: a bottom-up rebuild that shares one *Expr pointer for every
// structurally-identical subtree. Because children are canonicalized
// before their parent, two parents built from already-canonical children
// are structurally identical iff their child pointers and their own
// op/type/scalar-fields are identical — so the key for each node can be
// built from pointer identity of its (already-deduped) children instead
// of a full recursive structural key.
func CommonSubexprElimination(e *Expr) *Expr {
	seen := make(map[string]*Expr)
	return cse(e, seen)
}

func cse(e *Expr, seen map[string]*Expr) *Expr {
	if e == nil {
		return nil
	}
	var a, b, c *Expr
	var args []*Expr
	switch e.op {
	case OpIntImm, OpUIntImm, OpVariable:
		// leaves: nothing to recurse into.
	case OpCall:
		args = make([]*Expr, len(e.args))
		for i, arg := range e.args {
			args[i] = cse(arg, seen)
		}
	case OpLoad, OpCast, OpNot, OpBroadcast:
		a = cse(e.a, seen)
	case OpSelect:
		a, b, c = cse(e.a, seen), cse(e.b, seen), cse(e.c, seen)
	default: // Ramp, Let, binary arithmetic/comparison/logical
		a, b = cse(e.a, seen), cse(e.b, seen)
	}

	node := e
	if a != e.a || b != e.b || c != e.c || !samePtrSlice(args, e.args) {
		node = WithChildren(e, a, b, c, args)
	}

	key := exprKey(node)
	if canon, ok := seen[key]; ok {
		return canon
	}
	seen[key] = node
	return node
}

func samePtrSlice(a, b []*Expr) bool {
	if a == nil {
		return b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func exprKey(e *Expr) string {
	switch e.op {
	case OpIntImm:
		return fmt.Sprintf("%d|%s|%d", e.op, e.typ, e.intImm)
	case OpUIntImm:
		return fmt.Sprintf("%d|%s|%d", e.op, e.typ, e.uintImm)
	case OpVariable:
		return fmt.Sprintf("%d|%s|%s", e.op, e.typ, e.name)
	case OpLoad:
		return fmt.Sprintf("%d|%s|%s|%s|%s|%p", e.op, e.typ, e.name, e.image, e.param, e.a)
	case OpCall:
		key := fmt.Sprintf("%d|%s|%s|%d|", e.op, e.typ, e.name, e.callType)
		for _, arg := range e.args {
			key += fmt.Sprintf("%p,", arg)
		}
		return key
	case OpBroadcast, OpRamp:
		return fmt.Sprintf("%d|%s|%d|%p|%p", e.op, e.typ, e.lanes, e.a, e.b)
	case OpSelect:
		return fmt.Sprintf("%d|%s|%p|%p|%p", e.op, e.typ, e.a, e.b, e.c)
	case OpLet:
		return fmt.Sprintf("%d|%s|%s|%p|%p", e.op, e.typ, e.name, e.a, e.b)
	default:
		return fmt.Sprintf("%d|%s|%p|%p", e.op, e.typ, e.a, e.b)
	}
}
