package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// OptimizeInstructions runs PatternMatcher over every expression in s,
// then InterleaveEliminator to cancel any interleave/deinterleave
// marker pairs the pattern rewrites introduced (a widening multiply
// whose accumulator had to be deinterleaved before the add, a cast that
// pushed a cast inside an interleaved operand).
func OptimizeInstructions(s *ir.Stmt) *ir.Stmt {
	pm := NewPatternMatcher()
	rewritten := mutateStmtExprs(s, pm.Mutate)
	return NewInterleaveEliminator().MutateStmt(rewritten)
}

// OptimizeShuffles runs BoundedShuffleRewriter over every Load in s.
// spec.md §6 defines this entry point as BoundedShuffleRewriter alone;
// unlike OptimizeInstructions it is not followed by InterleaveEliminator.
func OptimizeShuffles(s *ir.Stmt) *ir.Stmt {
	return NewBoundedShuffleRewriter().MutateStmt(s)
}

// mutateStmtExprs threads an *ir.Expr mutator through every statement
// kind, the same traversal shape InterleaveEliminator.MutateStmt and
// BoundedShuffleRewriter.MutateStmt each also implement for their own
// mutator. PatternMatcher has no scope to carry across the walk, so it
// doesn't need its own copy of this traversal the way the other two do.
func mutateStmtExprs(s *ir.Stmt, mutate func(*ir.Expr) *ir.Expr) *ir.Stmt {
	if s == nil {
		return nil
	}
	switch s.Op() {
	case ir.StmtLet:
		return ir.LetStmt(s.Name(), mutate(s.Expr()), mutateStmtExprs(s.Body(), mutate))
	case ir.StmtStore:
		return ir.Store(s.Name(), mutate(s.Index()), mutate(s.Expr()))
	case ir.StmtBlock:
		stmts := make([]*ir.Stmt, len(s.Stmts()))
		for i, inner := range s.Stmts() {
			stmts[i] = mutateStmtExprs(inner, mutate)
		}
		return ir.Block(stmts...)
	case ir.StmtIfThenElse:
		return ir.IfThenElse(mutate(s.Expr()), mutateStmtExprs(s.Body(), mutate), mutateStmtExprs(s.Else(), mutate))
	case ir.StmtEvaluate:
		return ir.Evaluate(mutate(s.Expr()))
	default:
		panicFatal(nil, "unhandled statement op")
		return nil
	}
}
