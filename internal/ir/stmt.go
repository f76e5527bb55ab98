package ir

import "fmt"

// StmtOp tags the variant of a Stmt. Only LetStmt carries rewriter-
// relevant semantics; Store/Block/IfThenElse/Evaluate are passed
// through unchanged by every mutator — present so a Stmt tree can host
// Load expressions and scope-introducing lets at arbitrary depth, and
// so BoundedShuffleRewriter has somewhere to recurse to find them.
type StmtOp uint8

const (
	StmtLet StmtOp = 1 + iota
	StmtStore
	StmtBlock
	StmtIfThenElse
	StmtEvaluate
)

func (op StmtOp) String() string {
	switch op {
	case StmtLet:
		return "LetStmt"
	case StmtStore:
		return "Store"
	case StmtBlock:
		return "Block"
	case StmtIfThenElse:
		return "IfThenElse"
	case StmtEvaluate:
		return "Evaluate"
	default:
		panic(fmt.Sprintf("BUG: invalid stmt op %d", op))
	}
}

// Stmt is the flattened statement node, same rationale as Expr.
type Stmt struct {
	op   StmtOp
	name string // LetStmt/Store name

	expr  *Expr // LetStmt.value, Store.value, IfThenElse.cond, Evaluate.expr
	index *Expr // Store.index

	body, elseBody *Stmt   // LetStmt.body, IfThenElse.then/else
	stmts          []*Stmt // Block.stmts
}

func (s *Stmt) Op() StmtOp     { return s.op }
func (s *Stmt) Name() string   { return s.name }
func (s *Stmt) Expr() *Expr    { return s.expr }
func (s *Stmt) Index() *Expr   { return s.index }
func (s *Stmt) Body() *Stmt    { return s.body }
func (s *Stmt) Else() *Stmt    { return s.elseBody }
func (s *Stmt) Stmts() []*Stmt { return s.stmts }

// LetStmt constructs a statement-level binding.
func LetStmt(name string, value *Expr, body *Stmt) *Stmt {
	return &Stmt{op: StmtLet, name: name, expr: value, body: body}
}

// Store constructs a write of value to name[index].
func Store(name string, index, value *Expr) *Stmt {
	return &Stmt{op: StmtStore, name: name, index: index, expr: value}
}

// Block constructs a sequence of statements.
func Block(stmts ...*Stmt) *Stmt {
	return &Stmt{op: StmtBlock, stmts: stmts}
}

// IfThenElse constructs a conditional; elseBranch may be nil.
func IfThenElse(cond *Expr, then, elseBranch *Stmt) *Stmt {
	return &Stmt{op: StmtIfThenElse, expr: cond, body: then, elseBody: elseBranch}
}

// Evaluate constructs a statement that evaluates expr for side effects
// only (used to host bare Call expressions at statement level).
func Evaluate(expr *Expr) *Stmt {
	return &Stmt{op: StmtEvaluate, expr: expr}
}

func (s *Stmt) String() string {
	if s == nil {
		return "<nil>"
	}
	switch s.op {
	case StmtLet:
		return fmt.Sprintf("let %s = %s;\n%s", s.name, s.expr, s.body)
	case StmtStore:
		return fmt.Sprintf("%s[%s] = %s;", s.name, s.index, s.expr)
	case StmtBlock:
		out := "{\n"
		for _, c := range s.stmts {
			out += c.String() + "\n"
		}
		return out + "}"
	case StmtIfThenElse:
		if s.elseBody != nil {
			return fmt.Sprintf("if (%s) %s else %s", s.expr, s.body, s.elseBody)
		}
		return fmt.Sprintf("if (%s) %s", s.expr, s.body)
	case StmtEvaluate:
		return fmt.Sprintf("%s;", s.expr)
	default:
		panic(fmt.Sprintf("BUG: invalid stmt op %d", s.op))
	}
}
