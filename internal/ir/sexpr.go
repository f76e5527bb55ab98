package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// sexpr.go is the textual Stmt/Expr syntax used by cmd/hvxopt and by
// tests that want readable golden files, a SPEC_FULL.md §4 supplement —
// grounded on the teacher's own preference for a human-readable IR text
// form (ssa.Instruction.Format, ssa.Type.String) rather than a binary
// encoding.
//
// Grammar (s-expressions, one type token per typed node):
//
//	type    := "i8".."u64" ["x" <lanes>]
//	expr    := <int>                              ; bare integer, read as an i32 constant wherever an expr may appear
//	         | "(" "const" type <int> ")"
//	         | "(" "var" type <name> ")"
//	         | "(" "cast" type expr ")"
//	         | "(" "broadcast" expr <lanes> ")"
//	         | "(" "ramp" expr expr <lanes> ")"
//	         | "(" ("+"|"-"|"*"|"/"|"%"|"min"|"max"|"=="|"!="|"<"|"<="|">"|">="|"and"|"or") expr expr ")"
//	         | "(" "not" expr ")"
//	         | "(" "select" expr expr expr ")"
//	         | "(" "load" type <name> expr <image> <param> ")"
//	         | "(" "call" type <name> ("extern"|"intrinsic") expr* ")"
//	         | "(" "let" <name> expr expr ")"
//	stmt    := "(" "let-stmt" <name> expr stmt ")"
//	         | "(" "store" <name> expr expr ")"
//	         | "(" "block" stmt* ")"
//	         | "(" "if" expr stmt [stmt] ")"
//	         | "(" "eval" expr ")"
//
// "-" as a name token denotes an anonymous buffer ("").

// Print returns e.String(), the debugging form; that form is not the
// s-expression grammar above, and ParseExpr does not accept it back.
func Print(e *Expr) string { return e.String() }

// PrintStmt returns s.String(), the same debugging form; ParseStmt does
// not accept it back.
func PrintStmt(s *Stmt) string { return s.String() }

// ParseExpr parses a single s-expression into an *Expr.
func ParseExpr(src string) (*Expr, error) {
	toks := tokenize(src)
	p := &parser{toks: toks}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("trailing tokens after expression: %v", p.toks[p.pos:])
	}
	return e, nil
}

// ParseStmt parses a single s-expression into a *Stmt.
func ParseStmt(src string) (*Stmt, error) {
	toks := tokenize(src)
	p := &parser{toks: toks}
	s, err := p.stmt()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("trailing tokens after statement: %v", p.toks[p.pos:])
	}
	return s, nil
}

func tokenize(src string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range src {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (string, error) {
	t, ok := p.peek()
	if !ok {
		return "", fmt.Errorf("unexpected end of input")
	}
	p.pos++
	return t, nil
}

func (p *parser) expect(tok string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t != tok {
		return fmt.Errorf("expected %q, got %q", tok, t)
	}
	return nil
}

func (p *parser) expr() (*Expr, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	if t != "(" {
		v, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bare token %q is not an integer literal", t)
		}
		return IntImm(Scalar(Int, 32), v), nil
	}
	head, err := p.next()
	if err != nil {
		return nil, err
	}
	var result *Expr
	switch head {
	case "const":
		ty, err := p.typ()
		if err != nil {
			return nil, err
		}
		vt, err := p.next()
		if err != nil {
			return nil, err
		}
		if ty.Code == UInt {
			v, err := strconv.ParseUint(vt, 10, 64)
			if err != nil {
				return nil, err
			}
			result = UIntImm(ty, v)
		} else {
			v, err := strconv.ParseInt(vt, 10, 64)
			if err != nil {
				return nil, err
			}
			result = IntImm(ty, v)
		}
	case "var":
		ty, err := p.typ()
		if err != nil {
			return nil, err
		}
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		result = Variable(ty, name)
	case "cast":
		ty, err := p.typ()
		if err != nil {
			return nil, err
		}
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = Cast(ty, v)
	case "broadcast":
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		lanes, err := p.uintTok()
		if err != nil {
			return nil, err
		}
		result = Broadcast(v, uint16(lanes))
	case "ramp":
		base, err := p.expr()
		if err != nil {
			return nil, err
		}
		stride, err := p.expr()
		if err != nil {
			return nil, err
		}
		lanes, err := p.uintTok()
		if err != nil {
			return nil, err
		}
		result = Ramp(base, stride, uint16(lanes))
	case "+", "-", "*", "/", "%", "min", "max", "==", "!=", "<", "<=", ">", ">=", "and", "or":
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		b, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = binOpFromToken(head, a, b)
	case "not":
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = Not(a)
	case "select":
		c, err := p.expr()
		if err != nil {
			return nil, err
		}
		t, err := p.expr()
		if err != nil {
			return nil, err
		}
		f, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = Select(c, t, f)
	case "load":
		ty, err := p.typ()
		if err != nil {
			return nil, err
		}
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		idx, err := p.expr()
		if err != nil {
			return nil, err
		}
		image, err := p.next()
		if err != nil {
			return nil, err
		}
		param, err := p.next()
		if err != nil {
			return nil, err
		}
		result = Load(ty, name, idx, dashEmpty(image), dashEmpty(param))
	case "call":
		ty, err := p.typ()
		if err != nil {
			return nil, err
		}
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		ctTok, err := p.next()
		if err != nil {
			return nil, err
		}
		ct := PureExtern
		if ctTok == "intrinsic" {
			ct = PureIntrinsic
		}
		var args []*Expr
		for {
			tk, ok := p.peek()
			if !ok {
				return nil, fmt.Errorf("unterminated call")
			}
			if tk == ")" {
				break
			}
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		result = Call(ty, name, args, ct)
	case "let":
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		val, err := p.expr()
		if err != nil {
			return nil, err
		}
		body, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = Let(name, val, body)
	default:
		return nil, fmt.Errorf("unknown expr head %q", head)
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *parser) stmt() (*Stmt, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	head, err := p.next()
	if err != nil {
		return nil, err
	}
	var result *Stmt
	switch head {
	case "let-stmt":
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		val, err := p.expr()
		if err != nil {
			return nil, err
		}
		body, err := p.stmt()
		if err != nil {
			return nil, err
		}
		result = LetStmt(name, val, body)
	case "store":
		name, err := p.next()
		if err != nil {
			return nil, err
		}
		idx, err := p.expr()
		if err != nil {
			return nil, err
		}
		val, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = Store(name, idx, val)
	case "block":
		var stmts []*Stmt
		for {
			tk, ok := p.peek()
			if !ok {
				return nil, fmt.Errorf("unterminated block")
			}
			if tk == ")" {
				break
			}
			s, err := p.stmt()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
		}
		result = Block(stmts...)
	case "if":
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		var elseBranch *Stmt
		if tk, ok := p.peek(); ok && tk != ")" {
			elseBranch, err = p.stmt()
			if err != nil {
				return nil, err
			}
		}
		result = IfThenElse(cond, then, elseBranch)
	case "eval":
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		result = Evaluate(e)
	default:
		return nil, fmt.Errorf("unknown stmt head %q", head)
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *parser) uintTok() (uint64, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(t, 10, 64)
}

func dashEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func binOpFromToken(tok string, a, b *Expr) *Expr {
	switch tok {
	case "+":
		return Add(a, b)
	case "-":
		return Sub(a, b)
	case "*":
		return Mul(a, b)
	case "/":
		return Div(a, b)
	case "%":
		return Mod(a, b)
	case "min":
		return Min(a, b)
	case "max":
		return Max(a, b)
	case "==":
		return EQ(a, b)
	case "!=":
		return NE(a, b)
	case "<":
		return LT(a, b)
	case "<=":
		return LE(a, b)
	case ">":
		return GT(a, b)
	case ">=":
		return GE(a, b)
	case "and":
		return And(a, b)
	case "or":
		return Or(a, b)
	default:
		panic("BUG: unreachable binOpFromToken " + tok)
	}
}

func (p *parser) typ() (Type, error) {
	t, err := p.next()
	if err != nil {
		return Type{}, err
	}
	if len(t) < 2 {
		return Type{}, fmt.Errorf("invalid type token %q", t)
	}
	var code Code
	switch t[0] {
	case 'i':
		code = Int
	case 'u':
		code = UInt
	default:
		return Type{}, fmt.Errorf("invalid type token %q", t)
	}
	rest := t[1:]
	lanes := uint16(1)
	if idx := strings.IndexByte(rest, 'x'); idx >= 0 {
		lv, err := strconv.ParseUint(rest[idx+1:], 10, 16)
		if err != nil {
			return Type{}, err
		}
		lanes = uint16(lv)
		rest = rest[:idx]
	}
	bits, err := strconv.ParseUint(rest, 10, 8)
	if err != nil {
		return Type{}, fmt.Errorf("invalid type token %q: %w", t, err)
	}
	return Type{Code: code, Bits: uint8(bits), Lanes: lanes}, nil
}
