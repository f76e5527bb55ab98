package ir

import "fmt"

// construct.go holds the smart constructors for every Expr variant.
// Mirroring builder.AllocateInstruction + As*() in the teacher's
// ssa.Builder, these are the only way to produce an *Expr: callers never
// touch unexported fields directly, which is what keeps every Expr
// immutable once built.

func intImm(t Type, v int64) *Expr {
	return &Expr{op: OpIntImm, typ: t, intImm: v}
}

func uintImm(t Type, v uint64) *Expr {
	return &Expr{op: OpUIntImm, typ: t, uintImm: v}
}

// IntImm constructs a signed integer constant of type t.
func IntImm(t Type, v int64) *Expr { return intImm(t, v) }

// UIntImm constructs an unsigned integer constant of type t.
func UIntImm(t Type, v uint64) *Expr { return uintImm(t, v) }

// Variable constructs a named leaf of type t. The wildcard convention
// (name == "*") is handled uniformly here: match.go and the pattern
// tables construct wildcards through this same entry point.
func Variable(t Type, name string) *Expr {
	return &Expr{op: OpVariable, typ: t, name: name}
}

// Cast constructs a type coercion of value to t.
func Cast(t Type, value *Expr) *Expr {
	return &Expr{op: OpCast, typ: t, a: value}
}

// Broadcast replicates a scalar value to lanes copies. lanes == 0 is the
// AnyLanes wildcard marker (see Type doc).
func Broadcast(value *Expr, lanes uint16) *Expr {
	return &Expr{op: OpBroadcast, typ: value.typ.WithLanes(lanes), a: value, lanes: lanes}
}

// Ramp constructs base, base+stride, base+2*stride, ... for lanes lanes.
func Ramp(base, stride *Expr, lanes uint16) *Expr {
	return &Expr{op: OpRamp, typ: base.typ.WithLanes(lanes), a: base, b: stride, lanes: lanes}
}

func binOp(op Opcode, a, b *Expr) *Expr {
	if !a.typ.Equal(b.typ) {
		panic(fmt.Sprintf("BUG: %s operand type mismatch: %s vs %s", op, a.typ, b.typ))
	}
	return &Expr{op: op, typ: a.typ, a: a, b: b}
}

func Add(a, b *Expr) *Expr { return binOp(OpAdd, a, b) }
func Sub(a, b *Expr) *Expr { return binOp(OpSub, a, b) }
func Mul(a, b *Expr) *Expr { return binOp(OpMul, a, b) }
func Div(a, b *Expr) *Expr { return binOp(OpDiv, a, b) }
func Mod(a, b *Expr) *Expr { return binOp(OpMod, a, b) }
func Min(a, b *Expr) *Expr { return binOp(OpMin, a, b) }
func Max(a, b *Expr) *Expr { return binOp(OpMax, a, b) }

func cmp(op Opcode, a, b *Expr) *Expr {
	if !a.typ.Equal(b.typ) {
		panic(fmt.Sprintf("BUG: %s operand type mismatch: %s vs %s", op, a.typ, b.typ))
	}
	return &Expr{op: op, typ: Type{Code: UInt, Bits: 1, Lanes: a.typ.Lanes}, a: a, b: b}
}

func EQ(a, b *Expr) *Expr { return cmp(OpEQ, a, b) }
func NE(a, b *Expr) *Expr { return cmp(OpNE, a, b) }
func LT(a, b *Expr) *Expr { return cmp(OpLT, a, b) }
func LE(a, b *Expr) *Expr { return cmp(OpLE, a, b) }
func GT(a, b *Expr) *Expr { return cmp(OpGT, a, b) }
func GE(a, b *Expr) *Expr { return cmp(OpGE, a, b) }

func And(a, b *Expr) *Expr { return &Expr{op: OpAnd, typ: a.typ, a: a, b: b} }
func Or(a, b *Expr) *Expr  { return &Expr{op: OpOr, typ: a.typ, a: a, b: b} }
func Not(a *Expr) *Expr    { return &Expr{op: OpNot, typ: a.typ, a: a} }

// Select constructs a lane-wise mux: cond ? t : f.
func Select(cond, t, f *Expr) *Expr {
	return &Expr{op: OpSelect, typ: t.typ, a: cond, b: t, c: f}
}

// Load constructs a memory read of type t at index, from either image or
// param (exactly one should be non-empty; both empty denotes an
// anonymous/synthetic buffer used only in tests).
func Load(t Type, name string, index *Expr, image, param string) *Expr {
	return &Expr{op: OpLoad, typ: t, name: name, a: index, image: image, param: param}
}

// Call constructs a call to a named pure intrinsic/extern of type t.
func Call(t Type, name string, args []*Expr, ct CallType) *Expr {
	return &Expr{op: OpCall, typ: t, name: name, args: args, callType: ct}
}

// Let constructs an expression-level binding: let name = value in body.
// The result type is body's type.
func Let(name string, value, body *Expr) *Expr {
	return &Expr{op: OpLet, typ: body.typ, name: name, a: value, b: body}
}

// WithChildren returns a shallow copy of e with its a/b/c/args children
// replaced. Op, Type, Name and every other field are carried over
// unchanged. This is the one place outside of this file that is allowed
// to treat Expr as "the same node, rebuilt" rather than going through a
// dedicated constructor — every mutator in internal/hexagon that
// rewrites a node's children but not its op/type/name uses this instead
// of re-deriving the node from scratch, the same shortcut
// ssa.Instruction's own field setters give the teacher's mutators.
func WithChildren(e *Expr, a, b, c *Expr, args []*Expr) *Expr {
	ne := *e
	ne.a, ne.b, ne.c, ne.args = a, b, c, args
	return &ne
}
