package ir

import (
	"fmt"
	"strings"
)

// Opcode tags the variant of an Expr.
type Opcode uint8

const (
	OpIntImm Opcode = 1 + iota
	OpUIntImm
	OpVariable
	OpCast
	OpBroadcast
	OpRamp
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpEQ
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpAnd
	OpOr
	OpNot
	OpSelect
	OpLoad
	OpCall
	OpLet
)

func (op Opcode) String() string {
	switch op {
	case OpIntImm:
		return "IntImm"
	case OpUIntImm:
		return "UIntImm"
	case OpVariable:
		return "Variable"
	case OpCast:
		return "Cast"
	case OpBroadcast:
		return "Broadcast"
	case OpRamp:
		return "Ramp"
	case OpAdd:
		return "Add"
	case OpSub:
		return "Sub"
	case OpMul:
		return "Mul"
	case OpDiv:
		return "Div"
	case OpMod:
		return "Mod"
	case OpMin:
		return "Min"
	case OpMax:
		return "Max"
	case OpEQ:
		return "EQ"
	case OpNE:
		return "NE"
	case OpLT:
		return "LT"
	case OpLE:
		return "LE"
	case OpGT:
		return "GT"
	case OpGE:
		return "GE"
	case OpAnd:
		return "And"
	case OpOr:
		return "Or"
	case OpNot:
		return "Not"
	case OpSelect:
		return "Select"
	case OpLoad:
		return "Load"
	case OpCall:
		return "Call"
	case OpLet:
		return "Let"
	default:
		panic(fmt.Sprintf("BUG: invalid opcode %d", op))
	}
}

// CallType classifies a Call expression. Two kinds are modeled:
// PureExtern (a named external intrinsic, referentially transparent)
// and PureIntrinsic (an in-language pure intrinsic, e.g. the
// dynamic_shuffle produced by BoundedShuffleRewriter).
type CallType uint8

const (
	PureExtern CallType = iota
	PureIntrinsic
)

func (c CallType) String() string {
	if c == PureIntrinsic {
		return "pure_intrinsic"
	}
	return "pure_extern"
}

// Expr is the single flattened representation for every IR expression
// node, tagged by Opcode. A dedicated Go type per variant would force
// every consumer (pattern matching, mutation, scope tracking) to type
// switch on an interface; instead — mirroring ssa.Instruction in the
// teacher package, which flattens every SSA instruction into one struct
// "since Go doesn't have union type" — every variant's payload lives in
// a small set of shared fields and is interpreted according to Op.
//
// Expr is an immutable value once constructed: every mutator in
// internal/hexagon builds new *Expr trees rather than editing fields in
// place (the field names are unexported exactly to enforce this; callers
// outside the package only ever see the accessor methods and the smart
// constructors in construct.go).
type Expr struct {
	op  Opcode
	typ Type

	intImm  int64
	uintImm uint64

	name string // Variable/Let/Load/Call name

	a, b, c *Expr   // generic children; meaning depends on op, see accessors
	args    []*Expr // Call args only

	lanes uint16 // Broadcast/Ramp lane count (mirrors typ.Lanes; 0 is the wildcard marker on Broadcast wildcards)

	callType CallType // Call only
	image    string   // Load only: opaque image handle identifier, "" if none
	param    string   // Load only: opaque param handle identifier, "" if none
}

// Op returns the node's opcode.
func (e *Expr) Op() Opcode { return e.op }

// Type returns the node's static type. Every Expr carries one immutable
// type.
func (e *Expr) Type() Type { return e.typ }

// IntImmValue returns the constant value of an OpIntImm node.
func (e *Expr) IntImmValue() int64 {
	mustOp(e, OpIntImm)
	return e.intImm
}

// UIntImmValue returns the constant value of an OpUIntImm node.
func (e *Expr) UIntImmValue() uint64 {
	mustOp(e, OpUIntImm)
	return e.uintImm
}

// Name returns the variable/let/load/call name.
func (e *Expr) Name() string { return e.name }

// A returns the first child: Cast.value, Broadcast.value, Ramp.base,
// the left operand of any binary/comparison/logical op, Select.cond,
// Load.index, Let.value.
func (e *Expr) A() *Expr { return e.a }

// B returns the second child: Ramp.stride, the right operand of any
// binary/comparison/logical op, Select.then, Let.body.
func (e *Expr) B() *Expr { return e.b }

// C returns the third child: Select.else. Nil for every other op.
func (e *Expr) C() *Expr { return e.c }

// Args returns a Call's argument list.
func (e *Expr) Args() []*Expr { return e.args }

// Lanes returns the explicit lane count carried by Broadcast/Ramp nodes
// (0 denotes the any-lane-count wildcard marker).
func (e *Expr) Lanes() uint16 { return e.lanes }

// CallType returns a Call node's classification.
func (e *Expr) CallType() CallType {
	mustOp(e, OpCall)
	return e.callType
}

// Image returns a Load's opaque image handle, "" if the load targets a
// parameter buffer instead.
func (e *Expr) Image() string {
	mustOp(e, OpLoad)
	return e.image
}

// Param returns a Load's opaque parameter handle, "" if the load targets
// an image instead.
func (e *Expr) Param() string {
	mustOp(e, OpLoad)
	return e.param
}

// IsWildcard reports whether e is the pattern wildcard Variable("*", ...).
func (e *Expr) IsWildcard() bool {
	return e.op == OpVariable && e.name == "*"
}

// IsAnyLanesWildcard reports whether e is a wildcard whose pattern lane
// count is the AnyLanes marker (lanes == 0), matching a vector of any
// lane count.
func (e *Expr) IsAnyLanesWildcard() bool {
	return e.IsWildcard() && e.typ.Lanes == 0
}

// IsConst reports whether e is an integer constant (IntImm or UIntImm).
func (e *Expr) IsConst() bool {
	return e.op == OpIntImm || e.op == OpUIntImm
}

// ConstValue returns e's constant value as an int64 (sign-extending for
// UIntImm is never performed: callers that need the raw bit pattern
// should branch on Op() themselves). Panics if e is not constant.
func (e *Expr) ConstValue() int64 {
	switch e.op {
	case OpIntImm:
		return e.intImm
	case OpUIntImm:
		return int64(e.uintImm)
	default:
		panic("BUG: ConstValue of non-constant " + e.String())
	}
}

func mustOp(e *Expr, op Opcode) {
	if e.op != op {
		panic(fmt.Sprintf("BUG: expected %s, got %s", op, e.op))
	}
}

// String renders e as a compact debugging form. internal/ir/sexpr.go
// parses the s-expression syntax used by cmd/hvxopt, but its Print and
// PrintStmt return this form, which the parser does not accept; it also
// serves panic messages and test failure output, the way
// ssa.Instruction.Format serves the teacher package.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.op {
	case OpIntImm:
		return fmt.Sprintf("%d", e.intImm)
	case OpUIntImm:
		return fmt.Sprintf("%du", e.uintImm)
	case OpVariable:
		return e.name
	case OpCast:
		return fmt.Sprintf("%s(%s)", e.typ, e.a)
	case OpBroadcast:
		return fmt.Sprintf("broadcast(%s,%d)", e.a, e.lanes)
	case OpRamp:
		return fmt.Sprintf("ramp(%s,%s,%d)", e.a, e.b, e.lanes)
	case OpAdd:
		return fmt.Sprintf("(%s + %s)", e.a, e.b)
	case OpSub:
		return fmt.Sprintf("(%s - %s)", e.a, e.b)
	case OpMul:
		return fmt.Sprintf("(%s * %s)", e.a, e.b)
	case OpDiv:
		return fmt.Sprintf("(%s / %s)", e.a, e.b)
	case OpMod:
		return fmt.Sprintf("(%s %% %s)", e.a, e.b)
	case OpMin:
		return fmt.Sprintf("min(%s, %s)", e.a, e.b)
	case OpMax:
		return fmt.Sprintf("max(%s, %s)", e.a, e.b)
	case OpEQ:
		return fmt.Sprintf("(%s == %s)", e.a, e.b)
	case OpNE:
		return fmt.Sprintf("(%s != %s)", e.a, e.b)
	case OpLT:
		return fmt.Sprintf("(%s < %s)", e.a, e.b)
	case OpLE:
		return fmt.Sprintf("(%s <= %s)", e.a, e.b)
	case OpGT:
		return fmt.Sprintf("(%s > %s)", e.a, e.b)
	case OpGE:
		return fmt.Sprintf("(%s >= %s)", e.a, e.b)
	case OpAnd:
		return fmt.Sprintf("(%s && %s)", e.a, e.b)
	case OpOr:
		return fmt.Sprintf("(%s || %s)", e.a, e.b)
	case OpNot:
		return fmt.Sprintf("!%s", e.a)
	case OpSelect:
		return fmt.Sprintf("select(%s, %s, %s)", e.a, e.b, e.c)
	case OpLoad:
		return fmt.Sprintf("%s[%s]@%s", e.name, e.a, e.typ)
	case OpCall:
		parts := make([]string, len(e.args))
		for i, a := range e.args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", e.name, strings.Join(parts, ", "))
	case OpLet:
		return fmt.Sprintf("let %s = %s in %s", e.name, e.a, e.b)
	default:
		panic(fmt.Sprintf("BUG: invalid opcode %d", e.op))
	}
}

// Equal reports deep structural equality, ignoring nothing — it is the
// primitive idempotence/cancellation-law tests in internal/hexagon build
// on (alongside go-cmp for friendlier diffs).
func (e *Expr) Equal(o *Expr) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.op != o.op || !e.typ.Equal(o.typ) {
		return false
	}
	switch e.op {
	case OpIntImm:
		return e.intImm == o.intImm
	case OpUIntImm:
		return e.uintImm == o.uintImm
	case OpVariable:
		return e.name == o.name
	case OpLoad:
		return e.name == o.name && e.image == o.image && e.param == o.param && e.a.Equal(o.a)
	case OpCall:
		if e.name != o.name || e.callType != o.callType || len(e.args) != len(o.args) {
			return false
		}
		for i := range e.args {
			if !e.args[i].Equal(o.args[i]) {
				return false
			}
		}
		return true
	case OpBroadcast, OpRamp:
		return e.lanes == o.lanes && e.a.Equal(o.a) && e.b.Equal(o.b)
	case OpSelect:
		return e.a.Equal(o.a) && e.b.Equal(o.b) && e.c.Equal(o.c)
	case OpLet:
		return e.name == o.name && e.a.Equal(o.a) && e.b.Equal(o.b)
	default:
		return e.a.Equal(o.a) && e.b.Equal(o.b)
	}
}
