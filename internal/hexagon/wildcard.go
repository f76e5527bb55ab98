package hexagon

import "github.com/hexagonhvx/peephole/internal/ir"

// wc builds a pattern wildcard of the given type. lanes == 0 is the
// AnyLanes marker: it unifies with whatever concrete lane count the
// first such wildcard in a match binds to, and every other AnyLanes
// wildcard in the same pattern must agree.
func wc(code ir.Code, bits uint8, lanes uint16) *ir.Expr {
	return ir.Variable(ir.Type{Code: code, Bits: bits, Lanes: lanes}, "*")
}
