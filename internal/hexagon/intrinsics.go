// Package hexagon implements the target-specific peephole optimization
// pass described in spec.md: PatternMatcher, InterleaveEliminator,
// BoundedShuffleRewriter and the UpperBound helper, specialized to the
// Hexagon HVX wide-SIMD architecture (vector lanes of 8/16/32-bit
// integers with paired even/odd lane layouts).
package hexagon

import (
	"fmt"

	"github.com/hexagonhvx/peephole/internal/ir"
)

// interleaveName/deinterleaveName implement spec.md §4.1: two
// parameterless unary intrinsics per vector element width. Modeled on
// the teacher's own per-opcode instruction-name tables in
// backend/isa/arm64/lower_instr.go (asXxx constructors keyed by a small
// closed set of machine widths).
func interleaveName(bits uint8) string {
	switch bits {
	case 8:
		return "halide.hexagon.interleave.vb"
	case 16:
		return "halide.hexagon.interleave.vh"
	case 32:
		return "halide.hexagon.interleave.vw"
	default:
		panic(fatalf(nil, "unsupported lane width %d bits for native_interleave", bits))
	}
}

func deinterleaveName(bits uint8) string {
	switch bits {
	case 8:
		return "halide.hexagon.deinterleave.vb"
	case 16:
		return "halide.hexagon.deinterleave.vh"
	case 32:
		return "halide.hexagon.deinterleave.vw"
	default:
		panic(fatalf(nil, "unsupported lane width %d bits for native_deinterleave", bits))
	}
}

// nativeInterleave constructs halide.hexagon.interleave.v{b,h,w}(x),
// preserving x's type exactly (spec.md §3 invariant).
func nativeInterleave(x *ir.Expr) *ir.Expr {
	return ir.Call(x.Type(), interleaveName(x.Type().Bits), []*ir.Expr{x}, ir.PureExtern)
}

// nativeDeinterleave constructs halide.hexagon.deinterleave.v{b,h,w}(x).
func nativeDeinterleave(x *ir.Expr) *ir.Expr {
	return ir.Call(x.Type(), deinterleaveName(x.Type().Bits), []*ir.Expr{x}, ir.PureExtern)
}

const (
	interleavePrefix   = "halide.hexagon.interleave"
	deinterleavePrefix = "halide.hexagon.deinterleave"
	hexagonPrefix      = "halide.hexagon."
)

// isNativeInterleave reports whether x is a call to one of the three
// native_interleave intrinsics.
func isNativeInterleave(x *ir.Expr) bool {
	return x.Op() == ir.OpCall && hasPrefix(x.Name(), interleavePrefix)
}

// isNativeDeinterleave reports whether x is a call to one of the three
// native_deinterleave intrinsics.
func isNativeDeinterleave(x *ir.Expr) bool {
	return x.Op() == ir.OpCall && hasPrefix(x.Name(), deinterleavePrefix)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func fatalf(offending *ir.Expr, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if offending != nil {
		msg = fmt.Sprintf("%s (offending expression: %s)", msg, offending.String())
	}
	return newFatalError(msg)
}
