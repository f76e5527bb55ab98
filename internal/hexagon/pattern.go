package hexagon

import (
	"github.com/hexagonhvx/peephole/internal/ir"
)

// Flags is the per-pattern bitset described in spec.md §3's "Pattern"
// data model.
type Flags uint32

const (
	// InterleaveResult wraps the produced intrinsic call in
	// native_interleave.
	InterleaveResult Flags = 1 << iota
	// SwapOps01 swaps captures[0] and captures[1] before substitution.
	SwapOps01
	// SwapOps12 swaps captures[1] and captures[2] before substitution.
	SwapOps12
	// ExactLog2Op1 requires captures[1] to be a positive power-of-two
	// integer constant, replaced by its log2.
	ExactLog2Op1
	// ExactLog2Op2 requires captures[2] to be a positive power-of-two
	// integer constant, replaced by its log2.
	ExactLog2Op2
	// DeinterleaveOp0 wraps captures[0] in native_deinterleave.
	DeinterleaveOp0
	// DeinterleaveOp1 wraps captures[1] in native_deinterleave.
	DeinterleaveOp1
	// DeinterleaveOp2 wraps captures[2] in native_deinterleave.
	DeinterleaveOp2
	// NarrowOp0 replaces captures[0] with an exact half-bit-width value
	// of the same signedness, if losslessly possible; else the pattern
	// fails.
	NarrowOp0
	// NarrowOp1 is NarrowOp0 for captures[1].
	NarrowOp1
	// NarrowOp2 is NarrowOp0 for captures[2].
	NarrowOp2
	// NarrowUnsignedOp0 is NarrowOp0 but the half-width target is
	// unsigned regardless of the capture's own signedness.
	NarrowUnsignedOp0
	// NarrowUnsignedOp1 is NarrowUnsignedOp0 for captures[1].
	NarrowUnsignedOp1
	// NarrowUnsignedOp2 is NarrowUnsignedOp0 for captures[2].
	NarrowUnsignedOp2
	// BroadcastOp0 re-wraps captures[0] in a lanes==1 Broadcast after any
	// narrowing, restoring the scalar-broadcast operand shape a NarrowOp
	// match descends past when it unwraps the Broadcast's inner value.
	BroadcastOp0
	// BroadcastOp1 is BroadcastOp0 for captures[1] — the vector×scalar
	// widening-multiply families' broadcast operand (spec.md §8
	// scenario 3: `broadcast(u16(k))` must come back out as
	// `broadcast(k,1)`, not the bare narrowed scalar).
	BroadcastOp1
	// BroadcastOp2 is BroadcastOp0 for captures[2].
	BroadcastOp2
)

// ReinterleaveOp0 is InterleaveResult | DeinterleaveOp0, spec.md §4.2's
// shorthand for the shift/multiply-accumulate families' accumulator
// operand: the accumulator arrives already interleaved and must be
// deinterleaved before the MAC, then the whole result re-interleaved.
const ReinterleaveOp0 = InterleaveResult | DeinterleaveOp0

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

func (f Flags) deinterleave(i int) bool {
	switch i {
	case 0:
		return f.has(DeinterleaveOp0)
	case 1:
		return f.has(DeinterleaveOp1)
	case 2:
		return f.has(DeinterleaveOp2)
	default:
		return false
	}
}

func (f Flags) narrow(i int) bool {
	switch i {
	case 0:
		return f.has(NarrowOp0)
	case 1:
		return f.has(NarrowOp1)
	case 2:
		return f.has(NarrowOp2)
	default:
		return false
	}
}

func (f Flags) narrowUnsigned(i int) bool {
	switch i {
	case 0:
		return f.has(NarrowUnsignedOp0)
	case 1:
		return f.has(NarrowUnsignedOp1)
	case 2:
		return f.has(NarrowUnsignedOp2)
	default:
		return false
	}
}

func (f Flags) broadcast(i int) bool {
	switch i {
	case 0:
		return f.has(BroadcastOp0)
	case 1:
		return f.has(BroadcastOp1)
	case 2:
		return f.has(BroadcastOp2)
	default:
		return false
	}
}

func (f Flags) exactLog2(i int) bool {
	switch i {
	case 1:
		return f.has(ExactLog2Op1)
	case 2:
		return f.has(ExactLog2Op2)
	default:
		return false
	}
}

// Pattern is a single (intrinsic, pattern, flags) record, spec.md §3.
type Pattern struct {
	Intrinsic string
	Pattern   *ir.Expr
	Flags     Flags
}

// Table is an ordered list of Patterns. Order is semantically
// significant (spec.md §3's Invariants): tables are scanned in order and
// the first successful match wins.
type Table []Pattern

// applyPatterns implements spec.md §4.2's "apply_patterns(x, table,
// mutator)" algorithm. mutate is the outer PatternMatcher mutation
// function, applied recursively to each surviving capture (step 6) so
// inner rewrite opportunities are exposed bottom-up. Returns (x, false)
// unchanged if no pattern in the table matches.
func applyPatterns(x *ir.Expr, table Table, mutate func(*ir.Expr) *ir.Expr) (*ir.Expr, bool) {
	for _, pat := range table {
		captures, ok := ir.ExprMatch(pat.Pattern, x)
		if !ok {
			continue
		}
		log.WithField("intrinsic", pat.Intrinsic).WithField("expr", x.String()).Trace("hexagon: pattern matched, checking operand constraints")

		failed := false
		for i := range captures {
			if pat.Flags.narrow(i) {
				target := captures[i].Type().HalfBits()
				narrowed := ir.LosslessCast(target, captures[i])
				if narrowed == nil {
					failed = true
					break
				}
				captures[i] = narrowed
			} else if pat.Flags.narrowUnsigned(i) {
				target := captures[i].Type().HalfBits().WithCode(ir.UInt)
				narrowed := ir.LosslessCast(target, captures[i])
				if narrowed == nil {
					failed = true
					break
				}
				captures[i] = narrowed
			}
		}
		if failed {
			log.WithField("intrinsic", pat.Intrinsic).Trace("hexagon: pattern skipped, narrow cast not lossless")
			continue
		}

		for i := range captures {
			if !pat.Flags.exactLog2(i) {
				continue
			}
			log2, ok := ir.IsConstPowerOfTwoInteger(captures[i])
			if !ok {
				failed = true
				break
			}
			scalarType := ir.Scalar(captures[i].Type().Code, captures[i].Type().Bits)
			captures[i] = ir.IntImm(scalarType, int64(log2))
		}
		if failed {
			log.WithField("intrinsic", pat.Intrinsic).Trace("hexagon: pattern skipped, operand not a constant power of two")
			continue
		}

		for i := range captures {
			if !pat.Flags.deinterleave(i) {
				continue
			}
			if !captures[i].Type().IsVector() {
				panicFatal(captures[i], "DeinterleaveOp%d requires a vector-typed capture", i)
			}
			captures[i] = nativeDeinterleave(captures[i])
		}

		for i := range captures {
			if !pat.Flags.broadcast(i) {
				continue
			}
			captures[i] = ir.Broadcast(captures[i], 1)
		}

		if pat.Flags.has(SwapOps01) && len(captures) >= 2 {
			captures[0], captures[1] = captures[1], captures[0]
		}
		if pat.Flags.has(SwapOps12) && len(captures) >= 3 {
			captures[1], captures[2] = captures[2], captures[1]
		}

		for i := range captures {
			captures[i] = mutate(captures[i])
		}

		result := ir.Call(x.Type(), pat.Intrinsic, captures, ir.PureExtern)
		if pat.Flags.has(InterleaveResult) {
			result = nativeInterleave(result)
		}
		log.WithField("intrinsic", pat.Intrinsic).Debug("hexagon: rewrote expression to intrinsic call")
		return result, true
	}
	log.WithField("expr", x.String()).Trace("hexagon: no pattern in table matched")
	return x, false
}
