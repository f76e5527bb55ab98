package hexagon

import (
	"github.com/pkg/errors"

	"github.com/hexagonhvx/peephole/internal/ir"
)

// FatalError is the panic payload for the three fatal conditions spec.md
// §7 names: an unsupported interleave lane width, a remove_interleave
// invariant violation, and a dead-let invariant violation. Per §7 these
// "abort compilation with a diagnostic that names the offending
// expression" and are never recovered by optimize_hexagon_instructions
// or optimize_hexagon_shuffles — recovery policy, if any, belongs to the
// caller.
//
// Wrapped with github.com/pkg/errors (the pack's error-handling idiom,
// see moby/moby) so the panic value carries a stack trace usable by a
// caller that does choose to recover and log it.
type FatalError struct {
	msg   string
	cause error
}

func newFatalError(msg string) *FatalError {
	return &FatalError{msg: msg, cause: errors.New(msg)}
}

func (e *FatalError) Error() string { return e.msg }

// Unwrap exposes the stack-carrying cause for errors.As/errors.Is chains.
func (e *FatalError) Unwrap() error { return e.cause }

// panicFatal panics with the *FatalError fatalf builds. intrinsics.go's
// lane-width checks call panic(fatalf(...)) directly, so either way
// FatalError is what a recovering caller sees regardless of which
// invariant tripped.
func panicFatal(offending *ir.Expr, format string, args ...interface{}) {
	panic(fatalf(offending, format, args...))
}
