package eval

import "upto/lir"

// Reduced is what resolving an operand against the current environment
// produces: the best Value the evaluator could pin down, plus whether that
// Value is still waiting on something the evaluator hasn't computed yet (a
// procedure's own parameter, or the result of a call that was left
// residual rather than inlined).
//
// The upstream design this is adapted from (midend/src/eval/value.rs) tags
// a reduced value with the frame index it was produced at and compares
// indices to answer "is this static enough yet". This port's step loop
// only ever walks one block's instructions in strict control-flow order
// (never speculatively, never out of order), so there's nothing a frame
// index would disambiguate that a plain static/dynamic flag doesn't
// already: by the time an operand is looked up, everything control flow
// could have bound it to has already run.
type Reduced struct {
	Value   lir.Value
	Dynamic bool
}

// Static wraps a fully-known value: a literal, or a name that resolved to
// one.
func Static(v lir.Value) Reduced { return Reduced{Value: v} }

// Dyn wraps a value the evaluator could not pin down further: it still
// names a register or a top-level name, to be read at run time.
func Dyn(v lir.Value) Reduced { return Reduced{Value: v, Dynamic: true} }

func (r Reduced) IsStatic() bool { return !r.Dynamic }

// AsInt reports the literal the value folded to, if it is both static and
// an integer.
func (r Reduced) AsInt() (int64, bool) {
	if r.Dynamic {
		return 0, false
	}
	return r.Value.AsInt()
}

// env is one frame's register bindings. Registers, not names, are the
// right key here: within a single Procedure activation, every local is a
// register, and lir.Register has no slice fields, so it's safe to use as a
// map key directly. Resolving a value against an env also needs the
// evaluator's global constant table, so that logic lives on evaluator
// itself (see resolve in step.go) rather than here.
type env map[lir.Register]Reduced
