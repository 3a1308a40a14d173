package tyck

import (
	"upto/names"
	"upto/types"
)

// ConstraintKind discriminates the three obligations the solver's worklist
// carries: structural equality, assignability-with-coercion,
// and "this type must turn out numeric".
type ConstraintKind int

const (
	ConstraintEqual ConstraintKind = iota
	ConstraintAssignable
	ConstraintIsNumeric
)

// Constraint is one item on the solver's worklist. Only the fields that
// apply to its Kind are meaningful; the rest are zero.
type Constraint struct {
	Kind ConstraintKind
	At   names.Span

	left, right types.Type // Equal

	id         types.CoercionID // Assignable
	into, from types.Type       // Assignable

	because Because    // IsNumeric
	ty      types.Type // IsNumeric
}

// EqualConstraint requires a and b to unify exactly.
func EqualConstraint(at names.Span, a, b types.Type) Constraint {
	return Constraint{Kind: ConstraintEqual, At: at, left: a, right: b}
}

// AssignableConstraint requires from to be assignable into into, recording
// the strength of that coercion under id once solved.
func AssignableConstraint(at names.Span, id types.CoercionID, into, from types.Type) Constraint {
	return Constraint{Kind: ConstraintAssignable, At: at, id: id, into: into, from: from}
}

// IsNumericConstraint requires ty to eventually resolve to a numeric type
// (a Range, Number, or an alias of one). because records what produced the
// obligation, for diagnostics that want to explain it.
func IsNumericConstraint(at names.Span, because Because, ty types.Type) Constraint {
	return Constraint{Kind: ConstraintIsNumeric, At: at, because: because, ty: ty}
}
