// Package diagnostics is the shared message bag every pass in this core
// reports into. Passes never panic on a user mistake and never throw out of
// band (spec §7): they append a Diagnostic here and keep producing the
// most-defined output they can, substituting Invalid wherever recovery is
// required.
package diagnostics

import (
	"fmt"

	"upto/names"
)

// Severity orders from least to most severe. Bug is reserved for internal
// invariants (compiler bugs); user mistakes are Warning or Error.
type Severity int

const (
	SeverityHelp Severity = iota
	SeverityNote
	SeverityWarning
	SeverityError
	SeverityBug
)

func (s Severity) String() string {
	switch s {
	case SeverityHelp:
		return "help"
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityBug:
		return "internal error"
	default:
		return "unknown"
	}
}

// LabelStyle distinguishes the primary span of a diagnostic from secondary,
// supporting ones.
type LabelStyle int

const (
	LabelPrimary LabelStyle = iota
	LabelSecondary
)

// Label attaches a message to a secondary span.
type Label struct {
	Style   LabelStyle
	Span    names.Span
	Message string
}

// Diagnostic is one reported message: a severity, a stable short code
// (spec §6: lexer EL##, parser EP##, resolver ER##, typechecker ET##,
// elaborator EE##, compiler EC##), a primary span, secondary labels, and
// notes.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     names.Span
	Labels   []Label
	Notes    []string
}

// Bag accumulates diagnostics for one compilation job. Nothing in this core
// decides whether to halt on a Bag's contents; that's the driver's call
// (spec §7).
type Bag struct {
	diags []Diagnostic
}

// NewBag creates an empty Bag.
func NewBag() *Bag {
	return &Bag{}
}

// At starts building a diagnostic whose primary span is at.
func (b *Bag) At(at names.Span) *Builder {
	return &Builder{bag: b, at: at}
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (b *Bag) Diagnostics() []Diagnostic {
	return b.diags
}

// HasErrors reports whether any diagnostic at Error severity or above was
// reported.
func (b *Bag) HasErrors() bool {
	for _, d := range b.diags {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Merge appends another Bag's diagnostics onto this one, in order.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.diags = append(b.diags, other.diags...)
}

func (b *Bag) push(d Diagnostic) {
	b.diags = append(b.diags, d)
}

// Builder accumulates labels and notes for one diagnostic before it's
// pushed onto the Bag by one of the code-specific constructors below.
type Builder struct {
	bag *Bag
	at  names.Span
}

func (b *Builder) label(style LabelStyle, span names.Span, message string) Label {
	return Label{Style: style, Span: span, Message: message}
}

func (b *Builder) add(severity Severity, code, message string, labels []Label, notes []string) {
	b.bag.push(Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  message,
		Span:     b.at,
		Labels:   labels,
		Notes:    notes,
	})
}

// --- typechecker: ET## -------------------------------------------------

// TyckIncompatibleTypes reports ET00: two types could not be unified or one
// was not assignable to the other.
func (b *Builder) TyckIncompatibleTypes(into, from string) {
	b.add(SeverityError, "ET00",
		fmt.Sprintf("incompatible types: expected '%s', found '%s'", into, from),
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckNarrowRange reports ET01: a range-to-range assignment needs a
// coercion whose containment will only be checked post-partial-evaluation.
func (b *Builder) TyckNarrowRange(into, from string) {
	b.add(SeverityWarning, "ET01",
		fmt.Sprintf("narrowing coercion from '%s' to '%s'", from, into),
		[]Label{b.label(LabelPrimary, b.at, "")},
		[]string{"note: this coercion is only checked after partial evaluation"})
}

// TyckNoProgress reports ET02: the constraint solver's worklist stopped
// shrinking; the remaining constraints are dropped.
func (b *Builder) TyckNoProgress() {
	b.add(SeverityError, "ET02", "could not make progress solving this constraint",
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckNotAFunction reports ET03: an application's head did not unify with
// a function type.
func (b *Builder) TyckNotAFunction(ty string) {
	b.add(SeverityError, "ET03",
		fmt.Sprintf("not a function: '%s'", ty),
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckNotANumber reports ET04: an IsNumeric constraint's type was neither a
// range, Number, nor a named numeric type.
func (b *Builder) TyckNotANumber(ty string) {
	msg := "not a number"
	if ty != "" {
		msg = fmt.Sprintf("not a number: got '%s'", ty)
	}
	b.add(SeverityError, "ET04", msg,
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckAmbiguous reports ET05: a numeric literal's type variable was never
// pinned down to a concrete numeric type.
func (b *Builder) TyckAmbiguous() {
	b.add(SeverityError, "ET05", "ambiguous numeric type; add an annotation",
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckRecursiveInference reports ET06: the occurs check failed during
// unification (a variable would have to unify with a type containing
// itself).
func (b *Builder) TyckRecursiveInference() {
	b.add(SeverityError, "ET06", "recursive type inferred",
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckInstantiateNonName reports ET07: an explicit instantiation's head
// expression was not a bare name.
func (b *Builder) TyckInstantiateNonName() {
	b.add(SeverityError, "ET07", "can only explicitly instantiate a name",
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckInstantiateWrongArity reports ET08: the number of supplied type
// arguments did not match the schema's parameter count.
func (b *Builder) TyckInstantiateWrongArity() {
	b.add(SeverityError, "ET08", "wrong number of type arguments",
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckInstantiateNotGeneric reports ET09: an explicit instantiation was
// applied to a name bound to a monomorphic type, not a schema.
func (b *Builder) TyckInstantiateNotGeneric(ty string) {
	msg := "not generic"
	if ty != "" {
		msg = fmt.Sprintf("not generic: '%s'", ty)
	}
	b.add(SeverityError, "ET09", msg,
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// TyckTupleDestructureUnsupported reports ET10: a tuple pattern was bound
// against a type that can't be destructured into a product.
func (b *Builder) TyckTupleDestructureUnsupported() {
	b.add(SeverityError, "ET10", "tuple patterns are not supported for this type",
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// --- elaborator: EE## ----------------------------------------------------

// ElabOutsideRange reports EE00: a partial-evaluation-time constant fell
// outside the range type it was coerced or annotated into.
func (b *Builder) ElabOutsideRange(ty string, offByOne bool) {
	notes := []string(nil)
	if offByOne {
		notes = []string{"note: the upper bound is exclusive, so this value is not part of the type"}
	}
	b.add(SeverityError, "EE00",
		"integer value outside allowed range",
		[]Label{b.label(LabelPrimary, b.at, fmt.Sprintf("this value is outside the range of '%s'", ty))},
		notes)
}

// ElabClosureNotPermitted reports EE01: a lowered lambda closed over free
// variables, which hoisting (out of core scope) would otherwise need to
// eliminate.
func (b *Builder) ElabClosureNotPermitted(free []names.Span) {
	labels := make([]Label, 0, len(free))
	for _, span := range free {
		labels = append(labels, b.label(LabelSecondary, span, ""))
	}
	b.add(SeverityError, "EE01", "closures are not permitted", labels,
		[]string{"note: these variables are not defined inside the function"})
}

// ElabPolymorphicDestructure reports EE03: a polymorphic definition's own
// pattern destructures a tuple rather than naming a single schema, which
// lowering has no monomorphization strategy for yet.
func (b *Builder) ElabPolymorphicDestructure() {
	b.add(SeverityError, "EE03",
		"polymorphic destructuring patterns are not supported",
		[]Label{b.label(LabelPrimary, b.at, "")},
		[]string{"note: bind a single name here instead"})
}

// ElabRequiresInit reports EE02: a top-level value could not be reduced to
// a static constant by the partial evaluator.
func (b *Builder) ElabRequiresInit() {
	b.add(SeverityError, "EE02",
		"global variable requires run-time initialization",
		[]Label{b.label(LabelPrimary, b.at, "this expression cannot be fully evaluated at compile time")},
		[]string{"note: global values which require run-time initialization are not currently supported"})
}

// --- compiler/backend: EC## ----------------------------------------------

// CompileUnsupportedConvention reports EC00: a procedure's declared calling
// convention has no entry in the target's convention table.
func (b *Builder) CompileUnsupportedConvention(target, convention string) {
	b.add(SeverityError, "EC00",
		fmt.Sprintf("target '%s' does not support calling convention '%s'", target, convention),
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}

// --- help: not an error, used for `?` holes -------------------------------

// Help reports a non-error, non-warning hint (e.g. the inferred type of a
// `?` hole).
func (b *Builder) Help(message string) {
	b.add(SeverityHelp, "HE00", message,
		[]Label{b.label(LabelPrimary, b.at, "")}, nil)
}
