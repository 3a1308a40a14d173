package tyck

import (
	"upto/names"
	"upto/types"
)

// ExprKind discriminates the variants of Expr. It mirrors hir.ExprKind with
// one addition: Coerce, inserted wherever check fell back to inferring a
// subexpression's type and found it only assignable, not syntactically
// equal, to what was expected.
type ExprKind int

const (
	ExprName ExprKind = iota
	ExprNum
	ExprHole
	ExprLam
	ExprApp
	ExprInst
	ExprTuple
	ExprCoerce
	ExprInvalid
)

// Expr is one node of the typechecked tree: every hir.Expr shape, now
// carrying the types.Type the solver assigned it. lower reads this tree,
// never hir.Expr directly, once typechecking succeeds.
type Expr struct {
	Kind ExprKind
	Span names.Span
	Type types.Type

	name names.Name
	num  uint64

	lam *lamExpr
	app *appExpr

	inst *instExpr

	tuple *tupleExpr

	coerce *coerceExpr
}

type lamExpr struct {
	param Pat
	body  *Expr
}

type appExpr struct {
	fun *Expr
	arg *Expr
}

type instExpr struct {
	name names.Name
	args []InstArg
}

// InstArg is one explicit type argument supplied at an instantiation site,
// together with the span it was written at (for diagnostics once its
// assignability constraint against the schema's fresh variable resolves).
type InstArg struct {
	Span names.Span
	Type types.Type
}

type tupleExpr struct {
	fst *Expr
	snd *Expr
}

type coerceExpr struct {
	inner *Expr
	id    types.CoercionID
}

func NameExpr(name names.Name, ty types.Type, span names.Span) Expr {
	return Expr{Kind: ExprName, Span: span, Type: ty, name: name}
}

func NumExpr(v uint64, ty types.Type, span names.Span) Expr {
	return Expr{Kind: ExprNum, Span: span, Type: ty, num: v}
}

func HoleExpr(ty types.Type, span names.Span) Expr {
	return Expr{Kind: ExprHole, Span: span, Type: ty}
}

func LamExpr(param Pat, body Expr, ty types.Type, span names.Span) Expr {
	return Expr{Kind: ExprLam, Span: span, Type: ty, lam: &lamExpr{param: param, body: &body}}
}

func AppExpr(fun, arg Expr, ty types.Type, span names.Span) Expr {
	return Expr{Kind: ExprApp, Span: span, Type: ty, app: &appExpr{fun: &fun, arg: &arg}}
}

func InstExpr(name names.Name, args []InstArg, ty types.Type, span names.Span) Expr {
	return Expr{Kind: ExprInst, Span: span, Type: ty, inst: &instExpr{name: name, args: args}}
}

func TupleExpr(fst, snd Expr, ty types.Type, span names.Span) Expr {
	return Expr{Kind: ExprTuple, Span: span, Type: ty, tuple: &tupleExpr{fst: &fst, snd: &snd}}
}

// CoerceExpr wraps inner (whose own Type is its inferred type) with id, the
// coercion site the solver recorded while checking inner against the
// surrounding context's expected type. The surrounding Expr's own Type
// field holds that expected type.
func CoerceExpr(inner Expr, id types.CoercionID, expected types.Type, span names.Span) Expr {
	return Expr{Kind: ExprCoerce, Span: span, Type: expected, coerce: &coerceExpr{inner: &inner, id: id}}
}

func InvalidExpr(span names.Span) Expr {
	return Expr{Kind: ExprInvalid, Span: span, Type: types.Invalid}
}

func (e Expr) AsName() (names.Name, bool) {
	if e.Kind != ExprName {
		return names.Name{}, false
	}
	return e.name, true
}

func (e Expr) AsNum() (uint64, bool) {
	if e.Kind != ExprNum {
		return 0, false
	}
	return e.num, true
}

func (e Expr) AsLam() (param Pat, body Expr, ok bool) {
	if e.Kind != ExprLam {
		return Pat{}, Expr{}, false
	}
	return e.lam.param, *e.lam.body, true
}

func (e Expr) AsApp() (fun, arg Expr, ok bool) {
	if e.Kind != ExprApp {
		return Expr{}, Expr{}, false
	}
	return *e.app.fun, *e.app.arg, true
}

func (e Expr) AsInst() (name names.Name, args []InstArg, ok bool) {
	if e.Kind != ExprInst {
		return names.Name{}, nil, false
	}
	return e.inst.name, e.inst.args, true
}

func (e Expr) AsTuple() (fst, snd Expr, ok bool) {
	if e.Kind != ExprTuple {
		return Expr{}, Expr{}, false
	}
	return *e.tuple.fst, *e.tuple.snd, true
}

func (e Expr) AsCoerce() (inner Expr, id types.CoercionID, ok bool) {
	if e.Kind != ExprCoerce {
		return Expr{}, 0, false
	}
	return *e.coerce.inner, e.coerce.id, true
}

// PatKind discriminates the variants of Pat.
type PatKind int

const (
	PatName PatKind = iota
	PatTuple
	PatWildcard
	PatInvalid
)

// Pat is a checked binding pattern: the hir.Pat shape with its Anno
// resolved away (the type it names is now carried directly on the node).
type Pat struct {
	Kind PatKind
	Span names.Span
	Type types.Type

	name  names.Name
	tuple *patTuple
}

type patTuple struct {
	fst *Pat
	snd *Pat
}

func NamePat(name names.Name, ty types.Type, span names.Span) Pat {
	return Pat{Kind: PatName, Span: span, Type: ty, name: name}
}

func TuplePat(fst, snd Pat, ty types.Type, span names.Span) Pat {
	return Pat{Kind: PatTuple, Span: span, Type: ty, tuple: &patTuple{fst: &fst, snd: &snd}}
}

func WildcardPat(ty types.Type, span names.Span) Pat {
	return Pat{Kind: PatWildcard, Span: span, Type: ty}
}

func InvalidPat(span names.Span) Pat {
	return Pat{Kind: PatInvalid, Span: span, Type: types.Invalid}
}

func (p Pat) AsName() (names.Name, bool) {
	if p.Kind != PatName {
		return names.Name{}, false
	}
	return p.name, true
}

func (p Pat) AsTuple() (fst, snd Pat, ok bool) {
	if p.Kind != PatTuple {
		return Pat{}, Pat{}, false
	}
	return *p.tuple.fst, *p.tuple.snd, true
}

// ValueDef is a fully checked top-level or let-bound value.
type ValueDef struct {
	Name     names.Name
	Implicit []names.Name
	Pat      Pat
	Body     Expr
	Span     names.Span
}

// Decls is a whole checked compilation unit. Type definitions don't need a
// checked counterpart: tyck only ever reads them (via Definitions), it
// never re-typechecks their bodies, since a range's bounds stay opaque
// Names until partial evaluation folds them.
type Decls struct {
	Values []ValueDef
}

// Because names the origin of an assignability or equality obligation, for
// diagnostics that want to explain *why* two types were expected to match
// rather than just that they didn't.
type Because struct {
	Span names.Span
}
