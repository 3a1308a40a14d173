// Package hir is the tree the typechecker consumes and the partial
// evaluator's lowering pass reads from: already name-resolved (every binder
// and reference is a names.Name, never a bare string), but not yet
// typechecked. Lexing, parsing, and name resolution that produce this tree
// are out of scope for this core (spec "Non-goals"); hir is the seam where
// that out-of-scope front end hands off.
package hir

import "upto/names"

// Decls is a whole compilation unit's set of top-level definitions, already
// grouped into the two namespaces the typechecker treats differently: value
// bindings (which may be polymorphic schemas, spec §4.1) and type
// definitions (range aliases and the like, spec §3).
type Decls struct {
	Values []ValueDef
	Types  []TypeDef
}

// ValueDef is one top-level or let-bound value: an optional list of
// implicit type parameters making it a schema, a pattern it's bound under
// (usually just a Name, but tuples destructure), an optional type
// annotation, and the defining expression.
type ValueDef struct {
	Name     names.Name
	Implicit []names.Name // schema parameters; nil for a monomorphic definition
	Pat      Pat
	Anno     *TypeAnno // nil if unannotated
	Body     Expr
	Span     names.Span
}

// TypeDef is a top-level type definition, e.g. a named range: `type Byte =
// 0 upto 256`.
type TypeDef struct {
	Name names.Name
	Anno TypeAnno
	Span names.Span
}

// ExprKind discriminates the variants of Expr.
type ExprKind int

const (
	ExprName ExprKind = iota
	ExprNum
	ExprHole
	ExprLam
	ExprApp
	ExprInst
	ExprTuple
	ExprAnno
	ExprInvalid
)

// Expr is one expression node. Like types.Type, this is a closed tagged
// struct rather than an interface: the typechecker and partial evaluator
// both need exhaustive structural matches far more often than they need
// open dispatch.
type Expr struct {
	Kind ExprKind
	Span names.Span

	name names.Name // ExprName
	num  uint64     // ExprNum

	lam *lamExpr // ExprLam
	app *appExpr // ExprApp

	inst *instExpr // ExprInst

	tuple *tupleExpr // ExprTuple
	anno  *annoExpr  // ExprAnno
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
	fun  *Expr
	args []TypeAnno
}

type tupleExpr struct {
	fst *Expr
	snd *Expr
}

type annoExpr struct {
	expr *Expr
	ty   TypeAnno
}

func Name(name names.Name, span names.Span) Expr {
	return Expr{Kind: ExprName, Span: span, name: name}
}

func Num(v uint64, span names.Span) Expr {
	return Expr{Kind: ExprNum, Span: span, num: v}
}

// Hole is a `?` expression: the typechecker infers its type and reports it
// as a Help diagnostic rather than an error (spec §7).
func Hole(span names.Span) Expr {
	return Expr{Kind: ExprHole, Span: span}
}

func Lam(param Pat, body Expr, span names.Span) Expr {
	return Expr{Kind: ExprLam, Span: span, lam: &lamExpr{param: param, body: &body}}
}

func App(fun, arg Expr, span names.Span) Expr {
	return Expr{Kind: ExprApp, Span: span, app: &appExpr{fun: &fun, arg: &arg}}
}

// Inst is an explicit instantiation `fun[T1, T2, ...]` (spec §3 "Explicit
// instantiation"). fun must resolve to a name bound to a schema; that's
// checked by tyck, not enforced by this constructor.
func Inst(fun Expr, args []TypeAnno, span names.Span) Expr {
	return Expr{Kind: ExprInst, Span: span, inst: &instExpr{fun: &fun, args: args}}
}

func Tuple(fst, snd Expr, span names.Span) Expr {
	return Expr{Kind: ExprTuple, Span: span, tuple: &tupleExpr{fst: &fst, snd: &snd}}
}

func Anno(expr Expr, ty TypeAnno, span names.Span) Expr {
	return Expr{Kind: ExprAnno, Span: span, anno: &annoExpr{expr: &expr, ty: ty}}
}

// Invalid stands in for a subtree that couldn't be produced; the
// typechecker treats it the same as types.Invalid and never re-reports an
// error for it (spec §7).
func Invalid(span names.Span) Expr {
	return Expr{Kind: ExprInvalid, Span: span}
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

func (e Expr) AsInst() (fun Expr, args []TypeAnno, ok bool) {
	if e.Kind != ExprInst {
		return Expr{}, nil, false
	}
	return *e.inst.fun, e.inst.args, true
}

func (e Expr) AsTuple() (fst, snd Expr, ok bool) {
	if e.Kind != ExprTuple {
		return Expr{}, Expr{}, false
	}
	return *e.tuple.fst, *e.tuple.snd, true
}

func (e Expr) AsAnno() (expr Expr, ty TypeAnno, ok bool) {
	if e.Kind != ExprAnno {
		return Expr{}, TypeAnno{}, false
	}
	return *e.anno.expr, e.anno.ty, true
}

// PatKind discriminates the variants of Pat.
type PatKind int

const (
	PatName PatKind = iota
	PatTuple
	PatAnno
	PatWildcard
	PatInvalid
)

// Pat is a binding pattern. Only Name and (possibly nested, possibly
// annotated) Tuple patterns destructure anything; every other pattern
// shape the front end might parse has already been rejected or desugared
// before reaching this core (spec §3 "Patterns").
type Pat struct {
	Kind PatKind
	Span names.Span

	name  names.Name // PatName
	tuple *patTuple  // PatTuple
	anno  *patAnno   // PatAnno
}

type patTuple struct {
	fst *Pat
	snd *Pat
}

type patAnno struct {
	pat *Pat
	ty  TypeAnno
}

func NamePat(name names.Name, span names.Span) Pat {
	return Pat{Kind: PatName, Span: span, name: name}
}

func TuplePat(fst, snd Pat, span names.Span) Pat {
	return Pat{Kind: PatTuple, Span: span, tuple: &patTuple{fst: &fst, snd: &snd}}
}

func AnnoPat(pat Pat, ty TypeAnno, span names.Span) Pat {
	return Pat{Kind: PatAnno, Span: span, anno: &patAnno{pat: &pat, ty: ty}}
}

func WildcardPat(span names.Span) Pat {
	return Pat{Kind: PatWildcard, Span: span}
}

func InvalidPat(span names.Span) Pat {
	return Pat{Kind: PatInvalid, Span: span}
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

func (p Pat) AsAnno() (pat Pat, ty TypeAnno, ok bool) {
	if p.Kind != PatAnno {
		return Pat{}, TypeAnno{}, false
	}
	return *p.anno.pat, p.anno.ty, true
}

// TypeAnnoKind discriminates the variants of TypeAnno.
type TypeAnnoKind int

const (
	TypeAnnoName TypeAnnoKind = iota
	TypeAnnoRange
	TypeAnnoFun
	TypeAnnoProduct
	TypeAnnoWildcard
	TypeAnnoInvalid
)

// TypeAnno is a type as it appears written in source, already
// name-resolved: a Range's bounds are Names (spec §3 "Range(lo, hi) ...
// lo and hi are themselves names that resolve, after partial evaluation,
// to integer constants"), pointing at whatever constant expression backs
// them elsewhere in the program. tyck's lowerType turns this into a
// types.Type one-for-one; only Var has no TypeAnno counterpart, since it's
// minted fresh by the typechecker itself for a `_` wildcard.
type TypeAnno struct {
	Kind TypeAnnoKind
	Span names.Span

	name names.Name // TypeAnnoName

	rangeLo names.Name // TypeAnnoRange
	rangeHi names.Name // TypeAnnoRange

	fun     *typeAnnoFun  // TypeAnnoFun
	product *typeAnnoProd // TypeAnnoProduct
}

type typeAnnoFun struct {
	from *TypeAnno
	to   *TypeAnno
}

type typeAnnoProd struct {
	fst *TypeAnno
	snd *TypeAnno
}

func NameAnno(name names.Name, span names.Span) TypeAnno {
	return TypeAnno{Kind: TypeAnnoName, Span: span, name: name}
}

func RangeAnno(lo, hi names.Name, span names.Span) TypeAnno {
	return TypeAnno{Kind: TypeAnnoRange, Span: span, rangeLo: lo, rangeHi: hi}
}

func FunAnno(from, to TypeAnno, span names.Span) TypeAnno {
	return TypeAnno{Kind: TypeAnnoFun, Span: span, fun: &typeAnnoFun{from: &from, to: &to}}
}

func ProductAnno(fst, snd TypeAnno, span names.Span) TypeAnno {
	return TypeAnno{Kind: TypeAnnoProduct, Span: span, product: &typeAnnoProd{fst: &fst, snd: &snd}}
}

func WildcardAnno(span names.Span) TypeAnno {
	return TypeAnno{Kind: TypeAnnoWildcard, Span: span}
}

func InvalidAnno(span names.Span) TypeAnno {
	return TypeAnno{Kind: TypeAnnoInvalid, Span: span}
}

func (t TypeAnno) AsName() (names.Name, bool) {
	if t.Kind != TypeAnnoName {
		return names.Name{}, false
	}
	return t.name, true
}

func (t TypeAnno) AsRange() (lo, hi names.Name, ok bool) {
	if t.Kind != TypeAnnoRange {
		return names.Name{}, names.Name{}, false
	}
	return t.rangeLo, t.rangeHi, true
}

func (t TypeAnno) AsFun() (from, to TypeAnno, ok bool) {
	if t.Kind != TypeAnnoFun {
		return TypeAnno{}, TypeAnno{}, false
	}
	return *t.fun.from, *t.fun.to, true
}

func (t TypeAnno) AsProduct() (fst, snd TypeAnno, ok bool) {
	if t.Kind != TypeAnnoProduct {
		return TypeAnno{}, TypeAnno{}, false
	}
	return *t.product.fst, *t.product.snd, true
}
