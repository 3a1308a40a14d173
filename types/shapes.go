// Package types implements the HIR-level type system: the algebraic Type
// tree the typechecker builds and solves over, the Context that maps names
// to their (possibly polymorphic) types, and the coercion ledger the
// elaborator consults when it decides whether a narrowing needs a run-time
// check.
package types

import (
	"fmt"

	"upto/names"
)

// VarID identifies one unification variable. Variables are minted by a
// Context and never compared across two different Contexts.
type VarID uint32

// Mutability marks whether a unification variable may still be assigned a
// substitution. A schema's own parameters are Immutable outside of the
// definition that binds them: external code can observe but never narrow
// them. Inside the definition, the solver works with Mutable copies so that
// inference of the body doesn't leak back into the signature.
type Mutability int

const (
	Immutable Mutability = iota
	Mutable
)

func (m Mutability) String() string {
	if m == Mutable {
		return "mutable"
	}
	return "immutable"
}

// Kind discriminates the variants of Type. Type is a closed tagged union,
// not an interface, because the solver needs to pattern-match and rewrite
// it structurally (substitution, instantiation, pretty-printing) far more
// often than it needs to dispatch behavior.
type Kind int

const (
	KindName Kind = iota
	KindRange
	KindFun
	KindProduct
	KindNumber
	KindVar
	KindInstantiated
	KindInvalid
)

// Type is one type in the HIR type language (spec §3). A Range's bounds are
// Names, not literal integers: they start out referring to either literal
// constant expressions or arbitrary const-foldable expressions, and only
// become concrete i64 bounds once the partial evaluator has run (spec §3
// "Range types", §4.2).
//
// Type values are immutable; every transformation (Instantiate, Substitute)
// returns a new Type rather than mutating in place, matching how the solver
// treats them as values that get compared, copied into maps, and hashed.
type Type struct {
	kind Kind

	name names.Name // KindName

	rangeLo names.Name // KindRange
	rangeHi names.Name // KindRange

	fun     *funType  // KindFun
	product *prodType // KindProduct

	mutability Mutability // KindVar
	variable   VarID      // KindVar

	inst *instType // KindInstantiated
}

type funType struct {
	from Type
	to   Type
}

type prodType struct {
	fst Type
	snd Type
}

type instType struct {
	inner   Type
	mapping map[names.Name]Type
}

// NamedType builds a Type that refers to a (possibly not-yet-resolved) type
// name: a built-in like Bool, or a user type definition.
func NamedType(name names.Name) Type {
	return Type{kind: KindName, name: name}
}

// RangeType builds a Range(lo, hi) type. lo and hi are Names bound to
// const-foldable expressions; the range is inclusive of lo and exclusive of
// hi (spec §3).
func RangeType(lo, hi names.Name) Type {
	return Type{kind: KindRange, rangeLo: lo, rangeHi: hi}
}

// FunType builds a function type from -> to.
func FunType(from, to Type) Type {
	return Type{kind: KindFun, fun: &funType{from: from, to: to}}
}

// ProductType builds a two-element tuple type.
func ProductType(fst, snd Type) Type {
	return Type{kind: KindProduct, product: &prodType{fst: fst, snd: snd}}
}

// NumberType is the type of an unresolved numeric literal: assignable to
// any Range or to Number itself, and defaulted to a concrete Range only if
// ambiguity resolution can pin one down (spec §4.2 "Numeric literals").
func NumberType() Type {
	return Type{kind: KindNumber}
}

// VarType builds a unification variable of the given mutability. id is
// minted by a Context's Fresh.
func VarType(m Mutability, id VarID) Type {
	return Type{kind: KindVar, mutability: m, variable: id}
}

// InstantiatedType wraps inner with the substitution that was applied when
// a schema was instantiated. The wrapper is kept (rather than being
// substituted away immediately) so that later stages can still recover
// which type arguments were chosen at this particular use site (spec §4.1
// "Instantiation").
func InstantiatedType(inner Type, mapping map[names.Name]Type) Type {
	return Type{kind: KindInstantiated, inst: &instType{inner: inner, mapping: mapping}}
}

// Invalid is the type substituted in wherever typechecking could not
// determine a real one; it unifies with anything and is never itself
// reported as the cause of a mismatch (spec §7 "Error recovery").
var Invalid = Type{kind: KindInvalid}

func (t Type) Kind() Kind { return t.kind }

func (t Type) IsInvalid() bool { return t.kind == KindInvalid }

// AsName returns the referenced name and true if t is a Name type.
func (t Type) AsName() (names.Name, bool) {
	if t.kind != KindName {
		return names.Name{}, false
	}
	return t.name, true
}

// AsRange returns the bound names and true if t is a Range type.
func (t Type) AsRange() (lo, hi names.Name, ok bool) {
	if t.kind != KindRange {
		return names.Name{}, names.Name{}, false
	}
	return t.rangeLo, t.rangeHi, true
}

// AsFun returns the argument and result types and true if t is a Fun type.
func (t Type) AsFun() (from, to Type, ok bool) {
	if t.kind != KindFun {
		return Type{}, Type{}, false
	}
	return t.fun.from, t.fun.to, true
}

// AsProduct returns the two element types and true if t is a Product type.
func (t Type) AsProduct() (fst, snd Type, ok bool) {
	if t.kind != KindProduct {
		return Type{}, Type{}, false
	}
	return t.product.fst, t.product.snd, true
}

// AsVar returns the mutability and variable id and true if t is a Var type.
func (t Type) AsVar() (Mutability, VarID, bool) {
	if t.kind != KindVar {
		return 0, 0, false
	}
	return t.mutability, t.variable, true
}

// AsInstantiated returns the wrapped type and its instantiation mapping and
// true if t is an Instantiated type.
func (t Type) AsInstantiated() (inner Type, mapping map[names.Name]Type, ok bool) {
	if t.kind != KindInstantiated {
		return Type{}, nil, false
	}
	return t.inst.inner, t.inst.mapping, true
}

// WithMutability returns a copy of t with every Var's mutability set to m,
// recursing through Fun, Product, and Instantiated. This is how a schema's
// body is flipped between the Immutable form stored in a Context and the
// Mutable form the solver instantiates fresh variables into (spec §4.1).
func (t Type) WithMutability(m Mutability) Type {
	switch t.kind {
	case KindName, KindRange, KindNumber, KindInvalid:
		return t
	case KindFun:
		return FunType(t.fun.from.WithMutability(m), t.fun.to.WithMutability(m))
	case KindProduct:
		return ProductType(t.product.fst.WithMutability(m), t.product.snd.WithMutability(m))
	case KindVar:
		return VarType(m, t.variable)
	case KindInstantiated:
		return InstantiatedType(t.inst.inner.WithMutability(m), t.inst.mapping)
	default:
		panic(fmt.Sprintf("types: unhandled kind %d in WithMutability", t.kind))
	}
}

// Substitute replaces every Name type found in mapping's keys with its
// image, recursing into it in turn (so a chain of Name -> Name ->
// concrete-type resolves fully). Context.Instantiate uses it to apply a
// schema's instantiation; the solver does not call it, and keeps resolved
// variables in its own substitution map instead.
func Substitute(mapping map[names.Name]Type, t Type) Type {
	switch t.kind {
	case KindName:
		if repl, ok := mapping[t.name]; ok {
			return Substitute(mapping, repl)
		}
		return t
	case KindProduct:
		return ProductType(Substitute(mapping, t.product.fst), Substitute(mapping, t.product.snd))
	case KindFun:
		return FunType(Substitute(mapping, t.fun.from), Substitute(mapping, t.fun.to))
	case KindInstantiated:
		for k := range t.inst.mapping {
			if _, clash := mapping[k]; clash {
				panic("types: Substitute mapping clashes with an existing instantiation")
			}
		}
		return InstantiatedType(Substitute(mapping, t.inst.inner), t.inst.mapping)
	case KindRange, KindNumber, KindVar, KindInvalid:
		return t
	default:
		panic(fmt.Sprintf("types: unhandled kind %d in Substitute", t.kind))
	}
}
