package tyck

import (
	"upto/names"
	"upto/types"
)

// AssignFresh mints a fresh CoercionID for a from-into obligation, queues
// it, and returns the id so the caller can embed it in an ExprCoerce node.
func (t *Typer) AssignFresh(at names.Span, into, from types.Type) types.CoercionID {
	id := t.Coercions.Fresh()
	t.Assign(at, id, into, from)
	return id
}

// TypeFunction requires ty to describe a function, returning its argument
// and result types. A still-open variable is pinned to a fresh Fun shape;
// anything else is ET03.
func (t *Typer) TypeFunction(at names.Span, ty types.Type) (from, to types.Type) {
	switch ty.Kind() {
	case types.KindFun:
		return ty.AsFun()

	case types.KindVar:
		from := types.VarType(types.Mutable, t.Context.Fresh())
		to := types.VarType(types.Mutable, t.Context.Fresh())
		t.Equate(at, ty, types.FunType(from, to))
		return from, to

	case types.KindInvalid:
		return types.Invalid, types.Invalid

	default:
		t.Bag.At(at).TyckNotAFunction(t.pretty(ty))
		return types.Invalid, types.Invalid
	}
}

// TypeTuple requires ty to describe a two-element product, returning its
// element types. A still-open variable is pinned to a fresh Product shape;
// anything else is ET10.
func (t *Typer) TypeTuple(at names.Span, ty types.Type) (fst, snd types.Type) {
	switch ty.Kind() {
	case types.KindProduct:
		return ty.AsProduct()

	case types.KindVar:
		fst := types.VarType(types.Mutable, t.Context.Fresh())
		snd := types.VarType(types.Mutable, t.Context.Fresh())
		t.Equate(at, ty, types.ProductType(fst, snd))
		return fst, snd

	case types.KindInvalid:
		return types.Invalid, types.Invalid

	default:
		t.Bag.At(at).TyckTupleDestructureUnsupported()
		return types.Invalid, types.Invalid
	}
}

// TypeNumber requires ty to describe a number literal's type: a concrete
// Range, the still-ambiguous Number, or (deferred) an open variable. Only
// called while checking a Num expression against an expected type, so
// anything else is ET04.
func (t *Typer) TypeNumber(at names.Span, because Because, ty types.Type) types.Type {
	switch ty.Kind() {
	case types.KindRange, types.KindNumber, types.KindInvalid:
		return ty

	case types.KindName:
		name, _ := ty.AsName()
		if t.isNumericName(name) {
			return ty
		}
		t.Bag.At(at).TyckNotANumber(t.pretty(ty))
		return types.Invalid

	case types.KindVar:
		t.constraints = append(t.constraints, IsNumericConstraint(at, because, ty))
		return ty

	default:
		t.Bag.At(at).TyckNotANumber(t.pretty(ty))
		return types.Invalid
	}
}
