package tyck

import (
	"upto/hir"
	"upto/types"
)

// LowerType turns a parsed-and-resolved type annotation into the solver's
// Type language, minting a fresh variable of the given mutability for every
// wildcard it encounters.
func (t *Typer) LowerType(anno hir.TypeAnno, mutability types.Mutability) types.Type {
	switch anno.Kind {
	case hir.TypeAnnoName:
		name, _ := anno.AsName()
		return types.NamedType(name)

	case hir.TypeAnnoRange:
		lo, hi, _ := anno.AsRange()
		return types.RangeType(lo, hi)

	case hir.TypeAnnoFun:
		from, to, _ := anno.AsFun()
		return types.FunType(t.LowerType(from, mutability), t.LowerType(to, mutability))

	case hir.TypeAnnoProduct:
		fst, snd, _ := anno.AsProduct()
		return types.ProductType(t.LowerType(fst, mutability), t.LowerType(snd, mutability))

	case hir.TypeAnnoWildcard:
		return types.VarType(mutability, t.Context.Fresh())

	case hir.TypeAnnoInvalid:
		return types.Invalid

	default:
		return types.Invalid
	}
}
