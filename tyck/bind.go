package tyck

import (
	"upto/hir"
	"upto/names"
	"upto/types"
)

// BindPat walks a surface pattern against the type it's expected to have,
// binding every name it introduces into the Context monomorphically, and
// returns the checked Pat.
func (t *Typer) BindPat(pat hir.Pat, ty types.Type) Pat {
	return t.bindPat(pat, ty, nil)
}

// BindPatSchema is BindPat for a definition's own top-level pattern: a bare
// name gets bound as a schema over implicit (so it can be explicitly
// instantiated later); everything else binds exactly as BindPat does, since
// only a whole definition's head can be polymorphic.
func (t *Typer) BindPatSchema(pat hir.Pat, ty types.Type, implicit []names.Name) Pat {
	return t.bindPat(pat, ty, implicit)
}

func (t *Typer) bindPat(pat hir.Pat, ty types.Type, implicit []names.Name) Pat {
	switch pat.Kind {
	case hir.PatName:
		name, _ := pat.AsName()
		if implicit != nil {
			t.Context.AddSchema(name, implicit, ty)
		} else {
			t.Context.Add(name, ty)
		}
		return NamePat(name, ty, pat.Span)

	case hir.PatTuple:
		a, b, _ := pat.AsTuple()
		fst, snd := t.TypeTuple(pat.Span, ty)
		checkedA := t.bindPat(a, fst, nil)
		checkedB := t.bindPat(b, snd, nil)
		return TuplePat(checkedA, checkedB, ty, pat.Span)

	case hir.PatAnno:
		inner, anno, _ := pat.AsAnno()
		lowered := t.LowerType(anno, types.Mutable)
		t.Equate(pat.Span, ty, lowered)
		return t.bindPat(inner, lowered, implicit)

	case hir.PatWildcard:
		return WildcardPat(ty, pat.Span)

	case hir.PatInvalid:
		return InvalidPat(pat.Span)

	default:
		return InvalidPat(pat.Span)
	}
}
