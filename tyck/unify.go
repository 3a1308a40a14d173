package tyck

import (
	"upto/names"
	"upto/types"
)

// outcome is the three-way result of one unification or coercion step: it
// either settled right away, it found the two types genuinely incompatible,
// or it ran into an Immutable variable it has no right to resolve and has
// to come back to the whole obligation later. A schema's own parameters
// stay Immutable outside its definition, so they can only be observed, not
// bound, here.
type outcome int

const (
	resolved outcome = iota
	mismatch
	deferred
)

func combineOutcome(a, b outcome) outcome {
	if a == mismatch || b == mismatch {
		return mismatch
	}
	if a == deferred || b == deferred {
		return deferred
	}
	return resolved
}

// resolveShallow chases Var substitutions and Instantiated wrappers until
// it reaches a Type whose own shape can be matched on, folding every
// mapping it passes through into inst.
func (t *Typer) resolveShallow(inst Inst, ty types.Type) (Inst, types.Type) {
	for {
		switch ty.Kind() {
		case types.KindInstantiated:
			inner, mapping, _ := ty.AsInstantiated()
			inst = mergeInst(inst, mapping)
			ty = inner
		case types.KindVar:
			_, v, _ := ty.AsVar()
			if !t.hasSubst(v) {
				return inst, ty
			}
			newInst, resolvedTy := t.getSubst(v)
			inst = mergeInst(inst, newInst)
			ty = resolvedTy
		default:
			return inst, ty
		}
	}
}

// Equate requires a and b to be structurally equal, reporting ET00 on
// mismatch and ET06 if resolving either side would require a variable to
// contain itself. If neither side can be settled yet (both immutable
// variables), the obligation is requeued as a Constraint for Solve to
// retry once something else has pinned one of them down.
func (t *Typer) Equate(at names.Span, a, b types.Type) {
	switch t.equate(at, Inst{}, Inst{}, a, b) {
	case mismatch:
		t.Bag.At(at).TyckIncompatibleTypes(t.pretty(a), t.pretty(b))
	case deferred:
		t.constraints = append(t.constraints, EqualConstraint(at, a, b))
	}
}

func (t *Typer) equate(at names.Span, leftInst, rightInst Inst, a, b types.Type) outcome {
	if a.IsInvalid() || b.IsInvalid() {
		return resolved
	}

	leftInst, a = t.resolveShallow(leftInst, a)
	rightInst, b = t.resolveShallow(rightInst, b)

	switch {
	case a.Kind() == types.KindVar && b.Kind() == types.KindVar:
		am, av, _ := a.AsVar()
		bm, bv, _ := b.AsVar()
		if av == bv {
			return resolved
		}
		if am == types.Mutable {
			return t.bindVar(at, leftInst, av, types.InstantiatedType(b, rightInst))
		}
		if bm == types.Mutable {
			return t.bindVar(at, rightInst, bv, types.InstantiatedType(a, leftInst))
		}
		return deferred

	case a.Kind() == types.KindVar:
		am, av, _ := a.AsVar()
		if am == types.Mutable {
			return t.bindVar(at, leftInst, av, types.InstantiatedType(b, rightInst))
		}
		return deferred

	case b.Kind() == types.KindVar:
		bm, bv, _ := b.AsVar()
		if bm == types.Mutable {
			return t.bindVar(at, rightInst, bv, types.InstantiatedType(a, leftInst))
		}
		return deferred
	}

	if a.Kind() != b.Kind() {
		if an, ok := a.AsName(); ok {
			if def, has := t.hasDefinition(an); has {
				return t.equate(at, leftInst, rightInst, def, b)
			}
		}
		if bn, ok := b.AsName(); ok {
			if def, has := t.hasDefinition(bn); has {
				return t.equate(at, leftInst, rightInst, a, def)
			}
		}
		return mismatch
	}

	switch a.Kind() {
	case types.KindName:
		an, _ := a.AsName()
		bn, _ := b.AsName()
		if an == bn {
			return resolved
		}
		if def, has := t.hasDefinition(an); has {
			return t.equate(at, leftInst, rightInst, def, b)
		}
		if def, has := t.hasDefinition(bn); has {
			return t.equate(at, leftInst, rightInst, a, def)
		}
		return mismatch

	case types.KindRange:
		alo, ahi, _ := a.AsRange()
		blo, bhi, _ := b.AsRange()
		if alo == blo && ahi == bhi {
			return resolved
		}
		return mismatch

	case types.KindNumber:
		return resolved

	case types.KindFun:
		afrom, ato, _ := a.AsFun()
		bfrom, bto, _ := b.AsFun()
		return combineOutcome(
			t.equate(at, leftInst, rightInst, afrom, bfrom),
			t.equate(at, leftInst, rightInst, ato, bto))

	case types.KindProduct:
		afst, asnd, _ := a.AsProduct()
		bfst, bsnd, _ := b.AsProduct()
		return combineOutcome(
			t.equate(at, leftInst, rightInst, afst, bfst),
			t.equate(at, leftInst, rightInst, asnd, bsnd))

	default:
		return mismatch
	}
}

func (t *Typer) bindVar(at names.Span, inst Inst, v types.VarID, ty types.Type) outcome {
	if occurs(v, ty) {
		t.Bag.At(at).TyckRecursiveInference()
		t.setSubst(inst, v, types.Invalid)
		return resolved
	}
	t.setSubst(inst, v, ty)
	return resolved
}
