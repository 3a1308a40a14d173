package tyck

import (
	"upto/names"
	"upto/types"
)

// coerceResult is a coerce step's outcome: resolved carries the Status the
// Coercions ledger should eventually record for the enclosing Assignable
// constraint; mismatch and deferred behave as in outcome.
type coerceResult struct {
	result outcome
	status types.Status
}

func combineCoerce(a, b coerceResult) coerceResult {
	o := combineOutcome(a.result, b.result)
	if o != resolved {
		return coerceResult{result: o}
	}
	return coerceResult{result: resolved, status: types.Combine(a.status, b.status)}
}

// Assign requires from to be assignable into into, recording the strength
// of the coercion under id. Like Equate, an obligation that can't be
// settled yet because it's blocked on an Immutable variable is requeued for
// Solve to retry.
func (t *Typer) Assign(at names.Span, id types.CoercionID, into, from types.Type) {
	res := t.coerce(at, Inst{}, Inst{}, into, from)
	switch res.result {
	case mismatch:
		t.Bag.At(at).TyckIncompatibleTypes(t.pretty(into), t.pretty(from))
		t.Coercions.Set(id, types.Invalid)
	case deferred:
		t.constraints = append(t.constraints, AssignableConstraint(at, id, into, from))
	case resolved:
		t.Coercions.Set(id, res.status)
	}
}

func (t *Typer) coerce(at names.Span, leftInst, rightInst Inst, into, from types.Type) coerceResult {
	if into.IsInvalid() || from.IsInvalid() {
		return coerceResult{result: resolved, status: types.Equal}
	}

	leftInst, into = t.resolveShallow(leftInst, into)
	rightInst, from = t.resolveShallow(rightInst, from)

	switch {
	case into.Kind() == types.KindVar && from.Kind() == types.KindVar:
		im, iv, _ := into.AsVar()
		fm, fv, _ := from.AsVar()
		if iv == fv {
			return coerceResult{result: resolved, status: types.Equal}
		}
		if im == types.Mutable {
			return t.bindCoerceVar(at, leftInst, iv, types.InstantiatedType(from, rightInst))
		}
		if fm == types.Mutable {
			return t.bindCoerceVar(at, rightInst, fv, types.InstantiatedType(into, leftInst))
		}
		return coerceResult{result: deferred}

	case into.Kind() == types.KindVar:
		im, iv, _ := into.AsVar()
		if im == types.Mutable {
			return t.bindCoerceVar(at, leftInst, iv, types.InstantiatedType(from, rightInst))
		}
		return coerceResult{result: deferred}

	case from.Kind() == types.KindVar:
		fm, fv, _ := from.AsVar()
		if fm == types.Mutable {
			return t.bindCoerceVar(at, rightInst, fv, types.InstantiatedType(into, leftInst))
		}
		return coerceResult{result: deferred}
	}

	// Number unifies freely with any other numeric type; it only narrows
	// once the solver pins the literal down at a use site.
	if into.Kind() == types.KindNumber && from.Kind() == types.KindNumber {
		return coerceResult{result: resolved, status: types.Equal}
	}
	if into.Kind() == types.KindNumber {
		if t.isNumeric(from) {
			return coerceResult{result: resolved, status: types.Coercible}
		}
		return coerceResult{result: mismatch}
	}
	if from.Kind() == types.KindNumber {
		if t.isNumeric(into) {
			return coerceResult{result: resolved, status: types.Coercible}
		}
		return coerceResult{result: mismatch}
	}

	if into.Kind() != from.Kind() {
		if inName, ok := into.AsName(); ok {
			if def, has := t.hasDefinition(inName); has {
				return t.coerce(at, leftInst, rightInst, def, from)
			}
		}
		if fromName, ok := from.AsName(); ok {
			if def, has := t.hasDefinition(fromName); has {
				return t.coerce(at, leftInst, rightInst, into, def)
			}
		}
		return coerceResult{result: mismatch}
	}

	switch into.Kind() {
	case types.KindName:
		inName, _ := into.AsName()
		fromName, _ := from.AsName()
		if inName == fromName {
			return coerceResult{result: resolved, status: types.Equal}
		}
		if def, has := t.hasDefinition(inName); has {
			return t.coerce(at, leftInst, rightInst, def, from)
		}
		if def, has := t.hasDefinition(fromName); has {
			return t.coerce(at, leftInst, rightInst, into, def)
		}
		return coerceResult{result: mismatch}

	case types.KindRange:
		ilo, ihi, _ := into.AsRange()
		flo, fhi, _ := from.AsRange()
		if ilo == flo && ihi == fhi {
			return coerceResult{result: resolved, status: types.Equal}
		}
		// Bounds are Names here; whether flo..fhi actually fits inside
		// ilo..ihi can only be checked once partial evaluation has resolved
		// them to concrete integers.
		t.Bag.At(at).TyckNarrowRange(t.pretty(into), t.pretty(from))
		return coerceResult{result: resolved, status: types.Coercible}

	case types.KindFun:
		ifrom, ito, _ := into.AsFun()
		ffrom, fto, _ := from.AsFun()
		argRes := t.coerce(at, rightInst, leftInst, ffrom, ifrom) // contravariant
		retRes := t.coerce(at, leftInst, rightInst, ito, fto)
		return combineCoerce(argRes, retRes)

	case types.KindProduct:
		ifst, isnd, _ := into.AsProduct()
		ffst, fsnd, _ := from.AsProduct()
		return combineCoerce(
			t.coerce(at, leftInst, rightInst, ifst, ffst),
			t.coerce(at, leftInst, rightInst, isnd, fsnd))

	default:
		return coerceResult{result: mismatch}
	}
}

func (t *Typer) bindCoerceVar(at names.Span, inst Inst, v types.VarID, ty types.Type) coerceResult {
	if occurs(v, ty) {
		t.Bag.At(at).TyckRecursiveInference()
		t.setSubst(inst, v, types.Invalid)
		return coerceResult{result: resolved, status: types.Invalid}
	}
	t.setSubst(inst, v, ty)
	return coerceResult{result: resolved, status: types.Equal}
}

// isNumeric reports whether ty is, or aliases, a Range or Number.
func (t *Typer) isNumeric(ty types.Type) bool {
	switch ty.Kind() {
	case types.KindRange, types.KindNumber:
		return true
	case types.KindName:
		n, _ := ty.AsName()
		return t.isNumericName(n)
	default:
		return false
	}
}

// CheckNumeric requires ty to eventually resolve to a numeric type,
// reporting ET04 if it settles on something else. An unresolved Immutable
// variable defers the obligation.
func (t *Typer) CheckNumeric(at names.Span, because Because, ty types.Type) {
	_, resolvedTy := t.resolveShallow(Inst{}, ty)
	if resolvedTy.IsInvalid() {
		return
	}
	if resolvedTy.Kind() == types.KindVar {
		t.constraints = append(t.constraints, IsNumericConstraint(at, because, ty))
		return
	}
	if !t.isNumeric(resolvedTy) {
		t.Bag.At(at).TyckNotANumber(t.pretty(resolvedTy))
	}
}
