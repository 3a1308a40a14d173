package tyck

import (
	"upto/hir"
	"upto/names"
)

// dependencies builds the name-dependency graph of a set of declarations: n
// depends on m if m occurs free in n's definition. Types and values share
// one graph since a range's bounds can reference a value and a value's
// annotation can reference a type.
func dependencies(decls hir.Decls) map[names.Name]map[names.Name]struct{} {
	deps := make(map[names.Name]map[names.Name]struct{})

	for _, def := range decls.Types {
		defined := map[names.Name]struct{}{def.Name: {}}
		refs := annoRefers(defined, def.Anno)
		addDeps(deps, def.Name, refs)
	}

	for _, def := range decls.Values {
		defined, refsFromPat := patDefines(def.Pat)
		shadowed := map[names.Name]struct{}{}
		for name := range defined {
			shadowed[name] = struct{}{}
		}
		for _, implicit := range def.Implicit {
			shadowed[implicit] = struct{}{}
		}

		refs := union(refsFromPat, def.Anno, shadowed)
		refs = unionSet(refs, exprRefers(shadowed, def.Body))

		for name := range defined {
			addDeps(deps, name, refs)
		}
	}

	return deps
}

func union(refs map[names.Name]struct{}, anno *hir.TypeAnno, shadowed map[names.Name]struct{}) map[names.Name]struct{} {
	if anno == nil {
		return refs
	}
	return unionSet(refs, annoRefers(shadowed, *anno))
}

func addDeps(deps map[names.Name]map[names.Name]struct{}, name names.Name, refs map[names.Name]struct{}) {
	set, ok := deps[name]
	if !ok {
		set = make(map[names.Name]struct{})
		deps[name] = set
	}
	for ref := range refs {
		set[ref] = struct{}{}
	}
}

func unionSet(a, b map[names.Name]struct{}) map[names.Name]struct{} {
	out := make(map[names.Name]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func difference(a, b map[names.Name]struct{}) map[names.Name]struct{} {
	out := make(map[names.Name]struct{}, len(a))
	for k := range a {
		if _, in := b[k]; !in {
			out[k] = struct{}{}
		}
	}
	return out
}

// patDefines returns the names a pattern binds and the names it refers to
// (only its type annotations, if any, can refer to anything).
func patDefines(pat hir.Pat) (defined, refers map[names.Name]struct{}) {
	switch pat.Kind {
	case hir.PatInvalid, hir.PatWildcard:
		return nil, nil

	case hir.PatName:
		name, _ := pat.AsName()
		return map[names.Name]struct{}{name: {}}, nil

	case hir.PatTuple:
		a, b, _ := pat.AsTuple()
		defA, refA := patDefines(a)
		defB, refB := patDefines(b)
		return unionSet(defA, defB), unionSet(refA, refB)

	case hir.PatAnno:
		inner, ty, _ := pat.AsAnno()
		defined, refers := patDefines(inner)
		return defined, unionSet(refers, annoRefers(nil, ty))

	default:
		return nil, nil
	}
}

func annoRefers(shadowed map[names.Name]struct{}, ty hir.TypeAnno) map[names.Name]struct{} {
	switch ty.Kind {
	case hir.TypeAnnoWildcard, hir.TypeAnnoInvalid:
		return nil

	case hir.TypeAnnoName:
		name, _ := ty.AsName()
		if _, skip := shadowed[name]; skip {
			return nil
		}
		return map[names.Name]struct{}{name: {}}

	case hir.TypeAnnoRange:
		lo, hi, _ := ty.AsRange()
		refs := map[names.Name]struct{}{}
		if _, skip := shadowed[lo]; !skip {
			refs[lo] = struct{}{}
		}
		if _, skip := shadowed[hi]; !skip {
			refs[hi] = struct{}{}
		}
		return refs

	case hir.TypeAnnoFun:
		from, to, _ := ty.AsFun()
		return unionSet(annoRefers(shadowed, from), annoRefers(shadowed, to))

	case hir.TypeAnnoProduct:
		fst, snd, _ := ty.AsProduct()
		return unionSet(annoRefers(shadowed, fst), annoRefers(shadowed, snd))

	default:
		return nil
	}
}

func exprRefers(shadowed map[names.Name]struct{}, ex hir.Expr) map[names.Name]struct{} {
	switch ex.Kind {
	case hir.ExprInvalid, hir.ExprNum, hir.ExprHole:
		return nil

	case hir.ExprName:
		name, _ := ex.AsName()
		if _, skip := shadowed[name]; skip {
			return nil
		}
		return map[names.Name]struct{}{name: {}}

	case hir.ExprAnno:
		inner, ty, _ := ex.AsAnno()
		return unionSet(exprRefers(shadowed, inner), annoRefers(shadowed, ty))

	case hir.ExprApp:
		fun, arg, _ := ex.AsApp()
		return unionSet(exprRefers(shadowed, fun), exprRefers(shadowed, arg))

	case hir.ExprTuple:
		fst, snd, _ := ex.AsTuple()
		return unionSet(exprRefers(shadowed, fst), exprRefers(shadowed, snd))

	case hir.ExprInst:
		fun, args, _ := ex.AsInst()
		refs := exprRefers(shadowed, fun)
		for _, arg := range args {
			refs = unionSet(refs, annoRefers(shadowed, arg))
		}
		return refs

	case hir.ExprLam:
		param, body, _ := ex.AsLam()
		defined, refsInParam := patDefines(param)
		refsInParam = difference(refsInParam, shadowed)

		inner := map[names.Name]struct{}{}
		for k := range shadowed {
			inner[k] = struct{}{}
		}
		for k := range defined {
			inner[k] = struct{}{}
		}
		bodyRefs := exprRefers(inner, body)
		return unionSet(refsInParam, bodyRefs)

	default:
		return nil
	}
}
