// Package tyck is the bidirectional typechecker: it walks hir's
// resolved-but-unchecked tree against the coercion-aware type system in
// types, producing the checked tree this package also defines, plus a
// Coercions ledger the elaborator consults for every narrowing it has to
// insert a run-time check for.
package tyck

import (
	"upto/hir"
	"upto/names"
	"upto/types"
)

// Typeck checks a whole compilation unit.
// Type definitions are lowered into Definitions up front, since a type's
// kind never depends on a value (only a Range's bounds, resolved much
// later by partial evaluation, do). Value definitions are then grouped
// into strongly connected components and processed component by component:
// every pattern in a component is bound before any of their bodies are
// checked, so mutually recursive definitions need no forward declarations;
// each component's leftover constraints are solved before moving on to the
// next, which can depend on it.
func (t *Typer) Typeck(decls hir.Decls) Decls {
	for _, def := range decls.Types {
		t.Definitions[def.Name] = t.LowerType(def.Anno, types.Mutable)
	}

	byName := make(map[names.Name]hir.ValueDef, len(decls.Values))
	for _, v := range decls.Values {
		byName[v.Name] = v
	}

	var out Decls
	for _, comp := range tarjan(dependencies(decls)) {
		out.Values = append(out.Values, t.typeckComponent(comp, byName)...)
	}
	return out
}

type boundValue struct {
	pat  Pat
	body hir.Expr
	span names.Span
}

func (t *Typer) typeckComponent(comp Component, byName map[names.Name]hir.ValueDef) []ValueDef {
	var these []hir.ValueDef
	for _, name := range comp.Names {
		if v, ok := byName[name]; ok {
			these = append(these, v)
		}
	}
	if len(these) == 0 {
		return nil
	}

	bound := make([]boundValue, 0, len(these))
	for _, v := range these {
		var anno types.Type
		if v.Anno != nil {
			anno = t.LowerType(*v.Anno, types.Mutable)
		} else {
			anno = types.VarType(types.Mutable, t.Context.Fresh())
		}
		pat := t.BindPatSchema(v.Pat, anno, v.Implicit)
		bound = append(bound, boundValue{pat: pat, body: v.Body, span: v.Span})
	}

	values := make([]ValueDef, 0, len(bound))
	for i, b := range bound {
		body := t.Check(Because{Span: b.pat.Span}, b.body, b.pat.Type)
		values = append(values, ValueDef{
			Name:     these[i].Name,
			Implicit: these[i].Implicit,
			Pat:      b.pat,
			Body:     body,
			Span:     b.span,
		})
	}

	t.Solve()

	// Once this component's own bodies are fully checked, its definitions'
	// signatures are fixed: flip them Immutable so components that call into
	// them later can observe but never narrow their inferred shape.
	for _, v := range these {
		t.Context.MakeMutability(v.Name, types.Immutable)
	}

	return values
}
