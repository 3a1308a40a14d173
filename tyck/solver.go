package tyck

import (
	"upto/diagnostics"
	"upto/names"
	"upto/types"
)

// Inst is the active instantiation context threaded through unification:
// when one side of a comparison is wrapped in an Instantiated(inner,
// mapping), mapping gets merged into the Inst before recursing into inner,
// so that a bare Name referring to one of its parameters resolves through
// it instead of needing substitution applied eagerly everywhere.
type Inst map[names.Name]types.Type

func mergeInst(a, b Inst) Inst {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	merged := make(Inst, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

// substEntry is what the solver records once a mutable variable has been
// resolved: the type it was set to, and the instantiation context active
// at the point it was set (needed to correctly resolve any Names still
// inside that type).
type substEntry struct {
	inst Inst
	ty   types.Type
}

// Typer is the bidirectional typechecker's solver state for one
// compilation job: the Context it binds names into, the Coercions ledger
// it records assignability results into, the worklist of constraints still
// to solve, and the substitution found so far for each unification
// variable.
type Typer struct {
	Names       *names.Names
	Context     *types.Context
	Coercions   *types.Coercions
	Bag         *diagnostics.Bag
	Definitions map[names.Name]types.Type // type aliases, for IsNumeric and Name-vs-Name coercion

	subst       map[types.VarID]substEntry
	constraints []Constraint
}

// NewTyper creates a Typer ready to check decls against an empty Context.
// definitions should already contain every top-level type alias, so a Name
// type can be resolved to what it stands for.
func NewTyper(nt *names.Names, definitions map[names.Name]types.Type) *Typer {
	return &Typer{
		Names:       nt,
		Context:     types.NewContext(),
		Coercions:   types.NewCoercions(),
		Bag:         diagnostics.NewBag(),
		Definitions: definitions,
		subst:       make(map[types.VarID]substEntry),
	}
}

func (t *Typer) hasSubst(v types.VarID) bool {
	_, ok := t.subst[v]
	return ok
}

func (t *Typer) getSubst(v types.VarID) (Inst, types.Type) {
	entry := t.subst[v]
	return entry.inst, entry.ty
}

func (t *Typer) setSubst(inst Inst, v types.VarID, ty types.Type) {
	t.subst[v] = substEntry{inst: inst, ty: ty}
}

func (t *Typer) pretty(ty types.Type) string {
	return types.Pretty(t.Names, t.finalSubst(), types.NewPrettyMap(), ty)
}

func (t *Typer) finalSubst() map[types.VarID]types.Type {
	flat := make(map[types.VarID]types.Type, len(t.subst))
	for v, entry := range t.subst {
		flat[v] = entry.ty
	}
	return flat
}

// VarSubst is one unification variable's final resolution: the type it was
// set to, plus the instantiation context active when the solver set it (so
// a bare Name inside Type that refers to a schema parameter can still be
// chased to what that parameter meant at the resolution site).
type VarSubst struct {
	Inst Inst
	Type types.Type
}

// Subst exposes every variable the solver resolved, for lower to consult
// while it turns a checked Type into a machine type: a Var left unresolved
// here means an error was already reported for it.
func (t *Typer) Subst() map[types.VarID]VarSubst {
	out := make(map[types.VarID]VarSubst, len(t.subst))
	for v, entry := range t.subst {
		out[v] = VarSubst{Inst: entry.inst, Type: entry.ty}
	}
	return out
}

// hasDefinition reports whether name is a type alias with a known
// definition (as opposed to an opaque or built-in name).
func (t *Typer) hasDefinition(name names.Name) (types.Type, bool) {
	def, ok := t.Definitions[name]
	return def, ok
}

// isNumericName reports whether name's definition is ultimately a Range
// (chasing through further Name aliases), mirroring
// `thir::Definitions::is_numeric`.
func (t *Typer) isNumericName(name names.Name) bool {
	def, ok := t.Definitions[name]
	if !ok {
		return false
	}
	switch def.Kind() {
	case types.KindRange:
		return true
	case types.KindName:
		inner, _ := def.AsName()
		return t.isNumericName(inner)
	default:
		return false
	}
}

// occurs reports whether v appears anywhere inside ty, including inside any
// instantiation mapping ty carries.
func occurs(v types.VarID, ty types.Type) bool {
	switch ty.Kind() {
	case types.KindVar:
		_, w, _ := ty.AsVar()
		return w == v

	case types.KindFun:
		from, to, _ := ty.AsFun()
		return occurs(v, from) || occurs(v, to)

	case types.KindProduct:
		fst, snd, _ := ty.AsProduct()
		return occurs(v, fst) || occurs(v, snd)

	case types.KindInstantiated:
		inner, mapping, _ := ty.AsInstantiated()
		if occurs(v, inner) {
			return true
		}
		for _, mapped := range mapping {
			if occurs(v, mapped) {
				return true
			}
		}
		return false

	default:
		return false
	}
}
