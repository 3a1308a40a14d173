// Package lower turns a typechecked compilation unit into LIR: every
// monomorphic top-level value becomes a Procedure (CPS, one block graph),
// every polymorphic one is specialized on demand as explicit instantiation
// sites are discovered, and every checked type is resolved down to the
// small machine-level type language lir.Types pools.
package lower

import (
	"fmt"

	"upto/diagnostics"
	"upto/lir"
	"upto/names"
	"upto/tyck"
	"upto/types"
)

// Lowerer holds the state threaded through one compilation unit's lowering:
// the typechecker's output (Context, Definitions, Subst) to resolve checked
// types against, and the LIR pools being built up.
type Lowerer struct {
	Names       *names.Names
	Context     *types.Context
	Definitions map[names.Name]types.Type
	Subst       map[types.VarID]tyck.VarSubst
	Coercions   *types.Coercions
	Bag         *diagnostics.Bag

	Types       *lir.Types
	Info        *lir.NameInfo
	TypeContext *lir.Context
	Procs       map[names.Name]*lir.Procedure

	valuesByName map[names.Name]tyck.ValueDef
	instCache    map[string]names.Name
	nextVirtual  lir.VirtualID
}

// Lower lowers every value in decls into a lir.Program, mutating nothing in
// tyck's own output. Polymorphic definitions contribute nothing directly;
// they're lowered lazily, once lowering an ExprInst call site needs a
// specific instantiation of them (see instantiate in instantiate.go).
func Lower(nt *names.Names, typesContext *types.Context, definitions map[names.Name]types.Type, subst map[types.VarID]tyck.VarSubst, coercions *types.Coercions, bag *diagnostics.Bag, decls tyck.Decls) *lir.Program {
	l := &Lowerer{
		Names:       nt,
		Context:     typesContext,
		Definitions: definitions,
		Subst:       subst,
		Coercions:   coercions,
		Bag:         bag,

		Types:       lir.NewTypes(),
		Info:        lir.NewNameInfo(),
		TypeContext: lir.NewContext(),
		Procs:       make(map[names.Name]*lir.Procedure),

		valuesByName: make(map[names.Name]tyck.ValueDef, len(decls.Values)),
		instCache:    make(map[string]names.Name),
	}

	for _, def := range decls.Values {
		l.valuesByName[def.Name] = def
	}
	for _, def := range decls.Values {
		l.lowerValueDef(def)
	}

	return &lir.Program{
		Procs:   l.Procs,
		Values:  make(map[names.Name]lir.Value),
		Types:   l.Types,
		Context: l.TypeContext,
		Info:    l.Info,
	}
}

func (l *Lowerer) freshVirtual() lir.VirtualID {
	id := l.nextVirtual
	l.nextVirtual++
	return id
}

// lowerValueDef lowers one top-level definition. A polymorphic definition
// (one with implicit type parameters) contributes no code of its own here:
// every concrete specialization of it is produced later, the first time an
// explicit instantiation references it.
func (l *Lowerer) lowerValueDef(def tyck.ValueDef) {
	if len(def.Implicit) > 0 {
		if _, ok := def.Pat.AsName(); !ok {
			l.Bag.At(def.Pat.Span).ElabPolymorphicDestructure()
		}
		return
	}

	proc, ok := l.lowerBinding(nil, def.Name, def.Body)
	if !ok {
		return
	}
	l.destructMonomorphic(nil, def.Name, def.Pat, proc)
}

// registerProc records proc under name in both Procs and Info, marking it a
// procedure only if it actually takes parameters: a zero-param binding is a
// constant computation, not something callers Call into.
func (l *Lowerer) registerProc(name names.Name, proc *lir.Procedure) {
	l.Procs[name] = proc
	if len(proc.Params) > 0 {
		l.Info.Add(name, lir.InfoProcedure)
	} else {
		l.Info.Add(name, 0)
	}
}

// freshLocal mints a Generated name under ctx bound to ty in TypeContext, for
// the synthetic intermediate bindings tuple destructuring needs.
func (l *Lowerer) freshLocal(ctx names.Name, ty lir.TypeID) names.Name {
	name := l.Names.Generated(ctx, true, "t", names.Span{})
	l.TypeContext.Add(name, ty)
	return name
}

func internalError(format string, args ...interface{}) {
	panic(fmt.Sprintf("lower: "+format, args...))
}

// pretty renders ty through the same substitution the solver left behind,
// for the one diagnostic (a `?` hole) that wants to show a user a type
// lowering itself never needs to inspect further.
func (l *Lowerer) pretty(ty types.Type) string {
	flat := make(map[types.VarID]types.Type, len(l.Subst))
	for v, entry := range l.Subst {
		flat[v] = entry.Type
	}
	return types.Pretty(l.Names, flat, types.NewPrettyMap(), ty)
}
