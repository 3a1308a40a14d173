package lower

import (
	"fmt"
	"strings"

	"upto/lir"
	"upto/names"
	"upto/tyck"
	"upto/types"
)

// instantiate resolves one ExprInst call site to the top-level name its
// callee should become: name itself, if the checked tree already names a
// monomorphic definition directly, or a freshly minted specialization of a
// polymorphic template, memoized by (name, concrete type arguments) so two
// call sites instantiating the same template the same way share one
// Procedure.
func (l *Lowerer) instantiate(inst tyck.Inst, name names.Name, args []tyck.InstArg, span names.Span) (names.Name, bool) {
	binding := l.Context.Get(name)
	if !binding.IsSchema() {
		return name, true
	}

	params := binding.Params()
	n := len(params)
	if len(args) < n {
		n = len(args)
	}

	mapping := make(map[names.Name]types.Type, n)
	var key strings.Builder
	fmt.Fprintf(&key, "%d", name.ID())
	for i := 0; i < n; i++ {
		resolved, _, ok := l.resolveChecked(inst, args[i].Type)
		if !ok {
			return names.Name{}, false
		}
		mapping[params[i]] = resolved
		fmt.Fprintf(&key, "|%s", l.encodeType(resolved))
	}

	if target, ok := l.instCache[key.String()]; ok {
		return target, true
	}

	def, ok := l.valuesByName[name]
	if !ok {
		return names.Name{}, false
	}

	target := l.Names.Generated(name, true, l.Names.Text(name), span)
	// Reserve the cache entry before lowering the template's own body, so
	// a self-recursive polymorphic definition instantiated with the same
	// arguments inside itself resolves back to this same target instead
	// of looping.
	l.instCache[key.String()] = target

	proc, ok := l.lowerBinding(mapping, target, def.Body)
	if !ok {
		return names.Name{}, false
	}
	l.registerProc(target, proc)
	if ty, ok := l.tryLowerType(mapping, def.Pat.Type); ok {
		l.TypeContext.Add(target, ty)
	}

	return target, true
}

// lowerNestedLam lowers a Lam found in the middle of an expression (as
// opposed to one directly forming a definition's whole body) into its own
// Procedure. Because this core's LIR procedures have no captured
// environment, any name the Lam's body refers to that isn't its own
// parameter must be a top-level binding, never one of the enclosing
// procedure's locals; ElabClosureNotPermitted reports every offending
// reference if that's violated.
func (l *Lowerer) lowerNestedLam(b *builder, e tyck.Expr) (*lir.Procedure, bool) {
	param, body, _ := e.AsLam()

	bound := map[names.Name]bool{}
	bindPatNames(param, bound)

	var free []tyck.Expr
	collectFree(body, bound, &free)

	var offending []names.Span
	for _, use := range free {
		name, _ := use.AsName()
		if _, isLocal := b.locals[name]; isLocal {
			offending = append(offending, use.Span)
		}
	}
	if len(offending) > 0 {
		l.Bag.At(e.Span).ElabClosureNotPermitted(offending)
		return nil, false
	}

	return l.lowerBinding(b.inst, b.ctx, e)
}

// collectFree appends every ExprName node in e not covered by bound to out,
// recursing through every expression shape and extending bound with each
// nested Lam's own parameter as it descends.
func collectFree(e tyck.Expr, bound map[names.Name]bool, out *[]tyck.Expr) {
	switch e.Kind {
	case tyck.ExprName:
		name, _ := e.AsName()
		if !bound[name] {
			*out = append(*out, e)
		}

	case tyck.ExprLam:
		param, body, _ := e.AsLam()
		inner := cloneBoundSet(bound)
		bindPatNames(param, inner)
		collectFree(body, inner, out)

	case tyck.ExprApp:
		fun, arg, _ := e.AsApp()
		collectFree(fun, bound, out)
		collectFree(arg, bound, out)

	case tyck.ExprTuple:
		fst, snd, _ := e.AsTuple()
		collectFree(fst, bound, out)
		collectFree(snd, bound, out)

	case tyck.ExprCoerce:
		inner, _, _ := e.AsCoerce()
		collectFree(inner, bound, out)

	case tyck.ExprInst, tyck.ExprNum, tyck.ExprHole, tyck.ExprInvalid:
		// ExprInst only ever names a top-level schema, never a local.
	}
}

func bindPatNames(p tyck.Pat, bound map[names.Name]bool) {
	switch p.Kind {
	case tyck.PatName:
		name, _ := p.AsName()
		bound[name] = true
	case tyck.PatTuple:
		fst, snd, _ := p.AsTuple()
		bindPatNames(fst, bound)
		bindPatNames(snd, bound)
	}
}

func cloneBoundSet(b map[names.Name]bool) map[names.Name]bool {
	out := make(map[names.Name]bool, len(b))
	for k := range b {
		out[k] = true
	}
	return out
}
