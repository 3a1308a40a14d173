package lower

import (
	"fmt"

	"upto/lir"
	"upto/names"
	"upto/tyck"
	"upto/types"
)

// resolveChecked chases ty through inst, the solver's final substitution,
// and type-alias Definitions until it bottoms out at a shape lowerType can
// dispatch on directly: Range, Fun, Product, Number, or a still-opaque Name
// (a built-in with no alias body), or Invalid if resolution failed and a
// diagnostic has already been reported upstream. It returns the
// instantiation context active at the point resolution stopped, since a
// Fun or Product's components still need to be resolved against it.
func (l *Lowerer) resolveChecked(inst tyck.Inst, ty types.Type) (types.Type, tyck.Inst, bool) {
	switch ty.Kind() {
	case types.KindName:
		name, _ := ty.AsName()
		if mapped, ok := inst[name]; ok {
			return l.resolveChecked(inst, mapped)
		}
		if def, ok := l.Definitions[name]; ok {
			return l.resolveChecked(inst, def)
		}
		return ty, inst, true

	case types.KindVar:
		_, v, _ := ty.AsVar()
		resolved, ok := l.Subst[v]
		if !ok {
			return types.Invalid, inst, false
		}
		merged := tyck.Inst(types.MergeInstantiations(inst, resolved.Inst))
		return l.resolveChecked(merged, resolved.Type)

	case types.KindInstantiated:
		inner, mapping, _ := ty.AsInstantiated()
		merged := tyck.Inst(types.MergeInstantiations(inst, mapping))
		return l.resolveChecked(merged, inner)

	case types.KindInvalid:
		return ty, inst, false

	default:
		return ty, inst, true
	}
}

// tryLowerType resolves ty (a checked HIR-level type, possibly still
// carrying unresolved Vars or implicit-parameter Names) down to a machine
// TypeID. A Range's bounds are resolved by a narrow constant evaluator
// (resolveBound) rather than deferring to partial evaluation: lowering runs
// before that pass, but a machine Range type needs concrete bounds to size
// a register, so lower only ever succeeds here for bounds simple enough to
// fold immediately (a literal, or a chain of plain references to one).
// Anything else is reported as EE02 and fails, matching how a genuinely
// run-time-computed global is already diagnosed.
func (l *Lowerer) tryLowerType(inst tyck.Inst, ty types.Type) (lir.TypeID, bool) {
	resolved, inst, ok := l.resolveChecked(inst, ty)
	if !ok {
		return 0, false
	}

	switch resolved.Kind() {
	case types.KindRange:
		loName, hiName, _ := resolved.AsRange()
		lo, ok := l.resolveBound(loName)
		if !ok {
			l.Bag.At(l.Names.Span(loName)).ElabRequiresInit()
			return 0, false
		}
		hi, ok := l.resolveBound(hiName)
		if !ok {
			l.Bag.At(l.Names.Span(hiName)).ElabRequiresInit()
			return 0, false
		}
		return l.Types.Add(lir.RangeType(lo, hi)), true

	case types.KindFun:
		from, to, _ := resolved.AsFun()
		fromID, ok := l.tryLowerType(inst, from)
		if !ok {
			return 0, false
		}
		toID, ok := l.tryLowerType(inst, to)
		if !ok {
			return 0, false
		}
		return l.Types.Add(lir.FunType([]lir.TypeID{fromID}, []lir.TypeID{toID})), true

	case types.KindProduct:
		fst, snd, _ := resolved.AsProduct()
		fstID, ok := l.tryLowerType(inst, fst)
		if !ok {
			return 0, false
		}
		sndID, ok := l.tryLowerType(inst, snd)
		if !ok {
			return 0, false
		}
		return l.Types.Add(lir.ProductType(fstID, sndID)), true

	case types.KindNumber:
		// An un-defaulted literal type reaching lower means ambiguity
		// resolution already failed and ET05 was reported; nothing left
		// to lower.
		return 0, false

	case types.KindInvalid:
		return 0, false

	case types.KindName:
		internalError("type name %s has no alias or instantiation binding", l.Names.Path(mustName(resolved)))
		return 0, false

	default:
		internalError("unhandled kind %d in tryLowerType", resolved.Kind())
		return 0, false
	}
}

func mustName(ty types.Type) names.Name {
	name, _ := ty.AsName()
	return name
}

// resolveBound evaluates a Range bound Name to a concrete integer: it must
// be a top-level definition whose checked body is, after stripping any
// Coerce, a numeric literal or a bare reference to another bound of the
// same shape. Anything requiring real evaluation (arithmetic, a call) is
// left for a future partial-evaluation pass; lower can't fold it yet.
func (l *Lowerer) resolveBound(name names.Name) (int64, bool) {
	def, ok := l.valuesByName[name]
	if !ok {
		return 0, false
	}
	return l.resolveConst(def.Body)
}

func (l *Lowerer) resolveConst(e tyck.Expr) (int64, bool) {
	switch e.Kind {
	case tyck.ExprNum:
		v, _ := e.AsNum()
		return int64(v), true
	case tyck.ExprName:
		name, _ := e.AsName()
		return l.resolveBound(name)
	case tyck.ExprCoerce:
		inner, _, _ := e.AsCoerce()
		return l.resolveConst(inner)
	default:
		return 0, false
	}
}

// encodeType renders a fully resolved checked type into a string key stable
// enough to dedup instantiation sites by: two call sites that resolve to
// structurally the same concrete type arguments get the same key, since
// every leaf here is either a names.Name (globally unique) or a VarID.
func (l *Lowerer) encodeType(ty types.Type) string {
	switch ty.Kind() {
	case types.KindName:
		name, _ := ty.AsName()
		return fmt.Sprintf("N%d", name.ID())
	case types.KindRange:
		lo, hi, _ := ty.AsRange()
		return fmt.Sprintf("R%d:%d", lo.ID(), hi.ID())
	case types.KindFun:
		from, to, _ := ty.AsFun()
		return fmt.Sprintf("F(%s->%s)", l.encodeType(from), l.encodeType(to))
	case types.KindProduct:
		fst, snd, _ := ty.AsProduct()
		return fmt.Sprintf("P(%s,%s)", l.encodeType(fst), l.encodeType(snd))
	case types.KindNumber:
		return "#"
	case types.KindVar:
		_, v, _ := ty.AsVar()
		return fmt.Sprintf("V%d", v)
	case types.KindInstantiated:
		inner, _, _ := ty.AsInstantiated()
		return "I" + l.encodeType(inner)
	default:
		return "?"
	}
}
