package types

import (
	"strconv"
	"strings"

	"upto/names"
)

// PrettyMap assigns stable, short display names ('a, 'b, ... 'z, 'aa, ...)
// to unification variables across a whole diagnostic pass, so that the same
// unresolved variable prints the same way in every message it appears in
// (spec §7 "Error recovery" implies coherent diagnostics; supplemented
// feature, see SPEC_FULL.md).
type PrettyMap struct {
	assigned map[VarID]string
	curr     int
}

// NewPrettyMap creates an empty PrettyMap.
func NewPrettyMap() *PrettyMap {
	return &PrettyMap{assigned: make(map[VarID]string)}
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

func (m *PrettyMap) label(v VarID) string {
	if name, ok := m.assigned[v]; ok {
		return name
	}

	id := m.curr
	m.curr++

	var b strings.Builder
	b.WriteByte('\'')
	if id == 0 {
		b.WriteByte(alphabet[0])
	} else {
		digits := []byte{}
		n := len(alphabet)
		id++
		for id != 0 {
			id--
			digits = append(digits, alphabet[id%n])
			id /= n
		}
		for i := len(digits) - 1; i >= 0; i-- {
			b.WriteByte(digits[i])
		}
	}

	label := b.String()
	m.assigned[v] = label
	return label
}

// Pretty renders ty for a diagnostic message. subst resolves any
// unification variables that the solver has already pinned down to a
// concrete type; anything left unresolved falls back to the PrettyMap's
// stable letter. This is purely for error messages (spec §2 "Pretty
// printing" is out of scope for normal output); it never needs to
// round-trip back into a Type.
func Pretty(nt *names.Names, subst map[VarID]Type, pm *PrettyMap, ty Type) string {
	return prettyInst(nt, subst, pm, nil, ty)
}

func prettyInst(nt *names.Names, subst map[VarID]Type, pm *PrettyMap, insts []map[names.Name]Type, ty Type) string {
	switch ty.kind {
	case KindName:
		for _, inst := range insts {
			if repl, ok := inst[ty.name]; ok {
				return prettyInst(nt, subst, pm, insts, repl)
			}
		}
		return nt.Path(ty.name)

	case KindRange:
		return prettyRangeBound(nt, ty.rangeLo) + " upto " + prettyRangeBound(nt, ty.rangeHi)

	case KindFun:
		from, to, _ := ty.AsFun()
		return prettyInst(nt, subst, pm, insts, from) + " -> " + prettyInst(nt, subst, pm, insts, to)

	case KindProduct:
		fst, snd, _ := ty.AsProduct()
		return "(" + prettyInst(nt, subst, pm, insts, fst) + ", " + prettyInst(nt, subst, pm, insts, snd) + ")"

	case KindNumber:
		return "number"

	case KindVar:
		if resolved, ok := subst[ty.variable]; ok {
			return prettyInst(nt, subst, pm, insts, resolved)
		}
		return pm.label(ty.variable)

	case KindInstantiated:
		inner, mapping, _ := ty.AsInstantiated()
		return prettyInst(nt, subst, pm, append(insts, mapping), inner)

	case KindInvalid:
		return "<invalid>"

	default:
		return "<?>"
	}
}

// prettyRangeBound renders a range bound name. Before partial evaluation
// assigns it a concrete value, a bound is just the name of the expression
// it came from; Pretty never has access to a folded integer, since that
// only exists after lowering and evaluation run (spec §4.2).
func prettyRangeBound(nt *names.Names, bound names.Name) string {
	if bound.IsZero() {
		return "?"
	}
	return nt.Path(bound)
}

// PrettyInt is a convenience used once a bound has been folded to a
// concrete integer by the partial evaluator, for dumps and diagnostics that
// run after that point (spec §4.2 "Range checking").
func PrettyInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
