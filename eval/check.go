package eval

import (
	"fmt"

	"upto/diagnostics"
	"upto/lir"
	"upto/names"
)

// checkResidual re-examines every Coerce instruction that survives partial
// evaluation: one whose operand wasn't static enough for reduceInstruction
// to fold away during reduction. original_source/crates/midend/src/eval/
// check.rs only ever checks a single concrete value against a Range's
// bounds, because by the time it runs the value in hand is always a
// literal. Here the operand is, by construction, NOT a literal (a folded
// Coerce never reaches this pass), so this generalizes the same
// contained-in-range test from one concrete value to the source type's
// whole declared Range: if the source range and the target range don't
// overlap at all, every value the source could ever hold is out of range,
// and that's worth reporting before codegen has to emit a check that can
// never pass.
func checkResidual(bag *diagnostics.Bag, prog *lir.Program) {
	for _, proc := range prog.Procs {
		for _, inst := range proc.Instructions {
			if inst.Kind() != lir.InstCoerce {
				continue
			}
			_, _, from, to, _ := inst.AsCoerce()
			checkCoerceRange(bag, prog.Types, from, to)
		}
	}
}

func checkCoerceRange(bag *diagnostics.Bag, types *lir.Types, from, to lir.TypeID) {
	slo, shi, sok := types.Get(from).AsRange()
	lo, hi, ok := types.Get(to).AsRange()
	if !sok || !ok {
		return
	}
	if shi <= lo || hi <= slo {
		bag.At(names.Span{}).ElabOutsideRange(fmt.Sprintf("%d..%d", lo, hi), false)
	}
}
