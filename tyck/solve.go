package tyck

import "upto/types"

// Push adds c to the solver's worklist. bind/infer/check call this as they
// walk a definition; Solve drains it afterwards.
func (t *Typer) Push(c Constraint) {
	t.constraints = append(t.constraints, c)
}

// Solve drains the worklist to a fixpoint. Each pass processes every
// constraint currently queued; solving one can requeue it (blocked on an
// Immutable variable) or queue a new one
// derived from it. If a full pass doesn't shrink the queue, nothing left in
// it can ever be solved without external information, so the rest are
// reported and dropped — this is what guarantees termination. A stuck
// IsNumeric on a Mutable variable is a numeric literal nothing pinned
// down and is reported as ET05; everything else is ET02.
func (t *Typer) Solve() {
	for len(t.constraints) > 0 {
		queue := t.constraints
		t.constraints = nil

		for _, c := range queue {
			t.solveOne(c)
		}

		if len(t.constraints) >= len(queue) {
			stuck := t.constraints
			t.constraints = nil
			for _, c := range stuck {
				if c.Kind == ConstraintIsNumeric {
					if _, ty := t.resolveShallow(Inst{}, c.ty); ty.Kind() == types.KindVar {
						if m, _, _ := ty.AsVar(); m == types.Mutable {
							t.Bag.At(c.At).TyckAmbiguous()
							continue
						}
					}
				}
				t.Bag.At(c.At).TyckNoProgress()
			}
			return
		}
	}
}

func (t *Typer) solveOne(c Constraint) {
	switch c.Kind {
	case ConstraintEqual:
		t.Equate(c.At, c.left, c.right)
	case ConstraintAssignable:
		t.Assign(c.At, c.id, c.into, c.from)
	case ConstraintIsNumeric:
		t.CheckNumeric(c.At, c.because, c.ty)
	}
}
