package lower

import (
	"upto/lir"
	"upto/names"
	"upto/tyck"
)

// bindLocal destructures pat against reg, an already-minted register holding
// pat's whole value: a bare name just binds reg directly; a tuple pattern
// emits Index instructions into prelude for each projection and recurses.
// It reports its own failure by returning false; the caller has already
// lost the register's value in that case and should abandon the binding.
func (l *Lowerer) bindLocal(inst tyck.Inst, locals map[names.Name]lir.Register, prelude *[]lir.Instruction, pat tyck.Pat, reg lir.Register) bool {
	switch pat.Kind {
	case tyck.PatName:
		name, _ := pat.AsName()
		locals[name] = reg
		return true

	case tyck.PatTuple:
		fst, snd, _ := pat.AsTuple()

		fstTy, ok := l.tryLowerType(inst, fst.Type)
		if !ok {
			return false
		}
		sndTy, ok := l.tryLowerType(inst, snd.Type)
		if !ok {
			return false
		}

		fstReg := lir.VirtualRegister(l.freshVirtual(), fstTy)
		sndReg := lir.VirtualRegister(l.freshVirtual(), sndTy)
		*prelude = append(*prelude,
			lir.IndexInstruction(lir.RegisterTarget(fstReg), lir.RegisterValue(reg), 0),
			lir.IndexInstruction(lir.RegisterTarget(sndReg), lir.RegisterValue(reg), 1))

		if !l.bindLocal(inst, locals, prelude, fst, fstReg) {
			return false
		}
		return l.bindLocal(inst, locals, prelude, snd, sndReg)

	case tyck.PatWildcard, tyck.PatInvalid:
		return true

	default:
		return true
	}
}

// destructMonomorphic binds a top-level definition's own pattern to proc,
// the already-lowered computation of its body. A bare name registers proc
// directly; a tuple pattern mints a holder name for proc's result and
// recursively destructures each component into its own procedure that
// projects out of it. A wildcard or invalid pattern discards proc entirely,
// matching what `_` already means for a binding: its result is never named,
// so nothing reaches it.
func (l *Lowerer) destructMonomorphic(inst tyck.Inst, ctx names.Name, pat tyck.Pat, proc *lir.Procedure) {
	switch pat.Kind {
	case tyck.PatName:
		name, _ := pat.AsName()
		l.registerProc(name, proc)
		if ty, ok := l.tryLowerType(inst, pat.Type); ok {
			l.TypeContext.Add(name, ty)
		}

	case tyck.PatTuple:
		fst, snd, _ := pat.AsTuple()
		ty, ok := l.tryLowerType(inst, pat.Type)
		if !ok {
			return
		}
		holder := l.freshLocal(ctx, ty)
		l.registerProc(holder, proc)
		l.bindProjection(inst, ctx, holder, 0, fst)
		l.bindProjection(inst, ctx, holder, 1, snd)

	case tyck.PatWildcard, tyck.PatInvalid:
		// Discarded, matching what a `_` binding already means: its value
		// is computed (proc still has to run for any effect within it
		// this core allows) but never named anywhere.
	}
}

// bindProjection builds a one-instruction procedure that indexes at out of
// the already-registered name of, then destructures pat against its result
// the same way destructMonomorphic would against any other computation.
func (l *Lowerer) bindProjection(inst tyck.Inst, ctx names.Name, of names.Name, at int, pat tyck.Pat) {
	ty, ok := l.tryLowerType(inst, pat.Type)
	if !ok {
		return
	}

	target := lir.VirtualRegister(l.freshVirtual(), ty)

	lb := lir.NewBuilder(nil, nil)
	entry := lb.FreshID()
	lb.Add(entry, nil,
		[]lir.Instruction{lir.IndexInstruction(lir.RegisterTarget(target), lir.NameValue(of), at)},
		lir.ReturnBranch([]lir.Register{target}))
	proc := lb.Build(entry, []lir.BlockID{entry})

	l.destructMonomorphic(inst, ctx, pat, proc)
}
