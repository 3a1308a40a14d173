package regalloc

import "upto/lir"

// position names one program point inside a block: index i means "right
// after instruction i has run", and index len(instructions) names the
// block's own branch, where every register it reads is still live.
type position struct {
	block lir.BlockID
	at    int
}

// liveness is the exact set of program points each register stays live
// across, refined from a coarse block-level in/out fixpoint (gen/kill per
// block, §5's standard in = gen ∪ (out − kill)) to point granularity by
// replaying each block backward from its out-set once the fixpoint settles.
// order records registers in the sequence their first live point was
// marked. Blocks are replayed in reverse-postorder-from-exits, but that
// walk and the marking at each program point both iterate Go maps, so the
// order is not reproducible from one run to the next.
type liveness struct {
	byRegister map[lir.Register]map[position]bool
	order      []lir.Register
	out        map[lir.BlockID]map[lir.Register]bool
}

func (l *liveness) length(reg lir.Register) int {
	return len(l.byRegister[reg])
}

func (l *liveness) mark(reg lir.Register, pos position) {
	if reg.Kind() != lir.RegVirtual {
		return
	}
	set, ok := l.byRegister[reg]
	if !ok {
		set = map[position]bool{}
		l.byRegister[reg] = set
		l.order = append(l.order, reg)
	}
	set[pos] = true
}

func computeLiveness(info *blockInfo, proc *lir.Procedure) *liveness {
	gen := map[lir.BlockID]map[lir.Register]bool{}
	kill := map[lir.BlockID]map[lir.Register]bool{}
	for id := range proc.Blocks {
		g, k := blockGenKill(proc, proc.Block(id))
		gen[id] = g
		kill[id] = k
	}

	in := map[lir.BlockID]map[lir.Register]bool{}
	out := map[lir.BlockID]map[lir.Register]bool{}
	for id := range proc.Blocks {
		in[id] = map[lir.Register]bool{}
		out[id] = map[lir.Register]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, id := range info.order {
			o := map[lir.Register]bool{}
			for _, succ := range info.successors[id] {
				for r := range in[succ] {
					o[r] = true
				}
			}
			i := map[lir.Register]bool{}
			for r := range gen[id] {
				i[r] = true
			}
			for r := range o {
				if !kill[id][r] {
					i[r] = true
				}
			}
			if !regSetEqual(in[id], i) || !regSetEqual(out[id], o) {
				in[id], out[id] = i, o
				changed = true
			}
		}
	}

	lv := &liveness{byRegister: map[lir.Register]map[position]bool{}, out: out}
	for _, id := range info.order {
		replayBlock(proc, proc.Block(id), id, out[id], lv)
	}
	return lv
}

func blockGenKill(proc *lir.Procedure, block lir.Block) (gen, kill map[lir.Register]bool) {
	gen = map[lir.Register]bool{}
	kill = map[lir.Register]bool{}
	for _, r := range block.Params {
		kill[r] = true
	}
	for _, inst := range proc.InstructionsOf(block) {
		for _, r := range instUses(inst) {
			if r.Kind() == lir.RegVirtual && !kill[r] {
				gen[r] = true
			}
		}
		if r, ok := instDef(inst); ok && r.Kind() == lir.RegVirtual {
			kill[r] = true
		}
	}
	for _, r := range branchUses(proc.BranchOf(block)) {
		if r.Kind() == lir.RegVirtual && !kill[r] {
			gen[r] = true
		}
	}
	return gen, kill
}

func replayBlock(proc *lir.Procedure, block lir.Block, id lir.BlockID, outSet map[lir.Register]bool, lv *liveness) {
	live := map[lir.Register]bool{}
	for r := range outSet {
		live[r] = true
	}

	insts := proc.InstructionsOf(block)
	branchPos := position{block: id, at: len(insts)}
	for r := range live {
		lv.mark(r, branchPos)
	}
	for _, r := range branchUses(proc.BranchOf(block)) {
		live[r] = true
		lv.mark(r, branchPos)
	}

	for i := len(insts) - 1; i >= 0; i-- {
		inst := insts[i]
		pos := position{block: id, at: i}
		if r, ok := instDef(inst); ok {
			delete(live, r)
		}
		for _, r := range instUses(inst) {
			live[r] = true
		}
		for r := range live {
			lv.mark(r, pos)
		}
	}
}

func instUses(inst lir.Instruction) []lir.Register {
	var regs []lir.Register
	switch inst.Kind() {
	case lir.InstCopy:
		_, v, _ := inst.AsCopy()
		regs = appendRegValue(regs, v)
	case lir.InstIndex:
		_, v, _, _ := inst.AsIndex()
		regs = appendRegValue(regs, v)
	case lir.InstTuple:
		_, vs, _ := inst.AsTuple()
		for _, v := range vs {
			regs = appendRegValue(regs, v)
		}
	case lir.InstCoerce:
		_, of, _, _, _ := inst.AsCoerce()
		regs = appendRegValue(regs, of)
	}
	return regs
}

func appendRegValue(regs []lir.Register, v lir.Value) []lir.Register {
	if r, ok := v.AsRegister(); ok {
		return append(regs, r)
	}
	return regs
}

func instDef(inst lir.Instruction) (lir.Register, bool) {
	target, ok := inst.Targets()
	if !ok {
		return lir.Register{}, false
	}
	return target.AsRegister()
}

func branchUses(branch lir.Branch) []lir.Register {
	var regs []lir.Register
	switch branch.Kind() {
	case lir.BranchReturn:
		args, _ := branch.AsReturn()
		regs = append(regs, args...)
	case lir.BranchJump:
		_, args, _ := branch.AsJump()
		for _, v := range args {
			regs = appendRegValue(regs, v)
		}
	case lir.BranchJumpIf:
		left, _, right, then, els, _ := branch.AsJumpIf()
		regs = appendRegValue(regs, left)
		regs = appendRegValue(regs, right)
		for _, v := range then.Args {
			regs = appendRegValue(regs, v)
		}
		for _, v := range els.Args {
			regs = appendRegValue(regs, v)
		}
	case lir.BranchCall:
		callee, args, _, _ := branch.AsCall()
		regs = appendRegValue(regs, callee)
		regs = append(regs, args...)
	}
	return regs
}

func regSetEqual(a, b map[lir.Register]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if !b[r] {
			return false
		}
	}
	return true
}
