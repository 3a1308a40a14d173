package lir

// Clobbered walks proc's reachable blocks and returns the set of physical
// register ids any instruction in it assigns to directly. The allocator's
// application pass uses this to cross-check a procedure's declared
// call-clobbered set against what it actually writes, once every virtual
// has been resolved to a physical or frame location.
func Clobbered(proc *Procedure) map[int]struct{} {
	regs := make(map[int]struct{})
	seen := make(map[BlockID]bool)
	worklist := []BlockID{proc.Entry}

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if seen[id] || !proc.HasBlock(id) {
			continue
		}
		seen[id] = true

		block := proc.Block(id)
		for _, inst := range proc.InstructionsOf(block) {
			if target, ok := inst.Targets(); ok {
				if reg, ok := target.AsRegister(); ok {
					if phys, ok := reg.AsPhysical(); ok {
						regs[phys] = struct{}{}
					}
				}
			}
		}

		worklist = append(worklist, proc.BranchOf(block).Successors()...)
	}

	return regs
}
