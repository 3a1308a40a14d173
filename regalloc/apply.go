package regalloc

import "upto/lir"

// Apply rewrites proc, substituting every virtual register alloc.Map names
// for the physical or frame register it was assigned, and records
// alloc.FrameSpace on the result. It does not mutate proc: every Register,
// Value, Target, Instruction and Branch is rebuilt through its own
// constructor, since none of those types exposes a setter.
func Apply(proc *lir.Procedure, alloc *Allocation) *lir.Procedure {
	params := applyRegisters(alloc, proc.Params)

	blocks := make(map[lir.BlockID]lir.Block, len(proc.Blocks))
	for id, block := range proc.Blocks {
		blocks[id] = lir.Block{
			Params:    applyRegisters(alloc, block.Params),
			InstStart: block.InstStart,
			InstEnd:   block.InstEnd,
			Branch:    block.Branch,
		}
	}

	instructions := make([]lir.Instruction, len(proc.Instructions))
	for i, inst := range proc.Instructions {
		instructions[i] = applyInstruction(alloc, inst)
	}

	branches := make([]lir.Branch, len(proc.Branches))
	for i, branch := range proc.Branches {
		branches[i] = applyBranch(alloc, branch)
	}

	entryInsts := instructions[blocks[proc.Entry].InstStart:blocks[proc.Entry].InstEnd]
	if alloc.FrameSpace > 0 {
		entry := blocks[proc.Entry]
		reserved := append([]lir.Instruction{lir.ReserveInstruction(alloc.FrameSpace)}, entryInsts...)
		shift := len(reserved) - len(entryInsts)
		instructions = spliceInstructions(instructions, entry.InstStart, entry.InstEnd, reserved)
		blocks = shiftBlocksAfter(blocks, proc.Entry, entry.InstEnd, shift)
	}

	frameSpace := alloc.FrameSpace
	result := &lir.Procedure{
		Params:        params,
		Continuations: proc.Continuations,
		Blocks:        blocks,
		Instructions:  instructions,
		Branches:      branches,
		Entry:         proc.Entry,
		Exits:         proc.Exits,
		FrameSpace:    &frameSpace,
	}

	checkClobbered(alloc.Convention, result)
	return result
}

// checkClobbered cross-checks what a procedure actually writes to a
// physical register, post-allocation, against what its own declared
// convention promises a caller it may clobber. A mismatch means an
// earlier step assigned a physical home the convention never authorized
// for this procedure, which is this package's own bug rather than
// anything a caller did wrong.
func checkClobbered(own Convention, proc *lir.Procedure) {
	if len(own.Clobbered) == 0 {
		return
	}
	allowed := make(map[int]bool, len(own.Clobbered))
	for _, id := range own.Clobbered {
		allowed[id] = true
	}
	for id := range lir.Clobbered(proc) {
		if !allowed[id] {
			panic("regalloc: procedure writes a physical register its convention never declared clobbered")
		}
	}
}

func spliceInstructions(insts []lir.Instruction, start, end int, replacement []lir.Instruction) []lir.Instruction {
	out := make([]lir.Instruction, 0, len(insts)-(end-start)+len(replacement))
	out = append(out, insts[:start]...)
	out = append(out, replacement...)
	out = append(out, insts[end:]...)
	return out
}

func shiftBlocksAfter(blocks map[lir.BlockID]lir.Block, entry lir.BlockID, boundary, shift int) map[lir.BlockID]lir.Block {
	if shift == 0 {
		return blocks
	}
	out := make(map[lir.BlockID]lir.Block, len(blocks))
	for id, block := range blocks {
		if id == entry {
			out[id] = lir.Block{Params: block.Params, InstStart: block.InstStart, InstEnd: block.InstEnd + shift, Branch: block.Branch}
			continue
		}
		start, end := block.InstStart, block.InstEnd
		if start >= boundary {
			start += shift
		}
		if end >= boundary {
			end += shift
		}
		out[id] = lir.Block{Params: block.Params, InstStart: start, InstEnd: end, Branch: block.Branch}
	}
	return out
}

func applyRegisters(alloc *Allocation, regs []lir.Register) []lir.Register {
	if regs == nil {
		return nil
	}
	out := make([]lir.Register, len(regs))
	for i, r := range regs {
		out[i] = applyRegister(alloc, r)
	}
	return out
}

func applyRegister(alloc *Allocation, r lir.Register) lir.Register {
	id, _, ok := r.AsVirtual()
	if !ok {
		return r
	}
	mapped, ok := alloc.Map[id]
	if !ok {
		panic("regalloc: virtual register has no assigned location")
	}
	return mapped
}

func applyValue(alloc *Allocation, v lir.Value) lir.Value {
	r, ok := v.AsRegister()
	if !ok {
		return v
	}
	return lir.RegisterValue(applyRegister(alloc, r))
}

func applyTarget(alloc *Allocation, t lir.Target) lir.Target {
	r, ok := t.AsRegister()
	if !ok {
		return t
	}
	return lir.RegisterTarget(applyRegister(alloc, r))
}

func applyValues(alloc *Allocation, vs []lir.Value) []lir.Value {
	if vs == nil {
		return nil
	}
	out := make([]lir.Value, len(vs))
	for i, v := range vs {
		out[i] = applyValue(alloc, v)
	}
	return out
}

func applyJumpTarget(alloc *Allocation, t lir.JumpTarget) lir.JumpTarget {
	return lir.JumpTarget{Block: t.Block, Args: applyValues(alloc, t.Args)}
}

func applyInstruction(alloc *Allocation, inst lir.Instruction) lir.Instruction {
	switch inst.Kind() {
	case lir.InstCrash:
		return inst
	case lir.InstReserve:
		n, _ := inst.AsReserve()
		return lir.ReserveInstruction(n)
	case lir.InstCopy:
		target, value, _ := inst.AsCopy()
		return lir.CopyInstruction(applyTarget(alloc, target), applyValue(alloc, value))
	case lir.InstIndex:
		target, tuple, index, _ := inst.AsIndex()
		return lir.IndexInstruction(applyTarget(alloc, target), applyValue(alloc, tuple), index)
	case lir.InstTuple:
		target, values, _ := inst.AsTuple()
		return lir.TupleInstruction(applyTarget(alloc, target), applyValues(alloc, values))
	case lir.InstCoerce:
		target, of, from, to, _ := inst.AsCoerce()
		return lir.CoerceInstruction(applyTarget(alloc, target), applyValue(alloc, of), from, to)
	default:
		panic("regalloc: unhandled instruction kind in Apply")
	}
}

func applyBranch(alloc *Allocation, branch lir.Branch) lir.Branch {
	switch branch.Kind() {
	case lir.BranchReturn:
		args, _ := branch.AsReturn()
		return lir.ReturnBranch(applyRegisters(alloc, args))
	case lir.BranchJump:
		to, args, _ := branch.AsJump()
		return lir.JumpBranch(to, applyValues(alloc, args))
	case lir.BranchJumpIf:
		left, cond, right, then, els, _ := branch.AsJumpIf()
		return lir.JumpIfBranch(applyValue(alloc, left), cond, applyValue(alloc, right), applyJumpTarget(alloc, then), applyJumpTarget(alloc, els))
	case lir.BranchCall:
		callee, args, continuations, _ := branch.AsCall()
		return lir.CallBranch(applyValue(alloc, callee), applyRegisters(alloc, args), continuations)
	default:
		panic("regalloc: unhandled branch kind in Apply")
	}
}
