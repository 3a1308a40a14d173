// Package regalloc assigns every virtual register a lowered, partially
// evaluated Procedure still contains a physical or stack-frame home, and
// rewrites the procedure's instructions and branches to reference that
// home directly. It runs one procedure at a time, in five steps: block
// info (predecessors/successors, which registers are argument-like),
// liveness (a fixpoint over gen/kill sets refined to exact program
// points), interference (an undirected graph over overlapping live
// registers), priority (the order registers compete for a physical slot),
// and allocation itself (convention-driven for a branch's own arguments
// and return values, first-fit-then-spill for everything else).
package regalloc

import (
	"fmt"
	"sort"

	"upto/diagnostics"
	"upto/lir"
	"upto/names"
)

// frameSlot is one virtual's assigned stack-frame home while Allocate is
// still running: a byte offset and the type that offset's width was sized
// for, before the final pass turns it into a lir.FrameRegister.
type frameSlot struct {
	offset int
	ty     lir.TypeID
}

// Allocation is the result of running Allocate over one Procedure: every
// virtual register it mentioned, mapped to the physical or frame register
// it was assigned, plus the total frame space its spills and
// convention-forced stack slots need.
type Allocation struct {
	Map        map[lir.VirtualID]lir.Register
	FrameSpace int

	// Convention is the calling convention proc was resolved against,
	// carried along so Apply can cross-check that nothing it wrote to a
	// physical register falls outside what a caller is told this
	// procedure may clobber.
	Convention Convention
}

// Allocate assigns every virtual register appearing in proc a physical or
// frame home. name identifies proc in prog.Info, which supplies the
// calling convention proc's own parameters and return values are passed
// under; a Call branch resolves its callee's convention the same way when
// the callee is a known name, and falls back to proc's own convention when
// it's an indirect, register-valued callee with no name to look one up by.
func Allocate(bag *diagnostics.Bag, table *Table, prog *lir.Program, name names.Name, proc *lir.Procedure) *Allocation {
	ownName, _ := prog.Info.GetConvention(name)
	own, ok := table.Get(ownName)
	if !ok {
		bag.At(names.Span{}).CompileUnsupportedConvention(table.Target, ownName.String())
		own = Convention{}
	}

	info := computeInfo(proc)
	live := computeLiveness(info, proc)
	intf := interference(live)
	extra := callClobbers(table, prog, proc, own, live)

	alloc := &Allocation{Map: make(map[lir.VirtualID]lir.Register), Convention: own}
	assignConventionBindings(table, prog, proc, alloc, own)

	frames := map[lir.VirtualID]frameSlot{}
	physical := map[lir.VirtualID]int{}
	maxFrame := 0

	for _, reg := range priority(info, live, intf) {
		id, ty, isVirtual := reg.AsVirtual()
		if !isVirtual {
			continue
		}
		if _, already := alloc.Map[id]; already {
			continue
		}

		unavailable := unavailablePhysical(intf, alloc, reg)
		for p := range extra[reg] {
			unavailable[p] = true
		}

		assigned := false
		for _, r := range own.Registers {
			blocked := unavailable[r.ID]
			for _, a := range r.Aliases {
				blocked = blocked || unavailable[a]
			}
			if blocked {
				continue
			}
			physical[id] = r.ID
			alloc.Map[id] = lir.PhysicalRegister(r.ID)
			assigned = true
			break
		}
		if assigned {
			continue
		}

		off := firstFittingFrame(prog.Types, unavailableFrame(intf, frames, reg), ty)
		size := prog.Types.Sizeof(ty)
		if off+size > maxFrame {
			maxFrame = off + size
		}
		frames[id] = frameSlot{offset: off, ty: ty}
	}

	for id, slot := range frames {
		alloc.Map[id] = lir.FrameRegister(slot.offset, slot.ty)
	}
	for id, p := range physical {
		alloc.Map[id] = lir.PhysicalRegister(p)
	}
	alloc.FrameSpace = maxFrame

	checkConsistency(intf, alloc)
	return alloc
}

// assignConventionBindings pins every argument-like register directly to
// its calling-convention slot: a procedure's own parameters and its
// returns under own, and each Call branch's arguments and return bindings
// under its resolved callee convention. These are never run through the
// interference-aware first-fit loop — a convention's positional registers
// are fixed by construction, not competed for.
func assignConventionBindings(table *Table, prog *lir.Program, proc *lir.Procedure, alloc *Allocation, own Convention) {
	assignPositional(alloc, proc.Params, own.Parameters)

	for _, branch := range proc.Branches {
		switch branch.Kind() {
		case lir.BranchReturn:
			args, _ := branch.AsReturn()
			assignPositional(alloc, args, own.Returns)
		case lir.BranchCall:
			callee, args, continuations, _ := branch.AsCall()
			conv := resolveCallConvention(table, prog, callee, own)
			assignPositional(alloc, args, conv.Parameters)
			if len(continuations) > 0 {
				if retBlock, ok := proc.Blocks[continuations[0]]; ok {
					assignPositional(alloc, retBlock.Params, conv.Returns)
				}
			}
		}
	}
}

func assignPositional(alloc *Allocation, regs []lir.Register, physicalIDs []int) {
	for i, r := range regs {
		if i >= len(physicalIDs) {
			continue
		}
		id, _, ok := r.AsVirtual()
		if !ok {
			continue
		}
		if existing, already := alloc.Map[id]; already {
			if p, ok := existing.AsPhysical(); !ok || p != physicalIDs[i] {
				panic("regalloc: conflicting calling-convention assignment for one virtual register")
			}
			continue
		}
		alloc.Map[id] = lir.PhysicalRegister(physicalIDs[i])
	}
}

func resolveCallConvention(table *Table, prog *lir.Program, callee lir.Value, own Convention) Convention {
	if name, ok := callee.AsName(); ok {
		if cc, ok := prog.Info.GetConvention(name); ok {
			if conv, ok := table.Get(cc); ok {
				return conv
			}
		}
	}
	return own
}

// callClobbers records, for every register live across a Call branch but
// not itself one of that call's own arguments or return bindings, the
// extra physical ids its resolved convention's Clobbered list makes
// unavailable — a callee under that convention is free to trash them, so
// nothing still alive afterward may be assigned one of them.
func callClobbers(table *Table, prog *lir.Program, proc *lir.Procedure, own Convention, live *liveness) map[lir.Register]map[int]bool {
	extra := map[lir.Register]map[int]bool{}
	for id, block := range proc.Blocks {
		branch := proc.BranchOf(block)
		if branch.Kind() != lir.BranchCall {
			continue
		}
		callee, args, continuations, _ := branch.AsCall()
		conv := resolveCallConvention(table, prog, callee, own)
		if len(conv.Clobbered) == 0 {
			continue
		}

		exempt := map[lir.Register]bool{}
		for _, r := range args {
			exempt[r] = true
		}
		if len(continuations) > 0 {
			if retBlock, ok := proc.Blocks[continuations[0]]; ok {
				for _, r := range retBlock.Params {
					exempt[r] = true
				}
			}
		}

		for r := range live.out[id] {
			if exempt[r] {
				continue
			}
			set, ok := extra[r]
			if !ok {
				set = map[int]bool{}
				extra[r] = set
			}
			for _, c := range conv.Clobbered {
				set[c] = true
			}
		}
	}
	return extra
}

// unavailablePhysical collects the physical register ids reg can't be
// assigned because some register it interferes with already holds one,
// resolving through the allocation map already built so far for any
// neighbor that was itself still virtual at the time.
func unavailablePhysical(intf map[lir.Register]map[lir.Register]bool, alloc *Allocation, reg lir.Register) map[int]bool {
	res := map[int]bool{}
	for other := range intf[reg] {
		switch other.Kind() {
		case lir.RegPhysical:
			id, _ := other.AsPhysical()
			res[id] = true
		case lir.RegVirtual:
			vid, _, _ := other.AsVirtual()
			if mapped, ok := alloc.Map[vid]; ok {
				if id, ok := mapped.AsPhysical(); ok {
					res[id] = true
				}
			}
		}
	}
	return res
}

// unavailableFrame collects the [offset, offset+size) byte intervals
// already occupied by any register reg interferes with, whether that
// neighbor already resolved to a frame slot in frames (a virtual the
// priority loop placed earlier) or was already a lir.Register of kind
// Frame to begin with.
func unavailableFrame(intf map[lir.Register]map[lir.Register]bool, frames map[lir.VirtualID]frameSlot, reg lir.Register) []frameSlot {
	var res []frameSlot
	for other := range intf[reg] {
		switch other.Kind() {
		case lir.RegFrame:
			offset, ty, _ := other.AsFrame()
			res = append(res, frameSlot{offset: offset, ty: ty})
		case lir.RegVirtual:
			vid, _, _ := other.AsVirtual()
			if slot, ok := frames[vid]; ok {
				res = append(res, slot)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].offset < res[j].offset })
	return res
}

// firstFittingFrame finds the lowest byte offset that fits a value of type
// ty without overlapping any interval in unavailable: before the first
// occupied interval if ty fits there, in the first gap between two
// consecutive occupied intervals that's wide enough, or past the end of
// the last one otherwise.
func firstFittingFrame(types *lir.Types, unavailable []frameSlot, ty lir.TypeID) int {
	size := types.Sizeof(ty)
	if len(unavailable) == 0 {
		return 0
	}
	if unavailable[0].offset >= size {
		return 0
	}
	off := unavailable[0].offset + types.Sizeof(unavailable[0].ty)
	for i := 0; i < len(unavailable)-1; i++ {
		bottom := unavailable[i].offset + types.Sizeof(unavailable[i].ty)
		top := unavailable[i+1].offset
		if top-bottom >= size {
			return bottom
		}
		if top+types.Sizeof(unavailable[i+1].ty) > off {
			off = top + types.Sizeof(unavailable[i+1].ty)
		}
	}
	return off
}

// checkConsistency is the final pass over the finished allocation: every
// interference edge must resolve to two different physical or frame
// locations, or the earlier steps built a mapping that lets two
// simultaneously-live values clobber each other. A violation here is
// this package's own bug, not a user-facing error, so it panics the same
// way the rest of this compilation unit panics on a broken internal
// invariant rather than reporting a diagnostic.
func checkConsistency(intf map[lir.Register]map[lir.Register]bool, alloc *Allocation) {
	locationOf := func(reg lir.Register) (lir.Register, bool) {
		switch reg.Kind() {
		case lir.RegVirtual:
			id, _, _ := reg.AsVirtual()
			loc, ok := alloc.Map[id]
			return loc, ok
		case lir.RegPhysical, lir.RegFrame:
			return reg, true
		default:
			return lir.Register{}, false
		}
	}

	for reg, neighbors := range intf {
		locA, ok := locationOf(reg)
		if !ok {
			continue
		}
		for other := range neighbors {
			locB, ok := locationOf(other)
			if !ok {
				continue
			}
			if sameLocation(locA, locB) {
				panic(fmt.Sprintf("regalloc: interfering registers %v and %v share a location", reg, other))
			}
		}
	}
}

func sameLocation(a, b lir.Register) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case lir.RegPhysical:
		ai, _ := a.AsPhysical()
		bi, _ := b.AsPhysical()
		return ai == bi
	case lir.RegFrame:
		ao, _, _ := a.AsFrame()
		bo, _, _ := b.AsFrame()
		return ao == bo
	default:
		return false
	}
}

// Run allocates and rewrites every procedure in prog, leaving Values and
// the rest of its top-level bookkeeping untouched.
func Run(bag *diagnostics.Bag, table *Table, prog *lir.Program) *lir.Program {
	procs := make(map[names.Name]*lir.Procedure, len(prog.Procs))
	for name, proc := range prog.Procs {
		alloc := Allocate(bag, table, prog, name, proc)
		procs[name] = Apply(proc, alloc)
	}
	return &lir.Program{
		Procs:   procs,
		Values:  prog.Values,
		Types:   prog.Types,
		Context: prog.Context,
		Info:    prog.Info,
	}
}
