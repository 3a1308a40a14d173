package regalloc

import "upto/lir"

// LivenessReport is the per-block live-out set computeLiveness settled on,
// exported so a driver can dump it without reaching into this package's own
// fixpoint state.
type LivenessReport struct {
	LiveOut map[lir.BlockID][]lir.Register
}

// InterferenceReport is the undirected interference graph interference
// built, flattened to adjacency lists in a stable order for dumping.
type InterferenceReport struct {
	Neighbors map[lir.Register][]lir.Register
}

// Inspect runs the first four steps Allocate would run over proc — block
// info, liveness, interference, priority — without assigning anything,
// for a driver that wants to show its work before (or instead of) the
// allocation itself.
func Inspect(proc *lir.Procedure) (*LivenessReport, *InterferenceReport, []lir.Register) {
	info := computeInfo(proc)
	live := computeLiveness(info, proc)
	intf := interference(live)

	liveOut := make(map[lir.BlockID][]lir.Register, len(live.out))
	for block, set := range live.out {
		liveOut[block] = sortedRegisters(set)
	}

	neighbors := make(map[lir.Register][]lir.Register, len(intf))
	for reg, set := range intf {
		neighbors[reg] = sortedRegisters(set)
	}

	return &LivenessReport{LiveOut: liveOut}, &InterferenceReport{Neighbors: neighbors}, priority(info, live, intf)
}

// sortedRegisters orders a register set by kind then id, so two Inspect
// calls over the same procedure always dump in the same order.
func sortedRegisters(set map[lir.Register]bool) []lir.Register {
	out := make([]lir.Register, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && registerLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func registerLess(a, b lir.Register) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	switch a.Kind() {
	case lir.RegVirtual:
		aid, _, _ := a.AsVirtual()
		bid, _, _ := b.AsVirtual()
		return aid < bid
	case lir.RegPhysical:
		aid, _ := a.AsPhysical()
		bid, _ := b.AsPhysical()
		return aid < bid
	case lir.RegFrame:
		aoff, _, _ := a.AsFrame()
		boff, _, _ := b.AsFrame()
		return aoff < boff
	default:
		return false
	}
}
