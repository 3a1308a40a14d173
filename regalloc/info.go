package regalloc

import "upto/lir"

// blockInfo is the per-procedure predecessor/successor table plus the set
// of "argument-like" registers priority gives maximum weight: a
// procedure's own parameters, every register a Call passes as an argument,
// every register a call's return continuation binds, and every register a
// Return hands back to the caller.
type blockInfo struct {
	successors map[lir.BlockID][]lir.BlockID
	order      []lir.BlockID
	args       map[lir.Register]bool
}

func computeInfo(proc *lir.Procedure) *blockInfo {
	info := &blockInfo{
		successors: map[lir.BlockID][]lir.BlockID{},
		args:       map[lir.Register]bool{},
	}

	for _, p := range proc.Params {
		info.args[p] = true
	}

	for id, block := range proc.Blocks {
		info.successors[id] = proc.BranchOf(block).Successors()
	}

	for _, branch := range proc.Branches {
		switch branch.Kind() {
		case lir.BranchReturn:
			args, _ := branch.AsReturn()
			for _, r := range args {
				info.args[r] = true
			}
		case lir.BranchCall:
			_, args, continuations, _ := branch.AsCall()
			for _, r := range args {
				info.args[r] = true
			}
			for _, c := range continuations {
				if block, ok := proc.Blocks[c]; ok {
					for _, p := range block.Params {
						info.args[p] = true
					}
				}
			}
		}
	}

	info.order = reversePostorderFromExits(proc)
	return info
}

// reversePostorderFromExits walks the procedure's predecessor edges
// starting at its Exits, the natural starting point for a backward
// liveness fixpoint, and returns blocks in the order that gives the
// fixpoint fast convergence: a block only after every block it can reach.
func reversePostorderFromExits(proc *lir.Procedure) []lir.BlockID {
	predecessors := map[lir.BlockID][]lir.BlockID{}
	for id, block := range proc.Blocks {
		for _, s := range proc.BranchOf(block).Successors() {
			predecessors[s] = append(predecessors[s], id)
		}
	}

	var order []lir.BlockID
	visited := map[lir.BlockID]bool{}
	var visit func(lir.BlockID)
	visit = func(id lir.BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, p := range predecessors[id] {
			visit(p)
		}
		order = append(order, id)
	}
	for _, exit := range proc.Exits {
		visit(exit)
	}
	// a procedure's unreachable blocks (if any survive to this pass)
	// still need liveness facts so every register mentioned gets an
	// allocation; visiting them last keeps them from disturbing
	// convergence order for the reachable graph.
	for id := range proc.Blocks {
		visit(id)
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
