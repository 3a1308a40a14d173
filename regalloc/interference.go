package regalloc

import "upto/lir"

// interference builds the undirected graph of which registers can never
// share a physical or frame location: any two whose exact live-point sets
// overlap at all. live.order fixes a deterministic pass over every
// register liveness ever recorded a point for.
func interference(live *liveness) map[lir.Register]map[lir.Register]bool {
	res := map[lir.Register]map[lir.Register]bool{}
	for i, a := range live.order {
		for _, b := range live.order[i+1:] {
			if overlapping(live.byRegister[a], live.byRegister[b]) {
				addEdge(res, a, b)
				addEdge(res, b, a)
			}
		}
	}
	return res
}

func addEdge(graph map[lir.Register]map[lir.Register]bool, a, b lir.Register) {
	set, ok := graph[a]
	if !ok {
		set = map[lir.Register]bool{}
		graph[a] = set
	}
	set[b] = true
}

func overlapping(a, b map[position]bool) bool {
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	for p := range small {
		if big[p] {
			return true
		}
	}
	return false
}
