package regalloc

import (
	"math"
	"sort"

	"upto/lir"
)

// priority orders every register the interference graph or the liveness
// facts mention, highest priority first: argument-like registers (a
// procedure's own parameters, a call's arguments, or a return binding) go
// first unconditionally, since their physical home is already fixed by a
// calling convention rather than earned by a score. Everything else is
// scored as its live length minus how many other registers it interferes
// with — the fewer neighbors competing for the same slots relative to how
// long it needs one, the sooner it should claim one. Ties keep the order
// registers were first discovered live in (see liveness.order), which is
// not fixed from one run to the next.
func priority(info *blockInfo, live *liveness, intf map[lir.Register]map[lir.Register]bool) []lir.Register {
	type scored struct {
		reg   lir.Register
		score int
		index int
	}

	seen := map[lir.Register]bool{}
	var scores []scored
	add := func(reg lir.Register, score int) {
		if seen[reg] {
			return
		}
		seen[reg] = true
		scores = append(scores, scored{reg: reg, score: score, index: len(scores)})
	}

	for _, reg := range live.order {
		neighbors := intf[reg]
		score := live.length(reg) - len(neighbors)
		if info.args[reg] {
			score = math.MaxInt
		}
		add(reg, score)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].index < scores[j].index
	})

	out := make([]lir.Register, len(scores))
	for i, s := range scores {
		out[i] = s.reg
	}
	return out
}
