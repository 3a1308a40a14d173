package eval

import (
	"upto/lir"
	"upto/names"
)

// discover walks the transitive closure of top-level names reachable from
// entry, pushing each newly-found name onto a worklist in the order it was
// first referenced. Evaluate later pops this list from the back (leaves
// discovered last come out first), which gives leaves-before-entry
// processing order for free without a separate topological sort: the
// entry name sits at the front of the slice, pushed before anything it
// calls, so it's the last thing popped.
//
// Grounded on original_source/crates/midend/src/eval/mod.rs's discover
// (a plain index-walking BFS over a growing worklist) rather than the
// discover.rs files' front-insertion scheme, which orders for a different
// reduction strategy. The reachability rules themselves (what counts as a
// dependency of an instruction or branch) are adapted from
// zippy-midend/src/eval/discover.rs's visit_block to this port's
// Instruction/Branch shapes.
func discover(prog *lir.Program, entry names.Name) []names.Name {
	seen := map[names.Name]bool{entry: true}
	worklist := []names.Name{entry}

	visitValue := func(v lir.Value) {
		name, ok := v.AsName()
		if !ok || seen[name] {
			return
		}
		if _, isProc := prog.Procs[name]; !isProc {
			if _, isValue := prog.Values[name]; !isValue {
				return
			}
		}
		seen[name] = true
		worklist = append(worklist, name)
	}

	for i := 0; i < len(worklist); i++ {
		proc, ok := prog.Procs[worklist[i]]
		if !ok {
			continue
		}
		for _, inst := range proc.Instructions {
			switch inst.Kind() {
			case lir.InstCopy:
				_, v, _ := inst.AsCopy()
				visitValue(v)
			case lir.InstIndex:
				_, v, _, _ := inst.AsIndex()
				visitValue(v)
			case lir.InstTuple:
				_, vs, _ := inst.AsTuple()
				for _, v := range vs {
					visitValue(v)
				}
			case lir.InstCoerce:
				_, of, _, _, _ := inst.AsCoerce()
				visitValue(of)
			}
		}
		for _, branch := range proc.Branches {
			switch branch.Kind() {
			case lir.BranchCall:
				callee, _, _, _ := branch.AsCall()
				visitValue(callee)
			case lir.BranchJump:
				_, args, _ := branch.AsJump()
				for _, v := range args {
					visitValue(v)
				}
			case lir.BranchJumpIf:
				left, _, right, then, els, _ := branch.AsJumpIf()
				visitValue(left)
				visitValue(right)
				for _, v := range then.Args {
					visitValue(v)
				}
				for _, v := range els.Args {
					visitValue(v)
				}
			}
		}
	}

	return worklist
}
