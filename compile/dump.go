package compile

import (
	"fmt"
	"sort"

	"upto/hir"
	"upto/lir"
	"upto/names"
	"upto/regalloc"
	"upto/tyck"
)

// sortedNames orders names by their interned id, giving every dump a
// deterministic order independent of map iteration.
func sortedNames[V any](m map[names.Name]V) []names.Name {
	out := make([]names.Name, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func dumpHIR(nt *names.Names, decls hir.Decls) {
	fmt.Println("========== HIR ==========")
	for _, def := range decls.Types {
		fmt.Printf("  type %s\n", nt.Path(def.Name))
	}
	for _, def := range decls.Values {
		kind := "value"
		if len(def.Implicit) > 0 {
			kind = fmt.Sprintf("schema(%d implicit)", len(def.Implicit))
		}
		fmt.Printf("  %s %s\n", kind, nt.Path(def.Name))
	}
	fmt.Println()
}

func dumpChecked(nt *names.Names, decls tyck.Decls) {
	fmt.Println("========== TYPED HIR ==========")
	for _, def := range decls.Values {
		fmt.Printf("  %s : %v\n", nt.Path(def.Name), def.Body.Type.Kind())
	}
	fmt.Println()
}

func formatRegister(r lir.Register) string {
	switch r.Kind() {
	case lir.RegVirtual:
		id, _, _ := r.AsVirtual()
		return fmt.Sprintf("v%d", id)
	case lir.RegPhysical:
		id, _ := r.AsPhysical()
		return fmt.Sprintf("r%d", id)
	case lir.RegFrame:
		offset, _, _ := r.AsFrame()
		return fmt.Sprintf("[fp+%d]", offset)
	default:
		return "?"
	}
}

func formatValue(nt *names.Names, v lir.Value) string {
	switch v.Kind() {
	case lir.ValueInt:
		n, _ := v.AsInt()
		return fmt.Sprintf("%d", n)
	case lir.ValueName:
		name, _ := v.AsName()
		return nt.Path(name)
	case lir.ValueRegister:
		reg, _ := v.AsRegister()
		return formatRegister(reg)
	default:
		return "<invalid>"
	}
}

func formatBranch(nt *names.Names, branch lir.Branch) string {
	switch branch.Kind() {
	case lir.BranchReturn:
		args, _ := branch.AsReturn()
		return fmt.Sprintf("return %s", formatRegisters(args))
	case lir.BranchJump:
		to, args, _ := branch.AsJump()
		return fmt.Sprintf("jump b%d(%s)", to, formatValues(nt, args))
	case lir.BranchJumpIf:
		left, _, right, then, els, _ := branch.AsJumpIf()
		return fmt.Sprintf("jumpif %s ? b%d : b%d", fmt.Sprintf("%s,%s", formatValue(nt, left), formatValue(nt, right)), then.Block, els.Block)
	case lir.BranchCall:
		callee, args, continuations, _ := branch.AsCall()
		return fmt.Sprintf("call %s(%s) -> %v", formatValue(nt, callee), formatRegisters(args), continuations)
	default:
		return "<invalid branch>"
	}
}

func formatRegisters(regs []lir.Register) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = formatRegister(r)
	}
	return fmt.Sprint(parts)
}

func formatValues(nt *names.Names, vs []lir.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatValue(nt, v)
	}
	return fmt.Sprint(parts)
}

func dumpProgram(nt *names.Names, label string, prog *lir.Program) {
	fmt.Printf("========== %s ==========\n", label)
	for _, name := range sortedNames(prog.Procs) {
		proc := prog.Procs[name]
		fmt.Printf("proc %s(%s) entry=b%d blocks=%d\n", nt.Path(name), formatRegisters(proc.Params), proc.Entry, len(proc.Blocks))
		blockIDs := make([]lir.BlockID, 0, len(proc.Blocks))
		for id := range proc.Blocks {
			blockIDs = append(blockIDs, id)
		}
		sort.Slice(blockIDs, func(i, j int) bool { return blockIDs[i] < blockIDs[j] })
		for _, id := range blockIDs {
			block := proc.Blocks[id]
			fmt.Printf("  b%d(%s):\n", id, formatRegisters(block.Params))
			for _, inst := range proc.InstructionsOf(block) {
				fmt.Printf("    %s\n", formatInstruction(nt, inst))
			}
			fmt.Printf("    %s\n", formatBranch(nt, proc.BranchOf(block)))
		}
	}
	for _, name := range sortedNames(prog.Values) {
		fmt.Printf("const %s = %s\n", nt.Path(name), formatValue(nt, prog.Values[name]))
	}
	fmt.Println()
}

func formatInstruction(nt *names.Names, inst lir.Instruction) string {
	switch inst.Kind() {
	case lir.InstCrash:
		return "crash"
	case lir.InstReserve:
		n, _ := inst.AsReserve()
		return fmt.Sprintf("reserve %d", n)
	case lir.InstCopy:
		target, value, _ := inst.AsCopy()
		return fmt.Sprintf("%s := %s", formatTarget(nt, target), formatValue(nt, value))
	case lir.InstIndex:
		target, tuple, index, _ := inst.AsIndex()
		return fmt.Sprintf("%s := %s.%d", formatTarget(nt, target), formatValue(nt, tuple), index)
	case lir.InstTuple:
		target, values, _ := inst.AsTuple()
		return fmt.Sprintf("%s := tuple%s", formatTarget(nt, target), formatValues(nt, values))
	case lir.InstCoerce:
		target, of, _, _, _ := inst.AsCoerce()
		return fmt.Sprintf("%s := coerce %s", formatTarget(nt, target), formatValue(nt, of))
	default:
		return "<invalid instruction>"
	}
}

func formatTarget(nt *names.Names, t lir.Target) string {
	if reg, ok := t.AsRegister(); ok {
		return formatRegister(reg)
	}
	name, _ := t.AsName()
	return nt.Path(name)
}

func dumpLiveness(nt *names.Names, proc names.Name, report *regalloc.LivenessReport) {
	fmt.Printf("========== LIVENESS: %s ==========\n", nt.Path(proc))
	blocks := make([]lir.BlockID, 0, len(report.LiveOut))
	for id := range report.LiveOut {
		blocks = append(blocks, id)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	for _, id := range blocks {
		fmt.Printf("  b%d liveOut: %s\n", id, formatRegisters(report.LiveOut[id]))
	}
	fmt.Println()
}

func dumpInterference(nt *names.Names, proc names.Name, report *regalloc.InterferenceReport) {
	fmt.Printf("========== INTERFERENCE: %s ==========\n", nt.Path(proc))
	edges := 0
	for _, neighbors := range report.Neighbors {
		edges += len(neighbors)
	}
	fmt.Printf("nodes=%d edges=%d\n", len(report.Neighbors), edges/2)
	for _, r := range sortedRegistersForDump(report.Neighbors) {
		fmt.Printf("  %s interferes with %s\n", formatRegister(r), formatRegisters(report.Neighbors[r]))
	}
	fmt.Println()
}

func sortedRegistersForDump(m map[lir.Register][]lir.Register) []lir.Register {
	out := make([]lir.Register, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return formatRegister(out[i]) < formatRegister(out[j]) })
	return out
}

func dumpAllocation(nt *names.Names, prog *lir.Program) {
	fmt.Println("========== ALLOCATION ==========")
	for _, name := range sortedNames(prog.Procs) {
		proc := prog.Procs[name]
		space := 0
		if proc.FrameSpace != nil {
			space = *proc.FrameSpace
		}
		fmt.Printf("  %s: frameSpace=%d\n", nt.Path(name), space)
	}
	fmt.Println()
}
