package regalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/diagnostics"
	"upto/lir"
	"upto/names"
)

func byteType(types *lir.Types) lir.TypeID {
	return types.Add(lir.RangeType(0, 256))
}

func Test_Allocate_ReturnsGoToFrameWhenTooManyOverlap(t *testing.T) {
	nt := names.New()
	proc := nt.Fresh(names.Name{}, false, "proc", names.Span{})

	prog := lir.NewProgram()
	ty := byteType(prog.Types)

	// Nine registers all live at once (copied, then all returned) forces a
	// spill: Corollary's table only hands out eight general registers.
	regs := make([]lir.Register, 9)
	for i := range regs {
		regs[i] = lir.VirtualRegister(lir.VirtualID(i), ty)
	}

	var insts []lir.Instruction
	for _, r := range regs {
		insts = append(insts, lir.CopyInstruction(lir.RegisterTarget(r), lir.IntValue(1)))
	}

	lb := lir.NewBuilder(nil, nil)
	entry := lb.FreshID()
	lb.Add(entry, nil, insts, lir.ReturnBranch(regs))
	body := lb.Build(entry, []lir.BlockID{entry})

	prog.Procs[proc] = body
	prog.Info.Add(proc, lir.InfoProcedure)

	table := NewTable("corollary-target", Corollary())
	bag := diagnostics.NewBag()

	alloc := Allocate(bag, table, prog, proc, body)

	assert.False(t, bag.HasErrors())
	assert.Len(t, alloc.Map, 9)

	spilled := 0
	for _, loc := range alloc.Map {
		if loc.Kind() == lir.RegFrame {
			spilled++
		}
	}
	assert.Equal(t, 1, spilled)
	assert.Greater(t, alloc.FrameSpace, 0)
}

func Test_Allocate_ReportsUnsupportedConvention(t *testing.T) {
	nt := names.New()
	proc := nt.Fresh(names.Name{}, false, "proc", names.Span{})

	prog := lir.NewProgram()
	lb := lir.NewBuilder(nil, nil)
	entry := lb.FreshID()
	lb.Add(entry, nil, nil, lir.ReturnBranch(nil))
	body := lb.Build(entry, []lir.BlockID{entry})

	prog.Procs[proc] = body
	prog.Info.Add(proc, lir.InfoProcedure)
	prog.Info.AddConvention(proc, lir.ConventionStdcall)

	table := NewTable("no-stdcall-target", Corollary(), SystemV())
	bag := diagnostics.NewBag()

	Allocate(bag, table, prog, proc, body)

	assert.True(t, bag.HasErrors())
}

func Test_Allocate_AssignsCallArgumentsBySystemVConvention(t *testing.T) {
	nt := names.New()
	proc := nt.Fresh(names.Name{}, false, "proc", names.Span{})
	callee := nt.Fresh(names.Name{}, false, "callee", names.Span{})

	prog := lir.NewProgram()
	ty := byteType(prog.Types)

	a := lir.VirtualRegister(0, ty)
	b := lir.VirtualRegister(1, ty)
	ret := lir.VirtualRegister(2, ty)

	lb := lir.NewBuilder(nil, nil)
	entry := lb.FreshID()
	retCont := lb.FreshID()
	lb.AddContinuation(retCont)

	lb.Add(entry, nil,
		[]lir.Instruction{
			lir.CopyInstruction(lir.RegisterTarget(a), lir.IntValue(1)),
			lir.CopyInstruction(lir.RegisterTarget(b), lir.IntValue(2)),
		},
		lir.CallBranch(lir.NameValue(callee), []lir.Register{a, b}, []lir.BlockID{retCont}))
	lb.Add(retCont, []lir.Register{ret}, nil, lir.ReturnBranch([]lir.Register{ret}))
	body := lb.Build(entry, []lir.BlockID{retCont})

	prog.Procs[proc] = body
	prog.Info.Add(proc, lir.InfoProcedure)
	prog.Info.Add(callee, lir.InfoProcedure)
	prog.Info.AddConvention(callee, lir.ConventionSystemV)

	table := NewTable("systemv-target", Corollary(), SystemV())
	bag := diagnostics.NewBag()

	alloc := Allocate(bag, table, prog, proc, body)
	assert.False(t, bag.HasErrors())

	aLoc := alloc.Map[0]
	bLoc := alloc.Map[1]
	aPhys, ok := aLoc.AsPhysical()
	assert.True(t, ok)
	assert.Equal(t, 0, aPhys)
	bPhys, ok := bLoc.AsPhysical()
	assert.True(t, ok)
	assert.Equal(t, 1, bPhys)

	retPhys, ok := alloc.Map[2].AsPhysical()
	assert.True(t, ok)
	assert.Equal(t, 0, retPhys)
}

func Test_Apply_RewritesRegistersAndReservesFrameSpace(t *testing.T) {
	nt := names.New()
	proc := nt.Fresh(names.Name{}, false, "proc", names.Span{})

	prog := lir.NewProgram()
	ty := byteType(prog.Types)
	regs := make([]lir.Register, 9)
	var insts []lir.Instruction
	for i := range regs {
		regs[i] = lir.VirtualRegister(lir.VirtualID(i), ty)
		insts = append(insts, lir.CopyInstruction(lir.RegisterTarget(regs[i]), lir.IntValue(1)))
	}

	lb := lir.NewBuilder(nil, nil)
	entry := lb.FreshID()
	lb.Add(entry, nil, insts, lir.ReturnBranch(regs))
	body := lb.Build(entry, []lir.BlockID{entry})

	prog.Procs[proc] = body
	prog.Info.Add(proc, lir.InfoProcedure)

	table := NewTable("corollary-target", Corollary())
	bag := diagnostics.NewBag()

	alloc := Allocate(bag, table, prog, proc, body)
	applied := Apply(body, alloc)

	require := assert.New(t)
	require.NotNil(applied.FrameSpace)
	require.Equal(alloc.FrameSpace, *applied.FrameSpace)

	for _, inst := range applied.Instructions {
		if inst.Kind() == lir.InstReserve {
			continue
		}
		target, ok := inst.Targets()
		require.True(ok)
		reg, ok := target.AsRegister()
		require.True(ok)
		require.NotEqual(lir.RegVirtual, reg.Kind())
	}

	entryBlock := applied.Block(applied.Entry)
	if alloc.FrameSpace > 0 {
		first := applied.InstructionsOf(entryBlock)[0]
		n, ok := first.AsReserve()
		require.True(ok)
		require.Equal(alloc.FrameSpace, n)
	}

	returnArgs, ok := applied.BranchOf(entryBlock).AsReturn()
	require.True(ok)
	for _, r := range returnArgs {
		require.NotEqual(lir.RegVirtual, r.Kind())
	}
}

func Test_Run_AllocatesEveryProcedure(t *testing.T) {
	nt := names.New()
	proc := nt.Fresh(names.Name{}, false, "proc", names.Span{})

	prog := lir.NewProgram()
	ty := byteType(prog.Types)
	reg := lir.VirtualRegister(0, ty)

	lb := lir.NewBuilder(nil, nil)
	entry := lb.FreshID()
	lb.Add(entry, nil,
		[]lir.Instruction{lir.CopyInstruction(lir.RegisterTarget(reg), lir.IntValue(7))},
		lir.ReturnBranch([]lir.Register{reg}))
	prog.Procs[proc] = lb.Build(entry, []lir.BlockID{entry})
	prog.Info.Add(proc, lir.InfoProcedure)

	table := NewTable("corollary-target", Corollary())
	bag := diagnostics.NewBag()

	out := Run(bag, table, prog)

	assert.False(t, bag.HasErrors())
	applied, ok := out.Procs[proc]
	assert.True(t, ok)
	assert.NotNil(t, applied.FrameSpace)
}
