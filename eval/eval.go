// Package eval is the partial evaluator: it specializes a lowered Program
// from one designated entry point, inlining every call whose callee is
// statically known and not already being unfolded higher up the call
// stack, folding every Coerce/Index whose operands turn out static, and
// leaving everything else as a genuine residual instruction or branch. A
// Tuple is always emitted, even with static components; those components
// are only remembered so that an Index into it can fold.
//
// Grounded primarily on original_source/crates/zippy-midend/src/eval/
// {action,state,environment,discover,step}.rs for the frame-stack/Enter-
// Exit/frozen-set shape, with the frame-indexed staticness test of
// crates/midend/src/eval/value.rs simplified to a plain static/dynamic tag
// (see Reduced's doc comment) since this port's step loop walks control
// flow strictly in order and never needs to compare two frames' ages
// against each other. The worklist push/pop order driving leaves-first
// reduction is grounded on crates/midend/src/eval/mod.rs's own discover/
// reduce_from pair, not the front-inserting discover.rs variant.
package eval

import (
	"upto/diagnostics"
	"upto/lir"
	"upto/names"
)

// Evaluate specializes prog from entry, returning a new Program containing
// only what's reachable from entry: every top-level function that
// survives as a (possibly partially inlined) Procedure, and every
// constant global that folded all the way down to a literal as a Value.
// A global that could not be fully resolved (one whose residual body still
// contains a call or a branch that couldn't be decided) is reported as
// EE02 rather than silently left half-evaluated.
func Evaluate(nt *names.Names, bag *diagnostics.Bag, prog *lir.Program, entry names.Name) *lir.Program {
	ev := &evaluator{prog: prog, bag: bag, values: make(map[names.Name]lir.Value)}

	order := discover(prog, entry)
	procs := make(map[names.Name]*lir.Procedure, len(order))

	// Pop from the back: the entry name was pushed first by discover and
	// so sits at the front, meaning it's popped last. Everything it
	// depends on (pushed later, as discover walked outward from it) is
	// fully reduced — and available in ev.values for folding — before
	// the entry itself is.
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		proc, ok := prog.Procs[name]
		if !ok {
			continue
		}
		residual := ev.reduceTopLevel(name, proc)
		if len(proc.Params) == 0 {
			if value, ok := tryPromote(residual); ok {
				ev.values[name] = value
				continue
			}
			if hasResidualDynamicBranch(residual) {
				bag.At(names.Span{}).ElabRequiresInit()
				continue
			}
		}
		procs[name] = residual
	}

	info := lir.NewNameInfo()
	ctx := lir.NewContext()
	for name := range procs {
		flag := lir.Info(0)
		if len(procs[name].Params) > 0 {
			flag = lir.InfoProcedure
		}
		info.Add(name, flag)
		if ty, ok := prog.Context.Get(name); ok {
			ctx.Add(name, ty)
		}
	}
	for name := range ev.values {
		if ty, ok := prog.Context.Get(name); ok {
			ctx.Add(name, ty)
		}
	}

	out := &lir.Program{
		Procs:   procs,
		Values:  ev.values,
		Types:   prog.Types,
		Context: ctx,
		Info:    info,
	}
	checkResidual(bag, out)
	return out
}

// reduceTopLevel fully specializes one top-level procedure: its own
// Params stay symbolic (nothing calls into it with concrete arguments at
// this whole-program entry), but its body is walked exactly as any
// inlined call's would be, folding everything it can.
func (ev *evaluator) reduceTopLevel(name names.Name, proc *lir.Procedure) *lir.Procedure {
	rb := &residualBuilder{
		proc:     name,
		assigned: map[sourceBlock]lir.BlockID{},
		rename:   map[regKey]lir.Register{},
	}

	outParams := make([]lir.Register, len(proc.Params))
	seed := env{}
	for i, p := range proc.Params {
		out := rb.renameRegister(name, p)
		outParams[i] = out
		seed[p] = Dyn(lir.RegisterValue(out))
	}
	rb.paramSeed = seed
	rb.lb = lir.NewBuilder(outParams, nil)

	entry := sourceBlock{proc: name, block: proc.Entry}
	entryID, _ := rb.outputID(entry)
	rb.queue = append(rb.queue, pendingBlock{block: entry, outID: entryID})

	for len(rb.queue) > 0 {
		pb := rb.queue[0]
		rb.queue = rb.queue[1:]
		ev.reduceFrom(rb, pb)
	}

	return rb.lb.Build(entryID, rb.exits)
}

// tryPromote reports whether proc is a zero-parameter binding whose whole
// body folded down to "return one literal", the only shape a lir.Value can
// represent directly (Value has no tuple variant, so a fully-static tuple
// constant stays a tiny Procedure that constructs it).
func tryPromote(proc *lir.Procedure) (lir.Value, bool) {
	if len(proc.Params) != 0 || len(proc.Blocks) != 1 {
		return lir.Value{}, false
	}
	block := proc.Block(proc.Entry)
	insts := proc.InstructionsOf(block)
	if len(insts) != 1 {
		return lir.Value{}, false
	}
	target, value, ok := insts[0].AsCopy()
	if !ok {
		return lir.Value{}, false
	}
	if _, isInt := value.AsInt(); !isInt {
		return lir.Value{}, false
	}
	reg, ok := target.AsRegister()
	if !ok {
		return lir.Value{}, false
	}
	returnArgs, ok := proc.BranchOf(block).AsReturn()
	if !ok || len(returnArgs) != 1 || returnArgs[0] != reg {
		return lir.Value{}, false
	}
	return value, true
}

// hasResidualDynamicBranch reports whether proc still contains a call or a
// conditional that the evaluator couldn't resolve: the only two branch
// kinds whose presence in a zero-parameter global means it genuinely needs
// a run-time step to finish computing.
func hasResidualDynamicBranch(proc *lir.Procedure) bool {
	for _, b := range proc.Branches {
		if b.Kind() == lir.BranchCall || b.Kind() == lir.BranchJumpIf {
			return true
		}
	}
	return false
}
