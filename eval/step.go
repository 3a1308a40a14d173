package eval

import (
	"fmt"

	"upto/diagnostics"
	"upto/lir"
	"upto/names"
)

// sourceBlock names one block of one already-lowered Procedure: the
// evaluator only ever walks this original graph, never a residual one, so
// a Place is just a source coordinate plus whichever frame is stepping it.
type sourceBlock struct {
	proc  names.Name
	block lir.BlockID
}

// regKey disambiguates a register by the procedure it belongs to. Virtual
// register ids are only unique within a single Procedure (lir/register.go),
// so once inlining starts splicing one procedure's registers into
// another's residual output, the pair is the only thing that tells two
// identically-numbered registers apart.
type regKey struct {
	proc names.Name
	reg  lir.Register
}

// frameState is one activation on the evaluator's call stack: which
// procedure it belongs to (for the frozen set and register renaming), its
// register environment, and — for anything but the outermost frame of a
// reduceFrom walk — where its eventual Return should resume once the
// activation that Entered it is given its result back.
type frameState struct {
	proc   names.Name
	env    env
	tuples map[lir.Register][]Reduced

	returnTargets      []lir.Register // caller's registers the Exit binds into
	callerContinuation sourceBlock    // caller's place to resume at
}

// pendingBlock is one still-unreduced entry point into the procedure
// currently being finalized: either its own entry block, or a block a
// residual Call continuation, Jump, or JumpIf arm still needs to reach at
// run time.
type pendingBlock struct {
	block       sourceBlock
	outID       lir.BlockID
	blockParams []lir.Register // original block's own Params, if any
	bind        []Reduced      // values bound to blockParams, aligned by index
}

// residualBuilder accumulates one top-level name's reduced Procedure: the
// block graph under construction, the source-block -> output-block id
// mapping (so a block reached more than one way is only ever built once),
// the per-procedure register renaming table, and the worklist of still-
// unreduced entry points.
type residualBuilder struct {
	lb   *lir.Builder
	proc names.Name

	assigned map[sourceBlock]lir.BlockID
	rename   map[regKey]lir.Register
	nextID   lir.VirtualID

	queue     []pendingBlock
	paramSeed env
	exits     []lir.BlockID
}

func (rb *residualBuilder) outputID(sb sourceBlock) (id lir.BlockID, fresh bool) {
	if id, ok := rb.assigned[sb]; ok {
		return id, false
	}
	id = rb.lb.FreshID()
	rb.assigned[sb] = id
	return id, true
}

func (rb *residualBuilder) renameRegister(proc names.Name, reg lir.Register) lir.Register {
	key := regKey{proc, reg}
	if out, ok := rb.rename[key]; ok {
		return out
	}
	_, ty, isVirtual := reg.AsVirtual()
	if !isVirtual {
		rb.rename[key] = reg
		return reg
	}
	out := lir.VirtualRegister(rb.nextID, ty)
	rb.nextID++
	rb.rename[key] = out
	return out
}

// enqueue records sb as a pending entry point, reusing its output id and
// skipping the push entirely if it was already queued or built: a block
// reached by two different residual edges (say, both arms of a folded-away
// JumpIf reaching a shared join point through different Jumps) is only
// reduced once, under whichever binding reached it first.
func (rb *residualBuilder) enqueue(sb sourceBlock, origParams []lir.Register, bind []Reduced) {
	id, fresh := rb.outputID(sb)
	if !fresh {
		return
	}
	rb.queue = append(rb.queue, pendingBlock{block: sb, outID: id, blockParams: origParams, bind: bind})
}

// straightCursor accumulates the residual instructions for one output
// block as the step loop walks toward its terminal branch.
type straightCursor struct {
	insts []lir.Instruction
}

func evalCond(c lir.Condition, l, r int64) bool {
	switch c {
	case lir.CondLess:
		return l < r
	case lir.CondEqual:
		return l == r
	case lir.CondGreater:
		return l > r
	default:
		return false
	}
}

func targetValue(t lir.Target) lir.Value {
	if reg, ok := t.AsRegister(); ok {
		return lir.RegisterValue(reg)
	}
	if name, ok := t.AsName(); ok {
		return lir.NameValue(name)
	}
	return lir.InvalidValue
}

// evaluator is the shared, read-only state of one whole-program reduction:
// the original Program being specialized, the diagnostics bag, and the
// growing table of already-finalized top-level constants that later (in
// pop order, leaves-first) names can read back as fully static.
type evaluator struct {
	prog *lir.Program
	bag  *diagnostics.Bag

	values map[names.Name]lir.Value
}

func (ev *evaluator) source(name names.Name) *lir.Procedure {
	if p, ok := ev.prog.Procs[name]; ok {
		return p
	}
	panic(fmt.Sprintf("eval: no such procedure %v", name))
}

func (ev *evaluator) resolve(frame *frameState, v lir.Value) Reduced {
	switch v.Kind() {
	case lir.ValueInt:
		return Static(v)
	case lir.ValueRegister:
		reg, _ := v.AsRegister()
		return ev.regValue(frame, reg)
	case lir.ValueName:
		// A bare reference to a top-level name is always statically known
		// — which definition it names is fixed lexically, never something
		// control flow decides. If that definition has already folded down
		// to a literal, hand that back directly; otherwise the reference
		// itself (to a procedure, or to a not-yet-reduced dependency) is
		// the static value, and reduceFrom's Call case is what decides
		// whether it can actually be inlined (frozen) or just residualized.
		name, _ := v.AsName()
		if val, ok := ev.values[name]; ok {
			return Static(val)
		}
		return Static(v)
	default:
		return Dyn(v)
	}
}

func (ev *evaluator) regValue(frame *frameState, reg lir.Register) Reduced {
	if r, ok := frame.env[reg]; ok {
		return r
	}
	r := Dyn(lir.RegisterValue(reg))
	frame.env[reg] = r
	return r
}

func (ev *evaluator) bindTarget(frame *frameState, target lir.Target, r Reduced) {
	if reg, ok := target.AsRegister(); ok {
		frame.env[reg] = r
		return
	}
	if name, ok := target.AsName(); ok && r.IsStatic() {
		ev.values[name] = r.Value
	}
}

// materializeReg forces reg's current binding into an actual register in
// the output, emitting a Copy only if it isn't one already (a literal, a
// dynamic name, or a register that the renaming table hasn't already made
// identical to the one being asked for).
func (ev *evaluator) materializeReg(rb *residualBuilder, cur *straightCursor, frame *frameState, reg lir.Register) lir.Register {
	r := ev.regValue(frame, reg)
	out := rb.renameRegister(frame.proc, reg)
	if cr, ok := r.Value.AsRegister(); ok && cr == out {
		return out
	}
	cur.insts = append(cur.insts, lir.CopyInstruction(lir.RegisterTarget(out), r.Value))
	return out
}

func (ev *evaluator) reduceInstruction(rb *residualBuilder, frame *frameState, cur *straightCursor, inst lir.Instruction) {
	switch inst.Kind() {
	case lir.InstCrash, lir.InstReserve:
		cur.insts = append(cur.insts, inst)

	case lir.InstCopy:
		target, value, _ := inst.AsCopy()
		ev.bindTarget(frame, target, ev.resolve(frame, value))

	case lir.InstIndex:
		target, tuple, idx, _ := inst.AsIndex()
		r := ev.resolve(frame, tuple)
		if reg, ok := r.Value.AsRegister(); ok {
			if origin, ok := frame.tuples[reg]; ok {
				ev.bindTarget(frame, target, origin[idx])
				return
			}
		}
		outTarget := ev.renameTarget(rb, frame, target)
		cur.insts = append(cur.insts, lir.IndexInstruction(outTarget, r.Value, idx))
		ev.bindTarget(frame, target, Dyn(targetValue(outTarget)))

	case lir.InstTuple:
		target, values, _ := inst.AsTuple()
		reduced := make([]Reduced, len(values))
		outValues := make([]lir.Value, len(values))
		for i, v := range values {
			reduced[i] = ev.resolve(frame, v)
			outValues[i] = reduced[i].Value
		}
		outTarget := ev.renameTarget(rb, frame, target)
		cur.insts = append(cur.insts, lir.TupleInstruction(outTarget, outValues))
		if reg, ok := outTarget.AsRegister(); ok {
			frame.tuples[reg] = reduced
		}
		ev.bindTarget(frame, target, Dyn(targetValue(outTarget)))

	case lir.InstCoerce:
		target, of, from, to, _ := inst.AsCoerce()
		r := ev.resolve(frame, of)
		if v, ok := r.AsInt(); ok {
			if lo, hi, isRange := ev.prog.Types.Get(to).AsRange(); isRange {
				if v >= lo && v < hi {
					ev.bindTarget(frame, target, Static(lir.IntValue(v)))
					return
				}
				ev.bag.At(names.Span{}).ElabOutsideRange(fmt.Sprintf("%d..%d", lo, hi), false)
				ev.bindTarget(frame, target, Static(lir.IntValue(v)))
				return
			}
		}
		outTarget := ev.renameTarget(rb, frame, target)
		cur.insts = append(cur.insts, lir.CoerceInstruction(outTarget, r.Value, from, to))
		ev.bindTarget(frame, target, Dyn(targetValue(outTarget)))
	}
}

func (ev *evaluator) renameTarget(rb *residualBuilder, frame *frameState, target lir.Target) lir.Target {
	if reg, ok := target.AsRegister(); ok {
		return lir.RegisterTarget(rb.renameRegister(frame.proc, reg))
	}
	return target
}

// reduceFrom walks pb to its terminal residual branch. A Call whose callee
// is statically known and not already on the stack is fully inlined (the
// "Enter"/"Exit" pair spec's frozen-set design describes); everything else
// — an unresolved callee, a recursive call back into a procedure already
// being unfolded, a condition that didn't fold — ends this block with a
// genuine residual branch and queues whatever it still needs to reach.
func (ev *evaluator) reduceFrom(rb *residualBuilder, pb pendingBlock) {
	base := &frameState{proc: pb.block.proc, env: env{}, tuples: map[lir.Register][]Reduced{}}
	for k, v := range rb.paramSeed {
		base.env[k] = v
	}
	for i, p := range pb.blockParams {
		base.env[p] = pb.bind[i]
	}

	frozen := map[names.Name]bool{base.proc: true}
	frames := []*frameState{base}
	place := pb.block
	cur := &straightCursor{}

	for {
		frame := frames[len(frames)-1]
		proc := ev.source(place.proc)
		block := proc.Block(place.block)
		for _, inst := range proc.InstructionsOf(block) {
			ev.reduceInstruction(rb, frame, cur, inst)
		}
		branch := proc.BranchOf(block)

		switch branch.Kind() {
		case lir.BranchReturn:
			args, _ := branch.AsReturn()
			if len(frames) == 1 {
				regs := make([]lir.Register, len(args))
				for i, a := range args {
					regs[i] = ev.materializeReg(rb, cur, frame, a)
				}
				frozen[frame.proc] = false
				rb.lb.Add(pb.outID, pb.blockParamsRenamed(rb), cur.insts, lir.ReturnBranch(regs))
				rb.exits = append(rb.exits, pb.outID)
				return
			}
			reduced := make([]Reduced, len(args))
			for i, a := range args {
				reduced[i] = ev.regValue(frame, a)
			}
			frozen[frame.proc] = false
			frames = frames[:len(frames)-1]
			caller := frames[len(frames)-1]
			for i, target := range frame.returnTargets {
				caller.env[target] = reduced[i]
			}
			place = frame.callerContinuation
			continue

		case lir.BranchCall:
			callee, args, continuations, _ := branch.AsCall()
			calleeR := ev.resolve(frame, callee)
			if calleeName, ok := calleeR.Value.AsName(); ok && calleeR.IsStatic() && !frozen[calleeName] {
				if calleeProc, ok := ev.prog.Procs[calleeName]; ok {
					argVals := make([]Reduced, len(args))
					for i, a := range args {
						argVals[i] = ev.regValue(frame, a)
					}
					newEnv := env{}
					for i, p := range calleeProc.Params {
						newEnv[p] = argVals[i]
					}
					nf := &frameState{
						proc: calleeName, env: newEnv, tuples: map[lir.Register][]Reduced{},
						returnTargets:      proc.Block(continuations[0]).Params,
						callerContinuation: sourceBlock{proc: frame.proc, block: continuations[0]},
					}
					frozen[calleeName] = true
					frames = append(frames, nf)
					place = sourceBlock{proc: calleeName, block: calleeProc.Entry}
					continue
				}
			}

			calleeOut := calleeR.Value
			argRegs := make([]lir.Register, len(args))
			for i, a := range args {
				argRegs[i] = ev.materializeReg(rb, cur, frame, a)
			}
			contOut := make([]lir.BlockID, len(continuations))
			for i, c := range continuations {
				csb := sourceBlock{proc: frame.proc, block: c}
				rb.enqueue(csb, proc.Block(c).Params, dynBind(proc.Block(c).Params))
				id, _ := rb.outputID(csb)
				contOut[i] = id
				rb.lb.AddContinuation(id)
			}
			rb.lb.Add(pb.outID, pb.blockParamsRenamed(rb), cur.insts, lir.CallBranch(calleeOut, argRegs, contOut))
			return

		case lir.BranchJumpIf:
			left, cond, right, then, els, _ := branch.AsJumpIf()
			l := ev.resolve(frame, left)
			r := ev.resolve(frame, right)
			if lv, lok := l.AsInt(); lok {
				if rv, rok := r.AsInt(); rok {
					taken := then
					if !evalCond(cond, lv, rv) {
						taken = els
					}
					targetBlock := proc.Block(taken.Block)
					for i, p := range targetBlock.Params {
						frame.env[p] = ev.resolve(frame, taken.Args[i])
					}
					place = sourceBlock{proc: frame.proc, block: taken.Block}
					continue
				}
			}

			rb.enqueue(sourceBlock{proc: frame.proc, block: then.Block}, proc.Block(then.Block).Params, resolveBind(ev, frame, then.Args))
			rb.enqueue(sourceBlock{proc: frame.proc, block: els.Block}, proc.Block(els.Block).Params, resolveBind(ev, frame, els.Args))
			thenID, _ := rb.outputID(sourceBlock{proc: frame.proc, block: then.Block})
			elsID, _ := rb.outputID(sourceBlock{proc: frame.proc, block: els.Block})
			thenArgs := reduceValues(ev, frame, then.Args)
			elsArgs := reduceValues(ev, frame, els.Args)
			rb.lb.Add(pb.outID, pb.blockParamsRenamed(rb), cur.insts, lir.JumpIfBranch(l.Value, cond, r.Value,
				lir.JumpTarget{Block: thenID, Args: thenArgs}, lir.JumpTarget{Block: elsID, Args: elsArgs}))
			return

		case lir.BranchJump:
			to, args, _ := branch.AsJump()
			rb.enqueue(sourceBlock{proc: frame.proc, block: to}, proc.Block(to).Params, resolveBind(ev, frame, args))
			id, _ := rb.outputID(sourceBlock{proc: frame.proc, block: to})
			outArgs := reduceValues(ev, frame, args)
			rb.lb.Add(pb.outID, pb.blockParamsRenamed(rb), cur.insts, lir.JumpBranch(id, outArgs))
			return
		}
	}
}

func (pb pendingBlock) blockParamsRenamed(rb *residualBuilder) []lir.Register {
	out := make([]lir.Register, len(pb.blockParams))
	for i, p := range pb.blockParams {
		out[i] = rb.renameRegister(pb.block.proc, p)
	}
	return out
}

func reduceValues(ev *evaluator, frame *frameState, vs []lir.Value) []lir.Value {
	out := make([]lir.Value, len(vs))
	for i, v := range vs {
		out[i] = ev.resolve(frame, v).Value
	}
	return out
}

func resolveBind(ev *evaluator, frame *frameState, vs []lir.Value) []Reduced {
	out := make([]Reduced, len(vs))
	for i, v := range vs {
		out[i] = ev.resolve(frame, v)
	}
	return out
}

// dynBind produces placeholder dynamic bindings for a Call continuation's
// block params: the call's return values are never known ahead of the
// call actually running, regardless of how static its arguments were.
func dynBind(params []lir.Register) []Reduced {
	out := make([]Reduced, len(params))
	for i, p := range params {
		out[i] = Dyn(lir.RegisterValue(p))
	}
	return out
}
