package lower

import (
	"fmt"

	"upto/lir"
	"upto/names"
	"upto/tyck"
	"upto/types"
)

// builder is the state shared by every cursor lowering one procedure's
// body: the instantiation context active for this particular
// specialization, the name new local bindings are generated under, the
// block graph under construction, and the name-to-register bindings in
// scope (only ever this procedure's own locals; nothing here is ever
// inherited by a nested Lam, since this core has no closures).
type builder struct {
	l      *Lowerer
	inst   tyck.Inst
	ctx    names.Name
	lb     *lir.Builder
	locals map[names.Name]lir.Register
	exits  []lir.BlockID
}

// cursor is where the next straight-line instruction gets appended: one
// block still being built, identified by id, with params fixed at creation
// (empty for an entry block; a Call continuation's single result register
// otherwise).
type cursor struct {
	b      *builder
	id     lir.BlockID
	params []lir.Register
	insts  []lir.Instruction
}

func (c *cursor) emit(inst lir.Instruction) {
	c.insts = append(c.insts, inst)
}

func (c *cursor) finish(branch lir.Branch) {
	c.b.lb.Add(c.id, c.params, c.insts, branch)
	if _, ok := branch.AsReturn(); ok {
		c.b.exits = append(c.b.exits, c.id)
	}
}

// materialize forces v into a register of type ty, inserting a Copy if v
// isn't already one (a literal int or a not-yet-resolved top-level name).
func (c *cursor) materialize(ty lir.TypeID, v lir.Value) lir.Register {
	if reg, ok := v.AsRegister(); ok {
		return reg
	}
	reg := lir.VirtualRegister(c.b.l.freshVirtual(), ty)
	c.emit(lir.CopyInstruction(lir.RegisterTarget(reg), v))
	return reg
}

// call flushes the cursor's accumulated instructions into a Call branch and
// returns the fresh continuation cursor the call's result becomes available
// in, plus the register that result lands in.
func (c *cursor) call(callee lir.Value, args []lir.Register, resultType lir.TypeID) (*cursor, lir.Register) {
	cont := c.b.lb.FreshID()
	c.b.lb.AddContinuation(cont)
	result := lir.VirtualRegister(c.b.l.freshVirtual(), resultType)
	c.finish(lir.CallBranch(callee, args, []lir.BlockID{cont}))
	return &cursor{b: c.b, id: cont, params: []lir.Register{result}}, result
}

// lowerBinding builds a whole Procedure for body under the given
// instantiation context: if body is itself a Lam, its param becomes the
// procedure's one Param and its inner body is what gets lowered into the
// entry block; otherwise body is computed directly with no parameters.
// This is used uniformly for a top-level definition's own body, for one
// concrete instantiation of a polymorphic template, and for a Lam found
// nested inside another expression (a Lam value is always its own
// Procedure; this core has no closures for lowerNestedLam's free-variable
// check to need to support).
func (l *Lowerer) lowerBinding(inst tyck.Inst, ctx names.Name, body tyck.Expr) (*lir.Procedure, bool) {
	locals := make(map[names.Name]lir.Register)
	var params []lir.Register
	var prelude []lir.Instruction
	target := body

	if param, innerBody, ok := body.AsLam(); ok {
		paramTy, ok := l.tryLowerType(inst, param.Type)
		if !ok {
			return nil, false
		}
		paramReg := lir.VirtualRegister(l.freshVirtual(), paramTy)
		if !l.bindLocal(inst, locals, &prelude, param, paramReg) {
			return nil, false
		}
		params = []lir.Register{paramReg}
		target = innerBody
	}

	b := &builder{l: l, inst: inst, ctx: ctx, lb: lir.NewBuilder(params, nil), locals: locals}
	entry := b.lb.FreshID()
	cur := &cursor{b: b, id: entry, insts: prelude}

	value, cur, ok := l.lowerExpr(cur, target)
	if !ok {
		return nil, false
	}
	targetTy, ok := l.tryLowerType(inst, target.Type)
	if !ok {
		return nil, false
	}
	result := cur.materialize(targetTy, value)
	cur.finish(lir.ReturnBranch([]lir.Register{result}))

	return b.lb.Build(entry, b.exits), true
}

// lowerExpr lowers one checked expression against cur's in-progress block,
// returning its value and the cursor later expressions in the same
// sequence should keep appending to (a Call advances it to a fresh
// continuation block).
func (l *Lowerer) lowerExpr(cur *cursor, e tyck.Expr) (lir.Value, *cursor, bool) {
	switch e.Kind {
	case tyck.ExprNum:
		v, _ := e.AsNum()
		return lir.IntValue(int64(v)), cur, true

	case tyck.ExprHole:
		l.Bag.At(e.Span).Help(fmt.Sprintf("this has type %s", l.pretty(e.Type)))
		return lir.InvalidValue, cur, true

	case tyck.ExprInvalid:
		return lir.InvalidValue, cur, true

	case tyck.ExprName:
		name, _ := e.AsName()
		if reg, ok := cur.b.locals[name]; ok {
			return lir.RegisterValue(reg), cur, true
		}
		return lir.NameValue(name), cur, true

	case tyck.ExprTuple:
		fst, snd, _ := e.AsTuple()

		fstV, cur, ok := l.lowerExpr(cur, fst)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		sndV, cur, ok := l.lowerExpr(cur, snd)
		if !ok {
			return lir.InvalidValue, cur, false
		}

		ty, ok := l.tryLowerType(cur.b.inst, e.Type)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		reg := lir.VirtualRegister(l.freshVirtual(), ty)
		cur.emit(lir.TupleInstruction(lir.RegisterTarget(reg), []lir.Value{fstV, sndV}))
		return lir.RegisterValue(reg), cur, true

	case tyck.ExprApp:
		fun, arg, _ := e.AsApp()

		funV, cur, ok := l.lowerExpr(cur, fun)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		argV, cur, ok := l.lowerExpr(cur, arg)
		if !ok {
			return lir.InvalidValue, cur, false
		}

		argTy, ok := l.tryLowerType(cur.b.inst, arg.Type)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		argReg := cur.materialize(argTy, argV)

		resTy, ok := l.tryLowerType(cur.b.inst, e.Type)
		if !ok {
			return lir.InvalidValue, cur, false
		}

		next, result := cur.call(funV, []lir.Register{argReg}, resTy)
		return lir.RegisterValue(result), next, true

	case tyck.ExprInst:
		name, args, _ := e.AsInst()
		target, ok := l.instantiate(cur.b.inst, name, args, e.Span)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		return lir.NameValue(target), cur, true

	case tyck.ExprCoerce:
		inner, id, _ := e.AsCoerce()
		innerV, cur, ok := l.lowerExpr(cur, inner)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		return l.lowerCoerce(cur, innerV, inner.Type, e.Type, id)

	case tyck.ExprLam:
		proc, ok := l.lowerNestedLam(cur.b, e)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		ty, ok := l.tryLowerType(cur.b.inst, e.Type)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		name := l.freshLocal(cur.b.ctx, ty)
		l.registerProc(name, proc)
		return lir.NameValue(name), cur, true

	default:
		internalError("unhandled expr kind %d in lowerExpr", e.Kind)
		return lir.InvalidValue, cur, false
	}
}

// lowerCoerce applies the coercion status the solver recorded for id: Equal
// needs no instruction at all, Coercible emits a Coerce instruction for
// codegen (or a later partial-evaluation pass) to turn into a run-time
// range check, and Invalid means a diagnostic was already reported and
// there's nothing left to emit.
func (l *Lowerer) lowerCoerce(cur *cursor, innerV lir.Value, fromTy, toTy types.Type, id types.CoercionID) (lir.Value, *cursor, bool) {
	status, ok := l.Coercions.Get(id)
	if !ok {
		return lir.InvalidValue, cur, false
	}

	switch status {
	case types.Equal:
		return innerV, cur, true

	case types.Coercible:
		fromID, ok := l.tryLowerType(cur.b.inst, fromTy)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		toID, ok := l.tryLowerType(cur.b.inst, toTy)
		if !ok {
			return lir.InvalidValue, cur, false
		}
		reg := lir.VirtualRegister(l.freshVirtual(), toID)
		cur.emit(lir.CoerceInstruction(lir.RegisterTarget(reg), innerV, fromID, toID))
		return lir.RegisterValue(reg), cur, true

	default: // types.Invalid
		return lir.InvalidValue, cur, false
	}
}
