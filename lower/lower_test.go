package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/diagnostics"
	"upto/hir"
	"upto/names"
	"upto/tyck"
	"upto/types"
)

// checkedByteRange sets up a `type Byte = 0..256` alias plus the two
// literal value definitions its bounds refer to, the way the binder (out of
// scope here) would desugar a numeric literal bound into its own top-level
// constant. Every test in this file reuses it so a Range actually has
// something concrete for resolveBound to fold.
func checkedByteRange(nt *names.Names) (byteName, zero, max names.Name) {
	byteName = nt.Fresh(names.Name{}, false, "Byte", names.Span{})
	zero = nt.Fresh(names.Name{}, false, "zero", names.Span{})
	max = nt.Fresh(names.Name{}, false, "max", names.Span{})
	return
}

func typeck(t *testing.T, nt *names.Names, decls hir.Decls) (tyck.Decls, *tyck.Typer) {
	t.Helper()
	typer := tyck.NewTyper(nt, make(map[names.Name]types.Type))
	checked := typer.Typeck(decls)
	return checked, typer
}

func Test_Lower_IdentityFunctionBecomesOneParamProcedure(t *testing.T) {
	nt := names.New()
	byteName, zero, max := checkedByteRange(nt)
	identity := nt.Fresh(names.Name{}, false, "identity", names.Span{})
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	anno := hir.FunAnno(hir.NameAnno(byteName, names.Span{}), hir.NameAnno(byteName, names.Span{}), names.Span{})
	decls := hir.Decls{
		Types: []hir.TypeDef{{Name: byteName, Anno: hir.RangeAnno(zero, max, names.Span{})}},
		Values: []hir.ValueDef{
			{Name: zero, Pat: hir.NamePat(zero, names.Span{}), Body: hir.Num(0, names.Span{})},
			{Name: max, Pat: hir.NamePat(max, names.Span{}), Body: hir.Num(256, names.Span{})},
			{
				Name: identity, Pat: hir.NamePat(identity, names.Span{}), Anno: &anno,
				Body: hir.Lam(hir.NamePat(x, names.Span{}), hir.Name(x, names.Span{}), names.Span{}),
			},
		},
	}

	checked, typer := typeck(t, nt, decls)
	assert.False(t, typer.Bag.HasErrors())

	bag := diagnostics.NewBag()
	prog := Lower(nt, typer.Context, typer.Definitions, typer.Subst(), typer.Coercions, bag, checked)
	assert.False(t, bag.HasErrors())

	proc, ok := prog.Procs[identity]
	assert.True(t, ok)
	assert.Len(t, proc.Params, 1)
	assert.True(t, prog.Info.IsProcedure(identity))

	returnArgs, ok := proc.BranchOf(proc.Block(proc.Entry)).AsReturn()
	assert.True(t, ok)
	assert.Equal(t, proc.Params[0], returnArgs[0])

	ty, ok := prog.Context.Get(identity)
	assert.True(t, ok)
	_, _, ok = prog.Types.Get(ty).AsFun()
	assert.True(t, ok)
}

func Test_Lower_TupleLiteralEmitsTupleInstruction(t *testing.T) {
	nt := names.New()
	byteName, zero, max := checkedByteRange(nt)
	pair := nt.Fresh(names.Name{}, false, "pair", names.Span{})

	anno := hir.ProductAnno(hir.NameAnno(byteName, names.Span{}), hir.NameAnno(byteName, names.Span{}), names.Span{})
	decls := hir.Decls{
		Types: []hir.TypeDef{{Name: byteName, Anno: hir.RangeAnno(zero, max, names.Span{})}},
		Values: []hir.ValueDef{
			{Name: zero, Pat: hir.NamePat(zero, names.Span{}), Body: hir.Num(0, names.Span{})},
			{Name: max, Pat: hir.NamePat(max, names.Span{}), Body: hir.Num(256, names.Span{})},
			{
				Name: pair, Pat: hir.NamePat(pair, names.Span{}), Anno: &anno,
				Body: hir.Tuple(hir.Num(5, names.Span{}), hir.Num(7, names.Span{}), names.Span{}),
			},
		},
	}

	checked, typer := typeck(t, nt, decls)
	assert.False(t, typer.Bag.HasErrors())

	bag := diagnostics.NewBag()
	prog := Lower(nt, typer.Context, typer.Definitions, typer.Subst(), typer.Coercions, bag, checked)
	assert.False(t, bag.HasErrors())

	proc, ok := prog.Procs[pair]
	assert.True(t, ok)
	assert.False(t, prog.Info.IsProcedure(pair))

	insts := proc.InstructionsOf(proc.Block(proc.Entry))
	assert.Len(t, insts, 1)
	target, values, ok := insts[0].AsTuple()
	assert.True(t, ok)
	assert.Len(t, values, 2)

	returnArgs, ok := proc.BranchOf(proc.Block(proc.Entry)).AsReturn()
	assert.True(t, ok)
	reg, ok := target.AsRegister()
	assert.True(t, ok)
	assert.Equal(t, reg, returnArgs[0])
}

func Test_Lower_ApplicationLowersToCallWithFreshContinuation(t *testing.T) {
	nt := names.New()
	byteName, zero, max := checkedByteRange(nt)
	identity := nt.Fresh(names.Name{}, false, "identity", names.Span{})
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})
	five := nt.Fresh(names.Name{}, false, "five", names.Span{})
	applied := nt.Fresh(names.Name{}, false, "applied", names.Span{})

	funAnno := hir.FunAnno(hir.NameAnno(byteName, names.Span{}), hir.NameAnno(byteName, names.Span{}), names.Span{})
	byteAnno := hir.NameAnno(byteName, names.Span{})
	decls := hir.Decls{
		Types: []hir.TypeDef{{Name: byteName, Anno: hir.RangeAnno(zero, max, names.Span{})}},
		Values: []hir.ValueDef{
			{Name: zero, Pat: hir.NamePat(zero, names.Span{}), Body: hir.Num(0, names.Span{})},
			{Name: max, Pat: hir.NamePat(max, names.Span{}), Body: hir.Num(256, names.Span{})},
			{
				Name: identity, Pat: hir.NamePat(identity, names.Span{}), Anno: &funAnno,
				Body: hir.Lam(hir.NamePat(x, names.Span{}), hir.Name(x, names.Span{}), names.Span{}),
			},
			{Name: five, Pat: hir.NamePat(five, names.Span{}), Anno: &byteAnno, Body: hir.Num(5, names.Span{})},
			{
				Name: applied, Pat: hir.NamePat(applied, names.Span{}), Anno: &byteAnno,
				Body: hir.App(hir.Name(identity, names.Span{}), hir.Name(five, names.Span{}), names.Span{}),
			},
		},
	}

	checked, typer := typeck(t, nt, decls)
	assert.False(t, typer.Bag.HasErrors())

	bag := diagnostics.NewBag()
	prog := Lower(nt, typer.Context, typer.Definitions, typer.Subst(), typer.Coercions, bag, checked)
	assert.False(t, bag.HasErrors())

	proc, ok := prog.Procs[applied]
	assert.True(t, ok)

	branch := proc.BranchOf(proc.Block(proc.Entry))
	callee, args, continuations, ok := branch.AsCall()
	assert.True(t, ok)
	assert.Len(t, args, 1)
	assert.Len(t, continuations, 1)

	calleeName, ok := callee.AsName()
	assert.True(t, ok)
	assert.Equal(t, identity, calleeName)

	assert.Len(t, proc.Continuations, 1)
	assert.Equal(t, continuations[0], proc.Continuations[0])

	cont := proc.Block(continuations[0])
	assert.Len(t, cont.Params, 1)
	returnArgs, ok := proc.BranchOf(cont).AsReturn()
	assert.True(t, ok)
	assert.Equal(t, cont.Params[0], returnArgs[0])
}

func Test_Lower_UnfoldableRangeBoundReportsRequiresInit(t *testing.T) {
	nt := names.New()
	weird := nt.Fresh(names.Name{}, false, "Weird", names.Span{})
	zero := nt.Fresh(names.Name{}, false, "zero", names.Span{})
	limit := nt.Fresh(names.Name{}, false, "limit", names.Span{})
	identity := nt.Fresh(names.Name{}, false, "identity", names.Span{})
	base := nt.Fresh(names.Name{}, false, "base", names.Span{})
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	baseAnno := hir.NameAnno(weird, names.Span{})
	funAnno := hir.FunAnno(baseAnno, baseAnno, names.Span{})
	decls := hir.Decls{
		Types: []hir.TypeDef{{Name: weird, Anno: hir.RangeAnno(zero, limit, names.Span{})}},
		Values: []hir.ValueDef{
			{Name: zero, Pat: hir.NamePat(zero, names.Span{}), Body: hir.Num(0, names.Span{})},
			// limit is bound to another name's application, not a literal
			// or a bare reference: lower can't fold this without a real
			// partial evaluator.
			{Name: base, Pat: hir.NamePat(base, names.Span{}), Body: hir.Num(10, names.Span{})},
			{
				Name: limit, Pat: hir.NamePat(limit, names.Span{}),
				Body: hir.App(hir.Name(base, names.Span{}), hir.Name(base, names.Span{}), names.Span{}),
			},
			{
				Name: identity, Pat: hir.NamePat(identity, names.Span{}), Anno: &funAnno,
				Body: hir.Lam(hir.NamePat(x, names.Span{}), hir.Name(x, names.Span{}), names.Span{}),
			},
		},
	}

	checked, typer := typeck(t, nt, decls)
	assert.False(t, typer.Bag.HasErrors())

	bag := diagnostics.NewBag()
	prog := Lower(nt, typer.Context, typer.Definitions, typer.Subst(), typer.Coercions, bag, checked)

	assert.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.Diagnostics() {
		if d.Code == "EE02" {
			found = true
		}
	}
	assert.True(t, found)

	_, ok := prog.Procs[identity]
	assert.False(t, ok)
}
