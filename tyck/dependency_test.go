package tyck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/hir"
	"upto/names"
)

func Test_Dependencies_ValueRefersToAnotherValue(t *testing.T) {
	nt := names.New()
	f := nt.Fresh(names.Name{}, false, "f", names.Span{})
	g := nt.Fresh(names.Name{}, false, "g", names.Span{})

	decls := hir.Decls{Values: []hir.ValueDef{
		{Name: f, Pat: hir.NamePat(f, names.Span{}), Body: hir.Name(g, names.Span{})},
		{Name: g, Pat: hir.NamePat(g, names.Span{}), Body: hir.Num(1, names.Span{})},
	}}

	deps := dependencies(decls)
	assert.Contains(t, deps[f], g)
	assert.NotContains(t, deps[g], f)
}

func Test_Dependencies_LambdaParamShadowsOuterName(t *testing.T) {
	nt := names.New()
	f := nt.Fresh(names.Name{}, false, "f", names.Span{})
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	// f = \x -> x   (refers to nothing outside itself)
	lam := hir.Lam(hir.NamePat(x, names.Span{}), hir.Name(x, names.Span{}), names.Span{})
	decls := hir.Decls{Values: []hir.ValueDef{
		{Name: f, Pat: hir.NamePat(f, names.Span{}), Body: lam},
	}}

	deps := dependencies(decls)
	assert.Empty(t, deps[f])
}

func Test_Dependencies_RangeBoundsAreValueReferences(t *testing.T) {
	nt := names.New()
	byteName := nt.Fresh(names.Name{}, false, "Byte", names.Span{})
	lo := nt.Fresh(names.Name{}, false, "zero", names.Span{})
	hi := nt.Fresh(names.Name{}, false, "max", names.Span{})

	decls := hir.Decls{Types: []hir.TypeDef{
		{Name: byteName, Anno: hir.RangeAnno(lo, hi, names.Span{})},
	}}

	deps := dependencies(decls)
	assert.Contains(t, deps[byteName], lo)
	assert.Contains(t, deps[byteName], hi)
}

func Test_Dependencies_ImplicitParamsAreShadowedInOwnSignature(t *testing.T) {
	nt := names.New()
	f := nt.Fresh(names.Name{}, false, "f", names.Span{})
	tparam := nt.Fresh(names.Name{}, false, "T", names.Span{})

	anno := hir.FunAnno(hir.NameAnno(tparam, names.Span{}), hir.NameAnno(tparam, names.Span{}), names.Span{})
	decls := hir.Decls{Values: []hir.ValueDef{
		{Name: f, Implicit: []names.Name{tparam}, Pat: hir.NamePat(f, names.Span{}), Anno: &anno, Body: hir.Hole(names.Span{})},
	}}

	deps := dependencies(decls)
	assert.NotContains(t, deps[f], tparam)
}
