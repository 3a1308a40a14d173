package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/names"
)

func Test_Type_WithMutability_Recurses(t *testing.T) {
	fn := FunType(VarType(Mutable, 0), ProductType(VarType(Mutable, 1), NumberType()))
	flipped := fn.WithMutability(Immutable)

	from, to, ok := flipped.AsFun()
	assert.True(t, ok)

	m, _, _ := from.AsVar()
	assert.Equal(t, Immutable, m)

	fst, _, _ := to.AsProduct()
	m2, _, _ := fst.AsVar()
	assert.Equal(t, Immutable, m2)
}

func Test_Type_Substitute_ChasesChains(t *testing.T) {
	nt := names.New()
	a := nt.Fresh(names.Name{}, false, "a", names.Span{})
	b := nt.Fresh(names.Name{}, false, "b", names.Span{})

	mapping := map[names.Name]Type{
		a: NamedType(b),
		b: NumberType(),
	}

	result := Substitute(mapping, NamedType(a))
	assert.Equal(t, KindNumber, result.Kind())
}

func Test_Context_AddAndGet(t *testing.T) {
	nt := names.New()
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	ctx := NewContext()
	ctx.Add(x, NumberType())

	binding := ctx.Get(x)
	assert.False(t, binding.IsSchema())
	assert.Equal(t, KindNumber, binding.Type().Kind())
}

func Test_Context_Add_PanicsOnDuplicate(t *testing.T) {
	nt := names.New()
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	ctx := NewContext()
	ctx.Add(x, NumberType())

	assert.Panics(t, func() { ctx.Add(x, NumberType()) })
}

func Test_Context_Instantiate_MonomorphicIsUnchanged(t *testing.T) {
	ctx := NewContext()
	ty, vars := ctx.Instantiate(TypeOrSchema{ty: NumberType()})
	assert.Empty(t, vars)
	assert.Equal(t, KindNumber, ty.Kind())
}

func Test_Context_Instantiate_SchemaGetsFreshVars(t *testing.T) {
	nt := names.New()
	param := nt.Fresh(names.Name{}, false, "T", names.Span{})

	ctx := NewContext()
	idName := nt.Fresh(names.Name{}, false, "id", names.Span{})
	ctx.AddSchema(idName, []names.Name{param}, FunType(NamedType(param), NamedType(param)))

	binding := ctx.Get(idName)
	ty, vars := ctx.Instantiate(binding)
	assert.Len(t, vars, 1)

	inner, mapping, ok := ty.AsInstantiated()
	assert.True(t, ok)
	assert.Len(t, mapping, 1)

	from, to, ok := inner.AsFun()
	assert.True(t, ok)
	_, v1, _ := from.AsVar()
	_, v2, _ := to.AsVar()
	assert.Equal(t, v1, v2)
	assert.Equal(t, vars[0], v1)
}

func Test_Context_Instantiate_DistinctCallsGetDistinctVars(t *testing.T) {
	nt := names.New()
	param := nt.Fresh(names.Name{}, false, "T", names.Span{})
	idName := nt.Fresh(names.Name{}, false, "id", names.Span{})

	ctx := NewContext()
	ctx.AddSchema(idName, []names.Name{param}, NamedType(param))
	binding := ctx.Get(idName)

	_, firstVars := ctx.Instantiate(binding)
	_, secondVars := ctx.Instantiate(binding)
	assert.NotEqual(t, firstVars[0], secondVars[0])
}

func Test_Context_MakeMutability(t *testing.T) {
	nt := names.New()
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	ctx := NewContext()
	ctx.Add(x, VarType(Mutable, ctx.Fresh()))
	ctx.MakeMutability(x, Immutable)

	m, _, _ := ctx.Get(x).Type().AsVar()
	assert.Equal(t, Immutable, m)
}

func Test_Context_PolymorphicNames(t *testing.T) {
	nt := names.New()
	mono := nt.Fresh(names.Name{}, false, "mono", names.Span{})
	poly := nt.Fresh(names.Name{}, false, "poly", names.Span{})
	param := nt.Fresh(names.Name{}, false, "T", names.Span{})

	ctx := NewContext()
	ctx.Add(mono, NumberType())
	ctx.AddSchema(poly, []names.Name{param}, NamedType(param))

	got := ctx.PolymorphicNames()
	assert.Equal(t, []names.Name{poly}, got)
}

func Test_Coercions_SetAndGet(t *testing.T) {
	c := NewCoercions()
	id := c.Fresh()

	_, ok := c.Get(id)
	assert.False(t, ok)

	c.Set(id, Coercible)
	status, ok := c.Get(id)
	assert.True(t, ok)
	assert.Equal(t, Coercible, status)
}

func Test_Coercions_Set_PanicsOnDuplicate(t *testing.T) {
	c := NewCoercions()
	id := c.Fresh()
	c.Set(id, Equal)
	assert.Panics(t, func() { c.Set(id, Invalid) })
}

func Test_Combine_TakesMoreSevere(t *testing.T) {
	assert.Equal(t, Coercible, Combine(Equal, Coercible))
	assert.Equal(t, Invalid, Combine(Coercible, Invalid))
	assert.Equal(t, Equal, Combine(Equal, Equal))
}

func Test_Pretty_RendersFunAndProduct(t *testing.T) {
	nt := names.New()
	lo := nt.Fresh(names.Name{}, false, "0", names.Span{})
	hi := nt.Fresh(names.Name{}, false, "10", names.Span{})

	ty := FunType(RangeType(lo, hi), ProductType(NumberType(), RangeType(lo, hi)))
	got := Pretty(nt, nil, NewPrettyMap(), ty)
	assert.Equal(t, "0 upto 10 -> (number, 0 upto 10)", got)
}

func Test_Pretty_ResolvesSubstitutedVar(t *testing.T) {
	subst := map[VarID]Type{0: NumberType()}
	got := Pretty(names.New(), subst, NewPrettyMap(), VarType(Mutable, 0))
	assert.Equal(t, "number", got)
}

func Test_Pretty_UnresolvedVarsGetStableLetters(t *testing.T) {
	pm := NewPrettyMap()
	nt := names.New()
	first := Pretty(nt, nil, pm, VarType(Mutable, 5))
	again := Pretty(nt, nil, pm, VarType(Mutable, 5))
	second := Pretty(nt, nil, pm, VarType(Mutable, 6))

	assert.Equal(t, "'a", first)
	assert.Equal(t, first, again)
	assert.Equal(t, "'b", second)
}

func Test_Pretty_InstantiatedAppliesMapping(t *testing.T) {
	nt := names.New()
	param := nt.Fresh(names.Name{}, false, "T", names.Span{})

	ty := InstantiatedType(NamedType(param), map[names.Name]Type{param: NumberType()})
	got := Pretty(nt, nil, NewPrettyMap(), ty)
	assert.Equal(t, "number", got)
}
