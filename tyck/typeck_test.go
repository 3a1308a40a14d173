package tyck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/hir"
	"upto/names"
	"upto/types"
)

func Test_Typeck_ChecksAnIdentityFunction(t *testing.T) {
	nt := names.New()
	identity := nt.Fresh(names.Name{}, false, "identity", names.Span{})
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	anno := hir.FunAnno(hir.WildcardAnno(names.Span{}), hir.WildcardAnno(names.Span{}), names.Span{})
	decls := hir.Decls{Values: []hir.ValueDef{
		{
			Name: identity,
			Pat:  hir.NamePat(identity, names.Span{}),
			Anno: &anno,
			Body: hir.Lam(hir.NamePat(x, names.Span{}), hir.Name(x, names.Span{}), names.Span{}),
		},
	}}

	typer := NewTyper(nt, make(map[names.Name]types.Type))
	checked := typer.Typeck(decls)

	assert.False(t, typer.Bag.HasErrors())
	assert.Len(t, checked.Values, 1)

	_, body, ok := checked.Values[0].Body.AsLam()
	assert.True(t, ok)

	// The bare reference to x still gets wrapped in a Coerce node: Check's
	// fallback path always infers-then-assigns, even when the assignment
	// turns out to need no real coercion.
	inner, id, ok := body.AsCoerce()
	assert.True(t, ok)
	status, _ := typer.Coercions.Get(id)
	assert.Equal(t, types.Equal, status)

	name, ok := inner.AsName()
	assert.True(t, ok)
	assert.Equal(t, x, name)
}

func Test_Typeck_NumberLiteralChecksAgainstNamedRange(t *testing.T) {
	nt := names.New()
	byteName := nt.Fresh(names.Name{}, false, "Byte", names.Span{})
	lo := nt.Fresh(names.Name{}, false, "zero", names.Span{})
	hi := nt.Fresh(names.Name{}, false, "max", names.Span{})
	five := nt.Fresh(names.Name{}, false, "five", names.Span{})

	anno := hir.NameAnno(byteName, names.Span{})
	decls := hir.Decls{
		Types: []hir.TypeDef{
			{Name: byteName, Anno: hir.RangeAnno(lo, hi, names.Span{})},
		},
		Values: []hir.ValueDef{
			{Name: five, Pat: hir.NamePat(five, names.Span{}), Anno: &anno, Body: hir.Num(5, names.Span{})},
		},
	}

	typer := NewTyper(nt, make(map[names.Name]types.Type))
	checked := typer.Typeck(decls)

	assert.False(t, typer.Bag.HasErrors())
	name, ok := checked.Values[0].Body.Type.AsName()
	assert.True(t, ok)
	assert.Equal(t, byteName, name)
}

func Test_Typeck_MutualRecursionNeedsNoForwardDeclaration(t *testing.T) {
	nt := names.New()
	isEven := nt.Fresh(names.Name{}, false, "isEven", names.Span{})
	isOdd := nt.Fresh(names.Name{}, false, "isOdd", names.Span{})
	n := nt.Fresh(names.Name{}, false, "n", names.Span{})
	m := nt.Fresh(names.Name{}, false, "m", names.Span{})

	boolName := nt.Fresh(names.Name{}, false, "Bool", names.Span{})
	definitions := map[names.Name]types.Type{boolName: types.NamedType(boolName)}

	fnAnno := hir.FunAnno(hir.WildcardAnno(names.Span{}), hir.NameAnno(boolName, names.Span{}), names.Span{})
	fnAnno2 := hir.FunAnno(hir.WildcardAnno(names.Span{}), hir.NameAnno(boolName, names.Span{}), names.Span{})

	decls := hir.Decls{Values: []hir.ValueDef{
		{
			Name: isEven, Pat: hir.NamePat(isEven, names.Span{}), Anno: &fnAnno,
			Body: hir.Lam(hir.NamePat(n, names.Span{}), hir.App(hir.Name(isOdd, names.Span{}), hir.Name(n, names.Span{}), names.Span{}), names.Span{}),
		},
		{
			Name: isOdd, Pat: hir.NamePat(isOdd, names.Span{}), Anno: &fnAnno2,
			Body: hir.Lam(hir.NamePat(m, names.Span{}), hir.App(hir.Name(isEven, names.Span{}), hir.Name(m, names.Span{}), names.Span{}), names.Span{}),
		},
	}}

	typer := NewTyper(nt, definitions)
	checked := typer.Typeck(decls)

	assert.False(t, typer.Bag.HasErrors())
	assert.Len(t, checked.Values, 2)
}
