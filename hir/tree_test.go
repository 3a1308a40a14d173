package hir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/names"
)

func Test_Expr_Lam_RoundTrips(t *testing.T) {
	nt := names.New()
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	param := NamePat(x, names.Span{})
	body := Name(x, names.Span{})
	lam := Lam(param, body, names.Span{File: "f"})

	gotParam, gotBody, ok := lam.AsLam()
	assert.True(t, ok)
	gotName, _ := gotParam.AsName()
	assert.Equal(t, x, gotName)
	gotBodyName, _ := gotBody.AsName()
	assert.Equal(t, x, gotBodyName)
}

func Test_Expr_Inst_CarriesTypeArgs(t *testing.T) {
	nt := names.New()
	id := nt.Fresh(names.Name{}, false, "id", names.Span{})
	byteName := nt.Fresh(names.Name{}, false, "Byte", names.Span{})

	inst := Inst(Name(id, names.Span{}), []TypeAnno{NameAnno(byteName, names.Span{})}, names.Span{})

	fun, args, ok := inst.AsInst()
	assert.True(t, ok)
	gotFun, _ := fun.AsName()
	assert.Equal(t, id, gotFun)
	assert.Len(t, args, 1)
	gotArg, _ := args[0].AsName()
	assert.Equal(t, byteName, gotArg)
}

func Test_Pat_Tuple_Nests(t *testing.T) {
	nt := names.New()
	a := nt.Fresh(names.Name{}, false, "a", names.Span{})
	b := nt.Fresh(names.Name{}, false, "b", names.Span{})

	pat := TuplePat(NamePat(a, names.Span{}), NamePat(b, names.Span{}), names.Span{})
	fst, snd, ok := pat.AsTuple()
	assert.True(t, ok)

	fstName, _ := fst.AsName()
	sndName, _ := snd.AsName()
	assert.Equal(t, a, fstName)
	assert.Equal(t, b, sndName)
}

func Test_TypeAnno_Range_HoldsNameBounds(t *testing.T) {
	nt := names.New()
	lo := nt.Fresh(names.Name{}, false, "0", names.Span{})
	hi := nt.Fresh(names.Name{}, false, "256", names.Span{})
	anno := RangeAnno(lo, hi, names.Span{})

	gotLo, gotHi, ok := anno.AsRange()
	assert.True(t, ok)
	assert.Equal(t, lo, gotLo)
	assert.Equal(t, hi, gotHi)
}

func Test_TypeAnno_Fun_Nests(t *testing.T) {
	nt := names.New()
	byteName := nt.Fresh(names.Name{}, false, "Byte", names.Span{})
	boolName := nt.Fresh(names.Name{}, false, "Bool", names.Span{})

	anno := FunAnno(NameAnno(byteName, names.Span{}), NameAnno(boolName, names.Span{}), names.Span{})
	from, to, ok := anno.AsFun()
	assert.True(t, ok)

	fromName, _ := from.AsName()
	toName, _ := to.AsName()
	assert.Equal(t, byteName, fromName)
	assert.Equal(t, boolName, toName)
}

func Test_ValueDef_Implicit_MarksSchema(t *testing.T) {
	nt := names.New()
	id := nt.Fresh(names.Name{}, false, "id", names.Span{})
	param := nt.Fresh(names.Name{}, false, "T", names.Span{})

	def := ValueDef{
		Name:     id,
		Implicit: []names.Name{param},
		Pat:      NamePat(id, names.Span{}),
		Body:     Lam(NamePat(param, names.Span{}), Name(param, names.Span{}), names.Span{}),
	}

	assert.Len(t, def.Implicit, 1)
	assert.Equal(t, param, def.Implicit[0])
}
