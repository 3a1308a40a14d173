package lir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/names"
)

func Test_NameInfo_ProcedureDefaultsToCorollaryConvention(t *testing.T) {
	nt := names.New()
	f := nt.Fresh(names.Name{}, false, "f", names.Span{})

	ni := NewNameInfo()
	ni.Add(f, InfoProcedure)

	assert.True(t, ni.IsProcedure(f))
	assert.False(t, ni.IsConstant(f))

	convention, ok := ni.GetConvention(f)
	assert.True(t, ok)
	assert.Equal(t, ConventionCorollary, convention)
}

func Test_NameInfo_ConstantHasNoConvention(t *testing.T) {
	nt := names.New()
	c := nt.Fresh(names.Name{}, false, "c", names.Span{})

	ni := NewNameInfo()
	ni.Add(c, 0)

	assert.True(t, ni.IsConstant(c))
	_, ok := ni.GetConvention(c)
	assert.False(t, ok)
}

func Test_NameInfo_ExternFlagIsIndependentOfProcedure(t *testing.T) {
	nt := names.New()
	f := nt.Fresh(names.Name{}, false, "f", names.Span{})

	ni := NewNameInfo()
	ni.Add(f, InfoProcedure|InfoExtern)

	assert.True(t, ni.IsProcedure(f))
	assert.True(t, ni.IsExtern(f))
}

func Test_NameInfo_AddConventionRejectsNonProcedure(t *testing.T) {
	nt := names.New()
	c := nt.Fresh(names.Name{}, false, "c", names.Span{})

	ni := NewNameInfo()
	ni.Add(c, 0)

	assert.Panics(t, func() { ni.AddConvention(c, ConventionSystemV) })
}
