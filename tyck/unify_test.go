package tyck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/names"
	"upto/types"
)

func newTyper() *Typer {
	return NewTyper(names.New(), make(map[names.Name]types.Type))
}

func Test_Equate_SolvesMutableVar(t *testing.T) {
	typer := newTyper()
	v := typer.Context.Fresh()

	typer.Equate(names.Span{}, types.VarType(types.Mutable, v), types.NumberType())

	assert.False(t, typer.Bag.HasErrors())
	_, ty := typer.getSubst(v)
	assert.Equal(t, types.KindNumber, ty.Kind())
}

func Test_Equate_MismatchReportsET00(t *testing.T) {
	typer := newTyper()
	nt := typer.Names
	a := nt.Fresh(names.Name{}, false, "A", names.Span{})
	b := nt.Fresh(names.Name{}, false, "B", names.Span{})

	typer.Equate(names.Span{}, types.NamedType(a), types.NamedType(b))

	diags := typer.Bag.Diagnostics()
	assert.Len(t, diags, 1)
	assert.Equal(t, "ET00", diags[0].Code)
}

func Test_Equate_OccursCheckFailsWithET06(t *testing.T) {
	typer := newTyper()
	v := typer.Context.Fresh()

	cyclic := types.FunType(types.VarType(types.Mutable, v), types.NumberType())
	typer.Equate(names.Span{}, types.VarType(types.Mutable, v), cyclic)

	diags := typer.Bag.Diagnostics()
	assert.Len(t, diags, 1)
	assert.Equal(t, "ET06", diags[0].Code)

	_, resolvedTy := typer.getSubst(v)
	assert.True(t, resolvedTy.IsInvalid())
}

func Test_Equate_TwoImmutableVarsDefer(t *testing.T) {
	typer := newTyper()
	v := types.VarType(types.Immutable, typer.Context.Fresh())
	w := types.VarType(types.Immutable, typer.Context.Fresh())

	typer.Equate(names.Span{}, v, w)

	assert.False(t, typer.Bag.HasErrors())
	assert.Len(t, typer.constraints, 1)
	assert.Equal(t, ConstraintEqual, typer.constraints[0].Kind)
}

func Test_Equate_RecursesIntoFunArgsAndResults(t *testing.T) {
	typer := newTyper()
	v := typer.Context.Fresh()
	w := typer.Context.Fresh()

	left := types.FunType(types.VarType(types.Mutable, v), types.NumberType())
	right := types.FunType(types.VarType(types.Mutable, w), types.NumberType())

	typer.Equate(names.Span{}, left, right)

	assert.False(t, typer.Bag.HasErrors())
}

func Test_Occurs_FindsVarInsideInstantiatedMapping(t *testing.T) {
	v := types.VarID(7)
	nt := names.New()
	param := nt.Fresh(names.Name{}, false, "T", names.Span{})

	wrapped := types.InstantiatedType(types.NamedType(param), map[names.Name]types.Type{
		param: types.VarType(types.Mutable, v),
	})

	assert.True(t, occurs(v, wrapped))
	assert.False(t, occurs(types.VarID(99), wrapped))
}
