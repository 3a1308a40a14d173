package tyck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/names"
	"upto/types"
)

func Test_Solve_CrossesRoundsOnceAnEarlierConstraintPinsTheVar(t *testing.T) {
	typer := newTyper()
	nt := typer.Names
	lo := nt.Fresh(names.Name{}, false, "0", names.Span{})
	hi := nt.Fresh(names.Name{}, false, "10", names.Span{})
	v := typer.Context.Fresh()
	vv := types.VarType(types.Mutable, v)

	// Queued in an order where IsNumeric runs before the Equal that pins v:
	// round 1 defers IsNumeric (v is still an open Var) while resolving v
	// via Equal; round 2 retries IsNumeric against the now-concrete Range.
	typer.constraints = append(typer.constraints,
		IsNumericConstraint(names.Span{}, Because{}, vv),
		EqualConstraint(names.Span{}, vv, types.RangeType(lo, hi)),
	)

	typer.Solve()

	assert.False(t, typer.Bag.HasErrors())
	assert.Empty(t, typer.constraints)
	_, resolvedTy := typer.getSubst(v)
	assert.Equal(t, types.KindRange, resolvedTy.Kind())
}

func Test_Solve_DrainsNestedNumericConstraint(t *testing.T) {
	typer := newTyper()
	v := typer.Context.Fresh()

	typer.constraints = append(typer.constraints,
		IsNumericConstraint(names.Span{}, Because{}, types.VarType(types.Immutable, v)))

	typer.Solve()

	diags := typer.Bag.Diagnostics()
	assert.Len(t, diags, 1)
	assert.Equal(t, "ET02", diags[0].Code)
}
