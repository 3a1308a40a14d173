package lir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Builder_AddAssemblesSharedPools(t *testing.T) {
	pool := NewTypes()
	byteType := pool.Add(RangeType(0, 256))

	b := NewBuilder(nil, nil)
	entry := b.FreshID()
	exit := b.FreshID()

	v := VirtualRegister(0, byteType)
	b.Add(entry, nil, []Instruction{CopyInstruction(RegisterTarget(v), IntValue(5))}, JumpBranch(exit, nil))
	b.Add(exit, nil, nil, ReturnBranch([]Register{v}))

	proc := b.Build(entry, []BlockID{exit})

	require.True(t, proc.HasBlock(entry))
	require.True(t, proc.HasBlock(exit))

	entryBlock := proc.Block(entry)
	insts := proc.InstructionsOf(entryBlock)
	require.Len(t, insts, 1)

	target, value, ok := insts[0].AsCopy()
	require.True(t, ok)
	reg, ok := target.AsRegister()
	require.True(t, ok)
	assert.Equal(t, v, reg)
	n, ok := value.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(5), n)

	to, args, ok := proc.BranchOf(entryBlock).AsJump()
	require.True(t, ok)
	assert.Equal(t, exit, to)
	assert.Empty(t, args)
}

func Test_Builder_AddPanicsOnDuplicateBlockID(t *testing.T) {
	b := NewBuilder(nil, nil)
	id := b.FreshID()
	b.Add(id, nil, nil, ReturnBranch(nil))

	assert.Panics(t, func() { b.Add(id, nil, nil, ReturnBranch(nil)) })
}

func Test_Builder_FreshIDStartsAfterDeclaredContinuations(t *testing.T) {
	b := NewBuilder(nil, []BlockID{3})
	assert.Equal(t, BlockID(4), b.FreshID())
}

func Test_Branch_SuccessorsPerKind(t *testing.T) {
	assert.Empty(t, ReturnBranch(nil).Successors())
	assert.Equal(t, []BlockID{5}, JumpBranch(5, nil).Successors())

	jumpIf := JumpIfBranch(IntValue(1), CondLess, IntValue(2), JumpTarget{Block: 1}, JumpTarget{Block: 2})
	assert.Equal(t, []BlockID{1, 2}, jumpIf.Successors())

	call := CallBranch(IntValue(0), nil, []BlockID{7, 8})
	assert.Equal(t, []BlockID{7, 8}, call.Successors())
}
