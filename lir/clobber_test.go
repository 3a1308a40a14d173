package lir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Clobbered_CollectsPhysicalWriteTargetsAcrossBlocks(t *testing.T) {
	b := NewBuilder(nil, nil)
	entry := b.FreshID()
	next := b.FreshID()

	b.Add(entry, nil,
		[]Instruction{CopyInstruction(RegisterTarget(PhysicalRegister(0)), IntValue(1))},
		JumpBranch(next, nil))
	b.Add(next, nil,
		[]Instruction{CopyInstruction(RegisterTarget(PhysicalRegister(1)), IntValue(2))},
		ReturnBranch([]Register{PhysicalRegister(1)}))

	proc := b.Build(entry, []BlockID{next})

	clobbered := Clobbered(proc)
	assert.Contains(t, clobbered, 0)
	assert.Contains(t, clobbered, 1)
	assert.Len(t, clobbered, 2)
}

func Test_Clobbered_IgnoresVirtualAndFrameTargets(t *testing.T) {
	pool := NewTypes()
	byteType := pool.Add(RangeType(0, 256))

	b := NewBuilder(nil, nil)
	entry := b.FreshID()
	b.Add(entry, nil,
		[]Instruction{
			CopyInstruction(RegisterTarget(VirtualRegister(0, byteType)), IntValue(1)),
			CopyInstruction(RegisterTarget(FrameRegister(0, byteType)), IntValue(2)),
		},
		ReturnBranch(nil))
	proc := b.Build(entry, nil)

	assert.Empty(t, Clobbered(proc))
}
