package lir

// BlockID identifies one block within a single Procedure.
type BlockID uint32

// Block is a straight-line sequence of instructions terminated by a single
// Branch. Its instructions and branch are stored by index into the owning
// Procedure's shared pools rather than inline, so cloning a block graph (as
// monomorphization and partial evaluation both do) doesn't have to deep-copy
// every instruction up front.
type Block struct {
	Params []Register

	InstStart, InstEnd int // half-open range into Procedure.Instructions
	Branch             int // index into Procedure.Branches
}
