package regalloc

import (
	"fmt"

	"upto/lir"
)

// PhysicalRegisterInfo describes one hardware register slot a Convention
// can hand out: the id Register.AsPhysical returns once a virtual is
// assigned to it, its width in bytes, a display name, and the ids of every
// register (itself included) it aliases. This port's abstract machine has
// no overlapping sub-registers the way a real register file commonly does
// (a 16-bit pair built from two 8-bit halves, say), so every alias set
// below is just the register's own id; Allocate's alias-set check still
// walks Aliases generally, ready for a convention whose registers really
// do overlap.
type PhysicalRegisterInfo struct {
	ID      int
	Size    int
	Name    string
	Aliases []int
}

// Convention is one target calling convention: which physical registers
// its allocator may hand out, most-preferred first, which positional
// register a procedure's parameters and return values are passed in, and
// which registers a call under this convention is free to clobber.
type Convention struct {
	Name lir.CallingConvention

	Registers []PhysicalRegisterInfo

	// Parameters and Returns give, in order, the physical register id
	// each positional parameter/return value is passed in. A convention
	// with no positional registers leaves both empty: its parameters and
	// return values then go through the first-fit loop like any other
	// virtual (still first by priority), taking a physical register while
	// one is free and a frame slot after that.
	Parameters []int
	Returns    []int

	// Clobbered lists registers a callee under this convention is free
	// to overwrite. Allocate treats any register still live across such
	// a call as if it additionally interfered with all of them.
	Clobbered []int
}

// Table looks up the Convention to allocate a procedure's registers
// against by its declared lir.CallingConvention. Target names the
// compilation target it describes, for CompileUnsupportedConvention to
// report when a procedure asks for a convention this table has no entry
// for.
type Table struct {
	Target      string
	conventions map[lir.CallingConvention]Convention
}

func NewTable(target string, conventions ...Convention) *Table {
	t := &Table{Target: target, conventions: make(map[lir.CallingConvention]Convention, len(conventions))}
	for _, c := range conventions {
		t.conventions[c.Name] = c
	}
	return t
}

func (t *Table) Get(name lir.CallingConvention) (Convention, bool) {
	c, ok := t.conventions[name]
	return c, ok
}

// generalRegisters is the abstract machine's register file: eight 8-byte
// general-purpose slots, r0 most preferred.
func generalRegisters() []PhysicalRegisterInfo {
	regs := make([]PhysicalRegisterInfo, 8)
	for i := range regs {
		regs[i] = PhysicalRegisterInfo{ID: i, Size: 8, Name: fmt.Sprintf("r%d", i), Aliases: []int{i}}
	}
	return regs
}

// Corollary is this core's own convention. It names no positional
// registers, so Parameters and Returns are empty and the allocator places
// argument-like registers through the same first-fit loop as every other
// virtual: a physical register while one is free, a frame slot after
// that. No caller-reserved stack area is laid out for them.
func Corollary() Convention {
	return Convention{
		Name:      lir.ConventionCorollary,
		Registers: generalRegisters(),
	}
}

// SystemV models the System V AMD64 ABI's integer argument registers
// closely enough to exercise a register-passing convention distinct from
// Corollary, which has no positional registers: the first six general registers carry
// parameters in order, the first also carries a single return value, and
// a call under this convention may clobber any of the argument registers.
func SystemV() Convention {
	return Convention{
		Name:       lir.ConventionSystemV,
		Registers:  generalRegisters(),
		Parameters: []int{0, 1, 2, 3, 4, 5},
		Returns:    []int{0},
		Clobbered:  []int{0, 1, 2, 3, 4, 5},
	}
}
