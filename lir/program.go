package lir

import "upto/names"

// Program is a whole lowered compilation unit: every procedure and constant
// value, the machine type pool they were lowered against, the name-to-type
// context built up alongside them, and the intern/extern and
// procedure/constant bookkeeping in Info.
type Program struct {
	Procs  map[names.Name]*Procedure
	Values map[names.Name]Value

	Types   *Types
	Context *Context
	Info    *NameInfo
}

func NewProgram() *Program {
	return &Program{
		Procs:   make(map[names.Name]*Procedure),
		Values:  make(map[names.Name]Value),
		Types:   NewTypes(),
		Context: NewContext(),
		Info:    NewNameInfo(),
	}
}
