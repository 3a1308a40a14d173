package types

import "upto/names"

// TypeOrSchema is what a Context binds a name to: either a monomorphic
// Type, or a Schema whose params are universally quantified over the
// wrapped Type (spec §4.1 "Polymorphic definitions").
type TypeOrSchema struct {
	params []names.Name // nil for a plain Type
	ty     Type
}

// IsSchema reports whether this binding is polymorphic.
func (s TypeOrSchema) IsSchema() bool { return s.params != nil }

// Type returns the wrapped monomorphic type directly. Panics if s is a
// Schema; callers that might see either should branch on IsSchema first or
// call Context.Instantiate.
func (s TypeOrSchema) Type() Type {
	if s.IsSchema() {
		panic("types: Type called on a Schema binding")
	}
	return s.ty
}

// Params returns the schema's quantified parameters, or nil if s is not a
// Schema.
func (s TypeOrSchema) Params() []names.Name { return s.params }

// Context is the typechecker's name-to-type environment and unification
// variable factory for one compilation job (spec §4.1 "Type interner and
// context"). Every top-level and local definition is added exactly once;
// looking a name up before it's added, or adding the same name twice, is a
// compiler bug, not a user error, so both panic.
type Context struct {
	names   map[names.Name]TypeOrSchema
	currVar uint32
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{names: make(map[names.Name]TypeOrSchema)}
}

// Add binds name to a monomorphic type.
func (c *Context) Add(name names.Name, ty Type) {
	if _, exists := c.names[name]; exists {
		panic("types: Context.Add called twice for the same name")
	}
	c.names[name] = TypeOrSchema{ty: ty}
}

// AddSchema binds name to a polymorphic type universally quantified over
// params.
func (c *Context) AddSchema(name names.Name, params []names.Name, ty Type) {
	if _, exists := c.names[name]; exists {
		panic("types: Context.AddSchema called twice for the same name")
	}
	if len(params) == 0 {
		panic("types: Context.AddSchema called with no parameters; use Add")
	}
	c.names[name] = TypeOrSchema{params: params, ty: ty}
}

// Get returns the binding for name. Panics if name was never added: every
// name reaching the typechecker should have been bound by the binder pass
// first (spec §4.1 "Binder").
func (c *Context) Get(name names.Name) TypeOrSchema {
	binding, ok := c.names[name]
	if !ok {
		panic("types: Context.Get on an unbound name")
	}
	return binding
}

// Has reports whether name has been bound yet.
func (c *Context) Has(name names.Name) bool {
	_, ok := c.names[name]
	return ok
}

// Fresh mints a new unification variable, unrelated to any name.
func (c *Context) Fresh() VarID {
	id := VarID(c.currVar)
	c.currVar++
	return id
}

// Instantiate produces a use-site type for binding: a plain Type is
// returned unchanged, while a Schema gets a fresh Mutable variable for each
// of its parameters, substituted through the body and wrapped in an
// Instantiated marker so later passes can recover which arguments were
// chosen here (spec §4.1 "Instantiation"). The fresh variables are returned
// alongside so the caller can unify them against any explicit type
// arguments supplied at the call site.
func (c *Context) Instantiate(binding TypeOrSchema) (Type, []VarID) {
	if !binding.IsSchema() {
		return binding.ty, nil
	}

	vars := make([]VarID, len(binding.params))
	mapping := make(map[names.Name]Type, len(binding.params))
	for i, param := range binding.params {
		vars[i] = c.Fresh()
		mapping[param] = VarType(Mutable, vars[i])
	}

	body := Substitute(mapping, binding.ty)
	return InstantiatedType(body, mapping), vars
}

// MakeMutability rewrites the mutability of every Var in the type bound to
// name, in place. The solver uses this to flip a definition's own
// signature between Mutable (while its body is being checked) and
// Immutable (once checking moves on to its callers) (spec §4.1).
func (c *Context) MakeMutability(name names.Name, m Mutability) {
	binding, ok := c.names[name]
	if !ok {
		panic("types: Context.MakeMutability on an unbound name")
	}
	binding.ty = binding.ty.WithMutability(m)
	c.names[name] = binding
}

// PolymorphicNames returns every name bound to a Schema. The lowering pass
// does not call it; lower recognizes a polymorphic definition by its
// non-empty Implicit list instead.
func (c *Context) PolymorphicNames() []names.Name {
	var out []names.Name
	for name, binding := range c.names {
		if binding.IsSchema() {
			out = append(out, name)
		}
	}
	return out
}

// MergeInstantiations combines two instantiation mappings produced for the
// same type variable from two different branches of unification. Callers
// are expected to have already checked the branches agree on every type;
// when a name appears in both, either mapping's image is interchangeable.
func MergeInstantiations(a, b map[names.Name]Type) map[names.Name]Type {
	merged := make(map[names.Name]Type, len(a)+len(b))
	for name, ty := range a {
		merged[name] = ty
	}
	for name, ty := range b {
		merged[name] = ty
	}
	return merged
}
