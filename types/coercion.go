package types

// CoercionID names one site where the solver decided a value of one type
// may stand in for another. The solver mints one while walking an
// assignability constraint and records what it found in a Coercions ledger;
// the elaborator later looks the id back up to decide whether it needs to
// emit a run-time range check (spec §4.2 "Coercions").
type CoercionID uint32

// Status is the strength of relationship a coercion site resolved to.
// Status values are ordered so that combining two results (e.g. across the
// two elements of a Product) can just take the max: Equal standing alone
// proves nothing needs checking, Coercible means a narrowing that must be
// validated once ranges have concrete bounds, and Invalid means the types
// never reconciled and the diagnostic has already been reported.
type Status int

const (
	Equal Status = iota
	Coercible
	Invalid
)

// Combine returns the more severe of two statuses.
func Combine(a, b Status) Status {
	if a > b {
		return a
	}
	return b
}

// Coercions is the append-only ledger of every coercion site the solver
// created during one compilation job, grounded the same way Context mints
// VarIDs: a monotonic counter plus a map from id to what was recorded
// there.
type Coercions struct {
	entries map[CoercionID]Status
	curr    uint32
}

// NewCoercions creates an empty ledger.
func NewCoercions() *Coercions {
	return &Coercions{entries: make(map[CoercionID]Status)}
}

// Fresh mints a new CoercionID with no recorded status yet.
func (c *Coercions) Fresh() CoercionID {
	id := CoercionID(c.curr)
	c.curr++
	return id
}

// Set records the status found for id. Recording the same id twice is a
// compiler bug: each site should be resolved exactly once by the solver.
func (c *Coercions) Set(id CoercionID, status Status) {
	if _, exists := c.entries[id]; exists {
		panic("types: Coercions.Set called twice for the same id")
	}
	c.entries[id] = status
}

// Get returns the status recorded for id and whether one was ever set. A
// coercion site that the solver never revisited (because its constraint
// stayed deferred forever) has no entry; callers treat that the same as
// Invalid, since ET02 will already have been reported for it.
func (c *Coercions) Get(id CoercionID) (Status, bool) {
	status, ok := c.entries[id]
	return status, ok
}
