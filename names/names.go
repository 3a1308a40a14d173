// Package names implements the interned, tree-shaped identifiers that every
// other pass in this compiler core refers declarations, variables, and
// generated intermediates by.
package names

import "fmt"

// Span is a source location. The lexer, parser, and resolver that produce it
// are out of scope for this core; spans simply travel with every Name and
// every diagnostic that mentions one.
type Span struct {
	File  string
	Start int
	End   int
}

// Join returns the smallest span covering both s and other. A zero Span on
// either side is treated as "no span" and the other side wins.
func (s Span) Join(other Span) Span {
	if s == (Span{}) {
		return other
	}
	if other == (Span{}) {
		return s
	}
	joined := s
	if other.Start < joined.Start {
		joined.Start = other.Start
	}
	if other.End > joined.End {
		joined.End = other.End
	}
	return joined
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d-%d", s.File, s.Start, s.End)
}

// Name is an interned, globally-unique identifier. Two Names are the same
// declaration iff they compare equal; Names is the only thing allowed to
// mint one.
type Name struct {
	id ID
}

// ID is the raw handle behind a Name, exposed for tests and for callers that
// need a stable sort key.
type ID uint32

// IsZero reports whether n is the zero Name (no Name was ever interned with
// this value). Used as a sentinel for "no parent" / "not yet set".
func (n Name) IsZero() bool { return n.id == 0 }

// ID returns the raw handle behind n, usable as a stable sort key (lowest
// id was interned first). Tarjan's algorithm uses this to make component
// discovery order deterministic across runs over the same Names table.
func (n Name) ID() ID { return n.id }

func (n Name) String() string { return fmt.Sprintf("#%d", n.id) }

// info is the data a Names table holds about one interned Name.
type info struct {
	parent     Name
	hasParent  bool
	text       string
	generated  bool
	generation uint32 // disambiguates repeated Fresh/Generated calls with the same text
	span       Span
}

// Names is the append-only interner owning every Name minted during a
// compilation. It is owned by a single compilation job; nothing here is
// safe for concurrent mutation (spec: "Shared resources").
type Names struct {
	infos   []info
	counter uint32
}

// New creates an empty interner. The zero Name (id 0) is reserved as a
// sentinel and never handed out by Fresh/Generated.
func New() *Names {
	return &Names{infos: []info{{}}}
}

// Fresh interns a new Name with the given literal text, optional parent, and
// defining span.
func (n *Names) Fresh(parent Name, hasParent bool, text string, span Span) Name {
	id := ID(len(n.infos))
	n.infos = append(n.infos, info{parent: parent, hasParent: hasParent, text: text, span: span})
	return Name{id: id}
}

// Generated mints a compiler-synthesized Name, tagged so pretty-printing
// and diagnostics can tell it apart from source-level identifiers (lowering
// uses this for the holder names it binds destructured tuples and nested
// lambdas under, and for each monomorphized instantiation's name).
func (n *Names) Generated(parent Name, hasParent bool, tag string, span Span) Name {
	n.counter++
	id := ID(len(n.infos))
	n.infos = append(n.infos, info{
		parent: parent, hasParent: hasParent,
		text: tag, generated: true, generation: n.counter, span: span,
	})
	return Name{id: id}
}

// Text returns the literal or generated-tag text of a Name.
func (n *Names) Text(name Name) string {
	return n.infos[name.id].text
}

// IsGenerated reports whether name was produced by Generated rather than Fresh.
func (n *Names) IsGenerated(name Name) bool {
	return n.infos[name.id].generated
}

// Parent returns the parent of name and whether it has one (top-level names
// have none).
func (n *Names) Parent(name Name) (Name, bool) {
	i := n.infos[name.id]
	return i.parent, i.hasParent
}

// Span returns the defining span of name.
func (n *Names) Span(name Name) Span {
	return n.infos[name.id].span
}

// Path renders the full dotted ancestry of name, root first, for diagnostics
// and dumps.
func (n *Names) Path(name Name) string {
	i := n.infos[name.id]
	if !i.hasParent {
		return i.text
	}
	return n.Path(i.parent) + "." + i.text
}

// Rebaser clones a subtree of the name tree, replacing the ancestor chain
// rooted at oldBase with one rooted at newBase. Lowering does not use it:
// monomorphization lowers a template's body directly under a type-argument
// mapping (see lower/instantiate.go), so an instantiation's locals are
// fresh registers, not rebased names.
type Rebaser struct {
	names   *Names
	oldBase Name
	newBase Name
	cache   map[Name]Name
}

// NewRebaser builds a Rebaser that replaces oldBase with newBase. Rebasing
// oldBase itself returns newBase directly; anything outside the oldBase
// subtree is returned unchanged by Rebase.
func NewRebaser(n *Names, oldBase, newBase Name) *Rebaser {
	cache := map[Name]Name{oldBase: newBase}
	return &Rebaser{names: n, oldBase: oldBase, newBase: newBase, cache: cache}
}

// Rebase returns the image of name under this rebasing, interning fresh
// names as needed and memoizing so repeated references to the same source
// name collapse to the same clone.
func (r *Rebaser) Rebase(name Name) Name {
	if mapped, ok := r.cache[name]; ok {
		return mapped
	}

	parent, hasParent := r.names.Parent(name)
	if !hasParent {
		// Outside the oldBase subtree: names with no parent other than
		// oldBase itself (already cached) are left alone.
		r.cache[name] = name
		return name
	}

	newParent := r.Rebase(parent)
	if newParent == parent {
		// The parent lies outside the oldBase subtree, so name does too.
		r.cache[name] = name
		return name
	}
	i := r.names.infos[name.id]

	var mapped Name
	if i.generated {
		mapped = r.names.Generated(newParent, true, i.text, i.span)
	} else {
		mapped = r.names.Fresh(newParent, true, i.text, i.span)
	}

	r.cache[name] = mapped
	return mapped
}
