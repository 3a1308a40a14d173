package lir

import (
	"fmt"
	"math"

	"upto/names"
)

// TypeID is a handle into a Types pool.
type TypeID uint32

// TypeKind discriminates the variants of Type.
type TypeKind int

const (
	TypeRange TypeKind = iota
	TypeProduct
	TypeFun
)

// Type is a machine-level type: what's left of a checked type once a Range's
// bounds have been resolved to concrete integers and a Fun's single
// argument/result have been flattened into the CPS parameter/return-value
// lists a lowered procedure actually takes.
type Type struct {
	kind TypeKind

	rangeLo int64 // TypeRange, inclusive
	rangeHi int64 // TypeRange, exclusive

	components []TypeID // TypeProduct

	params  []TypeID // TypeFun
	results []TypeID // TypeFun
}

func RangeType(lo, hi int64) Type {
	return Type{kind: TypeRange, rangeLo: lo, rangeHi: hi}
}

func ProductType(components ...TypeID) Type {
	return Type{kind: TypeProduct, components: components}
}

func FunType(params, results []TypeID) Type {
	return Type{kind: TypeFun, params: params, results: results}
}

func (t Type) Kind() TypeKind { return t.kind }

func (t Type) AsRange() (lo, hi int64, ok bool) {
	if t.kind != TypeRange {
		return 0, 0, false
	}
	return t.rangeLo, t.rangeHi, true
}

func (t Type) AsProduct() ([]TypeID, bool) {
	if t.kind != TypeProduct {
		return nil, false
	}
	return t.components, true
}

func (t Type) AsFun() (params, results []TypeID, ok bool) {
	if t.kind != TypeFun {
		return nil, nil, false
	}
	return t.params, t.results, true
}

func equalTypes(a, b Type) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case TypeRange:
		return a.rangeLo == b.rangeLo && a.rangeHi == b.rangeHi
	case TypeProduct:
		return equalIDs(a.components, b.components)
	case TypeFun:
		return equalIDs(a.params, b.params) && equalIDs(a.results, b.results)
	default:
		panic(fmt.Sprintf("lir: unhandled kind %d in equalTypes", a.kind))
	}
}

func equalIDs(a, b []TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Types is the append-only pool of machine type shapes, deduplicated by
// structural equality. The expected pool is small, so Add does a linear
// search rather than hashing.
type Types struct {
	pool []Type
}

func NewTypes() *Types {
	return &Types{}
}

// Add interns ty, returning its existing id if an equal shape was already
// present.
func (t *Types) Add(ty Type) TypeID {
	for i, existing := range t.pool {
		if equalTypes(existing, ty) {
			return TypeID(i)
		}
	}
	id := TypeID(len(t.pool))
	t.pool = append(t.pool, ty)
	return id
}

func (t *Types) Get(id TypeID) Type {
	return t.pool[id]
}

// widths lists, in increasing order, the byte widths a Range type may be
// stored in.
var byteWidths = []int{1, 2, 4, 8}

// rangeSize picks the magnitude a Range's storage must cover: hi itself
// for a strictly-positive range, -lo for a strictly-negative one, and the
// full span hi-lo once the range straddles (or starts at) zero. Any one of
// these magnitudes needs exactly ceil(log2(magnitude)) bits, since an N-bit
// two's-complement word represents 2^N contiguous integers regardless of
// where among them its zero point falls.
func rangeSize(lo, hi int64) int {
	var magnitude int64
	switch {
	case lo > 0:
		magnitude = hi
	case hi < 0:
		magnitude = -lo
	default:
		magnitude = hi - lo
	}
	bits := math.Ceil(math.Log2(float64(magnitude)))
	bytes := int(math.Ceil(bits / 8))
	for _, w := range byteWidths {
		if bytes <= w {
			return w
		}
	}
	panic(fmt.Sprintf("lir: range [%d, %d) does not fit in 64 bits", lo, hi))
}

// Sizeof computes the size in bytes of id: rangeSize's result for a Range,
// the sum of component sizes for a Product, or a pointer width for a Fun.
func (t *Types) Sizeof(id TypeID) int {
	ty := t.Get(id)
	switch ty.kind {
	case TypeRange:
		return rangeSize(ty.rangeLo, ty.rangeHi)
	case TypeProduct:
		size := 0
		for _, c := range ty.components {
			size += t.Sizeof(c)
		}
		return size
	case TypeFun:
		return 8
	default:
		panic(fmt.Sprintf("lir: unhandled kind %d in Sizeof", ty.kind))
	}
}

// Offsetof computes the byte offset of the index'th component of id, which
// must be a Product: the sum of the sizes of every preceding component.
func (t *Types) Offsetof(id TypeID, index int) int {
	ty := t.Get(id)
	if ty.kind != TypeProduct {
		panic("lir: Offsetof on a non-Product type")
	}
	offset := 0
	for _, c := range ty.components[:index] {
		offset += t.Sizeof(c)
	}
	return offset
}

// Context binds top-level names to their machine type, for the allocator and
// application pass to consult without re-deriving a type from the checked
// HIR. Unlike Types, a Context's bindings are not structurally deduplicated:
// two names can map to the same TypeID.
type Context struct {
	byName map[names.Name]TypeID
}

func NewContext() *Context {
	return &Context{byName: make(map[names.Name]TypeID)}
}

// Add inserts name's binding. name must not already be bound.
func (c *Context) Add(name names.Name, id TypeID) {
	if _, exists := c.byName[name]; exists {
		panic("lir: Context.Add on an already-bound name")
	}
	c.byName[name] = id
}

func (c *Context) Get(name names.Name) (TypeID, bool) {
	id, ok := c.byName[name]
	return id, ok
}
