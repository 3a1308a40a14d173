package tyck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/names"
)

func Test_Tarjan_MutualRecursionIsOneComponent(t *testing.T) {
	nt := names.New()
	isEven := nt.Fresh(names.Name{}, false, "isEven", names.Span{})
	isOdd := nt.Fresh(names.Name{}, false, "isOdd", names.Span{})

	graph := map[names.Name]map[names.Name]struct{}{
		isEven: {isOdd: {}},
		isOdd:  {isEven: {}},
	}

	comps := tarjan(graph)
	assert.Len(t, comps, 1)
	assert.ElementsMatch(t, []names.Name{isEven, isOdd}, comps[0].Names)
}

func Test_Tarjan_OrdersIndependentChainInReverseTopologicalOrder(t *testing.T) {
	nt := names.New()
	a := nt.Fresh(names.Name{}, false, "a", names.Span{})
	b := nt.Fresh(names.Name{}, false, "b", names.Span{})

	// a depends on b, so b (no dependencies) must be processed first.
	graph := map[names.Name]map[names.Name]struct{}{
		a: {b: {}},
		b: {},
	}

	comps := tarjan(graph)
	assert.Len(t, comps, 2)
	assert.Equal(t, []names.Name{b}, comps[0].Names)
	assert.Equal(t, []names.Name{a}, comps[1].Names)
}

func Test_Tarjan_IsDeterministicAcrossRuns(t *testing.T) {
	nt := names.New()
	a := nt.Fresh(names.Name{}, false, "a", names.Span{})
	b := nt.Fresh(names.Name{}, false, "b", names.Span{})
	c := nt.Fresh(names.Name{}, false, "c", names.Span{})

	graph := map[names.Name]map[names.Name]struct{}{
		a: {b: {}, c: {}},
		b: {},
		c: {},
	}

	first := tarjan(graph)
	second := tarjan(graph)
	assert.Equal(t, first, second)
}
