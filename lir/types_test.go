package lir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Types_AddDeduplicatesStructurallyEqualShapes(t *testing.T) {
	pool := NewTypes()

	a := pool.Add(RangeType(0, 256))
	b := pool.Add(RangeType(0, 256))
	c := pool.Add(RangeType(0, 255))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func Test_Sizeof_RangePicksSmallestCoveringWidth(t *testing.T) {
	pool := NewTypes()

	byteType := pool.Add(RangeType(0, 256))
	assert.Equal(t, 1, pool.Sizeof(byteType))

	wordType := pool.Add(RangeType(0, 65536))
	assert.Equal(t, 2, pool.Sizeof(wordType))

	signedByte := pool.Add(RangeType(-128, 128))
	assert.Equal(t, 1, pool.Sizeof(signedByte))

	justOverByte := pool.Add(RangeType(-129, 128))
	assert.Equal(t, 2, pool.Sizeof(justOverByte))
}

func Test_Sizeof_ProductSumsComponents(t *testing.T) {
	pool := NewTypes()
	byteType := pool.Add(RangeType(0, 256))
	wordType := pool.Add(RangeType(0, 65536))

	product := pool.Add(ProductType(byteType, wordType))
	assert.Equal(t, 3, pool.Sizeof(product))
}

func Test_Sizeof_FunIsPointerSized(t *testing.T) {
	pool := NewTypes()
	byteType := pool.Add(RangeType(0, 256))

	fun := pool.Add(FunType([]TypeID{byteType}, []TypeID{byteType}))
	assert.Equal(t, 8, pool.Sizeof(fun))
}

func Test_Offsetof_SumsPrecedingComponentSizes(t *testing.T) {
	pool := NewTypes()
	byteType := pool.Add(RangeType(0, 256))
	wordType := pool.Add(RangeType(0, 65536))

	product := pool.Add(ProductType(byteType, wordType, byteType))
	assert.Equal(t, 0, pool.Offsetof(product, 0))
	assert.Equal(t, 1, pool.Offsetof(product, 1))
	assert.Equal(t, 3, pool.Offsetof(product, 2))
}

func Test_Offsetof_PanicsOnNonProduct(t *testing.T) {
	pool := NewTypes()
	byteType := pool.Add(RangeType(0, 256))

	assert.Panics(t, func() { pool.Offsetof(byteType, 0) })
}
