package sift

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitVectorGetSet(t *testing.T) {
	v := NewBitVector(200)
	assert.EqualValues(t, 200, v.Len())

	for _, i := range []uint64{0, 1, 63, 64, 65, 127, 199} {
		assert.False(t, v.Get(i))
		v.Set(i)
		assert.True(t, v.Get(i))
	}
	assert.EqualValues(t, 7, v.PopCount())

	v.Clear(64)
	assert.False(t, v.Get(64))
	assert.EqualValues(t, 6, v.PopCount())
}

func TestBitVectorEqual(t *testing.T) {
	a := NewBitVector(128)
	b := NewBitVector(128)
	assert.True(t, a.Equal(b))

	a.Set(10)
	assert.False(t, a.Equal(b))
	b.Set(10)
	assert.True(t, a.Equal(b))

	c := NewBitVector(64)
	assert.False(t, a.Equal(c))
}

func TestBitVectorCloneIsIndependent(t *testing.T) {
	a := NewBitVector(128)
	a.Set(1)

	c := a.Clone()
	c.Set(2)

	assert.False(t, a.Get(2))
	assert.True(t, c.Get(1))
	assert.True(t, c.Get(2))
}

func TestBitVectorBytesRoundTrip(t *testing.T) {
	v := NewBitVector(130)
	v.Set(0)
	v.Set(65)
	v.Set(129)

	b := v.Bytes()
	v2 := BitVectorFromBytes(130, b)
	assert.True(t, v.Equal(v2))
}
