package sift

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Double hashing must reproduce the worked example by hand.
func TestDoubleHashS1(t *testing.T) {
	h := NewHasher()
	got := h.DoubleHash(7, 123456, 987654, 1000)
	assert.EqualValues(t, 90, got)
}

func TestDoubleHashFormula(t *testing.T) {
	h := NewHasher()
	for _, tc := range []struct {
		i      uint64
		a, b   uint32
		size   uint32
		expect uint32
	}{
		{0, 5, 7, 100, 5},
		{1, 5, 7, 100, 12},
		{2, 5, 7, 100, 20},
		{3, 5, 7, 100, 30},
	} {
		got := h.DoubleHash(tc.i, tc.a, tc.b, tc.size)
		assert.Equal(t, tc.expect, got, "i=%d", tc.i)
	}
}

// With count equal to size, distinct index generation must return every
// index in [0, size) exactly once.
func TestDistinctIndexesS2(t *testing.T) {
	h := NewHasher()
	const key = "da5e21f8a67c4163f1a53ef43515bd027967da305ecfc741b2c3f40f832b7f82"

	idx, err := h.DistinctIndexes(key, 10000, 10000, DefaultSeed)
	require.NoError(t, err)

	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	for i, v := range idx {
		assert.EqualValues(t, i, v)
	}
}

func TestDistinctIndexesCountExceedsSize(t *testing.T) {
	h := NewHasher()
	_, err := h.DistinctIndexes("x", 10, 11, DefaultSeed)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDistinctIndexesDeterministic(t *testing.T) {
	h := NewHasher()
	a, err := h.DistinctIndexes("hello", 1000, 20, DefaultSeed)
	require.NoError(t, err)
	b, err := h.DistinctIndexes("hello", 1000, 20, DefaultSeed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// A Serialize override that maps every key to the same bytes must make
// different keys produce identical indexes.
func TestSerializeOverrideCollision(t *testing.T) {
	h := NewHasher()
	h.Serialize = func(interface{}) ([]byte, error) { return []byte{1}, nil }

	idxA, err := h.DistinctIndexes("anything", 1000, 5, DefaultSeed)
	require.NoError(t, err)
	idxB, err := h.DistinctIndexes("something else entirely", 1000, 5, DefaultSeed)
	require.NoError(t, err)
	assert.Equal(t, idxA, idxB)
}

func TestSerializeDefault(t *testing.T) {
	h := NewHasher()

	sb, err := h.Serialize("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), sb)

	ib, err := h.Serialize(42)
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), ib)

	_, err = h.Serialize(3.14)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func FuzzDoubleHashing(f *testing.F) {
	f.Add(uint64(7), uint32(123456), uint32(987654), uint32(1000))
	h := NewHasher()
	f.Fuzz(func(t *testing.T, i uint64, a, b, size uint32) {
		if size == 0 {
			return
		}
		cubic := (i*i*i - i) / 6
		want := uint32((uint64(a) + i*uint64(b) + cubic) % uint64(size))
		got := h.DoubleHash(i, a, b, size)
		if got != want {
			t.Fatalf("DoubleHash(%d,%d,%d,%d) = %d, want %d", i, a, b, size, got, want)
		}
	})
}
