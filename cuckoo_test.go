package sift

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCuckooFilterCreateInvalid(t *testing.T) {
	_, err := NewCuckooFilter(0, 0.01)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewCuckooFilter(10, 1.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewCuckooFilterWithParams(10, 1e-12, 4, 500)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// Sizing must match the worked example by hand.
func TestCuckooFilterS5Sizing(t *testing.T) {
	f, err := NewCuckooFilterWithParams(1000, 0.01, 4, DefaultMaxKicks)
	require.NoError(t, err)

	assert.EqualValues(t, 10, f.FingerprintLength())
	assert.EqualValues(t, 512, f.Size())
}

func TestCuckooFilterNoFalseNegatives(t *testing.T) {
	f, err := NewCuckooFilter(2000, 0.01)
	require.NoError(t, err)

	n := 1500
	for i := 0; i < n; i++ {
		ok, err := f.Add(fmt.Sprintf("elem-%d", i), false, false)
		require.NoError(t, err)
		require.True(t, ok)
	}
	for i := 0; i < n; i++ {
		assert.True(t, f.Has(fmt.Sprintf("elem-%d", i)))
	}
	assert.EqualValues(t, n, f.Length())
}

func TestCuckooFilterAddHasRemove(t *testing.T) {
	f, err := NewCuckooFilter(100, 0.01)
	require.NoError(t, err)

	ok, err := f.Add("hello", false, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, f.Has("hello"))

	assert.True(t, f.Remove("hello"))
	assert.False(t, f.Has("hello"))
	assert.False(t, f.Remove("hello"))
}

// altIndex must be its own inverse for a fixed fingerprint.
func TestCuckooFilterPartialKeySymmetry(t *testing.T) {
	f, err := NewCuckooFilter(1000, 0.01)
	require.NoError(t, err)

	for _, key := range []string{"a", "b", "partial-key-symmetry", "another one"} {
		fp, first, second, err := f.locations(key)
		require.NoError(t, err)
		assert.Equal(t, second, f.altIndex(first, fp))
		// altIndex is its own inverse for a fixed fingerprint.
		assert.Equal(t, first, f.altIndex(second, fp))
	}
}

// A failed, non-destructive Add must leave bucket contents untouched.
func TestCuckooFilterEvictionRollback(t *testing.T) {
	f, err := NewCuckooFilterWithParams(4, 0.3, 2, 2)
	require.NoError(t, err)

	// Fill the filter to the point where further inserts are likely to
	// exhaust the (very small) eviction budget.
	inserted := 0
	for i := 0; i < 100; i++ {
		ok, _ := f.Add(fmt.Sprintf("fill-%d", i), false, false)
		if ok {
			inserted++
		}
	}

	before := snapshotBuckets(f)
	ok, err := f.Add("one-more-to-force-eviction-failure", false, false)
	require.NoError(t, err)
	if !ok {
		after := snapshotBuckets(f)
		assert.Equal(t, before, after, "filter state must be restored after a failed, non-destructive Add")
	}
}

func snapshotBuckets(f *CuckooFilter) [][]uint32 {
	out := make([][]uint32, len(f.buckets))
	for i, b := range f.buckets {
		out[i] = b.Fingerprints()
	}
	return out
}

func TestCuckooFilterThrowOnFull(t *testing.T) {
	f, err := NewCuckooFilterWithParams(2, 0.3, 1, 1)
	require.NoError(t, err)

	var gotFull bool
	for i := 0; i < 50 && !gotFull; i++ {
		_, err := f.Add(fmt.Sprintf("x-%d", i), true, false)
		if err != nil {
			assert.ErrorIs(t, err, ErrFilterFull)
			gotFull = true
		}
	}
	assert.True(t, gotFull, "expected a FilterFull error for a tiny, heavily loaded filter")
}

func TestCuckooFilterEqualsAndDeepEquals(t *testing.T) {
	a, err := NewCuckooFilter(100, 0.01)
	require.NoError(t, err)
	b, err := NewCuckooFilter(100, 0.01)
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
	assert.True(t, a.DeepEquals(b))

	ok, err := a.Add("x", false, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, a.Equals(b))
}
