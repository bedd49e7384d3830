package sift

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloomFilterRoundTrip(t *testing.T) {
	f, err := NewBloomFilter(200, 0.02)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		require.NoError(t, f.Add(fmt.Sprintf("k%d", i)))
	}

	data, err := f.SaveAsJSON()
	require.NoError(t, err)

	g, err := LoadBloomFilterJSON(data)
	require.NoError(t, err)
	assert.True(t, f.Equals(g))
}

func TestBloomFilterImportMalformed(t *testing.T) {
	_, err := LoadBloomFilterJSON([]byte(`{"_seed": {"type": "BigInt", "value": "1"}}`))
	assert.ErrorIs(t, err, ErrImportError)

	_, err = LoadBloomFilterJSON([]byte(`not json`))
	assert.ErrorIs(t, err, ErrImportError)
}

func TestPartitionedBloomRoundTrip(t *testing.T) {
	f, err := NewPartitionedBloom(300, 0.01, 0.5)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, f.Add(fmt.Sprintf("p%d", i)))
	}

	data, err := f.SaveAsJSON()
	require.NoError(t, err)

	g, err := LoadPartitionedBloomJSON(data)
	require.NoError(t, err)
	assert.True(t, f.Equals(g))
}

func TestScalableBloomRoundTrip(t *testing.T) {
	f, err := NewScalableBloom(10, 0.01, 0.8)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		require.NoError(t, f.Add(fmt.Sprintf("s%d", i)))
	}

	data, err := f.SaveAsJSON()
	require.NoError(t, err)

	g, err := LoadScalableBloomJSON(data)
	require.NoError(t, err)
	assert.True(t, f.Equals(g))
}

func TestCuckooFilterRoundTrip(t *testing.T) {
	f, err := NewCuckooFilter(500, 0.01)
	require.NoError(t, err)
	for i := 0; i < 300; i++ {
		ok, err := f.Add(fmt.Sprintf("c%d", i), false, false)
		require.NoError(t, err)
		require.True(t, ok)
	}

	data, err := f.SaveAsJSON()
	require.NoError(t, err)

	g, err := LoadCuckooFilterJSON(data)
	require.NoError(t, err)
	assert.True(t, f.DeepEquals(g))

	for i := 0; i < 300; i++ {
		assert.True(t, g.Has(fmt.Sprintf("c%d", i)))
	}
}

func TestCuckooFilterImportMalformed(t *testing.T) {
	_, err := LoadCuckooFilterJSON([]byte(`{"_size": 4}`))
	assert.ErrorIs(t, err, ErrImportError)
}

func FuzzRoundTrip(f *testing.F) {
	f.Add(uint64(11), uint64(22), uint64(33))
	f.Fuzz(func(t *testing.T, s1, s2, s3 uint64) {
		bf, err := NewBloomFilter(100, 0.05)
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range []uint64{s1, s2, s3} {
			if err := bf.Add(s); err != nil {
				t.Fatal(err)
			}
		}

		data, err := bf.SaveAsJSON()
		if err != nil {
			t.Fatal(err)
		}
		g, err := LoadBloomFilterJSON(data)
		if err != nil {
			t.Fatal(err)
		}
		if !bf.Equals(g) {
			t.Fatalf("round trip changed filter state for seeds %d,%d,%d", s1, s2, s3)
		}
	})
}
