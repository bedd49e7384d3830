package sift

import "math"

// BloomFilter is the classic Bloom filter: a single bit array of
// length m tested and set at k indices per key. False negatives are
// impossible; Has may return a false positive at the rate Rate
// reports.
type BloomFilter struct {
	seed     uint64
	size     uint32 // m
	nbHashes uint32 // k
	filter   *BitVector
	length   uint64 // number of Add calls, not distinct items
	hasher   Hasher
}

// NewBloomFilter creates a classic Bloom filter sized for nItems
// distinct keys at a target false positive rate of targetFPRate,
// using m = ceil(-n·ln(p) / (ln 2)²) bits and
// k = ceil((m/n)·ln 2) hash functions.
func NewBloomFilter(nItems int, targetFPRate float64) (*BloomFilter, error) {
	if nItems <= 0 {
		return nil, invalidArgf("sift: nItems must be positive, got %d", nItems)
	}
	if targetFPRate <= 0 || targetFPRate >= 1 {
		return nil, invalidArgf("sift: target false positive rate must be in (0,1), got %v", targetFPRate)
	}

	n := float64(nItems)
	m := math.Ceil(-n * math.Log(targetFPRate) / (math.Ln2 * math.Ln2))
	k := math.Ceil((m / n) * math.Ln2)

	f := &BloomFilter{
		seed:     DefaultSeed,
		size:     uint32(m),
		nbHashes: uint32(k),
		filter:   NewBitVector(uint64(m)),
		hasher:   NewHasher(),
	}
	return f, nil
}

// Seed returns the filter's current seed.
func (f *BloomFilter) Seed() uint64 { return f.seed }

// SetSeed reseeds the filter. Per the lifecycle contract in the data
// model, this does not rehash already-stored data: existing bits keep
// whatever meaning they had under the old seed, which makes further
// Has/Add calls unreliable for previously inserted keys. It is
// intended for use before the first insert.
func (f *BloomFilter) SetSeed(seed uint64) {
	f.seed = seed
}

// M returns the number of bits in the filter.
func (f *BloomFilter) M() uint32 { return f.size }

// K returns the number of hash functions (distinct indices per key).
func (f *BloomFilter) K() uint32 { return f.nbHashes }

// Length returns the number of Add calls made so far (not the number
// of distinct items).
func (f *BloomFilter) Length() uint64 { return f.length }

// Add inserts value into the filter by setting all k of its indices.
func (f *BloomFilter) Add(value interface{}) error {
	idx, err := f.hasher.DistinctIndexes(value, int(f.size), int(f.nbHashes), f.seed)
	if err != nil {
		return err
	}
	for _, i := range idx {
		f.filter.Set(uint64(i))
	}
	f.length++
	return nil
}

// Has reports whether value's k indices are all set. It never returns
// a false negative for a value that was Added and never returns an
// error for a well-formed filter, since m ≥ k always holds for a
// filter built by NewBloomFilter.
func (f *BloomFilter) Has(value interface{}) bool {
	idx, err := f.hasher.DistinctIndexes(value, int(f.size), int(f.nbHashes), f.seed)
	if err != nil {
		return false
	}
	for _, i := range idx {
		if !f.filter.Get(uint64(i)) {
			return false
		}
	}
	return true
}

// Rate returns the current theoretical false positive rate,
// (1 − e^(−k·length/m))^k.
func (f *BloomFilter) Rate() float64 {
	k := float64(f.nbHashes)
	exponent := -k * float64(f.length) / float64(f.size)
	return math.Pow(1-math.Exp(exponent), k)
}

// Equals reports whether f and other have the same m, k, seed, bit
// vector contents and length.
func (f *BloomFilter) Equals(other *BloomFilter) bool {
	return f.size == other.size &&
		f.nbHashes == other.nbHashes &&
		f.seed == other.seed &&
		f.length == other.length &&
		f.filter.Equal(other.filter)
}
