package sift

import "math"

// PartitionedBloom is a Bloom filter with k disjoint bit-vector
// partitions, one bit set per hash function. Partitioning a single bit
// array into k independent sub-arrays removes the correlation between
// hash functions that a shared array introduces, at the cost of a
// slightly larger total bit count for the same false positive rate.
type PartitionedBloom struct {
	seed       uint64
	subvectors []*BitVector // k partitions, each of length size
	size       uint32       // length of each partition, ⌈m/k⌉-derived
	nbHashes   uint32       // k
	loadFactor float64      // set-bit fraction above which a ScalableBloom grows
	capacity   uint32       // max intended number of distinct items
	hasher     Hasher
}

// NewPartitionedBloom creates a partitioned Bloom filter for n
// expected items at false positive rate p. k is chosen as
// ⌈log2(1/p)⌉ and each partition's length as
// ⌈ n·|ln p| / (k·(ln 2)²) / ratio ⌉, so a smaller ratio gives longer
// partitions. ratio is also stored as the filter's load factor, the
// CurrentLoad threshold at which a ScalableBloom appends a new filter;
// it is not the set-bit fraction reached after n inserts, which is
// about 1 − e^(−ln2·ratio) (0.29 for ratio 0.5).
func NewPartitionedBloom(n int, p, ratio float64) (*PartitionedBloom, error) {
	if n <= 0 {
		return nil, invalidArgf("sift: n must be positive, got %d", n)
	}
	if p <= 0 || p >= 1 {
		return nil, invalidArgf("sift: p must be in (0,1), got %v", p)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, invalidArgf("sift: ratio must be in (0,1), got %v", ratio)
	}

	k := math.Ceil(math.Log2(1 / p))
	size := math.Ceil(float64(n) * math.Abs(math.Log(p)) / (k * math.Ln2 * math.Ln2) / ratio)

	f := &PartitionedBloom{
		seed:       DefaultSeed,
		size:       uint32(size),
		nbHashes:   uint32(k),
		loadFactor: ratio,
		capacity:   uint32(n),
		hasher:     NewHasher(),
	}
	f.subvectors = make([]*BitVector, f.nbHashes)
	for i := range f.subvectors {
		f.subvectors[i] = NewBitVector(uint64(f.size))
	}
	return f, nil
}

// Seed returns the filter's current seed.
func (f *PartitionedBloom) Seed() uint64 { return f.seed }

// SetSeed reseeds the filter. See BloomFilter.SetSeed for the
// no-rehash caveat.
func (f *PartitionedBloom) SetSeed(seed uint64) { f.seed = seed }

// Size returns the length, in bits, of each partition.
func (f *PartitionedBloom) Size() uint32 { return f.size }

// K returns the number of partitions (hash functions).
func (f *PartitionedBloom) K() uint32 { return f.nbHashes }

// Capacity returns the number of items the filter was sized for.
func (f *PartitionedBloom) Capacity() uint32 { return f.capacity }

// LoadFactor returns the mean set-bit fraction (see CurrentLoad) above
// which a ScalableBloom stops adding to this filter and grows.
func (f *PartitionedBloom) LoadFactor() float64 { return f.loadFactor }

// indexes computes the k per-partition indices for value: one
// double-hash value per partition, all drawn against the same
// partition length.
func (f *PartitionedBloom) indexes(value interface{}) ([]uint32, error) {
	a, b, err := f.hasher.HashIntAndString(value, f.seed)
	if err != nil {
		return nil, err
	}
	idx := make([]uint32, f.nbHashes)
	for i := range idx {
		idx[i] = f.hasher.DoubleHash(uint64(i), a, b, f.size)
	}
	return idx, nil
}

// Add inserts value, setting one bit in each partition.
func (f *PartitionedBloom) Add(value interface{}) error {
	idx, err := f.indexes(value)
	if err != nil {
		return err
	}
	for i, bit := range idx {
		f.subvectors[i].Set(uint64(bit))
	}
	return nil
}

// Has reports whether every partition has its bit for value set.
func (f *PartitionedBloom) Has(value interface{}) bool {
	idx, err := f.indexes(value)
	if err != nil {
		return false
	}
	for i, bit := range idx {
		if !f.subvectors[i].Get(uint64(bit)) {
			return false
		}
	}
	return true
}

// CurrentLoad returns the mean set-bit ratio across all partitions.
func (f *PartitionedBloom) CurrentLoad() float64 {
	var total float64
	for _, sv := range f.subvectors {
		total += float64(sv.PopCount()) / float64(f.size)
	}
	return total / float64(f.nbHashes)
}

// Equals reports whether f and other have the same m, k, seed,
// load factor, capacity and partition contents.
func (f *PartitionedBloom) Equals(other *PartitionedBloom) bool {
	if f.size != other.size || f.nbHashes != other.nbHashes ||
		f.seed != other.seed || f.loadFactor != other.loadFactor ||
		f.capacity != other.capacity {
		return false
	}
	for i := range f.subvectors {
		if !f.subvectors[i].Equal(other.subvectors[i]) {
			return false
		}
	}
	return true
}
