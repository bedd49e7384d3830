package sift

import "math"

// DefaultBucketSize and DefaultMaxKicks are the defaults used by
// NewCuckooFilter.
const (
	DefaultBucketSize = 4
	DefaultMaxKicks   = 500
)

// CuckooFilter is a cuckoo filter: an array of fixed-capacity buckets
// holding fingerprints, inserted with partial-key cuckoo hashing.
// Unlike the Bloom filter family, it supports Remove. False negatives
// are impossible for a key that was added and never removed, unless a
// destructive Add has since failed and dropped a stored fingerprint.
type CuckooFilter struct {
	buckets           []*Bucket
	size              uint32 // number of buckets, a power of two
	mask              uint32 // size - 1
	bucketSize        int
	fingerprintLength uint32 // bits
	fingerprintMask   uint32
	maxKicks          int
	length            uint64
	seed              uint64
	hasher            Hasher
	rng               *prng
}

// NewCuckooFilter creates a cuckoo filter for n expected items at
// false positive rate p, using the default bucket size (4) and
// maximum eviction chain length (500).
func NewCuckooFilter(n int, p float64) (*CuckooFilter, error) {
	return NewCuckooFilterWithParams(n, p, DefaultBucketSize, DefaultMaxKicks)
}

// NewCuckooFilterWithParams creates a cuckoo filter with explicit
// bucket size and maximum kicks.
//
//	fingerprintLength = ⌈log2(1/p) + log2(2·bucketSize)⌉ bits
//	capacity          = ⌈max(n,32)/bucketSize/0.955⌉, rounded up to a power of two
//
// Rounding capacity to a power of two lets every index reduction use a
// bitmask instead of a modulo, and is what makes the partial-key
// property (see altIndex) exact rather than approximate.
func NewCuckooFilterWithParams(n int, p float64, bucketSize, maxKicks int) (*CuckooFilter, error) {
	if n <= 0 {
		return nil, invalidArgf("sift: n must be positive, got %d", n)
	}
	if p <= 0 || p >= 1 {
		return nil, invalidArgf("sift: p must be in (0,1), got %v", p)
	}
	if bucketSize <= 0 {
		return nil, invalidArgf("sift: bucketSize must be positive, got %d", bucketSize)
	}
	if maxKicks <= 0 {
		return nil, invalidArgf("sift: maxKicks must be positive, got %d", maxKicks)
	}

	fpLen := math.Ceil(math.Log2(1/p) + math.Log2(2*float64(bucketSize)))
	if fpLen > 32 {
		return nil, invalidArgf("sift: fingerprint length %d exceeds the 32-bit hash window this filter draws fingerprints from", int(fpLen))
	}

	nf := float64(n)
	if nf < 32 {
		nf = 32
	}
	capacity := math.Ceil(nf / float64(bucketSize) / 0.955)
	size := nextPow2(uint32(capacity))

	f := &CuckooFilter{
		size:              size,
		mask:              size - 1,
		bucketSize:        bucketSize,
		fingerprintLength: uint32(fpLen),
		fingerprintMask:   uint32(1)<<uint32(fpLen) - 1,
		maxKicks:          maxKicks,
		seed:              DefaultSeed,
		hasher:            NewHasher(),
	}
	f.rng = newPRNG(f.seed)
	f.buckets = make([]*Bucket, size)
	for i := range f.buckets {
		f.buckets[i] = NewBucket(bucketSize)
	}
	return f, nil
}

func nextPow2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

// Seed returns the filter's current seed.
func (f *CuckooFilter) Seed() uint64 { return f.seed }

// SetSeed reseeds the filter and its PRNG. See BloomFilter.SetSeed for
// the no-rehash caveat.
func (f *CuckooFilter) SetSeed(seed uint64) {
	f.seed = seed
	f.rng.reseed(seed)
}

// Size returns the number of buckets.
func (f *CuckooFilter) Size() uint32 { return f.size }

// BucketSize returns the number of fingerprint slots per bucket.
func (f *CuckooFilter) BucketSize() int { return f.bucketSize }

// FingerprintLength returns the number of bits per fingerprint.
func (f *CuckooFilter) FingerprintLength() uint32 { return f.fingerprintLength }

// MaxKicks returns the maximum eviction chain length.
func (f *CuckooFilter) MaxKicks() int { return f.maxKicks }

// Length returns the number of items currently stored.
func (f *CuckooFilter) Length() uint64 { return f.length }

// fingerprintBytes returns the little-endian byte encoding of a
// fingerprint, the input hash64 uses to compute a bucket's alternate
// index (the partial-key property: the alternate index is a function
// of the fingerprint alone, not of the original key).
func fingerprintBytes(fp uint32) []byte {
	return []byte{byte(fp), byte(fp >> 8), byte(fp >> 16), byte(fp >> 24)}
}

// altIndex computes the bucket index on the other side of a
// fingerprint from index: (index xor (hash64(fingerprint) mod size))
// mod size. Because size is a power of two, this AND-masked form is
// exact (see invariant 4, partial-key symmetry) and its own inverse:
// altIndex(altIndex(i, fp), fp) == i.
func (f *CuckooFilter) altIndex(index, fp uint32) uint32 {
	h := hash64(fingerprintBytes(fp), f.seed)
	return (index ^ (uint32(h) & f.mask)) & f.mask
}

// locations computes the fingerprint and the two candidate bucket
// indices for value.
func (f *CuckooFilter) locations(value interface{}) (fp, first, second uint32, err error) {
	b, err := f.hasher.Serialize(value)
	if err != nil {
		return 0, 0, 0, err
	}
	h := hash64(b, f.seed)
	fp = uint32(h) & f.fingerprintMask
	first = uint32(h) & f.mask
	second = f.altIndex(first, fp)
	return fp, first, second, nil
}

type undoEntry struct {
	bucket uint32
	slot   int
	prev   uint32
}

// Add inserts value into the filter.
//
// If both candidate buckets are full, Add runs the cuckoo eviction
// loop for up to MaxKicks iterations, each time displacing a random
// fingerprint from the current bucket to make room, then trying to
// re-home the displaced fingerprint in its own alternate bucket.
//
// If eviction exhausts MaxKicks without success, the filter's
// fingerprint contents are rolled back to their pre-call state unless
// destructive is true (in which case the evicted fingerprint is simply
// dropped, leaving the filter's bucket contents mutated but internally
// consistent). If throwOnFull is true, a failed Add after a completed
// rollback returns ErrFilterFull; otherwise it returns false, nil.
func (f *CuckooFilter) Add(value interface{}, throwOnFull, destructive bool) (bool, error) {
	fp, i1, i2, err := f.locations(value)
	if err != nil {
		return false, err
	}

	if f.buckets[i1].Free() {
		f.buckets[i1].Add(fp)
		f.length++
		return true, nil
	}
	if f.buckets[i2].Free() {
		f.buckets[i2].Add(fp)
		f.length++
		return true, nil
	}

	index := i1
	if f.rng.intn(0, 1) == 1 {
		index = i2
	}
	cur := fp

	undo := make([]undoEntry, 0, f.maxKicks)
	for kicks := 0; kicks < f.maxKicks; kicks++ {
		bucket := f.buckets[index]
		slot := f.rng.intn(0, bucket.Len()-1)
		prev := bucket.At(slot)
		undo = append(undo, undoEntry{bucket: index, slot: slot, prev: prev})
		bucket.SwapAt(slot, cur)
		cur = prev

		index = f.altIndex(index, cur)
		if f.buckets[index].Free() {
			f.buckets[index].Add(cur)
			f.length++
			return true, nil
		}
	}

	if !destructive {
		for i := len(undo) - 1; i >= 0; i-- {
			e := undo[i]
			f.buckets[e.bucket].SwapAt(e.slot, e.prev)
		}
	}
	if throwOnFull {
		return false, ErrFilterFull
	}
	return false, nil
}

// Has reports whether value might be in the filter. It never fails:
// a value that cannot be serialized is reported absent.
func (f *CuckooFilter) Has(value interface{}) bool {
	fp, i1, i2, err := f.locations(value)
	if err != nil {
		return false
	}
	return f.buckets[i1].Has(fp) || f.buckets[i2].Has(fp)
}

// Remove deletes value from the filter if present, checking the first
// candidate bucket then the second. It never fails: a value that
// cannot be serialized, or was never added, is reported as not
// removed.
func (f *CuckooFilter) Remove(value interface{}) bool {
	fp, i1, i2, err := f.locations(value)
	if err != nil {
		return false
	}
	if f.buckets[i1].Remove(fp) {
		f.length--
		return true
	}
	if f.buckets[i2].Remove(fp) {
		f.length--
		return true
	}
	return false
}

// Rate returns the filter's theoretical false positive rate,
// 2^(log2(2·bucketSize) − load·c) where c = fingerprintLength/load and
// load = length/(size·bucketSize). Algebraically load·c always equals
// fingerprintLength, so this reduces to the standard cuckoo filter
// bound (2·bucketSize)/2^fingerprintLength independent of load; it is
// computed via the load/c route here to mirror the data model
// literally.
func (f *CuckooFilter) Rate() float64 {
	if f.length == 0 {
		return 0
	}
	load := float64(f.length) / (float64(f.size) * float64(f.bucketSize))
	c := float64(f.fingerprintLength) / load
	return math.Pow(2, math.Log2(2*float64(f.bucketSize))-load*c)
}

// Equals reports whether f and other hold the same fingerprints in
// each bucket, ignoring their order within a bucket (see Bucket.Equal).
// It intentionally ignores seed, length and sizing parameters: two
// filters built differently can still agree on every stored
// fingerprint. Use DeepEquals for a stricter comparison.
func (f *CuckooFilter) Equals(other *CuckooFilter) bool {
	if len(f.buckets) != len(other.buckets) {
		return false
	}
	for i := range f.buckets {
		if !f.buckets[i].Equal(other.buckets[i]) {
			return false
		}
	}
	return true
}

// DeepEquals reports whether f and other are equal under Equals and
// additionally agree on seed, length, bucket size, fingerprint length
// and maxKicks, for callers who need to know two filters will also
// agree on future inserts.
func (f *CuckooFilter) DeepEquals(other *CuckooFilter) bool {
	return f.Equals(other) &&
		f.seed == other.seed &&
		f.length == other.length &&
		f.size == other.size &&
		f.bucketSize == other.bucketSize &&
		f.fingerprintLength == other.fingerprintLength &&
		f.maxKicks == other.maxKicks
}
