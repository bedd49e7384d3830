package sift

import "math"

// scalableGrowth is the fixed growth base s used to size each
// successive inner filter of a ScalableBloom.
const scalableGrowth = 2

// ScalableBloom is a Bloom filter that grows: it holds an ordered list
// of PartitionedBloom filters, starts with one, and appends another
// whenever the last one's load factor is exceeded. Each new filter is
// larger than the last (by a factor of scalableGrowth) and has a
// tighter target false positive rate (shrunk by ratio), so that the
// cumulative false positive probability across all filters converges.
type ScalableBloom struct {
	seed        uint64
	filters     []*PartitionedBloom
	initialSize int
	errorRate   float64
	ratio       float64
	hasher      Hasher
}

// NewScalableBloom creates a scalable Bloom filter whose first inner
// filter targets initialSize items at errorRate false positives, with
// each subsequent inner filter's error rate shrunk by ratio.
func NewScalableBloom(initialSize int, errorRate, ratio float64) (*ScalableBloom, error) {
	if initialSize <= 0 {
		return nil, invalidArgf("sift: initialSize must be positive, got %d", initialSize)
	}
	if errorRate <= 0 || errorRate >= 1 {
		return nil, invalidArgf("sift: errorRate must be in (0,1), got %v", errorRate)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, invalidArgf("sift: ratio must be in (0,1), got %v", ratio)
	}

	f := &ScalableBloom{
		seed:        DefaultSeed,
		initialSize: initialSize,
		errorRate:   errorRate,
		ratio:       ratio,
		hasher:      NewHasher(),
	}
	first, err := f.newInner(0)
	if err != nil {
		return nil, err
	}
	f.filters = []*PartitionedBloom{first}
	return f, nil
}

// newInner builds the j-th (0-indexed) inner filter:
// size_j = ⌈initialSize · scalableGrowth^(j+1) · ln 2⌉,
// error_j = errorRate · ratio^j.
func (f *ScalableBloom) newInner(j int) (*PartitionedBloom, error) {
	size := math.Ceil(float64(f.initialSize) * math.Pow(scalableGrowth, float64(j+1)) * math.Ln2)
	errRate := f.errorRate * math.Pow(f.ratio, float64(j))

	inner, err := NewPartitionedBloom(int(size), errRate, f.ratio)
	if err != nil {
		return nil, err
	}
	inner.seed = f.seed
	return inner, nil
}

// Seed returns the filter's current seed.
func (f *ScalableBloom) Seed() uint64 { return f.seed }

// SetSeed reseeds f and propagates the new seed to every inner filter.
// See BloomFilter.SetSeed for the no-rehash caveat.
func (f *ScalableBloom) SetSeed(seed uint64) {
	f.seed = seed
	for _, inner := range f.filters {
		inner.SetSeed(seed)
	}
}

// Add inserts value, growing the filter first if the last inner
// filter's load factor has been exceeded.
func (f *ScalableBloom) Add(value interface{}) error {
	last := f.filters[len(f.filters)-1]
	if last.CurrentLoad() > last.LoadFactor() {
		next, err := f.newInner(len(f.filters))
		if err != nil {
			return err
		}
		f.filters = append(f.filters, next)
		last = next
	}
	return last.Add(value)
}

// Has reports whether any inner filter reports value as present.
func (f *ScalableBloom) Has(value interface{}) bool {
	for _, inner := range f.filters {
		if inner.Has(value) {
			return true
		}
	}
	return false
}

// Capacity returns the sum of the inner filters' capacities.
func (f *ScalableBloom) Capacity() uint32 {
	var total uint32
	for _, inner := range f.filters {
		total += inner.Capacity()
	}
	return total
}

// Rate returns the false positive rate of the last (newest) inner
// filter.
func (f *ScalableBloom) Rate() float64 {
	last := f.filters[len(f.filters)-1]
	return math.Pow(last.CurrentLoad(), float64(last.K()))
}

// NumFilters returns the number of inner partitioned filters, which is
// non-decreasing across calls to Add.
func (f *ScalableBloom) NumFilters() int {
	return len(f.filters)
}

// Equals reports whether f and other share the same seed, ratio,
// total capacity, and pairwise-equal inner filters in order.
func (f *ScalableBloom) Equals(other *ScalableBloom) bool {
	if f.seed != other.seed || f.ratio != other.ratio || f.Capacity() != other.Capacity() {
		return false
	}
	if len(f.filters) != len(other.filters) {
		return false
	}
	for i := range f.filters {
		if !f.filters[i].Equals(other.filters[i]) {
			return false
		}
	}
	return true
}
