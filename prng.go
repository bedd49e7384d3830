package sift

import "golang.org/x/exp/rand"

// prng is the seeded, deterministic uniform stream used by the cuckoo
// filter's eviction loop to pick a bucket and a slot to kick. It wraps
// golang.org/x/exp/rand rather than the standard library's math/rand:
// x/exp/rand documents its generator as stable across Go releases,
// which is what the data model requires ("identical regardless of
// host"); math/rand makes no such promise for its default algorithm.
type prng struct {
	r *rand.Rand
}

// newPRNG builds a PRNG whose entire output stream is a deterministic
// function of seed.
func newPRNG(seed uint64) *prng {
	return &prng{r: rand.New(rand.NewSource(seed))}
}

// reseed replaces the stream, as happens when a filter's seed is
// changed after construction (see the lifecycle note in the data
// model: this does not rehash already-stored data).
func (p *prng) reseed(seed uint64) {
	p.r = rand.New(rand.NewSource(seed))
}

// float64 returns a uniform value in [0,1).
func (p *prng) float64() float64 {
	return p.r.Float64()
}

// intn returns a uniform integer in [lo, hi].
func (p *prng) intn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(p.r.Float64()*float64(hi-lo+1))
}
