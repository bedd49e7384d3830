package sift

import "github.com/zeebo/xxh3"

// hash64 computes a 64-bit, non-cryptographic, seeded hash of b. It is
// the hash primitive described in the data model: deterministic and
// endian-independent at this package's abstraction boundary (the
// result does not depend on host byte order, only on the bytes of b).
//
// cespare/xxhash/v2, used elsewhere in this family of filters, has no
// seeded entry point; xxh3.HashSeed does, which is what every filter
// in this package needs to make a seed change produce a different
// (but still deterministic) hash.
func hash64(b []byte, seed uint64) uint64 {
	return xxh3.HashSeed(b, seed)
}

// hash32 returns the low 32 bits of hash64(b, seed): reductions to
// indices happen on the low 32 bits of a 64-bit hash throughout this
// package.
func hash32(b []byte, seed uint64) uint32 {
	return uint32(hash64(b, seed))
}
