package sift

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
)

// BitVector is a fixed-size array of bits, addressed 0..Len()-1. Its
// length is immutable after construction. It wraps
// github.com/bits-and-blooms/bitset, adding only the little-endian
// byte packing (Bytes/BitVectorFromBytes) the JSON export layer needs;
// bitset's own word layout is an implementation detail this type does
// not expose.
type BitVector struct {
	bits *bitset.BitSet
	size uint64
}

// NewBitVector allocates a BitVector of the given number of bits, all
// initially clear.
func NewBitVector(size uint64) *BitVector {
	return &BitVector{bits: bitset.New(uint(size)), size: size}
}

// Len returns the number of bits in v.
func (v *BitVector) Len() uint64 {
	return v.size
}

// Get reports whether bit i is set.
func (v *BitVector) Get(i uint64) bool {
	return v.bits.Test(uint(i))
}

// Set sets bit i.
func (v *BitVector) Set(i uint64) {
	v.bits.Set(uint(i))
}

// Clear unsets bit i.
func (v *BitVector) Clear(i uint64) {
	v.bits.Clear(uint(i))
}

// PopCount returns the number of set bits.
func (v *BitVector) PopCount() uint64 {
	return uint64(v.bits.Count())
}

// Equal reports whether v and other have the same length and the same
// bits set.
func (v *BitVector) Equal(other *BitVector) bool {
	return v.size == other.size && v.bits.Equal(other.bits)
}

// Clone returns an independent copy of v.
func (v *BitVector) Clone() *BitVector {
	return &BitVector{bits: v.bits.Clone(), size: v.size}
}

// Bytes returns the packed little-endian byte representation of v,
// used by the export layer.
func (v *BitVector) Bytes() []byte {
	words := v.bits.Bytes()
	out := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}

// BitVectorFromBytes rebuilds a BitVector of the given bit length from
// its packed little-endian byte representation, as produced by Bytes.
func BitVectorFromBytes(size uint64, b []byte) *BitVector {
	nWords := (size + 63) / 64
	words := make([]uint64, nWords)
	for i := range words {
		lo := i * 8
		if lo >= len(b) {
			break
		}
		var buf [8]byte
		copy(buf[:], b[lo:])
		words[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return &BitVector{bits: bitset.FromWithLength(uint(size), words), size: size}
}
