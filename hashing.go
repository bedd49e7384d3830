package sift

import (
	"fmt"
	"strconv"
)

// Hasher is the hashing service shared by every filter in this
// package. It is stateless except for Serialize, which filters carry
// around in their header so that tests (and adversarial experiments)
// can override it to force deterministic hash collisions by assigning
// a different function to the Serialize field.
type Hasher struct {
	// Serialize turns an arbitrary key into the bytes that are fed to
	// hash64. The default serializes strings as UTF-8 and integers as
	// decimal ASCII text, the common representation for keys across this package.
	Serialize func(value interface{}) ([]byte, error)
}

// NewHasher returns the default hashing service.
func NewHasher() Hasher {
	return Hasher{Serialize: defaultSerialize}
}

func defaultSerialize(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case int:
		return []byte(strconv.Itoa(v)), nil
	case int8:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case uint:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(v, 10)), nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return nil, invalidArgf("sift: cannot serialize value of type %T", value)
	}
}

// HashIntAndString returns the low and high 32 bits of a 64-bit,
// seeded hash of the serialized value: the hashA, hashB pair that
// DoubleHash and DistinctIndexes build their index sequence from.
func (h Hasher) HashIntAndString(value interface{}, seed uint64) (first, second uint32, err error) {
	b, err := h.Serialize(value)
	if err != nil {
		return 0, 0, err
	}
	hv := hash64(b, seed)
	return uint32(hv), uint32(hv >> 32), nil
}

// DoubleHash computes the i-th index of the enlarged double-hashing
// family used throughout this package:
//
//	index_i = (a + i·b + (i³ − i)/6) mod size
//
// All arithmetic is carried out unsigned in 64 bits and reduced modulo
// size only at the end, so the result is identical across platforms.
// The cubic correction term (the tetrahedral number (i³−i)/6, which is
// always an integer) enlarges the hash family beyond plain double
// hashing, which is what lets DistinctIndexes reliably produce
// large distinct sets without the two base hashes cycling early.
func (h Hasher) DoubleHash(i uint64, a, b uint32, size uint32) uint32 {
	if size == 0 {
		return 0
	}
	cubic := (i*i*i - i) / 6
	sum := uint64(a) + i*uint64(b) + cubic
	return uint32(sum % uint64(size))
}

// DistinctIndexes returns count pairwise-distinct integers in
// [0, size), derived deterministically from value, seed and the
// DoubleHash sequence. It advances i = 0, 1, 2, … until count distinct
// values have been emitted; on a tie (a later i reproducing a value
// already emitted) the smaller i wins because it was emitted first and
// later duplicates are simply skipped.
//
// DistinctIndexes fails with ErrInvalidArgument if count > size, since
// the pigeonhole principle makes termination impossible.
func (h Hasher) DistinctIndexes(value interface{}, size, count int, seed uint64) ([]uint32, error) {
	if count > size {
		return nil, invalidArgf("sift: cannot produce %d distinct indexes in a table of size %d", count, size)
	}
	if count == 0 {
		return []uint32{}, nil
	}

	a, b, err := h.HashIntAndString(value, seed)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint32]struct{}, count)
	out := make([]uint32, 0, count)
	for i := uint64(0); len(out) < count; i++ {
		idx := h.DoubleHash(i, a, b, uint32(size))
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out, nil
}
