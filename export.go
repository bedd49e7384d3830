package sift

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// bigIntJSON is the on-disk representation of a seed: a decimal string
// tagged with a type marker, so that a host whose native integers
// can't hold a full uint64 (or whose JSON numbers lose precision past
// 2^53) can still round-trip it exactly.
type bigIntJSON struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func seedToJSON(seed uint64) bigIntJSON {
	return bigIntJSON{Type: "BigInt", Value: new(big.Int).SetUint64(seed).Text(10)}
}

func seedFromJSON(b bigIntJSON) (uint64, error) {
	n, ok := new(big.Int).SetString(b.Value, 10)
	if !ok {
		return 0, errors.Wrapf(ErrImportError, "malformed seed %q", b.Value)
	}
	if !n.IsUint64() {
		return 0, errors.Wrapf(ErrImportError, "seed %q does not fit in 64 bits", b.Value)
	}
	return n.Uint64(), nil
}

// bitVectorJSON is the on-disk representation of a BitVector: its bit
// length plus its packed bytes, base64-encoded.
type bitVectorJSON struct {
	Size    uint64 `json:"size"`
	Content string `json:"content"`
}

func bitVectorToJSON(v *BitVector) bitVectorJSON {
	return bitVectorJSON{
		Size:    v.Len(),
		Content: base64.StdEncoding.EncodeToString(v.Bytes()),
	}
}

func bitVectorFromJSON(j bitVectorJSON) (*BitVector, error) {
	b, err := base64.StdEncoding.DecodeString(j.Content)
	if err != nil {
		return nil, errors.Wrap(ErrImportError, err.Error())
	}
	return BitVectorFromBytes(j.Size, b), nil
}

// validate checks data against a JSON Schema before it is unmarshaled
// into a concrete Go struct, so that a malformed or version-
// incompatible export fails with a precise, inspectable ErrImportError
// instead of a generic json.Unmarshal type error.
func validate(schema string, data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return errors.Wrap(ErrImportError, err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return errors.Wrapf(ErrImportError, "%s", strings.Join(msgs, "; "))
	}
	return nil
}

const bitVectorSchema = `{
	"type": "object",
	"required": ["size", "content"],
	"properties": {
		"size": {"type": "integer", "minimum": 0},
		"content": {"type": "string"}
	}
}`

const bigIntSchema = `{
	"type": "object",
	"required": ["type", "value"],
	"properties": {
		"type": {"const": "BigInt"},
		"value": {"type": "string"}
	}
}`

const classicBloomSchema = `{
	"type": "object",
	"required": ["_seed", "_size", "_nbHashes", "_filter", "_length"],
	"properties": {
		"_seed": ` + bigIntSchema + `,
		"_size": {"type": "integer", "minimum": 1},
		"_nbHashes": {"type": "integer", "minimum": 1},
		"_filter": ` + bitVectorSchema + `,
		"_length": {"type": "integer", "minimum": 0}
	}
}`

// classicBloomJSON is the on-disk export shape for a classic Bloom filter.
type classicBloomJSON struct {
	Seed     bigIntJSON    `json:"_seed"`
	Size     uint32        `json:"_size"`
	NbHashes uint32        `json:"_nbHashes"`
	Filter   bitVectorJSON `json:"_filter"`
	Length   uint64        `json:"_length"`
}

// SaveAsJSON exports f as classicBloomJSON.
func (f *BloomFilter) SaveAsJSON() ([]byte, error) {
	return json.Marshal(classicBloomJSON{
		Seed:     seedToJSON(f.seed),
		Size:     f.size,
		NbHashes: f.nbHashes,
		Filter:   bitVectorToJSON(f.filter),
		Length:   f.length,
	})
}

// LoadBloomFilterJSON imports a filter exported by SaveAsJSON.
// LoadBloomFilterJSON(f.SaveAsJSON()).Equals(f) always holds.
func LoadBloomFilterJSON(data []byte) (*BloomFilter, error) {
	if err := validate(classicBloomSchema, data); err != nil {
		return nil, err
	}
	var j classicBloomJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, errors.Wrap(ErrImportError, err.Error())
	}
	seed, err := seedFromJSON(j.Seed)
	if err != nil {
		return nil, err
	}
	filter, err := bitVectorFromJSON(j.Filter)
	if err != nil {
		return nil, err
	}
	return &BloomFilter{
		seed:     seed,
		size:     j.Size,
		nbHashes: j.NbHashes,
		filter:   filter,
		length:   j.Length,
		hasher:   NewHasher(),
	}, nil
}

const partitionedBloomSchema = `{
	"type": "object",
	"required": ["_seed", "_size", "_nbHashes", "_loadFactor", "_filter", "_capacity"],
	"properties": {
		"_seed": ` + bigIntSchema + `,
		"_size": {"type": "integer", "minimum": 1},
		"_nbHashes": {"type": "integer", "minimum": 1},
		"_loadFactor": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
		"_filter": {"type": "array", "items": ` + bitVectorSchema + `},
		"_capacity": {"type": "integer", "minimum": 1}
	}
}`

// partitionedBloomJSON is the on-disk export shape for a partitioned Bloom filter.
type partitionedBloomJSON struct {
	Seed       bigIntJSON      `json:"_seed"`
	Size       uint32          `json:"_size"`
	NbHashes   uint32          `json:"_nbHashes"`
	LoadFactor float64         `json:"_loadFactor"`
	Filter     []bitVectorJSON `json:"_filter"`
	Capacity   uint32          `json:"_capacity"`
}

// SaveAsJSON exports f as partitionedBloomJSON.
func (f *PartitionedBloom) SaveAsJSON() ([]byte, error) {
	sub := make([]bitVectorJSON, len(f.subvectors))
	for i, v := range f.subvectors {
		sub[i] = bitVectorToJSON(v)
	}
	return json.Marshal(partitionedBloomJSON{
		Seed:       seedToJSON(f.seed),
		Size:       f.size,
		NbHashes:   f.nbHashes,
		LoadFactor: f.loadFactor,
		Filter:     sub,
		Capacity:   f.capacity,
	})
}

func partitionedBloomFromJSON(j partitionedBloomJSON) (*PartitionedBloom, error) {
	seed, err := seedFromJSON(j.Seed)
	if err != nil {
		return nil, err
	}
	subs := make([]*BitVector, len(j.Filter))
	for i, bv := range j.Filter {
		v, err := bitVectorFromJSON(bv)
		if err != nil {
			return nil, err
		}
		subs[i] = v
	}
	return &PartitionedBloom{
		seed:       seed,
		subvectors: subs,
		size:       j.Size,
		nbHashes:   j.NbHashes,
		loadFactor: j.LoadFactor,
		capacity:   j.Capacity,
		hasher:     NewHasher(),
	}, nil
}

// LoadPartitionedBloomJSON imports a filter exported by SaveAsJSON.
func LoadPartitionedBloomJSON(data []byte) (*PartitionedBloom, error) {
	if err := validate(partitionedBloomSchema, data); err != nil {
		return nil, err
	}
	var j partitionedBloomJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, errors.Wrap(ErrImportError, err.Error())
	}
	return partitionedBloomFromJSON(j)
}

const scalableBloomSchema = `{
	"type": "object",
	"required": ["_seed", "_initial_size", "_error_rate", "_ratio", "_filters"],
	"properties": {
		"_seed": ` + bigIntSchema + `,
		"_initial_size": {"type": "integer", "minimum": 1},
		"_error_rate": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
		"_ratio": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
		"_filters": {"type": "array", "items": ` + partitionedBloomSchema + `}
	}
}`

// scalableBloomJSON is the on-disk export shape for a scalable Bloom filter.
type scalableBloomJSON struct {
	Seed        bigIntJSON             `json:"_seed"`
	InitialSize int                    `json:"_initial_size"`
	ErrorRate   float64                `json:"_error_rate"`
	Ratio       float64                `json:"_ratio"`
	Filters     []partitionedBloomJSON `json:"_filters"`
}

// SaveAsJSON exports f as scalableBloomJSON.
func (f *ScalableBloom) SaveAsJSON() ([]byte, error) {
	filters := make([]partitionedBloomJSON, len(f.filters))
	for i, inner := range f.filters {
		sub := make([]bitVectorJSON, len(inner.subvectors))
		for j, v := range inner.subvectors {
			sub[j] = bitVectorToJSON(v)
		}
		filters[i] = partitionedBloomJSON{
			Seed:       seedToJSON(inner.seed),
			Size:       inner.size,
			NbHashes:   inner.nbHashes,
			LoadFactor: inner.loadFactor,
			Filter:     sub,
			Capacity:   inner.capacity,
		}
	}
	return json.Marshal(scalableBloomJSON{
		Seed:        seedToJSON(f.seed),
		InitialSize: f.initialSize,
		ErrorRate:   f.errorRate,
		Ratio:       f.ratio,
		Filters:     filters,
	})
}

// LoadScalableBloomJSON imports a filter exported by SaveAsJSON.
func LoadScalableBloomJSON(data []byte) (*ScalableBloom, error) {
	if err := validate(scalableBloomSchema, data); err != nil {
		return nil, err
	}
	var j scalableBloomJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, errors.Wrap(ErrImportError, err.Error())
	}
	seed, err := seedFromJSON(j.Seed)
	if err != nil {
		return nil, err
	}
	filters := make([]*PartitionedBloom, len(j.Filters))
	for i, pj := range j.Filters {
		inner, err := partitionedBloomFromJSON(pj)
		if err != nil {
			return nil, err
		}
		filters[i] = inner
	}
	return &ScalableBloom{
		seed:        seed,
		filters:     filters,
		initialSize: j.InitialSize,
		errorRate:   j.ErrorRate,
		ratio:       j.Ratio,
		hasher:      NewHasher(),
	}, nil
}

const cuckooBucketSchema = `{
	"type": "object",
	"required": ["_size", "_elements"],
	"properties": {
		"_size": {"type": "integer", "minimum": 0},
		"_elements": {"type": "array", "items": {"type": "string"}}
	}
}`

const cuckooSchema = `{
	"type": "object",
	"required": ["_size", "_fingerprintLength", "_length", "_maxKicks", "_bucketSize", "_seed", "_filter"],
	"properties": {
		"_size": {"type": "integer", "minimum": 1},
		"_fingerprintLength": {"type": "integer", "minimum": 1},
		"_length": {"type": "integer", "minimum": 0},
		"_maxKicks": {"type": "integer", "minimum": 1},
		"_bucketSize": {"type": "integer", "minimum": 1},
		"_seed": ` + bigIntSchema + `,
		"_filter": {"type": "array", "items": ` + cuckooBucketSchema + `}
	}
}`

type cuckooBucketJSON struct {
	Size     int      `json:"_size"`
	Elements []string `json:"_elements"`
}

// cuckooJSON is the on-disk export shape for a cuckoo filter. Fingerprints are
// exported as fixed-width binary strings ("fingerprint-string") rather
// than as integers, so that the export format does not depend
// on this implementation's internal uint32 representation.
type cuckooJSON struct {
	Size              uint32             `json:"_size"`
	FingerprintLength uint32             `json:"_fingerprintLength"`
	Length            uint64             `json:"_length"`
	MaxKicks          int                `json:"_maxKicks"`
	BucketSize        int                `json:"_bucketSize"`
	Seed              bigIntJSON         `json:"_seed"`
	Filter            []cuckooBucketJSON `json:"_filter"`
}

func fingerprintToString(fp uint32, bits uint32) string {
	s := make([]byte, bits)
	for i := uint32(0); i < bits; i++ {
		if fp&(1<<i) != 0 {
			s[bits-1-i] = '1'
		} else {
			s[bits-1-i] = '0'
		}
	}
	return string(s)
}

func fingerprintFromString(s string) (uint32, error) {
	var fp uint32
	for _, c := range s {
		fp <<= 1
		switch c {
		case '0':
		case '1':
			fp |= 1
		default:
			return 0, errors.Wrapf(ErrImportError, "malformed fingerprint string %q", s)
		}
	}
	return fp, nil
}

// SaveAsJSON exports f as cuckooJSON.
func (f *CuckooFilter) SaveAsJSON() ([]byte, error) {
	buckets := make([]cuckooBucketJSON, len(f.buckets))
	for i, b := range f.buckets {
		elems := make([]string, b.Len())
		for j := 0; j < b.Len(); j++ {
			elems[j] = fingerprintToString(b.At(j), f.fingerprintLength)
		}
		buckets[i] = cuckooBucketJSON{Size: f.bucketSize, Elements: elems}
	}
	return json.Marshal(cuckooJSON{
		Size:              f.size,
		FingerprintLength: f.fingerprintLength,
		Length:            f.length,
		MaxKicks:          f.maxKicks,
		BucketSize:        f.bucketSize,
		Seed:              seedToJSON(f.seed),
		Filter:            buckets,
	})
}

// LoadCuckooFilterJSON imports a filter exported by SaveAsJSON.
func LoadCuckooFilterJSON(data []byte) (*CuckooFilter, error) {
	if err := validate(cuckooSchema, data); err != nil {
		return nil, err
	}
	var j cuckooJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, errors.Wrap(ErrImportError, err.Error())
	}
	seed, err := seedFromJSON(j.Seed)
	if err != nil {
		return nil, err
	}

	buckets := make([]*Bucket, len(j.Filter))
	for i, bj := range j.Filter {
		b := NewBucket(bj.Size)
		for _, e := range bj.Elements {
			fp, err := fingerprintFromString(e)
			if err != nil {
				return nil, err
			}
			b.Add(fp)
		}
		buckets[i] = b
	}

	return &CuckooFilter{
		buckets:           buckets,
		size:              j.Size,
		mask:              j.Size - 1,
		bucketSize:        j.BucketSize,
		fingerprintLength: j.FingerprintLength,
		fingerprintMask:   uint32(1)<<j.FingerprintLength - 1,
		maxKicks:          j.MaxKicks,
		length:            j.Length,
		seed:              seed,
		hasher:            NewHasher(),
		rng:               newPRNG(seed),
	}, nil
}
