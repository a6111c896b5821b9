package filter

import (
	"hash/fnv"
	"io"
	"math"

	"citrine/internal/bitmap"
	"citrine/internal/common"
)

// bloomFilter implements a space-efficient probabilistic data structure
// for set membership testing with no false negatives.
type bloomFilter struct {
	bitmap bitmap.Bitmap
	k      uint32 // number of hash functions
	m      uint64 // number of bits in bitmap
}

var _ Filter = (*bloomFilter)(nil)

// OptimalBloomFilterParams computes optimal bloom filter parameters.
// n: expected number of elements to insert
// p: desired false positive rate (e.g., 0.01 for 1%)
// Returns: k (number of hash functions), m (number of bits)
func OptimalBloomFilterParams(n uint64, p float64) (k uint32, m uint64) {
	if n == 0 {
		n = 1
	}

	// m = -n * ln(p) / (ln(2)^2)
	m = uint64(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
	if m < 8 {
		m = 8
	}

	// k = (m/n) * ln(2)
	k = uint32(math.Ceil(float64(m) / float64(n) * math.Ln2))
	if k < 1 {
		k = 1
	}

	return k, m
}

// NewBloomFilter creates a new bloom filter.
// k: number of hash functions
// m: number of bits in the bitmap
func NewBloomFilter(k uint32, m uint64) Filter {
	return &bloomFilter{
		bitmap: bitmap.NewBitmap(m),
		k:      k,
		m:      m,
	}
}

// Add inserts a key into the bloom filter.
func (bf *bloomFilter) Add(key []byte) {
	h1, h2 := bf.hash(key)
	for i := uint64(0); i < uint64(bf.k); i++ {
		bf.bitmap.Add((h1 + i*h2) % bf.m)
	}
}

// MayContain returns true if the key might be in the set.
// Returns false if the key is definitely NOT in the set.
func (bf *bloomFilter) MayContain(key []byte) bool {
	h1, h2 := bf.hash(key)
	for i := uint64(0); i < uint64(bf.k); i++ {
		if !bf.bitmap.Contains((h1 + i*h2) % bf.m) {
			return false
		}
	}
	return true
}

// hash computes two hash values using FNV-1a for double hashing.
func (bf *bloomFilter) hash(key []byte) (uint64, uint64) {
	h1 := fnv.New64a()
	h1.Write(key)
	hash1 := h1.Sum64()

	h2 := fnv.New64a()
	h2.Write(key)
	h2.Write([]byte{0x01}) // differentiate the second hash
	hash2 := h2.Sum64()

	// Ensure hash2 is non-zero so the probe sequence advances.
	if hash2 == 0 {
		hash2 = 1
	}

	return hash1, hash2
}

// WriteBloomFilter serializes a bloom filter to a writer.
// Format: [k: uint32][m: uint64][bitmap data: []byte]
// Returns the number of bytes written.
func WriteBloomFilter(w io.Writer, f Filter) (int, error) {
	bf := f.(*bloomFilter)
	total := 0

	n, err := common.WriteUint32(w, bf.k)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteUint64(w, bf.m)
	total += n
	if err != nil {
		return total, err
	}

	n, err = common.WriteBytes(w, bf.bitmap.Bytes())
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

// ReadBloomFilter deserializes a bloom filter from a reader.
func ReadBloomFilter(r io.Reader) (Filter, error) {
	k, err := common.ReadUint32(r)
	if err != nil {
		return nil, err
	}

	m, err := common.ReadUint64(r)
	if err != nil {
		return nil, err
	}

	data, err := common.ReadBytes(r, (m+7)/8)
	if err != nil {
		return nil, err
	}

	return &bloomFilter{
		bitmap: bitmap.NewBitmapFromBytes(m, data),
		k:      k,
		m:      m,
	}, nil
}
