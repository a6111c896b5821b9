package bitmap

import "fmt"

// bitmapImpl is a concrete implementation of the Bitmap interface.
type bitmapImpl struct {
	data    []byte // Backing storage: each byte stores 8 bits
	numBits uint64 // Total number of bits in the bitmap
}

var _ Bitmap = (*bitmapImpl)(nil)

// NewBitmap creates a new bitmap with the specified number of bits.
// All bits are initialized to 0.
func NewBitmap(numBits uint64) Bitmap {
	// ceil(numBits / 8) backing bytes
	numBytes := (numBits + 7) / 8
	return &bitmapImpl{
		data:    make([]byte, numBytes),
		numBits: numBits,
	}
}

// NewBitmapFromBytes reconstructs a bitmap from serialized data.
func NewBitmapFromBytes(numBits uint64, data []byte) Bitmap {
	return &bitmapImpl{
		data:    data,
		numBits: numBits,
	}
}

// Add sets the bit at position i to 1 (adds i to the set).
func (b *bitmapImpl) Add(i uint64) {
	if i >= b.numBits {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.numBits))
	}
	b.data[i/8] |= 1 << (i % 8)
}

// Remove sets the bit at position i to 0 (removes i from the set).
func (b *bitmapImpl) Remove(i uint64) {
	if i >= b.numBits {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.numBits))
	}
	b.data[i/8] &^= 1 << (i % 8)
}

// Contains returns true if bit at position i is set (i is in the set).
func (b *bitmapImpl) Contains(i uint64) bool {
	if i >= b.numBits {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, b.numBits))
	}
	return b.data[i/8]&(1<<(i%8)) != 0
}

// Len returns the number of bits in the bitmap.
func (b *bitmapImpl) Len() uint64 {
	return b.numBits
}

// Bytes returns the underlying byte array.
func (b *bitmapImpl) Bytes() []byte {
	return b.data
}
