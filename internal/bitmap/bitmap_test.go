package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmapAddContains(t *testing.T) {
	b := NewBitmap(64)

	require.False(t, b.Contains(0))
	require.False(t, b.Contains(63))

	b.Add(0)
	b.Add(7)
	b.Add(8)
	b.Add(63)

	require.True(t, b.Contains(0))
	require.True(t, b.Contains(7))
	require.True(t, b.Contains(8))
	require.True(t, b.Contains(63))
	require.False(t, b.Contains(1))
	require.False(t, b.Contains(62))
}

func TestBitmapRemove(t *testing.T) {
	b := NewBitmap(16)

	b.Add(5)
	require.True(t, b.Contains(5))

	b.Remove(5)
	require.False(t, b.Contains(5))

	// Removing an unset bit is a no-op.
	b.Remove(6)
	require.False(t, b.Contains(6))
}

func TestBitmapOutOfRangePanics(t *testing.T) {
	b := NewBitmap(8)
	require.Panics(t, func() { b.Add(8) })
	require.Panics(t, func() { b.Contains(100) })
	require.Panics(t, func() { b.Remove(8) })
}

func TestBitmapRoundTripBytes(t *testing.T) {
	b := NewBitmap(100)
	for _, i := range []uint64{0, 13, 31, 64, 99} {
		b.Add(i)
	}

	restored := NewBitmapFromBytes(b.Len(), b.Bytes())
	for i := uint64(0); i < 100; i++ {
		require.Equal(t, b.Contains(i), restored.Contains(i), "bit %d", i)
	}
}
