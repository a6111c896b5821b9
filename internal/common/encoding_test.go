package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadUint8(t *testing.T) {
	tests := []struct {
		name  string
		value uint8
	}{
		{"Zero", 0},
		{"One", 1},
		{"Max", 255},
		{"Mid", 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteUint8(&buf, tt.value)
			require.NoError(t, err)
			require.Equal(t, 1, n)

			result, err := ReadUint8(&buf)
			require.NoError(t, err)
			require.Equal(t, tt.value, result)
		})
	}
}

func TestWriteReadUint32(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
	}{
		{"Zero", 0},
		{"One", 1},
		{"Max", 0xFFFFFFFF},
		{"Mid", 0x80000000},
		{"Large", 1234567890},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteUint32(&buf, tt.value)
			require.NoError(t, err)
			require.Equal(t, 4, n)

			result, err := ReadUint32(&buf)
			require.NoError(t, err)
			require.Equal(t, tt.value, result)
		})
	}
}

func TestWriteReadUint64(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
	}{
		{"Zero", 0},
		{"One", 1},
		{"Max", 0xFFFFFFFFFFFFFFFF},
		{"Large", 1234567890123456789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteUint64(&buf, tt.value)
			require.NoError(t, err)
			require.Equal(t, 8, n)

			result, err := ReadUint64(&buf)
			require.NoError(t, err)
			require.Equal(t, tt.value, result)
		})
	}
}

func TestWriteReadBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"SingleByte", []byte{0x42}},
		{"SmallData", []byte("hello")},
		{"LargeData", bytes.Repeat([]byte("x"), 1000)},
		{"BinaryData", []byte{0x00, 0xFF, 0x7F, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteBytes(&buf, tt.data)
			require.NoError(t, err)
			require.Equal(t, len(tt.data), n)

			result, err := ReadBytes(&buf, uint64(len(tt.data)))
			require.NoError(t, err)
			require.True(t, bytes.Equal(tt.data, result))
		})
	}
}

func TestWriteReadLenPrefixedBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Ascii", []byte("props.count")},
		{"Binary", []byte{0x00, 0x01, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WriteLenPrefixedBytes(&buf, tt.data)
			require.NoError(t, err)
			require.Equal(t, 4+len(tt.data), n)

			result, err := ReadLenPrefixedBytes(&buf)
			require.NoError(t, err)
			require.True(t, bytes.Equal(tt.data, result))
		})
	}
}
