package varint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeVarIntRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 127, 128, 300, 2097151, 1 << 28} {
		enc := EncodeVarInt(v)
		got, length, err := DecodeVarInt(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), length)
	}
}

func TestDecodeVarIntTruncatedErrors(t *testing.T) {
	_, _, err := DecodeVarInt([]byte{0x80})
	assert.Error(t, err)
}

func TestEncodeDecodeVarIntArrayRoundTrip(t *testing.T) {
	values := []int{0, 1, 2, 300, 70000}
	enc := EncodeVarIntArray(values)
	got, err := DecodeVarIntArray(enc, len(values))
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestReadWriteVarIntRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, 123456))
	got, err := ReadVarInt(&buf)
	require.NoError(t, err)
	assert.Equal(t, 123456, got)
}

func TestReadWriteVarLongRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	const magic int64 = 0x56584C44524D
	require.NoError(t, WriteVarLong(&buf, magic))
	got, err := ReadVarLong(&buf)
	require.NoError(t, err)
	assert.Equal(t, magic, got)
}

func TestReadWriteVarLongNegative(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarLong(&buf, -1))
	got, err := ReadVarLong(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)
}

func TestReadWriteStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "minecraft:oak_stairs[facing=north]"))
	got, err := ReadString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "minecraft:oak_stairs[facing=north]", got)
}

func TestBitsPerEntry(t *testing.T) {
	cases := map[int]int{
		1:   1,
		2:   2,
		3:   2,
		4:   2,
		5:   3,
		16:  4,
		17:  5,
		256: 8,
	}
	for paletteSize, want := range cases {
		assert.Equal(t, want, BitsPerEntry(paletteSize), "paletteSize %d", paletteSize)
	}
}

func TestPackUnpackLongArrayRoundTrip(t *testing.T) {
	values := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	bits := BitsPerEntry(16)
	longs := PackLongArray(values, bits)
	got := UnpackLongArray(longs, bits, len(values))
	assert.Equal(t, values, got)
}

func TestPackUnpackLongArrayTightRoundTrip(t *testing.T) {
	values := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	bits := BitsPerEntry(21)
	longs := PackLongArrayTight(values, bits)
	got := UnpackLongArrayTight(longs, bits, len(values))
	assert.Equal(t, values, got)
}

func TestPackLongArrayDoesNotCrossWordBoundary(t *testing.T) {
	// With 5 bits per entry, 12 entries fit per 64-bit word (60 bits used,
	// 4 padding bits); a 13th entry must start a fresh word rather than
	// spilling across the boundary.
	values := make([]int, 13)
	for i := range values {
		values[i] = i % 32
	}
	longs := PackLongArray(values, 5)
	assert.Len(t, longs, 2)
}

func TestPackLongArrayTightCanCrossWordBoundary(t *testing.T) {
	// With 5 bits per entry, 13 entries only need 65 bits - strictly less
	// than the 2 full words (128 bits) the non-tight packing would reserve
	// once it pads out to a 24-entry-per-2-words boundary.
	values := make([]int, 13)
	for i := range values {
		values[i] = i % 32
	}
	longs := PackLongArrayTight(values, 5)
	assert.Len(t, longs, 2)
	got := UnpackLongArrayTight(longs, 5, len(values))
	assert.Equal(t, values, got)
}
