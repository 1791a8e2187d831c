package varint

import "math"

// BitsPerEntry returns the minimum bit width needed to address
// paletteSize distinct indices, floored at 2 bits for any palette of two
// or more entries; a palette of at most one entry gets 1 bit.
func BitsPerEntry(paletteSize int) int {
	if paletteSize <= 1 {
		return 1
	}
	return max(int(math.Ceil(math.Log2(float64(paletteSize)))), 2)
}

// PackLongArray packs values into 64-bit words using the standard
// Minecraft convention: an entry never crosses a word boundary, so the
// last entries of a word are padded rather than split.
func PackLongArray(values []int, bitsPerEntry int) []int64 {
	if bitsPerEntry == 0 {
		return nil
	}
	perLong := 64 / bitsPerEntry
	longs := make([]int64, (len(values)+perLong-1)/perLong)
	for i, v := range values {
		longs[i/perLong] |= int64(v) << ((i % perLong) * bitsPerEntry)
	}
	return longs
}

// UnpackLongArray reverses PackLongArray.
func UnpackLongArray(longs []int64, bitsPerEntry, count int) []int {
	if bitsPerEntry == 0 || len(longs) == 0 {
		return make([]int, count)
	}
	perLong := 64 / bitsPerEntry
	mask := (1 << bitsPerEntry) - 1
	values := make([]int, count)
	for i := range count {
		longIdx := i / perLong
		if longIdx >= len(longs) {
			break
		}
		bitIdx := (i % perLong) * bitsPerEntry
		values[i] = int((longs[longIdx] >> bitIdx) & int64(mask))
	}
	return values
}

// PackLongArrayTight packs values using the Litematica convention: an
// entry that doesn't fit in the remaining bits of the current word
// spills its high bits into the next word instead of padding.
func PackLongArrayTight(values []int, bitsPerEntry int) []int64 {
	if bitsPerEntry == 0 {
		return nil
	}
	totalBits := len(values) * bitsPerEntry
	longs := make([]int64, (totalBits+63)/64)

	bitPos := 0
	for _, v := range values {
		longIdx := bitPos / 64
		bitOffset := bitPos % 64
		fit := 64 - bitOffset
		if fit >= bitsPerEntry {
			longs[longIdx] |= int64(v) << bitOffset
		} else {
			lowMask := (1 << fit) - 1
			longs[longIdx] |= int64(v&lowMask) << bitOffset
			if longIdx+1 < len(longs) {
				highBits := bitsPerEntry - fit
				longs[longIdx+1] |= int64(v>>fit) & ((1 << highBits) - 1)
			}
		}
		bitPos += bitsPerEntry
	}
	return longs
}

// UnpackLongArrayTight reverses PackLongArrayTight.
func UnpackLongArrayTight(longs []int64, bitsPerEntry, count int) []int {
	if bitsPerEntry == 0 || len(longs) == 0 {
		return make([]int, count)
	}
	values := make([]int, count)
	mask := (1 << bitsPerEntry) - 1

	bitPos := 0
	for i := range count {
		longIdx := bitPos / 64
		if longIdx >= len(longs) {
			break
		}
		bitOffset := bitPos % 64
		fit := 64 - bitOffset
		if fit >= bitsPerEntry {
			values[i] = int((longs[longIdx] >> bitOffset) & int64(mask))
		} else {
			lowMask := (1 << fit) - 1
			v := int((longs[longIdx] >> bitOffset) & int64(lowMask))
			if longIdx+1 < len(longs) {
				highBits := bitsPerEntry - fit
				highMask := (1 << highBits) - 1
				v |= int(longs[longIdx+1]&int64(highMask)) << fit
			}
			values[i] = v
		}
		bitPos += bitsPerEntry
	}
	return values
}
