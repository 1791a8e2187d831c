// Package varint implements the little-endian base-128 variable-length
// integer encoding shared by the SPONGE and VXL wire formats, plus the
// VarLong extension VXL's magic number needs.
package varint

import (
	"fmt"
	"io"
)

// DecodeVarInt reads a single VarInt from the front of data, returning
// the value and the number of bytes consumed.
func DecodeVarInt(data []byte) (int, int, error) {
	var value, length int
	for {
		if length >= len(data) {
			return 0, 0, fmt.Errorf("varint: extends beyond data")
		}
		b := int(data[length])
		value |= (b & 0x7F) << (length * 7)
		length++
		if length > 5 {
			return 0, 0, fmt.Errorf("varint: too long")
		}
		if b&0x80 == 0 {
			break
		}
	}
	return value, length, nil
}

// DecodeVarIntArray decodes count consecutive VarInts from data.
func DecodeVarIntArray(data []byte, count int) ([]int, error) {
	values := make([]int, count)
	offset := 0
	for i := range count {
		val, length, err := DecodeVarInt(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("varint array: element %d: %w", i, err)
		}
		values[i] = val
		offset += length
	}
	return values, nil
}

// EncodeVarInt encodes a single integer as a VarInt.
func EncodeVarInt(value int) []byte {
	var buf []byte
	for {
		b := byte(value & 0x7F)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if value == 0 {
			break
		}
	}
	return buf
}

// EncodeVarIntArray encodes a slice of integers back-to-back.
func EncodeVarIntArray(values []int) []byte {
	var buf []byte
	for _, v := range values {
		buf = append(buf, EncodeVarInt(v)...)
	}
	return buf
}

// ReadVarInt reads a single VarInt from r.
func ReadVarInt(r io.Reader) (int, error) {
	var value, shift int
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		value |= int(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 35 {
			return 0, fmt.Errorf("varint: too long")
		}
	}
	return value, nil
}

// WriteVarInt writes a single VarInt to w.
func WriteVarInt(w io.Writer, value int) error {
	_, err := w.Write(EncodeVarInt(value))
	return err
}

// ReadVarLong reads a VarInt-encoded 64-bit value from r. It is the same
// base-128 scheme as ReadVarInt with a wider shift cap, needed for VXL's
// 48-bit magic number.
func ReadVarLong(r io.Reader) (int64, error) {
	var value int64
	var shift uint
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		value |= int64(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("varlong: too long")
		}
	}
	return value, nil
}

// WriteVarLong writes a 64-bit VarLong to w.
func WriteVarLong(w io.Writer, value int64) error {
	for {
		b := byte(value & 0x7F)
		value = int64(uint64(value) >> 7)
		if value != 0 {
			b |= 0x80
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}
		if value == 0 {
			return nil
		}
	}
}

// ReadString reads a VarInt-prefixed UTF-8 string, the form VXL uses for
// its literal block-state entries.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("string: length prefix: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("string: body: %w", err)
	}
	return string(buf), nil
}

// WriteString writes s with a VarInt length prefix.
func WriteString(w io.Writer, s string) error {
	if err := WriteVarInt(w, len(s)); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}
