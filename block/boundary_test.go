package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundaryFromMinMax(t *testing.T) {
	b := NewBoundaryFromMinMax(0, 0, 0, 1, 1, 1)
	assert.Equal(t, int32(2), b.DX)
	assert.Equal(t, int32(2), b.DY)
	assert.Equal(t, int32(2), b.DZ)
	assert.Equal(t, 8, b.Volume())
}

func TestBoundaryContains(t *testing.T) {
	b := NewBoundaryFromSize(2, 2, 2)
	assert.True(t, b.Contains(NewPosition(0, 0, 0)))
	assert.True(t, b.Contains(NewPosition(1, 1, 1)))
	assert.False(t, b.Contains(NewPosition(2, 0, 0)))
	assert.False(t, b.Contains(NewPosition(-1, 0, 0)))
}

func TestBoundaryExpandToInclude(t *testing.T) {
	b := Empty()
	assert.Equal(t, 0, b.Volume())

	b = b.ExpandToInclude(NewPosition(5, 5, 5))
	assert.True(t, b.Contains(NewPosition(5, 5, 5)))
	assert.Equal(t, 1, b.Volume())

	b = b.ExpandToInclude(NewPosition(-1, 0, 0))
	assert.True(t, b.Contains(NewPosition(-1, 0, 0)))
	assert.True(t, b.Contains(NewPosition(5, 5, 5)))
}

func TestAxesOuterToInnerPerOrder(t *testing.T) {
	cases := map[AxisOrder][3]Axis{
		XYZ: {AxisX, AxisY, AxisZ},
		XZY: {AxisX, AxisZ, AxisY},
		YXZ: {AxisY, AxisX, AxisZ},
		YZX: {AxisY, AxisZ, AxisX},
		ZXY: {AxisZ, AxisX, AxisY},
		ZYX: {AxisZ, AxisY, AxisX},
	}
	for order, want := range cases {
		assert.Equal(t, want, order.Axes(), "order %v", order)
	}
}

func TestAxisOrderByteRoundTrip(t *testing.T) {
	for _, order := range []AxisOrder{XYZ, XZY, YXZ, YZX, ZXY, ZYX} {
		b := order.ByteValue()
		got, err := AxisOrderFromByte(b)
		require.NoError(t, err)
		assert.Equal(t, order, got)
	}
}

func TestAxisOrderFromByteRejectsUnknown(t *testing.T) {
	_, err := AxisOrderFromByte(255)
	assert.Error(t, err)
}

func TestIndexAndPositionAtAreInverses(t *testing.T) {
	b := NewBoundary(-2, 3, -1, 4, 5, 6)
	for _, order := range []AxisOrder{XYZ, XZY, YXZ, YZX, ZXY, ZYX} {
		it := b.Iter(order)
		n := 0
		for it.Remaining() > 0 {
			p, ok := it.Next()
			require.True(t, ok)
			idx := b.Index(p, order)
			assert.Equal(t, n, idx, "order %v position %v", order, p)

			back := b.PositionAt(order, idx)
			assert.Equal(t, p, back, "order %v index %d", order, idx)
			n++
		}
		assert.Equal(t, b.Volume(), n)
	}
}

func TestIteratorSkip(t *testing.T) {
	b := NewBoundaryFromSize(3, 3, 3)
	it := b.Iter(XYZ)

	it.Skip(5)
	assert.Equal(t, b.Volume()-5, it.Remaining())

	p, ok := it.Next()
	require.True(t, ok)
	want := b.PositionAt(XYZ, 5)
	assert.Equal(t, want, p)
}

func TestIteratorExhaustsCleanly(t *testing.T) {
	b := NewBoundaryFromSize(1, 1, 1)
	it := b.Iter(XYZ)
	_, ok := it.Next()
	require.True(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestMaxCorners(t *testing.T) {
	b := NewBoundary(1, 2, 3, 4, 5, 6)
	assert.Equal(t, int32(4), b.MaxX())
	assert.Equal(t, int32(6), b.MaxY())
	assert.Equal(t, int32(8), b.MaxZ())
}
