package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/voxschem/block"
)

func TestArrayPageStoreLoadErase(t *testing.T) {
	p := NewArrayPage(4, 4, 4, block.XYZ)

	_, ok := p.Load(1, 1, 1)
	assert.False(t, ok)

	require.NoError(t, p.Store(1, 2, 3, 7))
	idx, ok := p.Load(1, 2, 3)
	require.True(t, ok)
	assert.Equal(t, 7, idx)
	assert.Equal(t, 1, p.NNZ())

	require.NoError(t, p.Erase(1, 2, 3))
	assert.Equal(t, 0, p.NNZ())
	_, ok = p.Load(1, 2, 3)
	assert.False(t, ok)
}

func TestArrayPageEraseEmptyFails(t *testing.T) {
	p := NewArrayPage(2, 2, 2, block.XYZ)
	assert.Error(t, p.Erase(0, 0, 0))
}

func TestArrayPageOutOfRangeFails(t *testing.T) {
	p := NewArrayPage(2, 2, 2, block.XYZ)
	assert.Error(t, p.Store(5, 5, 5, 0))
}

func TestArrayPageAllAxisOrdersAddressEveryCellUniquely(t *testing.T) {
	for _, order := range []block.AxisOrder{block.XYZ, block.XZY, block.YXZ, block.YZX, block.ZXY, block.ZYX} {
		p := NewArrayPage(3, 3, 3, order)
		seen := make(map[[3]int32]bool)
		for x := int32(0); x < 3; x++ {
			for y := int32(0); y < 3; y++ {
				for z := int32(0); z < 3; z++ {
					require.NoError(t, p.Store(x, y, z, int(x+y+z)))
					seen[[3]int32{x, y, z}] = true
				}
			}
		}
		assert.Equal(t, 27, p.NNZ(), "order %v", order)
		for x := int32(0); x < 3; x++ {
			for y := int32(0); y < 3; y++ {
				for z := int32(0); z < 3; z++ {
					got, ok := p.Load(x, y, z)
					require.True(t, ok)
					assert.Equal(t, int(x+y+z), got)
				}
			}
		}
	}
}
