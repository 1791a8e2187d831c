package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/voxschem/block"
)

func mustParse(t *testing.T, s string) *block.BlockState {
	t.Helper()
	state, err := block.Parse(s)
	require.NoError(t, err)
	return state
}

func TestPagedBlockStoreSetAndGet(t *testing.T) {
	s := NewPagedBlockStore(4)
	stone := mustParse(t, "minecraft:stone")

	require.NoError(t, s.SetBlockAt(block.NewPosition(1, 2, 3), stone))
	got, err := s.BlockAt(block.NewPosition(1, 2, 3))
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))

	empty, err := s.BlockAt(block.NewPosition(9, 9, 9))
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestPagedBlockStoreExpandsBoundary(t *testing.T) {
	s := NewPagedBlockStore(4)
	stone := mustParse(t, "minecraft:stone")

	require.NoError(t, s.SetBlockAt(block.NewPosition(0, 0, 0), stone))
	require.NoError(t, s.SetBlockAt(block.NewPosition(10, 10, 10), stone))

	assert.True(t, s.Boundary().Contains(block.NewPosition(10, 10, 10)))
}

func TestPagedBlockStoreNonResizableRejectsOutOfBounds(t *testing.T) {
	b := block.NewBoundaryFromSize(2, 2, 2)
	s := NewPagedBlockStoreForBoundary(b, 4)
	stone := mustParse(t, "minecraft:stone")

	err := s.SetBlockAt(block.NewPosition(5, 5, 5), stone)
	assert.Error(t, err)
}

func TestPagedBlockStoreRemoveBlockAt(t *testing.T) {
	s := NewPagedBlockStore(4)
	stone := mustParse(t, "minecraft:stone")
	p := block.NewPosition(1, 1, 1)

	require.NoError(t, s.SetBlockAt(p, stone))
	require.NoError(t, s.RemoveBlockAt(p))

	got, err := s.BlockAt(p)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPagedBlockStoreIterateBlocksYieldsAirForEmptyCells(t *testing.T) {
	s := NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(2, 1, 1), 4)
	stone := mustParse(t, "minecraft:stone")
	require.NoError(t, s.SetBlockAt(block.NewPosition(0, 0, 0), stone))

	var seen []block.Position
	for p, state := range s.IterateBlocks(block.XYZ) {
		seen = append(seen, p)
		if p == (block.Position{X: 0}) {
			assert.True(t, stone.Equal(state))
		} else {
			assert.True(t, state.IsAir())
		}
	}
	assert.Len(t, seen, 2)
}

func TestPagedBlockStoreNegativeCoordinates(t *testing.T) {
	s := NewPagedBlockStore(4)
	stone := mustParse(t, "minecraft:stone")
	p := block.NewPosition(-5, -5, -5)

	require.NoError(t, s.SetBlockAt(p, stone))
	got, err := s.BlockAt(p)
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))
}

func TestPagedBlockStoreNNZ(t *testing.T) {
	s := NewPagedBlockStore(4)
	stone := mustParse(t, "minecraft:stone")
	require.NoError(t, s.SetBlockAt(block.NewPosition(0, 0, 0), stone))
	require.NoError(t, s.SetBlockAt(block.NewPosition(20, 20, 20), stone))
	assert.Equal(t, 2, s.NNZ())
}

func TestSparseBlockStoreBasics(t *testing.T) {
	s := NewSparseBlockStore()
	stone := mustParse(t, "minecraft:stone")
	p := block.NewPosition(100, 100, 100)

	require.NoError(t, s.SetBlockAt(p, stone))
	got, err := s.BlockAt(p)
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.RemoveBlockAt(p))
	assert.Equal(t, 0, s.Len())
}

func TestSparseBlockStoreIterateBlocksCoversWholeBoundary(t *testing.T) {
	b := block.NewBoundaryFromSize(2, 2, 1)
	s := NewSparseBlockStoreForBoundary(b)
	stone := mustParse(t, "minecraft:stone")
	require.NoError(t, s.SetBlockAt(block.NewPosition(1, 1, 0), stone))

	count := 0
	for range s.IterateBlocks(block.XYZ) {
		count++
	}
	assert.Equal(t, b.Volume(), count)
}

func TestExpandOrFailCapsExpansion(t *testing.T) {
	_, err := ExpandOrFail(block.Empty(), block.NewPosition(MaxPageExpansion+10, 0, 0), true)
	assert.Error(t, err)
}

func TestExpandOrFailNonResizableRejects(t *testing.T) {
	b := block.NewBoundaryFromSize(1, 1, 1)
	_, err := ExpandOrFail(b, block.NewPosition(5, 5, 5), false)
	assert.Error(t, err)
}

func TestPaletteAddDedupesByStringForm(t *testing.T) {
	p := NewPalette()
	a := mustParse(t, "minecraft:oak_stairs[facing=north,half=bottom]")
	b := mustParse(t, "minecraft:oak_stairs[half=bottom,facing=north]")

	idxA := p.Add(a)
	idxB := p.Add(b)
	assert.Equal(t, idxA, idxB)
	assert.Equal(t, 1, p.Size())
}

func TestPaletteWithAirSeedsIndexZero(t *testing.T) {
	p := NewPaletteWithAir()
	assert.True(t, p.Get(0).IsAir())
	assert.Equal(t, 0, p.Index(block.Air()))
}

func TestPaletteIndexUnknownReturnsNegativeOne(t *testing.T) {
	p := NewPalette()
	assert.Equal(t, -1, p.Index(mustParse(t, "minecraft:stone")))
}

func TestLazyPaletteBlockStoreWrapperResolvesPlaceholders(t *testing.T) {
	inner := NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(1, 1, 1), 4)
	w := NewLazyPaletteBlockStoreWrapper(inner)
	stone := mustParse(t, "minecraft:stone")

	p := block.NewPosition(0, 0, 0)
	require.NoError(t, w.SetUnknownBlockAt(p, 3))

	_, err := w.BlockAt(p)
	assert.Error(t, err, "should fail before the actual palette is bound")

	w.SetActualPalette(map[int]*block.BlockState{3: stone})
	got, err := w.BlockAt(p)
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))
}

func TestLazyPaletteBlockStoreWrapperIterateDegradesUnresolvedToAir(t *testing.T) {
	inner := NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(1, 1, 1), 4)
	w := NewLazyPaletteBlockStoreWrapper(inner)

	p := block.NewPosition(0, 0, 0)
	require.NoError(t, w.SetUnknownBlockAt(p, 9))
	w.SetActualPalette(map[int]*block.BlockState{})

	for _, state := range w.IterateBlocks(block.XYZ) {
		assert.True(t, state.IsAir())
	}
}
