package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
)

func mustParse(t *testing.T, s string) *block.BlockState {
	t.Helper()
	state, err := block.Parse(s)
	require.NoError(t, err)
	return state
}

func TestFromStoreSkipsAirAndYieldsOncePerBlock(t *testing.T) {
	s := store.NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(2, 1, 1), 4)
	stone := mustParse(t, "minecraft:stone")
	require.NoError(t, s.SetBlockAt(block.NewPosition(0, 0, 0), stone))
	// (1,0,0) stays air.

	r := FromStore(s)
	blocks, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, block.NewPosition(0, 0, 0), blocks[0].Position)
	assert.True(t, stone.Equal(blocks[0].State))
}

func TestFromStoreBoundary(t *testing.T) {
	b := block.NewBoundaryFromSize(3, 3, 3)
	s := store.NewPagedBlockStoreForBoundary(b, 4)
	r := FromStore(s)
	got, err := r.Boundary()
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestReadToEndInsertsIntoDestination(t *testing.T) {
	src := store.NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(2, 2, 1), 4)
	stone := mustParse(t, "minecraft:stone")
	require.NoError(t, src.SetBlockAt(block.NewPosition(0, 0, 0), stone))
	require.NoError(t, src.SetBlockAt(block.NewPosition(1, 1, 0), stone))

	dst := store.NewPagedBlockStore(4)
	require.NoError(t, ReadToEnd(FromStore(src), dst))

	got, err := dst.BlockAt(block.NewPosition(1, 1, 0))
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))
}

type sliceWriter struct {
	written []block.Block
	done    bool
}

func (w *sliceWriter) Write(blocks []block.Block) (int, error) {
	w.written = append(w.written, blocks...)
	return len(blocks), nil
}

func (w *sliceWriter) Complete() error {
	w.done = true
	return nil
}

func TestWriteAllSkipsAirAndCallsComplete(t *testing.T) {
	src := store.NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(2, 1, 1), 4)
	stone := mustParse(t, "minecraft:stone")
	require.NoError(t, src.SetBlockAt(block.NewPosition(1, 0, 0), stone))

	w := &sliceWriter{}
	require.NoError(t, WriteAll(w, src))

	require.Len(t, w.written, 1)
	assert.Equal(t, block.NewPosition(1, 0, 0), w.written[0].Position)
	assert.True(t, w.done)
}
