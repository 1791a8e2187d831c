package sponge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
	"github.com/oriumgames/voxschem/stream"
)

func mustParse(t *testing.T, s string) *block.BlockState {
	t.Helper()
	state, err := block.Parse(s)
	require.NoError(t, err)
	return state
}

func TestV2RoundTrip(t *testing.T) {
	src := store.NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(2, 2, 2), 4)
	stone := mustParse(t, "minecraft:stone")
	require.NoError(t, src.SetBlockAt(block.NewPosition(1, 0, 1), stone))

	var buf bytes.Buffer
	w := NewWriter(&buf, V2)
	require.NoError(t, stream.WriteAll(w, src))

	rd, err := Read(&buf, V2)
	require.NoError(t, err)

	got := store.NewPagedBlockStore(4)
	require.NoError(t, stream.ReadToEnd(rd, got))
	s, err := got.BlockAt(block.NewPosition(1, 0, 1))
	require.NoError(t, err)
	assert.True(t, stone.Equal(s))
}

func TestV3RoundTrip(t *testing.T) {
	src := store.NewPagedBlockStoreForBoundary(block.NewBoundaryFromSize(2, 2, 2), 4)
	dirt := mustParse(t, "minecraft:dirt")
	require.NoError(t, src.SetBlockAt(block.NewPosition(0, 1, 0), dirt))

	var buf bytes.Buffer
	w := NewWriter(&buf, V3)
	require.NoError(t, stream.WriteAll(w, src))

	rd, err := Read(&buf, V3)
	require.NoError(t, err)

	got := store.NewPagedBlockStore(4)
	require.NoError(t, stream.ReadToEnd(rd, got))
	s, err := got.BlockAt(block.NewPosition(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, dirt.Equal(s))
}

func TestV2RejectsWrongVersionField(t *testing.T) {
	data := v2NBT{Version: 99, Width: 1, Height: 1, Length: 1, Palette: map[string]int32{"minecraft:air": 0}}
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(data))

	_, err := Read(&buf, V2)
	assert.Error(t, err)
}

func TestWritingV1IsUnsupported(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, V1)
	_, err := w.Write(nil)
	require.NoError(t, err)
	err = w.Complete()
	assert.Error(t, err)
}

func TestV1ReadProducesLegacyPlaceholderNames(t *testing.T) {
	data := v1NBT{
		Width:  1,
		Height: 1,
		Length: 2,
		Blocks: []byte{0, 5},
		Data:   []byte{0, 3},
	}
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(data))

	rd, err := Read(&buf, V1)
	require.NoError(t, err)
	blocks, err := stream.ReadAll(rd)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Equal(t, "minecraft:legacy_5_3", blocks[0].State.Name())
}
