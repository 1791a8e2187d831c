package mcedit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/stream"
)

func TestReadResolvesLegacyStoneID(t *testing.T) {
	data := schematicNBT{
		Width:  1,
		Height: 1,
		Length: 1,
		Blocks: []byte{1}, // stone
		Data:   []byte{0},
	}
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(data))

	rd, err := Read(&buf)
	require.NoError(t, err)
	blocks, err := stream.ReadAll(rd)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Equal(t, "minecraft:stone", blocks[0].State.Name())
}

func TestReadUsesBlockIdsOverlayOverBuiltinTable(t *testing.T) {
	data := schematicNBT{
		Width:    1,
		Height:   1,
		Length:   1,
		Blocks:   []byte{1},
		Data:     []byte{0},
		BlockIds: map[string]string{"1": "minecraft:granite"},
	}
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(data))

	rd, err := Read(&buf)
	require.NoError(t, err)
	blocks, err := stream.ReadAll(rd)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Equal(t, "minecraft:granite", blocks[0].State.Name())
}

func TestReadCombinesAddBlocksNibbleForExtendedIDs(t *testing.T) {
	// id 256 = base byte 0 with AddBlocks nibble 1 at index 0's low nibble.
	data := schematicNBT{
		Width:     1,
		Height:    1,
		Length:    1,
		Blocks:    []byte{0},
		Data:      []byte{0},
		AddBlocks: []byte{0x01},
	}
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(data))

	rd, err := Read(&buf)
	require.NoError(t, err)
	_, err = stream.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, 256, readBlockID(data.Blocks, data.AddBlocks, 0))
}

func TestReadRejectsMismatchedArrayLengths(t *testing.T) {
	data := schematicNBT{
		Width:  2,
		Height: 1,
		Length: 1,
		Blocks: []byte{1},
		Data:   []byte{0, 0},
	}
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(data))

	_, err := Read(&buf)
	assert.Error(t, err)
}
