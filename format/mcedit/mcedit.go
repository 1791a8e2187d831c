// Package mcedit implements the MCEDIT legacy schematic codec: parallel
// Blocks/Data byte arrays (plus an optional AddBlocks nibble array
// extending IDs past 255, and an optional BlockIds string-keyed
// overlay), translated through the legacy package's numeric-ID
// conversion. Framing (gzip) is the caller's responsibility.
package mcedit

import (
	"fmt"
	"io"
	"strconv"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/format/legacy"
	"github.com/oriumgames/voxschem/store"
	"github.com/oriumgames/voxschem/stream"
)

type schematicNBT struct {
	Width     int16             `nbt:"Width"`
	Height    int16             `nbt:"Height"`
	Length    int16             `nbt:"Length"`
	Materials string            `nbt:"Materials,omitempty"`
	Blocks    []byte            `nbt:"Blocks"`
	Data      []byte            `nbt:"Data"`
	AddBlocks []byte            `nbt:"AddBlocks,omitempty"`
	BlockIds  map[string]string `nbt:"BlockIds,omitempty"`
	WEOffsetX int32             `nbt:"WEOffsetX,omitempty"`
	WEOffsetY int32             `nbt:"WEOffsetY,omitempty"`
	WEOffsetZ int32             `nbt:"WEOffsetZ,omitempty"`
}

// readBlockID combines the base Blocks byte with the matching nibble of
// the optional AddBlocks array (the low nibble of byte idx/2 for an even
// idx, the high nibble for an odd one), giving a 12-bit ID.
func readBlockID(base []byte, addBlocks []byte, idx int) int {
	id := int(base[idx])
	if len(addBlocks) == 0 {
		return id
	}
	addIdx := idx / 2
	if addIdx >= len(addBlocks) {
		return id
	}
	nibble := addBlocks[addIdx]
	if idx%2 == 0 {
		nibble &= 0x0F
	} else {
		nibble = (nibble >> 4) & 0x0F
	}
	return id | int(nibble)<<8
}

// Read decodes a complete MCEDIT schematic from r.
func Read(r io.Reader) (*stream.StoreReader, error) {
	var data schematicNBT
	if err := nbt.NewDecoderWithEncoding(r, nbt.BigEndian).Decode(&data); err != nil {
		return nil, fmt.Errorf("mcedit: decode nbt: %w", err)
	}
	width, height, length := int(data.Width), int(data.Height), int(data.Length)
	if width <= 0 || height <= 0 || length <= 0 {
		return nil, fmt.Errorf("mcedit: invalid dimensions %dx%dx%d", width, height, length)
	}
	count := width * height * length
	if len(data.Blocks) != count || len(data.Data) != count {
		return nil, fmt.Errorf("mcedit: block data mismatch: expected %d cells, got %d blocks / %d data", count, len(data.Blocks), len(data.Data))
	}

	overlay := make(map[int]string, len(data.BlockIds))
	for k, v := range data.BlockIds {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		overlay[id] = v
	}

	boundary := block.NewBoundaryFromSize(int32(width), int32(height), int32(length))
	s := store.NewPagedBlockStoreForBoundary(boundary, store.DefaultPageSize)

	resolved := make(map[int]*block.BlockState)

	// Wire layout is YZX: index = (y*length + z)*width + x.
	it := boundary.Iter(block.YZX)
	for i := 0; i < count; i++ {
		pos, ok := it.Next()
		if !ok {
			break
		}
		id := readBlockID(data.Blocks, data.AddBlocks, i)
		meta := data.Data[i] & 0x0F
		if id == 0 {
			continue
		}
		key := id<<4 | int(meta)
		state, ok := resolved[key]
		if !ok {
			state = legacy.Resolve(id, meta, overlay)
			resolved[key] = state
		}
		if err := s.SetBlockAt(pos, state); err != nil {
			return nil, fmt.Errorf("mcedit: set block at %v: %w", pos, err)
		}
	}

	return stream.FromStore(s), nil
}

// There is no Writer for this package: MCEDIT has no general-purpose
// modern-to-legacy table (the inverse of legacy.Resolve is deliberately
// not attempted - see DESIGN.md), so the format is read-only here.
// voxschem.NewWriter rejects FormatMCEdit for the same reason it
// rejects FormatSpongeV1.
