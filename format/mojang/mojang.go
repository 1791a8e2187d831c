// Package mojang implements the MOJANG structure-NBT schematic codec: a
// Size-tagged, flat block-entry list over a name+properties palette.
// Framing (gzip or otherwise) is the caller's responsibility; Read and
// NewWriter both operate on a raw NBT byte stream.
package mojang

import (
	"fmt"
	"io"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
	"github.com/oriumgames/voxschem/stream"
)

const dataVersion = 3465

type paletteEntryNBT struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties,omitempty"`
}

type blockEntryNBT struct {
	Pos   []int32 `nbt:"pos"`
	State int32   `nbt:"state"`
}

type structureDataNBT struct {
	DataVersion int32             `nbt:"DataVersion"`
	Size        []int32           `nbt:"size"`
	Palette     []paletteEntryNBT `nbt:"palette"`
	Blocks      []blockEntryNBT   `nbt:"blocks"`
}

// Read decodes a complete MOJANG structure from r and returns a
// streaming Reader over it.
func Read(r io.Reader) (*stream.StoreReader, error) {
	var data structureDataNBT
	if err := nbt.NewDecoderWithEncoding(r, nbt.BigEndian).Decode(&data); err != nil {
		return nil, fmt.Errorf("mojang: decode nbt: %w", err)
	}
	if len(data.Size) != 3 {
		return nil, fmt.Errorf("mojang: size tag must have exactly 3 entries, got %d", len(data.Size))
	}

	boundary := block.NewBoundaryFromSize(data.Size[0], data.Size[1], data.Size[2])
	s := store.NewPagedBlockStoreForBoundary(boundary, store.DefaultPageSize)

	palette := make([]*block.BlockState, len(data.Palette))
	for i, entry := range data.Palette {
		props := make([]block.Property, 0, len(entry.Properties))
		for k, v := range entry.Properties {
			props = append(props, block.Property{Key: k, Value: v})
		}
		palette[i] = block.New(entry.Name, props)
	}

	for _, be := range data.Blocks {
		if len(be.Pos) != 3 {
			return nil, fmt.Errorf("mojang: block entry pos must have exactly 3 entries")
		}
		if be.State < 0 || int(be.State) >= len(palette) {
			return nil, fmt.Errorf("mojang: block entry references palette index %d out of range [0,%d)", be.State, len(palette))
		}
		pos := block.NewPosition(int(be.Pos[0]), int(be.Pos[1]), int(be.Pos[2]))
		if err := s.SetBlockAt(pos, palette[be.State]); err != nil {
			return nil, fmt.Errorf("mojang: set block at %v: %w", pos, err)
		}
	}

	return stream.FromStore(s), nil
}

// Writer accumulates written blocks and, on Complete, emits an explicit
// block entry for every cell of the final bounding box - including air
// - so a MOJANG consumer never has to assume an implicit default for an
// unlisted position.
type Writer struct {
	w        io.Writer
	accum    store.BlockStore
	complete bool
}

// NewWriter returns a Writer that writes a raw (ungzipped) MOJANG
// structure to w once Complete is called.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, accum: store.NewPagedBlockStore(store.DefaultPageSize)}
}

// Write records blocks, growing the writer's bounding box to cover
// every position seen.
func (mw *Writer) Write(blocks []block.Block) (int, error) {
	if mw.complete {
		return 0, fmt.Errorf("mojang: write after complete")
	}
	for _, b := range blocks {
		if err := mw.accum.SetBlockAt(b.Position, b.State); err != nil {
			return 0, fmt.Errorf("mojang: write: %w", err)
		}
	}
	return len(blocks), nil
}

// Complete serialises the accumulated blocks - one explicit entry per
// cell of the bounding box, air included - and writes the NBT document.
func (mw *Writer) Complete() error {
	if mw.complete {
		return fmt.Errorf("mojang: complete called twice")
	}
	mw.complete = true

	// Read places the box at the origin, so the written box always
	// includes (0,0,0).
	mw.accum.SetBoundary(mw.accum.Boundary().ExpandToInclude(block.Position{}))
	boundary := mw.accum.Boundary()
	palette := store.NewPalette()
	var entries []blockEntryNBT

	for pos, state := range mw.accum.IterateBlocks(block.XYZ) {
		if state == nil {
			state = block.Air()
		}
		idx := palette.Add(state)
		entries = append(entries, blockEntryNBT{
			Pos:   []int32{pos.X - boundary.MinX, pos.Y - boundary.MinY, pos.Z - boundary.MinZ},
			State: int32(idx),
		})
	}

	paletteNBT := make([]paletteEntryNBT, palette.Size())
	for i, st := range palette.States() {
		var props map[string]string
		if p := st.Properties(); len(p) > 0 {
			props = make(map[string]string, len(p))
			for _, kv := range p {
				props[kv.Key] = kv.Value
			}
		}
		paletteNBT[i] = paletteEntryNBT{Name: st.Name(), Properties: props}
	}

	data := structureDataNBT{
		DataVersion: dataVersion,
		Size:        []int32{boundary.DX, boundary.DY, boundary.DZ},
		Palette:     paletteNBT,
		Blocks:      entries,
	}

	if err := nbt.NewEncoderWithEncoding(mw.w, nbt.BigEndian).Encode(data); err != nil {
		return fmt.Errorf("mojang: encode nbt: %w", err)
	}
	return nil
}

var _ stream.Writer = (*Writer)(nil)
