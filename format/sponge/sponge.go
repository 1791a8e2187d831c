// Package sponge implements the SPONGE schematic codec, versions 2 and
// 3 (the versions still in live use) plus version 1 as a bonus
// best-effort format. Versions 2 and 3 share the same VarInt-packed
// palette index array over a YZX-ordered block grid; version 1 reads
// parallel legacy Blocks/Data byte arrays over the same grid and names
// each non-air cell with a "minecraft:legacy_<id>_<data>" placeholder.
// Framing (gzip) is the caller's responsibility.
package sponge

import (
	"fmt"
	"io"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
	"github.com/oriumgames/voxschem/stream"
	"github.com/oriumgames/voxschem/varint"
)

// Version identifies which SPONGE schematic revision a reader/writer
// targets.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
	V3 Version = 3
)

type v1NBT struct {
	Width    int16          `nbt:"Width"`
	Height   int16          `nbt:"Height"`
	Length   int16          `nbt:"Length"`
	Offset   []int32        `nbt:"Offset,omitempty"`
	Blocks   []byte         `nbt:"Blocks"`
	Data     []byte         `nbt:"Data"`
	Metadata map[string]any `nbt:"*"`
}

type v2NBT struct {
	Version       int32            `nbt:"Version"`
	DataVersion   int32            `nbt:"DataVersion"`
	Width         int16            `nbt:"Width"`
	Height        int16            `nbt:"Height"`
	Length        int16            `nbt:"Length"`
	Offset        []int32          `nbt:"Offset,omitempty"`
	PaletteMax    int32            `nbt:"PaletteMax"`
	Palette       map[string]int32 `nbt:"Palette"`
	BlockData     []byte           `nbt:"BlockData"`
	BlockEntities []map[string]any `nbt:"BlockEntities,omitempty"`
	Entities      []map[string]any `nbt:"Entities,omitempty"`
	Metadata      map[string]any   `nbt:"Metadata,omitempty"`
}

type v3NBT struct {
	Version     int32 `nbt:"Version"`
	DataVersion int32 `nbt:"DataVersion"`
	Width       int16 `nbt:"Width"`
	Height      int16 `nbt:"Height"`
	Length      int16 `nbt:"Length"`

	Offset []int32 `nbt:"Offset,omitempty"`

	Blocks struct {
		Palette       map[string]int32 `nbt:"Palette"`
		Data          []byte           `nbt:"Data"`
		BlockEntities []map[string]any `nbt:"BlockEntities,omitempty"`
	} `nbt:"Blocks"`

	Entities []map[string]any `nbt:"Entities,omitempty"`
	Metadata map[string]any   `nbt:"Metadata,omitempty"`
}

// buildStoreFromPalette materialises a BlockStore of the given
// dimensions from a YZX-ordered VarInt index array and a
// string-keyed palette.
func buildStoreFromPalette(width, height, length int, paletteStrings map[string]int32, paletteSize int, data []byte) (store.BlockStore, error) {
	palette := make([]*block.BlockState, paletteSize)
	for stateStr, idx := range paletteStrings {
		if int(idx) < 0 || int(idx) >= paletteSize {
			return nil, fmt.Errorf("sponge: palette index %d out of range [0,%d)", idx, paletteSize)
		}
		st, err := block.Parse(stateStr)
		if err != nil {
			return nil, fmt.Errorf("sponge: palette entry %q: %w", stateStr, err)
		}
		palette[idx] = st
	}

	count := width * height * length
	indices, err := varint.DecodeVarIntArray(data, count)
	if err != nil {
		return nil, fmt.Errorf("sponge: decode block data: %w", err)
	}

	boundary := block.NewBoundaryFromSize(int32(width), int32(height), int32(length))
	s := store.NewPagedBlockStoreForBoundary(boundary, store.DefaultPageSize)

	it := boundary.Iter(block.YZX)
	for i := 0; i < count; i++ {
		pos, ok := it.Next()
		if !ok {
			break
		}
		paletteIdx := indices[i]
		if paletteIdx < 0 || paletteIdx >= len(palette) || palette[paletteIdx] == nil {
			continue
		}
		if err := s.SetBlockAt(pos, palette[paletteIdx]); err != nil {
			return nil, fmt.Errorf("sponge: set block at %v: %w", pos, err)
		}
	}
	return s, nil
}

// encodeBlockData walks s's boundary in YZX order, interning each cell
// (air included) into a fresh palette seeded with air at index 0.
func encodeBlockData(s store.BlockStore) (paletteOut *store.Palette, data []byte) {
	boundary := s.Boundary()
	palette := store.NewPaletteWithAir()
	indices := make([]int, boundary.Volume())

	it := boundary.Iter(block.YZX)
	for i := 0; ; i++ {
		pos, ok := it.Next()
		if !ok {
			break
		}
		state, err := s.BlockAt(pos)
		if err != nil || state == nil {
			state = block.Air()
		}
		indices[i] = palette.Add(state)
	}
	return palette, varint.EncodeVarIntArray(indices)
}

func paletteToStrings(p *store.Palette) map[string]int32 {
	m := make(map[string]int32, p.Size())
	for i, st := range p.States() {
		m[st.String()] = int32(i)
	}
	return m
}

// Read decodes a complete SPONGE schematic of the given version from r.
func Read(r io.Reader, version Version) (*stream.StoreReader, error) {
	switch version {
	case V1:
		return readV1(r)
	case V2:
		return readV2(r)
	case V3:
		return readV3(r)
	default:
		return nil, fmt.Errorf("sponge: unsupported version %d", version)
	}
}

func readV1(r io.Reader) (*stream.StoreReader, error) {
	var data v1NBT
	if err := nbt.NewDecoderWithEncoding(r, nbt.BigEndian).Decode(&data); err != nil {
		return nil, fmt.Errorf("sponge v1: decode nbt: %w", err)
	}
	width, height, length := int(data.Width), int(data.Height), int(data.Length)
	if width <= 0 || height <= 0 || length <= 0 {
		return nil, fmt.Errorf("sponge v1: invalid dimensions %dx%dx%d", width, height, length)
	}
	boundary := block.NewBoundaryFromSize(int32(width), int32(height), int32(length))
	s := store.NewPagedBlockStoreForBoundary(boundary, store.DefaultPageSize)

	count := width * height * length
	it := boundary.Iter(block.YZX)
	for i := 0; i < count && i < len(data.Blocks); i++ {
		pos, ok := it.Next()
		if !ok {
			break
		}
		id := int(data.Blocks[i])
		dataNibble := 0
		if i < len(data.Data) {
			dataNibble = int(data.Data[i]) & 0x0F
		}
		if id == 0 {
			continue
		}
		name := fmt.Sprintf("minecraft:legacy_%d_%d", id, dataNibble)
		if err := s.SetBlockAt(pos, block.New(name, nil)); err != nil {
			return nil, fmt.Errorf("sponge v1: set block at %v: %w", pos, err)
		}
	}
	return stream.FromStore(s), nil
}

func readV2(r io.Reader) (*stream.StoreReader, error) {
	var data v2NBT
	if err := nbt.NewDecoderWithEncoding(r, nbt.BigEndian).Decode(&data); err != nil {
		return nil, fmt.Errorf("sponge v2: decode nbt: %w", err)
	}
	if data.Version != 2 {
		return nil, fmt.Errorf("sponge v2: expected Version 2, got %d", data.Version)
	}
	width, height, length := int(data.Width), int(data.Height), int(data.Length)
	if width <= 0 || height <= 0 || length <= 0 {
		return nil, fmt.Errorf("sponge v2: invalid dimensions %dx%dx%d", width, height, length)
	}
	s, err := buildStoreFromPalette(width, height, length, data.Palette, int(data.PaletteMax)+1, data.BlockData)
	if err != nil {
		return nil, err
	}
	return stream.FromStore(s), nil
}

func readV3(r io.Reader) (*stream.StoreReader, error) {
	var data v3NBT
	if err := nbt.NewDecoderWithEncoding(r, nbt.BigEndian).Decode(&data); err != nil {
		return nil, fmt.Errorf("sponge v3: decode nbt: %w", err)
	}
	if data.Version != 3 {
		return nil, fmt.Errorf("sponge v3: expected Version 3, got %d", data.Version)
	}
	width, height, length := int(data.Width), int(data.Height), int(data.Length)
	if width <= 0 || height <= 0 || length <= 0 {
		return nil, fmt.Errorf("sponge v3: invalid dimensions %dx%dx%d", width, height, length)
	}
	s, err := buildStoreFromPalette(width, height, length, data.Blocks.Palette, len(data.Blocks.Palette), data.Blocks.Data)
	if err != nil {
		return nil, err
	}
	return stream.FromStore(s), nil
}

// Writer accumulates written blocks and serialises them as a SPONGE
// schematic of the configured version on Complete.
type Writer struct {
	w        io.Writer
	version  Version
	accum    store.BlockStore
	complete bool
}

// NewWriter returns a Writer targeting the given SPONGE version.
func NewWriter(w io.Writer, version Version) *Writer {
	return &Writer{w: w, version: version, accum: store.NewPagedBlockStore(store.DefaultPageSize)}
}

// Write records blocks, growing the writer's bounding box as needed.
func (sw *Writer) Write(blocks []block.Block) (int, error) {
	if sw.complete {
		return 0, fmt.Errorf("sponge: write after complete")
	}
	for _, b := range blocks {
		if err := sw.accum.SetBlockAt(b.Position, b.State); err != nil {
			return 0, fmt.Errorf("sponge: write: %w", err)
		}
	}
	return len(blocks), nil
}

// Complete serialises the accumulated store in the configured version's
// NBT shape.
func (sw *Writer) Complete() error {
	if sw.complete {
		return fmt.Errorf("sponge: complete called twice")
	}
	sw.complete = true

	// Read places the box at the origin, so the written box always
	// includes (0,0,0).
	sw.accum.SetBoundary(sw.accum.Boundary().ExpandToInclude(block.Position{}))
	boundary := sw.accum.Boundary()
	palette, data := encodeBlockData(sw.accum)

	switch sw.version {
	case V2:
		out := v2NBT{
			Version:    2,
			Width:      int16(boundary.DX),
			Height:     int16(boundary.DY),
			Length:     int16(boundary.DZ),
			Offset:     []int32{boundary.MinX, boundary.MinY, boundary.MinZ},
			PaletteMax: int32(palette.Size() - 1),
			Palette:    paletteToStrings(palette),
			BlockData:  data,
		}
		return nbt.NewEncoderWithEncoding(sw.w, nbt.BigEndian).Encode(out)
	case V3:
		out := v3NBT{
			Version: 3,
			Width:   int16(boundary.DX),
			Height:  int16(boundary.DY),
			Length:  int16(boundary.DZ),
			Offset:  []int32{boundary.MinX, boundary.MinY, boundary.MinZ},
		}
		out.Blocks.Palette = paletteToStrings(palette)
		out.Blocks.Data = data
		return nbt.NewEncoderWithEncoding(sw.w, nbt.BigEndian).Encode(out)
	default:
		return fmt.Errorf("sponge: writing version %d is not supported", sw.version)
	}
}

var _ stream.Writer = (*Writer)(nil)
