// Package litematica implements the Litematica schematic codec: a
// gzip-wrapped NBT document holding one or more named regions, each a
// tightly (cross-word) bit-packed block-state index array alongside its
// own palette. This package reads and writes a single region, named
// "Region" on write and - on read - whichever region sorts first when a
// document declares more than one (see DESIGN.md for the multi-region
// decision).
package litematica

import (
	"fmt"
	"io"
	"math/bits"
	"sort"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
	"github.com/oriumgames/voxschem/stream"
	"github.com/oriumgames/voxschem/varint"
)

const (
	versionV6 = 6
	versionV7 = 7
)

type documentNBT struct {
	Version              int32 `nbt:"Version"`
	SubVersion           int32 `nbt:"SubVersion,omitempty"`
	MinecraftDataVersion int32 `nbt:"MinecraftDataVersion"`

	Metadata struct {
		Name          string `nbt:"Name"`
		Author        string `nbt:"Author"`
		Description   string `nbt:"Description"`
		TimeCreated   int64  `nbt:"TimeCreated"`
		TimeModified  int64  `nbt:"TimeModified"`
		RegionCount   int32  `nbt:"RegionCount"`
		TotalBlocks   int32  `nbt:"TotalBlocks"`
		TotalVolume   int32  `nbt:"TotalVolume"`
		EnclosingSize struct {
			X int32 `nbt:"x"`
			Y int32 `nbt:"y"`
			Z int32 `nbt:"z"`
		} `nbt:"EnclosingSize"`
	} `nbt:"Metadata"`

	Regions map[string]regionNBT `nbt:"Regions"`
}

type regionNBT struct {
	Position struct {
		X int32 `nbt:"x"`
		Y int32 `nbt:"y"`
		Z int32 `nbt:"z"`
	} `nbt:"Position"`

	Size struct {
		X int32 `nbt:"x"`
		Y int32 `nbt:"y"`
		Z int32 `nbt:"z"`
	} `nbt:"Size"`

	BlockStatePalette []struct {
		Name       string            `nbt:"Name"`
		Properties map[string]string `nbt:"Properties,omitempty"`
	} `nbt:"BlockStatePalette"`

	BlockStates []int64 `nbt:"BlockStates,array"`
}

// Read decodes a complete Litematica document from r (raw NBT; gzip
// framing is the caller's responsibility, per the package-wide
// convention the rest of this module follows).
func Read(r io.Reader) (*stream.StoreReader, error) {
	var doc documentNBT
	if err := nbt.NewDecoderWithEncoding(r, nbt.BigEndian).Decode(&doc); err != nil {
		return nil, fmt.Errorf("litematica: decode nbt: %w", err)
	}
	if doc.Version != versionV6 && doc.Version != versionV7 {
		return nil, fmt.Errorf("litematica: unsupported version %d (want %d or %d)", doc.Version, versionV6, versionV7)
	}
	if len(doc.Regions) == 0 {
		return nil, fmt.Errorf("litematica: document has no regions")
	}

	name, region := firstRegion(doc.Regions)

	palette := make([]*block.BlockState, len(region.BlockStatePalette))
	for i, p := range region.BlockStatePalette {
		properties := make([]block.Property, 0, len(p.Properties))
		for k, v := range p.Properties {
			properties = append(properties, block.Property{Key: k, Value: v})
		}
		sort.Slice(properties, func(a, b int) bool { return properties[a].Key < properties[b].Key })
		state := block.New(p.Name, properties)
		palette[i] = state
	}

	width := absInt(region.Size.X)
	height := absInt(region.Size.Y)
	length := absInt(region.Size.Z)

	bitsPerEntry := max(bits.Len(uint(len(palette))), 2)
	indices := varint.UnpackLongArrayTight(region.BlockStates, bitsPerEntry, width*height*length)

	boundary := block.NewBoundary(region.Position.X, region.Position.Y, region.Position.Z, int32(width), int32(height), int32(length))
	s := store.NewPagedBlockStoreForBoundary(boundary, store.DefaultPageSize)

	it := boundary.Iter(block.YZX)
	for i := 0; i < len(indices); i++ {
		pos, ok := it.Next()
		if !ok {
			break
		}
		idx := indices[i]
		if idx < 0 || idx >= len(palette) {
			continue
		}
		state := palette[idx]
		if state == nil || state.IsAir() {
			continue
		}
		if err := s.SetBlockAt(pos, state); err != nil {
			return nil, fmt.Errorf("litematica: set block at %v: %w", pos, err)
		}
	}

	_ = name
	return stream.FromStore(s), nil
}

func firstRegion(regions map[string]regionNBT) (string, regionNBT) {
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names[0], regions[names[0]]
}

func absInt(v int32) int {
	if v < 0 {
		return int(-v)
	}
	return int(v)
}

// Writer serialises accumulated blocks as a single-region Litematica
// document on Complete.
type Writer struct {
	w        io.Writer
	accum    store.BlockStore
	complete bool
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, accum: store.NewPagedBlockStore(store.DefaultPageSize)}
}

// Write records blocks, growing the writer's bounding box as needed.
func (lw *Writer) Write(blocks []block.Block) (int, error) {
	if lw.complete {
		return 0, fmt.Errorf("litematica: write after complete")
	}
	for _, b := range blocks {
		if err := lw.accum.SetBlockAt(b.Position, b.State); err != nil {
			return 0, fmt.Errorf("litematica: write: %w", err)
		}
	}
	return len(blocks), nil
}

// Complete serialises the accumulated store as region "Region".
func (lw *Writer) Complete() error {
	if lw.complete {
		return fmt.Errorf("litematica: complete called twice")
	}
	lw.complete = true

	boundary := lw.accum.Boundary()
	width, height, length := int(boundary.DX), int(boundary.DY), int(boundary.DZ)

	palette := store.NewPaletteWithAir()
	indices := make([]int, width*height*length)

	it := boundary.Iter(block.YZX)
	totalBlocks := 0
	for i := 0; i < len(indices); i++ {
		pos, ok := it.Next()
		if !ok {
			break
		}
		state, err := lw.accum.BlockAt(pos)
		if err != nil {
			return fmt.Errorf("litematica: read block at %v: %w", pos, err)
		}
		if state == nil {
			state = block.Air()
		}
		idx := palette.Add(state)
		indices[i] = idx
		if !state.IsAir() {
			totalBlocks++
		}
	}

	bitsPerEntry := max(bits.Len(uint(palette.Size())), 2)
	packed := varint.PackLongArrayTight(indices, bitsPerEntry)

	region := regionNBT{
		Size: struct {
			X int32 `nbt:"x"`
			Y int32 `nbt:"y"`
			Z int32 `nbt:"z"`
		}{X: int32(width), Y: int32(height), Z: int32(length)},
		BlockStates: packed,
	}
	region.Position.X, region.Position.Y, region.Position.Z = boundary.MinX, boundary.MinY, boundary.MinZ

	region.BlockStatePalette = make([]struct {
		Name       string            `nbt:"Name"`
		Properties map[string]string `nbt:"Properties,omitempty"`
	}, palette.Size())
	for i, state := range palette.States() {
		region.BlockStatePalette[i].Name = state.Name()
		props := state.Properties()
		if len(props) > 0 {
			m := make(map[string]string, len(props))
			for _, p := range props {
				m[p.Key] = p.Value
			}
			region.BlockStatePalette[i].Properties = m
		}
	}

	doc := documentNBT{
		Version:              versionV6,
		MinecraftDataVersion: 3465,
		Regions:              map[string]regionNBT{"Region": region},
	}
	doc.Metadata.RegionCount = 1
	doc.Metadata.TotalBlocks = int32(totalBlocks)
	doc.Metadata.TotalVolume = int32(width * height * length)
	doc.Metadata.EnclosingSize.X = int32(width)
	doc.Metadata.EnclosingSize.Y = int32(height)
	doc.Metadata.EnclosingSize.Z = int32(length)

	if err := nbt.NewEncoderWithEncoding(lw.w, nbt.BigEndian).Encode(doc); err != nil {
		return fmt.Errorf("litematica: encode nbt: %w", err)
	}
	return nil
}

var _ stream.Writer = (*Writer)(nil)
